// Package eventbus publishes sorting-run activity over Redis Pub/Sub so remote
// observers (sortvis watch, dashboards) can follow a run live.
//
// All channels are namespaced by instance name so several sortvis processes
// can share one Redis server. Nothing is stored in Redis keys: events are
// fire-and-forget, at-most-once.
package eventbus

import (
	"fmt"

	"github.com/google/uuid"
)

// EventType identifies what a RunEvent reports.
type EventType string

const (
	// EventRunStarted is published once a run has been accepted and seeded.
	EventRunStarted EventType = "run_started"

	// EventRunCompleted is published when the algorithm returned normally.
	EventRunCompleted EventType = "run_completed"

	// EventRunCancelled is published when the run unwound on cancellation.
	EventRunCancelled EventType = "run_cancelled"

	// EventStats carries a periodic statistics snapshot of an active run.
	EventStats EventType = "stats"
)

// RunEvent is the wire form of one piece of run activity.
type RunEvent struct {
	ID          string    `json:"id"`                    // UUID of this event
	RunID       string    `json:"run_id"`                // UUID of the run it belongs to
	Type        EventType `json:"type"`                  // What happened
	Algorithm   string    `json:"algorithm"`             // Registered algorithm name
	Status      string    `json:"status"`                // Run status at publish time
	Elements    int       `json:"elements"`              // Sequence length
	ReadCount   uint64    `json:"read_count"`            // Instrumented reads so far
	WriteCount  uint64    `json:"write_count"`           // Instrumented writes so far
	LastAction  string    `json:"last_action,omitempty"` // "read" or "write"
	DurationUs  int64     `json:"duration_us"`           // Elapsed (stats) or final duration
	TimestampMs int64     `json:"timestamp_ms"`          // Unix milliseconds
}

// Validate checks that the event is well formed.
func (e *RunEvent) Validate() error {
	if _, err := uuid.Parse(e.ID); err != nil {
		return fmt.Errorf("invalid event id: %w", err)
	}
	if _, err := uuid.Parse(e.RunID); err != nil {
		return fmt.Errorf("invalid run id: %w", err)
	}
	switch e.Type {
	case EventRunStarted, EventRunCompleted, EventRunCancelled, EventStats:
	default:
		return fmt.Errorf("invalid event type: %q", e.Type)
	}
	if e.Algorithm == "" {
		return fmt.Errorf("algorithm cannot be empty")
	}
	if e.Elements < 0 {
		return fmt.Errorf("elements must be >= 0, got %d", e.Elements)
	}
	if e.DurationUs < 0 {
		return fmt.Errorf("duration_us must be >= 0, got %d", e.DurationUs)
	}
	return nil
}

// RunEventsChannel returns the Pub/Sub channel carrying run events.
// Pattern: sortvis:{instance_name}:run_events
func RunEventsChannel(instanceName string) string {
	return fmt.Sprintf("sortvis:%s:run_events", instanceName)
}
