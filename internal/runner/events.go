package runner

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/dyluth/sortvis/internal/eventbus"
)

// StreamStats publishes a stats snapshot every interval while a run is
// active, until ctx is cancelled. It returns immediately when the runner has
// no publisher.
func (r *Runner) StreamStats(ctx context.Context, interval time.Duration) error {
	if r.publisher == nil {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			stats := r.PollStats()
			if stats.Status != StatusRunning {
				continue
			}
			r.publish(eventbus.EventStats, stats)
		}
	}
}

// publish sends one run event. Event bus failures are logged and never
// affect the run.
func (r *Runner) publish(eventType eventbus.EventType, stats Stats) {
	if r.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	ev := &eventbus.RunEvent{
		RunID:      stats.RunID,
		Type:       eventType,
		Algorithm:  stats.Algorithm,
		Status:     string(stats.Status),
		Elements:   stats.Elements,
		ReadCount:  stats.ReadCount,
		WriteCount: stats.WriteCount,
		LastAction: stats.LastAction,
		DurationUs: stats.Elapsed.Microseconds(),
	}
	if err := r.publisher.PublishRunEvent(ctx, ev); err != nil {
		log.Printf("[Runner] Failed to publish %s event for run %s: %v", eventType, stats.RunID, err)
	}
}

func statsFields(s Stats) map[string]interface{} {
	return map[string]interface{}{
		"run_id":      s.RunID,
		"algorithm":   s.Algorithm,
		"status":      string(s.Status),
		"elements":    s.Elements,
		"read_count":  s.ReadCount,
		"write_count": s.WriteCount,
		"duration_us": s.Elapsed.Microseconds(),
	}
}

// logEvent logs a structured event in JSON format.
func (r *Runner) logEvent(eventType string, data map[string]interface{}) {
	data["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	data["level"] = "info"
	data["component"] = "runner"
	data["event_type"] = eventType
	data["instance"] = r.instanceName

	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("[Runner] Failed to marshal log event: %v", err)
		return
	}

	log.Println(string(jsonData))
}
