// Package watch streams sorting-run activity from the event bus to a writer.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dyluth/sortvis/internal/eventbus"
)

// OutputFormat selects how events are rendered.
type OutputFormat string

const (
	// OutputFormatDefault is human-readable, one line per event.
	OutputFormatDefault OutputFormat = "default"
	// OutputFormatJSON is line-delimited JSON.
	OutputFormatJSON OutputFormat = "json"
)

// ParseOutputFormat validates a user-supplied format name.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputFormatDefault, OutputFormatJSON:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unknown output format: %s", s)
	}
}

type formatter interface {
	FormatRunEvent(ev *eventbus.RunEvent) error
}

func newFormatter(format OutputFormat, w io.Writer) formatter {
	if format == OutputFormatJSON {
		return &jsonFormatter{writer: w}
	}
	return &defaultFormatter{writer: w}
}

// StreamActivity subscribes to the instance's run events and writes each one
// to w until ctx is cancelled or the subscription ends.
func StreamActivity(ctx context.Context, client *eventbus.Client, format OutputFormat, w io.Writer) error {
	sub, err := client.SubscribeRunEvents(ctx)
	if err != nil {
		return err
	}
	defer sub.Close()

	f := newFormatter(format, w)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if err := f.FormatRunEvent(ev); err != nil {
				return fmt.Errorf("failed to write event: %w", err)
			}

		case err, ok := <-sub.Errors():
			if !ok {
				return nil
			}
			fmt.Fprintf(w, "⚠️  %v\n", err)
		}
	}
}

// AwaitRun subscribes to the instance's run events, blocks until the run
// identified by runID finishes and writes that terminal event to w. An empty
// runID waits for whichever run finishes first.
func AwaitRun(ctx context.Context, client *eventbus.Client, runID string, timeout time.Duration, format OutputFormat, w io.Writer) (*eventbus.RunEvent, error) {
	sub, err := client.SubscribeRunEvents(ctx)
	if err != nil {
		return nil, err
	}
	defer sub.Close()

	ev, err := waitForRun(ctx, sub, runID, timeout)
	if err != nil {
		return nil, err
	}
	if err := newFormatter(format, w).FormatRunEvent(ev); err != nil {
		return nil, fmt.Errorf("failed to write event: %w", err)
	}
	return ev, nil
}

// waitForRun reads events from sub until the run identified by runID reaches
// a terminal event. An empty runID matches the first terminal event of any
// run.
func waitForRun(ctx context.Context, sub *eventbus.Subscription, runID string, timeout time.Duration) (*eventbus.RunEvent, error) {
	timeoutCh := time.After(timeout)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case <-timeoutCh:
			return nil, fmt.Errorf("timeout waiting for run to finish after %v", timeout)

		case ev, ok := <-sub.Events():
			if !ok {
				return nil, fmt.Errorf("subscription closed before run finished")
			}
			if runID != "" && ev.RunID != runID {
				continue
			}
			if ev.Type == eventbus.EventRunCompleted || ev.Type == eventbus.EventRunCancelled {
				return ev, nil
			}
		}
	}
}

type defaultFormatter struct {
	writer io.Writer
}

func (f *defaultFormatter) FormatRunEvent(ev *eventbus.RunEvent) error {
	ts := time.UnixMilli(ev.TimestampMs).Format("15:04:05")

	var err error
	switch ev.Type {
	case eventbus.EventRunStarted:
		_, err = fmt.Fprintf(f.writer, "[%s] 🚀 Run started: algorithm=%q elements=%d run=%s\n",
			ts, ev.Algorithm, ev.Elements, ev.RunID)
	case eventbus.EventStats:
		_, err = fmt.Fprintf(f.writer, "[%s] 📊 Progress: reads=%d writes=%d last=%s elapsed=%dµs\n",
			ts, ev.ReadCount, ev.WriteCount, ev.LastAction, ev.DurationUs)
	case eventbus.EventRunCompleted:
		_, err = fmt.Fprintf(f.writer, "[%s] 🎉 Run completed: algorithm=%q reads=%d writes=%d took=%dµs\n",
			ts, ev.Algorithm, ev.ReadCount, ev.WriteCount, ev.DurationUs)
	case eventbus.EventRunCancelled:
		_, err = fmt.Fprintf(f.writer, "[%s] 🛑 Run cancelled: algorithm=%q reads=%d writes=%d after=%dµs\n",
			ts, ev.Algorithm, ev.ReadCount, ev.WriteCount, ev.DurationUs)
	default:
		_, err = fmt.Fprintf(f.writer, "[%s] %s run=%s\n", ts, ev.Type, ev.RunID)
	}
	return err
}

type jsonFormatter struct {
	writer io.Writer
}

func (f *jsonFormatter) FormatRunEvent(ev *eventbus.RunEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(f.writer, "%s\n", data)
	return err
}
