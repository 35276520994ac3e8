package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/dyluth/sortvis/internal/config"
	"github.com/dyluth/sortvis/internal/eventbus"
	"github.com/dyluth/sortvis/internal/printer"
)

// loadConfig reads --config, or ./sortvis.yml when present, or defaults.
func loadConfig() (*config.SortvisConfig, error) {
	path, explicit := configPath, configPath != ""
	if !explicit {
		path = config.DefaultFile
	}

	cfg, err := config.LoadOrDefault(path, explicit)
	if err != nil {
		return nil, printer.ErrorWithContext(
			"failed to load configuration",
			err.Error(),
			map[string]string{"Config": path},
			[]string{"Fix the file, or pass a different one with --config"},
		)
	}
	return cfg, nil
}

// connectEventBus dials Redis and verifies connectivity.
func connectEventBus(ctx context.Context, url, instanceName string) (*eventbus.Client, error) {
	client, err := eventbus.Dial(url, instanceName)
	if err != nil {
		return nil, printer.Error(
			"invalid Redis configuration",
			err.Error(),
			[]string{"Use a URL of the form redis://host:6379/0"},
		)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		client.Close()
		return nil, printer.ErrorWithContext(
			"Redis connection failed",
			fmt.Sprintf("Could not connect to Redis at %s", url),
			map[string]string{"Error": err.Error()},
			[]string{
				"Check that Redis is running and reachable",
				"Run without --redis to skip event publishing",
			},
		)
	}
	return client, nil
}

// redisTarget resolves the Redis URL and instance name from flags, falling
// back to the config file. An empty URL means no event bus.
func redisTarget(cfg *config.SortvisConfig, urlFlag, nameFlag string) (url, name string) {
	if cfg.Redis != nil {
		url, name = cfg.Redis.URL, cfg.Redis.Instance
	}
	if urlFlag != "" {
		url = urlFlag
	}
	if nameFlag != "" {
		name = nameFlag
	}
	if name == "" {
		name = "default"
	}
	return url, name
}

// formatDuration renders run durations at a precision that suits them.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000)
	case d < time.Minute:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}

	d = d.Round(time.Second)
	minutes := d / time.Minute
	seconds := (d - minutes*time.Minute) / time.Second
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
