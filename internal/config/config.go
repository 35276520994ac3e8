package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/dyluth/sortvis/internal/eventbus"
	"github.com/dyluth/sortvis/internal/runner"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the file name the CLI looks for when --config is not given.
const DefaultFile = "sortvis.yml"

// DefaultServerAddr is the listen address used when server.addr is omitted.
const DefaultServerAddr = ":8080"

// SortvisConfig represents the top-level sortvis.yml configuration
type SortvisConfig struct {
	Version string        `yaml:"version"`
	Run     *RunConfig    `yaml:"run,omitempty"`
	Server  *ServerConfig `yaml:"server,omitempty"`
	Redis   *RedisConfig  `yaml:"redis,omitempty"`
}

// RunConfig holds the settings for the next sorting run
type RunConfig struct {
	Elements     *int    `yaml:"elements,omitempty"`       // nil = default
	ReadDelayUs  *int64  `yaml:"read_delay_us,omitempty"`  // nil = default, 0 = no delay
	WriteDelayUs *int64  `yaml:"write_delay_us,omitempty"` // nil = default, 0 = no delay
	Algorithm    string  `yaml:"algorithm,omitempty"`      // Used by `run` when no argument is given
	Seed         *uint64 `yaml:"seed,omitempty"`           // Fixed shuffle seed; omit for a random shuffle
}

// ServerConfig configures the HTTP control API
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// RedisConfig enables run event publishing
type RedisConfig struct {
	URL      string `yaml:"url"`
	Instance string `yaml:"instance,omitempty"`
}

// Default returns a fully populated configuration with no Redis section.
func Default() *SortvisConfig {
	c := &SortvisConfig{Version: "1.0"}
	// Cannot fail on defaults
	_ = c.Validate()
	return c
}

// Validate performs strict validation on the configuration and fills in
// defaults for omitted values
func (c *SortvisConfig) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if c.Run == nil {
		c.Run = &RunConfig{}
	}
	if err := c.Run.Validate(); err != nil {
		return err
	}

	if c.Server == nil {
		c.Server = &ServerConfig{}
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}

	if c.Redis != nil {
		if c.Redis.URL == "" {
			return fmt.Errorf("redis.url is required when the redis section is present")
		}
		if c.Redis.Instance == "" {
			c.Redis.Instance = "default"
		}
		if err := eventbus.ValidateInstanceName(c.Redis.Instance); err != nil {
			return fmt.Errorf("redis.instance: %w", err)
		}
	}

	return nil
}

// Validate checks the run section and applies defaults
func (r *RunConfig) Validate() error {
	if r.Elements == nil {
		n := runner.DefaultElements
		r.Elements = &n
	}
	if *r.Elements < 1 || *r.Elements > runner.MaxElements {
		return fmt.Errorf("run.elements must be in 1..%d, got %d", runner.MaxElements, *r.Elements)
	}

	maxUs := runner.MaxDelay.Microseconds()

	if r.ReadDelayUs == nil {
		d := runner.DefaultReadDelay.Microseconds()
		r.ReadDelayUs = &d
	}
	if *r.ReadDelayUs < 0 || *r.ReadDelayUs > maxUs {
		return fmt.Errorf("run.read_delay_us must be in 0..%d, got %d", maxUs, *r.ReadDelayUs)
	}

	if r.WriteDelayUs == nil {
		d := runner.DefaultWriteDelay.Microseconds()
		r.WriteDelayUs = &d
	}
	if *r.WriteDelayUs < 0 || *r.WriteDelayUs > maxUs {
		return fmt.Errorf("run.write_delay_us must be in 0..%d, got %d", maxUs, *r.WriteDelayUs)
	}

	return nil
}

// Settings converts the validated run section into runner settings
func (c *SortvisConfig) Settings() runner.Settings {
	return runner.Micros(*c.Run.Elements, *c.Run.ReadDelayUs, *c.Run.WriteDelayUs)
}

// Load reads and validates sortvis.yml from the specified path
func Load(path string) (*SortvisConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config SortvisConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadOrDefault loads path when it exists. A missing file yields the default
// configuration unless the caller asked for that file explicitly.
func LoadOrDefault(path string, explicit bool) (*SortvisConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !explicit {
		return Default(), nil
	}
	return Load(path)
}
