package runner

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrInvalidConfig is returned by Configure for settings it cannot run.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrUnknownAlgorithm is returned by Start for an unregistered name.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
	// ErrAlreadyRunning is returned by Start and Configure while a run is active.
	ErrAlreadyRunning = errors.New("already running")
)

// Default settings, matching the interactive defaults of the visualiser.
const (
	DefaultElements   = 200
	DefaultReadDelay  = 100 * time.Microsecond
	DefaultWriteDelay = 500 * time.Microsecond
)

// Upper bounds on a run, matching the ranges the visualiser's controls offer.
const (
	MaxElements = 4096
	MaxDelay    = time.Millisecond
)

// Settings configures the next run.
type Settings struct {
	Elements   int           // Sequence length; values are 1..Elements
	ReadDelay  time.Duration // Sleep after each instrumented read
	WriteDelay time.Duration // Sleep after each instrumented write
}

// DefaultSettings returns the settings used until Configure is called.
func DefaultSettings() Settings {
	return Settings{
		Elements:   DefaultElements,
		ReadDelay:  DefaultReadDelay,
		WriteDelay: DefaultWriteDelay,
	}
}

// Validate checks that s describes a runnable configuration.
func (s Settings) Validate() error {
	if s.Elements <= 0 || s.Elements > MaxElements {
		return fmt.Errorf("%w: element count must be in 1..%d, got %d", ErrInvalidConfig, MaxElements, s.Elements)
	}
	if s.ReadDelay < 0 || s.ReadDelay > MaxDelay {
		return fmt.Errorf("%w: read delay must be in 0..%s, got %s", ErrInvalidConfig, MaxDelay, s.ReadDelay)
	}
	if s.WriteDelay < 0 || s.WriteDelay > MaxDelay {
		return fmt.Errorf("%w: write delay must be in 0..%s, got %s", ErrInvalidConfig, MaxDelay, s.WriteDelay)
	}
	return nil
}

// Micros builds settings from the microsecond delays used by the external
// interfaces. Delays too large for a time.Duration saturate, so Validate
// rejects them instead of accepting a wrapped value.
func Micros(elements int, readDelayUs, writeDelayUs int64) Settings {
	return Settings{
		Elements:   elements,
		ReadDelay:  microseconds(readDelayUs),
		WriteDelay: microseconds(writeDelayUs),
	}
}

func microseconds(us int64) time.Duration {
	const limit = math.MaxInt64 / int64(time.Microsecond)
	switch {
	case us > limit:
		return time.Duration(math.MaxInt64)
	case us < -limit:
		return time.Duration(math.MinInt64)
	}
	return time.Duration(us) * time.Microsecond
}
