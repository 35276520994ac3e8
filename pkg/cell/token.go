package cell

import (
	"errors"
	"sync/atomic"
)

// ErrCancelled is returned by an instrumented access once the run's token has
// been cleared. Callers must propagate it unchanged.
var ErrCancelled = errors.New("run cancelled")

// Token is the shared running flag of a run.
// The zero value is a cleared (not running) token.
type Token struct {
	running atomic.Bool
}

// Start asserts the token.
func (t *Token) Start() {
	t.running.Store(true)
}

// Stop clears the token. Safe to call multiple times and from any goroutine.
func (t *Token) Stop() {
	t.running.Store(false)
}

// Running reports whether the token is asserted.
func (t *Token) Running() bool {
	return t.running.Load()
}

// Check returns ErrCancelled when the token is cleared.
// A nil token never cancels.
func (t *Token) Check() error {
	if t == nil || t.Running() {
		return nil
	}
	return ErrCancelled
}

// IsCancelled reports whether err carries the cancellation signal.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
