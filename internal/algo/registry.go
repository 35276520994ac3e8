package algo

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dyluth/sortvis/pkg/cell"
)

var (
	// ErrNotFound is returned by Lookup for a name that was never registered.
	ErrNotFound = errors.New("algorithm not found")
	// ErrClosed is returned by Register after the registry has been closed.
	ErrClosed = errors.New("registry closed")
)

// Algorithm sorts the shared sequence in place.
// Implementations hold no per-run state: everything they touch lives in the
// sequence. Sort returns nil once the sequence is ordered, or the error of
// the first instrumented access that failed (cell.ErrCancelled when the run
// was cancelled), unchanged.
type Algorithm[T cmp.Ordered] interface {
	Sort(s *cell.Sequence[T]) error
}

// Registry maps unique names to algorithm instances and owns them.
// Names enumerate in registration order. The registry is safe for concurrent
// use.
type Registry[T cmp.Ordered] struct {
	mu     sync.RWMutex
	byName map[string]Algorithm[T]
	order  []string
	closed bool
}

// NewRegistry returns an empty registry.
func NewRegistry[T cmp.Ordered]() *Registry[T] {
	return &Registry[T]{
		byName: make(map[string]Algorithm[T]),
	}
}

// Register adds alg under name. Re-registering an existing name replaces the
// previous instance (closing it if it is an io.Closer) and keeps the name's
// original position in Names.
func (r *Registry[T]) Register(name string, alg Algorithm[T]) error {
	if name == "" {
		return fmt.Errorf("algorithm name cannot be empty")
	}
	if alg == nil {
		return fmt.Errorf("algorithm '%s': instance cannot be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("register '%s': %w", name, ErrClosed)
	}

	if prev, exists := r.byName[name]; exists {
		release(prev)
	} else {
		r.order = append(r.order, name)
	}
	r.byName[name] = alg
	return nil
}

// Lookup returns the algorithm registered under name.
func (r *Registry[T]) Lookup(name string) (Algorithm[T], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	alg, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrNotFound, name)
	}
	return alg, nil
}

// Names returns the registered names in registration order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered algorithms.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Close releases every registered instance. Calling Close more than once is
// safe; instances are released exactly once.
func (r *Registry[T]) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error
	for _, name := range r.order {
		if err := release(r.byName[name]); err != nil {
			errs = append(errs, fmt.Errorf("release '%s': %w", name, err))
		}
	}
	r.byName = make(map[string]Algorithm[T])
	r.order = nil
	return errors.Join(errs...)
}

func release[T cmp.Ordered](alg Algorithm[T]) error {
	if c, ok := alg.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
