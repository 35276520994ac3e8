package cell

import (
	"cmp"
	"sync"
)

// Hook observes one instrumented access. It receives the cell's seed index and
// the value involved in the access. A non-nil error aborts the access and is
// returned to the caller unchanged.
type Hook[T cmp.Ordered] func(index int, value T) error

// Hooks groups the ordered read and write hook lists attached to a cell for
// the duration of one run.
type Hooks[T cmp.Ordered] struct {
	OnRead  []Hook[T]
	OnWrite []Hook[T]
}

// Observer is the interface form of a hook pair.
type Observer[T cmp.Ordered] interface {
	OnRead(index int, value T) error
	OnWrite(index int, value T) error
}

// Observe appends an Observer to both hook lists, keeping registration order.
func (h Hooks[T]) Observe(o Observer[T]) Hooks[T] {
	h.OnRead = append(h.OnRead, o.OnRead)
	h.OnWrite = append(h.OnWrite, o.OnWrite)
	return h
}

// Cell holds a single value of an ordered type.
// Reads and writes of the stored value are mutually exclusive, so a reader
// always sees the result of the most recently completed write.
type Cell[T cmp.Ordered] struct {
	mu    sync.RWMutex
	index int
	value T
	hooks Hooks[T]
}

// New creates a cell seeded at index with value v and no hooks.
func New[T cmp.Ordered](index int, v T) *Cell[T] {
	return &Cell[T]{index: index, value: v}
}

// Index returns the position the cell was seeded at.
func (c *Cell[T]) Index() int {
	return c.index
}

// SetHooks replaces both hook lists. It must not race with Read or Write;
// callers attach hooks before a run's worker starts.
func (c *Cell[T]) SetHooks(h Hooks[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = Hooks[T]{
		OnRead:  append([]Hook[T](nil), h.OnRead...),
		OnWrite: append([]Hook[T](nil), h.OnWrite...),
	}
}

// Read loads the stored value once, fires every read hook in registration
// order with it and returns that same value.
func (c *Cell[T]) Read() (T, error) {
	v := c.Raw()
	for _, hook := range c.hooks.OnRead {
		if err := hook(c.index, v); err != nil {
			var zero T
			return zero, err
		}
	}
	return v, nil
}

// Write stores v and then fires every write hook in registration order.
// The value is applied even when a hook returns an error.
func (c *Cell[T]) Write(v T) error {
	c.store(v)
	return c.fireWrite(v)
}

// Raw returns the stored value without firing any hook.
func (c *Cell[T]) Raw() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

func (c *Cell[T]) store(v T) {
	c.mu.Lock()
	c.value = v
	c.mu.Unlock()
}

func (c *Cell[T]) fireWrite(v T) error {
	for _, hook := range c.hooks.OnWrite {
		if err := hook(c.index, v); err != nil {
			return err
		}
	}
	return nil
}

// swap exchanges the values of a and b through the instrumented write path.
// Both values are applied before any write hook runs, so an abort raised by a
// hook never loses or duplicates a value. Once the exchange is complete the
// token is checked and ErrCancelled returned if it has been cleared. The
// stores happen while holding pair, if given, so observers that also take
// pair never see one half of an exchange.
func swap[T cmp.Ordered](a, b *Cell[T], tok *Token, pair *sync.Mutex) error {
	if pair != nil {
		pair.Lock()
	}
	va, vb := a.Raw(), b.Raw()
	a.store(vb)
	b.store(va)
	if pair != nil {
		pair.Unlock()
	}

	if err := a.fireWrite(vb); err != nil {
		return err
	}
	if err := b.fireWrite(va); err != nil {
		return err
	}
	return tok.Check()
}
