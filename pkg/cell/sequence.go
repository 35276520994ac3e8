package cell

import (
	"cmp"
	"fmt"
	"sync"
)

// Sequence is the ordered, resizable collection of cells a run sorts in place.
//
// The sequence lock guards only the cell slice itself. Seeding and clearing
// take it exclusively; snapshots take it shared for as long as it takes to
// copy the raw values. Instrumented accesses never hold it across a hook.
// The pair lock makes the two stores of a swap appear atomic to snapshots.
type Sequence[T cmp.Ordered] struct {
	mu    sync.RWMutex
	pair  sync.Mutex
	cells []*Cell[T]
	token *Token
}

// NewSequence returns an empty sequence.
func NewSequence[T cmp.Ordered]() *Sequence[T] {
	return &Sequence[T]{}
}

// Reset clears the sequence and re-seeds it with values, attaching hooks to
// every new cell. tok is the token observed by Swap for this run.
func (s *Sequence[T]) Reset(values []T, hooks Hooks[T], tok *Token) {
	cells := make([]*Cell[T], len(values))
	for i, v := range values {
		c := New(i, v)
		c.SetHooks(hooks)
		cells[i] = c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cells = cells
	s.token = tok
}

// Clear drops every cell.
func (s *Sequence[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cells = nil
}

// Len returns the number of cells.
func (s *Sequence[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cells)
}

// At returns the cell at position i. It panics when i is out of range, like
// a slice index.
func (s *Sequence[T]) At(i int) *Cell[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.cells) {
		panic(fmt.Sprintf("cell: index %d out of range [0:%d]", i, len(s.cells)))
	}
	return s.cells[i]
}

// Read performs an instrumented read of position i.
func (s *Sequence[T]) Read(i int) (T, error) {
	return s.At(i).Read()
}

// Write performs an instrumented write of v into position i.
func (s *Sequence[T]) Write(i int, v T) error {
	return s.At(i).Write(v)
}

// Swap exchanges positions i and j through the instrumented swap primitive.
func (s *Sequence[T]) Swap(i, j int) error {
	return swap(s.At(i), s.At(j), s.currentToken(), &s.pair)
}

// Less reports whether position i holds a value strictly smaller than
// position j, using instrumented reads.
func (s *Sequence[T]) Less(i, j int) (bool, error) {
	a, err := s.Read(i)
	if err != nil {
		return false, err
	}
	b, err := s.Read(j)
	if err != nil {
		return false, err
	}
	return a < b, nil
}

// Place stores v into position i without firing hooks. It exists so an
// algorithm holding a value outside the sequence can put it back when an
// access is cancelled, keeping the sequence's multiset intact.
func (s *Sequence[T]) Place(i int, v T) {
	s.At(i).store(v)
}

// Snapshot copies the raw values in order. No hook fires.
func (s *Sequence[T]) Snapshot() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.pair.Lock()
	defer s.pair.Unlock()
	out := make([]T, len(s.cells))
	for i, c := range s.cells {
		out[i] = c.Raw()
	}
	return out
}

// Sorted reports, using raw reads only, whether the sequence is in
// non-decreasing order.
func (s *Sequence[T]) Sorted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := 1; i < len(s.cells); i++ {
		if s.cells[i].Raw() < s.cells[i-1].Raw() {
			return false
		}
	}
	return true
}

func (s *Sequence[T]) currentToken() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}
