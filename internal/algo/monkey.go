package algo

import (
	"cmp"
	"math/rand/v2"

	"github.com/dyluth/sortvis/pkg/cell"
)

// Monkey exchanges two uniformly random positions until a raw order check
// finds no inversion. It has no termination bound.
type Monkey[T cmp.Ordered] struct {
	// IntN returns a uniform integer in [0, n). Defaults to rand.IntN.
	IntN func(n int) int
}

// Sort implements Algorithm.
func (m Monkey[T]) Sort(s *cell.Sequence[T]) error {
	intN := m.IntN
	if intN == nil {
		intN = rand.IntN
	}

	n := s.Len()
	for !s.Sorted() {
		if err := s.Swap(intN(n), intN(n)); err != nil {
			return err
		}
	}
	return nil
}
