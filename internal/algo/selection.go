package algo

import (
	"cmp"

	"github.com/dyluth/sortvis/pkg/cell"
)

// Selection scans the unsorted remainder for its minimum and exchanges it
// into place. Ties keep the first minimum seen; no exchange happens when the
// minimum is already in place.
type Selection[T cmp.Ordered] struct{}

// Sort implements Algorithm.
func (Selection[T]) Sort(s *cell.Sequence[T]) error {
	n := s.Len()
	for i := 0; i < n-1; i++ {
		minIdx := i
		for j := i + 1; j < n; j++ {
			less, err := s.Less(j, minIdx)
			if err != nil {
				return err
			}
			if less {
				minIdx = j
			}
		}
		if minIdx != i {
			if err := s.Swap(i, minIdx); err != nil {
				return err
			}
		}
	}
	return nil
}

// Insertion takes each element in hand and shifts every strictly greater
// predecessor one slot right before placing it.
//
// Shifts are single instrumented writes rather than swaps, so while a value
// is in hand one other value briefly occupies two slots. If an access fails
// the value in hand is put back into the vacated slot before returning.
type Insertion[T cmp.Ordered] struct{}

// Sort implements Algorithm.
func (Insertion[T]) Sort(s *cell.Sequence[T]) error {
	n := s.Len()
	for i := 1; i < n; i++ {
		key, err := s.Read(i)
		if err != nil {
			return err
		}

		hole := i
		for hole > 0 {
			prev, err := s.Read(hole - 1)
			if err != nil {
				s.Place(hole, key)
				return err
			}
			if prev <= key {
				break
			}
			err = s.Write(hole, prev)
			hole--
			if err != nil {
				s.Place(hole, key)
				return err
			}
		}

		if hole != i {
			if err := s.Write(hole, key); err != nil {
				return err
			}
		}
	}
	return nil
}
