package algo

import (
	"cmp"

	"github.com/dyluth/sortvis/pkg/cell"
)

// Bubble repeats adjacent-pair passes until a pass performs no exchange.
type Bubble[T cmp.Ordered] struct{}

// Sort implements Algorithm.
func (Bubble[T]) Sort(s *cell.Sequence[T]) error {
	n := s.Len()
	for swapped := true; swapped; {
		swapped = false
		for i := 1; i < n; i++ {
			less, err := s.Less(i, i-1)
			if err != nil {
				return err
			}
			if less {
				if err := s.Swap(i-1, i); err != nil {
					return err
				}
				swapped = true
			}
		}
	}
	return nil
}

// Cocktail runs a forward then a backward bubble pass per iteration, shrinking
// the unsorted window from both ends. It stops as soon as a forward pass
// performs no exchange.
type Cocktail[T cmp.Ordered] struct{}

// Sort implements Algorithm.
func (Cocktail[T]) Sort(s *cell.Sequence[T]) error {
	start, end := 0, s.Len()-1
	for {
		swapped := false
		for i := start; i < end; i++ {
			less, err := s.Less(i+1, i)
			if err != nil {
				return err
			}
			if less {
				if err := s.Swap(i, i+1); err != nil {
					return err
				}
				swapped = true
			}
		}
		if !swapped {
			return nil
		}
		end--

		for i := end - 1; i >= start; i-- {
			less, err := s.Less(i+1, i)
			if err != nil {
				return err
			}
			if less {
				if err := s.Swap(i, i+1); err != nil {
					return err
				}
			}
		}
		start++
	}
}

// Comb compares elements a shrinking gap apart (factor 1.3, floor 1) and
// finishes once a pass at gap 1 performs no exchange.
type Comb[T cmp.Ordered] struct{}

// combShrink is the gap shrink factor.
const combShrink = 1.3

// Sort implements Algorithm.
func (Comb[T]) Sort(s *cell.Sequence[T]) error {
	n := s.Len()
	gap := n
	for sorted := false; !sorted; {
		gap = int(float64(gap) / combShrink)
		if gap <= 1 {
			gap = 1
			sorted = true
		}

		for i := 0; i+gap < n; i++ {
			less, err := s.Less(i+gap, i)
			if err != nil {
				return err
			}
			if less {
				if err := s.Swap(i, i+gap); err != nil {
					return err
				}
				sorted = false
			}
		}
	}
	return nil
}

// Gnome walks forward, stepping back one position with an exchange whenever
// the current element is smaller than its predecessor.
type Gnome[T cmp.Ordered] struct{}

// Sort implements Algorithm.
func (Gnome[T]) Sort(s *cell.Sequence[T]) error {
	n := s.Len()
	for pos := 0; pos < n; {
		if pos == 0 {
			pos++
			continue
		}
		less, err := s.Less(pos, pos-1)
		if err != nil {
			return err
		}
		if less {
			if err := s.Swap(pos-1, pos); err != nil {
				return err
			}
			pos--
		} else {
			pos++
		}
	}
	return nil
}
