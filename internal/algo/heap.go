package algo

import (
	"cmp"

	"github.com/dyluth/sortvis/pkg/cell"
)

// Heap builds a max-heap in place, then repeatedly exchanges the root with the
// end of the heap and restores the heap property over the shrunk prefix.
type Heap[T cmp.Ordered] struct{}

// Sort implements Algorithm.
func (Heap[T]) Sort(s *cell.Sequence[T]) error {
	n := s.Len()
	for root := n/2 - 1; root >= 0; root-- {
		if err := siftDown(s, root, n); err != nil {
			return err
		}
	}
	for end := n - 1; end > 0; end-- {
		if err := s.Swap(0, end); err != nil {
			return err
		}
		if err := siftDown(s, 0, end); err != nil {
			return err
		}
	}
	return nil
}

// siftDown moves the element at root down the heap occupying [0, size).
func siftDown[T cmp.Ordered](s *cell.Sequence[T], root, size int) error {
	for {
		child := 2*root + 1
		if child >= size {
			return nil
		}
		if child+1 < size {
			less, err := s.Less(child, child+1)
			if err != nil {
				return err
			}
			if less {
				child++
			}
		}

		less, err := s.Less(root, child)
		if err != nil {
			return err
		}
		if !less {
			return nil
		}
		if err := s.Swap(root, child); err != nil {
			return err
		}
		root = child
	}
}
