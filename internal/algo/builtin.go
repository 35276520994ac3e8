package algo

import "cmp"

// Names of the built-in algorithms.
const (
	NameBubble    = "Bubble Sort"
	NameCocktail  = "Cocktail Shaker Sort"
	NameSelection = "Selection Sort"
	NameMonkey    = "Monkey Sort"
	NameInsertion = "Insertion Sort"
	NameHeap      = "Heap Sort"
	NameComb      = "Comb Sort"
	NameGnome     = "Gnome Sort"
)

// Entry pairs a registry name with an algorithm and a one-line description.
type Entry[T cmp.Ordered] struct {
	Name        string
	Description string
	Algorithm   Algorithm[T]
}

// Builtin returns the built-in algorithms in registration order.
func Builtin[T cmp.Ordered]() []Entry[T] {
	return []Entry[T]{
		{NameBubble, "adjacent passes until no exchange", Bubble[T]{}},
		{NameCocktail, "bidirectional bubble passes", Cocktail[T]{}},
		{NameSelection, "exchange the remaining minimum into place", Selection[T]{}},
		{NameMonkey, "random exchanges until ordered", Monkey[T]{}},
		{NameInsertion, "shift greater predecessors, then place", Insertion[T]{}},
		{NameHeap, "max-heap build, then extract to the end", Heap[T]{}},
		{NameComb, "gap passes shrinking by 1.3", Comb[T]{}},
		{NameGnome, "step back on inversion, forward otherwise", Gnome[T]{}},
	}
}

// Describe returns the built-in description for name, or "" when name is not
// a built-in algorithm.
func Describe(name string) string {
	for _, e := range Builtin[int]() {
		if e.Name == name {
			return e.Description
		}
	}
	return ""
}

// Default returns a registry holding every built-in algorithm.
func Default[T cmp.Ordered]() *Registry[T] {
	r := NewRegistry[T]()
	for _, e := range Builtin[T]() {
		// Built-in names are non-empty and unique; Register cannot fail here.
		_ = r.Register(e.Name, e.Algorithm)
	}
	return r
}
