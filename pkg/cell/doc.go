// Package cell provides the instrumented storage layer that sorting runs
// operate on.
//
// # Overview
//
// A Sequence is an ordered collection of Cells. Every Cell wraps one value and
// carries two ordered lists of hooks: one fired on each instrumented read and
// one fired on each instrumented write. Hooks are how a run turns "the
// algorithm touched this element" into latency and statistics; the cell knows
// nothing about what they do.
//
// # Cancellation
//
// A Token is the shared running flag. Algorithms never check it themselves.
// Instead the hooks and the Swap primitive observe it and return ErrCancelled,
// which every algorithm frame returns unchanged until it reaches the runner:
//
//	v, err := s.Read(i)
//	if err != nil {
//		return err
//	}
//
// # Raw access
//
// Raw and Sequence.Snapshot bypass the hooks entirely. They are the only
// legal way for a display loop to observe values while a run is in flight.
package cell
