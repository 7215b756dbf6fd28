package transition

import "slices"

// Table is a fixed adjacency map from a status to its permitted successor
// statuses. Tables are built once at package init and treated as immutable,
// so lookups are safe for concurrent use.
type Table[S ~string] map[S][]S

// Allowed reports whether moving from one status to another is permitted.
// Unknown source statuses allow nothing.
func (t Table[S]) Allowed(from, to S) bool {
	return slices.Contains(t[from], to)
}

// IsTerminal reports whether the status has no permitted successors.
func (t Table[S]) IsTerminal(s S) bool {
	return len(t[s]) == 0
}
