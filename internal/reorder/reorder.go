// Package reorder turns a resolved drop or keyboard intent into list indices.
//
// All functions are pure. Indices follow the "insert after removing the
// source" convention: the returned finish index is where the moved element
// ends up once it has been taken out of the list and put back.
package reorder

type Edge string

const (
	EdgeNone   Edge = ""
	EdgeTop    Edge = "top"
	EdgeBottom Edge = "bottom"
	EdgeLeft   Edge = "left"
	EdgeRight  Edge = "right"
)

type Axis string

const (
	AxisVertical   Axis = "vertical"
	AxisHorizontal Axis = "horizontal"
)

// ParseEdge maps user/wire input onto an Edge; unknown values become EdgeNone.
func ParseEdge(s string) Edge {
	switch Edge(s) {
	case EdgeTop, EdgeBottom, EdgeLeft, EdgeRight:
		return Edge(s)
	default:
		return EdgeNone
	}
}

// isAfter reports whether edge sits on the "after" side along axis. Edges
// belonging to the other axis count as before-side.
func isAfter(edge Edge, axis Axis) bool {
	switch axis {
	case AxisHorizontal:
		return edge == EdgeRight
	default:
		return edge == EdgeBottom
	}
}

// DestinationIndex computes the finish index for reordering within one list.
//
// With EdgeNone the target index is used as-is; callers dropping onto the
// list body pass EndOfList(len, false).
func DestinationIndex(startIndex, indexOfTarget int, edge Edge, axis Axis) int {
	if startIndex < 0 || indexOfTarget < 0 {
		return startIndex
	}
	if startIndex == indexOfTarget {
		return startIndex
	}
	if edge == EdgeNone {
		return indexOfTarget
	}

	finish := indexOfTarget
	if isAfter(edge, axis) {
		finish++
	}
	// The source is removed before reinsertion, shifting later targets up.
	if indexOfTarget > startIndex {
		finish--
	}
	return finish
}

// InsertionIndex computes where an element coming from another list lands
// relative to the target element.
func InsertionIndex(indexOfTarget int, edge Edge, axis Axis) int {
	if indexOfTarget < 0 {
		return 0
	}
	if isAfter(edge, axis) {
		return indexOfTarget + 1
	}
	return indexOfTarget
}

// EndOfList is the index that targets the end of a list of length n:
// n-1 when reordering within the list, n when inserting from elsewhere.
func EndOfList(n int, crossList bool) int {
	if crossList {
		return n
	}
	if n == 0 {
		return 0
	}
	return n - 1
}

// Move returns a new slice with the element at start moved to finish.
// Out-of-range indices yield an unchanged copy.
func Move[T any](list []T, start, finish int) []T {
	out := make([]T, len(list))
	copy(out, list)
	if start < 0 || start >= len(list) || finish < 0 || finish >= len(list) || start == finish {
		return out
	}
	v := out[start]
	if start < finish {
		copy(out[start:finish], out[start+1:finish+1])
	} else {
		copy(out[finish+1:start+1], out[finish:start])
	}
	out[finish] = v
	return out
}

// Insert returns a new slice with v placed at index i (clamped to [0, len]).
func Insert[T any](list []T, i int, v T) []T {
	if i < 0 {
		i = 0
	}
	if i > len(list) {
		i = len(list)
	}
	out := make([]T, 0, len(list)+1)
	out = append(out, list[:i]...)
	out = append(out, v)
	out = append(out, list[i:]...)
	return out
}

// Remove returns a new slice without the element at i.
func Remove[T any](list []T, i int) []T {
	if i < 0 || i >= len(list) {
		out := make([]T, len(list))
		copy(out, list)
		return out
	}
	out := make([]T, 0, len(list)-1)
	out = append(out, list[:i]...)
	out = append(out, list[i+1:]...)
	return out
}
