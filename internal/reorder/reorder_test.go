package reorder

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"
)

func TestDestinationIndex(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name          string
		start, target int
		edge          Edge
		axis          Axis
		want          int
	}{
		{"same index", 2, 2, EdgeBottom, AxisVertical, 2},
		{"missing start", -1, 3, EdgeTop, AxisVertical, -1},
		{"missing target", 1, -1, EdgeTop, AxisVertical, 1},
		{"no edge uses target", 0, 4, EdgeNone, AxisVertical, 4},
		{"top moving down", 0, 3, EdgeTop, AxisVertical, 2},
		{"bottom moving down", 0, 3, EdgeBottom, AxisVertical, 3},
		{"top moving up", 4, 1, EdgeTop, AxisVertical, 1},
		{"bottom moving up", 4, 1, EdgeBottom, AxisVertical, 2},
		{"left moving right", 0, 2, EdgeLeft, AxisHorizontal, 1},
		{"right moving right", 0, 2, EdgeRight, AxisHorizontal, 2},
		{"right moving left", 3, 0, EdgeRight, AxisHorizontal, 1},
		{"foreign edge counts as before", 3, 0, EdgeBottom, AxisHorizontal, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DestinationIndex(tc.start, tc.target, tc.edge, tc.axis)
			if got != tc.want {
				t.Fatalf("DestinationIndex(%d, %d, %q, %q) = %d; want %d", tc.start, tc.target, tc.edge, tc.axis, got, tc.want)
			}
		})
	}
}

func TestInsertionIndexAndEndOfList(t *testing.T) {
	t.Parallel()

	if got := InsertionIndex(2, EdgeBottom, AxisVertical); got != 3 {
		t.Fatalf("bottom insertion: got %d; want 3", got)
	}
	if got := InsertionIndex(2, EdgeTop, AxisVertical); got != 2 {
		t.Fatalf("top insertion: got %d; want 2", got)
	}
	if got := InsertionIndex(-1, EdgeBottom, AxisVertical); got != 0 {
		t.Fatalf("missing target insertion: got %d; want 0", got)
	}
	if got := EndOfList(5, false); got != 4 {
		t.Fatalf("EndOfList same list: got %d; want 4", got)
	}
	if got := EndOfList(5, true); got != 5 {
		t.Fatalf("EndOfList cross list: got %d; want 5", got)
	}
	if got := EndOfList(0, false); got != 0 {
		t.Fatalf("EndOfList empty: got %d; want 0", got)
	}
}

func TestMove(t *testing.T) {
	t.Parallel()

	in := []string{"a", "b", "c", "d"}
	if got, want := Move(in, 0, 2), []string{"b", "c", "a", "d"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("forward move: got %v; want %v", got, want)
	}
	if got, want := Move(in, 3, 1), []string{"a", "d", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("backward move: got %v; want %v", got, want)
	}
	if got := Move(in, 1, 9); !reflect.DeepEqual(got, in) {
		t.Fatalf("out of range move should copy unchanged; got %v", got)
	}
	if !reflect.DeepEqual(in, []string{"a", "b", "c", "d"}) {
		t.Fatalf("input mutated: %v", in)
	}
}

func TestInsertRemove(t *testing.T) {
	t.Parallel()

	in := []int{1, 2, 3}
	if got, want := Insert(in, 1, 9), []int{1, 9, 2, 3}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Insert: got %v; want %v", got, want)
	}
	if got, want := Insert(in, 10, 9), []int{1, 2, 3, 9}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Insert clamped: got %v; want %v", got, want)
	}
	if got, want := Remove(in, 0), []int{2, 3}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Remove: got %v; want %v", got, want)
	}
	if got := Remove(in, 5); !reflect.DeepEqual(got, in) {
		t.Fatalf("Remove out of range: got %v", got)
	}
}

// Dropping an element on the spot it already lands on must never produce a move.
func TestDestinationIndex_DropOnSelfIsNoop(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 30).Draw(t, "n")
		start := rapid.IntRange(0, n-1).Draw(t, "start")
		edge := rapid.SampledFrom([]Edge{EdgeNone, EdgeTop, EdgeBottom}).Draw(t, "edge")

		if got := DestinationIndex(start, start, edge, AxisVertical); got != start {
			t.Fatalf("drop on self moved %d -> %d", start, got)
		}

		target := rapid.IntRange(0, n-1).Draw(t, "target")
		got := DestinationIndex(start, target, edge, AxisVertical)
		if got < 0 || got > n-1 {
			t.Fatalf("finish index %d out of range for n=%d", got, n)
		}
		if again := DestinationIndex(start, target, edge, AxisVertical); again != got {
			t.Fatalf("not deterministic: %d vs %d", got, again)
		}
	})
}
