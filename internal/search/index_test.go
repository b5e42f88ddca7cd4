package search

import (
	"reflect"
	"slices"
	"testing"

	"tray-kanban/internal/model"

	"pgregory.net/rapid"
)

func ticket(id, name string) model.Ticket {
	return model.Ticket{TicketID: id, Name: name}
}

func TestIndex_SearchDeterminism(t *testing.T) {
	t.Parallel()

	x := NewIndex(DefaultMaxDistance)
	x.Reset([]model.Ticket{ticket("a", "Implement cache"), ticket("b", "Write docs")})

	if got, want := x.Search("cache"), []string{"a"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Search(cache) = %v; want %v", got, want)
	}
	if got := x.Search("xyz123"); len(got) != 0 {
		t.Fatalf("Search(xyz123) = %v; want empty", got)
	}
	if got, want := x.Search(""), []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Search(\"\") = %v; want %v", got, want)
	}
}

func TestIndex_SubstringIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	x := NewIndex(DefaultMaxDistance)
	x.Insert("Fix LOGIN bug", "t1")
	if got := x.Search("login"); !reflect.DeepEqual(got, []string{"t1"}) {
		t.Fatalf("got %v", got)
	}
}

func TestIndex_FuzzyFallbackOnlyWithoutSubstringHits(t *testing.T) {
	t.Parallel()

	x := NewIndex(DefaultMaxDistance)
	x.Insert("docs", "d")
	x.Insert("dogs and docs", "e")

	// "dics" is within distance 1 of "docs" and is no substring of anything.
	if got := x.Search("dics"); !reflect.DeepEqual(got, []string{"d"}) {
		t.Fatalf("fuzzy: got %v; want [d]", got)
	}
	// "docs" is a substring of both; no fuzzy widening happens.
	if got := x.Search("docs"); !reflect.DeepEqual(got, []string{"d", "e"}) {
		t.Fatalf("substring: got %v; want [d e]", got)
	}
}

func TestIndex_DuplicateTitlesShareEntry(t *testing.T) {
	t.Parallel()

	x := NewIndex(DefaultMaxDistance)
	x.Insert("Standup", "a")
	x.Insert("standup", "b")
	if got := x.Search("stand"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("got %v", got)
	}

	x.Remove("a")
	if got := x.Search("stand"); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("after remove: got %v", got)
	}
	x.Remove("b")
	if len(x.idsByLower) != 0 {
		t.Fatalf("expected empty text map; got %v", x.idsByLower)
	}
}

func TestIndex_UpdateMovesText(t *testing.T) {
	t.Parallel()

	x := NewIndex(DefaultMaxDistance)
	x.Insert("old name", "a")
	x.Update("a", "brand new")

	if got := x.Search("old name"); len(got) != 0 {
		t.Fatalf("old text still matches: %v", got)
	}
	if got, _ := x.Text("a"); got != "brand new" {
		t.Fatalf("Text(a) = %q", got)
	}
}

func TestIndex_Matches(t *testing.T) {
	t.Parallel()

	x := NewIndex(DefaultMaxDistance)
	cases := []struct {
		text, query string
		want        bool
	}{
		{"anything", "", true},
		{"Write docs", "DOCS", true},
		{"cache", "cahce", true},
		{"cache", "xyz123", false},
	}
	for _, tc := range cases {
		if got := x.Matches(tc.text, tc.query); got != tc.want {
			t.Fatalf("Matches(%q, %q) = %v; want %v", tc.text, tc.query, got, tc.want)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	t.Parallel()

	cases := []struct {
		a, b  string
		limit int
		want  int
	}{
		{"", "abc", 2, 3},
		{"abc", "", 2, 3},
		{"same", "same", 2, 0},
		{"kitten", "sitting", -1, 3},
		{"kitten", "sitting", 2, 3},
		{"ab", "abcdef", 2, 6},
		{"héllo", "hello", 2, 1},
	}
	for _, tc := range cases {
		if got := Levenshtein(tc.a, tc.b, tc.limit); got != tc.want {
			t.Fatalf("Levenshtein(%q, %q, %d) = %d; want %d", tc.a, tc.b, tc.limit, got, tc.want)
		}
	}
}

func TestFilter_IncrementalVisibilityFollowsLiveQuery(t *testing.T) {
	t.Parallel()

	f := NewFilter(DefaultMaxDistance)
	f.Reset([]model.Ticket{ticket("a", "Implement cache")})
	if !f.Visible("a") {
		t.Fatalf("empty query should show everything")
	}

	f.SetQuery("docs")
	if f.Visible("a") {
		t.Fatalf("a should be hidden for query docs")
	}

	f.Add(ticket("b", "Write docs"))
	f.Add(ticket("c", "Refactor parser"))
	if !f.Visible("b") || f.Visible("c") {
		t.Fatalf("visibility after add: b=%v c=%v", f.Visible("b"), f.Visible("c"))
	}

	f.Update(ticket("c", "Parser docs"))
	if !f.Visible("c") {
		t.Fatalf("c should become visible after rename")
	}

	f.Remove("b")
	if f.Visible("b") {
		t.Fatalf("removed id still visible")
	}

	f.SetQuery("")
	if got := f.VisibleIDs(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Fatalf("VisibleIDs = %v", got)
	}
}

// Incremental maintenance must agree with a full rebuild.
func TestIndex_IncrementalMatchesRebuild(t *testing.T) {
	t.Parallel()

	titles := []string{"cache", "Cache", "write docs", "deploy", "dep loy", "fix bug", ""}
	rapid.Check(t, func(t *rapid.T) {
		x := NewIndex(DefaultMaxDistance)
		live := map[string]string{}
		steps := rapid.IntRange(0, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			id := rapid.SampledFrom([]string{"a", "b", "c", "d"}).Draw(t, "id")
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				text := rapid.SampledFrom(titles).Draw(t, "text")
				x.Insert(text, id)
				live[id] = text
			case 1:
				x.Remove(id)
				delete(live, id)
			case 2:
				text := rapid.SampledFrom(titles).Draw(t, "text")
				x.Update(id, text)
				live[id] = text
			}
		}

		fresh := NewIndex(DefaultMaxDistance)
		for id, text := range live {
			fresh.Insert(text, id)
		}
		query := rapid.SampledFrom(append(titles, "cahce", "zzz")).Draw(t, "query")
		got, want := x.Search(query), fresh.Search(query)
		if !slices.Equal(got, want) {
			t.Fatalf("Search(%q): incremental %v, rebuilt %v", query, got, want)
		}
	})
}
