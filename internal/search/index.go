// Package search keeps an incremental title index for the board's tickets.
//
// Matching is substring-first: a query selects every title that contains it
// (case-insensitive). Only when nothing contains the query does the index
// fall back to edit distance.
package search

import (
	"sort"
	"strings"

	"tray-kanban/internal/model"
)

const DefaultMaxDistance = 2

// Index maps ids to titles and lowercased titles to the ids sharing them.
type Index struct {
	textByID   map[string]string
	idsByLower map[string]map[string]struct{}

	maxDistance int
}

func NewIndex(maxDistance int) *Index {
	if maxDistance < 0 {
		maxDistance = DefaultMaxDistance
	}
	return &Index{
		textByID:    map[string]string{},
		idsByLower:  map[string]map[string]struct{}{},
		maxDistance: maxDistance,
	}
}

func (x *Index) MaxDistance() int { return x.maxDistance }

// Insert registers text under id. Re-inserting an id replaces its text.
func (x *Index) Insert(text, id string) {
	if _, ok := x.textByID[id]; ok {
		x.Remove(id)
	}
	x.textByID[id] = text
	lower := strings.ToLower(text)
	ids := x.idsByLower[lower]
	if ids == nil {
		ids = map[string]struct{}{}
		x.idsByLower[lower] = ids
	}
	ids[id] = struct{}{}
}

func (x *Index) Remove(id string) {
	text, ok := x.textByID[id]
	if !ok {
		return
	}
	delete(x.textByID, id)
	lower := strings.ToLower(text)
	if ids := x.idsByLower[lower]; ids != nil {
		delete(ids, id)
		if len(ids) == 0 {
			delete(x.idsByLower, lower)
		}
	}
}

func (x *Index) Update(id, text string) {
	x.Remove(id)
	x.Insert(text, id)
}

func (x *Index) Clear() {
	x.textByID = map[string]string{}
	x.idsByLower = map[string]map[string]struct{}{}
}

// Reset replaces the whole index with the given tickets' titles.
func (x *Index) Reset(tickets []model.Ticket) {
	x.Clear()
	for _, t := range tickets {
		x.Insert(t.Name, t.TicketID)
	}
}

func (x *Index) Text(id string) (string, bool) {
	s, ok := x.textByID[id]
	return s, ok
}

func (x *Index) Len() int { return len(x.textByID) }

// IDs returns every indexed id, sorted.
func (x *Index) IDs() []string {
	out := make([]string, 0, len(x.textByID))
	for id := range x.textByID {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Search returns the sorted ids whose titles match query.
func (x *Index) Search(query string) []string {
	if query == "" {
		return x.IDs()
	}
	q := strings.ToLower(query)

	hits := map[string]struct{}{}
	for text, ids := range x.idsByLower {
		if strings.Contains(text, q) {
			for id := range ids {
				hits[id] = struct{}{}
			}
		}
	}
	if len(hits) == 0 {
		for text, ids := range x.idsByLower {
			if x.distance(text, q) <= x.maxDistance {
				for id := range ids {
					hits[id] = struct{}{}
				}
			}
		}
	}

	out := make([]string, 0, len(hits))
	for id := range hits {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Matches applies the same policy as Search to a single text, without
// touching the index.
func (x *Index) Matches(text, query string) bool {
	if query == "" {
		return true
	}
	t := strings.ToLower(text)
	q := strings.ToLower(query)
	if strings.Contains(t, q) {
		return true
	}
	return x.distance(t, q) <= x.maxDistance
}

func (x *Index) distance(a, b string) int {
	return Levenshtein(a, b, x.maxDistance)
}

// Levenshtein returns the edit distance between a and b, counted in runes.
// When the lengths differ by more than limit the exact distance is not
// computed and max(len(a), len(b)) is returned instead. A negative limit
// disables that shortcut.
func Levenshtein(a, b string, limit int) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	if limit >= 0 && abs(len(ra)-len(rb)) > limit {
		return max(len(ra), len(rb))
	}

	prev := make([]int, len(ra)+1)
	cur := make([]int, len(ra)+1)
	for i := range prev {
		prev[i] = i
	}
	for j := 1; j <= len(rb); j++ {
		cur[0] = j
		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[i] = min(cur[i-1]+1, prev[i]+1, prev[i-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(ra)]
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
