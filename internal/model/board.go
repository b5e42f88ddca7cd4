package model

import (
	"fmt"
	"slices"
)

// BoardState is an immutable snapshot of the whole board. Mutations build a
// new BoardState that shares every column it did not touch, so older
// snapshots stay valid.
type BoardState struct {
	ColumnMap        map[string]Column `json:"columnMap"`
	OrderedColumnIDs []string          `json:"orderedColumnIds"`
	LastOperation    *Operation        `json:"lastOperation"`
}

// Columns returns the columns in display order.
func (s BoardState) Columns() []Column {
	out := make([]Column, 0, len(s.OrderedColumnIDs))
	for _, id := range s.OrderedColumnIDs {
		if c, ok := s.ColumnMap[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Tickets returns every ticket on the board in display order.
func (s BoardState) Tickets() []Ticket {
	var out []Ticket
	for _, c := range s.Columns() {
		out = append(out, c.Items...)
	}
	return out
}

// Locate returns the column id and index of ticketID.
func (s BoardState) Locate(ticketID string) (string, int, bool) {
	for _, id := range s.OrderedColumnIDs {
		if i := s.ColumnMap[id].IndexOf(ticketID); i >= 0 {
			return id, i, true
		}
	}
	return "", -1, false
}

// ColumnIndex returns the display position of columnID, or -1.
func (s BoardState) ColumnIndex(columnID string) int {
	return slices.Index(s.OrderedColumnIDs, columnID)
}

// WithColumns returns a copy of s whose column map holds the given
// replacements. The map is copied; untouched columns are shared.
func (s BoardState) WithColumns(cols ...Column) BoardState {
	m := make(map[string]Column, len(s.ColumnMap))
	for k, v := range s.ColumnMap {
		m[k] = v
	}
	for _, c := range cols {
		m[c.ColumnID] = c
	}
	s.ColumnMap = m
	return s
}

// Validate reports the first structural invariant violation, if any.
func (s BoardState) Validate() error {
	if len(s.OrderedColumnIDs) != len(s.ColumnMap) {
		return fmt.Errorf("orderedColumnIds has %d ids, columnMap has %d columns", len(s.OrderedColumnIDs), len(s.ColumnMap))
	}
	seenCols := make(map[string]bool, len(s.OrderedColumnIDs))
	for _, id := range s.OrderedColumnIDs {
		if seenCols[id] {
			return fmt.Errorf("duplicate column id in order: %s", id)
		}
		seenCols[id] = true
		c, ok := s.ColumnMap[id]
		if !ok {
			return fmt.Errorf("ordered column missing from columnMap: %s", id)
		}
		if c.ColumnID != id {
			return fmt.Errorf("column keyed %s carries id %s", id, c.ColumnID)
		}
	}
	seenTickets := map[string]string{}
	for _, id := range s.OrderedColumnIDs {
		for _, t := range s.ColumnMap[id].Items {
			if t.TicketID == "" {
				return fmt.Errorf("ticket without id in column %s", id)
			}
			if prev, dup := seenTickets[t.TicketID]; dup {
				return fmt.Errorf("ticket %s appears in %s and %s", t.TicketID, prev, id)
			}
			seenTickets[t.TicketID] = id
		}
	}
	return nil
}
