package model

import "testing"

func TestBoardState_Validate(t *testing.T) {
	t.Parallel()

	good := func() BoardState {
		return BoardState{
			ColumnMap: map[string]Column{
				"a": {ColumnID: "a", Items: []Ticket{{TicketID: "1"}}},
				"b": {ColumnID: "b", Items: []Ticket{{TicketID: "2"}}},
			},
			OrderedColumnIDs: []string{"a", "b"},
		}
	}
	if err := good().Validate(); err != nil {
		t.Fatalf("valid board rejected: %v", err)
	}

	cases := map[string]func(*BoardState){
		"extra ordered id": func(s *BoardState) { s.OrderedColumnIDs = append(s.OrderedColumnIDs, "c") },
		"duplicate order":  func(s *BoardState) { s.OrderedColumnIDs = []string{"a", "a"} },
		"key mismatch": func(s *BoardState) {
			s.ColumnMap["b"] = Column{ColumnID: "z"}
		},
		"duplicate ticket": func(s *BoardState) {
			s.ColumnMap["b"] = Column{ColumnID: "b", Items: []Ticket{{TicketID: "1"}}}
		},
		"empty ticket id": func(s *BoardState) {
			s.ColumnMap["a"] = Column{ColumnID: "a", Items: []Ticket{{}}}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := good()
			mutate(&s)
			if err := s.Validate(); err == nil {
				t.Fatalf("expected violation")
			}
		})
	}
}

func TestBoardState_LocateAndWithColumns(t *testing.T) {
	t.Parallel()

	s := BoardState{
		ColumnMap: map[string]Column{
			"a": {ColumnID: "a", Items: []Ticket{{TicketID: "1"}, {TicketID: "2"}}},
			"b": {ColumnID: "b"},
		},
		OrderedColumnIDs: []string{"a", "b"},
	}
	col, i, ok := s.Locate("2")
	if !ok || col != "a" || i != 1 {
		t.Fatalf("Locate = %q %d %v", col, i, ok)
	}
	if _, _, ok := s.Locate("9"); ok {
		t.Fatalf("Locate found a missing ticket")
	}

	next := s.WithColumns(Column{ColumnID: "b", Items: []Ticket{{TicketID: "3"}}})
	if len(s.ColumnMap["b"].Items) != 0 {
		t.Fatalf("WithColumns mutated the original map")
	}
	if got := len(next.Tickets()); got != 3 {
		t.Fatalf("Tickets() = %d; want 3", got)
	}
	if s.ColumnIndex("b") != 1 || s.ColumnIndex("nope") != -1 {
		t.Fatalf("ColumnIndex mismatch")
	}
}
