// Package board holds the pure state transitions of the kanban board.
//
// Every operation takes the current BoardState and returns the next one.
// On failure the input state comes back unchanged together with an error;
// the input is never modified. A successful operation, and nothing else,
// sets LastOperation.
package board

import (
	"tray-kanban/internal/model"
	"tray-kanban/internal/reorder"
)

type ReorderColumnArgs struct {
	StartIndex  int
	FinishIndex int
}

type ReorderCardArgs struct {
	ColumnID    string
	StartIndex  int
	FinishIndex int
}

type MoveCardArgs struct {
	StartColumnID          string
	FinishColumnID         string
	ItemIndexInStartColumn int
	// ItemIndexInFinishColumn defaults to 0 (newest first) when nil.
	ItemIndexInFinishColumn *int
}

type AddCardArgs struct {
	ColumnID string
	Ticket   model.Ticket
}

type UpdateCardArgs struct {
	ColumnID string
	TicketID string
	Ticket   model.Ticket
}

type DeleteCardArgs struct {
	ColumnID string
	TicketID string
}

func withOperation(s model.BoardState, o model.Outcome, trigger model.Trigger) model.BoardState {
	s.LastOperation = &model.Operation{Outcome: o, Trigger: trigger}
	return s
}

func ReorderColumn(s model.BoardState, a ReorderColumnArgs, trigger model.Trigger) (model.BoardState, error) {
	n := len(s.OrderedColumnIDs)
	if a.StartIndex < 0 || a.StartIndex >= n {
		return s, IndexError{What: "column start", Index: a.StartIndex, Len: n}
	}
	if a.FinishIndex < 0 || a.FinishIndex >= n {
		return s, IndexError{What: "column finish", Index: a.FinishIndex, Len: n}
	}
	if a.StartIndex == a.FinishIndex {
		return s, ErrNoChange
	}

	out := s
	out.OrderedColumnIDs = reorder.Move(s.OrderedColumnIDs, a.StartIndex, a.FinishIndex)
	return withOperation(out, model.Outcome{
		Type:        model.OutcomeColumnReorder,
		ColumnID:    s.OrderedColumnIDs[a.StartIndex],
		StartIndex:  a.StartIndex,
		FinishIndex: a.FinishIndex,
	}, trigger), nil
}

func ReorderCard(s model.BoardState, a ReorderCardArgs, trigger model.Trigger) (model.BoardState, error) {
	col, ok := s.ColumnMap[a.ColumnID]
	if !ok {
		return s, errColumnNotFound(a.ColumnID)
	}
	n := len(col.Items)
	if a.StartIndex < 0 || a.StartIndex >= n {
		return s, IndexError{What: "card start", Index: a.StartIndex, Len: n}
	}
	if a.FinishIndex < 0 || a.FinishIndex >= n {
		return s, IndexError{What: "card finish", Index: a.FinishIndex, Len: n}
	}
	if a.StartIndex == a.FinishIndex {
		return s, ErrNoChange
	}

	moved := col.Items[a.StartIndex].TicketID
	col.Items = reorder.Move(col.Items, a.StartIndex, a.FinishIndex)
	return withOperation(s.WithColumns(col), model.Outcome{
		Type:        model.OutcomeCardReorder,
		ColumnID:    a.ColumnID,
		TicketID:    moved,
		StartIndex:  a.StartIndex,
		FinishIndex: a.FinishIndex,
	}, trigger), nil
}

func MoveCard(s model.BoardState, a MoveCardArgs, trigger model.Trigger) (model.BoardState, error) {
	if a.StartColumnID == a.FinishColumnID {
		return s, ErrNoChange
	}
	src, ok := s.ColumnMap[a.StartColumnID]
	if !ok {
		return s, errColumnNotFound(a.StartColumnID)
	}
	dst, ok := s.ColumnMap[a.FinishColumnID]
	if !ok {
		return s, errColumnNotFound(a.FinishColumnID)
	}
	if a.ItemIndexInStartColumn < 0 || a.ItemIndexInStartColumn >= len(src.Items) {
		return s, IndexError{What: "source card", Index: a.ItemIndexInStartColumn, Len: len(src.Items)}
	}

	item := src.Items[a.ItemIndexInStartColumn]
	finish := 0
	if a.ItemIndexInFinishColumn != nil {
		finish = min(max(*a.ItemIndexInFinishColumn, 0), len(dst.Items))
	}

	src.Items = reorder.Remove(src.Items, a.ItemIndexInStartColumn)
	dst.Items = reorder.Insert(dst.Items, finish, item)

	return withOperation(s.WithColumns(src, dst), model.Outcome{
		Type:                    model.OutcomeCardMove,
		StartColumnID:           a.StartColumnID,
		FinishColumnID:          a.FinishColumnID,
		ItemIndexInStartColumn:  a.ItemIndexInStartColumn,
		ItemIndexInFinishColumn: finish,
		TicketID:                item.TicketID,
	}, trigger), nil
}

func AddCard(s model.BoardState, a AddCardArgs, trigger model.Trigger) (model.BoardState, error) {
	col, ok := s.ColumnMap[a.ColumnID]
	if !ok {
		return s, errColumnNotFound(a.ColumnID)
	}
	if a.Ticket.TicketID == "" {
		return s, ErrMissingTicketID
	}
	if where, _, dup := s.Locate(a.Ticket.TicketID); dup {
		return s, DuplicateError{TicketID: a.Ticket.TicketID, ColumnID: where}
	}

	col.Items = reorder.Insert(col.Items, 0, a.Ticket)
	t := a.Ticket
	return withOperation(s.WithColumns(col), model.Outcome{
		Type:     model.OutcomeCardAdd,
		ColumnID: a.ColumnID,
		TicketID: t.TicketID,
		Ticket:   &t,
	}, trigger), nil
}

func UpdateCard(s model.BoardState, a UpdateCardArgs, trigger model.Trigger) (model.BoardState, error) {
	col, ok := s.ColumnMap[a.ColumnID]
	if !ok {
		return s, errColumnNotFound(a.ColumnID)
	}
	i := col.IndexOf(a.TicketID)
	if i < 0 {
		return s, errTicketNotFound(a.TicketID)
	}

	prev := col.Items[i]
	next := a.Ticket
	next.TicketID = a.TicketID

	items := make([]model.Ticket, len(col.Items))
	copy(items, col.Items)
	items[i] = next
	col.Items = items

	return withOperation(s.WithColumns(col), model.Outcome{
		Type:           model.OutcomeCardUpdate,
		ColumnID:       a.ColumnID,
		TicketID:       a.TicketID,
		Ticket:         &next,
		PreviousTicket: &prev,
	}, trigger), nil
}

func DeleteCard(s model.BoardState, a DeleteCardArgs, trigger model.Trigger) (model.BoardState, error) {
	col, ok := s.ColumnMap[a.ColumnID]
	if !ok {
		return s, errColumnNotFound(a.ColumnID)
	}
	i := col.IndexOf(a.TicketID)
	if i < 0 {
		return s, errTicketNotFound(a.TicketID)
	}

	deleted := col.Items[i]
	col.Items = reorder.Remove(col.Items, i)
	return withOperation(s.WithColumns(col), model.Outcome{
		Type:         model.OutcomeCardDelete,
		ColumnID:     a.ColumnID,
		TicketID:     a.TicketID,
		Ticket:       &deleted,
		DeletedIndex: i,
	}, trigger), nil
}
