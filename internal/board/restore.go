package board

import (
	"fmt"

	"tray-kanban/internal/model"
	"tray-kanban/internal/reorder"
)

// Restore reverses outcome on s. s is normally the live board, which may
// have changed elsewhere since the outcome was applied.
//
// Restore is tolerant: references that no longer resolve are located by id
// where possible, and a deleted ticket is only reinserted if it is absent.
// LastOperation is left untouched.
func Restore(s model.BoardState, o model.Outcome) (model.BoardState, error) {
	switch o.Type {
	case model.OutcomeColumnReorder:
		return restoreColumnReorder(s, o)
	case model.OutcomeCardReorder:
		return restoreCardReorder(s, o)
	case model.OutcomeCardMove:
		return restoreCardMove(s, o)
	case model.OutcomeCardAdd:
		return restoreCardAdd(s, o)
	case model.OutcomeCardUpdate:
		return restoreCardUpdate(s, o)
	case model.OutcomeCardDelete:
		return restoreCardDelete(s, o)
	default:
		return s, fmt.Errorf("restore: unknown outcome type %q", o.Type)
	}
}

func restoreColumnReorder(s model.BoardState, o model.Outcome) (model.BoardState, error) {
	at := s.ColumnIndex(o.ColumnID)
	if at < 0 {
		return s, errColumnNotFound(o.ColumnID)
	}
	n := len(s.OrderedColumnIDs)
	to := min(max(o.StartIndex, 0), n-1)
	if at == to {
		return s, nil
	}
	s.OrderedColumnIDs = reorder.Move(s.OrderedColumnIDs, at, to)
	return s, nil
}

func restoreCardReorder(s model.BoardState, o model.Outcome) (model.BoardState, error) {
	col, ok := s.ColumnMap[o.ColumnID]
	if !ok {
		return s, errColumnNotFound(o.ColumnID)
	}
	n := len(col.Items)
	at := o.FinishIndex
	if o.TicketID != "" && (at < 0 || at >= n || col.Items[at].TicketID != o.TicketID) {
		at = col.IndexOf(o.TicketID)
		if at < 0 {
			return s, errTicketNotFound(o.TicketID)
		}
	}
	if at < 0 || at >= n {
		return s, IndexError{What: "card reorder", Index: at, Len: n}
	}
	to := min(max(o.StartIndex, 0), n-1)
	if at == to {
		return s, nil
	}
	col.Items = reorder.Move(col.Items, at, to)
	return s.WithColumns(col), nil
}

func restoreCardMove(s model.BoardState, o model.Outcome) (model.BoardState, error) {
	src, ok := s.ColumnMap[o.StartColumnID]
	if !ok {
		return s, errColumnNotFound(o.StartColumnID)
	}
	dst, ok := s.ColumnMap[o.FinishColumnID]
	if !ok {
		return s, errColumnNotFound(o.FinishColumnID)
	}

	i := o.ItemIndexInFinishColumn
	if i < 0 || i >= len(dst.Items) || (o.TicketID != "" && dst.Items[i].TicketID != o.TicketID) {
		i = dst.IndexOf(o.TicketID)
	}
	if i < 0 {
		return s, errTicketNotFound(o.TicketID)
	}

	item := dst.Items[i]
	dst.Items = reorder.Remove(dst.Items, i)
	src.Items = reorder.Insert(src.Items, min(o.ItemIndexInStartColumn, len(src.Items)), item)
	return s.WithColumns(src, dst), nil
}

func restoreCardAdd(s model.BoardState, o model.Outcome) (model.BoardState, error) {
	id := o.TicketID
	if id == "" && o.Ticket != nil {
		id = o.Ticket.TicketID
	}
	colID, i, ok := s.Locate(id)
	if !ok {
		return s, errTicketNotFound(id)
	}
	col := s.ColumnMap[colID]
	col.Items = reorder.Remove(col.Items, i)
	return s.WithColumns(col), nil
}

func restoreCardUpdate(s model.BoardState, o model.Outcome) (model.BoardState, error) {
	if o.PreviousTicket == nil {
		return s, fmt.Errorf("restore: card-update for %s has no previous ticket", o.TicketID)
	}
	colID, i, ok := s.Locate(o.TicketID)
	if !ok {
		return s, errTicketNotFound(o.TicketID)
	}
	col := s.ColumnMap[colID]
	items := make([]model.Ticket, len(col.Items))
	copy(items, col.Items)
	items[i] = *o.PreviousTicket
	col.Items = items
	return s.WithColumns(col), nil
}

// restoreCardDelete puts the deleted ticket back at min(deletedIndex, len).
func restoreCardDelete(s model.BoardState, o model.Outcome) (model.BoardState, error) {
	if o.Ticket == nil {
		return s, fmt.Errorf("restore: card-delete for %s has no ticket", o.TicketID)
	}
	col, ok := s.ColumnMap[o.ColumnID]
	if !ok {
		return s, errColumnNotFound(o.ColumnID)
	}
	if _, _, present := s.Locate(o.Ticket.TicketID); present {
		return s, nil
	}
	col.Items = reorder.Insert(col.Items, min(o.DeletedIndex, len(col.Items)), *o.Ticket)
	return s.WithColumns(col), nil
}
