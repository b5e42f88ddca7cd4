package engine

import (
	"tray-kanban/internal/board"
	"tray-kanban/internal/model"
)

// MoveCardVertical moves a card delta positions within its column,
// clamped to the column bounds.
func (e *Engine) MoveCardVertical(ticketID string, delta int) error {
	colID, i, ok := e.state.Locate(ticketID)
	if !ok {
		return e.apply(e.state, board.NotFoundError{Kind: "ticket", ID: ticketID})
	}
	n := len(e.state.ColumnMap[colID].Items)
	finish := min(max(i+delta, 0), n-1)
	return e.ReorderCard(board.ReorderCardArgs{ColumnID: colID, StartIndex: i, FinishIndex: finish}, model.TriggerKeyboard)
}

// MoveCardToColumn moves a card to the top of another column.
func (e *Engine) MoveCardToColumn(ticketID, toColumnID string) error {
	colID, i, ok := e.state.Locate(ticketID)
	if !ok {
		return e.apply(e.state, board.NotFoundError{Kind: "ticket", ID: ticketID})
	}
	return e.MoveCard(board.MoveCardArgs{
		StartColumnID:          colID,
		FinishColumnID:         toColumnID,
		ItemIndexInStartColumn: i,
	}, model.TriggerKeyboard)
}

// MoveCardSideways moves a card to the column delta positions away.
func (e *Engine) MoveCardSideways(ticketID string, delta int) error {
	colID, _, ok := e.state.Locate(ticketID)
	if !ok {
		return e.apply(e.state, board.NotFoundError{Kind: "ticket", ID: ticketID})
	}
	at := e.state.ColumnIndex(colID)
	to := min(max(at+delta, 0), len(e.state.OrderedColumnIDs)-1)
	return e.MoveCardToColumn(ticketID, e.state.OrderedColumnIDs[to])
}

// MoveColumn shifts a column delta positions, clamped.
func (e *Engine) MoveColumn(columnID string, delta int) error {
	at := e.state.ColumnIndex(columnID)
	if at < 0 {
		return e.apply(e.state, board.NotFoundError{Kind: "column", ID: columnID})
	}
	to := min(max(at+delta, 0), len(e.state.OrderedColumnIDs)-1)
	return e.ReorderColumn(board.ReorderColumnArgs{StartIndex: at, FinishIndex: to}, model.TriggerKeyboard)
}
