package engine

import (
	"errors"

	"tray-kanban/internal/board"
	"tray-kanban/internal/model"
	"tray-kanban/internal/reorder"
)

// Instance identifies one mounted surface. Drags carry the token of the
// instance they started in; tokens are compared by identity only.
type Instance struct{ _ byte }

func NewInstance() *Instance { return &Instance{} }

// ErrForeignDrop is returned for a drop that started in another instance.
var ErrForeignDrop = errors.New("drop from another surface instance")

type DropKind int

const (
	DropCard DropKind = iota
	DropColumn
)

// Drop is a completed pointer gesture.
type Drop struct {
	Instance *Instance
	Kind     DropKind

	// Card drags: the column and index the card came from. Column drags use
	// SourceIndex only.
	SourceColumnID string
	SourceIndex    int

	// TargetColumnID is the column dropped on (card drags). TargetIndex is
	// the element dropped on, or -1 for the list body.
	TargetColumnID string
	TargetIndex    int
	Edge           reorder.Edge
}

func (e *Engine) Drop(d Drop) error {
	if d.Instance != e.instance {
		e.log.Debug("ignoring drop from another instance")
		return ErrForeignDrop
	}
	switch d.Kind {
	case DropColumn:
		n := len(e.state.OrderedColumnIDs)
		finish := d.TargetIndex
		if finish < 0 {
			finish = reorder.EndOfList(n, false)
		} else {
			finish = reorder.DestinationIndex(d.SourceIndex, d.TargetIndex, d.Edge, reorder.AxisHorizontal)
		}
		return e.ReorderColumn(board.ReorderColumnArgs{StartIndex: d.SourceIndex, FinishIndex: finish}, model.TriggerPointer)

	default:
		if d.TargetColumnID == "" || d.TargetColumnID == d.SourceColumnID {
			col, ok := e.state.ColumnMap[d.SourceColumnID]
			if !ok {
				return e.apply(e.state, board.NotFoundError{Kind: "column", ID: d.SourceColumnID})
			}
			finish := d.TargetIndex
			if finish < 0 {
				finish = reorder.EndOfList(len(col.Items), false)
			} else {
				finish = reorder.DestinationIndex(d.SourceIndex, d.TargetIndex, d.Edge, reorder.AxisVertical)
			}
			return e.ReorderCard(board.ReorderCardArgs{ColumnID: d.SourceColumnID, StartIndex: d.SourceIndex, FinishIndex: finish}, model.TriggerPointer)
		}

		dst, ok := e.state.ColumnMap[d.TargetColumnID]
		if !ok {
			return e.apply(e.state, board.NotFoundError{Kind: "column", ID: d.TargetColumnID})
		}
		finish := reorder.InsertionIndex(d.TargetIndex, d.Edge, reorder.AxisVertical)
		if d.TargetIndex < 0 {
			finish = reorder.EndOfList(len(dst.Items), true)
		}
		return e.MoveCard(board.MoveCardArgs{
			StartColumnID:           d.SourceColumnID,
			FinishColumnID:          d.TargetColumnID,
			ItemIndexInStartColumn:  d.SourceIndex,
			ItemIndexInFinishColumn: &finish,
		}, model.TriggerPointer)
	}
}
