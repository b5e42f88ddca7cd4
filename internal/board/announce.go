package board

import (
	"fmt"

	"tray-kanban/internal/model"
)

// Announce returns the status line for the last operation on s, or "" when
// nothing should be announced. Pointer-driven card moves are silent (the
// user watched them happen); keyboard moves and undo are spelled out.
func Announce(s model.BoardState) string {
	op := s.LastOperation
	if op == nil {
		return ""
	}
	o := op.Outcome

	if op.Trigger == model.TriggerUndo {
		return "Undid " + describe(o)
	}

	switch o.Type {
	case model.OutcomeColumnReorder:
		col, ok := s.ColumnMap[o.ColumnID]
		if !ok {
			return ""
		}
		return fmt.Sprintf("You've moved %s from position %d to position %d of %d.",
			col.Title, o.StartIndex+1, o.FinishIndex+1, len(s.OrderedColumnIDs))

	case model.OutcomeCardReorder:
		if op.Trigger != model.TriggerKeyboard {
			return ""
		}
		col, ok := s.ColumnMap[o.ColumnID]
		if !ok || o.FinishIndex >= len(col.Items) {
			return ""
		}
		return fmt.Sprintf("You've moved %s from position %d to position %d of %d in the %s column.",
			col.Items[o.FinishIndex].Name, o.StartIndex+1, o.FinishIndex+1, len(col.Items), col.Title)

	case model.OutcomeCardMove:
		if op.Trigger != model.TriggerKeyboard {
			return ""
		}
		col, ok := s.ColumnMap[o.FinishColumnID]
		if !ok || o.ItemIndexInFinishColumn >= len(col.Items) {
			return ""
		}
		return fmt.Sprintf("You've moved %s from position %d to position %d in the %s column.",
			col.Items[o.ItemIndexInFinishColumn].Name, o.ItemIndexInStartColumn+1, o.ItemIndexInFinishColumn+1, col.Title)

	case model.OutcomeCardAdd:
		if o.Ticket == nil {
			return ""
		}
		return fmt.Sprintf("Added %s.", o.Ticket.Name)

	case model.OutcomeCardDelete:
		if o.Ticket == nil {
			return ""
		}
		return fmt.Sprintf("Deleted %s. Press u to undo.", o.Ticket.Name)
	}
	return ""
}

func describe(o model.Outcome) string {
	switch o.Type {
	case model.OutcomeColumnReorder:
		return "column reorder."
	case model.OutcomeCardReorder:
		return "card reorder."
	case model.OutcomeCardMove:
		return "card move."
	case model.OutcomeCardAdd:
		return "card add."
	case model.OutcomeCardUpdate:
		return "card edit."
	case model.OutcomeCardDelete:
		if o.Ticket != nil {
			return fmt.Sprintf("delete of %s.", o.Ticket.Name)
		}
		return "delete."
	}
	return string(o.Type) + "."
}
