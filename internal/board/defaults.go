package board

import (
	"encoding/json"
	"errors"
	"fmt"

	"tray-kanban/internal/model"
)

const (
	ColumnTodo = "todo"
	ColumnDone = "done"
)

// Default is the board used when nothing has been saved yet.
func Default() model.BoardState {
	todo := model.Column{ColumnID: ColumnTodo, Title: "TODO", Items: []model.Ticket{}}
	done := model.Column{ColumnID: ColumnDone, Title: "Done", Items: []model.Ticket{}}
	return model.BoardState{
		ColumnMap: map[string]model.Column{
			todo.ColumnID: todo,
			done.ColumnID: done,
		},
		OrderedColumnIDs: []string{todo.ColumnID, done.ColumnID},
	}
}

var ErrNoSavedState = errors.New("no saved board state")

// Decode parses persisted or relayed board JSON and checks its invariants.
func Decode(raw []byte) (model.BoardState, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return model.BoardState{}, ErrNoSavedState
	}
	var st model.BoardState
	if err := json.Unmarshal(raw, &st); err != nil {
		return model.BoardState{}, fmt.Errorf("decode board state: %w", err)
	}
	for id, c := range st.ColumnMap {
		if c.Items == nil {
			c.Items = []model.Ticket{}
			st.ColumnMap[id] = c
		}
	}
	if err := st.Validate(); err != nil {
		return model.BoardState{}, fmt.Errorf("invalid board state: %w", err)
	}
	return st, nil
}

// Hydrate is Decode with the fallback applied: anything missing or broken
// yields Default(). The returned error says why the fallback was taken.
func Hydrate(raw []byte) (model.BoardState, error) {
	st, err := Decode(raw)
	if err != nil {
		return Default(), err
	}
	return st, nil
}

func Encode(st model.BoardState) ([]byte, error) {
	return json.Marshal(st)
}
