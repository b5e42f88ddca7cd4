package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const uiStateFileName = "ui_state.json"

// Store is the data directory of one board. It carries the small files that
// are not part of the synchronized board (per-surface UI state).
type Store struct {
	Dir string
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

// SurfaceUIState is what a surface restores on relaunch.
type SurfaceUIState struct {
	SelectedColumnID string `json:"selectedColumnId,omitempty"`
	SelectedTicketID string `json:"selectedTicketId,omitempty"`
	Query            string `json:"query,omitempty"`
	ShowDetail       bool   `json:"showDetail,omitempty"`
}

// UIState is best effort: callers should tolerate missing or invalid data.
type UIState struct {
	Version  int                       `json:"version"`
	Surfaces map[string]SurfaceUIState `json:"surfaces,omitempty"`
}

func (st *UIState) Surface(id string) SurfaceUIState {
	if st == nil || st.Surfaces == nil {
		return SurfaceUIState{}
	}
	return st.Surfaces[id]
}

func (st *UIState) SetSurface(id string, v SurfaceUIState) {
	if st.Surfaces == nil {
		st.Surfaces = map[string]SurfaceUIState{}
	}
	st.Surfaces[id] = v
}

func (s Store) uiStatePath() string {
	return filepath.Join(s.Dir, uiStateFileName)
}

func (s Store) LoadUIState() (*UIState, error) {
	if strings.TrimSpace(s.Dir) == "" {
		return &UIState{Version: 1}, nil
	}
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.uiStatePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &UIState{Version: 1}, nil
		}
		return nil, err
	}
	var st UIState
	if err := json.Unmarshal(b, &st); err != nil {
		// Corrupted: treat as missing.
		return &UIState{Version: 1}, nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	return &st, nil
}

// SaveSurfaceUIState merges one surface's state into the file, leaving the
// other surface's entry alone.
func (s Store) SaveSurfaceUIState(id string, v SurfaceUIState) error {
	if strings.TrimSpace(s.Dir) == "" {
		return nil
	}
	st, err := s.LoadUIState()
	if err != nil {
		return err
	}
	st.SetSurface(id, v)
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(s.Dir, uiStateFileName+".*.tmp", s.uiStatePath(), b, 0o644)
}
