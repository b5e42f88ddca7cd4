// Package history keeps the bounded undo stack of board snapshots.
//
// Snapshots are taken after each mutation. Undo reverses the mutation the
// newest snapshot recorded (see board.Restore) on the live board.
// A Manager is not safe for concurrent use.
package history

import (
	"errors"
	"fmt"
	"time"

	"tray-kanban/internal/board"
	"tray-kanban/internal/model"
)

const DefaultLimit = 20

var ErrNothingToUndo = errors.New("nothing to undo")

type Manager struct {
	limit   int
	entries []model.HistoryEntry

	now func() time.Time
}

// New returns a Manager holding at most limit entries (DefaultLimit if
// limit <= 0).
func New(limit int) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Manager{limit: limit, now: time.Now}
}

func (m *Manager) Limit() int { return m.limit }

// Push records state. States produced by undo are skipped so they are never
// undone again, and the oldest entry is evicted beyond the limit.
func (m *Manager) Push(state model.BoardState) bool {
	if state.LastOperation != nil && state.LastOperation.Trigger == model.TriggerUndo {
		return false
	}
	m.entries = append(m.entries, model.HistoryEntry{State: state, Timestamp: m.now()})
	if over := len(m.entries) - m.limit; over > 0 {
		// Shift into a fresh slice so evicted snapshots can be collected.
		kept := make([]model.HistoryEntry, m.limit, m.limit+1)
		copy(kept, m.entries[over:])
		m.entries = kept
	}
	return true
}

func (m *Manager) Pop() (model.HistoryEntry, bool) {
	if len(m.entries) == 0 {
		return model.HistoryEntry{}, false
	}
	last := m.entries[len(m.entries)-1]
	m.entries[len(m.entries)-1] = model.HistoryEntry{}
	m.entries = m.entries[:len(m.entries)-1]
	return last, true
}

func (m *Manager) Len() int { return len(m.entries) }

// Entries returns the snapshots oldest first.
func (m *Manager) Entries() []model.HistoryEntry {
	out := make([]model.HistoryEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *Manager) Clear() { m.entries = nil }

// Undo reverses the newest recorded mutation on current, so changes that
// arrived from elsewhere since then survive. Only when current no longer
// holds what the mutation touched does it fall back to the snapshot. With
// an empty history it returns current unchanged and ErrNothingToUndo.
func (m *Manager) Undo(current model.BoardState) (model.BoardState, error) {
	entry, ok := m.Pop()
	if !ok {
		return current, ErrNothingToUndo
	}
	snap := entry.State
	if snap.LastOperation == nil {
		return snap, nil
	}

	op := *snap.LastOperation
	restored, err := board.Restore(current, op.Outcome)
	if err != nil {
		restored, err = board.Restore(snap, op.Outcome)
		if err != nil {
			// The snapshot itself is still a consistent board.
			restored = snap
			err = fmt.Errorf("undo %s: %w", op.Outcome.Type, err)
		}
	}
	op.Trigger = model.TriggerUndo
	restored.LastOperation = &op
	return restored, err
}
