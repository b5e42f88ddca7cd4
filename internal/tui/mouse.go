package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"tray-kanban/internal/engine"
	"tray-kanban/internal/reorder"
)

// dragState is a pointer drag in progress. It remembers the engine
// instance it started on.
type dragState struct {
	instance *engine.Instance
	kind     engine.DropKind
	colIdx   int
	colID    string
	index    int // board index of the card
	ticketID string
}

type hitKind int

const (
	hitNone hitKind = iota
	hitHeader
	hitCard
	hitBody
)

type hit struct {
	kind   hitKind
	colIdx int
	// card is the visible index for hitCard.
	card int
	edge reorder.Edge
	// side is the horizontal half of the column that was hit.
	side reorder.Edge
}

func (m appModel) hitTest(x, y int) hit {
	shown := m.displayed()
	if len(shown) == 0 || y < 0 {
		return hit{}
	}
	colW := m.columnWidth()
	slot := x / colW
	if slot >= len(shown) || x >= len(shown)*colW {
		return hit{}
	}
	ci := shown[slot]
	side := reorder.EdgeLeft
	if x%colW >= colW/2 {
		side = reorder.EdgeRight
	}

	switch {
	case y == 1:
		return hit{kind: hitHeader, colIdx: ci, edge: side, side: side}
	case y >= headerRows && y < headerRows+m.bodyHeight():
		cols := m.eng.VisibleColumns()
		n := len(cols[ci].Items)
		rel := y - headerRows
		card := rel/cardHeight + m.offsetFor(ci, n)
		if rel/cardHeight >= m.capacity() || card >= n {
			return hit{kind: hitBody, colIdx: ci, card: -1, side: side}
		}
		edge := reorder.EdgeTop
		if rel%cardHeight == cardHeight-1 {
			edge = reorder.EdgeBottom
		}
		return hit{kind: hitCard, colIdx: ci, card: card, edge: edge, side: side}
	}
	return hit{}
}

// boardIndex maps a visible card to its index on the unfiltered board.
func (m appModel) boardIndex(colIdx, visible int) (string, int, bool) {
	cols := m.eng.VisibleColumns()
	if colIdx >= len(cols) || visible < 0 || visible >= len(cols[colIdx].Items) {
		return "", -1, false
	}
	id := cols[colIdx].Items[visible].TicketID
	_, i, ok := m.eng.State().Locate(id)
	return id, i, ok
}

func (m appModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeBoard {
		return m, nil
	}
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.row--
		m.clamp()
		return m, nil
	case msg.Button == tea.MouseButtonWheelDown:
		m.row++
		m.clamp()
		return m, nil

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		h := m.hitTest(msg.X, msg.Y)
		switch h.kind {
		case hitCard:
			id, i, ok := m.boardIndex(h.colIdx, h.card)
			if !ok {
				return m, nil
			}
			m.col, m.row = h.colIdx, h.card
			m.drag = &dragState{
				instance: m.eng.Instance(),
				kind:     engine.DropCard,
				colIdx:   h.colIdx,
				colID:    m.eng.State().OrderedColumnIDs[h.colIdx],
				index:    i,
				ticketID: id,
			}
		case hitHeader:
			m.col = h.colIdx
			m.clamp()
			if !m.compact {
				m.drag = &dragState{instance: m.eng.Instance(), kind: engine.DropColumn, colIdx: h.colIdx}
			}
		}
		return m, nil

	case msg.Action == tea.MouseActionRelease:
		d := m.drag
		m.drag = nil
		if d == nil {
			return m, nil
		}
		drop, ok := m.resolveDrop(d, m.hitTest(msg.X, msg.Y))
		if !ok {
			return m, nil
		}
		err := m.eng.Drop(drop)
		if d.kind == engine.DropCard {
			m.follow(d.ticketID)
		} else {
			m.col = m.eng.State().ColumnIndex(drop.SourceColumnID)
			m.clamp()
		}
		return m, m.report(err)
	}
	return m, nil
}

// resolveDrop turns the release point into an engine.Drop. Releasing a
// card on itself resolves to nothing.
func (m appModel) resolveDrop(d *dragState, h hit) (engine.Drop, bool) {
	state := m.eng.State()
	switch d.kind {
	case engine.DropColumn:
		if h.kind == hitNone || h.colIdx == d.colIdx {
			return engine.Drop{}, false
		}
		return engine.Drop{
			Instance:       d.instance,
			Kind:           engine.DropColumn,
			SourceColumnID: state.OrderedColumnIDs[d.colIdx],
			SourceIndex:    d.colIdx,
			TargetIndex:    h.colIdx,
			Edge:           h.side,
		}, true

	default:
		drop := engine.Drop{
			Instance:       d.instance,
			Kind:           engine.DropCard,
			SourceColumnID: d.colID,
			SourceIndex:    d.index,
		}
		switch h.kind {
		case hitCard:
			id, i, ok := m.boardIndex(h.colIdx, h.card)
			if !ok || id == d.ticketID {
				return engine.Drop{}, false
			}
			drop.TargetColumnID = state.OrderedColumnIDs[h.colIdx]
			drop.TargetIndex = i
			drop.Edge = h.edge
		case hitHeader:
			// Dropping on the header puts the card on top.
			drop.TargetColumnID = state.OrderedColumnIDs[h.colIdx]
			drop.TargetIndex = -1
			if len(state.ColumnMap[drop.TargetColumnID].Items) > 0 {
				drop.TargetIndex = 0
				drop.Edge = reorder.EdgeTop
			}
		case hitBody:
			drop.TargetColumnID = state.OrderedColumnIDs[h.colIdx]
			drop.TargetIndex = -1
		default:
			return engine.Drop{}, false
		}
		return drop, true
	}
}
