// Package engine is the per-surface session around the board: it applies
// operations, keeps the undo history and the search filter in step with the
// board, and publishes every local change through the optional bridge.
//
// An Engine is not safe for concurrent use. Inbound bridge messages are
// handed to the caller's post function so they run on the same goroutine as
// local operations (see Listen).
package engine

import (
	"context"
	"errors"
	"log/slog"

	"tray-kanban/internal/board"
	"tray-kanban/internal/bridge"
	"tray-kanban/internal/history"
	"tray-kanban/internal/model"
	"tray-kanban/internal/relay"
	"tray-kanban/internal/search"
)

type Options struct {
	Surface relay.SurfaceID
	// Bridge may be nil: the engine then works local-only.
	Bridge            bridge.Bridge
	HistoryLimit      int
	// SearchMaxDistance is the per-query edit distance; nil means
	// search.DefaultMaxDistance and a pointer to 0 turns fuzzy matching off.
	SearchMaxDistance *int
	Logger            *slog.Logger
	// Announce receives user-facing status lines (keyboard moves, undo).
	Announce func(string)
}

type Engine struct {
	surface  relay.SurfaceID
	state    model.BoardState
	history  *history.Manager
	filter   *search.Filter
	bridge   bridge.Bridge
	log      *slog.Logger
	instance *Instance
	announce func(string)
}

func New(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	surface := opts.Surface
	if surface == "" {
		surface = relay.SurfaceMain
	}
	dist := search.DefaultMaxDistance
	if opts.SearchMaxDistance != nil && *opts.SearchMaxDistance >= 0 {
		dist = *opts.SearchMaxDistance
	}
	e := &Engine{
		surface:  surface,
		state:    board.Default(),
		history:  history.New(opts.HistoryLimit),
		filter:   search.NewFilter(dist),
		bridge:   opts.Bridge,
		log:      log.With("component", "engine", "surface", surface),
		instance: NewInstance(),
		announce: opts.Announce,
	}
	e.filter.Reset(e.state.Tickets())
	return e
}

func (e *Engine) Surface() relay.SurfaceID   { return e.surface }
func (e *Engine) State() model.BoardState    { return e.state }
func (e *Engine) Columns() []model.Column    { return e.state.Columns() }
func (e *Engine) History() *history.Manager  { return e.history }
func (e *Engine) Instance() *Instance        { return e.instance }
func (e *Engine) Connected() bool            { return e.bridge != nil }
func (e *Engine) SetAnnounce(fn func(string)) { e.announce = fn }

// apply installs the result of a board operation. Failures leave the
// engine untouched; they are logged and returned.
func (e *Engine) apply(next model.BoardState, err error) error {
	if err != nil {
		if errors.Is(err, board.ErrNoChange) {
			e.log.Debug("operation had no effect", "err", err)
		} else {
			e.log.Warn("operation rejected", "err", err, "stale", board.IsStale(err))
		}
		return err
	}
	e.commit(next)
	return nil
}

func (e *Engine) commit(next model.BoardState) {
	e.state = next
	op := next.LastOperation
	if op != nil && op.Trigger != model.TriggerUndo {
		e.history.Push(next)
	}
	e.syncSearch(op)
	e.publish()
	e.say(board.Announce(next))
}

func (e *Engine) syncSearch(op *model.Operation) {
	if op == nil || op.Trigger == model.TriggerUndo {
		e.filter.Reset(e.state.Tickets())
		return
	}
	o := op.Outcome
	switch o.Type {
	case model.OutcomeCardAdd:
		if o.Ticket != nil {
			e.filter.Add(*o.Ticket)
		}
	case model.OutcomeCardUpdate:
		if o.Ticket != nil {
			e.filter.Update(*o.Ticket)
		}
	case model.OutcomeCardDelete:
		e.filter.Remove(o.TicketID)
	}
}

func (e *Engine) publish() {
	if e.bridge == nil {
		return
	}
	raw, err := board.Encode(e.state)
	if err != nil {
		e.log.Error("encode board state", "err", err)
		return
	}
	if err := e.bridge.Send(relay.TopicSyncState, raw); err != nil {
		e.log.Warn("publish board state", "err", err)
	}
}

func (e *Engine) say(msg string) {
	if msg != "" && e.announce != nil {
		e.announce(msg)
	}
}

func (e *Engine) ReorderColumn(a board.ReorderColumnArgs, trigger model.Trigger) error {
	return e.apply(board.ReorderColumn(e.state, a, trigger))
}

func (e *Engine) ReorderCard(a board.ReorderCardArgs, trigger model.Trigger) error {
	return e.apply(board.ReorderCard(e.state, a, trigger))
}

func (e *Engine) MoveCard(a board.MoveCardArgs, trigger model.Trigger) error {
	return e.apply(board.MoveCard(e.state, a, trigger))
}

func (e *Engine) AddCard(columnID string, t model.Ticket, trigger model.Trigger) error {
	return e.apply(board.AddCard(e.state, board.AddCardArgs{ColumnID: columnID, Ticket: t}, trigger))
}

func (e *Engine) UpdateCard(columnID, ticketID string, t model.Ticket, trigger model.Trigger) error {
	return e.apply(board.UpdateCard(e.state, board.UpdateCardArgs{ColumnID: columnID, TicketID: ticketID, Ticket: t}, trigger))
}

func (e *Engine) DeleteCard(columnID, ticketID string, trigger model.Trigger) error {
	return e.apply(board.DeleteCard(e.state, board.DeleteCardArgs{ColumnID: columnID, TicketID: ticketID}, trigger))
}

// Undo reverts the newest local operation. With an empty history the board
// is left alone and history.ErrNothingToUndo is returned.
func (e *Engine) Undo() error {
	next, err := e.history.Undo(e.state)
	if errors.Is(err, history.ErrNothingToUndo) {
		e.say("Nothing to undo.")
		return err
	}
	if err != nil {
		// The snapshot was still restored; keep going with it.
		e.log.Warn("undo could not fully reverse the operation", "err", err)
	}
	e.commit(next)
	return err
}

// ApplyRemote replaces the board with a state another surface published.
// The history is kept and nothing is re-published.
func (e *Engine) ApplyRemote(raw []byte) error {
	st, err := board.Decode(raw)
	if err != nil {
		e.log.Warn("ignoring remote board state", "err", err)
		return err
	}
	e.state = st
	e.filter.Reset(st.Tickets())
	return nil
}

// Hydrate pulls the current board from the relay once at startup. Missing
// or malformed state yields the default board.
func (e *Engine) Hydrate(ctx context.Context) error {
	var raw []byte
	if e.bridge != nil {
		var err error
		raw, err = e.bridge.BoardState(ctx)
		if err != nil {
			e.log.Warn("pull board state", "err", err)
		}
	}
	st, err := board.Hydrate(raw)
	if err != nil && !errors.Is(err, board.ErrNoSavedState) {
		e.log.Warn("no usable saved board; starting from default", "err", err)
	}
	e.state = st
	e.filter.Reset(st.Tickets())
	return nil
}

// Listen routes inbound bridge messages through post, which must run the
// given function on the goroutine that owns the engine.
func (e *Engine) Listen(post func(func())) {
	if e.bridge == nil {
		return
	}
	e.bridge.Receive(relay.TopicSyncStateUpdate, func(m relay.Message) {
		raw := []byte(m.Payload)
		post(func() { _ = e.ApplyRemote(raw) })
	})
	e.bridge.Receive(relay.TopicPerformUndo, func(relay.Message) {
		post(func() { _ = e.Undo() })
	})
}

func (e *Engine) SetQuery(q string)      { e.filter.SetQuery(q) }
func (e *Engine) Query() string          { return e.filter.Query() }
func (e *Engine) Filtered() bool         { return e.filter.Filtered() }
func (e *Engine) Visible(id string) bool { return e.filter.Visible(id) }
func (e *Engine) VisibleIDs() []string   { return e.filter.VisibleIDs() }

// VisibleColumns returns the columns in display order with hidden tickets
// removed. Indices into these items are not board indices; map back
// through TicketID.
func (e *Engine) VisibleColumns() []model.Column {
	cols := e.state.Columns()
	if !e.filter.Filtered() {
		return cols
	}
	out := make([]model.Column, 0, len(cols))
	for _, c := range cols {
		items := make([]model.Ticket, 0, len(c.Items))
		for _, t := range c.Items {
			if e.filter.Visible(t.TicketID) {
				items = append(items, t)
			}
		}
		c.Items = items
		out = append(out, c)
	}
	return out
}
