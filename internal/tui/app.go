package tui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tray-kanban/internal/board"
	"tray-kanban/internal/engine"
	"tray-kanban/internal/history"
	"tray-kanban/internal/model"
	"tray-kanban/internal/relay"
	"tray-kanban/internal/store"
)

type mode int

const (
	modeBoard mode = iota
	modeSearch
	modeAdd
	modeRename
	modePick
)

// remoteMsg carries work from a bridge goroutine into the update loop.
type remoteMsg struct{ apply func() }

type statusClearMsg struct{ seq int }

type disconnectedMsg struct{}

const statusTTL = 4 * time.Second

// announcer collects the engine's announcements during one Update.
type announcer struct{ msg string }

func (a *announcer) say(s string) { a.msg = s }

func (a *announcer) take() string {
	s := a.msg
	a.msg = ""
	return s
}

type appModel struct {
	eng          *engine.Engine
	surface      relay.SurfaceID
	compact      bool
	ui           store.Store
	catalog      store.Adapter
	defaultGroup string
	log          *slog.Logger
	keys         keyMap
	ann          *announcer
	offline      <-chan struct{}

	width  int
	height int

	mode       mode
	col        int
	row        int
	showDetail bool
	input      textinput.Model
	picker     columnPicker
	drag       *dragState

	status    string
	statusErr bool
	statusSeq int
}

func newAppModel(opts Options) appModel {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	m := appModel{
		eng:          opts.Engine,
		surface:      opts.Engine.Surface(),
		compact:      opts.Engine.Surface() == relay.SurfaceTray,
		ui:           opts.UI,
		catalog:      opts.Catalog,
		defaultGroup: opts.DefaultGroup,
		log:          log.With("component", "tui"),
		keys:         defaultKeyMap(),
		ann:          &announcer{},
		offline:      opts.Disconnected,
		width:        80,
		height:       24,
	}
	m.eng.SetAnnounce(m.ann.say)
	m.restoreUIState()
	return m
}

func (m *appModel) restoreUIState() {
	st, err := m.ui.LoadUIState()
	if err != nil {
		m.log.Debug("load ui state", "err", err)
		return
	}
	s := st.Surface(string(m.surface))
	if s.Query != "" {
		m.eng.SetQuery(s.Query)
	}
	m.showDetail = s.ShowDetail
	if i := m.eng.State().ColumnIndex(s.SelectedColumnID); i >= 0 {
		m.col = i
	}
	if s.SelectedTicketID != "" {
		m.follow(s.SelectedTicketID)
	}
	m.clamp()
}

func (m appModel) saveUIState() {
	s := store.SurfaceUIState{
		Query:      m.eng.Query(),
		ShowDetail: m.showDetail,
	}
	if c, ok := m.column(); ok {
		s.SelectedColumnID = c.ColumnID
	}
	if t, ok := m.selectedTicket(); ok {
		s.SelectedTicketID = t.TicketID
	}
	if err := m.ui.SaveSurfaceUIState(string(m.surface), s); err != nil {
		m.log.Warn("save ui state", "err", err)
	}
}

func (m appModel) Init() tea.Cmd {
	if m.offline == nil {
		return nil
	}
	ch := m.offline
	return func() tea.Msg {
		<-ch
		return disconnectedMsg{}
	}
}

// column is the selected column with hidden tickets removed.
func (m appModel) column() (model.Column, bool) {
	cols := m.eng.VisibleColumns()
	if m.col < 0 || m.col >= len(cols) {
		return model.Column{}, false
	}
	return cols[m.col], true
}

func (m appModel) selectedTicket() (model.Ticket, bool) {
	c, ok := m.column()
	if !ok || m.row < 0 || m.row >= len(c.Items) {
		return model.Ticket{}, false
	}
	return c.Items[m.row], true
}

// follow moves the selection onto ticketID if it is visible.
func (m *appModel) follow(ticketID string) {
	for ci, c := range m.eng.VisibleColumns() {
		for ri, t := range c.Items {
			if t.TicketID == ticketID {
				m.col, m.row = ci, ri
				return
			}
		}
	}
}

func (m *appModel) clamp() {
	cols := m.eng.VisibleColumns()
	if len(cols) == 0 {
		m.col, m.row = 0, 0
		return
	}
	m.col = min(max(m.col, 0), len(cols)-1)
	m.row = min(max(m.row, 0), max(len(cols[m.col].Items)-1, 0))
}

func (m *appModel) flash(s string, isErr bool) tea.Cmd {
	m.status = s
	m.statusErr = isErr
	m.statusSeq++
	seq := m.statusSeq
	return tea.Tick(statusTTL, func(time.Time) tea.Msg { return statusClearMsg{seq: seq} })
}

// report turns an engine result into status feedback. Announcements win
// over silence; no-op moves stay silent.
func (m *appModel) report(err error) tea.Cmd {
	if s := m.ann.take(); s != "" {
		return m.flash(s, false)
	}
	if err == nil || errors.Is(err, board.ErrNoChange) || errors.Is(err, engine.ErrForeignDrop) {
		return nil
	}
	if errors.Is(err, history.ErrNothingToUndo) {
		return m.flash("Nothing to undo.", false)
	}
	return m.flash(err.Error(), true)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case remoteMsg:
		var sel string
		if t, ok := m.selectedTicket(); ok {
			sel = t.TicketID
		}
		msg.apply()
		if sel != "" {
			m.follow(sel)
		}
		m.clamp()
		return m, m.report(nil)

	case statusClearMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
			m.statusErr = false
		}
		return m, nil

	case disconnectedMsg:
		m.offline = nil
		return m, m.flash("Lost the relay connection; changes stay on this surface.", true)

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeAdd, modeRename:
			return m.updateInput(msg)
		case modePick:
			return m.updatePicker(msg)
		default:
			return m.updateBoard(msg)
		}
	}
	return m, nil
}

func (m appModel) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	cols := m.eng.State().OrderedColumnIDs
	t, hasTicket := m.selectedTicket()

	switch {
	case key.Matches(msg, k.Quit):
		m.saveUIState()
		return m, tea.Quit

	case key.Matches(msg, k.Left):
		m.col--
		m.clamp()
	case key.Matches(msg, k.Right):
		m.col++
		m.clamp()
	case key.Matches(msg, k.NextColumn):
		if len(cols) > 0 {
			m.col = (m.col + 1) % len(cols)
		}
		m.clamp()
	case key.Matches(msg, k.Up):
		m.row--
		m.clamp()
	case key.Matches(msg, k.Down):
		m.row++
		m.clamp()

	case key.Matches(msg, k.CardUp, k.CardDown):
		if !hasTicket {
			return m, nil
		}
		delta := 1
		if key.Matches(msg, k.CardUp) {
			delta = -1
		}
		err := m.eng.MoveCardVertical(t.TicketID, delta)
		m.follow(t.TicketID)
		return m, m.report(err)

	case key.Matches(msg, k.CardLeft, k.CardRight):
		if !hasTicket {
			return m, nil
		}
		delta := 1
		if key.Matches(msg, k.CardLeft) {
			delta = -1
		}
		err := m.eng.MoveCardSideways(t.TicketID, delta)
		m.follow(t.TicketID)
		return m, m.report(err)

	case key.Matches(msg, k.ColLeft, k.ColRight):
		if m.col >= len(cols) {
			return m, nil
		}
		id := cols[m.col]
		delta := 1
		if key.Matches(msg, k.ColLeft) {
			delta = -1
		}
		err := m.eng.MoveColumn(id, delta)
		m.col = m.eng.State().ColumnIndex(id)
		m.clamp()
		return m, m.report(err)

	case key.Matches(msg, k.MoveTo):
		if !hasTicket {
			return m, nil
		}
		colID, _, _ := m.eng.State().Locate(t.TicketID)
		m.picker = newColumnPicker(m.eng.Columns(), colID)
		m.mode = modePick
		return m, textinput.Blink

	case key.Matches(msg, k.Add):
		m.input = newInput("new card", "")
		m.mode = modeAdd
		return m, textinput.Blink

	case key.Matches(msg, k.Rename):
		if !hasTicket {
			return m, nil
		}
		m.input = newInput("name", t.Name)
		m.mode = modeRename
		return m, textinput.Blink

	case key.Matches(msg, k.Delete):
		if !hasTicket {
			return m, nil
		}
		colID, _, _ := m.eng.State().Locate(t.TicketID)
		err := m.eng.DeleteCard(colID, t.TicketID, model.TriggerKeyboard)
		m.clamp()
		return m, m.report(err)

	case key.Matches(msg, k.Undo):
		err := m.eng.Undo()
		m.clamp()
		return m, m.report(err)

	case key.Matches(msg, k.Search):
		m.input = newInput("search", m.eng.Query())
		m.mode = modeSearch
		return m, textinput.Blink

	case key.Matches(msg, k.Clear):
		if m.eng.Filtered() {
			m.eng.SetQuery("")
			if hasTicket {
				m.follow(t.TicketID)
			}
			m.clamp()
		}

	case key.Matches(msg, k.Detail):
		m.showDetail = !m.showDetail

	case key.Matches(msg, k.Copy):
		if !hasTicket {
			return m, nil
		}
		ref, err := copyTicketRef(t)
		if err != nil {
			return m, m.flash("Copy failed: "+err.Error(), true)
		}
		return m, m.flash("Copied "+ref+".", false)
	}
	return m, nil
}

func newInput(placeholder, value string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = placeholder + ": "
	in.CharLimit = 200
	in.SetValue(value)
	in.CursorEnd()
	in.Focus()
	return in
}

func (m appModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sel := ""
	if t, ok := m.selectedTicket(); ok {
		sel = t.TicketID
	}
	switch msg.Type {
	case tea.KeyEnter:
		m.mode = modeBoard
		return m, nil
	case tea.KeyEsc:
		m.eng.SetQuery("")
		m.mode = modeBoard
		if sel != "" {
			m.follow(sel)
		}
		m.clamp()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.eng.SetQuery(strings.TrimSpace(m.input.Value()))
	if sel != "" {
		m.follow(sel)
	}
	m.clamp()
	return m, cmd
}

func (m appModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBoard
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		md := m.mode
		m.mode = modeBoard
		if value == "" {
			return m, nil
		}
		if md == modeAdd {
			return m, m.addCard(value)
		}
		return m, m.renameCard(value)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBoard
		return m, nil
	case tea.KeyUp, tea.KeyShiftTab:
		m.picker.move(-1)
		return m, nil
	case tea.KeyDown, tea.KeyTab:
		m.picker.move(1)
		return m, nil
	case tea.KeyEnter:
		m.mode = modeBoard
		opt, ok := m.picker.selected()
		t, has := m.selectedTicket()
		if !ok || !has {
			return m, nil
		}
		err := m.eng.MoveCardToColumn(t.TicketID, opt.ColumnID)
		m.follow(t.TicketID)
		return m, m.report(err)
	}
	var cmd tea.Cmd
	m.picker.input, cmd = m.picker.input.Update(msg)
	m.picker.filter()
	return m, cmd
}

// addCard puts a new ticket on top of the selected column. "#name" words
// attach catalog tags; the default group, when configured, numbers it.
func (m *appModel) addCard(text string) tea.Cmd {
	c, ok := m.column()
	if !ok {
		return nil
	}
	ctx := context.Background()
	name, tags := m.extractTags(ctx, text)
	if name == "" {
		return m.flash("A card needs a name.", true)
	}

	prefix, number := "", 0
	if m.catalog != nil && m.defaultGroup != "" {
		g, n, err := store.NextTicketNumber(ctx, m.catalog, m.defaultGroup)
		if err != nil {
			m.log.Warn("next ticket number", "group", m.defaultGroup, "err", err)
		} else {
			prefix, number = g.Prefix, n
		}
	}

	t := board.NewTicket(name, prefix, number, tags)
	err := m.eng.AddCard(c.ColumnID, t, model.TriggerKeyboard)
	m.follow(t.TicketID)
	return m.report(err)
}

func (m *appModel) extractTags(ctx context.Context, text string) (string, []model.Tag) {
	words := strings.Fields(text)
	var known []model.Tag
	if m.catalog != nil {
		var err error
		if known, err = store.LoadTags(ctx, m.catalog); err != nil {
			m.log.Warn("load tags", "err", err)
		}
	}
	var tags []model.Tag
	kept := words[:0]
	for _, w := range words {
		if name, ok := strings.CutPrefix(w, "#"); ok && name != "" {
			if tg, found := findTag(known, name); found {
				tags = append(tags, tg)
				continue
			}
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " "), tags
}

func findTag(tags []model.Tag, name string) (model.Tag, bool) {
	for _, t := range tags {
		if strings.EqualFold(t.Name, name) || strings.EqualFold(t.ID, name) {
			return t, true
		}
	}
	return model.Tag{}, false
}

func (m *appModel) renameCard(name string) tea.Cmd {
	t, ok := m.selectedTicket()
	if !ok {
		return nil
	}
	colID, _, _ := m.eng.State().Locate(t.TicketID)
	next := t
	next.Name = name
	err := m.eng.UpdateCard(colID, t.TicketID, next, model.TriggerKeyboard)
	m.follow(t.TicketID)
	if err == nil && m.ann.msg == "" {
		return m.flash("Renamed to "+name+".", false)
	}
	return m.report(err)
}
