package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tray-kanban/internal/model"
)

const (
	headerRows = 3 // title, column headers, rule
	footerRows = 2 // status, help
	cardHeight = 2 // name, meta
)

func (m appModel) bodyHeight() int { return max(m.height-headerRows-footerRows, cardHeight) }

// capacity is how many cards fit in a column.
func (m appModel) capacity() int { return max(m.bodyHeight()/cardHeight, 1) }

// displayed lists the board column indices on screen: all of them on the
// main surface, only the selected one on the tray.
func (m appModel) displayed() []int {
	n := len(m.eng.State().OrderedColumnIDs)
	if n == 0 {
		return nil
	}
	if m.compact {
		return []int{m.col}
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func (m appModel) detailWidth() int {
	if !m.showDetail || m.compact {
		return 0
	}
	return max(m.width/3, 24)
}

func (m appModel) columnWidth() int {
	n := max(len(m.displayed()), 1)
	return max((m.width-m.detailWidth())/n, 12)
}

// scrollOffset keeps row inside a window of capacity cards.
func scrollOffset(row, n, capacity int) int {
	if row < capacity {
		return 0
	}
	return min(row-capacity+1, max(n-capacity, 0))
}

func (m appModel) offsetFor(colIdx, n int) int {
	if colIdx != m.col {
		return 0
	}
	return scrollOffset(m.row, n, m.capacity())
}

func (m appModel) View() string {
	header := m.viewTitle()
	cols := m.eng.VisibleColumns()

	var body string
	switch {
	case m.mode == modePick:
		body = normalizePane(m.picker.view(min(m.width, 60)), m.width, m.bodyHeight()+2)
	case m.compact && m.showDetail:
		t, ok := m.selectedTicket()
		if ok {
			body = renderTicketDetail(t, cols[m.col].Title, m.width, m.bodyHeight()+2)
		} else {
			body = normalizePane(styleMuted().Render("No card selected."), m.width, m.bodyHeight()+2)
		}
	default:
		body = m.viewColumns(cols)
	}

	return strings.Join([]string{header, body, m.viewStatus(), m.viewHelp()}, "\n")
}

func (m appModel) viewTitle() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render("Kanban")
	parts := []string{title, styleMuted().Render(string(m.surface))}
	if q := m.eng.Query(); q != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(colorSurfaceFg).Render("/"+q))
	}
	if m.offline == nil && m.eng.Connected() {
		parts = append(parts, styleMuted().Render("synced"))
	}
	return normalizePane(strings.Join(parts, "  "), m.width, 1)
}

func (m appModel) viewColumns(cols []model.Column) string {
	colW := m.columnWidth()
	height := m.bodyHeight() + 2 // column header and rule belong to the body

	var panes []string
	if m.compact {
		panes = append(panes, m.viewCompactColumn(cols, m.width, height))
	} else {
		for _, ci := range m.displayed() {
			panes = append(panes, m.viewColumn(ci, cols[ci], colW, height))
		}
	}
	out := lipgloss.JoinHorizontal(lipgloss.Top, panes...)

	if dw := m.detailWidth(); dw > 0 {
		var detail string
		if t, ok := m.selectedTicket(); ok {
			detail = renderTicketDetail(t, cols[m.col].Title, dw, height)
		} else {
			detail = normalizePane(styleMuted().Render("No card selected."), dw, height)
		}
		out = lipgloss.JoinHorizontal(lipgloss.Top, out, detail)
	}
	return out
}

func (m appModel) columnHeader(c model.Column, selected bool) string {
	label := fmt.Sprintf("%s (%d)", c.Title, len(c.Items))
	st := lipgloss.NewStyle().Foreground(colorChromeMutedFg)
	if selected {
		st = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	}
	return st.Render(label)
}

func (m appModel) viewColumn(ci int, c model.Column, width, height int) string {
	lines := []string{
		" " + m.columnHeader(c, ci == m.col),
		styleMuted().Render(strings.Repeat(glyphHRule(), max(width-1, 1))),
	}
	lines = append(lines, m.viewCards(ci, c, width)...)
	return normalizePane(strings.Join(lines, "\n"), width, height)
}

// viewCompactColumn shows the selected column under a tab strip of all
// columns.
func (m appModel) viewCompactColumn(cols []model.Column, width, height int) string {
	tabs := make([]string, 0, len(cols))
	for i, c := range cols {
		tabs = append(tabs, m.columnHeader(c, i == m.col))
	}
	lines := []string{
		" " + strings.Join(tabs, styleMuted().Render(" | ")),
		styleMuted().Render(strings.Repeat(glyphHRule(), max(width-1, 1))),
	}
	if m.col < len(cols) {
		lines = append(lines, m.viewCards(m.col, cols[m.col], width)...)
	}
	return normalizePane(strings.Join(lines, "\n"), width, height)
}

func (m appModel) viewCards(ci int, c model.Column, width int) []string {
	if len(c.Items) == 0 {
		if m.eng.Filtered() {
			return []string{styleMuted().Render("  no matches")}
		}
		return []string{styleMuted().Render("  (empty)")}
	}

	inner := max(width-3, 4)
	off := m.offsetFor(ci, len(c.Items))
	end := min(off+m.capacity(), len(c.Items))

	var lines []string
	for ri := off; ri < end; ri++ {
		t := c.Items[ri]
		selected := ci == m.col && ri == m.row
		dragging := m.drag != nil && m.drag.ticketID == t.TicketID

		name := truncate(t.Name, inner)
		meta := truncate(cardMeta(t), inner)

		nameSt := lipgloss.NewStyle().Foreground(colorSurfaceFg)
		metaSt := lipgloss.NewStyle().Foreground(colorCardMetaFg)
		marker := " "
		switch {
		case dragging:
			marker = lipgloss.NewStyle().Foreground(colorDropTarget).Render(glyphBullet())
		case selected:
			marker = lipgloss.NewStyle().Foreground(colorSelectedBorder).Render("▌")
			if glyphs() == glyphSetASCII {
				marker = "|"
			}
		}
		if selected {
			nameSt = nameSt.Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
			metaSt = metaSt.Background(colorSelectedBg)
		}
		lines = append(lines,
			marker+" "+nameSt.Render(name),
			marker+" "+faintIfDark(metaSt).Render(meta),
		)
	}
	return lines
}

func cardMeta(t model.Ticket) string {
	parts := []string{}
	if t.Number != "" {
		parts = append(parts, t.Number)
	}
	for _, tg := range t.Tags {
		parts = append(parts, "#"+tg.Name)
	}
	if len(t.Attachments) > 0 {
		parts = append(parts, fmt.Sprintf("%d att", len(t.Attachments)))
	}
	return strings.Join(parts, " "+glyphBullet()+" ")
}

func (m appModel) viewStatus() string {
	switch m.mode {
	case modeSearch, modeAdd, modeRename:
		return renderInputLine(m.width, m.input.View())
	}
	if m.status == "" {
		return normalizePane("", m.width, 1)
	}
	st := lipgloss.NewStyle().Foreground(colorSurfaceFg)
	if m.statusErr {
		st = lipgloss.NewStyle().Foreground(colorAccentFg).Background(colorFlashErrorBg)
	}
	return normalizePane(st.Render(" "+m.status+" "), m.width, 1)
}

func (m appModel) viewHelp() string {
	parts := []string{}
	for _, b := range m.keys.shortHelp(m.compact) {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return normalizePane(styleMuted().Render(strings.Join(parts, "  ")), m.width, 1)
}
