package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"tray-kanban/internal/model"
)

type pickerOption struct {
	ColumnID string
	Title    string
}

// columnPicker chooses a destination column for the selected card.
type columnPicker struct {
	input   textinput.Model
	options []pickerOption
	matches []int
	cursor  int
}

func newColumnPicker(cols []model.Column, exclude string) columnPicker {
	in := textinput.New()
	in.Placeholder = "column"
	in.Prompt = "move to: "
	in.CharLimit = 64
	in.Focus()

	p := columnPicker{input: in}
	for _, c := range cols {
		if c.ColumnID == exclude {
			continue
		}
		p.options = append(p.options, pickerOption{ColumnID: c.ColumnID, Title: c.Title})
	}
	p.filter()
	return p
}

// filter recomputes matches from the input; an empty input keeps board
// order.
func (p *columnPicker) filter() {
	q := strings.TrimSpace(p.input.Value())
	p.matches = p.matches[:0]
	if q == "" {
		for i := range p.options {
			p.matches = append(p.matches, i)
		}
	} else {
		titles := make([]string, len(p.options))
		for i, o := range p.options {
			titles[i] = o.Title
		}
		for _, m := range fuzzy.Find(q, titles) {
			p.matches = append(p.matches, m.Index)
		}
	}
	p.cursor = min(p.cursor, max(len(p.matches)-1, 0))
}

func (p *columnPicker) move(delta int) {
	if len(p.matches) == 0 {
		return
	}
	p.cursor = (p.cursor + delta + len(p.matches)) % len(p.matches)
}

func (p columnPicker) selected() (pickerOption, bool) {
	if len(p.matches) == 0 {
		return pickerOption{}, false
	}
	return p.options[p.matches[p.cursor]], true
}

func (p columnPicker) view(width int) string {
	rows := []string{renderInputLine(width, p.input.View())}
	if len(p.matches) == 0 {
		rows = append(rows, styleMuted().Render("  no matching column"))
	}
	for i, idx := range p.matches {
		line := "  " + p.options[idx].Title
		if i == p.cursor {
			line = lipgloss.NewStyle().
				Foreground(colorSelectedFg).
				Background(colorSelectedBg).
				Bold(true).
				Render(glyphArrow() + " " + p.options[idx].Title)
		}
		rows = append(rows, line)
	}
	rows = append(rows, styleMuted().Render("enter: move   ↑/↓: choose   esc: cancel"))
	return strings.Join(rows, "\n")
}
