package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tray-kanban/internal/model"
)

// ticketMarkdown is the detail view source: title, number, tags, summary
// and attachments.
func ticketMarkdown(t model.Ticket, column string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", strings.TrimSpace(t.Name))

	meta := []string{}
	if t.Number != "" {
		meta = append(meta, "**"+t.Number+"**")
	}
	if column != "" {
		meta = append(meta, "in *"+column+"*")
	}
	if len(meta) > 0 {
		b.WriteString(strings.Join(meta, " "))
		b.WriteString("\n\n")
	}

	if t.Summary != nil && strings.TrimSpace(*t.Summary) != "" {
		b.WriteString(strings.TrimSpace(*t.Summary))
		b.WriteString("\n\n")
	}

	if len(t.Attachments) > 0 {
		b.WriteString("### Attachments\n\n")
		for _, a := range t.Attachments {
			name := a.Name
			if name == "" {
				name = a.ID
			}
			if a.Path != "" {
				fmt.Fprintf(&b, "- [%s](%s)\n", name, a.Path)
			} else {
				fmt.Fprintf(&b, "- %s\n", name)
			}
		}
	}
	return b.String()
}

func renderTicketDetail(t model.Ticket, column string, width, height int) string {
	body := renderMarkdown(ticketMarkdown(t, column), width-2)
	if len(t.Tags) > 0 {
		tags := make([]string, 0, len(t.Tags))
		for _, tg := range t.Tags {
			tags = append(tags, styleTag(tg.Color).Render("#"+tg.Name))
		}
		body = strings.Join(tags, " ") + "\n" + body
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorCardBorder).
		Padding(0, 1).
		Width(max(width-2, 10))
	return normalizePane(box.Render(body), width, height)
}
