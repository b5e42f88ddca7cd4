package tui

import (
	"strings"

	"github.com/atotto/clipboard"

	"tray-kanban/internal/model"
)

// clipboardWrite is swapped out in tests.
var clipboardWrite = clipboard.WriteAll

// copyTicketRef copies the ticket number, or the name for unnumbered
// tickets.
func copyTicketRef(t model.Ticket) (string, error) {
	ref := strings.TrimSpace(t.Number)
	if ref == "" {
		ref = t.Name
	}
	if err := clipboardWrite(strings.ReplaceAll(ref, "\r\n", "\n")); err != nil {
		return "", err
	}
	return ref, nil
}
