// Package tui renders the board surfaces: the full board on the main
// surface and a one-column tray view.
package tui

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"tray-kanban/internal/engine"
	"tray-kanban/internal/store"
)

type Options struct {
	// Engine must already be hydrated. Its surface picks the layout.
	Engine *engine.Engine
	// UI holds per-surface selection; a zero Dir disables it.
	UI store.Store
	// Catalog serves tags and group numbering; nil disables both.
	Catalog      store.Adapter
	DefaultGroup string
	Logger       *slog.Logger
	// Disconnected, when set, closes if the relay goes away.
	Disconnected <-chan struct{}
}

func Run(ctx context.Context, opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()
	applyGlyphPreference()

	m := newAppModel(opts)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	opts.Engine.Listen(func(fn func()) { p.Send(remoteMsg{apply: fn}) })

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
