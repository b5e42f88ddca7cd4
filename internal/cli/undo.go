package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tray-kanban/internal/bridge"
	"tray-kanban/internal/relay"
)

func newUndoCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Undo the last change on the focused surface",
		Long: "Ask the relay to undo the most recent change. The surface behind the newest\n" +
			"write not yet undone handles it; failing that the main surface, then the tray.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.config()
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			surface, err := bridge.RequestUndo(ctx, cfg.Relay())
			if errors.Is(err, relay.ErrNoSurface) {
				return writeErr(cmd, errors.New("no surface is open; start one with `kanban` or `kanban tray`"))
			}
			if err != nil {
				return writeErr(cmd, fmt.Errorf("undo: %w", err))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"surface": surface},
			})
		},
	}
}
