package cli

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tray-kanban/internal/board"
	"tray-kanban/internal/bridge"
	"tray-kanban/internal/model"
	"tray-kanban/internal/search"
	"tray-kanban/internal/store"
)

func newBoardCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Inspect the board without opening a surface",
	}
	cmd.AddCommand(newBoardShowCmd(app))
	cmd.AddCommand(newBoardSearchCmd(app))
	cmd.AddCommand(newBoardValidateCmd(app))
	return cmd
}

// currentBoard prefers the relay's live state and falls back to the store.
// source reports which one answered.
func currentBoard(ctx context.Context, app *App) (st model.BoardState, source string, err error) {
	ks, cfg, err := app.openStore()
	if err != nil {
		return model.BoardState{}, "", err
	}
	fetchCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	raw, ferr := bridge.FetchState(fetchCtx, cfg.Relay())
	cancel()
	source = "relay"
	if ferr != nil {
		raw, err = ks.Load(ctx, store.BoardKey)
		if err != nil {
			return model.BoardState{}, "", err
		}
		source = "store"
	}
	st, _ = board.Hydrate(raw)
	return st, source, nil
}

func newBoardShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the board state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, source, err := currentBoard(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   st,
				"source": source,
			})
		},
	}
}

type searchHit struct {
	TicketID string `json:"ticketId"`
	Name     string `json:"name"`
	Number   string `json:"number,omitempty"`
	ColumnID string `json:"columnId"`
}

func newBoardSearchCmd(app *App) *cobra.Command {
	var maxDistance int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy-search ticket names and numbers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := currentBoard(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !cmd.Flags().Changed("max-distance") {
				cfg, err := app.config()
				if err != nil {
					return writeErr(cmd, err)
				}
				maxDistance = cfg.SearchDistance()
			}

			f := search.NewFilter(maxDistance)
			f.Reset(st.Tickets())
			f.SetQuery(strings.Join(args, " "))

			hits := []searchHit{}
			for _, col := range st.Columns() {
				for _, t := range col.Items {
					if !f.Visible(t.TicketID) {
						continue
					}
					hits = append(hits, searchHit{TicketID: t.TicketID, Name: t.Name, Number: t.Number, ColumnID: col.ColumnID})
				}
			}
			return writeOut(cmd, app, map[string]any{"data": hits})
		},
	}
	cmd.Flags().IntVar(&maxDistance, "max-distance", store.DefaultSearchDistance, "Per-word edit distance tolerated by the matcher")
	return cmd
}

func newBoardValidateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the persisted board against its invariants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, _, err := app.openStore()
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			raw, err := ks.Load(ctx, store.BoardKey)
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := board.Decode(raw)
			switch {
			case errors.Is(err, board.ErrNoSavedState):
				return writeOut(cmd, app, map[string]any{
					"data":   map[string]any{"ok": true, "saved": false},
					"_hints": []string{"kanban"},
				})
			case err != nil:
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"ok":      true,
					"saved":   true,
					"columns": len(st.OrderedColumnIDs),
					"tickets": len(st.Tickets()),
				},
			})
		},
	}
}
