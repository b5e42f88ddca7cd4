package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tray-kanban/internal/format"
	"tray-kanban/internal/relay"
	"tray-kanban/internal/store"
)

type App struct {
	Dir        string
	RelayAddr  string
	Backend    string
	PrettyJSON bool
	Format     string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "kanban",
		Short:        "Kanban board with a main window and a compact tray surface",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Open the board (starts a relay if none is running)
  kanban

  # Open the compact tray surface next to it
  kanban tray

  # Run the relay on its own
  kanban serve

  # Undo the last change from a script or hotkey
  kanban undo
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runSurface(cmd, app, relay.SurfaceMain)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("KANBAN_DIR", ""), "Data directory (overrides dataDir in config.json)")
	cmd.PersistentFlags().StringVar(&app.RelayAddr, "relay", envOr("KANBAN_RELAY", ""), "Relay address host:port (overrides relayAddr in config.json)")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", envOr("KANBAN_BACKEND", ""), "Storage backend (files|sqlite)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("KANBAN_FORMAT", "json"), "Output format (json|yaml)")

	cmd.AddCommand(newTrayCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newUndoCmd(app))
	cmd.AddCommand(newBoardCmd(app))
	cmd.AddCommand(newCloudCmd(app))
	cmd.AddCommand(newTagsCmd(app))
	cmd.AddCommand(newGroupsCmd(app))

	return cmd
}

// config loads config.json and applies the persistent flag overrides.
func (app *App) config() (*store.Config, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(app.Dir); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(app.RelayAddr); v != "" {
		cfg.RelayAddr = v
	}
	if v := strings.TrimSpace(app.Backend); v != "" {
		cfg.Backend = v
	}
	return cfg, nil
}

func (app *App) openStore() (store.KeyStore, *store.Config, error) {
	cfg, err := app.config()
	if err != nil {
		return nil, nil, err
	}
	ks, err := store.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return ks, cfg, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
