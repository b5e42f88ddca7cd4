package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the relay without a surface",
		Long: "Run the relay that fans board updates out to the main and tray surfaces,\n" +
			"debounces persistence and watches the store for external edits.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, cfg, err := app.openStore()
			if err != nil {
				return writeErr(cmd, err)
			}
			dataDir, err := cfg.ResolveDataDir()
			if err != nil {
				return writeErr(cmd, err)
			}
			log := newServeLogger(cmd.ErrOrStderr()).With("component", "relay")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			host, err := startRelayHost(ctx, ks, cfg, log)
			if err != nil {
				return writeErr(cmd, err)
			}
			backend := cfg.Backend
			if backend == "" {
				backend = "files"
			}
			if err := writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":     host.addr,
					"dataDir":  dataDir,
					"backend":  backend,
					"debounce": cfg.SaveDebounce(),
				},
				"_hints": []string{
					"kanban",
					"kanban tray",
					"kanban undo",
				},
			}); err != nil {
				_ = host.Stop()
				return err
			}
			log.Info("relay listening", "addr", host.addr)

			if err := host.Wait(); err != nil {
				return writeErr(cmd, err)
			}
			log.Info("relay stopped")
			return nil
		},
	}
}
