package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tray-kanban/internal/bridge"
	"tray-kanban/internal/engine"
	"tray-kanban/internal/relay"
	"tray-kanban/internal/store"
	"tray-kanban/internal/tui"
)

const dialTimeout = 750 * time.Millisecond

func newTrayCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tray",
		Short: "Open the compact tray surface",
		Long: "Open the one-column tray view of the board. It shares state with the main\n" +
			"surface through the relay and starts one if none is running.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSurface(cmd, app, relay.SurfaceTray)
		},
	}
}

// connectSurface attaches to a running relay, or hosts one in-process when
// none answers. The returned stop func closes the bridge and any hosted
// relay (flushing its pending save).
func connectSurface(ctx context.Context, cfg *store.Config, ks store.KeyStore, surface relay.SurfaceID, log *slog.Logger) (bridge.Bridge, <-chan struct{}, func(), error) {
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	ws, err := bridge.Dial(dialCtx, cfg.Relay(), surface, log)
	cancel()
	if err == nil {
		log.Info("attached to relay", "addr", cfg.Relay())
		return ws, ws.Done(), func() { _ = ws.Close() }, nil
	}
	log.Info("no relay answering; hosting one", "addr", cfg.Relay(), "err", err)

	host, err := startRelayHost(ctx, ks, cfg, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("start relay on %s: %w", cfg.Relay(), err)
	}
	local, err := bridge.NewLocal(ctx, host.relay, surface, log)
	if err != nil {
		_ = host.Stop()
		return nil, nil, nil, err
	}
	stop := func() {
		_ = local.Close()
		if err := host.Stop(); err != nil {
			log.Warn("relay stopped with error", "err", err)
		}
	}
	return local, nil, stop, nil
}

func runSurface(cmd *cobra.Command, app *App, surface relay.SurfaceID) error {
	ks, cfg, err := app.openStore()
	if err != nil {
		return writeErr(cmd, err)
	}
	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		return writeErr(cmd, err)
	}

	log, closeLog := newSurfaceLogger(string(surface))
	defer closeLog()

	ctx, stopSignals := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	br, disconnected, stop, err := connectSurface(ctx, cfg, ks, surface, log)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer stop()

	dist := cfg.SearchDistance()
	eng := engine.New(engine.Options{
		Surface:           surface,
		Bridge:            br,
		HistoryLimit:      cfg.History(),
		SearchMaxDistance: &dist,
		Logger:            log,
	})
	if err := eng.Hydrate(ctx); err != nil {
		return writeErr(cmd, err)
	}

	return tui.Run(ctx, tui.Options{
		Engine:       eng,
		UI:           store.Store{Dir: dataDir},
		Catalog:      ks,
		DefaultGroup: cfg.DefaultGroup,
		Logger:       log,
		Disconnected: disconnected,
	})
}
