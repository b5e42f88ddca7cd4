package cli

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"tray-kanban/internal/relay"
	"tray-kanban/internal/store"
)

// relayHost runs a relay together with its websocket endpoint and the file
// watcher. Used by `kanban serve` and by a surface that finds no relay.
type relayHost struct {
	relay *relay.Relay
	addr  string

	g      *errgroup.Group
	cancel context.CancelFunc
}

func startRelayHost(ctx context.Context, ks store.KeyStore, cfg *store.Config, log *slog.Logger) (*relayHost, error) {
	r := relay.New(relay.Config{
		Storage:  ks,
		Key:      store.BoardKey,
		Debounce: time.Duration(cfg.SaveDebounce()) * time.Millisecond,
		Logger:   log,
	})

	ln, err := net.Listen("tcp", cfg.Relay())
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	h := &relayHost{relay: r, addr: ln.Addr().String(), g: g, cancel: cancel}

	g.Go(func() error { return r.Run(gctx) })

	srv := &http.Server{
		Handler:           relay.NewServer(r).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
		defer done()
		return srv.Shutdown(shutdownCtx)
	})

	if w, ok := ks.(store.Watchable); ok {
		paths := w.WatchPaths(store.BoardKey)
		g.Go(func() error {
			if err := r.Watch(gctx, relay.WatchConfig{Paths: paths}); err != nil {
				// Not fatal: the relay keeps serving without it.
				log.Warn("file watcher stopped", "err", err)
			}
			return nil
		})
	}
	return h, nil
}

// Wait blocks until the host stops on its own or its context ends.
func (h *relayHost) Wait() error {
	err := h.g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stop shuts the host down and flushes pending persistence.
func (h *relayHost) Stop() error {
	h.cancel()
	return h.Wait()
}
