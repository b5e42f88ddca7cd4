package relay

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultWatchDebounce = 250 * time.Millisecond

// WatchConfig describes the files whose changes should reach the relay.
type WatchConfig struct {
	// Paths are the files holding the persisted board (local copy and, when
	// cloud sync is on, the mirrored copy). Their directories are watched,
	// which also catches tmp+rename writes.
	Paths    []string
	Debounce time.Duration
}

// Watch reloads the board through the relay's Storage whenever one of the
// watched files changes and hands the result to External. It blocks until
// ctx is done.
func (r *Relay) Watch(ctx context.Context, cfg WatchConfig) error {
	if r.storage == nil || len(cfg.Paths) == 0 {
		<-ctx.Done()
		return nil
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start file watcher: %w", err)
	}
	defer fsw.Close()

	names := map[string]bool{}
	dirs := map[string]bool{}
	for _, p := range cfg.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		names[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
		r.log.Debug("watching for external changes", "dir", dir)
	}

	var (
		timer  *time.Timer
		fire   <-chan time.Time
		stopFn = func() {
			if timer != nil {
				timer.Stop()
			}
		}
	)
	defer stopFn()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !names[filepath.Clean(ev.Name)] {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("file watcher error", "err", err)
		case <-fire:
			fire = nil
			raw, err := r.storage.Load(ctx, r.key)
			if err != nil {
				r.log.Warn("reload board state after external change", "err", err)
				continue
			}
			if err := r.External(ctx, raw); err != nil {
				return nil
			}
		}
	}
}
