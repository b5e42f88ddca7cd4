package relay

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"
)

// Storage is the persistence the relay writes through. store.Adapter
// implementations satisfy it.
type Storage interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
}

const DefaultDebounce = time.Second

// saver coalesces bursts of payload changes into one write per debounce
// window. A failed write is logged and left for the next Notify.
type saver struct {
	storage  Storage
	key      string
	debounce time.Duration
	log      *slog.Logger

	mu        sync.Mutex
	timer     *time.Timer
	pending   []byte
	dirty     bool
	running   bool
	lastSaved []byte
}

func newSaver(storage Storage, key string, debounce time.Duration, log *slog.Logger) *saver {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &saver{storage: storage, key: key, debounce: debounce, log: log}
}

func (s *saver) Notify(data []byte) {
	if s == nil || s.storage == nil {
		return
	}

	s.mu.Lock()
	s.pending = data
	s.dirty = true
	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, s.onTimer)
		s.mu.Unlock()
		return
	}
	s.timer.Reset(s.debounce)
	s.mu.Unlock()
}

func (s *saver) onTimer() {
	s.mu.Lock()
	if s.running {
		if s.timer != nil {
			s.timer.Reset(s.debounce)
		}
		s.mu.Unlock()
		return
	}
	if !s.dirty {
		s.mu.Unlock()
		return
	}
	data := s.pending
	s.dirty = false
	s.running = true
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	s.write(ctx, data)
	cancel()

	s.mu.Lock()
	s.running = false
	if s.dirty && s.timer != nil {
		s.timer.Reset(s.debounce)
	}
	s.mu.Unlock()
}

func (s *saver) write(ctx context.Context, data []byte) {
	if err := s.storage.Save(ctx, s.key, data); err != nil {
		s.log.Error("persist board state", "key", s.key, "err", err)
		return
	}
	s.mu.Lock()
	s.lastSaved = data
	s.mu.Unlock()
	s.log.Debug("persisted board state", "key", s.key, "bytes", len(data))
}

// Flush stops the timer and writes any pending payload now.
func (s *saver) Flush(ctx context.Context) {
	if s == nil || s.storage == nil {
		return
	}
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	data, dirty := s.pending, s.dirty
	s.dirty = false
	s.mu.Unlock()

	if dirty {
		s.write(ctx, data)
	}
}

// Wrote reports whether data is what the saver last persisted, so the
// relay can ignore its own writes coming back through the file watcher.
func (s *saver) Wrote(data []byte) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaved != nil && bytes.Equal(s.lastSaved, data)
}
