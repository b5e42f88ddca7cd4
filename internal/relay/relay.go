// Package relay forwards full board states between the two UI surfaces and
// persists the latest one.
//
// A Relay is an actor: all of its state is owned by the goroutine running
// Run and is reached only through the inbox. It holds no board logic; the
// last sync-state received wins.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"time"
)

const DefaultKey = "board-state"

var (
	ErrClosed    = errors.New("relay: closed")
	ErrNoSurface = errors.New("relay: no surface attached")
)

type Config struct {
	// Storage may be nil, in which case nothing is loaded or persisted.
	Storage  Storage
	Key      string
	Debounce time.Duration
	Logger   *slog.Logger
}

type Relay struct {
	key     string
	storage Storage
	log     *slog.Logger
	saver   *saver

	inbox   chan func()
	stopped chan struct{}

	// Owned by the Run goroutine.
	payload    json.RawMessage
	ports      map[SurfaceID]chan<- Message
	// writers holds the source of each undoable write, newest last.
	writers []SurfaceID
}

func New(cfg Config) *Relay {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "relay")
	key := cfg.Key
	if key == "" {
		key = DefaultKey
	}
	return &Relay{
		key:     key,
		storage: cfg.Storage,
		log:     log,
		saver:   newSaver(cfg.Storage, key, cfg.Debounce, log),
		inbox:   make(chan func(), 64),
		stopped: make(chan struct{}),
		ports:   map[SurfaceID]chan<- Message{},
	}
}

// Run loads the persisted state, then serves the inbox until ctx is done.
// Pending persistence is flushed before Run returns.
func (r *Relay) Run(ctx context.Context) error {
	defer close(r.stopped)

	r.payload = r.load(ctx)

	for {
		select {
		case fn := <-r.inbox:
			fn()
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			r.saver.Flush(flushCtx)
			cancel()
			return nil
		}
	}
}

func (r *Relay) load(ctx context.Context) json.RawMessage {
	if r.storage == nil {
		return nil
	}
	raw, err := r.storage.Load(ctx, r.key)
	if err != nil {
		r.log.Warn("load persisted board state", "key", r.key, "err", err)
		return nil
	}
	if len(raw) == 0 {
		return nil
	}
	if !json.Valid(raw) {
		r.log.Warn("persisted board state is not valid JSON; starting empty", "key", r.key)
		return nil
	}
	return json.RawMessage(raw)
}

// post enqueues fn without waiting for it to run.
func (r *Relay) post(ctx context.Context, fn func()) error {
	select {
	case <-r.stopped:
		return ErrClosed
	default:
	}
	select {
	case r.inbox <- fn:
		return nil
	case <-r.stopped:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// call enqueues fn and waits until the actor has run it.
func (r *Relay) call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if err := r.post(ctx, func() { fn(); close(done) }); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-r.stopped:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Publish handles a sync-state from msg.Source: the payload becomes the
// authoritative state, is forwarded to the peer surface and scheduled for
// persistence.
func (r *Relay) Publish(ctx context.Context, msg Message) error {
	if msg.Topic != TopicSyncState {
		return errors.New("relay: publish expects " + string(TopicSyncState))
	}
	if !json.Valid(msg.Payload) {
		return errors.New("relay: sync-state payload is not valid JSON")
	}
	payload := append(json.RawMessage(nil), msg.Payload...)
	return r.post(ctx, func() {
		r.payload = payload
		r.recordWriter(msg.Source, isUndoPayload(payload))
		r.deliver(msg.Source.Peer(), Message{Topic: TopicSyncStateUpdate, Source: msg.Source, Payload: payload})
		r.saver.Notify(payload)
	})
}

// BoardState answers get-board-state: the current payload, or nil if the
// relay has none.
func (r *Relay) BoardState(ctx context.Context) ([]byte, error) {
	var out []byte
	err := r.call(ctx, func() {
		if len(r.payload) > 0 {
			out = append([]byte(nil), r.payload...)
		}
	})
	return out, err
}

// Undo routes perform-undo to the newest attached writer whose write has
// not been undone yet, else main, else tray. It returns the surface the request went to.
func (r *Relay) Undo(ctx context.Context) (SurfaceID, error) {
	var (
		target SurfaceID
		found  bool
	)
	err := r.call(ctx, func() {
		for _, id := range []SurfaceID{r.lastWriter(), SurfaceMain, SurfaceTray} {
			if _, ok := r.ports[id]; ok && id != "" {
				target, found = id, true
				break
			}
		}
		if found {
			r.deliver(target, Message{Topic: TopicPerformUndo})
		}
	})
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrNoSurface
	}
	return target, nil
}

// Attach registers ch as the port of surface id, replacing any earlier one.
func (r *Relay) Attach(ctx context.Context, id SurfaceID, ch chan<- Message) error {
	return r.call(ctx, func() {
		r.ports[id] = ch
		r.log.Info("surface attached", "surface", id)
	})
}

// Detach removes the port of surface id if it is still ch.
func (r *Relay) Detach(ctx context.Context, id SurfaceID, ch chan<- Message) error {
	return r.call(ctx, func() {
		if cur, ok := r.ports[id]; ok && cur == ch {
			delete(r.ports, id)
			r.log.Info("surface detached", "surface", id)
		}
	})
}

func (r *Relay) Surfaces(ctx context.Context) ([]SurfaceID, error) {
	var out []SurfaceID
	err := r.call(ctx, func() {
		for id := range r.ports {
			out = append(out, id)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, err
}

// External adopts a payload that changed outside the relay (another machine
// writing the synced folder) and pushes it to both surfaces. Payloads equal
// to the current state or to the relay's own last write are ignored.
func (r *Relay) External(ctx context.Context, raw []byte) error {
	if len(raw) == 0 || !json.Valid(raw) {
		r.log.Warn("ignoring external board state change: not valid JSON")
		return nil
	}
	payload := append(json.RawMessage(nil), raw...)
	return r.post(ctx, func() {
		if bytes.Equal(payload, r.payload) || r.saver.Wrote(payload) {
			return
		}
		r.payload = payload
		r.log.Info("adopted external board state change", "bytes", len(payload))
		r.deliver(SurfaceMain, Message{Topic: TopicSyncStateUpdate, Payload: payload})
		r.deliver(SurfaceTray, Message{Topic: TopicSyncStateUpdate, Payload: payload})
	})
}

// maxWriters bounds the write log; surfaces keep far fewer undo steps.
const maxWriters = 64

// recordWriter keeps the write log in step with the surfaces' undo stacks:
// a normal write pushes its source, a write produced by undo removes that
// source's newest entry.
func (r *Relay) recordWriter(src SurfaceID, undo bool) {
	if !undo {
		r.writers = append(r.writers, src)
		if over := len(r.writers) - maxWriters; over > 0 {
			r.writers = append([]SurfaceID(nil), r.writers[over:]...)
		}
		return
	}
	for i := len(r.writers) - 1; i >= 0; i-- {
		if r.writers[i] == src {
			r.writers = append(r.writers[:i], r.writers[i+1:]...)
			return
		}
	}
}

// lastWriter is the newest writer still attached, or "".
func (r *Relay) lastWriter() SurfaceID {
	for i := len(r.writers) - 1; i >= 0; i-- {
		if _, ok := r.ports[r.writers[i]]; ok {
			return r.writers[i]
		}
	}
	return ""
}

// isUndoPayload reports whether a board state was produced by undo. Only
// the trigger is read, and only for undo routing; forwarding never looks
// at payloads.
func isUndoPayload(payload []byte) bool {
	var st struct {
		LastOperation *struct {
			Trigger string `json:"trigger"`
		} `json:"lastOperation"`
	}
	if err := json.Unmarshal(payload, &st); err != nil || st.LastOperation == nil {
		return false
	}
	return st.LastOperation.Trigger == "undo"
}

// deliver is non-blocking: a full port drops the message.
func (r *Relay) deliver(to SurfaceID, msg Message) {
	ch, ok := r.ports[to]
	if !ok {
		return
	}
	select {
	case ch <- msg:
	default:
		r.log.Warn("dropped message for busy surface", "surface", to, "topic", msg.Topic)
	}
}
