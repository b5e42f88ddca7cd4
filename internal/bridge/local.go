package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tray-kanban/internal/relay"
)

// Local talks to a Relay running in the same process.
type Local struct {
	relay   *relay.Relay
	surface relay.SurfaceID
	log     *slog.Logger

	port chan relay.Message
	handlers

	closeOnce sync.Once
	done      chan struct{}
}

func NewLocal(ctx context.Context, r *relay.Relay, surface relay.SurfaceID, log *slog.Logger) (*Local, error) {
	if log == nil {
		log = slog.Default()
	}
	l := &Local{
		relay:   r,
		surface: surface,
		log:     log.With("component", "bridge", "surface", surface),
		port:    make(chan relay.Message, 32),
		done:    make(chan struct{}),
	}
	if err := r.Attach(ctx, surface, l.port); err != nil {
		return nil, fmt.Errorf("attach %s: %w", surface, err)
	}
	go l.loop()
	return l, nil
}

func (l *Local) loop() {
	for {
		select {
		case <-l.done:
			return
		case msg := <-l.port:
			if !l.dispatch(msg) {
				l.log.Debug("no handler", "topic", msg.Topic)
			}
		}
	}
}

func (l *Local) Send(topic relay.Topic, payload []byte) error {
	select {
	case <-l.done:
		return ErrClosed
	default:
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	switch topic {
	case relay.TopicSyncState:
		return l.relay.Publish(ctx, relay.Message{Topic: topic, Source: l.surface, Payload: payload})
	case relay.TopicPerformUndo:
		_, err := l.relay.Undo(ctx)
		return err
	default:
		return fmt.Errorf("bridge: cannot send %s", topic)
	}
}

func (l *Local) Receive(topic relay.Topic, h Handler) { l.set(topic, h) }

func (l *Local) BoardState(ctx context.Context) ([]byte, error) {
	return l.relay.BoardState(ctx)
}

func (l *Local) Close() error {
	l.closeOnce.Do(func() {
		close(l.done)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = l.relay.Detach(ctx, l.surface, l.port)
	})
	return nil
}
