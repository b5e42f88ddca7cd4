package bridge

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tray-kanban/internal/relay"
)

func runRelay(t *testing.T) *relay.Relay {
	t.Helper()
	r := relay.New(relay.Config{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = r.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return r
}

func collect(b Bridge, topic relay.Topic) <-chan relay.Message {
	ch := make(chan relay.Message, 8)
	b.Receive(topic, func(m relay.Message) { ch <- m })
	return ch
}

func wait(t *testing.T, ch <-chan relay.Message) relay.Message {
	t.Helper()
	select {
	case m := <-ch:
		return m
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for message")
		return relay.Message{}
	}
}

func TestLocal_SyncAndUndo(t *testing.T) {
	t.Parallel()

	r := runRelay(t)
	ctx := context.Background()
	mainB, err := NewLocal(ctx, r, relay.SurfaceMain, nil)
	if err != nil {
		t.Fatalf("NewLocal(main): %v", err)
	}
	defer mainB.Close()
	trayB, err := NewLocal(ctx, r, relay.SurfaceTray, nil)
	if err != nil {
		t.Fatalf("NewLocal(tray): %v", err)
	}
	defer trayB.Close()

	updates := collect(trayB, relay.TopicSyncStateUpdate)
	undos := collect(mainB, relay.TopicPerformUndo)

	if err := mainB.Send(relay.TopicSyncState, []byte(`{"board":1}`)); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if m := wait(t, updates); string(m.Payload) != `{"board":1}` {
		t.Fatalf("tray got %s", m.Payload)
	}
	raw, err := trayB.BoardState(ctx)
	if err != nil || string(raw) != `{"board":1}` {
		t.Fatalf("BoardState = %s, %v", raw, err)
	}

	// main wrote last, so undo from the tray shortcut lands on main.
	if err := trayB.Send(relay.TopicPerformUndo, nil); err != nil {
		t.Fatalf("Send undo: %v", err)
	}
	wait(t, undos)

	_ = mainB.Close()
	if err := mainB.Send(relay.TopicSyncState, []byte(`1`)); err != ErrClosed {
		t.Fatalf("Send after Close = %v; want ErrClosed", err)
	}
}

func TestWS_SyncAndPull(t *testing.T) {
	t.Parallel()

	r := runRelay(t)
	srv := httptest.NewServer(relay.NewServer(r).Handler())
	t.Cleanup(srv.Close)
	addr := strings.TrimPrefix(srv.URL, "http://")
	ctx := context.Background()

	mainB, err := Dial(ctx, addr, relay.SurfaceMain, nil)
	if err != nil {
		t.Fatalf("Dial(main): %v", err)
	}
	defer mainB.Close()
	trayB, err := Dial(ctx, addr, relay.SurfaceTray, nil)
	if err != nil {
		t.Fatalf("Dial(tray): %v", err)
	}
	defer trayB.Close()

	// Empty relay pulls as nil.
	pullCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	raw, err := mainB.BoardState(pullCtx)
	if err != nil || raw != nil {
		t.Fatalf("BoardState(empty) = %q, %v", raw, err)
	}

	// Wait until both connections are attached before publishing.
	deadline := time.Now().Add(2 * time.Second)
	for {
		ids, _ := r.Surfaces(ctx)
		if len(ids) == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("surfaces never attached: %v", ids)
		}
		time.Sleep(10 * time.Millisecond)
	}

	updates := collect(mainB, relay.TopicSyncStateUpdate)
	if err := trayB.Send(relay.TopicSyncState, []byte(`{"from":"tray"}`)); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if m := wait(t, updates); string(m.Payload) != `{"from":"tray"}` || m.Source != relay.SurfaceTray {
		t.Fatalf("main got %#v", m)
	}

	raw, err = mainB.BoardState(pullCtx)
	if err != nil || string(raw) != `{"from":"tray"}` {
		t.Fatalf("BoardState = %s, %v", raw, err)
	}
	state, err := FetchState(ctx, addr)
	if err != nil || string(state) != `{"from":"tray"}` {
		t.Fatalf("FetchState = %s, %v", state, err)
	}

	undos := collect(trayB, relay.TopicPerformUndo)
	to, err := RequestUndo(ctx, addr)
	if err != nil || to != relay.SurfaceTray {
		t.Fatalf("RequestUndo = %q, %v; want tray", to, err)
	}
	wait(t, undos)
}
