package relay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type memStorage struct {
	mu    sync.Mutex
	data  map[string][]byte
	saves int
	fail  bool
}

func newMem() *memStorage { return &memStorage{data: map[string][]byte{}} }

func (m *memStorage) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("disk full")
	}
	m.saves++
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *memStorage) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memStorage) snapshot() (string, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.data[DefaultKey]), m.saves
}

func startRelay(t *testing.T, st Storage, debounce time.Duration) (*Relay, context.CancelFunc, <-chan struct{}) {
	t.Helper()
	r := New(Config{Storage: st, Debounce: debounce})
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
	return r, cancel, done
}

func recv(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case m := <-ch:
		return m
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for message")
		return Message{}
	}
}

func expectNone(t *testing.T, ch <-chan Message) {
	t.Helper()
	select {
	case m := <-ch:
		t.Fatalf("unexpected message: %#v", m)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublish_ForwardsToPeerOnly(t *testing.T) {
	t.Parallel()

	r, _, _ := startRelay(t, newMem(), time.Hour)
	ctx := context.Background()
	mainCh := make(chan Message, 4)
	trayCh := make(chan Message, 4)
	if err := r.Attach(ctx, SurfaceMain, mainCh); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if err := r.Attach(ctx, SurfaceTray, trayCh); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	if err := r.Publish(ctx, Message{Topic: TopicSyncState, Source: SurfaceMain, Payload: []byte(`{"v":1}`)}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	got := recv(t, trayCh)
	if got.Topic != TopicSyncStateUpdate || string(got.Payload) != `{"v":1}` {
		t.Fatalf("tray got %#v", got)
	}
	expectNone(t, mainCh)

	raw, err := r.BoardState(ctx)
	if err != nil || string(raw) != `{"v":1}` {
		t.Fatalf("BoardState = %s, %v", raw, err)
	}

	// Last message wins.
	if err := r.Publish(ctx, Message{Topic: TopicSyncState, Source: SurfaceTray, Payload: []byte(`{"v":2}`)}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got := recv(t, mainCh); string(got.Payload) != `{"v":2}` {
		t.Fatalf("main got %s", got.Payload)
	}
	if raw, _ := r.BoardState(ctx); string(raw) != `{"v":2}` {
		t.Fatalf("BoardState = %s", raw)
	}
}

func TestPublish_RejectsBadInput(t *testing.T) {
	t.Parallel()

	r, _, _ := startRelay(t, nil, 0)
	ctx := context.Background()
	if err := r.Publish(ctx, Message{Topic: TopicPerformUndo}); err == nil {
		t.Fatalf("expected error for wrong topic")
	}
	if err := r.Publish(ctx, Message{Topic: TopicSyncState, Payload: []byte("{")}); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
	raw, err := r.BoardState(ctx)
	if err != nil || raw != nil {
		t.Fatalf("BoardState = %q, %v; want nil", raw, err)
	}
}

func TestDeliver_DropsWhenPortFull(t *testing.T) {
	t.Parallel()

	r, _, _ := startRelay(t, nil, 0)
	ctx := context.Background()
	trayCh := make(chan Message, 1)
	_ = r.Attach(ctx, SurfaceTray, trayCh)

	for i := 0; i < 3; i++ {
		if err := r.Publish(ctx, Message{Topic: TopicSyncState, Source: SurfaceMain, Payload: []byte(`1`)}); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	// Publish is asynchronous; a call round-trip drains the inbox.
	if _, err := r.BoardState(ctx); err != nil {
		t.Fatalf("BoardState: %v", err)
	}
	if len(trayCh) != 1 {
		t.Fatalf("port holds %d messages; want 1", len(trayCh))
	}
}

func TestUndo_Routing(t *testing.T) {
	t.Parallel()

	r, _, _ := startRelay(t, nil, 0)
	ctx := context.Background()

	if _, err := r.Undo(ctx); !errors.Is(err, ErrNoSurface) {
		t.Fatalf("err = %v; want ErrNoSurface", err)
	}

	trayCh := make(chan Message, 4)
	_ = r.Attach(ctx, SurfaceTray, trayCh)
	if to, err := r.Undo(ctx); err != nil || to != SurfaceTray {
		t.Fatalf("Undo = %q, %v; want tray", to, err)
	}
	if m := recv(t, trayCh); m.Topic != TopicPerformUndo {
		t.Fatalf("tray got %#v", m)
	}

	mainCh := make(chan Message, 4)
	_ = r.Attach(ctx, SurfaceMain, mainCh)
	if to, _ := r.Undo(ctx); to != SurfaceMain {
		t.Fatalf("Undo went to %q; want main", to)
	}
	recv(t, mainCh)

	// The last writer takes precedence over main.
	_ = r.Publish(ctx, Message{Topic: TopicSyncState, Source: SurfaceTray, Payload: []byte(`{}`)})
	recv(t, mainCh)
	if to, _ := r.Undo(ctx); to != SurfaceTray {
		t.Fatalf("Undo went to %q; want tray", to)
	}

	_ = r.Detach(ctx, SurfaceTray, trayCh)
	if to, _ := r.Undo(ctx); to != SurfaceMain {
		t.Fatalf("Undo after detach went to %q; want main", to)
	}
	ids, _ := r.Surfaces(ctx)
	if len(ids) != 1 || ids[0] != SurfaceMain {
		t.Fatalf("Surfaces = %v", ids)
	}
}

func TestRun_LoadsPersistedAndIgnoresMalformed(t *testing.T) {
	t.Parallel()

	good := newMem()
	good.data[DefaultKey] = []byte(`{"saved":true}`)
	r, _, _ := startRelay(t, good, 0)
	if raw, _ := r.BoardState(context.Background()); string(raw) != `{"saved":true}` {
		t.Fatalf("BoardState = %s", raw)
	}

	bad := newMem()
	bad.data[DefaultKey] = []byte(`{"saved":`)
	r2, _, _ := startRelay(t, bad, 0)
	if raw, _ := r2.BoardState(context.Background()); raw != nil {
		t.Fatalf("malformed state adopted: %s", raw)
	}
}

func TestPersistence_DebouncedAndFlushedOnShutdown(t *testing.T) {
	t.Parallel()

	st := newMem()
	r, _, _ := startRelay(t, st, 200*time.Millisecond)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_ = r.Publish(ctx, Message{Topic: TopicSyncState, Source: SurfaceMain, Payload: []byte(`{"n":` + string(rune('0'+i)) + `}`)})
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		data, saves := st.snapshot()
		if data == `{"n":4}` {
			if saves != 1 {
				t.Fatalf("burst produced %d writes; want 1", saves)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("state never persisted (have %q)", data)
		}
		time.Sleep(10 * time.Millisecond)
	}

	slow := newMem()
	r2, cancel, done := startRelay(t, slow, time.Hour)
	_ = r2.Publish(ctx, Message{Topic: TopicSyncState, Source: SurfaceTray, Payload: []byte(`{"late":1}`)})
	if _, err := r2.BoardState(ctx); err != nil {
		t.Fatalf("BoardState: %v", err)
	}
	cancel()
	<-done
	if data, _ := slow.snapshot(); data != `{"late":1}` {
		t.Fatalf("shutdown flush wrote %q", data)
	}
	if err := r2.Publish(ctx, Message{Topic: TopicSyncState, Payload: []byte(`1`)}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Publish after stop = %v; want ErrClosed", err)
	}
}

func TestPersistence_FailureIsNotFatal(t *testing.T) {
	t.Parallel()

	st := newMem()
	st.fail = true
	r, _, _ := startRelay(t, st, 10*time.Millisecond)
	ctx := context.Background()
	_ = r.Publish(ctx, Message{Topic: TopicSyncState, Source: SurfaceMain, Payload: []byte(`{"a":1}`)})
	time.Sleep(50 * time.Millisecond)
	if raw, _ := r.BoardState(ctx); string(raw) != `{"a":1}` {
		t.Fatalf("relay lost state after failed write: %s", raw)
	}

	st.mu.Lock()
	st.fail = false
	st.mu.Unlock()
	_ = r.Publish(ctx, Message{Topic: TopicSyncState, Source: SurfaceMain, Payload: []byte(`{"a":2}`)})
	deadline := time.Now().Add(2 * time.Second)
	for {
		if data, _ := st.snapshot(); data == `{"a":2}` {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("next cycle did not retry the write")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestUndo_RoutingFollowsUndoneWrites(t *testing.T) {
	t.Parallel()

	r, _, _ := startRelay(t, nil, 0)
	ctx := context.Background()
	mainCh := make(chan Message, 8)
	trayCh := make(chan Message, 8)
	_ = r.Attach(ctx, SurfaceMain, mainCh)
	_ = r.Attach(ctx, SurfaceTray, trayCh)

	publish := func(src SurfaceID, trigger string) {
		t.Helper()
		payload := []byte(`{"lastOperation":{"outcome":{"type":"card-add"},"trigger":"` + trigger + `"}}`)
		if err := r.Publish(ctx, Message{Topic: TopicSyncState, Source: src, Payload: payload}); err != nil {
			t.Fatalf("Publish: %v", err)
		}
		recv(t, map[SurfaceID]chan Message{SurfaceMain: trayCh, SurfaceTray: mainCh}[src])
	}

	publish(SurfaceMain, "keyboard")
	publish(SurfaceTray, "pointer")
	publish(SurfaceTray, "keyboard")
	if to, _ := r.Undo(ctx); to != SurfaceTray {
		t.Fatalf("Undo went to %q; want tray", to)
	}
	recv(t, trayCh)

	// The tray undoes both of its writes; after that main owns the newest one.
	publish(SurfaceTray, "undo")
	if to, _ := r.Undo(ctx); to != SurfaceTray {
		t.Fatalf("second Undo went to %q; want tray", to)
	}
	recv(t, trayCh)
	publish(SurfaceTray, "undo")

	// Sending the next undo to the tray would be wasted: it has nothing left.
	if to, _ := r.Undo(ctx); to != SurfaceMain {
		t.Fatalf("Undo after the tray's history emptied went to %q; want main", to)
	}
	recv(t, mainCh)
}

func TestExternal(t *testing.T) {
	t.Parallel()

	r, _, _ := startRelay(t, newMem(), time.Hour)
	ctx := context.Background()
	mainCh := make(chan Message, 4)
	trayCh := make(chan Message, 4)
	_ = r.Attach(ctx, SurfaceMain, mainCh)
	_ = r.Attach(ctx, SurfaceTray, trayCh)

	if err := r.External(ctx, []byte(`{"remote":1}`)); err != nil {
		t.Fatalf("External: %v", err)
	}
	if m := recv(t, mainCh); string(m.Payload) != `{"remote":1}` {
		t.Fatalf("main got %s", m.Payload)
	}
	if m := recv(t, trayCh); m.Topic != TopicSyncStateUpdate {
		t.Fatalf("tray got %#v", m)
	}

	// Same payload again is not re-broadcast.
	_ = r.External(ctx, []byte(`{"remote":1}`))
	_ = r.External(ctx, []byte(`not json`))
	expectNone(t, mainCh)
	expectNone(t, trayCh)
}

func TestSurfacePeer(t *testing.T) {
	t.Parallel()

	if SurfaceMain.Peer() != SurfaceTray || SurfaceTray.Peer() != SurfaceMain {
		t.Fatalf("peer mapping broken")
	}
	if _, err := ParseSurface("desk"); err == nil {
		t.Fatalf("expected error for unknown surface")
	}
	if id, err := ParseSurface(" Tray "); err != nil || id != SurfaceTray {
		t.Fatalf("ParseSurface = %q, %v", id, err)
	}
}
