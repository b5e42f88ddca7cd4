package relay

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

func dial(t *testing.T, srv *httptest.Server, surface string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?surface=" + surface
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", surface, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMsg(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return m
}

func writeMsg(t *testing.T, conn *websocket.Conn, m Message) {
	t.Helper()
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func waitSurfaces(t *testing.T, r *Relay, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		ids, _ := r.Surfaces(context.Background())
		if len(ids) == n {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("surfaces = %v; want %d attached", ids, n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestServer_RelaysBetweenSurfaces(t *testing.T) {
	t.Parallel()

	r, _, _ := startRelay(t, newMem(), time.Hour)
	srv := httptest.NewServer(NewServer(r).Handler())
	t.Cleanup(srv.Close)

	mainConn := dial(t, srv, "main")
	trayConn := dial(t, srv, "tray")
	waitSurfaces(t, r, 2)

	// Source is taken from the connection, not the message.
	writeMsg(t, mainConn, Message{Topic: TopicSyncState, Source: SurfaceTray, Payload: []byte(`{"x":1}`)})
	got := readMsg(t, trayConn)
	if got.Topic != TopicSyncStateUpdate || got.Source != SurfaceMain || string(got.Payload) != `{"x":1}` {
		t.Fatalf("tray got %#v", got)
	}

	writeMsg(t, trayConn, Message{Topic: TopicGetBoardState, ID: "req-1"})
	reply := readMsg(t, trayConn)
	if reply.Topic != TopicGetBoardState || reply.ID != "req-1" || string(reply.Payload) != `{"x":1}` {
		t.Fatalf("reply = %#v", reply)
	}

	resp, err := http.Post(srv.URL+"/undo", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /undo: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"main"`) {
		t.Fatalf("POST /undo = %d %s", resp.StatusCode, body)
	}
	if m := readMsg(t, mainConn); m.Topic != TopicPerformUndo {
		t.Fatalf("main got %#v", m)
	}

	resp, err = http.Get(srv.URL + "/state")
	if err != nil {
		t.Fatalf("GET /state: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(body) != `{"x":1}` {
		t.Fatalf("GET /state = %s", body)
	}
}

func TestServer_EmptyStateAndBadSurface(t *testing.T) {
	t.Parallel()

	r, _, _ := startRelay(t, nil, 0)
	srv := httptest.NewServer(NewServer(r).Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/state")
	if err != nil {
		t.Fatalf("GET /state: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("GET /state = %d; want 204", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/undo", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /undo: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("POST /undo with no surfaces = %d; want 409", resp.StatusCode)
	}

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?surface=desk"
	if _, resp, err := websocket.DefaultDialer.Dial(url, nil); err == nil {
		t.Fatalf("dial with unknown surface succeeded")
	} else if resp != nil && resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", resp.StatusCode)
	}
}
