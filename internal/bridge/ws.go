package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"tray-kanban/internal/relay"
)

const writeWait = 10 * time.Second

// WS talks to a relay served by relay.Server in another process.
type WS struct {
	conn    *websocket.Conn
	surface relay.SurfaceID
	log     *slog.Logger
	handlers

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan []byte
	closed  bool

	done chan struct{}
}

func wsURL(addr string, surface relay.SurfaceID) string {
	u := url.URL{Scheme: "ws", Host: strings.TrimSpace(addr), Path: "/ws"}
	q := u.Query()
	q.Set("surface", string(surface))
	u.RawQuery = q.Encode()
	return u.String()
}

// Dial connects surface to the relay listening on addr (host:port).
func Dial(ctx context.Context, addr string, surface relay.SurfaceID, log *slog.Logger) (*WS, error) {
	if log == nil {
		log = slog.Default()
	}
	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.DialContext(ctx, wsURL(addr, surface), nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay %s: %w", addr, err)
	}
	w := &WS{
		conn:    conn,
		surface: surface,
		log:     log.With("component", "bridge", "surface", surface),
		pending: map[string]chan []byte{},
		done:    make(chan struct{}),
	}
	conn.SetPingHandler(func(data string) error {
		w.writeMu.Lock()
		defer w.writeMu.Unlock()
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
	})
	go w.readLoop()
	return w, nil
}

func (w *WS) readLoop() {
	defer func() {
		w.mu.Lock()
		w.closed = true
		for id, ch := range w.pending {
			close(ch)
			delete(w.pending, id)
		}
		w.mu.Unlock()
		close(w.done)
	}()

	for {
		_, data, err := w.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) && !errors.Is(err, net.ErrClosed) {
				w.log.Debug("relay connection ended", "err", err)
			}
			return
		}
		var msg relay.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			w.log.Warn("bad message from relay", "err", err)
			continue
		}
		if msg.Topic == relay.TopicGetBoardState && msg.ID != "" {
			w.mu.Lock()
			ch, ok := w.pending[msg.ID]
			delete(w.pending, msg.ID)
			w.mu.Unlock()
			if ok {
				ch <- []byte(msg.Payload)
			}
			continue
		}
		if !w.dispatch(msg) {
			w.log.Debug("no handler", "topic", msg.Topic)
		}
	}
}

func (w *WS) write(msg relay.Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteMessage(websocket.TextMessage, b)
}

func (w *WS) Send(topic relay.Topic, payload []byte) error {
	select {
	case <-w.done:
		return ErrClosed
	default:
	}
	return w.write(relay.Message{Topic: topic, Source: w.surface, Payload: payload})
}

func (w *WS) Receive(topic relay.Topic, h Handler) { w.set(topic, h) }

func (w *WS) BoardState(ctx context.Context) ([]byte, error) {
	id := uuid.NewString()
	ch := make(chan []byte, 1)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, ErrClosed
	}
	w.pending[id] = ch
	w.mu.Unlock()

	if err := w.write(relay.Message{Topic: relay.TopicGetBoardState, Source: w.surface, ID: id}); err != nil {
		w.mu.Lock()
		delete(w.pending, id)
		w.mu.Unlock()
		return nil, err
	}

	select {
	case raw, ok := <-ch:
		if !ok {
			return nil, ErrClosed
		}
		if len(raw) == 0 || string(raw) == "null" {
			return nil, nil
		}
		return raw, nil
	case <-ctx.Done():
		w.mu.Lock()
		delete(w.pending, id)
		w.mu.Unlock()
		return nil, ctx.Err()
	}
}

// Done is closed once the connection to the relay is gone.
func (w *WS) Done() <-chan struct{} { return w.done }

func (w *WS) Close() error {
	w.writeMu.Lock()
	_ = w.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	w.writeMu.Unlock()
	err := w.conn.Close()
	<-w.done
	return err
}

// RequestUndo asks the relay on addr to route perform-undo to a surface and
// returns the surface that received it.
func RequestUndo(ctx context.Context, addr string) (relay.SurfaceID, error) {
	u := url.URL{Scheme: "http", Host: strings.TrimSpace(addr), Path: "/undo"}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("reach relay %s: %w", addr, err)
	}
	defer resp.Body.Close()

	var body struct {
		Surface relay.SurfaceID `json:"surface"`
		Error   string          `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode relay response: %w", err)
	}
	if resp.StatusCode == http.StatusConflict {
		return "", relay.ErrNoSurface
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("relay: %s", body.Error)
	}
	return body.Surface, nil
}

// FetchState reads the relay's current payload over HTTP.
func FetchState(ctx context.Context, addr string) ([]byte, error) {
	u := url.URL{Scheme: "http", Host: strings.TrimSpace(addr), Path: "/state"}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reach relay %s: %w", addr, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("relay: GET /state: %s", resp.Status)
	}
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	return []byte(raw), nil
}
