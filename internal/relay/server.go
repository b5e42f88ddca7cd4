package relay

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024 * 1024

	portBuffer = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  32 * 1024,
	WriteBufferSize: 32 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			return true
		}
		host := strings.TrimSpace(r.Host)
		return strings.Contains(origin, "://"+host)
	},
}

// Server exposes a Relay to surfaces in other processes:
//
//	GET  /ws?surface=main|tray  message stream (Message as JSON text frames)
//	GET  /state                 current payload, 204 when empty
//	POST /undo                  perform-undo, answers {"surface": ...}
//	GET  /healthz               attached surfaces
type Server struct {
	relay *Relay
}

func NewServer(r *Relay) *Server {
	return &Server{relay: r}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("POST /undo", s.handleUndo)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	raw, err := s.relay.BoardState(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	if len(raw) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(raw)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	target, err := s.relay.Undo(r.Context())
	switch {
	case errors.Is(err, ErrNoSurface):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case err != nil:
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"surface": string(target)})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ids, err := s.relay.Surfaces(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	if ids == nil {
		ids = []SurfaceID{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "surfaces": ids})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id, err := ParseSurface(r.URL.Query().Get("surface"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	port := make(chan Message, portBuffer)
	if err := s.relay.Attach(ctx, id, port); err != nil {
		_ = conn.Close()
		return
	}

	// Replies to get-board-state go through the same writer as relayed
	// messages; gorilla connections allow one concurrent writer.
	replies := make(chan Message, 4)
	go s.writePump(ctx, conn, port, replies)
	s.readPump(ctx, conn, id, replies)

	detachCtx, detachCancel := context.WithTimeout(context.Background(), time.Second)
	_ = s.relay.Detach(detachCtx, id, port)
	detachCancel()
}

func (s *Server) readPump(ctx context.Context, conn *websocket.Conn, id SurfaceID, replies chan<- Message) {
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.relay.log.Warn("surface connection error", "surface", id, "err", err)
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.relay.log.Warn("bad message from surface", "surface", id, "err", err)
			continue
		}

		switch msg.Topic {
		case TopicSyncState:
			msg.Source = id
			if err := s.relay.Publish(ctx, msg); err != nil {
				s.relay.log.Warn("publish", "surface", id, "err", err)
			}
		case TopicGetBoardState:
			raw, err := s.relay.BoardState(ctx)
			if err != nil {
				s.relay.log.Warn("get-board-state", "surface", id, "err", err)
			}
			select {
			case replies <- Message{Topic: TopicGetBoardState, ID: msg.ID, Payload: raw}:
			case <-ctx.Done():
				return
			}
		case TopicPerformUndo:
			if _, err := s.relay.Undo(ctx); err != nil {
				s.relay.log.Warn("perform-undo", "surface", id, "err", err)
			}
		default:
			s.relay.log.Debug("ignoring message", "surface", id, "topic", msg.Topic)
		}
	}
}

func (s *Server) writePump(ctx context.Context, conn *websocket.Conn, port <-chan Message, replies <-chan Message) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	send := func(m Message) bool {
		b, err := json.Marshal(m)
		if err != nil {
			s.relay.log.Error("encode message", "topic", m.Topic, "err", err)
			return true
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteMessage(websocket.TextMessage, b) == nil
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case m := <-port:
			if !send(m) {
				return
			}
		case m := <-replies:
			if !send(m) {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
