package relay

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Topic string

const (
	TopicSyncState       Topic = "sync-state"
	TopicSyncStateUpdate Topic = "sync-state-update"
	TopicPerformUndo     Topic = "perform-undo"
	TopicGetBoardState   Topic = "get-board-state"
)

// SurfaceID names one of the two UI surfaces attached to a relay.
type SurfaceID string

const (
	SurfaceMain SurfaceID = "main"
	SurfaceTray SurfaceID = "tray"
)

func ParseSurface(s string) (SurfaceID, error) {
	switch SurfaceID(strings.ToLower(strings.TrimSpace(s))) {
	case SurfaceMain:
		return SurfaceMain, nil
	case SurfaceTray:
		return SurfaceTray, nil
	default:
		return "", fmt.Errorf("unknown surface %q (want main or tray)", s)
	}
}

// Peer is the other surface. Routing is by identity only; payloads are never
// inspected.
func (s SurfaceID) Peer() SurfaceID {
	if s == SurfaceTray {
		return SurfaceMain
	}
	return SurfaceTray
}

// Message is the envelope exchanged between surfaces and the relay. Payload
// is the encoded board state and is carried opaquely.
type Message struct {
	Topic   Topic           `json:"topic"`
	Source  SurfaceID       `json:"source,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	// ID correlates a get-board-state request with its reply.
	ID string `json:"id,omitempty"`
}
