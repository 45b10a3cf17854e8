package collab

import (
	"context"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// OverlayState is what the floating overlay window is currently showing.
type OverlayState string

const (
	OverlayRecording    OverlayState = "recording"
	OverlayTranscribing OverlayState = "transcribing"
	OverlayGhostwriting OverlayState = "ghostwriting"
)

// Overlay is the external floating-window collaborator: it accepts
// show/hide/state/partial/final/mic-level events. The core never renders
// anything itself — it only publishes these events.
type Overlay interface {
	Show(ctx context.Context) error
	Hide(ctx context.Context) error
	State(ctx context.Context, state OverlayState) error
	Partial(ctx context.Context, text string) error
	Final(ctx context.Context, text string) error
	MicLevel(ctx context.Context, buckets [16]float32) error
}

type overlayEvent struct {
	Type     string       `json:"type"`
	Text     string       `json:"text,omitempty"`
	State    OverlayState `json:"state,omitempty"`
	MicLevel [16]float32  `json:"mic_level,omitempty"`
}

// WebsocketOverlay publishes overlay events to a single connected
// renderer process over a websocket, matching the kind of lightweight
// local event channel a desktop overlay window would use in place of a
// full IPC framework.
type WebsocketOverlay struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWebsocketOverlay wraps an already-established connection (e.g. from
// an http.HandlerFunc that accepted the overlay renderer's connection).
func NewWebsocketOverlay(conn *websocket.Conn) *WebsocketOverlay {
	return &WebsocketOverlay{conn: conn}
}

func (o *WebsocketOverlay) send(ctx context.Context, ev overlayEvent) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return wsjson.Write(ctx, o.conn, ev)
}

func (o *WebsocketOverlay) Show(ctx context.Context) error {
	return o.send(ctx, overlayEvent{Type: "show"})
}

func (o *WebsocketOverlay) Hide(ctx context.Context) error {
	return o.send(ctx, overlayEvent{Type: "hide"})
}

func (o *WebsocketOverlay) State(ctx context.Context, state OverlayState) error {
	return o.send(ctx, overlayEvent{Type: "state", State: state})
}

func (o *WebsocketOverlay) Partial(ctx context.Context, text string) error {
	return o.send(ctx, overlayEvent{Type: "partial", Text: text})
}

func (o *WebsocketOverlay) Final(ctx context.Context, text string) error {
	return o.send(ctx, overlayEvent{Type: "final", Text: text})
}

func (o *WebsocketOverlay) MicLevel(ctx context.Context, buckets [16]float32) error {
	return o.send(ctx, overlayEvent{Type: "mic-level", MicLevel: buckets})
}

// Close closes the underlying connection with a normal closure.
func (o *WebsocketOverlay) Close() error {
	return o.conn.Close(websocket.StatusNormalClosure, "overlay closed")
}
