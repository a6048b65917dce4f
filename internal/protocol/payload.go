package protocol

import "encoding/json"

// ActionNavigate is the reserved selected-payload action for canvas
// handoff. Payload shapes for other actions belong to their canvases.
const ActionNavigate = "navigate"

// NavigatePayload asks the controller to relaunch with a different canvas.
type NavigatePayload struct {
	Action string `json:"action"`
	Canvas string `json:"canvas"`
}

// Navigate builds the handoff payload for the given canvas kind.
func Navigate(canvas string) NavigatePayload {
	return NavigatePayload{Action: ActionNavigate, Canvas: canvas}
}

// DecodeNavigate extracts a navigation target from a selected envelope.
// The second return is false for anything that is not a well-formed
// handoff request.
func DecodeNavigate(e Envelope) (string, bool) {
	if e.Kind != KindSelected || len(e.Payload) == 0 {
		return "", false
	}
	var p NavigatePayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return "", false
	}
	if p.Action != ActionNavigate || p.Canvas == "" {
		return "", false
	}
	return p.Canvas, true
}

// CancelledPayload annotates a cancellation with its cause.
type CancelledPayload struct {
	Reason string `json:"reason,omitempty"`
}

// AlertPayload describes a canvas-side condition worth the controller's
// attention. Type doubles as the deduplication condition id unless the
// sender supplies a narrower one.
type AlertPayload struct {
	Type    string         `json:"type"`
	Message string         `json:"message,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}
