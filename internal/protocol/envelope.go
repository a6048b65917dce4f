// Package protocol defines the wire vocabulary spoken between a canvas
// process and the controller that spawned it. Envelopes travel as
// newline-delimited JSON over the per-session channel: the canvas writes
// selected, cancelled and alert envelopes, the controller writes close.
package protocol

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// Kind discriminates the envelope vocabulary.
type Kind string

const (
	// KindSelected carries the session's affirmative outcome. Terminal.
	KindSelected Kind = "selected"
	// KindCancelled reports the user backed out without an outcome. Terminal.
	KindCancelled Kind = "cancelled"
	// KindAlert is an asynchronous canvas-side notification. Non-terminal.
	KindAlert Kind = "alert"
	// KindClose is the controller ordering the canvas to shut down.
	KindClose Kind = "close"
)

// Terminal reports whether the kind ends the session from the canvas side.
func (k Kind) Terminal() bool {
	return k == KindSelected || k == KindCancelled
}

// Known reports whether the kind belongs to the envelope vocabulary.
func (k Kind) Known() bool {
	switch k {
	case KindSelected, KindCancelled, KindAlert, KindClose:
		return true
	}
	return false
}

// Envelope is one framed message on the session channel.
type Envelope struct {
	Kind      Kind            `json:"kind"`
	Scenario  string          `json:"scenario,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// New builds an envelope for the given kind, marshaling payload in place.
// A nil payload is allowed for kinds that carry none.
func New(kind Kind, scenario string, payload any) (Envelope, error) {
	env := Envelope{Kind: kind, Scenario: scenario, Timestamp: time.Now().UTC()}
	if payload == nil {
		return env, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, errors.Wrap(err, "marshal payload")
	}
	env.Payload = raw
	return env, nil
}
