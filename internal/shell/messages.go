package shell

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/easelterm/easel/internal/protocol"
)

// SelectMsg carries the canvas's affirmative outcome. The shell turns it
// into the terminal selected envelope and exits.
type SelectMsg struct {
	Payload any
}

// CancelMsg is the canvas backing out. Terminal, same as SelectMsg.
type CancelMsg struct {
	Reason string
}

// AlertMsg raises a deduplicated alert condition.
type AlertMsg struct {
	ID      string
	Payload protocol.AlertPayload
}

// ClearAlertMsg re-arms a condition after it recovers.
type ClearAlertMsg struct {
	ID string
}

// StatusMsg updates the status bar.
type StatusMsg struct {
	Text  string
	IsErr bool
}

// sessionClosedMsg is injected when the controller's close envelope
// arrives. It outranks every modal state.
type sessionClosedMsg struct{}

func Select(payload any) tea.Cmd {
	return func() tea.Msg { return SelectMsg{Payload: payload} }
}

func Cancel(reason string) tea.Cmd {
	return func() tea.Msg { return CancelMsg{Reason: reason} }
}

func Alert(id string, p protocol.AlertPayload) tea.Cmd {
	return func() tea.Msg { return AlertMsg{ID: id, Payload: p} }
}

func ClearAlert(id string) tea.Cmd {
	return func() tea.Msg { return ClearAlertMsg{ID: id} }
}

func Status(text string) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: text} }
}

func Error(err error) tea.Cmd {
	return func() tea.Msg {
		if err == nil {
			return StatusMsg{}
		}
		return StatusMsg{Text: err.Error(), IsErr: true}
	}
}
