// Package session implements the canvas side of the session channel: a
// client that dials the controller's socket once, delivers at most one
// terminal envelope, fires best-effort alerts through a deduplication
// gate, and exposes the controller's close order as a channel.
package session

import (
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/easelterm/easel/internal/protocol"
)

// Options configure a client. The zero value is usable: logs are
// discarded and timeouts fall back to defaults.
type Options struct {
	Scenario     string
	Logger       zerolog.Logger
	DialTimeout  time.Duration
	WriteTimeout time.Duration
}

const (
	defaultDialTimeout  = 2 * time.Second
	defaultWriteTimeout = 1 * time.Second
)

// Client owns one session channel. All methods are safe for concurrent
// use; sends are serialized on a single connection so envelope order on
// the wire matches call order.
type Client struct {
	scenario     string
	log          zerolog.Logger
	writeTimeout time.Duration

	mu       sync.Mutex
	conn     net.Conn
	w        *protocol.Writer
	state    State
	terminal protocol.Kind
	lost     bool

	done      chan struct{}
	closeOnce sync.Once

	gate AlertGate
}

// Connect dials the unix socket at path. There is no retry: a controller
// that cannot be reached at startup is gone, and the caller exits.
func Connect(path string, opts Options) (*Client, error) {
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	c := &Client{
		scenario:     opts.Scenario,
		log:          opts.Logger,
		writeTimeout: opts.WriteTimeout,
		state:        StateConnecting,
		done:         make(chan struct{}),
	}
	conn, err := net.DialTimeout("unix", path, opts.DialTimeout)
	if err != nil {
		c.state = StateDisconnected
		return nil, errors.Wrapf(err, "dial session channel %s", path)
	}
	c.conn = conn
	c.w = protocol.NewWriter(conn)
	c.state = StateConnected
	go c.readLoop(conn)
	c.log.Debug().Str("channel", path).Str("scenario", c.scenario).Msg("session connected")
	return c, nil
}

// Scenario returns the correlation label this session was started with.
func (c *Client) Scenario() string { return c.scenario }

// Done is closed when the controller sends a close envelope. Channel loss
// without a close does not fire it; the canvas keeps serving the user.
func (c *Client) Done() <-chan struct{} { return c.done }

// Gate exposes the session's alert deduplication state.
func (c *Client) Gate() *AlertGate { return &c.gate }

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Lost reports whether the channel failed mid-session. Outbound envelopes
// after loss are dropped.
func (c *Client) Lost() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lost
}

// TerminalSent reports the terminal kind already emitted, if any.
func (c *Client) TerminalSent() (protocol.Kind, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.terminal, c.terminal != ""
}

// SendSelected emits the session's affirmative outcome. Terminal: the
// caller must exit after this returns. A second terminal send is logged
// and ignored.
func (c *Client) SendSelected(payload any) error {
	return c.sendTerminal(protocol.KindSelected, payload)
}

// SendCancelled emits the backed-out outcome. Same terminal contract as
// SendSelected.
func (c *Client) SendCancelled(reason string) error {
	return c.sendTerminal(protocol.KindCancelled, protocol.CancelledPayload{Reason: reason})
}

func (c *Client) sendTerminal(kind protocol.Kind, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.terminal != "" {
		c.log.Warn().
			Str("kind", string(kind)).
			Str("already_sent", string(c.terminal)).
			Msg("dropping second terminal envelope")
		return nil
	}
	if c.state == StateClosed {
		return errors.New("session already closed")
	}
	c.terminal = kind
	c.state = StateTerminating
	env, err := protocol.New(kind, c.scenario, payload)
	if err != nil {
		return err
	}
	if err := c.writeLocked(env); err != nil {
		// Undeliverable outcome does not keep the canvas alive.
		c.log.Error().Err(err).Str("kind", string(kind)).Msg("terminal envelope delivery failed")
		return errors.Wrap(err, "send terminal envelope")
	}
	c.log.Info().Str("kind", string(kind)).Msg("terminal envelope sent")
	return nil
}

// SendAlert is fire-and-forget. Delivery failures are logged at debug and
// dropped; an alert never blocks the UI or ends the session.
func (c *Client) SendAlert(p protocol.AlertPayload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.terminal != "" || c.state != StateConnected || c.lost {
		c.log.Debug().Str("type", p.Type).Str("state", c.state.String()).Msg("alert dropped")
		return
	}
	env, err := protocol.New(protocol.KindAlert, c.scenario, p)
	if err != nil {
		c.log.Debug().Err(err).Str("type", p.Type).Msg("alert payload unmarshalable")
		return
	}
	if err := c.writeLocked(env); err != nil {
		c.log.Debug().Err(err).Str("type", p.Type).Msg("alert delivery failed")
	}
}

// RaiseAlert sends p only when id transitions from clear to raised, and
// reports whether that transition happened. Delivery stays best-effort;
// the gate records the episode either way.
func (c *Client) RaiseAlert(id string, p protocol.AlertPayload) bool {
	if !c.gate.Raise(id) {
		return false
	}
	c.SendAlert(p)
	return true
}

// ClearAlert re-arms the condition so the next breach alerts again.
func (c *Client) ClearAlert(id string) {
	c.gate.Clear(id)
}

// Close releases the channel. If no terminal envelope was sent yet, a
// default cancelled envelope goes out best-effort so the controller never
// has to guess the outcome.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return nil
	}
	if c.terminal == "" && !c.lost && c.conn != nil {
		if env, err := protocol.New(protocol.KindCancelled, c.scenario, protocol.CancelledPayload{Reason: "session closed"}); err == nil {
			if werr := c.writeLocked(env); werr == nil {
				c.log.Info().Msg("default cancelled envelope sent")
			}
		}
		c.terminal = protocol.KindCancelled
	}
	c.state = StateClosed
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (c *Client) writeLocked(env protocol.Envelope) error {
	if c.conn == nil {
		return errors.New("no connection")
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	err := c.w.Write(env)
	_ = c.conn.SetWriteDeadline(time.Time{})
	return err
}

func (c *Client) readLoop(conn net.Conn) {
	r := protocol.NewReader(conn)
	for {
		env, err := r.Next()
		if err != nil {
			// EOF or transport failure. Not a close order: the UI keeps
			// serving the user and later sends become drops.
			c.mu.Lock()
			if c.state == StateConnected {
				c.lost = true
			}
			c.mu.Unlock()
			c.log.Debug().Err(err).Int("skipped", r.Skipped()).Msg("session channel reader stopped")
			return
		}
		if env.Kind == protocol.KindClose {
			c.log.Info().Msg("close envelope received")
			c.closeOnce.Do(func() { close(c.done) })
			return
		}
		// Only close is meaningful inbound; anything else is ignored.
		c.log.Debug().Str("kind", string(env.Kind)).Msg("ignoring unexpected inbound envelope")
	}
}
