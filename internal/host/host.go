// Package host is the reference controller: it owns the session socket,
// spawns canvas processes, and consumes their envelopes. One session
// runs at a time; a navigate selection tears the session down and
// spawns the target canvas on a fresh socket. Every observed envelope
// goes over an in-process bus to the reporter and, when enabled, the
// SQLite journal.
package host

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/easelterm/easel/internal/config"
	"github.com/easelterm/easel/internal/protocol"
)

const acceptTimeout = 10 * time.Second

// Outcome is how a run of sessions ended: the terminal envelope's kind
// and payload, or an implicit cancellation when the canvas exited
// without sending one.
type Outcome struct {
	Kind     protocol.Kind   `json:"kind"`
	Scenario string          `json:"scenario"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	Implicit bool            `json:"implicit"`
	Navigate string          `json:"navigate,omitempty"`
}

type Options struct {
	Config  config.HostConfig
	Logger  zerolog.Logger
	Spawner Spawner
	Journal *Journal
	// Once disables respawn-on-navigate; Run returns the navigate
	// outcome instead.
	Once bool
	// ConfigJSON is forwarded verbatim to every spawned canvas.
	ConfigJSON string
}

type Host struct {
	cfg        config.HostConfig
	log        zerolog.Logger
	spawner    Spawner
	bus        *Bus
	journal    *Journal
	once       bool
	configJSON string

	mu      sync.Mutex
	live    *liveSession
	closing bool

	shutOnce  sync.Once
	consumers errgroup.Group

	acceptWait time.Duration
}

type liveSession struct {
	conn net.Conn
	w    *protocol.Writer
	proc Process
	done chan struct{}
}

func New(opts Options) *Host {
	h := &Host{
		cfg:        opts.Config,
		log:        opts.Logger,
		spawner:    opts.Spawner,
		bus:        NewBus(),
		journal:    opts.Journal,
		once:       opts.Once,
		configJSON: opts.ConfigJSON,
		acceptWait: acceptTimeout,
	}
	if h.spawner == nil {
		h.spawner = ExecSpawner{}
	}
	return h
}

// Start subscribes the reporter and journal consumers. Call it before
// Run; the bus drops envelopes published with nobody listening.
func (h *Host) Start(ctx context.Context) error {
	msgs, err := h.bus.Subscribe(ctx)
	if err != nil {
		return errors.Wrap(err, "subscribe reporter")
	}
	h.consumers.Go(func() error { h.report(msgs); return nil })

	if h.journal != nil {
		jmsgs, err := h.bus.Subscribe(ctx)
		if err != nil {
			return errors.Wrap(err, "subscribe journal")
		}
		h.consumers.Go(func() error { h.record(jmsgs); return nil })
	}
	return nil
}

// Run serves sessions starting from kind, following navigate handoffs,
// until a session ends with a non-navigate outcome.
func (h *Host) Run(ctx context.Context, kind string) (Outcome, error) {
	current := kind
	for {
		out, err := h.session(ctx, current)
		if err != nil {
			return Outcome{}, err
		}
		if out.Navigate == "" || h.once || h.isClosing() {
			return out, nil
		}
		h.log.Info().Str("from", current).Str("to", out.Navigate).Msg("navigate handoff")
		current = out.Navigate
	}
}

func (h *Host) session(ctx context.Context, kind string) (Outcome, error) {
	id := uuid.NewString()[:8]
	scenario := fmt.Sprintf("%s-%s", kind, id)
	socket := filepath.Join(h.socketDir(), "easel-"+id+".sock")

	ln, err := listenSession(socket)
	if err != nil {
		return Outcome{}, err
	}
	defer func() {
		_ = ln.Close()
		_ = os.Remove(socket)
	}()

	h.log.Info().Str("canvas", kind).Str("scenario", scenario).Str("socket", socket).Msg("session starting")
	proc, err := h.spawner.Spawn(ctx, SpawnSpec{
		ID:         id,
		Kind:       kind,
		Socket:     socket,
		Scenario:   scenario,
		ConfigJSON: h.configJSON,
	})
	if err != nil {
		return Outcome{}, err
	}

	conn, err := acceptOne(ln, h.acceptWait)
	if err != nil {
		_ = proc.Kill()
		go func() { _ = proc.Wait() }()
		return Outcome{}, errors.Wrap(err, "canvas never connected")
	}
	defer conn.Close()

	sess := &liveSession{conn: conn, w: protocol.NewWriter(conn), proc: proc, done: make(chan struct{})}
	h.setLive(sess)
	defer func() {
		h.setLive(nil)
		close(sess.done)
	}()

	exitCh := make(chan error, 1)
	go func() { exitCh <- proc.Wait() }()

	outcome := Outcome{Kind: protocol.KindCancelled, Scenario: scenario, Implicit: true}
	r := protocol.NewReader(conn)
	for {
		env, err := r.Next()
		if err != nil {
			break
		}
		h.publish(env)
		if !env.Kind.Terminal() {
			continue
		}
		if !outcome.Implicit {
			h.log.Warn().Str("kind", string(env.Kind)).Msg("duplicate terminal envelope ignored")
			continue
		}
		outcome = Outcome{Kind: env.Kind, Scenario: scenario, Payload: env.Payload}
		if target, ok := protocol.DecodeNavigate(env); ok {
			outcome.Navigate = target
		}
	}

	select {
	case <-exitCh:
	case <-time.After(h.grace()):
		h.log.Warn().Int("pid", proc.PID()).Msg("canvas exceeded grace period, killing")
		_ = proc.Kill()
		<-exitCh
	}

	if outcome.Implicit {
		env, err := protocol.New(protocol.KindCancelled, scenario,
			map[string]string{"reason": "canvas exited without outcome"})
		if err == nil {
			h.publish(env)
		}
	}
	h.log.Info().
		Str("scenario", scenario).
		Str("outcome", string(outcome.Kind)).
		Bool("implicit", outcome.Implicit).
		Msg("session finished")
	return outcome, nil
}

// Shutdown orders the live canvas to close, waits out the grace period,
// and kills whatever remains. Safe to call from a signal handler while
// Run is blocked; also safe to call twice.
func (h *Host) Shutdown() {
	h.shutOnce.Do(func() {
		h.mu.Lock()
		h.closing = true
		s := h.live
		h.mu.Unlock()

		if s != nil {
			if env, err := protocol.New(protocol.KindClose, "", nil); err == nil {
				_ = s.w.Write(env)
			}
			select {
			case <-s.done:
			case <-time.After(h.grace()):
				h.log.Warn().Msg("session ignored close, killing")
				_ = s.proc.Kill()
				select {
				case <-s.done:
				case <-time.After(2 * time.Second):
				}
			}
		}
		_ = h.bus.Close()
		_ = h.consumers.Wait()
	})
}

func (h *Host) publish(env protocol.Envelope) {
	if err := h.bus.Publish(env); err != nil {
		h.log.Debug().Err(err).Msg("bus publish failed")
	}
}

func (h *Host) report(msgs <-chan *message.Message) {
	for msg := range msgs {
		env, ok := decodeBusEnvelope(msg)
		if !ok {
			h.log.Warn().Str("msg", msg.UUID).Msg("undecodable envelope on bus")
			msg.Ack()
			continue
		}
		ev := h.log.Info().Str("kind", string(env.Kind)).Str("scenario", env.Scenario)
		if len(env.Payload) > 0 {
			ev = ev.RawJSON("payload", env.Payload)
		}
		ev.Msg("envelope")
		msg.Ack()
	}
}

func (h *Host) record(msgs <-chan *message.Message) {
	for msg := range msgs {
		env, ok := decodeBusEnvelope(msg)
		if !ok {
			msg.Ack()
			continue
		}
		if err := h.journal.Record(msg.UUID, env); err != nil {
			h.log.Error().Err(err).Msg("journal write failed")
		}
		msg.Ack()
	}
}

func decodeBusEnvelope(msg *message.Message) (protocol.Envelope, bool) {
	var env protocol.Envelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		return protocol.Envelope{}, false
	}
	return env, true
}

func acceptOne(ln net.Listener, wait time.Duration) (net.Conn, error) {
	if ul, ok := ln.(*net.UnixListener); ok {
		_ = ul.SetDeadline(time.Now().Add(wait))
	}
	return ln.Accept()
}

func (h *Host) setLive(s *liveSession) {
	h.mu.Lock()
	h.live = s
	h.mu.Unlock()
}

func (h *Host) isClosing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closing
}

func (h *Host) grace() time.Duration {
	if h.cfg.GracePeriod > 0 {
		return h.cfg.GracePeriod
	}
	return 3 * time.Second
}

func (h *Host) socketDir() string {
	if h.cfg.SocketDir != "" {
		return h.cfg.SocketDir
	}
	return DefaultSocketDir()
}
