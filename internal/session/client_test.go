package session

import (
	"encoding/json"
	"io"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/easelterm/easel/internal/protocol"
)

func startChannel(t *testing.T) (string, net.Listener) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "easel.sock")
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	return path, ln
}

func accept(t *testing.T, ln net.Listener) net.Conn {
	t.Helper()
	conn, err := ln.Accept()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestConnectFailsFastWithoutController(t *testing.T) {
	_, err := Connect(filepath.Join(t.TempDir(), "nobody.sock"), Options{})
	require.Error(t, err)
}

func TestSecondTerminalIgnored(t *testing.T) {
	path, ln := startChannel(t)
	c, err := Connect(path, Options{Scenario: "once"})
	require.NoError(t, err)
	srv := accept(t, ln)

	require.NoError(t, c.SendCancelled("user quit"))
	require.Equal(t, StateTerminating, c.State())

	// Contract violation: must not produce a second envelope.
	require.NoError(t, c.SendSelected(map[string]string{"action": "open"}))

	kind, sent := c.TerminalSent()
	require.True(t, sent)
	require.Equal(t, protocol.KindCancelled, kind)

	require.NoError(t, c.Close())

	r := protocol.NewReader(srv)
	env, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, protocol.KindCancelled, env.Kind)
	require.Equal(t, "once", env.Scenario)

	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestAlertsPrecedeTerminalAndDedup(t *testing.T) {
	path, ln := startChannel(t)
	c, err := Connect(path, Options{Scenario: "alerts"})
	require.NoError(t, err)
	srv := accept(t, ln)

	p := protocol.AlertPayload{Type: "cpu-high", Message: "load 9.2"}
	require.True(t, c.RaiseAlert("cpu-high", p))
	require.False(t, c.RaiseAlert("cpu-high", p))
	require.False(t, c.RaiseAlert("cpu-high", p))

	c.ClearAlert("cpu-high")
	require.True(t, c.RaiseAlert("cpu-high", p))

	require.NoError(t, c.SendSelected(protocol.Navigate("timer")))
	require.NoError(t, c.Close())

	r := protocol.NewReader(srv)
	var kinds []protocol.Kind
	for {
		env, err := r.Next()
		if err != nil {
			require.ErrorIs(t, err, io.EOF)
			break
		}
		kinds = append(kinds, env.Kind)
	}
	require.Equal(t, []protocol.Kind{
		protocol.KindAlert,
		protocol.KindAlert,
		protocol.KindSelected,
	}, kinds)
}

func TestAlertAfterTerminalDropped(t *testing.T) {
	path, ln := startChannel(t)
	c, err := Connect(path, Options{})
	require.NoError(t, err)
	srv := accept(t, ln)

	require.NoError(t, c.SendCancelled(""))
	c.SendAlert(protocol.AlertPayload{Type: "late"})
	require.NoError(t, c.Close())

	r := protocol.NewReader(srv)
	env, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, protocol.KindCancelled, env.Kind)
	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestCloseEnvelopeFiresDone(t *testing.T) {
	path, ln := startChannel(t)
	c, err := Connect(path, Options{})
	require.NoError(t, err)
	srv := accept(t, ln)

	w := protocol.NewWriter(srv)
	env, err := protocol.New(protocol.KindClose, "", nil)
	require.NoError(t, err)
	require.NoError(t, w.Write(env))

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("close envelope not observed")
	}
	require.NoError(t, c.Close())
}

func TestMalformedInboundIgnored(t *testing.T) {
	path, ln := startChannel(t)
	c, err := Connect(path, Options{})
	require.NoError(t, err)
	srv := accept(t, ln)

	_, err = srv.Write([]byte("complete garbage\n{\"kind\":\"teleport\"}\n"))
	require.NoError(t, err)

	select {
	case <-c.Done():
		t.Fatal("garbage must not read as close")
	case <-time.After(100 * time.Millisecond):
	}

	w := protocol.NewWriter(srv)
	env, err := protocol.New(protocol.KindClose, "", nil)
	require.NoError(t, err)
	require.NoError(t, w.Write(env))

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("close envelope not observed after garbage")
	}
	require.NoError(t, c.Close())
}

func TestDefaultCancelledOnClose(t *testing.T) {
	path, ln := startChannel(t)
	c, err := Connect(path, Options{Scenario: "abandoned"})
	require.NoError(t, err)
	srv := accept(t, ln)

	require.NoError(t, c.Close())
	require.Equal(t, StateClosed, c.State())

	r := protocol.NewReader(srv)
	env, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, protocol.KindCancelled, env.Kind)

	var p protocol.CancelledPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	require.Equal(t, "session closed", p.Reason)

	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestChannelLossKeepsSessionAlive(t *testing.T) {
	path, ln := startChannel(t)
	c, err := Connect(path, Options{})
	require.NoError(t, err)
	srv := accept(t, ln)

	require.NoError(t, srv.Close())
	require.Eventually(t, c.Lost, 2*time.Second, 10*time.Millisecond)

	select {
	case <-c.Done():
		t.Fatal("channel loss must not read as close")
	default:
	}

	// Sends degrade to drops; nothing panics and the outcome is recorded.
	c.SendAlert(protocol.AlertPayload{Type: "cpu-high"})
	_ = c.SendCancelled("quit after loss")
	_, sent := c.TerminalSent()
	require.True(t, sent)
	require.NoError(t, c.Close())
}
