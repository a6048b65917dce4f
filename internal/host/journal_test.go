package host

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/easelterm/easel/internal/protocol"
)

func TestJournalRoundTrip(t *testing.T) {
	j, err := OpenJournal(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	alert, err := protocol.New(protocol.KindAlert, "docker-1a2b",
		protocol.AlertPayload{Type: "container-cpu-high", Message: "web at 91%"})
	require.NoError(t, err)
	cancel, err := protocol.New(protocol.KindCancelled, "docker-1a2b", nil)
	require.NoError(t, err)
	pick, err := protocol.New(protocol.KindSelected, "notes-9f00", map[string]int{"words": 12})
	require.NoError(t, err)

	require.NoError(t, j.Record("m1", alert))
	require.NoError(t, j.Record("m2", cancel))
	require.NoError(t, j.Record("m3", pick))

	got, err := j.Scenario("docker-1a2b")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "m1", got[0].EnvelopeID)
	require.Equal(t, "alert", got[0].Kind)
	require.Contains(t, got[0].Payload, "container-cpu-high")
	require.Equal(t, "cancelled", got[1].Kind)
	require.WithinDuration(t, time.Now(), got[0].Timestamp, time.Minute)

	got, err = j.Scenario("notes-9f00")
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = j.Scenario("unknown")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestJournalReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := OpenJournal(path)
	require.NoError(t, err)
	env, err := protocol.New(protocol.KindSelected, "files-0001", map[string]string{"path": "/tmp/x"})
	require.NoError(t, err)
	require.NoError(t, j.Record("m1", env))
	require.NoError(t, j.Close())

	// Second open runs the migrations against an up-to-date schema.
	j, err = OpenJournal(path)
	require.NoError(t, err)
	defer j.Close()

	got, err := j.Scenario("files-0001")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Contains(t, got[0].Payload, "/tmp/x")
}
