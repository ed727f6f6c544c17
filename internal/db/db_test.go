package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/trackpilot/internal/scrproto"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestSessionLifecycle(t *testing.T) {
	d := newTestDB(t)

	id, err := d.StartSession("localhost", 3001, "SCR", 2, "forza")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, d.EndSession(id, "shutdown", 4))

	sessions, err := d.Sessions(10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	got := sessions[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "localhost", got.Host)
	assert.Equal(t, 3001, got.Port)
	assert.Equal(t, "SCR", got.SID)
	assert.Equal(t, 2, got.Stage)
	assert.Equal(t, "forza", got.Track)
	assert.Equal(t, "shutdown", got.Outcome)
	assert.Equal(t, 4, got.FinalPos)
}

func TestOpenSessionHasEmptyOutcome(t *testing.T) {
	d := newTestDB(t)

	_, err := d.StartSession("localhost", 3001, "SCR", 0, "unknown")
	require.NoError(t, err)

	sessions, err := d.Sessions(10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Empty(t, sessions[0].Outcome)
	assert.Zero(t, sessions[0].FinalPos)
}

func TestRecordAndReadFrames(t *testing.T) {
	d := newTestDB(t)
	id, err := d.StartSession("localhost", 3001, "SCR", 0, "unknown")
	require.NoError(t, err)

	for step := 0; step < 3; step++ {
		snap := &scrproto.Snapshot{
			DistRaced: float64(step) * 10,
			SpeedX:    50 + float64(step),
			RPM:       4000,
			TrackPos:  0.1,
			Damage:    0,
		}
		require.NoError(t, d.RecordFrame(id, step, snap))
	}

	points, err := d.Frames(id)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, 0, points[0].Step)
	assert.Equal(t, 20.0, points[2].DistRaced)
	assert.Equal(t, 52.0, points[2].SpeedX)

	// Frames of an unknown session are simply absent.
	none, err := d.Frames("no-such-session")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRecordAction(t *testing.T) {
	d := newTestDB(t)
	id, err := d.StartSession("localhost", 3001, "SCR", 0, "unknown")
	require.NoError(t, err)

	a := scrproto.NewAction()
	a.Steer = 0.25
	require.NoError(t, d.RecordAction(id, 7, a))

	var steer float64
	var step int
	err = d.QueryRow("SELECT step, steer FROM actions WHERE session_id = ?", id).Scan(&step, &steer)
	require.NoError(t, err)
	assert.Equal(t, 7, step)
	assert.Equal(t, 0.25, steer)
}

func TestSessionsLimit(t *testing.T) {
	d := newTestDB(t)
	for i := 0; i < 5; i++ {
		_, err := d.StartSession("localhost", 3001, "SCR", 0, "unknown")
		require.NoError(t, err)
	}

	sessions, err := d.Sessions(3)
	require.NoError(t, err)
	assert.Len(t, sessions, 3)

	// Non-positive limit falls back to the default.
	sessions, err = d.Sessions(0)
	require.NoError(t, err)
	assert.Len(t, sessions, 5)
}
