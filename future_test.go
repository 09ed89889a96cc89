package green

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFuture_Scenario_S3Lifecycle implements spec §8 scenario S3, future F's
// half: create, observe pending, set a result, observe it twice, and
// confirm a second set_result is rejected.
func TestFuture_Scenario_S3Lifecycle(t *testing.T) {
	loop, err := NewLoop()
	require.NoError(t, err)
	defer loop.Release()

	f, err := NewFuture(loop)
	require.NoError(t, err)

	assert.False(t, f.Done())
	assert.False(t, f.Cancelled())

	_, _, err = f.Result()
	assert.ErrorIs(t, err, ErrBusy)

	require.NoError(t, f.SetResult("payload", 7))
	assert.True(t, f.Done())
	assert.False(t, f.Cancelled())

	p, i, err := f.Result()
	require.NoError(t, err)
	assert.Equal(t, "payload", p)
	assert.Equal(t, 7, i)

	assert.ErrorIs(t, f.SetResult("again", 8), ErrBadState)
}

// TestFuture_Scenario_S3Cancellation implements spec §8 scenario S3, future
// G's half: cancel a pending future and confirm every subsequent operation
// observes cancellation as terminal.
func TestFuture_Scenario_S3Cancellation(t *testing.T) {
	loop, err := NewLoop()
	require.NoError(t, err)
	defer loop.Release()

	g, err := NewFuture(loop)
	require.NoError(t, err)

	require.NoError(t, g.Cancel())
	assert.True(t, g.Done())
	assert.True(t, g.Cancelled())

	_, _, err = g.Result()
	assert.ErrorIs(t, err, ErrBadState)

	assert.ErrorIs(t, g.SetResult("x", 1), ErrCancelled)
	assert.ErrorIs(t, g.Cancel(), ErrBadState)
}

func TestFuture_RoundTrip_AcquireRelease(t *testing.T) {
	loop, err := NewLoop()
	require.NoError(t, err)
	defer loop.Release()

	f, err := NewFuture(loop)
	require.NoError(t, err)

	f.Acquire()
	before := f.Done()
	f.Release()
	assert.Equal(t, before, f.Done())

	f.Release()
}

func TestNewFuture_NilLoop(t *testing.T) {
	f, err := NewFuture(nil)
	assert.Nil(t, f)
	assert.ErrorIs(t, err, ErrInvalid)
}
