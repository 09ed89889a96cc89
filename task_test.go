package green

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, loop *Loop, task *Task, maxTicks int) {
	t.Helper()
	for i := 0; i < maxTicks && task.State() != StateStopped; i++ {
		require.NoError(t, loop.Tick())
	}
}

func TestSpawn_NilArguments(t *testing.T) {
	loop, err := NewLoop()
	require.NoError(t, err)
	defer loop.Release()

	task, err := Spawn(nil, func(*Task, any) any { return nil }, nil, 0, "x")
	assert.Nil(t, task)
	assert.ErrorIs(t, err, ErrInvalid)

	task, err = Spawn(loop, nil, nil, 0, "x")
	assert.Nil(t, task)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSpawn_DefaultsStackSize(t *testing.T) {
	loop, err := NewLoop()
	require.NoError(t, err)
	defer loop.Release()

	task, err := Spawn(loop, func(*Task, any) any { return nil }, nil, 0, "x")
	require.NoError(t, err)
	defer task.Release()
	assert.Equal(t, DefaultStackSize, task.StackSizeHint())

	drain(t, loop, task, 2)
}

// TestTask_Scenario_S2SingleRoundTrip implements spec §8 scenario S2.
func TestTask_Scenario_S2SingleRoundTrip(t *testing.T) {
	loop, err := NewLoop()
	require.NoError(t, err)
	defer loop.Release()

	task, err := Spawn(loop, func(task *Task, arg any) any {
		require.NoError(t, Yield(loop, "s2:yield"))
		return 777
	}, nil, 0, "s2:spawn")
	require.NoError(t, err)
	defer task.Release()

	require.NoError(t, loop.Tick())
	assert.NotEqual(t, StateStopped, task.State())

	require.NoError(t, loop.Tick())
	assert.Equal(t, StateStopped, task.State())

	result, ok := task.Result()
	require.True(t, ok)
	assert.Equal(t, 777, result)
}

func TestTask_AcquireRelease(t *testing.T) {
	loop, err := NewLoop()
	require.NoError(t, err)
	defer loop.Release()

	task, err := Spawn(loop, func(*Task, any) any { return nil }, nil, 0, "x")
	require.NoError(t, err)

	task.Acquire()
	drain(t, loop, task, 2)
	task.Release()
	task.Release()
}
