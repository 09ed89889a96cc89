package green

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop_Release_PanicsWithLiveTasks(t *testing.T) {
	loop, err := NewLoop()
	require.NoError(t, err)

	task, err := Spawn(loop, func(*Task, any) any { return nil }, nil, 0, "x")
	require.NoError(t, err)
	_ = task

	// loop.refs is 2 here: the caller's own reference plus the one Spawn
	// took for the still-queued task. Releasing the caller's reference is
	// fine; releasing the task's own reference on top of it, with the task
	// still linked into the ready queue, drops refs to zero while the
	// queue is non-empty — an invariant violation.
	loop.Release()
	assert.Panics(t, func() { loop.Release() })
}

func TestYield_NilLoop(t *testing.T) {
	assert.ErrorIs(t, Yield(nil, "x"), ErrInvalid)
}

// TestLoop_Scenario_S1FIFOOfNCooperativeTasks implements spec §8 scenario S1.
func TestLoop_Scenario_S1FIFOOfNCooperativeTasks(t *testing.T) {
	const n = 10
	const k = 10

	loop, err := NewLoop()
	require.NoError(t, err)
	defer loop.Release()

	var resumeIndex int
	tasks := make([]*Task, n)

	for i := 0; i < n; i++ {
		number := i + 1
		task, err := Spawn(loop, func(task *Task, arg any) any {
			for j := 0; j < k; j++ {
				assert.Equal(t, number-1, resumeIndex%n, "task %d resumed out of FIFO order", number)
				resumeIndex++
				require.NoError(t, Yield(loop, "s1:yield"))
			}
			return number
		}, nil, 0, "s1:spawn")
		require.NoError(t, err)
		defer task.Release()
		tasks[i] = task
	}

	for tick := 0; tick <= k; tick++ {
		require.NoError(t, loop.Tick())
	}

	for i, task := range tasks {
		assert.Equal(t, StateStopped, task.State())
		result, ok := task.Result()
		require.True(t, ok)
		assert.Equal(t, i+1, result)
	}
}

// TestLoop_Scenario_S6StackIndependence implements spec §8 scenario S6.
func TestLoop_Scenario_S6StackIndependence(t *testing.T) {
	const n = 10

	loop, err := NewLoop()
	require.NoError(t, err)
	defer loop.Release()

	tasks := make([]*Task, n)
	for i := 0; i < n; i++ {
		pattern := byte(i)
		task, err := Spawn(loop, func(task *Task, arg any) any {
			var buf [1024]byte
			for j := range buf {
				buf[j] = pattern
			}
			require.NoError(t, Yield(loop, "s6:yield"))
			for j := range buf {
				assert.Equal(t, pattern, buf[j], "stack corruption detected")
			}
			return nil
		}, nil, 0, "s6:spawn")
		require.NoError(t, err)
		defer task.Release()
		tasks[i] = task
	}

	require.NoError(t, loop.Tick())
	require.NoError(t, loop.Tick())

	for _, task := range tasks {
		assert.Equal(t, StateStopped, task.State())
	}
}

// TestLoop_Wait_WokenByPollerCompletion exercises Wait (Open Question
// 2's resolution): a task blocks until a future attached to the poller it
// is waiting on completes.
func TestLoop_Wait_WokenByPollerCompletion(t *testing.T) {
	loop, err := NewLoop()
	require.NoError(t, err)
	defer loop.Release()

	poller, err := NewPoller(loop, 1)
	require.NoError(t, err)
	defer poller.Release()

	f, err := NewFuture(loop)
	require.NoError(t, err)
	require.NoError(t, poller.Add(f))

	var woken *Future
	task, err := Spawn(loop, func(task *Task, arg any) any {
		got, err := Wait(loop, poller, "wait:test")
		require.NoError(t, err)
		woken = got
		return nil
	}, nil, 0, "wait:spawn")
	require.NoError(t, err)
	defer task.Release()

	require.NoError(t, loop.Tick())
	assert.Equal(t, StateBlocked, task.State())

	require.NoError(t, f.SetResult("done", 42))

	require.NoError(t, loop.Tick())
	assert.Equal(t, StateStopped, task.State())
	assert.Same(t, f, woken)
}
