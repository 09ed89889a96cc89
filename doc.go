// Package green implements a single-threaded, cooperative user-space
// concurrency runtime: an event loop that multiplexes many independent
// tasks, each running on its own stack, plus a future/poller layer for
// waiting efficiently on a set of asynchronous completions.
//
// # Architecture
//
// A [Loop] owns the FIFO ready queue, the tick counter, and task-id
// generation. A [Task] holds a user entry point, its scheduling state, and
// (via internal/fiber) a private stack. A [Future] is a single-shot result
// cell; a [Poller] is a bounded set of futures partitioned in O(1) into a
// pending ("busy") region and a completed ("done") region, following the
// same array-swap scheme as the original C source this module ports.
//
// # Concurrency model
//
// There is no preemption and no multi-threaded scheduling: one Loop is
// owned and driven by exactly one goroutine (the one calling [Loop.Tick]).
// Tasks suspend only at an explicit [Yield] or [Wait] call or by returning
// from their entry point. internal/fiber gives each task its own goroutine, but the
// two sides of a fiber handshake never run concurrently — see
// internal/fiber's doc comment.
//
// # Usage
//
//	loop, err := green.NewLoop()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer loop.Release()
//
//	task, err := green.Spawn(loop, func(task *green.Task, arg any) any {
//		green.Yield(loop, "example.go:1")
//		return 777
//	}, nil, 0, "example.go:0")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer task.Release()
//
//	for task.State() != green.StateStopped {
//		if err := loop.Tick(); err != nil {
//			log.Fatal(err)
//		}
//	}
//	result, _ := task.Result()
//	fmt.Println(result)
//
// # Error types
//
// Precondition and state-machine violations are returned as one of the
// sentinel errors in errors.go ([ErrInvalid], [ErrBusy], [ErrCancelled],
// [ErrAlready], [ErrNoEntry], [ErrNoSpace], [ErrBadState]). [ErrNoMemory] is
// also defined, for API fidelity with the original library's out-of-memory
// code, but no path in this package currently returns it. Invariant
// violations (queue corruption, slot/poller disagreement, releasing a loop
// with live tasks) panic — they are programming errors in the host
// application or this package, not recoverable conditions.
package green
