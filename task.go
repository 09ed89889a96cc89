package green

import (
	"fmt"

	"github.com/joeycumines/green/internal/fiber"
)

// Entry is the function a spawned Task runs. It receives the arg passed to
// Spawn and the Task itself, so it can call Yield or Wait against its own
// loop without a package-level "current task" lookup. Its return value
// becomes the task's Result once it stops (spec §7's "tasks that return a
// non-zero value still transition to stopped; the value is the task's
// result").
type Entry func(task *Task, arg any) any

// Task is one cooperatively-scheduled unit of execution: the Go analogue of
// struct green_coroutine in original_source/src/green.c. A Task is always
// owned by exactly one Loop for its whole lifetime.
type Task struct {
	loop  *Loop
	refs  int
	id    int
	state State

	entry Entry
	arg   any
	fib   *fiber.Fiber

	// source is a caller-supplied diagnostic label (e.g. file:line of the
	// Spawn call site), logged at every state transition. It has no effect
	// on scheduling.
	source string

	// stackSizeHint records the stackSize argument Spawn was given, purely
	// for API fidelity with the original library's stack-size parameter;
	// see internal/fiber's doc comment for why this module does not use it
	// to size anything.
	stackSizeHint int

	result any

	// next links this task into its loop's ready queue. It is nil whenever
	// the task is not linked (Blocked, or Stopped-and-popped). A Running task
	// stays linked at the queue head until it yields, waits, or stops.
	next *Task

	// tick records the loop tick at which this task was last placed on the
	// ready queue. Tick uses it to refuse re-scheduling a task within the
	// same tick it was already resumed from, per spec §4.C.
	tick uint64

	// selfRefHeld tracks whether the task currently holds the extra
	// self-reference it acquires the first time it runs, so it cannot be
	// freed out from under itself while executing (spec §4.B step 2).
	selfRefHeld bool

	// wokenBy records which future completed to wake this task out of
	// Wait, consumed and cleared by Wait itself on resumption.
	wokenBy *Future
}

// Spawn creates a new Task on loop, wired to run entry(task, arg) the first
// time the scheduler resumes it, and links it onto the ready queue. Spawn
// takes a strong reference on loop for the task's lifetime and returns a
// Task already holding one reference, owned by the caller.
//
// stackSize is retained as a diagnostic hint (see Task.StackSizeHint); pass
// 0 to use DefaultStackSize. source is an arbitrary caller-supplied label
// used only for logging.
func Spawn(loop *Loop, entry Entry, arg any, stackSize int, source string) (*Task, error) {
	if loop == nil || entry == nil {
		return nil, ErrInvalid
	}
	if stackSize <= 0 {
		stackSize = DefaultStackSize
	}

	loop.Acquire()

	t := &Task{
		loop:          loop,
		refs:          1,
		id:            loop.nextTaskID(),
		state:         StatePending,
		entry:         entry,
		arg:           arg,
		source:        source,
		stackSizeHint: stackSize,
		tick:          loop.tick,
	}
	t.fib = fiber.New(func() { t.trampoline() })

	loop.logger().Debug().
		Int("task", t.id).
		Str("source", source).
		Log("spawned")

	loop.enqueueTail(t)
	return t, nil
}

// trampoline is the body run on the task's fiber goroutine. It mirrors
// _coroutine in original_source/src/green.c: run the entry point to
// completion, record whatever it leaves in result, mark the task Stopped,
// unlink it from the head of the ready queue (guaranteed to be there — the
// loop only ever resumes its head), and drop the loop's pointer to the
// currently-running task before handing control back for the last time.
func (t *Task) trampoline() {
	result := t.entry(t, t.arg)
	loop := t.loop
	t.setResult(result)
	t.state = StateStopped
	popped := loop.popHead()
	assertInvariant(popped == t, fmt.Sprintf("task %d stopped but was not at ready-queue head", t.id))
	loop.current = nil
	loop.logger().Debug().Int("task", t.id).Log("stopped")
}

// ID returns the task's loop-local identifier, assigned sequentially by
// Spawn starting at 1 (mirroring the original's nextcoroid counter).
func (t *Task) ID() int { return t.id }

// State returns the task's current scheduling state.
func (t *Task) State() State { return t.state }

// Source returns the diagnostic label passed to Spawn.
func (t *Task) Source() string { return t.source }

// StackSizeHint returns the stackSize Spawn was given (after defaulting),
// for diagnostics only; see internal/fiber's doc comment.
func (t *Task) StackSizeHint() int { return t.stackSizeHint }

// Result reports the value the task's entry function returned, if it has
// stopped. The second return is false while the task is still pending,
// running, or blocked.
func (t *Task) Result() (any, bool) {
	return t.result, t.state == StateStopped
}

// setResult is called by the trampoline to stash whatever the entry
// function hands back on return; it is unexported because callers never set
// a task's result directly.
func (t *Task) setResult(v any) {
	t.result = v
}

// Acquire increments the task's reference count.
func (t *Task) Acquire() {
	t.refs++
}

// Release decrements the task's reference count, releasing the task's hold
// on its loop once it reaches zero. Per Open Question 3's resolution
// (SPEC_FULL.md), a task must have stopped before its last reference drops;
// releasing a task that is still Pending, Running, or Blocked is an
// invariant violation, not a recoverable error, matching the original's own
// acknowledgment that a running coroutine cannot safely free itself.
func (t *Task) Release() {
	t.refs--
	if t.refs > 0 {
		return
	}
	assertInvariant(t.state == StateStopped, fmt.Sprintf("task %d released while %s", t.id, t.state))
	t.loop.Release()
}

// resume hands control to the task's fiber and returns once it parks or
// completes. It is only ever called by Loop.Tick against its ready queue's
// current head, with loop.current already pointing at t; unlinking t from
// the queue is Yield's or the trampoline's job, not resume's — Tick only
// peeks at the head, per spec §4.C.
//
// The self-reference described in spec §4.B step 2 is acquired here, lazily,
// on the task's first resumption, and released here too — but only after
// fib.Resume() has returned control to this (the resuming) goroutine, never
// from inside the trampoline itself. That ordering is this port's resolution
// of Open Question 3 (SPEC_FULL.md): the trampoline frame must have nothing
// left to touch by the time the self-reference can drop the task's last
// count, so the release cannot happen until the resumer observes Stopped
// after the swap back.
func (t *Task) resume() {
	if !t.selfRefHeld {
		t.Acquire()
		t.selfRefHeld = true
	}
	t.state = StateRunning
	t.fib.Resume()
	if t.state == StateStopped && t.selfRefHeld {
		t.selfRefHeld = false
		t.Release()
	}
}
