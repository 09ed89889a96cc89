package green

import (
	"fmt"

	"github.com/joeycumines/logiface"
)

// Loop owns the ready queue, the task-id generator, and the tick counter:
// the Go analogue of struct green_loop in original_source/src/green.c. A
// Loop is not safe for concurrent use — spec §5 rules this out by design:
// exactly one goroutine may call Tick on a given Loop, and Yield and Wait
// may only be called from inside a task that Tick is currently running.
type Loop struct {
	refs int

	nextID   int
	tick     uint64
	head     *Task
	tail     *Task
	current  *Task

	log *logiface.Logger[logiface.Event]
}

// NewLoop creates a Loop with refs == 1, owned by the caller.
func NewLoop(opts ...LoopOption) (*Loop, error) {
	cfg := resolveLoopOptions(opts)
	l := &Loop{
		refs: 1,
		log:  cfg.logger,
	}
	return l, nil
}

func (l *Loop) logger() *logiface.Logger[logiface.Event] {
	if l.log == nil {
		return noopLogger()
	}
	return l.log
}

func (l *Loop) nextTaskID() int {
	l.nextID++
	return l.nextID
}

// Acquire increments the loop's reference count.
func (l *Loop) Acquire() {
	l.refs++
}

// Release decrements the loop's reference count. It is an invariant
// violation to drop the last reference while any task spawned on this loop
// is still alive — every live Task holds its own reference on the loop for
// exactly that reason (spec §3, Lifecycles), so this condition can only be
// reached by a caller that bypassed Task's own refcounting.
func (l *Loop) Release() {
	l.refs--
	if l.refs > 0 {
		return
	}
	assertInvariant(l.head == nil && l.tail == nil, "loop released with tasks still queued")
}

// enqueueTail links t onto the end of the ready queue and marks it pending.
func (l *Loop) enqueueTail(t *Task) {
	t.state = StatePending
	t.next = nil
	if l.tail == nil {
		l.head, l.tail = t, t
		return
	}
	l.tail.next = t
	l.tail = t
}

// popHead unlinks and returns the current head of the ready queue, or nil
// if the queue is empty. Callers (Yield, the stop path in Task.trampoline)
// are expected to already know the task they are unlinking is the head;
// they assert the returned task matches.
func (l *Loop) popHead() *Task {
	t := l.head
	if t == nil {
		return nil
	}
	l.head = t.next
	if l.head == nil {
		l.tail = nil
	}
	t.next = nil
	return t
}

// Tick drains the ready queue of tasks eligible for this pass: repeatedly
// resuming the head task so long as one exists and its recorded scheduling
// tick does not exceed the tick snapshot taken at the start of this call.
// This is the re-entrancy guard described in spec §4.C: a task that yields
// mid-tick is re-enqueued with the post-increment tick value, which exceeds
// the snapshot, so Tick will not resume it again until a later call.
func (l *Loop) Tick() error {
	snapshot := l.tick
	l.tick++

	for {
		head := l.head
		if head == nil || head.tick > snapshot {
			break
		}
		assertInvariant(head.state == StatePending, fmt.Sprintf("ready-queue head (task %d) was not pending", head.id))

		l.logger().Trace().Int("task", head.id).Uint64("tick", l.tick).Log("resuming")
		l.current = head
		head.resume()

		assertInvariant(l.head != head || head.tick > snapshot,
			fmt.Sprintf("task %d still at ready-queue head after resume without a later tick", head.id))
	}

	return nil
}

// Yield suspends the currently running task: it is re-enqueued at the tail
// of its loop's ready queue (state Pending, scheduling tick set to the
// loop's current tick) and control swaps back to whichever Tick call is
// driving the loop. Yield must be called from inside the entry function of
// the task currently running on loop; calling it with no task running, or
// with a task other than the ready queue's head running, is an invariant
// violation (spec §4.C preconditions).
func Yield(loop *Loop, source string) error {
	if loop == nil {
		return ErrInvalid
	}
	task := loop.current
	assertInvariant(task != nil, "yield called with no task running")
	assertInvariant(loop.head == task, "yielding task is not at the ready-queue head")

	popped := loop.popHead()
	assertInvariant(popped == task, "popHead did not return the yielding task")

	task.source = source
	task.tick = loop.tick
	loop.enqueueTail(task)
	loop.current = nil

	loop.logger().Trace().Int("task", task.id).Str("source", source).Log("yield")

	task.fib.Park()
	return nil
}

// Wait blocks the currently running task until poller's done region is
// non-empty and returns a future from it. If the done region already holds a
// future, Wait returns the earliest-completed one at once without
// suspending; otherwise it suspends and returns the member future whose
// completion woke it. The returned future stays attached to the poller. This implements
// the wait(poller) extension spec §9's Open Question 2 invites: "a port must
// route wakeups through set_result's poller coupling." The task is removed
// from the ready queue entirely (state Blocked, not Pending — it is not
// re-run until woken) and registered on poller.waiters; Future.SetResult's
// poller-coupling step re-enqueues the first waiter, if any, at the tail
// with its scheduling tick set to the loop's current tick, exactly as Yield
// does, so a woken task cannot be re-run within the tick that woke it.
func Wait(loop *Loop, poller *Poller, source string) (*Future, error) {
	if loop == nil || poller == nil {
		return nil, ErrInvalid
	}
	if poller.loop != loop {
		return nil, ErrInvalid
	}
	if f := poller.firstDone; f != nil {
		return f, nil
	}
	task := loop.current
	assertInvariant(task != nil, "wait called with no task running")
	assertInvariant(loop.head == task, "waiting task is not at the ready-queue head")

	popped := loop.popHead()
	assertInvariant(popped == task, "popHead did not return the waiting task")

	task.source = source
	task.state = StateBlocked
	loop.current = nil
	poller.waiters = append(poller.waiters, task)

	loop.logger().Trace().Int("task", task.id).Str("source", source).Log("wait")

	task.fib.Park()

	woken := task.wokenBy
	task.wokenBy = nil
	if woken == nil {
		assertInvariant(false, fmt.Sprintf("task %d woken from wait without a completed future", task.id))
	}
	return woken, nil
}
