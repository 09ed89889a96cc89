package green

import "fmt"

// Future is a single-shot result cell, matching struct green_future in
// original_source/src/green.c: it starts pending, and transitions exactly
// once, irreversibly, to either complete (via SetResult) or cancelled (via
// Cancel).
type Future struct {
	loop *Loop
	refs int

	state FutureState
	ptr   any
	i     int

	poller *Poller
	slot   int

	// doneNext threads this future into its poller's firstDone/lastDone
	// list once it enters the done region, recording completion order for
	// Poller.Pop — this module's resolution of Open Question 1
	// (SPEC_FULL.md).
	doneNext *Future
}

// NewFuture creates a pending Future owned by loop.
func NewFuture(loop *Loop) (*Future, error) {
	if loop == nil {
		return nil, ErrInvalid
	}
	loop.Acquire()
	return &Future{
		loop:  loop,
		refs:  1,
		state: FuturePending,
		slot:  -1,
	}, nil
}

// Done reports whether the future has left the pending state, in either
// direction (complete or cancelled).
func (f *Future) Done() bool {
	return f.state != FuturePending
}

// Cancelled reports whether the future was cancelled.
func (f *Future) Cancelled() bool {
	return f.state == FutureCancelled
}

// SetResult stores ptr and i and transitions the future to complete. It
// fails with ErrBadState if the future is already complete, and with
// ErrCancelled if the future was cancelled — per spec §4.D, a producer that
// races a cancellation must observe cancelled and drop its result silently,
// which this error return lets the caller do.
//
// If the future is attached to a poller, this also performs the
// busy→done promotion (spec §4.E "set_result coupling") and, if any task is
// waiting on that poller via Wait, wakes the first one registered.
func (f *Future) SetResult(ptr any, i int) error {
	switch f.state {
	case FutureComplete:
		return ErrBadState
	case FutureCancelled:
		return ErrCancelled
	}

	f.ptr = ptr
	f.i = i
	f.state = FutureComplete

	f.loop.logger().Trace().Int("future.slot", f.slot).Log("set_result")

	if f.poller != nil {
		f.poller.promoteToDone(f)
	}
	return nil
}

// Result reports the payload stored by SetResult. It fails with ErrBusy
// while pending and ErrBadState if the future was cancelled.
func (f *Future) Result() (ptr any, i int, err error) {
	switch f.state {
	case FuturePending:
		return nil, 0, ErrBusy
	case FutureCancelled:
		return nil, 0, ErrBadState
	}
	return f.ptr, f.i, nil
}

// Cancel transitions a pending future to cancelled. It fails with
// ErrBadState on any future that is not pending.
//
// If the future is attached to a poller, it moves into the poller's done
// region exactly as SetResult does, waking the first task waiting on that
// poller via Wait, if any.
func (f *Future) Cancel() error {
	if f.state != FuturePending {
		return ErrBadState
	}
	f.state = FutureCancelled
	f.loop.logger().Trace().Int("future.slot", f.slot).Log("cancel")

	if f.poller != nil {
		f.poller.promoteToDone(f)
	}
	return nil
}

// Acquire increments the future's reference count.
func (f *Future) Acquire() {
	f.refs++
}

// Release decrements the future's reference count, releasing the future's
// hold on its loop once it reaches zero.
func (f *Future) Release() {
	f.refs--
	if f.refs > 0 {
		return
	}
	assertInvariant(f.poller == nil, fmt.Sprintf("future released while still attached to a poller (slot %d)", f.slot))
	f.loop.Release()
}
