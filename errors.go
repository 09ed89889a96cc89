package green

import "errors"

// Sentinel errors returned by this package's precondition and state-machine
// checks. Every returned error is one of these values (or wraps one via
// fmt.Errorf("%w", ...)); compare with errors.Is.
var (
	// ErrInvalid is returned for null/invalid arguments, a future or task
	// that belongs to a different loop, or any other precondition a caller
	// controls directly.
	ErrInvalid = errors.New("green: invalid argument")

	// ErrNoMemory is reserved for API fidelity with the original library's
	// GREEN_ENOMEM (spec §6/§7 list out-of-memory as a gracefully-returned
	// error from spawn, future_init, and poller_init). Go allocations do
	// not fail in the way the original's green_malloc could, so no code
	// path in this package currently returns it.
	ErrNoMemory = errors.New("green: allocation failed")

	// ErrBusy is returned by Future.Result when the future is still
	// pending.
	ErrBusy = errors.New("green: future is still pending")

	// ErrCancelled is returned by Future.SetResult when the future has
	// already been cancelled.
	ErrCancelled = errors.New("green: future was cancelled")

	// ErrAlready is returned by Poller.Add when the future is already
	// attached to a poller (this one or another).
	ErrAlready = errors.New("green: future already attached to a poller")

	// ErrNoEntry is returned by Poller.Remove when the future is not a
	// member of that poller.
	ErrNoEntry = errors.New("green: future is not a member of this poller")

	// ErrNoSpace is returned by Poller.Add when the poller is at capacity.
	ErrNoSpace = errors.New("green: poller is at capacity")

	// ErrBadState is returned for state-machine violations: Cancel of a
	// non-pending future, SetResult of an already-complete future, or
	// Result of a cancelled future. Releasing a loop with live tasks is a
	// separate, fatal condition (see assertInvariant below) — it panics
	// rather than returning this error.
	ErrBadState = errors.New("green: invalid state transition")
)

// assertInvariant panics if cond is false. It is used exclusively for
// invariants the spec classifies as fatal (queue corruption, slot/poller
// disagreement, more than one task running at once) — conditions that, if
// observed, indicate a bug in this package or a caller that bypassed its
// API, never a recoverable precondition. This mirrors the
// green_assert/green_panic convention of the original C source this module
// ports (original_source/src/green.c).
func assertInvariant(cond bool, msg string) {
	if !cond {
		panic("green: invariant violation: " + msg)
	}
}
