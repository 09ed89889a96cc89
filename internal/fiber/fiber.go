// Package fiber implements this module's stack/context primitive (spec §4.A)
// in pure Go: one goroutine per fiber, with control handed back and forth
// across a pair of unbuffered channels instead of a swapcontext(3)-style
// register/stack swap.
//
// This is the substitution spec §9 ("Coroutine control flow") explicitly
// allows: "Portable implementations may instead use language-native tasks
// with a channel-based yield point, provided all §5 guarantees hold
// (single-threaded, FIFO, no preemption)". The handshake below guarantees
// exactly that: Resume and Park are a strict ping-pong, so at most one side
// of a Fiber is ever runnable, and control only ever moves on an explicit
// Resume/Park call — never via the Go scheduler's own preemption.
//
// Each fiber's local variables live on its own goroutine's stack, which the
// Go runtime grows and shrinks on demand; there is no fixed-size buffer to
// allocate or corrupt, which is a strictly stronger guarantee than the
// spec's "stack corruption across swaps is detectable" requirement.
package fiber

// Fiber is a single cooperatively-scheduled goroutine, paused and resumed
// via an explicit handshake rather than the Go scheduler's own timeslicing.
type Fiber struct {
	resume chan struct{}
	park   chan struct{}
	done   bool
}

// New creates a Fiber wrapping entry, but does not start running it: entry
// only begins executing on the first call to Resume. This mirrors the
// create/swap split of spec §4.A, where context creation and first transfer
// of control are distinct steps.
func New(entry func()) *Fiber {
	f := &Fiber{
		resume: make(chan struct{}),
		park:   make(chan struct{}),
	}
	go func() {
		<-f.resume
		entry()
		f.done = true
		f.park <- struct{}{}
	}()
	return f
}

// Resume transfers control to the fiber and blocks until the fiber either
// calls Park or returns from entry. It is the swap(loop_context,
// task_context) half of spec §4.A's swap operation.
func (f *Fiber) Resume() {
	f.resume <- struct{}{}
	<-f.park
}

// Park transfers control back to whoever last called Resume, and blocks
// until Resume is called again. It must only be called from within entry's
// own goroutine. It is the swap(task_context, loop_context) half of spec
// §4.A's swap operation — the "implicit return_to_link" case is simply
// entry returning, which New's wrapper goroutine turns into a final Park
// that never unblocks via another Resume.
func (f *Fiber) Park() {
	f.park <- struct{}{}
	<-f.resume
}

// Done reports whether entry has returned. Once true, calling Resume again
// is a programming error: there is nothing left to swap into.
func (f *Fiber) Done() bool {
	return f.done
}
