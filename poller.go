package green

import "fmt"

// Poller is a fixed-capacity, reference-counted set of Futures partitioned
// in O(1) into a busy (pending) region and a done (complete or cancelled)
// region, matching struct green_poller in original_source/src/green.c:
//
//	[0, busy)      pending futures
//	[busy, used)   completed futures, ready to be popped
//	[used, size)   free slots
type Poller struct {
	loop *Loop
	refs int

	futures []*Future
	size    int
	used    int
	busy    int

	// firstDone/lastDone thread the done region into a FIFO-of-completion
	// list via Future.doneNext, resolving Open Question 1 (SPEC_FULL.md):
	// the array's swap-based bookkeeping does not, by itself, preserve the
	// order futures completed in, so Pop follows this list instead of
	// reading futures[busy] directly.
	firstDone *Future
	lastDone  *Future

	// waiters holds tasks parked in Wait, in the order they called it.
	// Future.SetResult's poller-coupling step wakes the first one whenever
	// a member future completes (Open Question 2).
	waiters []*Task
}

// NewPoller creates a Poller of the given capacity, owned by loop. capacity
// must be at least 1; spec §8's boundary behavior ("poller_init(loop, 0)
// returns none") is reported here as ErrInvalid, consistent with every
// other precondition failure in this package.
func NewPoller(loop *Loop, capacity int) (*Poller, error) {
	if loop == nil || capacity < 1 {
		return nil, ErrInvalid
	}
	loop.Acquire()
	return &Poller{
		loop:    loop,
		refs:    1,
		futures: make([]*Future, capacity),
		size:    capacity,
	}, nil
}

// Size returns the poller's fixed capacity.
func (p *Poller) Size() int { return p.size }

// Used returns the number of occupied slots (busy + done).
func (p *Poller) Used() int { return p.used }

// Done returns the number of completed futures currently held.
func (p *Poller) Done() int { return p.used - p.busy }

// swap exchanges the futures at slots i and j (a no-op if i == j),
// updating each moved future's slot field to match — original_source's
// green_poller_swap, ported directly.
func (p *Poller) swap(i, j int) {
	if i == j {
		return
	}
	f1, f2 := p.futures[i], p.futures[j]
	p.futures[i], p.futures[j] = f2, f1
	f2.slot = i
	f1.slot = j
}

// Add attaches future to the poller. See spec §4.E: rejects nil arguments
// or a future from a different loop (ErrInvalid), a future already attached
// somewhere (ErrAlready), and a full poller (ErrNoSpace). Otherwise the
// future is appended at slot used and, if still pending, swapped into the
// busy region's boundary.
func (p *Poller) Add(f *Future) error {
	if f == nil {
		return ErrInvalid
	}
	if f.loop != p.loop {
		return ErrInvalid
	}
	if f.poller != nil {
		return ErrAlready
	}
	if p.used == p.size {
		return ErrNoSpace
	}

	f.Acquire()
	idx := p.used
	p.futures[idx] = f
	f.slot = idx
	f.poller = p
	p.used++

	if f.state == FuturePending {
		p.swap(f.slot, p.busy)
		p.busy++
	} else {
		p.linkDone(f)
	}

	p.loop.logger().Trace().
		Int("poller.used", p.used).
		Int("poller.busy", p.busy).
		Log("add")
	return nil
}

// Remove detaches future from the poller, restoring the three-region
// invariant via the swap sequence of spec §4.E. It fails with ErrNoEntry
// for a nil future or one not a member of this poller.
func (p *Poller) Remove(f *Future) error {
	if f == nil || f.poller != p {
		return ErrNoEntry
	}

	if f.slot >= p.busy {
		assertInvariant(f.state != FuturePending, "done-region future found pending on removal")
		p.unlinkDone(f)
		p.swap(f.slot, p.used-1)
	} else {
		assertInvariant(f.state == FuturePending, "busy-region future found non-pending on removal")
		p.busy--
		p.swap(f.slot, p.busy)
		p.swap(f.slot, p.used-1)
	}
	p.futures[p.used-1] = nil
	p.used--

	f.slot = -1
	f.poller = nil
	f.Release()

	p.loop.logger().Trace().
		Int("poller.used", p.used).
		Int("poller.busy", p.busy).
		Log("rem")
	return nil
}

// Pop removes and returns the earliest-completed future in the done
// region, or (nil, nil) if the done region is empty (spec §8's boundary
// behavior: "pop on a poller with busy = used returns none"). The caller
// owns the returned future's reference from this point on.
func (p *Poller) Pop() (*Future, error) {
	if p.firstDone == nil {
		return nil, nil
	}
	f := p.firstDone
	// Remove drops the poller's reference; take one first so that the
	// caller receives it.
	f.Acquire()
	if err := p.Remove(f); err != nil {
		assertInvariant(false, fmt.Sprintf("pop: remove of done-region future failed: %v", err))
	}
	return f, nil
}

// promoteToDone performs the "set_result coupling" step of spec §4.E: when
// a busy-region future completes or is cancelled, it swaps to the busy boundary and the
// boundary retreats by one, moving the future into the done region in
// O(1). It then records completion order and wakes the oldest waiter, if
// any (Open Question 2).
func (p *Poller) promoteToDone(f *Future) {
	assertInvariant(f.slot < p.busy, fmt.Sprintf("future at slot %d completed outside the busy region", f.slot))
	p.busy--
	p.swap(f.slot, p.busy)
	p.linkDone(f)
	p.wakeWaiter(f)
}

func (p *Poller) linkDone(f *Future) {
	f.doneNext = nil
	if p.lastDone == nil {
		p.firstDone, p.lastDone = f, f
		return
	}
	p.lastDone.doneNext = f
	p.lastDone = f
}

func (p *Poller) unlinkDone(f *Future) {
	if p.firstDone == f {
		p.firstDone = f.doneNext
		if p.firstDone == nil {
			p.lastDone = nil
		}
		f.doneNext = nil
		return
	}
	prev := p.firstDone
	for prev != nil && prev.doneNext != f {
		prev = prev.doneNext
	}
	assertInvariant(prev != nil, "done-region future missing from completion list")
	prev.doneNext = f.doneNext
	if p.lastDone == f {
		p.lastDone = prev
	}
	f.doneNext = nil
}

// wakeWaiter re-enqueues the oldest task parked in Wait against this
// poller, if one exists, recording which future woke it. Re-enqueuing sets
// the task's scheduling tick to the loop's current tick, mirroring Yield,
// so it cannot be resumed within the tick that completed the future.
func (p *Poller) wakeWaiter(f *Future) {
	if len(p.waiters) == 0 {
		return
	}
	task := p.waiters[0]
	p.waiters = p.waiters[1:]
	task.wokenBy = f
	task.tick = p.loop.tick
	p.loop.enqueueTail(task)
	p.loop.logger().Trace().Int("task", task.id).Log("woken")
}

// Acquire increments the poller's reference count.
func (p *Poller) Acquire() {
	p.refs++
}

// Release decrements the poller's reference count. On the final release,
// every remaining attached future is detached and released, mirroring
// green_poller_release's teardown loop.
func (p *Poller) Release() {
	p.refs--
	if p.refs > 0 {
		return
	}
	for i := 0; i < p.used; i++ {
		f := p.futures[i]
		f.poller = nil
		f.slot = -1
		f.doneNext = nil
		f.Release()
		p.futures[i] = nil
	}
	p.used, p.busy = 0, 0
	p.firstDone, p.lastDone = nil, nil
	p.loop.Release()
}
