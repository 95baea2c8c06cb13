package epoch

import (
	"sync"
	"sync/atomic"
)

// collectBatch is the number of retired nodes that accumulate before a
// Retire call volunteers to run a collection cycle.
const collectBatch = 64

// Reclaimer defers the release of retired nodes until every guard active at
// retirement time has left its epoch. Enter and Leave are cheap atomic
// operations; Retire and Collect take a short mutex and are meant for the
// rare structural paths (consolidation, split rewiring).
type Reclaimer struct {
	epoch atomic.Uint64

	mu      sync.Mutex
	slots   []*guardSlot
	retired []retiredNode

	retiredCount  atomic.Uint64
	releasedCount atomic.Uint64

	pool sync.Pool
}

// guardSlot records the epoch pinned by one live guard. Zero means the slot
// is free.
type guardSlot struct {
	pinned atomic.Uint64
}

type retiredNode struct {
	obj   any
	epoch uint64
}

// Stats reports reclaimer progress.
type Stats struct {
	// Epoch is the current global epoch.
	Epoch uint64
	// Retired is the total number of nodes handed to the reclaimer.
	Retired uint64
	// Released is the number of retired nodes whose references have been
	// dropped.
	Released uint64
	// Pending is the number of retired nodes still held.
	Pending uint64
}

// NewReclaimer creates a reclaimer with the global epoch at 1.
func NewReclaimer() *Reclaimer {
	r := &Reclaimer{}
	r.epoch.Store(1)
	r.pool.New = func() any {
		s := &guardSlot{}
		r.mu.Lock()
		r.slots = append(r.slots, s)
		r.mu.Unlock()
		return s
	}
	return r
}

// Guard pins an epoch for the duration of one traversal. The zero Guard is
// invalid; obtain guards from Enter.
type Guard struct {
	r    *Reclaimer
	slot *guardSlot
}

// Enter pins the current global epoch and returns the guard. Every
// traversal of the protected structure must run between Enter and Leave.
func (r *Reclaimer) Enter() Guard {
	s := r.pool.Get().(*guardSlot)
	// Pinning an epoch that is already stale by the time the store lands
	// is harmless: it only makes the minimum scan more conservative.
	s.pinned.Store(r.epoch.Load())
	return Guard{r: r, slot: s}
}

// Leave unpins the guard's epoch and recycles its slot.
func (g Guard) Leave() {
	g.slot.pinned.Store(0)
	g.r.pool.Put(g.slot)
}

// Retire hands an unlinked node to the reclaimer. The node is released once
// every guard active now has left. Retire occasionally volunteers to run a
// collection cycle.
func (r *Reclaimer) Retire(obj any) {
	e := r.epoch.Load()
	r.mu.Lock()
	r.retired = append(r.retired, retiredNode{obj: obj, epoch: e})
	pending := len(r.retired)
	r.mu.Unlock()
	r.retiredCount.Add(1)

	if pending >= collectBatch {
		r.Collect()
	}
}

// Collect advances the global epoch and releases every retired node older
// than the minimum epoch pinned by a live guard.
func (r *Reclaimer) Collect() {
	e := r.epoch.Load()
	r.epoch.CompareAndSwap(e, e+1)

	r.mu.Lock()
	defer r.mu.Unlock()

	min := r.epoch.Load()
	for _, s := range r.slots {
		if p := s.pinned.Load(); p != 0 && p < min {
			min = p
		}
	}

	kept := r.retired[:0]
	released := uint64(0)
	for _, rn := range r.retired {
		if rn.epoch < min {
			released++
			continue
		}
		kept = append(kept, rn)
	}
	// Clear the tail so the dropped references do not linger in the
	// backing array.
	for i := len(kept); i < len(r.retired); i++ {
		r.retired[i] = retiredNode{}
	}
	r.retired = kept
	r.releasedCount.Add(released)
}

// Stats returns a snapshot of reclaimer progress.
func (r *Reclaimer) Stats() Stats {
	r.mu.Lock()
	pending := uint64(len(r.retired))
	r.mu.Unlock()
	return Stats{
		Epoch:    r.epoch.Load(),
		Retired:  r.retiredCount.Load(),
		Released: r.releasedCount.Load(),
		Pending:  pending,
	}
}
