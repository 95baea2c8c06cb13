// Package epoch implements epoch-based reclamation for lock-free data
// structures.
//
// # Overview
//
// Writers that unlink a node from a shared structure cannot release it
// immediately: a concurrent reader may still hold a pointer into it. The
// reclaimer defers the release until no reader can possibly observe the
// node anymore.
//
// The scheme is the classic three-phase epoch design:
//
//   - Every traversal runs under a Guard obtained from Enter. The guard
//     pins the global epoch current at entry.
//   - Retire hands an unlinked node to the reclaimer, tagged with the
//     current global epoch.
//   - Collect advances the global epoch and releases every retired node
//     whose tag is older than the minimum epoch pinned by any live guard.
//
// A guard that pins a stale epoch only delays collection; it can never
// cause a premature release. Under the Go runtime the final free belongs
// to the garbage collector; releasing here means dropping the last
// structural reference, which bounds the memory a retired chain can hold
// alive and gives deterministic accounting for it.
//
// # Usage
//
//	r := epoch.NewReclaimer()
//
//	g := r.Enter()
//	// ... traverse shared structure ...
//	g.Leave()
//
//	// writer side, after a successful unlink CAS:
//	r.Retire(oldHead)
package epoch
