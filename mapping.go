package bwtree

import (
	"sync/atomic"
)

// mappingTable is the fixed-capacity array of atomic slots translating PIDs
// to chain heads. It is the only mutation-serialization point in the tree:
// every observable page change is exactly one successful CAS on a slot.
type mappingTable[K any, V any] struct {
	slots   []atomic.Pointer[node[K, V]]
	nextPID atomic.Uint64
}

// newMappingTable creates a table with capacity slots. Slot 0 is reserved
// for NullPID and never allocated, so at most capacity-1 PIDs are handed
// out.
func newMappingTable[K any, V any](capacity int) *mappingTable[K, V] {
	return &mappingTable[K, V]{
		slots: make([]atomic.Pointer[node[K, V]], capacity),
	}
}

// Get returns the current chain head for pid, or nil if none is installed.
func (m *mappingTable[K, V]) Get(pid PID) *node[K, V] {
	return m.slots[pid].Load()
}

// Install publishes newHead at pid if the slot still holds expectedOld.
// A successful install releases every field of newHead to subsequent
// getters of the slot. Losers must re-read and retry.
func (m *mappingTable[K, V]) Install(pid PID, newHead, expectedOld *node[K, V]) bool {
	return m.slots[pid].CompareAndSwap(expectedOld, newHead)
}

// Allocate reserves a fresh PID from the monotonic counter. It returns
// ErrCapacityExhausted once the table is full; PIDs are never reused.
func (m *mappingTable[K, V]) Allocate() (PID, error) {
	pid := m.nextPID.Add(1)
	if pid >= uint64(len(m.slots)) {
		return NullPID, ErrCapacityExhausted
	}
	return PID(pid), nil
}
