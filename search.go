package bwtree

// Lookup returns the full value list for key in insertion order, or nil
// when the key is absent. Lookups on an empty tree return nil.
func (t *Tree[K, V]) Lookup(key K) []V {
	if PID(t.root.Load()) == NullPID {
		return nil
	}

	g := t.gc.Enter()
	defer g.Leave()

	pid, head := t.findLeaf(key)
	if head == nil {
		return nil
	}

	list := t.lookupChain(head, key)
	t.maybeConsolidate(pid, head)
	return list
}

// Exists reports whether key has at least one value.
func (t *Tree[K, V]) Exists(key K) bool {
	return len(t.Lookup(key)) > 0
}

// ScanAll returns every (key, value) pair in ascending key order, walking
// the leaf chain from the head leaf. Duplicate values of a key appear in
// insertion order. Each leaf is folded as a consistent snapshot; the scan as
// a whole runs concurrently with writers and reflects some interleaving of
// them.
func (t *Tree[K, V]) ScanAll() []Pair[K, V] {
	pid := PID(t.headLeaf.Load())
	if pid == NullPID {
		return nil
	}

	g := t.gc.Enter()
	defer g.Leave()

	var out []Pair[K, V]
	for pid != NullPID {
		head := t.table.Get(pid)
		if head == nil {
			break
		}
		view := t.foldLeaf(head)
		for i, key := range view.keys {
			for _, v := range view.vals[i] {
				out = append(out, Pair[K, V]{Key: key, Value: v})
			}
		}
		t.maybeConsolidate(pid, head)
		pid = view.nextLeaf
	}
	return out
}
