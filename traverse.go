package bwtree

// maxDescentRestarts bounds defensive restarts from the root when a descent
// observes an inconsistent snapshot (an uninstalled child slot). A page's
// lower bound never moves rightward in this design (there is no merge), so
// restarts are a transient artifact of racing installs, not a livelock risk.
const maxDescentRestarts = 64

// findNextPID resolves the child to descend into for key at an inner page,
// folding the chain virtually: the first Separator whose interval contains
// the key routes directly, a Split redirects past the boundary, and the
// base's separator array answers the rest.
func (t *Tree[K, V]) findNextPID(head *node[K, V], key K) PID {
	for n := head; ; n = n.base {
		switch n.kind {
		case kindSeparator:
			if t.cmp(key, n.leftKey) >= 0 && (n.rightMost || t.cmp(key, n.rightKey) < 0) {
				return n.child
			}
		case kindSplit:
			if t.cmp(key, n.splitKey) >= 0 {
				return n.side
			}
		case kindInner:
			pos := upperBound(n.slotKey, key, t.cmp)
			return n.childPID[pos]
		}
	}
}

// followSplits retargets pid/head rightward while the leaf's chain carries a
// Split delta covering key. This closes the window between a Split install
// at the leaf and the matching Separator install at the parent: readers
// detect the boundary at the leaf itself and chase the side pointer.
func (t *Tree[K, V]) followSplits(pid PID, head *node[K, V], key K) (PID, *node[K, V]) {
	for {
		sd := head.newestSplit()
		if sd == nil || t.cmp(key, sd.splitKey) < 0 {
			return pid, head
		}
		pid = sd.side
		head = t.table.Get(pid)
	}
}

// findLeaf descends from the root to the leaf page currently claiming key
// and returns its PID together with the chain head the claim was verified
// against. Traversal is read-only on the mapping table and never blocks.
func (t *Tree[K, V]) findLeaf(key K) (PID, *node[K, V]) {
	restarts := 0
restart:
	pid := PID(t.root.Load())
	head := t.table.Get(pid)
	for head != nil && !head.isLeafLevel() {
		if head.chain > t.opts.DeltaThreshold {
			t.consolidate(pid)
			if h := t.table.Get(pid); h != nil {
				head = h
			}
		}
		next := t.findNextPID(head, key)
		if next == NullPID {
			break
		}
		pid = next
		head = t.table.Get(pid)
	}
	if head == nil || !head.isLeafLevel() {
		// Racing install left a hole in the route; re-descend.
		if restarts < maxDescentRestarts {
			restarts++
			goto restart
		}
		return NullPID, nil
	}
	return t.followSplits(pid, head, key)
}
