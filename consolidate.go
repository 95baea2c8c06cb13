package bwtree

// consolidate rebuilds a compact base page from the chain at pid and swings
// the mapping slot to it with one CAS. It is opportunistic and idempotent:
// losing the CAS means another thread consolidated, which is not an error.
//
// A chain carrying a Split delta is consolidated only once the parent
// routes the split key to the side page. Consolidating earlier would erase
// the Split delta that readers in the separator window rely on for sibling
// following.
func (t *Tree[K, V]) consolidate(pid PID) {
	head := t.table.Get(pid)
	if head == nil || head.isBase() || head.chain <= t.opts.DeltaThreshold {
		return
	}

	if sd := head.newestSplit(); sd != nil && !t.separatorVisible(head, sd) {
		return
	}

	var fresh *node[K, V]
	if head.isLeafLevel() {
		view := t.foldLeaf(head)
		leaf := newLeafNode[K, V]()
		leaf.slotKey = view.keys
		leaf.slotData = view.vals
		leaf.slotUse = len(view.keys)
		leaf.setParent(view.parent)
		leaf.setPrevLeaf(view.prevLeaf)
		leaf.setNextLeaf(view.nextLeaf)
		fresh = leaf
	} else {
		view := t.foldInner(head)
		inner := &node[K, V]{
			kind:     kindInner,
			level:    head.level,
			slotKey:  view.keys,
			childPID: view.children,
			slotUse:  len(view.keys),
		}
		inner.setParent(view.parent)
		inner.setNextInner(view.next)
		fresh = inner
	}

	if t.table.Install(pid, fresh, head) {
		// The whole retired chain hangs off the old head.
		t.gc.Retire(head)
		t.counters.consolidations.Add(1)
		t.log.Debug("bwtree: page consolidated",
			"pid", uint64(pid), "chain", head.chain, "slots", fresh.slotUse)
	} else {
		t.gc.Retire(fresh)
	}
}

// separatorVisible reports whether the parent of head's page already routes
// the split key to the side page, either through a Separator delta or a
// consolidated inner base.
func (t *Tree[K, V]) separatorVisible(head *node[K, V], sd *node[K, V]) bool {
	parent := head.parentPID()
	if parent == NullPID {
		return false
	}
	phead := t.table.Get(parent)
	for phead != nil {
		ps := phead.newestSplit()
		if ps == nil || t.cmp(sd.splitKey, ps.splitKey) < 0 {
			break
		}
		parent = ps.side
		phead = t.table.Get(parent)
	}
	if phead == nil {
		return false
	}
	return t.findNextPID(phead, sd.splitKey) == sd.side
}
