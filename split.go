package bwtree

import "slices"

// splitLeaf performs the half-split of the leaf page at pid: root promotion
// when needed, sibling construction, Split delta install, sibling-link
// rewiring, then Separator install at the parent. The ordering is fixed:
// the Split delta is CAS-installed first, and only the winner wires the
// sibling links, so readers either see the pre-split chain or a Split delta
// whose side pointer they can follow.
func (t *Tree[K, V]) splitLeaf(pid PID) error {
	if PID(t.root.Load()) == pid {
		if err := t.promoteRoot(pid); err != nil {
			return err
		}
	}

	var (
		splitKey  K
		sibPID    PID
		parentPID PID
	)

	for {
		head := t.table.Get(pid)
		if head == nil || head.slotUse < t.opts.LeafSlotMax {
			// Another thread already split this page.
			return nil
		}

		view := t.foldLeaf(head)
		if len(view.keys) < 2 {
			return nil
		}

		pos := len(view.keys) / 2
		splitKey = view.keys[pos]
		parentPID = view.parent

		sib := newLeafNode[K, V]()
		sib.slotKey = append([]K(nil), view.keys[pos:]...)
		sib.slotData = make([][]V, len(view.vals)-pos)
		for i, list := range view.vals[pos:] {
			sib.slotData[i] = append([]V(nil), list...)
		}
		sib.slotUse = len(sib.slotKey)
		sib.setParent(parentPID)
		sib.setPrevLeaf(pid)
		sib.setNextLeaf(view.nextLeaf)

		// An older split of this page may still lack its separator; carry
		// its boundary so readers landing on the sibling chase past it.
		sibHead := sib
		if old := head.newestSplit(); old != nil {
			sibHead = newSplitDelta(sib, old.splitKey, old.side, sib.slotUse)
		}

		var err error
		sibPID, err = t.table.Allocate()
		if err != nil {
			return err
		}
		t.table.Install(sibPID, sibHead, nil)

		split := newSplitDelta(head, splitKey, sibPID, pos)
		if t.table.Install(pid, split, head) {
			// Wire the sibling chain. These are single-writer updates to
			// fields readers only reach through a freshly loaded head.
			view.base.setNextLeaf(sibPID)
			if view.nextLeaf != NullPID {
				if nb := t.baseLeafOf(view.nextLeaf); nb != nil {
					nb.setPrevLeaf(sibPID)
				}
			} else {
				t.tailLeaf.Store(uint64(sibPID))
			}
			t.counters.splits.Add(1)
			t.log.Debug("bwtree: leaf split",
				"pid", uint64(pid), "sibling", uint64(sibPID), "pos", pos)
			break
		}

		// Lost the install: withdraw the sibling and restart. The PID burnt
		// on the draft sibling is never reused.
		t.counters.casRetries.Add(1)
		t.table.Install(sibPID, nil, sibHead)
		t.gc.Retire(sibHead)
		t.gc.Retire(split)
	}

	if parentPID == NullPID {
		parentPID = t.table.Get(pid).baseNode().parentPID()
	}
	return t.installSeparator(parentPID, pid, splitKey, sibPID)
}

// promoteRoot installs a fresh inner page above the current root. Losing
// the root CAS means another thread promoted first; the draft is withdrawn.
func (t *Tree[K, V]) promoteRoot(pid PID) error {
	head := t.table.Get(pid)
	if head == nil {
		return nil
	}

	inner := newInnerNode[K, V](head.level+1, pid)
	newRoot, err := t.table.Allocate()
	if err != nil {
		return err
	}
	t.table.Install(newRoot, inner, nil)

	if t.root.CompareAndSwap(uint64(pid), uint64(newRoot)) {
		head.baseNode().setParent(newRoot)
		t.log.Debug("bwtree: root promoted",
			"old", uint64(pid), "new", uint64(newRoot))
		return nil
	}
	t.table.Install(newRoot, nil, inner)
	t.gc.Retire(inner)
	return nil
}

// installSeparator publishes a Separator delta at the parent routing
// [splitKey, rightKey) to sibPID. The parent hint may be stale: if the
// parent itself split past splitKey the install chases its side pointer,
// and a missing hint, or a hinted page that no longer lists the child, is
// re-derived by descending from the root.
func (t *Tree[K, V]) installSeparator(parentPID, childPID PID, splitKey K, sibPID PID) error {
	derived := false
	for {
		if parentPID == NullPID {
			parentPID = t.parentOf(childPID, splitKey)
			if parentPID == NullPID {
				// The child is (again) the root; nothing to announce.
				return nil
			}
			derived = true
		}

		phead := t.table.Get(parentPID)
		if phead == nil {
			parentPID = NullPID
			continue
		}

		if sd := phead.newestSplit(); sd != nil && t.cmp(splitKey, sd.splitKey) >= 0 {
			parentPID = sd.side
			continue
		}

		if t.findNextPID(phead, splitKey) == sibPID {
			// A competing consolidation or helper already routed the key.
			return nil
		}

		pview := t.foldInner(phead)
		if !derived && !slices.Contains(pview.children, childPID) {
			// Stale hint: the child moved to another parent in an inner
			// split whose Split delta has since been consolidated away.
			parentPID = NullPID
			continue
		}
		rightKey := splitKey
		rightMost := true
		if idx := upperBound(pview.keys, splitKey, t.cmp); idx < len(pview.keys) {
			rightKey = pview.keys[idx]
			rightMost = false
		}

		sep := newSeparatorDelta(phead, splitKey, rightKey, sibPID, rightMost, phead.slotUse+1)
		if t.table.Install(parentPID, sep, phead) {
			t.log.Debug("bwtree: separator installed",
				"parent", uint64(parentPID), "child", uint64(sibPID))
			if sep.slotUse >= t.opts.InnerSlotMax {
				return t.splitInner(parentPID)
			}
			t.maybeConsolidate(parentPID, sep)
			return nil
		}
		t.counters.casRetries.Add(1)
		t.gc.Retire(sep)
	}
}

// splitInner performs the half-split of the inner page at pid. The middle
// separator is pushed up: the sibling receives the keys above it, the Split
// delta truncates this page below it, and the pushed key becomes the new
// Separator at the parent. Cascades recursively up to and including root
// promotion at arbitrary levels.
func (t *Tree[K, V]) splitInner(pid PID) error {
	if PID(t.root.Load()) == pid {
		if err := t.promoteRoot(pid); err != nil {
			return err
		}
	}

	var (
		splitKey  K
		sibPID    PID
		parentPID PID
	)

	for {
		head := t.table.Get(pid)
		if head == nil || head.slotUse < t.opts.InnerSlotMax {
			return nil
		}

		view := t.foldInner(head)
		if len(view.keys) < 2 {
			return nil
		}

		pos := len(view.keys) / 2
		splitKey = view.keys[pos]
		parentPID = view.parent

		sib := &node[K, V]{
			kind:     kindInner,
			level:    head.level,
			slotKey:  append([]K(nil), view.keys[pos+1:]...),
			childPID: append([]PID(nil), view.children[pos+1:]...),
		}
		sib.slotUse = len(sib.slotKey)
		sib.setNextInner(view.next)
		sib.setParent(parentPID)

		var err error
		sibPID, err = t.table.Allocate()
		if err != nil {
			return err
		}
		t.table.Install(sibPID, sib, nil)

		split := newSplitDelta(head, splitKey, sibPID, pos)
		if t.table.Install(pid, split, head) {
			view.base.setNextInner(sibPID)
			// Refresh the moved children's parent hints. The hint is
			// advisory and may be overwritten by a racing split.
			for _, c := range sib.childPID {
				if cb := t.table.Get(c); cb != nil {
					cb.baseNode().setParent(sibPID)
				}
			}
			t.counters.splits.Add(1)
			t.log.Debug("bwtree: inner split",
				"pid", uint64(pid), "sibling", uint64(sibPID), "level", head.level)
			break
		}

		t.counters.casRetries.Add(1)
		t.table.Install(sibPID, nil, sib)
		t.gc.Retire(sib)
		t.gc.Retire(split)
	}

	if parentPID == NullPID {
		parentPID = t.table.Get(pid).baseNode().parentPID()
	}
	return t.installSeparator(parentPID, pid, splitKey, sibPID)
}
