package bwtree

// Insert appends value to the value list for key, creating the entry if
// absent. It fails only when the mapping table runs out of PIDs for a
// required split.
func (t *Tree[K, V]) Insert(key K, value V) error {
	if err := t.ensureRoot(); err != nil {
		return err
	}

	g := t.gc.Enter()
	defer g.Leave()

	for {
		pid, head := t.findLeaf(key)
		if head == nil {
			continue
		}

		exists := len(t.lookupChain(head, key)) > 0
		slotUse := head.slotUse
		if !exists {
			slotUse++
		}

		delta := newInsertDelta(head, key, value, slotUse)
		if t.table.Install(pid, delta, head) {
			if slotUse >= t.opts.LeafSlotMax {
				if err := t.splitLeaf(pid); err != nil {
					return err
				}
			}
			t.maybeConsolidate(pid, delta)
			return nil
		}
		t.counters.casRetries.Add(1)
		t.gc.Retire(delta)
	}
}

// Update overwrites any existing value list for key with the single-element
// list [value]. Updating an absent key is a silent no-op. The absence check
// is made against the exact head the CAS installs over, so the no-op
// decision cannot race a concurrent insert or delete.
func (t *Tree[K, V]) Update(key K, value V) error {
	if err := t.ensureRoot(); err != nil {
		return err
	}

	g := t.gc.Enter()
	defer g.Leave()

	for {
		pid, head := t.findLeaf(key)
		if head == nil {
			continue
		}

		if len(t.lookupChain(head, key)) == 0 {
			return nil
		}

		delta := newUpdateDelta(head, key, value, head.slotUse)
		if t.table.Install(pid, delta, head) {
			t.maybeConsolidate(pid, delta)
			return nil
		}
		t.counters.casRetries.Add(1)
		t.gc.Retire(delta)
	}
}

// DeleteKey removes the entire value list for key. Deleting an absent key
// is a no-op.
func (t *Tree[K, V]) DeleteKey(key K) error {
	if err := t.ensureRoot(); err != nil {
		return err
	}

	g := t.gc.Enter()
	defer g.Leave()

	for {
		pid, head := t.findLeaf(key)
		if head == nil {
			continue
		}

		if len(t.lookupChain(head, key)) == 0 {
			return nil
		}

		delta := newDeleteKeyDelta(head, key, head.slotUse-1)
		if t.table.Install(pid, delta, head) {
			t.maybeConsolidate(pid, delta)
			return nil
		}
		t.counters.casRetries.Add(1)
		t.gc.Retire(delta)
	}
}

// DeleteValue removes the first value equal to value from key's value list.
// It is a no-op when no matching value is present.
func (t *Tree[K, V]) DeleteValue(key K, value V) error {
	if err := t.ensureRoot(); err != nil {
		return err
	}

	g := t.gc.Enter()
	defer g.Leave()

	for {
		pid, head := t.findLeaf(key)
		if head == nil {
			continue
		}

		list := t.lookupChain(head, key)
		matched := false
		for _, v := range list {
			if t.valueEq(v, value) {
				matched = true
				break
			}
		}
		if !matched {
			return nil
		}

		slotUse := head.slotUse
		if len(list) == 1 {
			// Removing the last value drops the key slot.
			slotUse--
		}

		delta := newDeleteValueDelta(head, key, value, slotUse)
		if t.table.Install(pid, delta, head) {
			t.maybeConsolidate(pid, delta)
			return nil
		}
		t.counters.casRetries.Add(1)
		t.gc.Retire(delta)
	}
}

// maybeConsolidate volunteers to consolidate pid when the freshly observed
// head reports a chain past the threshold.
func (t *Tree[K, V]) maybeConsolidate(pid PID, head *node[K, V]) {
	if head.chain > t.opts.DeltaThreshold {
		t.consolidate(pid)
	}
}
