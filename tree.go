package bwtree

import (
	"sync/atomic"

	"github.com/KilimcininKorOglu/bwtree/epoch"
	"github.com/KilimcininKorOglu/bwtree/logging"
)

// Compare is a key comparator establishing a strict total order: negative
// when a < b, zero when equal, positive when a > b.
type Compare[K any] func(a, b K) int

// ValueEqual reports equality of two record locators.
type ValueEqual[V any] func(a, b V) bool

// Pair is a single key/value entry produced by ScanAll.
type Pair[K any, V any] struct {
	Key   K
	Value V
}

// Tree is a lock-free, in-memory, ordered multi-map index. All methods are
// safe for concurrent use.
type Tree[K any, V any] struct {
	cmp     Compare[K]
	valueEq ValueEqual[V]
	opts    Options
	table   *mappingTable[K, V]
	gc      *epoch.Reclaimer
	log     logging.Logger

	// root, headLeaf and tailLeaf hold PIDs. headLeaf never changes after
	// bootstrap: the leftmost leaf keeps its PID because splits leave the
	// lower half in place and there is no merge.
	root     atomic.Uint64
	headLeaf atomic.Uint64
	tailLeaf atomic.Uint64

	counters treeCounters
}

// New creates an empty tree with the given comparator, value equality
// checker and options.
func New[K any, V any](cmp Compare[K], valueEq ValueEqual[V], opts Options) (*Tree[K, V], error) {
	if cmp == nil {
		return nil, ErrNilComparator
	}
	if valueEq == nil {
		return nil, ErrNilValueEqual
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	return &Tree[K, V]{
		cmp:     cmp,
		valueEq: valueEq,
		opts:    opts,
		table:   newMappingTable[K, V](opts.MappingTableCapacity),
		gc:      epoch.NewReclaimer(),
		log:     opts.Logger,
	}, nil
}

// ensureRoot bootstraps the tree with an empty leaf as the root on first
// mutation. Losing the root CAS means another thread bootstrapped; the
// loser's draft page is discarded and its PID is simply never used again.
func (t *Tree[K, V]) ensureRoot() error {
	if t.root.Load() != uint64(NullPID) {
		return nil
	}

	leaf := newLeafNode[K, V]()
	pid, err := t.table.Allocate()
	if err != nil {
		return err
	}
	t.table.Install(pid, leaf, nil)

	if t.root.CompareAndSwap(uint64(NullPID), uint64(pid)) {
		t.headLeaf.Store(uint64(pid))
		t.tailLeaf.Store(uint64(pid))
		t.log.Debug("bwtree: root bootstrapped", "pid", uint64(pid))
	} else {
		t.table.Install(pid, nil, leaf)
	}
	return nil
}

// baseLeafOf returns the underlying base leaf of the page at pid, or nil.
func (t *Tree[K, V]) baseLeafOf(pid PID) *node[K, V] {
	head := t.table.Get(pid)
	if head == nil {
		return nil
	}
	return head.baseNode()
}

// parentOf re-derives the parent PID of child by descending from the root
// along key. It is the fallback for a stale or missing parent hint.
func (t *Tree[K, V]) parentOf(child PID, key K) PID {
	pid := PID(t.root.Load())
	parent := NullPID
	for pid != NullPID && pid != child {
		head := t.table.Get(pid)
		if head == nil || head.isLeafLevel() {
			return NullPID
		}
		parent = pid
		pid = t.findNextPID(head, key)
	}
	if pid != child {
		return NullPID
	}
	return parent
}

// treeCounters aggregates structural event counts.
type treeCounters struct {
	splits         atomic.Uint64
	consolidations atomic.Uint64
	casRetries     atomic.Uint64
}

// Stats is a point-in-time snapshot of tree shape and activity. Counts are
// gathered without quiescing writers, so concurrent mutation can skew the
// shape figures slightly.
type Stats struct {
	// Height is the number of levels, 0 for an empty tree.
	Height int
	// LeafPages is the number of leaf pages on the sibling chain.
	LeafPages int
	// Keys is the number of distinct keys.
	Keys int
	// Entries is the number of (key, value) pairs, counting duplicates.
	Entries int
	// Splits is the number of successful page splits since creation.
	Splits uint64
	// Consolidations is the number of successful consolidations.
	Consolidations uint64
	// CASRetries is the number of mutation CAS installs that lost and
	// retried.
	CASRetries uint64
	// RetiredNodes and ReleasedNodes report epoch reclaimer progress.
	RetiredNodes  uint64
	ReleasedNodes uint64
}

// Stats returns a snapshot of the tree's shape and activity counters.
func (t *Tree[K, V]) Stats() Stats {
	s := Stats{
		Splits:         t.counters.splits.Load(),
		Consolidations: t.counters.consolidations.Load(),
		CASRetries:     t.counters.casRetries.Load(),
	}
	rs := t.gc.Stats()
	s.RetiredNodes = rs.Retired
	s.ReleasedNodes = rs.Released

	rootPID := PID(t.root.Load())
	if rootPID == NullPID {
		return s
	}

	g := t.gc.Enter()
	defer g.Leave()

	head := t.table.Get(rootPID)
	for head != nil {
		s.Height++
		if head.isLeafLevel() {
			break
		}
		view := t.foldInner(head)
		head = t.table.Get(view.children[0])
	}

	pid := PID(t.headLeaf.Load())
	for pid != NullPID {
		head := t.table.Get(pid)
		if head == nil {
			break
		}
		view := t.foldLeaf(head)
		s.LeafPages++
		s.Keys += len(view.keys)
		for _, list := range view.vals {
			s.Entries += len(list)
		}
		pid = view.nextLeaf
	}
	return s
}
