// Package bwtree implements a lock-free, in-memory, ordered multi-map index
// based on the Bw-Tree structure.
//
// # Overview
//
// The tree maps keys to ordered lists of record locators and supports
// concurrent point insert, point delete (by key or by key and value), update,
// point lookup, and full forward scan. It is designed as the index subsystem
// of a larger database engine; tuple storage, catalog, and query execution
// live elsewhere.
//
// Instead of latches, the Bw-Tree uses two devices:
//
//   - A mapping table of atomic slots translating logical page identifiers
//     (PIDs) to the physical head of each page's delta chain.
//   - Per-page delta chains: every mutation is a small record prepended to
//     the chain by a single compare-and-swap on the page's mapping slot.
//
// Traversal folds delta chains virtually, so readers never block and never
// observe a torn page. Structure modification (page split) is a half-split:
// a Split delta published at the overflowing page, then a Separator delta
// published at the parent. Readers that race the window between the two
// follow the side pointer embedded in the Split delta. Long chains are
// compacted opportunistically by consolidation, and retired chains are
// released through an epoch-based reclaimer.
//
// # Usage
//
// Create a tree with a key comparator and a value equality checker:
//
//	tree, err := bwtree.New[uint64, Locator](
//	    func(a, b uint64) int { return cmp.Compare(a, b) },
//	    func(a, b Locator) bool { return a == b },
//	    bwtree.DefaultOptions(),
//	)
//
//	err = tree.Insert(42, loc)
//	values := tree.Lookup(42)
//	pairs := tree.ScanAll()
//
// Duplicate keys are supported: each unique key holds an ordered multiset of
// values, appended to by Insert and trimmed by DeleteValue.
//
// # Concurrency
//
// All operations are safe for concurrent use without external locking.
// Mutations are lock-free; lookups and scans are wait-free unless they
// volunteer to consolidate a long chain. Memory ordering is release/acquire
// through the mapping-table CAS: a successful install publishes every field
// of the new node to subsequent readers of that slot.
package bwtree
