// Package index provides the index manager coordinating per-column Bw-Tree
// indexes for a relational storage engine.
//
// # Overview
//
// The engine stores records in block storage and indexes their column
// values here. Each index maps an encoded column value to the set of record
// locators holding that value; duplicate values are supported, so secondary
// indexes need no special casing. The manager handles index creation and
// removal, and keeps every index in step with record inserts, deletes, and
// updates.
//
// The trees themselves are lock-free; the manager's lock only guards the
// name-to-index map.
//
// # Usage
//
//	m := index.NewManager(index.ManagerOptions{})
//	defer m.Close()
//
//	idx, err := m.CreateIndex("uid")
//
//	rec := index.NewRecord(index.EntryRef{Block: 7, Slot: 2})
//	rec.SetColumn("uid", []byte("alice"))
//	err = m.IndexRecord(rec)
//
//	refs, err := m.LookupEqual("uid", []byte("alice"))
package index
