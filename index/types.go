package index

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/KilimcininKorOglu/bwtree"
)

// EntryRef is a record locator: the block holding the record and the slot
// within it. It is trivially copyable and comparable.
type EntryRef struct {
	// Block is the identifier of the block containing the record.
	Block uint64
	// Slot is the slot index within the block.
	Slot uint16
}

// String returns the locator in block:slot form.
func (r EntryRef) String() string {
	return fmt.Sprintf("%d:%d", r.Block, r.Slot)
}

// Index is a Bw-Tree index over one column.
type Index struct {
	// Column is the name of the indexed column.
	Column string

	// ID uniquely identifies this index instance.
	ID uuid.UUID

	// Tree is the underlying lock-free index structure.
	Tree *bwtree.Tree[[]byte, EntryRef]

	// CreatedAt is the instant the index was created.
	CreatedAt time.Time
}

// Record is the unit of index maintenance: the indexed column values of one
// stored record plus its locator.
type Record struct {
	// Columns maps column names to their values. A column may carry
	// several values (array columns index every element).
	Columns map[string][][]byte

	// Ref locates the record in block storage.
	Ref EntryRef
}

// NewRecord creates an empty record with the given locator.
func NewRecord(ref EntryRef) *Record {
	return &Record{
		Columns: make(map[string][][]byte),
		Ref:     ref,
	}
}

// SetColumn replaces the values of a column.
func (r *Record) SetColumn(name string, values ...[]byte) {
	r.Columns[name] = values
}

// CompareKeys compares two encoded column values in index key order.
func CompareKeys(a, b []byte) int {
	return bytes.Compare(a, b)
}

// refEqual reports locator equality; it is the value equality checker
// handed to every tree.
func refEqual(a, b EntryRef) bool {
	return a == b
}
