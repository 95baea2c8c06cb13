package index

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KilimcininKorOglu/bwtree"
	"github.com/KilimcininKorOglu/bwtree/logging"
)

// Index manager errors.
var (
	ErrIndexExists   = errors.New("index already exists")
	ErrIndexNotFound = errors.New("index not found")
	ErrInvalidColumn = errors.New("invalid column name")
	ErrManagerClosed = errors.New("index manager is closed")
)

// MaxColumnNameLength is the maximum length of an indexed column name.
const MaxColumnNameLength = 256

// Manager coordinates the per-column indexes of one storage engine. It
// handles index creation and removal and keeps indexes in step with record
// modifications.
type Manager struct {
	// indexes maps column names to their Index structures.
	indexes map[string]*Index

	// treeOpts configures every tree the manager creates.
	treeOpts bwtree.Options

	log logging.Logger

	// mu protects the index map, not the trees.
	mu     sync.RWMutex
	closed bool
}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	// TreeOptions configures the trees backing each index. Zero fields
	// take the bwtree defaults.
	TreeOptions bwtree.Options

	// Logger receives index lifecycle and maintenance events. Defaults to
	// a no-op logger.
	Logger logging.Logger
}

// NewManager creates an empty index manager.
func NewManager(opts ManagerOptions) *Manager {
	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}
	return &Manager{
		indexes:  make(map[string]*Index),
		treeOpts: opts.TreeOptions,
		log:      log,
	}
}

// validateColumn checks an index column name.
func validateColumn(column string) error {
	name := strings.TrimSpace(column)
	if name == "" || name != column {
		return fmt.Errorf("%w: %q", ErrInvalidColumn, column)
	}
	if len(column) > MaxColumnNameLength {
		return fmt.Errorf("%w: name exceeds %d bytes", ErrInvalidColumn, MaxColumnNameLength)
	}
	return nil
}

// CreateIndex creates a new index over the given column.
func (m *Manager) CreateIndex(column string) (*Index, error) {
	if err := validateColumn(column); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrManagerClosed
	}
	if _, ok := m.indexes[column]; ok {
		return nil, fmt.Errorf("%w: %s", ErrIndexExists, column)
	}

	tree, err := bwtree.New[[]byte, EntryRef](CompareKeys, refEqual, m.treeOpts)
	if err != nil {
		return nil, err
	}

	idx := &Index{
		Column:    column,
		ID:        uuid.New(),
		Tree:      tree,
		CreatedAt: time.Now(),
	}
	m.indexes[column] = idx

	m.log.Info("index created", "column", column, "id", idx.ID.String())
	return idx, nil
}

// DropIndex removes the index over the given column.
func (m *Manager) DropIndex(column string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrManagerClosed
	}
	idx, ok := m.indexes[column]
	if !ok {
		return fmt.Errorf("%w: %s", ErrIndexNotFound, column)
	}
	delete(m.indexes, column)

	m.log.Info("index dropped", "column", column, "id", idx.ID.String())
	return nil
}

// GetIndex returns the index over the given column.
func (m *Manager) GetIndex(column string) (*Index, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrManagerClosed
	}
	idx, ok := m.indexes[column]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, column)
	}
	return idx, nil
}

// Columns returns the indexed column names in sorted order.
func (m *Manager) Columns() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cols := make([]string, 0, len(m.indexes))
	for c := range m.indexes {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// IndexRecord inserts every indexed column value of the record.
func (m *Manager) IndexRecord(rec *Record) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrManagerClosed
	}
	for column, idx := range m.indexes {
		for _, value := range rec.Columns[column] {
			if err := idx.Tree.Insert(value, rec.Ref); err != nil {
				return fmt.Errorf("index %s: %w", column, err)
			}
		}
	}
	return nil
}

// UnindexRecord removes every indexed column value of the record.
func (m *Manager) UnindexRecord(rec *Record) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrManagerClosed
	}
	for column, idx := range m.indexes {
		for _, value := range rec.Columns[column] {
			if err := idx.Tree.DeleteValue(value, rec.Ref); err != nil {
				return fmt.Errorf("index %s: %w", column, err)
			}
		}
	}
	return nil
}

// ReindexRecord applies the index maintenance for an in-place record
// update: the previous values come out, the next values go in.
func (m *Manager) ReindexRecord(prev, next *Record) error {
	if err := m.UnindexRecord(prev); err != nil {
		return err
	}
	return m.IndexRecord(next)
}

// LookupEqual returns the locators of every record whose column equals key,
// in insertion order.
func (m *Manager) LookupEqual(column string, key []byte) ([]EntryRef, error) {
	idx, err := m.GetIndex(column)
	if err != nil {
		return nil, err
	}
	return idx.Tree.Lookup(key), nil
}

// IndexStats pairs an index identity with its tree statistics.
type IndexStats struct {
	Column string
	ID     uuid.UUID
	Tree   bwtree.Stats
}

// Stats returns statistics for every index, sorted by column name.
func (m *Manager) Stats() []IndexStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]IndexStats, 0, len(m.indexes))
	for _, idx := range m.indexes {
		out = append(out, IndexStats{
			Column: idx.Column,
			ID:     idx.ID,
			Tree:   idx.Tree.Stats(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Column < out[j].Column })
	return out
}

// Close marks the manager closed. Further operations fail with
// ErrManagerClosed. The trees are memory-resident and need no teardown.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrManagerClosed
	}
	m.closed = true
	m.indexes = make(map[string]*Index)
	return nil
}
