package bwtree

import (
	"errors"
	"testing"
)

// cmpUint64 is the key comparator used throughout the tests.
func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// eqString is the value equality checker used throughout the tests.
func eqString(a, b string) bool { return a == b }

// newTestTree creates a tree with the given options. Tests that need splits
// without bulk data pass smallOpts.
func newTestTree(t *testing.T, opts Options) *Tree[uint64, string] {
	t.Helper()

	tree, err := New[uint64, string](cmpUint64, eqString, opts)
	if err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}
	return tree
}

// =============================================================================
// Construction Tests
// =============================================================================

func TestNewValidation(t *testing.T) {
	if _, err := New[uint64, string](nil, eqString, DefaultOptions()); err != ErrNilComparator {
		t.Errorf("expected ErrNilComparator, got %v", err)
	}
	if _, err := New[uint64, string](cmpUint64, nil, DefaultOptions()); err != ErrNilValueEqual {
		t.Errorf("expected ErrNilValueEqual, got %v", err)
	}

	opts := DefaultOptions()
	opts.LeafSlotMax = 4
	if _, err := New[uint64, string](cmpUint64, eqString, opts); err == nil {
		t.Error("expected error for LeafSlotMax below minimum")
	}
}

func TestSlotsForNodeSize(t *testing.T) {
	tests := []struct {
		name       string
		nodeBytes  int
		keyBytes   int
		entryBytes int
		want       int
	}{
		{"small node truncates", 256, 8, 16, 10},
		{"large node", 4096, 8, 8, 256},
		{"tiny node floors at min", 64, 16, 16, MinSlotMax},
		{"zero sizes floor at min", 256, 0, 0, MinSlotMax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SlotsForNodeSize(tt.nodeBytes, tt.keyBytes, tt.entryBytes); got != tt.want {
				t.Errorf("SlotsForNodeSize(%d, %d, %d) = %d, want %d",
					tt.nodeBytes, tt.keyBytes, tt.entryBytes, got, tt.want)
			}
		})
	}
}

// =============================================================================
// Point Operation Tests
// =============================================================================

func TestEmptyTreeLookup(t *testing.T) {
	tree := newTestTree(t, DefaultOptions())

	if got := tree.Lookup(42); got != nil {
		t.Errorf("expected nil lookup on empty tree, got %v", got)
	}
	if tree.Exists(42) {
		t.Error("Exists on empty tree should be false")
	}
	if got := tree.ScanAll(); got != nil {
		t.Errorf("expected nil scan on empty tree, got %v", got)
	}
}

func TestSingleInsertLookup(t *testing.T) {
	tree := newTestTree(t, DefaultOptions())

	if err := tree.Insert(5, "V1"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got := tree.Lookup(5)
	if len(got) != 1 || got[0] != "V1" {
		t.Errorf("Lookup(5) = %v, want [V1]", got)
	}
	if !tree.Exists(5) {
		t.Error("Exists(5) should be true")
	}

	pairs := tree.ScanAll()
	if len(pairs) != 1 || pairs[0].Key != 5 || pairs[0].Value != "V1" {
		t.Errorf("ScanAll() = %v, want [(5, V1)]", pairs)
	}
}

func TestDuplicateKeys(t *testing.T) {
	tree := newTestTree(t, DefaultOptions())

	for _, v := range []string{"V1", "V2", "V1"} {
		if err := tree.Insert(5, v); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	got := tree.Lookup(5)
	want := []string{"V1", "V2", "V1"}
	if len(got) != len(want) {
		t.Fatalf("Lookup(5) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Lookup(5)[%d] = %q, want %q (insertion order)", i, got[i], want[i])
		}
	}

	// DeleteValue removes the first matching V1 only.
	if err := tree.DeleteValue(5, "V1"); err != nil {
		t.Fatalf("delete value failed: %v", err)
	}
	got = tree.Lookup(5)
	if len(got) != 2 || got[0] != "V2" || got[1] != "V1" {
		t.Errorf("after DeleteValue: Lookup(5) = %v, want [V2 V1]", got)
	}

	// DeleteKey removes the whole list.
	if err := tree.DeleteKey(5); err != nil {
		t.Fatalf("delete key failed: %v", err)
	}
	if got := tree.Lookup(5); len(got) != 0 {
		t.Errorf("after DeleteKey: Lookup(5) = %v, want empty", got)
	}
	if tree.Exists(5) {
		t.Error("Exists(5) should be false after DeleteKey")
	}
}

func TestDeleteNoOps(t *testing.T) {
	tree := newTestTree(t, DefaultOptions())

	if err := tree.DeleteKey(99); err != nil {
		t.Errorf("DeleteKey on missing key should be a no-op, got %v", err)
	}
	if err := tree.DeleteValue(99, "V"); err != nil {
		t.Errorf("DeleteValue on missing key should be a no-op, got %v", err)
	}

	if err := tree.Insert(1, "A"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := tree.DeleteValue(1, "B"); err != nil {
		t.Errorf("DeleteValue on missing value should be a no-op, got %v", err)
	}
	if got := tree.Lookup(1); len(got) != 1 || got[0] != "A" {
		t.Errorf("Lookup(1) = %v, want [A]", got)
	}
}

func TestUpdateSemantics(t *testing.T) {
	tree := newTestTree(t, DefaultOptions())

	if err := tree.Insert(10, "A"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := tree.Insert(10, "B"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := tree.Update(10, "C"); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got := tree.Lookup(10)
	if len(got) != 1 || got[0] != "C" {
		t.Errorf("Lookup(10) = %v, want [C]", got)
	}

	// Update on a non-existent key is a silent no-op.
	if err := tree.Update(11, "C"); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got := tree.Lookup(11); len(got) != 0 {
		t.Errorf("Lookup(11) = %v, want empty", got)
	}
}

func TestUpdateThenUpdate(t *testing.T) {
	tree := newTestTree(t, DefaultOptions())

	if err := tree.Insert(7, "V0"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := tree.Update(7, "V1"); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := tree.Update(7, "V2"); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got := tree.Lookup(7); len(got) != 1 || got[0] != "V2" {
		t.Errorf("Lookup(7) = %v, want [V2]", got)
	}
}

// =============================================================================
// Round-trip Laws
// =============================================================================

func TestInsertDeleteRoundTrip(t *testing.T) {
	tree := newTestTree(t, DefaultOptions())

	if err := tree.Insert(3, "X"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	before := tree.Lookup(3)

	if err := tree.Insert(3, "Y"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := tree.DeleteValue(3, "Y"); err != nil {
		t.Fatalf("delete value failed: %v", err)
	}

	after := tree.Lookup(3)
	if len(after) != len(before) {
		t.Fatalf("round trip changed list: before %v, after %v", before, after)
	}
	for i := range before {
		if after[i] != before[i] {
			t.Errorf("round trip changed list at %d: before %v, after %v", i, before, after)
		}
	}
}

func TestDoubleInsertSingleDelete(t *testing.T) {
	tree := newTestTree(t, DefaultOptions())

	if err := tree.Insert(4, "V"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := tree.Insert(4, "V"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := tree.DeleteValue(4, "V"); err != nil {
		t.Fatalf("delete value failed: %v", err)
	}

	got := tree.Lookup(4)
	if len(got) != 1 || got[0] != "V" {
		t.Errorf("Lookup(4) = %v, want one remaining V", got)
	}
}

// =============================================================================
// Scan Tests
// =============================================================================

func TestScanAllOrdered(t *testing.T) {
	tree := newTestTree(t, DefaultOptions())

	keys := []uint64{17, 3, 91, 8, 44, 2, 60, 29}
	for _, k := range keys {
		if err := tree.Insert(k, "v"); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	pairs := tree.ScanAll()
	if len(pairs) != len(keys) {
		t.Fatalf("ScanAll returned %d pairs, want %d", len(pairs), len(keys))
	}
	for i := 1; i < len(pairs); i++ {
		if pairs[i].Key <= pairs[i-1].Key {
			t.Errorf("scan out of order at %d: %d then %d", i, pairs[i-1].Key, pairs[i].Key)
		}
	}
}

func TestScanAllDuplicatesInOrder(t *testing.T) {
	tree := newTestTree(t, DefaultOptions())

	for i := 0; i < 4; i++ {
		if err := tree.Insert(9, string(rune('a'+i))); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	pairs := tree.ScanAll()
	if len(pairs) != 4 {
		t.Fatalf("ScanAll returned %d pairs, want 4", len(pairs))
	}
	for i, p := range pairs {
		if p.Key != 9 || p.Value != string(rune('a'+i)) {
			t.Errorf("pair %d = (%d, %q), want (9, %q)", i, p.Key, p.Value, string(rune('a'+i)))
		}
	}
}

// =============================================================================
// Capacity Tests
// =============================================================================

func TestCapacityExhausted(t *testing.T) {
	opts := DefaultOptions()
	opts.LeafSlotMax = 8
	opts.InnerSlotMax = 8
	opts.MappingTableCapacity = 2 // room for the root leaf only
	tree := newTestTree(t, opts)

	var err error
	for k := uint64(1); k <= 8; k++ {
		err = tree.Insert(k, "v")
		if err != nil {
			break
		}
	}
	if err == nil {
		t.Fatal("expected capacity exhaustion once the root leaf must split")
	}
	if !errors.Is(err, ErrCapacityExhausted) {
		t.Errorf("expected ErrCapacityExhausted, got %v", err)
	}
	if got := tree.Lookup(3); len(got) != 1 {
		t.Errorf("pre-exhaustion data should remain readable, Lookup(3) = %v", got)
	}
}
