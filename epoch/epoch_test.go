package epoch

import (
	"sync"
	"testing"
)

func TestRetireHeldByActiveGuard(t *testing.T) {
	r := NewReclaimer()

	g := r.Enter()
	r.Retire("node")

	r.Collect()
	if got := r.Stats().Released; got != 0 {
		t.Errorf("released %d nodes while a guard was active, want 0", got)
	}

	g.Leave()
	r.Collect()
	if got := r.Stats().Released; got != 1 {
		t.Errorf("released = %d after guard left, want 1", got)
	}
}

func TestRetireWithoutGuards(t *testing.T) {
	r := NewReclaimer()

	for i := 0; i < 5; i++ {
		r.Retire(i)
	}
	r.Collect()

	s := r.Stats()
	if s.Retired != 5 {
		t.Errorf("retired = %d, want 5", s.Retired)
	}
	if s.Released != 5 {
		t.Errorf("released = %d, want 5", s.Released)
	}
	if s.Pending != 0 {
		t.Errorf("pending = %d, want 0", s.Pending)
	}
}

func TestGuardReentry(t *testing.T) {
	r := NewReclaimer()

	// Nested guards pin independently; the outer guard keeps holding the
	// retired node after the inner one leaves.
	outer := r.Enter()
	inner := r.Enter()
	r.Retire("node")
	inner.Leave()

	r.Collect()
	if got := r.Stats().Released; got != 0 {
		t.Errorf("released %d with outer guard active, want 0", got)
	}

	outer.Leave()
	r.Collect()
	if got := r.Stats().Released; got != 1 {
		t.Errorf("released = %d, want 1", got)
	}
}

func TestEpochAdvances(t *testing.T) {
	r := NewReclaimer()
	before := r.Stats().Epoch
	r.Collect()
	r.Collect()
	if after := r.Stats().Epoch; after <= before {
		t.Errorf("epoch did not advance: %d then %d", before, after)
	}
}

func TestRetireBatchesTriggerCollection(t *testing.T) {
	r := NewReclaimer()

	// With no guards, crossing the batch size must release automatically.
	for i := 0; i < collectBatch+1; i++ {
		r.Retire(i)
	}
	if got := r.Stats().Released; got == 0 {
		t.Error("batched retire should have run a collection cycle")
	}
}

func TestConcurrentGuards(t *testing.T) {
	r := NewReclaimer()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				g := r.Enter()
				if i%10 == 0 {
					r.Retire(i)
				}
				g.Leave()
			}
		}(w)
	}
	wg.Wait()

	r.Collect()
	r.Collect()
	s := r.Stats()
	if s.Pending != 0 {
		t.Errorf("pending = %d after all guards left, want 0", s.Pending)
	}
	if s.Released != s.Retired {
		t.Errorf("released %d of %d retired", s.Released, s.Retired)
	}
}
