package grove

import "testing"

func TestRegistryAcquireIssuesUniqueIDs(t *testing.T) {
	r := NewRegistry()
	seen := make(map[Entity]bool)
	for i := 0; i < 100; i++ {
		id := r.Acquire()
		if seen[id] {
			t.Fatalf("id %d issued twice", id)
		}
		seen[id] = true
	}
	if r.Len() != 100 {
		t.Errorf("Len = %d, want 100", r.Len())
	}
}

func TestRegistryReleaseRecyclesButNeverWhileActive(t *testing.T) {
	r := NewRegistry()
	a := r.Acquire()
	b := r.Acquire()

	r.Release(a)
	if r.IsActive(a) {
		t.Fatal("released id still active")
	}

	c := r.Acquire()
	if c != a {
		t.Errorf("expected recycled id %d, got %d", a, c)
	}
	if !r.IsActive(c) {
		t.Fatal("acquired id not active")
	}

	// b was never released; acquiring more must not hand it out again.
	d := r.Acquire()
	if d == b || d == c {
		t.Errorf("id %d issued while still active", d)
	}
}

func TestRegistryReleaseUnknownIsIdempotent(t *testing.T) {
	r := NewRegistry()
	r.Release(42) // never issued
	id := r.Acquire()
	r.Release(id)
	r.Release(id) // double release

	// The pool must hold id exactly once: two acquires must differ.
	x := r.Acquire()
	y := r.Acquire()
	if x == y {
		t.Fatalf("double release put %d in the pool twice", x)
	}
}

func TestRegistryActiveSetMatchesNetEffect(t *testing.T) {
	r := NewRegistry()
	var live []Entity
	for i := 0; i < 50; i++ {
		live = append(live, r.Acquire())
	}
	// Release every other id.
	want := make(map[Entity]bool)
	for i, id := range live {
		if i%2 == 0 {
			r.Release(id)
		} else {
			want[id] = true
		}
	}
	got := r.ActiveIDs()
	if len(got) != len(want) {
		t.Fatalf("ActiveIDs returned %d ids, want %d", len(got), len(want))
	}
	for _, id := range got {
		if !want[id] {
			t.Errorf("unexpected active id %d", id)
		}
	}
}

func TestRegistryAcquireN(t *testing.T) {
	r := NewRegistry()
	ids := r.AcquireN(10)
	if len(ids) != 10 {
		t.Fatalf("AcquireN returned %d ids, want 10", len(ids))
	}
	for _, id := range ids {
		if !r.IsActive(id) {
			t.Errorf("id %d not active after AcquireN", id)
		}
	}
}
