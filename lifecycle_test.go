package grove

import (
	"testing"
	"time"
)

func newTestTracker(maxHistory int) (*Channel, *Tracker) {
	c := NewChannel()
	tr := NewTracker(c, TrackerConfig{MaxHistory: maxHistory})
	return c, tr
}

func TestTrackerProjectsLifecyclePhases(t *testing.T) {
	c, tr := newTestTracker(0)
	ts := time.Now()

	c.Emit(EntityEvent{Name: EventBeforeCreate, EntityID: 1, Timestamp: ts})
	rec, ok := tr.Record(1)
	if !ok || rec.Phase != PhaseCreating {
		t.Fatalf("after beforeCreate: record %+v found=%v, want creating", rec, ok)
	}

	c.Emit(EntityEvent{Name: EventAfterCreate, EntityID: 1, Timestamp: ts})
	rec, _ = tr.Record(1)
	if rec.Phase != PhaseActive {
		t.Errorf("after afterCreate: phase = %s, want active", rec.Phase)
	}

	c.Emit(EntityEvent{Name: EventBeforeDestroy, EntityID: 1, Timestamp: ts})
	rec, _ = tr.Record(1)
	if rec.Phase != PhaseDestroying {
		t.Errorf("after beforeDestroy: phase = %s, want destroying", rec.Phase)
	}

	c.Emit(EntityEvent{Name: EventAfterDestroy, EntityID: 1, Timestamp: ts})
	if _, ok := tr.Record(1); ok {
		t.Error("record still present after afterDestroy")
	}
}

func TestTrackerMaintainsKindSet(t *testing.T) {
	c, tr := newTestTracker(0)
	ts := time.Now()
	c.Emit(EntityEvent{Name: EventBeforeCreate, EntityID: 2, Timestamp: ts})
	c.Emit(EntityEvent{Name: EventAfterCreate, EntityID: 2, Timestamp: ts})

	c.Emit(ComponentEvent{Name: EventComponentAdded, EntityID: 2, ComponentType: KindText, Timestamp: ts})
	c.Emit(ComponentEvent{Name: EventComponentAdded, EntityID: 2, ComponentType: KindPosition, Timestamp: ts})
	rec, _ := tr.Record(2)
	if len(rec.Kinds) != 2 {
		t.Fatalf("kind set = %v, want 2 kinds", rec.Kinds)
	}

	c.Emit(ComponentEvent{Name: EventComponentRemoved, EntityID: 2, ComponentType: KindText, Timestamp: ts})
	rec, _ = tr.Record(2)
	if len(rec.Kinds) != 1 || rec.Kinds[0] != KindPosition {
		t.Errorf("kind set after removal = %v, want [position]", rec.Kinds)
	}
}

func TestTrackerHistoryEvictsOldest(t *testing.T) {
	c, tr := newTestTracker(3)
	for i := 0; i < 5; i++ {
		c.Emit(EntityEvent{Name: EventBeforeCreate, EntityID: Entity(i), Timestamp: time.Now()})
	}
	h := tr.History()
	if len(h) != 3 {
		t.Fatalf("history length = %d, want 3", len(h))
	}
	// Oldest two (entities 0 and 1) were evicted.
	if h[0].EntityID != 2 || h[2].EntityID != 4 {
		t.Errorf("history ids = [%d %d %d], want [2 3 4]", h[0].EntityID, h[1].EntityID, h[2].EntityID)
	}
}

func TestTrackerValidateEntityNotFound(t *testing.T) {
	c, tr := newTestTracker(0)
	var published []ValidationEvent
	c.On(EventValidationFailed, func(ev Event) { published = append(published, ev.(ValidationEvent)) })

	rep := tr.ValidateEntity(99)
	if rep.Found {
		t.Error("ValidateEntity found a record for an unknown entity")
	}
	if len(published) != 1 {
		t.Fatalf("validation-failed published %d times, want 1", len(published))
	}
	if published[0].EntityID != 99 {
		t.Errorf("published entity = %d, want 99", published[0].EntityID)
	}
}

func TestTrackerValidateEntityWarnsOnZeroComponents(t *testing.T) {
	c, tr := newTestTracker(0)
	ts := time.Now()
	c.Emit(EntityEvent{Name: EventBeforeCreate, EntityID: 5, Timestamp: ts})
	c.Emit(EntityEvent{Name: EventAfterCreate, EntityID: 5, Timestamp: ts})

	rep := tr.ValidateEntity(5)
	if !rep.Found {
		t.Fatal("record not found")
	}
	if len(rep.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one zero-component warning", rep.Warnings)
	}
}

func TestTrackerValidateEntityWarnsWhenStuckCreating(t *testing.T) {
	c := NewChannel()
	tr := NewTracker(c, TrackerConfig{StuckThreshold: time.Millisecond})
	c.Emit(EntityEvent{Name: EventBeforeCreate, EntityID: 6,
		Timestamp: time.Now().Add(-time.Second)})

	rep := tr.ValidateEntity(6)
	if rep.OK() {
		t.Error("expected a stuck-in-creating warning")
	}
}

func TestTrackerValidateComponent(t *testing.T) {
	c, tr := newTestTracker(0)
	ts := time.Now()
	c.Emit(EntityEvent{Name: EventBeforeCreate, EntityID: 7, Timestamp: ts})
	c.Emit(EntityEvent{Name: EventAfterCreate, EntityID: 7, Timestamp: ts})
	c.Emit(ComponentEvent{Name: EventComponentAdded, EntityID: 7, ComponentType: KindText, Timestamp: ts})

	if rep := tr.ValidateComponent(7, KindText); !rep.OK() {
		t.Errorf("valid component reported %+v", rep)
	}
	if rep := tr.ValidateComponent(7, KindVisual); rep.Found {
		t.Error("unowned kind reported as found")
	}
	if rep := tr.ValidateComponent(8, KindText); rep.Found {
		t.Error("unknown entity reported as found")
	}

	// Not active anymore: still found, but warned.
	c.Emit(EntityEvent{Name: EventBeforeDestroy, EntityID: 7, Timestamp: ts})
	rep := tr.ValidateComponent(7, KindText)
	if !rep.Found || len(rep.Warnings) == 0 {
		t.Errorf("destroying-phase component reported %+v, want found with warning", rep)
	}
}

func TestTrackerDetachStopsUpdates(t *testing.T) {
	c, tr := newTestTracker(0)
	tr.Detach()
	c.Emit(EntityEvent{Name: EventBeforeCreate, EntityID: 1, Timestamp: time.Now()})
	if tr.TrackedCount() != 0 {
		t.Error("tracker kept projecting after Detach")
	}
}
