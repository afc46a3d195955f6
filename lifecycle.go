package grove

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Phase is the derived lifecycle state of a tracked entity.
type Phase string

const (
	PhaseCreating   Phase = "creating"   // beforeCreate seen, afterCreate not yet
	PhaseActive     Phase = "active"     // afterCreate seen
	PhaseDestroying Phase = "destroying" // beforeDestroy seen, afterDestroy not yet
)

// DefaultMaxHistory bounds the tracker's event ring when TrackerConfig
// leaves MaxHistory zero.
const DefaultMaxHistory = 100

// DefaultStuckThreshold is how long an entity may remain in the creating
// phase before ValidateEntity warns.
const DefaultStuckThreshold = 5 * time.Second

// LifecycleRecord is the tracker's view of one entity. It is a projection of
// the event stream, never a primary store: destroying the tracker loses
// nothing the world knows.
type LifecycleRecord struct {
	CreatedAt time.Time
	Phase     Phase
	Kinds     []Kind // owned component kinds, table order
}

// HistoryEntry is one remembered structural event.
type HistoryEntry struct {
	Time     time.Time
	Name     EventName
	EntityID Entity
}

// Report is the outcome of a validation probe. Validation never blocks the
// mutation that triggered it: problems surface here and as
// validation-failed events, not as errors.
type Report struct {
	Found    bool
	Warnings []string
}

// OK reports a clean result: record found, nothing to warn about.
func (r Report) OK() bool { return r.Found && len(r.Warnings) == 0 }

// TrackerConfig tunes a Tracker. Zero values take the defaults above.
type TrackerConfig struct {
	MaxHistory     int
	StuckThreshold time.Duration
	Logger         *zap.Logger
}

type trackedEntity struct {
	createdAt time.Time
	phase     Phase
	kinds     kindMask
}

// Tracker observes the structural events on a channel and projects them into
// per-entity phase records plus a bounded history ring. It exists for
// debugging and validation; the world never consults it for correctness.
type Tracker struct {
	events *Channel
	logger *zap.Logger
	clock  func() time.Time

	records map[Entity]*trackedEntity

	history    []HistoryEntry // ring, capacity maxHistory
	start      int            // index of oldest entry
	maxHistory int

	stuckThreshold time.Duration
	subs           []Subscription
}

// NewTracker creates a tracker subscribed to the six structural event names
// on events.
func NewTracker(events *Channel, cfg TrackerConfig) *Tracker {
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = DefaultMaxHistory
	}
	if cfg.StuckThreshold <= 0 {
		cfg.StuckThreshold = DefaultStuckThreshold
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{
		events:         events,
		logger:         logger,
		clock:          time.Now,
		records:        make(map[Entity]*trackedEntity),
		history:        make([]HistoryEntry, 0, cfg.MaxHistory),
		maxHistory:     cfg.MaxHistory,
		stuckThreshold: cfg.StuckThreshold,
	}
	structural := []EventName{
		EventBeforeCreate, EventAfterCreate,
		EventBeforeDestroy, EventAfterDestroy,
		EventComponentAdded, EventComponentRemoved,
	}
	for _, name := range structural {
		t.subs = append(t.subs, events.On(name, t.observe))
	}
	return t
}

// Detach unsubscribes the tracker from its channel. Records and history
// remain readable but stop updating.
func (t *Tracker) Detach() {
	for _, sub := range t.subs {
		sub.Remove()
	}
	t.subs = nil
}

func (t *Tracker) observe(ev Event) {
	switch e := ev.(type) {
	case EntityEvent:
		t.remember(e.Name, e.EntityID, e.Timestamp)
		switch e.Name {
		case EventBeforeCreate:
			t.records[e.EntityID] = &trackedEntity{createdAt: e.Timestamp, phase: PhaseCreating}
		case EventAfterCreate:
			if rec, ok := t.records[e.EntityID]; ok {
				rec.phase = PhaseActive
			}
		case EventBeforeDestroy:
			if rec, ok := t.records[e.EntityID]; ok {
				rec.phase = PhaseDestroying
			}
		case EventAfterDestroy:
			delete(t.records, e.EntityID)
		}
	case ComponentEvent:
		t.remember(e.Name, e.EntityID, e.Timestamp)
		rec, ok := t.records[e.EntityID]
		if !ok {
			return
		}
		switch e.Name {
		case EventComponentAdded:
			rec.kinds.set(e.ComponentType)
		case EventComponentRemoved:
			rec.kinds.unset(e.ComponentType)
		}
	}
}

func (t *Tracker) remember(name EventName, id Entity, ts time.Time) {
	entry := HistoryEntry{Time: ts, Name: name, EntityID: id}
	if len(t.history) < t.maxHistory {
		t.history = append(t.history, entry)
		return
	}
	// Ring is full: overwrite the oldest slot.
	t.history[t.start] = entry
	t.start = (t.start + 1) % t.maxHistory
}

// Record returns the tracker's projection for id.
func (t *Tracker) Record(id Entity) (LifecycleRecord, bool) {
	rec, ok := t.records[id]
	if !ok {
		return LifecycleRecord{}, false
	}
	return LifecycleRecord{
		CreatedAt: rec.createdAt,
		Phase:     rec.phase,
		Kinds:     rec.kinds.kinds(),
	}, true
}

// TrackedCount returns the number of live records.
func (t *Tracker) TrackedCount() int { return len(t.records) }

// History returns the remembered events, oldest first.
func (t *Tracker) History() []HistoryEntry {
	out := make([]HistoryEntry, 0, len(t.history))
	for i := 0; i < len(t.history); i++ {
		out = append(out, t.history[(t.start+i)%len(t.history)])
	}
	return out
}

// ValidateEntity probes the projection for id. A missing record, an entity
// stuck in the creating phase past the threshold, or an entity with zero
// components all count as failures; each is published as validation-failed
// and logged, never returned as an error.
func (t *Tracker) ValidateEntity(id Entity) Report {
	rec, ok := t.records[id]
	if !ok {
		return t.fail(id, "", []string{"no lifecycle record"})
	}
	var warnings []string
	if rec.phase == PhaseCreating && t.clock().Sub(rec.createdAt) > t.stuckThreshold {
		warnings = append(warnings, fmt.Sprintf("stuck in creating phase for over %v", t.stuckThreshold))
	}
	if rec.kinds == 0 {
		warnings = append(warnings, "entity has no components")
	}
	if len(warnings) > 0 {
		r := t.fail(id, "", warnings)
		r.Found = true
		return r
	}
	return Report{Found: true}
}

// ValidateComponent probes the projection for the (id, kind) pair: the
// record and the kind must both exist, and the entity must be in the active
// phase.
func (t *Tracker) ValidateComponent(id Entity, kind Kind) Report {
	rec, ok := t.records[id]
	if !ok {
		return t.fail(id, kind.String(), []string{"no lifecycle record"})
	}
	if !rec.kinds.has(kind) {
		return t.fail(id, kind.String(), []string{"entity does not own this component kind"})
	}
	if rec.phase != PhaseActive {
		r := t.fail(id, kind.String(), []string{fmt.Sprintf("entity is %s, not active", rec.phase)})
		r.Found = true
		return r
	}
	return Report{Found: true}
}

func (t *Tracker) fail(id Entity, kind string, warnings []string) Report {
	t.logger.Warn("lifecycle validation failed",
		zap.Uint32("entity", uint32(id)),
		zap.String("kind", kind),
		zap.Strings("warnings", warnings))
	t.events.Emit(ValidationEvent{EntityID: id, Kind: kind, Warnings: warnings})
	return Report{Warnings: warnings}
}
