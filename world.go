package grove

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// ErrUnknownEntity is returned when an operation names an entity that is not
// in the active set. This is a contract violation by the caller, not a
// recoverable runtime condition.
var ErrUnknownEntity = errors.New("grove: unknown entity")

// WorldConfig tunes a new World. The zero value is usable: a fresh channel,
// no logging, default history bounds.
type WorldConfig struct {
	// Events is the channel the world publishes to. When nil the world
	// creates its own; either way the same channel is shared by reference
	// with every pass and the lifecycle tracker.
	Events *Channel

	// Logger receives structured diagnostics. Nil means no logging.
	Logger *zap.Logger

	// MaxHistory bounds the lifecycle tracker's event ring. Zero means
	// DefaultMaxHistory.
	MaxHistory int

	// StuckThreshold is how long an entity may sit in the creating phase
	// before validation warns. Zero means DefaultStuckThreshold.
	StuckThreshold time.Duration

	// Debug enables per-tick pass timing on stderr.
	Debug bool
}

// World is the composition root and the only surface other layers touch. It
// owns the registry, component store, scheduler, and lifecycle tracker
// outright, shares its event channel by reference, and carries the monotonic
// version counter downstream caches key on.
//
// All methods must be called from the single goroutine that drives ticks.
type World struct {
	registry  *Registry
	store     *Store
	events    *Channel
	scheduler *Scheduler
	tracker   *Tracker

	masks   map[Entity]kindMask // per-entity kind index
	version uint64
	logger  *zap.Logger
	clock   func() time.Time

	tickBuf []Entity // reused active-list buffer
}

// NewWorld builds a fully wired world: store tables pre-allocated for every
// kind, tracker subscribed to the structural events, scheduler created
// stopped.
func NewWorld(cfg WorldConfig) *World {
	events := cfg.Events
	if events == nil {
		events = NewChannel()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	events.SetLogger(logger)

	w := &World{
		registry: NewRegistry(),
		store:    NewStore(Kinds()...),
		events:   events,
		masks:    make(map[Entity]kindMask),
		logger:   logger,
		clock:    time.Now,
	}
	w.scheduler = NewScheduler(events)
	w.scheduler.SetLogger(logger)
	w.scheduler.SetDebug(cfg.Debug)
	w.tracker = NewTracker(events, TrackerConfig{
		MaxHistory:     cfg.MaxHistory,
		StuckThreshold: cfg.StuckThreshold,
		Logger:         logger,
	})
	return w
}

// Events returns the shared event channel.
func (w *World) Events() *Channel { return w.events }

// Scheduler returns the pass scheduler. Register passes, then Start it.
func (w *World) Scheduler() *Scheduler { return w.scheduler }

// Tracker returns the lifecycle tracker.
func (w *World) Tracker() *Tracker { return w.tracker }

// Store exposes the raw component tables. Passes use it to write derived
// values (a recomputed position is not a structural change and must not bump
// the version); everything structural goes through AddComponent and friends.
func (w *World) Store() *Store { return w.store }

// Version returns the structural version counter. It increases by exactly
// one per create, destroy, add, or remove; equal readings mean no structural
// change happened in between.
func (w *World) Version() uint64 { return w.version }

func (w *World) bump() { w.version++ }

func (w *World) mask(id Entity) kindMask { return w.masks[id] }

// --- Entity lifecycle ---

// CreateEntity registers a fresh identity with an empty kind index, bumps
// the version, and emits entity:beforeCreate then entity:afterCreate.
func (w *World) CreateEntity() Entity {
	id := w.registry.Acquire()
	w.masks[id] = 0
	ts := w.clock()
	w.events.Emit(EntityEvent{Name: EventBeforeCreate, EntityID: id, Timestamp: ts})
	w.bump()
	w.events.Emit(EntityEvent{Name: EventAfterCreate, EntityID: id, Timestamp: ts})
	return id
}

// CreateEntities creates count entities. Each creation is a full structural
// mutation: one version bump and one create event pair per entity, so
// downstream invalidation stays fine-grained.
func (w *World) CreateEntities(count int) []Entity {
	ids := make([]Entity, 0, count)
	for i := 0; i < count; i++ {
		ids = append(ids, w.CreateEntity())
	}
	return ids
}

// DestroyEntity removes id from the live set: emits entity:beforeDestroy,
// strips every owned component row, releases the identity, bumps the version
// once, and emits entity:afterDestroy. Returns false (changing nothing) when
// id is not active.
func (w *World) DestroyEntity(id Entity) bool {
	if !w.registry.IsActive(id) {
		return false
	}
	ts := w.clock()
	w.events.Emit(EntityEvent{Name: EventBeforeDestroy, EntityID: id, Timestamp: ts})
	w.store.RemoveAll(id)
	delete(w.masks, id)
	w.registry.Release(id)
	w.bump()
	w.events.Emit(EntityEvent{Name: EventAfterDestroy, EntityID: id, Timestamp: ts})
	return true
}

// IsActive reports whether id is in the live set.
func (w *World) IsActive(id Entity) bool { return w.registry.IsActive(id) }

// ActiveIDs returns the live set in unspecified order.
func (w *World) ActiveIDs() []Entity { return w.registry.ActiveIDs() }

// EntityCount returns the size of the live set.
func (w *World) EntityCount() int { return w.registry.Len() }

// --- Components ---

// AddComponent attaches row to id, overwriting any existing row of the same
// kind, bumps the version, and emits entity:componentAdded carrying the old
// and new values. Fails with ErrUnknownEntity when id is not active.
func (w *World) AddComponent(id Entity, row Component) error {
	if !w.registry.IsActive(id) {
		return fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}
	prev, _ := w.store.Add(id, row)
	m := w.masks[id]
	m.set(row.Kind())
	w.masks[id] = m
	w.bump()
	w.events.Emit(ComponentEvent{
		Name:          EventComponentAdded,
		EntityID:      id,
		ComponentType: row.Kind(),
		OldValue:      prev,
		NewValue:      row,
		Timestamp:     w.clock(),
	})
	return nil
}

// RemoveComponent detaches the (id, kind) row, bumps the version, and emits
// entity:componentRemoved carrying the removed value. Returns false when the
// entity is unknown or owns no such row.
func (w *World) RemoveComponent(id Entity, kind Kind) bool {
	if !w.registry.IsActive(id) {
		return false
	}
	removed, ok := w.store.Remove(id, kind)
	if !ok {
		return false
	}
	m := w.masks[id]
	m.unset(kind)
	w.masks[id] = m
	w.bump()
	w.events.Emit(ComponentEvent{
		Name:          EventComponentRemoved,
		EntityID:      id,
		ComponentType: kind,
		OldValue:      removed,
		Timestamp:     w.clock(),
	})
	return true
}

// GetComponent returns the (id, kind) row, or (nil, false) when absent.
func (w *World) GetComponent(id Entity, kind Kind) (Component, bool) {
	return w.store.Get(id, kind)
}

// HasComponent reports whether id owns a row of kind.
func (w *World) HasComponent(id Entity, kind Kind) bool {
	return w.store.Has(id, kind)
}

// --- Composite queries ---

// HasAll reports whether id owns a row of every listed kind.
func (w *World) HasAll(id Entity, kinds ...Kind) bool {
	return w.masks[id].containsAll(maskOf(kinds))
}

// WithAll returns the active entities owning every listed kind, in
// ascending id order.
func (w *World) WithAll(kinds ...Kind) []Entity {
	want := maskOf(kinds)
	return w.collect(func(m kindMask) bool { return m.containsAll(want) })
}

// WithAny returns the active entities owning at least one listed kind, in
// ascending id order.
func (w *World) WithAny(kinds ...Kind) []Entity {
	want := maskOf(kinds)
	return w.collect(func(m kindMask) bool { return m.intersects(want) })
}

// WithNone returns the active entities owning none of the listed kinds, in
// ascending id order.
func (w *World) WithNone(kinds ...Kind) []Entity {
	want := maskOf(kinds)
	return w.collect(func(m kindMask) bool { return !m.intersects(want) })
}

func (w *World) collect(match func(kindMask) bool) []Entity {
	var out []Entity
	for id, m := range w.masks {
		if match(m) {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ClassOf returns the derived classification of id: the EntityKind tag on
// its Text row. An entity without a Text row has none.
func (w *World) ClassOf(id Entity) (EntityKind, bool) {
	row, ok := w.store.Get(id, KindText)
	if !ok {
		return "", false
	}
	return row.(Text).EntityKind, true
}

// --- Tick ---

// RunTick executes one tick: the active entity list (sorted ascending so
// pass execution is deterministic) is handed to the scheduler along with the
// world itself as the data-access facade. Every structural mutation made
// before this call is already visible on the event channel, so no pass can
// observe a change before its subscribers did.
func (w *World) RunTick(dt float64) {
	// With micro-batching enabled, queued structural events must reach
	// subscribers before any pass observes the state they describe.
	w.events.Flush()

	w.tickBuf = w.tickBuf[:0]
	for id := range w.masks {
		w.tickBuf = append(w.tickBuf, id)
	}
	sort.Slice(w.tickBuf, func(i, j int) bool { return w.tickBuf[i] < w.tickBuf[j] })
	w.scheduler.Update(w, w.tickBuf, dt)

	// The tick is one flush window: whatever the passes published goes out
	// before control returns to the caller.
	w.events.Flush()
}
