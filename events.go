package grove

import (
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"
)

// EventName identifies one channel on the event bus. The set is closed; see
// payloadTypes for the payload struct each name carries.
type EventName string

const (
	EventBeforeCreate  EventName = "entity:beforeCreate"
	EventAfterCreate   EventName = "entity:afterCreate"
	EventBeforeDestroy EventName = "entity:beforeDestroy"
	EventAfterDestroy  EventName = "entity:afterDestroy"

	EventComponentAdded   EventName = "entity:componentAdded"
	EventComponentRemoved EventName = "entity:componentRemoved"

	EventPositionCalculated EventName = "position:calculated"
	EventAnimationStart     EventName = "animation-start"
	EventAnimationEnd       EventName = "animation-end"
	EventRenderRequested    EventName = "render-requested"

	EventErrorOccurred    EventName = "error:occurred"
	EventValidationFailed EventName = "validation-failed"

	// Domain names emitted by the orchestration layer on user actions.
	// grove defines the payloads so every producer and consumer shares one
	// contract, but never emits these itself.
	EventIdeaAdded    EventName = "idea:added"
	EventIdeaRemoved  EventName = "idea:removed"
	EventThemeChanged EventName = "theme:changed"
)

// Event is one published payload. The implementing types below form a closed
// set; Emit rejects anything else.
type Event interface {
	EventName() EventName
}

// EntityEvent is the payload for the four entity lifecycle names.
type EntityEvent struct {
	Name      EventName
	EntityID  Entity
	Timestamp time.Time
}

func (e EntityEvent) EventName() EventName { return e.Name }

// ComponentEvent is the payload for componentAdded/componentRemoved.
// OldValue is the replaced or removed row (nil on a fresh add); NewValue is
// the stored row (nil on remove).
type ComponentEvent struct {
	Name          EventName
	EntityID      Entity
	ComponentType Kind
	OldValue      Component
	NewValue      Component
	Timestamp     time.Time
}

func (e ComponentEvent) EventName() EventName { return e.Name }

// PositionEvent reports a freshly computed placement.
type PositionEvent struct {
	EntityID Entity
	Position Vec2
	Angle    float64
	Radius   float64
	Index    int
}

func (PositionEvent) EventName() EventName { return EventPositionCalculated }

// AnimationEvent marks an animation starting or finishing on an entity.
type AnimationEvent struct {
	Name     EventName
	EntityID Entity
	Kind     AnimationKind
}

func (e AnimationEvent) EventName() EventName { return e.Name }

// RenderEvent asks the presentation adapter to repaint. Reason is
// free-form ("placement", "animation", ...).
type RenderEvent struct {
	Reason string
}

func (RenderEvent) EventName() EventName { return EventRenderRequested }

// ErrorEvent reports a recovered runtime failure. Recoverable=false means
// the orchestration layer should surface it to the user; true means it may
// retry silently, optionally by re-emitting RecoveryEvent with RecoveryData.
type ErrorEvent struct {
	Source        string
	Message       string
	Recoverable   bool
	RecoveryEvent EventName
	RecoveryData  any
}

func (ErrorEvent) EventName() EventName { return EventErrorOccurred }

// ValidationEvent carries soft warnings from the lifecycle tracker. Kind is
// empty for whole-entity validation.
type ValidationEvent struct {
	EntityID Entity
	Kind     string
	Warnings []string
}

func (ValidationEvent) EventName() EventName { return EventValidationFailed }

// IdeaEvent is the payload for idea:added / idea:removed.
type IdeaEvent struct {
	Name     EventName
	EntityID Entity
	Content  string
}

func (e IdeaEvent) EventName() EventName { return e.Name }

// ThemeEvent is the payload for theme:changed.
type ThemeEvent struct {
	EntityID Entity
	Content  string
}

func (ThemeEvent) EventName() EventName { return EventThemeChanged }

// payloadTypes pins each name to its payload struct. Emit and On consult it
// so a mistyped publish or subscribe fails at the boundary instead of in a
// handler.
var payloadTypes = map[EventName]reflect.Type{
	EventBeforeCreate:       reflect.TypeOf(EntityEvent{}),
	EventAfterCreate:        reflect.TypeOf(EntityEvent{}),
	EventBeforeDestroy:      reflect.TypeOf(EntityEvent{}),
	EventAfterDestroy:       reflect.TypeOf(EntityEvent{}),
	EventComponentAdded:     reflect.TypeOf(ComponentEvent{}),
	EventComponentRemoved:   reflect.TypeOf(ComponentEvent{}),
	EventPositionCalculated: reflect.TypeOf(PositionEvent{}),
	EventAnimationStart:     reflect.TypeOf(AnimationEvent{}),
	EventAnimationEnd:       reflect.TypeOf(AnimationEvent{}),
	EventRenderRequested:    reflect.TypeOf(RenderEvent{}),
	EventErrorOccurred:      reflect.TypeOf(ErrorEvent{}),
	EventValidationFailed:   reflect.TypeOf(ValidationEvent{}),
	EventIdeaAdded:          reflect.TypeOf(IdeaEvent{}),
	EventIdeaRemoved:        reflect.TypeOf(IdeaEvent{}),
	EventThemeChanged:       reflect.TypeOf(ThemeEvent{}),
}

// --- Channel ---

type listener struct {
	id   uint32
	fn   func(Event)
	once bool
}

// Channel is a synchronous in-process event bus. Handlers for a name run in
// registration order before Emit returns, unless batching defers delivery to
// the next Flush. A panicking handler is recovered at dispatch, logged, and
// reported as error:occurred; it never blocks sibling handlers or the
// emitter.
//
// Channel is shared by reference between the world, every pass, and the
// lifecycle tracker, and like the rest of grove it is single-threaded.
type Channel struct {
	listeners map[EventName][]listener
	nextID    uint32
	logger    *zap.Logger

	// Micro-batching (off by default). When batchLimit > 0 emits queue up
	// and Flush delivers them FIFO; reaching the limit flushes immediately.
	batchLimit int
	queue      []Event
	flushing   bool
}

// NewChannel creates a channel with batching disabled and a no-op logger.
func NewChannel() *Channel {
	return &Channel{
		listeners: make(map[EventName][]listener),
		logger:    zap.NewNop(),
	}
}

// SetLogger installs a structured logger for handler panics and dropped
// events. Passing nil restores the no-op logger.
func (c *Channel) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c.logger = logger
}

// Subscription identifies one registered handler so it can be removed.
type Subscription struct {
	id   uint32
	name EventName
	ch   *Channel
}

// Remove unregisters the handler so it no longer fires. Safe to call more
// than once.
func (s Subscription) Remove() {
	if s.ch == nil {
		return
	}
	s.ch.remove(s.name, s.id)
}

// On registers fn for name and returns a Subscription for removal. Handlers
// run in registration order. Unknown names panic: the name set is closed and
// a typo here is a programming error.
func (c *Channel) On(name EventName, fn func(Event)) Subscription {
	return c.subscribe(name, fn, false)
}

// Once registers fn to fire at most once: it is removed right before its
// first delivery.
func (c *Channel) Once(name EventName, fn func(Event)) Subscription {
	return c.subscribe(name, fn, true)
}

// Off removes a previous subscription. Equivalent to sub.Remove().
func (c *Channel) Off(sub Subscription) {
	sub.Remove()
}

func (c *Channel) subscribe(name EventName, fn func(Event), once bool) Subscription {
	if _, ok := payloadTypes[name]; !ok {
		panic(fmt.Sprintf("grove: subscribe to unknown event name %q", name))
	}
	c.nextID++
	c.listeners[name] = append(c.listeners[name], listener{id: c.nextID, fn: fn, once: once})
	return Subscription{id: c.nextID, name: name, ch: c}
}

func (c *Channel) remove(name EventName, id uint32) {
	s := c.listeners[name]
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = listener{}
			c.listeners[name] = s[:len(s)-1]
			return
		}
	}
}

// ListenerCount returns the number of handlers currently registered for name.
func (c *Channel) ListenerCount(name EventName) int {
	return len(c.listeners[name])
}

// Clear drops every handler for every name and any queued batch.
func (c *Channel) Clear() {
	c.listeners = make(map[EventName][]listener)
	c.queue = c.queue[:0]
}

// SetBatching enables micro-batched delivery with the given bound: emits
// queue until Flush, or until the queue reaches limit, whichever is first.
// limit <= 0 disables batching (and flushes anything pending).
func (c *Channel) SetBatching(limit int) {
	c.batchLimit = limit
	if limit <= 0 {
		c.Flush()
	}
}

// Emit publishes ev to every handler registered for its name. With batching
// off, delivery completes before Emit returns. A payload type that does not
// match its name panics at this boundary.
func (c *Channel) Emit(ev Event) {
	name := ev.EventName()
	want, ok := payloadTypes[name]
	if !ok {
		panic(fmt.Sprintf("grove: emit of unknown event name %q", name))
	}
	if got := reflect.TypeOf(ev); got != want {
		panic(fmt.Sprintf("grove: event %q requires payload %s, got %s", name, want, got))
	}
	if c.batchLimit > 0 {
		c.queue = append(c.queue, ev)
		if len(c.queue) >= c.batchLimit {
			c.Flush()
		}
		return
	}
	c.dispatch(ev)
}

// Flush delivers every queued event in emission order. Events emitted by
// handlers during the flush are appended to the same queue and delivered in
// the same window, so per-name FIFO order holds across the batch.
func (c *Channel) Flush() {
	if c.flushing {
		return
	}
	c.flushing = true
	for i := 0; i < len(c.queue); i++ {
		c.dispatch(c.queue[i])
	}
	c.queue = c.queue[:0]
	c.flushing = false
}

// dispatch invokes the current handlers for ev's name against a snapshot, so
// handlers that subscribe or remove during delivery cannot skip or double-
// fire siblings. Once-handlers are removed before their delivery.
func (c *Channel) dispatch(ev Event) {
	name := ev.EventName()
	regs := c.listeners[name]
	if len(regs) == 0 {
		return
	}
	snapshot := append([]listener(nil), regs...)
	for i := range snapshot {
		l := snapshot[i]
		if l.once {
			c.remove(name, l.id)
		}
		c.invoke(name, l, ev)
	}
}

// invoke runs one handler with panic isolation.
func (c *Channel) invoke(name EventName, l listener, ev Event) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		c.logger.Error("event handler panicked",
			zap.String("event", string(name)),
			zap.Uint32("listener", l.id),
			zap.Any("panic", r))
		// A panic inside an error:occurred handler is only logged;
		// re-emitting would recurse.
		if name != EventErrorOccurred {
			c.dispatch(ErrorEvent{
				Source:      "events:" + string(name),
				Message:     fmt.Sprint(r),
				Recoverable: true,
			})
		}
	}()
	l.fn(ev)
}
