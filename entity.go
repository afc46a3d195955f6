package grove

// Entity is an opaque identity token naming one item on the canvas. It
// carries no data of its own; everything an item "is" lives in component
// rows keyed by its Entity. Identities are recycled after release, so a held
// Entity is only meaningful while Registry.IsActive reports true.
type Entity uint32

// Registry issues and recycles entity identities. IDs are small dense
// integers so component tables and kind indexes can key on them directly.
//
// The registry is single-threaded like everything else in grove: all access
// happens from the goroutine driving ticks.
type Registry struct {
	active map[Entity]struct{}
	free   []Entity // stack of released ids, reused LIFO
	next   Entity   // next never-issued id
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{active: make(map[Entity]struct{})}
}

// Acquire returns an identity not currently owned by anyone: a recycled id
// when one is available, otherwise the next sequential id.
func (r *Registry) Acquire() Entity {
	var id Entity
	if n := len(r.free); n > 0 {
		id = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		id = r.next
		r.next++
	}
	r.active[id] = struct{}{}
	return id
}

// AcquireN acquires count identities in one call and returns them in
// acquisition order.
func (r *Registry) AcquireN(count int) []Entity {
	ids := make([]Entity, 0, count)
	for i := 0; i < count; i++ {
		ids = append(ids, r.Acquire())
	}
	return ids
}

// Release marks id inactive and returns it to the reuse pool. Releasing an
// id that is not active is a no-op, so double release is harmless.
func (r *Registry) Release(id Entity) {
	if _, ok := r.active[id]; !ok {
		return
	}
	delete(r.active, id)
	r.free = append(r.free, id)
}

// IsActive reports whether id is currently owned.
func (r *Registry) IsActive(id Entity) bool {
	_, ok := r.active[id]
	return ok
}

// ActiveIDs returns a fresh slice of every active identity. Order is
// unspecified; callers that need determinism sort it themselves.
func (r *Registry) ActiveIDs() []Entity {
	ids := make([]Entity, 0, len(r.active))
	for id := range r.active {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of active identities.
func (r *Registry) Len() int {
	return len(r.active)
}
