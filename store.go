package grove

// Store holds one hash table per component kind, keyed by entity. Every
// operation is O(1) (plus hashing); absent lookups return (nil, false) so
// per-tick loops stay branch-light.
//
// The store knows nothing about entity liveness, event publication, or the
// version counter — that is World's job. Code that mutates the store
// directly (passes do, for derived values) bypasses those concerns on
// purpose: a recomputed position is not a structural change.
type Store struct {
	tables map[Kind]map[Entity]Component
}

// NewStore pre-allocates an empty table for each kind. Kinds not listed
// here reject rows until initialized, which keeps typos loud.
func NewStore(kinds ...Kind) *Store {
	s := &Store{tables: make(map[Kind]map[Entity]Component, len(kinds))}
	for _, k := range kinds {
		s.tables[k] = make(map[Entity]Component)
	}
	return s
}

// Add stores row under (id, row.Kind()), overwriting any existing row. It
// returns the previous row when one was replaced.
func (s *Store) Add(id Entity, row Component) (prev Component, replaced bool) {
	table, ok := s.tables[row.Kind()]
	if !ok {
		table = make(map[Entity]Component)
		s.tables[row.Kind()] = table
	}
	prev, replaced = table[id]
	table[id] = row
	return prev, replaced
}

// Get returns the row for (id, kind), or (nil, false) when absent.
func (s *Store) Get(id Entity, kind Kind) (Component, bool) {
	row, ok := s.tables[kind][id]
	return row, ok
}

// Has reports whether a row exists for (id, kind).
func (s *Store) Has(id Entity, kind Kind) bool {
	_, ok := s.tables[kind][id]
	return ok
}

// Remove deletes the row for (id, kind) and returns it. The second result
// is false when no row existed.
func (s *Store) Remove(id Entity, kind Kind) (Component, bool) {
	row, ok := s.tables[kind][id]
	if !ok {
		return nil, false
	}
	delete(s.tables[kind], id)
	return row, true
}

// RemoveAll strips every row owned by id and returns the kinds removed, in
// table order. Used by entity destruction to cascade.
func (s *Store) RemoveAll(id Entity) []Kind {
	var removed []Kind
	for k := Kind(0); k < kindCount; k++ {
		if _, ok := s.tables[k][id]; ok {
			delete(s.tables[k], id)
			removed = append(removed, k)
		}
	}
	return removed
}

// EntitiesWith returns every entity owning a row of kind. Order is
// unspecified.
func (s *Store) EntitiesWith(kind Kind) []Entity {
	table := s.tables[kind]
	ids := make([]Entity, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	return ids
}

// AllOfKind returns every row of kind. Order is unspecified.
func (s *Store) AllOfKind(kind Kind) []Component {
	table := s.tables[kind]
	rows := make([]Component, 0, len(table))
	for _, row := range table {
		rows = append(rows, row)
	}
	return rows
}

// ForEachOfKind calls fn for every (entity, row) of kind. fn must not add or
// remove rows of the same kind while iterating.
func (s *Store) ForEachOfKind(kind Kind, fn func(Entity, Component)) {
	for id, row := range s.tables[kind] {
		fn(id, row)
	}
}

// CountOfKind returns the number of rows in one table.
func (s *Store) CountOfKind(kind Kind) int {
	return len(s.tables[kind])
}
