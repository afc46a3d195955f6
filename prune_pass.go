package grove

// PrunePass is the bookkeeping half of the presentation adapter: it watches
// which visual entities existed last tick and requests a repaint when any of
// them vanished, so the painted surface never shows a stale item. It opts
// out of the scheduler's empty-selection skip — the tick in which the last
// visual entity dies is exactly the tick it must still run.
type PrunePass struct {
	seen  map[Entity]struct{}
	stale int
}

// NewPrunePass creates the pass with no remembered entities.
func NewPrunePass() *PrunePass {
	return &PrunePass{seen: make(map[Entity]struct{})}
}

// Name implements Pass.
func (*PrunePass) Name() string { return "prune" }

// Priority implements Pass. Runs last so it observes the tick's final state.
func (*PrunePass) Priority() int { return 90 }

// RequiredKinds implements Pass.
func (*PrunePass) RequiredKinds() []Kind { return []Kind{KindVisual} }

// RunsWhenEmpty implements EmptyRunner.
func (*PrunePass) RunsWhenEmpty() bool { return true }

// Apply implements Pass.
func (p *PrunePass) Apply(w *World, entities []Entity, dt float64) error {
	current := make(map[Entity]struct{}, len(entities))
	for _, id := range entities {
		current[id] = struct{}{}
	}
	for id := range p.seen {
		if _, ok := current[id]; !ok {
			p.stale++
		}
	}
	p.seen = current
	return nil
}

// Notify implements Notifier.
func (p *PrunePass) Notify(w *World) {
	if p.stale == 0 {
		return
	}
	p.stale = 0
	w.Events().Emit(RenderEvent{Reason: "prune"})
}
