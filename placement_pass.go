package grove

import (
	"fmt"
	"math"
)

// positionEpsilon is how far a stored coordinate may drift from the computed
// slot before the pass rewrites it and announces the change.
const positionEpsilon = 1e-9

// PlacementPass keeps every labelled item on its spiral slot. Each tick it
// recomputes Place(row.Index) for the selected entities (the scheduler hands
// them over in ascending id order, so execution is deterministic) and
// rewrites Position rows that drifted, emitting position:calculated for each
// one and a single render-requested when anything moved.
//
// Entities mid-animation are left alone; the animation pass owns their
// coordinates until it finishes.
type PlacementPass struct {
	cfg     PlacementConfig
	changed bool
}

// NewPlacementPass creates the pass with the given spiral configuration.
func NewPlacementPass(cfg PlacementConfig) *PlacementPass {
	return &PlacementPass{cfg: cfg}
}

// Name implements Pass.
func (*PlacementPass) Name() string { return "placement" }

// Priority implements Pass. Placement runs before animation so fresh slots
// become animation targets within the same tick.
func (*PlacementPass) Priority() int { return 10 }

// RequiredKinds implements Pass.
func (*PlacementPass) RequiredKinds() []Kind { return []Kind{KindPosition, KindText} }

// Apply implements Pass.
func (p *PlacementPass) Apply(w *World, entities []Entity, dt float64) error {
	if _, err := p.cfg.Validate(); err != nil {
		return fmt.Errorf("placement: %w", err)
	}
	store := w.Store()
	for _, id := range entities {
		row, ok := store.Get(id, KindPosition)
		if !ok {
			continue
		}
		pos := row.(Position)
		if pos.IsAnimating {
			continue
		}
		slot, err := Place(pos.Index, p.cfg)
		if err != nil {
			// A bad index on one row must not cost the rest their layout.
			w.Events().Emit(ErrorEvent{
				Source:      p.Name(),
				Message:     fmt.Sprintf("entity %d: %v", id, err),
				Recoverable: true,
			})
			continue
		}
		if math.Abs(pos.X-slot.X) < positionEpsilon &&
			math.Abs(pos.Y-slot.Y) < positionEpsilon &&
			math.Abs(pos.Angle-slot.Angle) < positionEpsilon &&
			math.Abs(pos.Radius-slot.Radius) < positionEpsilon {
			continue
		}
		pos.X, pos.Y = slot.X, slot.Y
		pos.Angle, pos.Radius = slot.Angle, slot.Radius
		store.Add(id, pos) // derived write, no version bump
		p.changed = true
		w.Events().Emit(PositionEvent{
			EntityID: id,
			Position: Vec2{X: slot.X, Y: slot.Y},
			Angle:    slot.Angle,
			Radius:   slot.Radius,
			Index:    slot.Index,
		})
	}
	return nil
}

// Notify implements Notifier: one repaint request per tick that moved
// anything, however many rows changed.
func (p *PlacementPass) Notify(w *World) {
	if !p.changed {
		return
	}
	p.changed = false
	w.Events().Emit(RenderEvent{Reason: "placement"})
}
