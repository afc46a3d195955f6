// Package grove is the state-management core of a visual idea organizer.
//
// Grove tracks a live set of idea and theme items as entities, attaches
// typed data rows to them (text, spiral position, visual style, animation),
// drives layout through prioritized per-tick update passes, and broadcasts
// every change over a typed publish/subscribe channel. It never draws: a
// presentation adapter reads Position and Visual rows each tick and paints
// them, repainting when render-requested or the animation events fire.
//
// # Quick start
//
//	world := grove.NewWorld(grove.WorldConfig{})
//	world.Scheduler().Register(grove.NewPlacementPass(grove.DefaultPlacementConfig()))
//	world.Scheduler().Register(grove.NewAnimationPass())
//	world.Scheduler().Start()
//
//	id := world.CreateEntity()
//	world.AddComponent(id, grove.Text{Content: "first idea", EntityKind: grove.KindIdea})
//	world.AddComponent(id, grove.Position{Index: 0, Scale: 1})
//
//	world.RunTick(1.0 / 60)
//
// # Entities and components
//
// An [Entity] is an opaque recycled identity with no data of its own. Data
// lives in component rows ([Position], [Text], [Visual], [Animation]), with
// at most one row per (entity, kind). Whether an item is an idea or a theme
// is derived from its Text row's EntityKind, never stored separately.
//
// [World] is the composition root and the only surface other layers use.
// Every structural mutation (create, destroy, add, remove) bumps its version
// counter exactly once and is published on the event channel before any pass
// in the same tick can observe it, so caches keyed on [World.Version] and
// subscribers on [Channel] always agree.
//
// # Ticks and passes
//
// One call to [World.RunTick] executes every registered [Pass] in ascending
// priority order against the entities owning that pass's required kinds. A
// pass that panics or errors is reported as a single error:occurred event
// and skipped; the tick always completes.
//
// # Layout
//
// Items sit on a golden-angle spiral: [Place] is the pure placement function
// and [PlacementPass] applies it each tick. [AnimationPass] tweens items
// toward their targets using [github.com/tanema/gween].
//
// Grove is single-threaded by design: the world, store, channel, and every
// pass run cooperatively inside one tick on one goroutine.
package grove
