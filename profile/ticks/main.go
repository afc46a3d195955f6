// Profiling:
// go build ./profile/ticks
// go tool pprof -http=":8000" -nodefraction=0.001 ./ticks cpu.pprof

package main

import (
	"fmt"

	"github.com/phanxgames/grove"
	"github.com/pkg/profile"
)

func main() {
	entities := 1000
	ticks := 10000
	p := profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	run(entities, ticks)
	p.Stop()
}

func run(numEntities, ticks int) {
	cfg := grove.DefaultPlacementConfig()
	world := grove.NewWorld(grove.WorldConfig{})
	if err := world.Scheduler().Register(grove.NewPlacementPass(cfg)); err != nil {
		panic(err)
	}
	if err := world.Scheduler().Register(grove.NewAnimationPass()); err != nil {
		panic(err)
	}
	world.Scheduler().Start()

	for i := 0; i < numEntities; i++ {
		id := world.CreateEntity()
		_ = world.AddComponent(id, grove.Text{
			Content: fmt.Sprintf("idea %d", i), EntityKind: grove.KindIdea,
		})
		_ = world.AddComponent(id, grove.Position{Index: i % cfg.MaxIdeas})
	}

	// Churn a slice of the population every few hundred ticks to exercise
	// identity recycling alongside the steady layout work.
	for i := 0; i < ticks; i++ {
		if i%250 == 249 {
			for _, id := range world.WithAll(grove.KindPosition, grove.KindText)[:32] {
				world.DestroyEntity(id)
			}
			for j := 0; j < 32; j++ {
				id := world.CreateEntity()
				_ = world.AddComponent(id, grove.Text{EntityKind: grove.KindIdea})
				_ = world.AddComponent(id, grove.Position{Index: j})
			}
		}
		world.RunTick(1.0 / 60)
	}
}
