package grove

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// EaseFunc maps an Animation row's easing name to a tween function. Unknown
// names fall back to linear so a typo degrades gracefully instead of
// freezing an item.
func EaseFunc(name string) ease.TweenFunc {
	switch name {
	case "linear", "":
		return ease.Linear
	case "inQuad":
		return ease.InQuad
	case "outQuad":
		return ease.OutQuad
	case "inOutQuad":
		return ease.InOutQuad
	case "inCubic":
		return ease.InCubic
	case "outCubic":
		return ease.OutCubic
	case "inOutCubic":
		return ease.InOutCubic
	case "inOutSine":
		return ease.InOutSine
	case "outExpo":
		return ease.OutExpo
	case "outElastic":
		return ease.OutElastic
	case "outBounce":
		return ease.OutBounce
	default:
		return ease.Linear
	}
}

// tweenState is the per-entity animation scratch the pass keeps between
// ticks. It lives in the pass, not in the Animation row: the row is data
// other layers read, the tweens are this pass's implementation detail.
type tweenState struct {
	x, y      *gween.Tween
	from      Vec2
	target    Vec2
	delayLeft float64
	elapsed   float64
	started   bool
}

// AnimationPass advances every active move animation: it drives Position
// toward Position.Target with the easing named on the Animation row, keeps
// Progress in [0, 1], and emits animation-start on the first advance and
// animation-end at completion. Looping animations restart from their origin
// and bump LoopCount instead of ending.
type AnimationPass struct {
	tweens  map[Entity]*tweenState
	changed bool
}

// NewAnimationPass creates the pass with an empty tween cache.
func NewAnimationPass() *AnimationPass {
	return &AnimationPass{tweens: make(map[Entity]*tweenState)}
}

// Name implements Pass.
func (*AnimationPass) Name() string { return "animation" }

// Priority implements Pass. Runs after placement so new slots set this tick
// are already in place.
func (*AnimationPass) Priority() int { return 20 }

// RequiredKinds implements Pass.
func (*AnimationPass) RequiredKinds() []Kind { return []Kind{KindPosition, KindAnimation} }

// Apply implements Pass.
func (p *AnimationPass) Apply(w *World, entities []Entity, dt float64) error {
	store := w.Store()
	selected := make(map[Entity]struct{}, len(entities))

	for _, id := range entities {
		selected[id] = struct{}{}
		posRow, ok := store.Get(id, KindPosition)
		if !ok {
			continue
		}
		animRow, ok := store.Get(id, KindAnimation)
		if !ok {
			continue
		}
		pos := posRow.(Position)
		anim := animRow.(Animation)

		if !anim.Active || anim.Motion != AnimationMove || pos.Target == nil || anim.Duration <= 0 {
			delete(p.tweens, id)
			if pos.IsAnimating {
				pos.IsAnimating = false
				store.Add(id, pos)
			}
			continue
		}

		st := p.tweens[id]
		if st == nil || st.target != *pos.Target {
			st = &tweenState{
				from:      Vec2{X: pos.X, Y: pos.Y},
				target:    *pos.Target,
				delayLeft: anim.Delay,
			}
			st.x = gween.New(float32(pos.X), float32(st.target.X), float32(anim.Duration), EaseFunc(anim.Easing))
			st.y = gween.New(float32(pos.Y), float32(st.target.Y), float32(anim.Duration), EaseFunc(anim.Easing))
			p.tweens[id] = st
		}

		step := dt
		if st.delayLeft > 0 {
			st.delayLeft -= dt
			if st.delayLeft > 0 {
				continue
			}
			step = -st.delayLeft // spend only what is left after the delay
			st.delayLeft = 0
		}

		if !st.started {
			st.started = true
			w.Events().Emit(AnimationEvent{Name: EventAnimationStart, EntityID: id, Kind: anim.Motion})
		}

		xv, xdone := st.x.Update(float32(step))
		yv, ydone := st.y.Update(float32(step))
		st.elapsed += step

		pos.X, pos.Y = float64(xv), float64(yv)
		pos.IsAnimating = true
		anim.Progress = st.elapsed / anim.Duration
		if anim.Progress > 1 {
			anim.Progress = 1
		}
		p.changed = true

		if xdone && ydone {
			anim.Progress = 1
			pos.X, pos.Y = st.target.X, st.target.Y
			if anim.Loop {
				anim.LoopCount++
				anim.Progress = 0
				restart := *st
				st.x = gween.New(float32(restart.from.X), float32(restart.target.X), float32(anim.Duration), EaseFunc(anim.Easing))
				st.y = gween.New(float32(restart.from.Y), float32(restart.target.Y), float32(anim.Duration), EaseFunc(anim.Easing))
				st.elapsed = 0
				pos.X, pos.Y = restart.from.X, restart.from.Y
			} else {
				anim.Active = false
				pos.IsAnimating = false
				pos.Target = nil
				delete(p.tweens, id)
				w.Events().Emit(AnimationEvent{Name: EventAnimationEnd, EntityID: id, Kind: anim.Motion})
			}
		}

		store.Add(id, pos)
		store.Add(id, anim)
	}

	// Entities that lost their rows (or died) drop their scratch state.
	for id := range p.tweens {
		if _, ok := selected[id]; !ok {
			delete(p.tweens, id)
		}
	}
	return nil
}

// Notify implements Notifier: ask for a repaint once per tick that moved
// anything.
func (p *AnimationPass) Notify(w *World) {
	if !p.changed {
		return
	}
	p.changed = false
	w.Events().Emit(RenderEvent{Reason: "animation"})
}
