package staticmodel

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Animator moves a model through a deterministic loop so every kind of
// dynamic change shows up: drawables sway on small circles, opacities
// pulse around their authored value, and every SwapPeriod frames two
// neighbouring drawables exchange render orders.
type Animator struct {
	model   *Model
	opacity []float32
	offset  []mgl32.Vec2

	Radius     float32
	Speed      float64
	SwapPeriod uint64
}

func NewAnimator(m *Model) *Animator {
	a := &Animator{
		model:      m,
		opacity:    append([]float32(nil), m.opacities...),
		offset:     make([]mgl32.Vec2, m.DrawableCount()),
		Radius:     0.02,
		Speed:      0.1,
		SwapPeriod: 60,
	}
	return a
}

// Step poses the model for the given frame. Dynamic flags accumulate until
// the caller resets them.
func (a *Animator) Step(frame uint64) {
	t := float64(frame) * a.Speed
	for d := range a.offset {
		phase := t + float64(d)*0.7
		offset := mgl32.Vec2{float32(math.Cos(phase)), float32(math.Sin(phase))}.Mul(a.Radius)
		a.model.TranslateVertices(d, offset.Sub(a.offset[d]))
		a.offset[d] = offset

		pulse := float32(0.75 + 0.25*math.Sin(phase*2))
		a.model.SetOpacity(d, a.opacity[d]*pulse)
	}

	n := uint64(len(a.offset))
	if a.SwapPeriod != 0 && n > 1 && frame != 0 && frame%a.SwapPeriod == 0 {
		i := int((frame / a.SwapPeriod) % n)
		j := (i + 1) % int(n)
		oi, oj := a.model.renderOrders[i], a.model.renderOrders[j]
		a.model.SetRenderOrder(i, oj)
		a.model.SetRenderOrder(j, oi)
	}
}
