package render_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/cubism_renderer/cubism/staticmodel"
	"github.com/mogaika/cubism_renderer/gfx/gltrace"
	"github.com/mogaika/cubism_renderer/render"
)

// fan is a triangle fan with rim outer vertices around the origin.
func fan(id string, rim int) staticmodel.Drawable {
	positions := make([]mgl32.Vec2, rim+1)
	uvs := make([]mgl32.Vec2, rim+1)
	uvs[0] = mgl32.Vec2{0.5, 0.5}
	for i := 0; i < rim; i++ {
		angle := 2 * math.Pi * float64(i) / float64(rim)
		positions[i+1] = mgl32.Vec2{float32(math.Cos(angle)), float32(math.Sin(angle))}
		uvs[i+1] = mgl32.Vec2{float32(i), float32(i)}
	}
	indices := make([]uint16, 0, rim*3)
	for i := 0; i < rim; i++ {
		indices = append(indices, 0, uint16(i+1), uint16((i+1)%rim+1))
	}
	return staticmodel.Drawable{
		Id:        id,
		Positions: positions,
		Uvs:       uvs,
		Indices:   indices,
		Opacity:   1,
	}
}

func quad(id string, renderOrder int32) staticmodel.Drawable {
	d := fan(id, 4)
	d.RenderOrder = renderOrder
	return d
}

func mustModel(t *testing.T, drawables ...staticmodel.Drawable) *staticmodel.Model {
	t.Helper()
	m, err := staticmodel.New(drawables)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

type testEnv struct {
	dev  *gltrace.Device
	res  *render.Resources
	logs []string
}

func newEnv(profile render.Profile) *testEnv {
	env := &testEnv{dev: gltrace.New()}
	env.res = render.NewResources(env.dev, render.Options{
		Profile: profile,
		Log:     func(message string) { env.logs = append(env.logs, message) },
	})
	return env
}

func (env *testEnv) mustRenderer(t *testing.T, m *staticmodel.Model) *render.Renderer {
	t.Helper()
	rn, err := env.res.NewRenderer(m, render.NewBlockFor(m))
	if err != nil {
		t.Fatal(err)
	}
	return rn
}

// drawnOrder maps the draws issued to the default framebuffer back to drawable indices.
func drawnOrder(rn *render.Renderer, draws []gltrace.Draw) []int {
	var order []int
	for _, draw := range draws {
		if draw.Framebuffer != 0 {
			continue
		}
		order = append(order, drawableAt(rn, draw))
	}
	return order
}

func drawableAt(rn *render.Renderer, draw gltrace.Draw) int {
	for d, rd := range rn.Drawables() {
		if uintptr(rd.Indices.BaseIndex*2) == draw.Offset && int32(rd.Indices.Count) == draw.Count {
			return d
		}
	}
	return -1
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
