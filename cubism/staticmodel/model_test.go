package staticmodel_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/cubism_renderer/cubism"
	"github.com/mogaika/cubism_renderer/cubism/staticmodel"
)

func triangle(id string) staticmodel.Drawable {
	return staticmodel.Drawable{
		Id:        id,
		Positions: []mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}},
		Uvs:       []mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}},
		Indices:   []uint16{0, 1, 2},
		Opacity:   1,
	}
}

func TestNewValidation(t *testing.T) {
	var tests = []struct {
		name   string
		modify func(d *staticmodel.Drawable)
	}{
		{"uv count", func(d *staticmodel.Drawable) { d.Uvs = d.Uvs[:2] }},
		{"not a triangle list", func(d *staticmodel.Drawable) { d.Indices = []uint16{0, 1} }},
		{"index out of range", func(d *staticmodel.Drawable) { d.Indices = []uint16{0, 1, 3} }},
		{"mask out of range", func(d *staticmodel.Drawable) { d.Masks = []int32{5} }},
		{"negative texture", func(d *staticmodel.Drawable) { d.TextureIndex = -1 }},
	}
	for _, test := range tests {
		d := triangle("a")
		test.modify(&d)
		if _, err := staticmodel.New([]staticmodel.Drawable{d, triangle("b")}); err == nil {
			t.Errorf("%s: New accepted invalid drawable", test.name)
		}
	}

	if _, err := staticmodel.New([]staticmodel.Drawable{triangle("a"), triangle("b")}); err != nil {
		t.Errorf("valid drawables: %v", err)
	}
}

func TestDynamicFlags(t *testing.T) {
	hidden := triangle("hidden")
	hidden.Hidden = true
	m, err := staticmodel.New([]staticmodel.Drawable{triangle("a"), hidden})
	if err != nil {
		t.Fatal(err)
	}

	flags := m.DrawableDynamicFlags()
	if !flags[0].Has(cubism.IsVisible|cubism.DidChangeMask) || flags[1].Has(cubism.IsVisible) {
		t.Fatalf("initial flags %08b %08b", flags[0], flags[1])
	}

	m.ResetDynamicFlags()
	if flags[0] != cubism.IsVisible || flags[1] != 0 {
		t.Fatalf("flags after reset %08b %08b", flags[0], flags[1])
	}

	m.SetOpacity(0, 1)
	m.SetRenderOrder(0, 0)
	m.SetVisible(1, false)
	if flags[0] != cubism.IsVisible || flags[1] != 0 {
		t.Errorf("no-op setters raised flags %08b %08b", flags[0], flags[1])
	}

	m.SetOpacity(0, 0.5)
	m.SetRenderOrder(0, 3)
	m.TranslateVertices(0, mgl32.Vec2{1, 1})
	m.SetVisible(1, true)
	want0 := cubism.IsVisible | cubism.OpacityDidChange | cubism.RenderOrderDidChange | cubism.VertexPositionsDidChange
	if flags[0] != want0 {
		t.Errorf("drawable 0 flags %08b; expected %08b", flags[0], want0)
	}
	if flags[1] != cubism.IsVisible|cubism.VisibilityDidChange {
		t.Errorf("drawable 1 flags %08b", flags[1])
	}
	if got := m.DrawableVertexPositions()[0][1]; got != (mgl32.Vec2{2, 1}) {
		t.Errorf("translated vertex %v", got)
	}

	if err := m.SetVertexPositions(0, []mgl32.Vec2{{0, 0}}); err == nil {
		t.Error("SetVertexPositions accepted a wrong vertex count")
	}
}

func TestDrawableIndex(t *testing.T) {
	m, err := staticmodel.New([]staticmodel.Drawable{triangle("a"), triangle("b")})
	if err != nil {
		t.Fatal(err)
	}
	if m.DrawableIndex("b") != 1 || m.DrawableIndex("missing") != -1 {
		t.Errorf("DrawableIndex(b)=%d DrawableIndex(missing)=%d", m.DrawableIndex("b"), m.DrawableIndex("missing"))
	}
}
