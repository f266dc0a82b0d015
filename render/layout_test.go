package render_test

import (
	"testing"

	"github.com/mogaika/cubism_renderer/cubism"
	"github.com/mogaika/cubism_renderer/render"
)

func TestBuildLayout(t *testing.T) {
	a := fan("a", 3)
	a.Flags = cubism.BlendAdditive | cubism.BlendMultiplicative
	b := fan("b", 5)
	b.Flags = cubism.BlendMultiplicative | cubism.IsDoubleSided
	b.TextureIndex = 2
	c := fan("c", 4)
	m := mustModel(t, a, b, c)

	var tests = []struct {
		blend       cubism.BlendMode
		doubleSided bool
		texture     int32
		vertices    render.Span
		indices     render.Span
	}{
		{cubism.AdditiveBlending, false, 0, render.Span{BaseIndex: 0, Count: 4}, render.Span{BaseIndex: 0, Count: 9}},
		{cubism.MultiplicativeBlending, true, 2, render.Span{BaseIndex: 4, Count: 6}, render.Span{BaseIndex: 9, Count: 15}},
		{cubism.NormalBlending, false, 0, render.Span{BaseIndex: 10, Count: 5}, render.Span{BaseIndex: 24, Count: 12}},
	}

	layout := render.BuildLayout(m)
	if len(layout) != len(tests) {
		t.Fatalf("layout has %d drawables", len(layout))
	}
	for d, test := range tests {
		rd := layout[d]
		if rd.BlendMode != test.blend || rd.IsDoubleSided != test.doubleSided || rd.TextureIndex != test.texture {
			t.Errorf("drawable %d: blend %v double-sided %v texture %d", d, rd.BlendMode, rd.IsDoubleSided, rd.TextureIndex)
		}
		if rd.Vertices != test.vertices || rd.Indices != test.indices {
			t.Errorf("drawable %d: vertices %+v indices %+v; expected %+v %+v", d, rd.Vertices, rd.Indices, test.vertices, test.indices)
		}
	}

	if vertices, indices := render.TotalCounts(layout); vertices != 15 || indices != 36 {
		t.Errorf("TotalCounts = %d, %d; expected 15, 36", vertices, indices)
	}
}

func TestResortTieBreak(t *testing.T) {
	m := mustModel(t, quad("a", 2), quad("b", 1), quad("c", 2), quad("d", 1), quad("e", 0))
	sorted := render.BuildSortOrder(m)
	for i, sd := range sorted {
		if sd.DrawableIndex != i {
			t.Fatalf("BuildSortOrder is not identity at %d: %v", i, sd)
		}
	}

	// shuffle first so the result cannot come from the previous order
	sorted[0], sorted[4] = sorted[4], sorted[0]
	sorted[1], sorted[2] = sorted[2], sorted[1]

	render.Resort(sorted, m)
	want := []int{4, 1, 3, 0, 2}
	for i, sd := range sorted {
		if sd.DrawableIndex != want[i] {
			t.Fatalf("Resort order %v; expected drawables %v", sorted, want)
		}
		if sd.RenderOrder != m.DrawableRenderOrders()[sd.DrawableIndex] {
			t.Errorf("entry %d has stale render order %d", i, sd.RenderOrder)
		}
	}
}
