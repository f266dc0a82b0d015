package staticmodel_test

import (
	"reflect"
	"testing"

	"github.com/mogaika/cubism_renderer/cubism/staticmodel"
)

func TestRandomIsReproducible(t *testing.T) {
	opts := staticmodel.RandomOptions{Drawables: 20, Textures: 4, MaskChance: 30}
	a := staticmodel.Random(1234, opts)
	b := staticmodel.Random(1234, opts)

	if a.DrawableCount() != 20 {
		t.Fatalf("DrawableCount() = %d", a.DrawableCount())
	}
	seen := make(map[string]bool)
	for d := 0; d < a.DrawableCount(); d++ {
		if !reflect.DeepEqual(a.Drawable(d), b.Drawable(d)) {
			t.Fatalf("drawable %d differs between runs with the same seed", d)
		}
		src := a.Drawable(d)
		if seen[src.Id] {
			t.Errorf("duplicate id %q", src.Id)
		}
		seen[src.Id] = true
		if src.TextureIndex >= 4 {
			t.Errorf("drawable %d texture %d out of range", d, src.TextureIndex)
		}
		for _, mask := range src.Masks {
			if int(mask) >= d {
				t.Errorf("drawable %d is masked by later drawable %d", d, mask)
			}
		}
	}
}

func TestRandomIdsUnique(t *testing.T) {
	m := staticmodel.Random(7, staticmodel.RandomOptions{Drawables: 300})
	seen := make(map[string]bool)
	for _, id := range m.DrawableIds() {
		if seen[id] {
			t.Fatalf("id %q returned twice", id)
		}
		seen[id] = true
	}
	if len(seen) != 300 {
		t.Errorf("%d ids; expected 300", len(seen))
	}
}
