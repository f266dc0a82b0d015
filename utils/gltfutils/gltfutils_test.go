package gltfutils_test

import (
	"bytes"
	"testing"

	"github.com/mogaika/cubism_renderer/cubism/staticmodel"
	"github.com/mogaika/cubism_renderer/utils/gltfutils"
)

func TestEncodeDecode(t *testing.T) {
	m := staticmodel.Random(3, staticmodel.RandomOptions{Drawables: 5, Textures: 2})

	for _, binary := range []bool{true, false} {
		var buf bytes.Buffer
		if err := gltfutils.Encode(&buf, staticmodel.ToGLTF(m), binary); err != nil {
			t.Fatalf("binary=%v: %v", binary, err)
		}
		if isGlb := bytes.HasPrefix(buf.Bytes(), []byte("glTF")); isGlb != binary {
			t.Errorf("binary=%v produced glb=%v", binary, isGlb)
		}

		doc, err := gltfutils.Decode(&buf)
		if err != nil {
			t.Fatalf("binary=%v: %v", binary, err)
		}
		again, err := staticmodel.FromGLTF(doc)
		if err != nil {
			t.Fatalf("binary=%v: %v", binary, err)
		}
		if again.DrawableCount() != 5 || again.DrawableIds()[4] != m.DrawableIds()[4] {
			t.Errorf("binary=%v: decoded %v", binary, again.DrawableIds())
		}
	}
}
