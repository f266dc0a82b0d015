package render

import (
	"github.com/mogaika/cubism_renderer/cubism"
)

// Span locates a run of vertices or indices inside a shared buffer.
type Span struct {
	BaseIndex int
	Count     int
}

// RenderDrawable is the per drawable state a renderer keeps.
// Spans and constant fields are fixed at construction, Opacity and
// IsVisible are refreshed by every Update.
type RenderDrawable struct {
	Opacity       float32
	TextureIndex  int32
	BlendMode     cubism.BlendMode
	IsDoubleSided bool
	IsVisible     bool

	Vertices Span
	Indices  Span
}

// indicesOffset is the byte offset of the drawable's first index.
func (d *RenderDrawable) indicesOffset() uintptr {
	return uintptr(d.Indices.BaseIndex * sizeofIndex)
}

// BuildLayout lays out every drawable of model back to back in drawable order.
func BuildLayout(model cubism.Model) []RenderDrawable {
	return BuildLayoutInto(make([]RenderDrawable, model.DrawableCount()), model)
}

// BuildLayoutInto is BuildLayout writing into dst, which must hold
// at least DrawableCount entries. Returns dst resliced to the count.
func BuildLayoutInto(dst []RenderDrawable, model cubism.Model) []RenderDrawable {
	count := model.DrawableCount()
	dst = dst[:count]

	vertexCounts := model.DrawableVertexCounts()
	indexCounts := model.DrawableIndexCounts()
	textureIndices := model.DrawableTextureIndices()
	constantFlags := model.DrawableConstantFlags()

	vertexBase, indexBase := 0, 0
	for d := range dst {
		dst[d] = RenderDrawable{
			TextureIndex:  textureIndices[d],
			BlendMode:     cubism.BlendModeOf(constantFlags[d]),
			IsDoubleSided: constantFlags[d].Has(cubism.IsDoubleSided),
			Vertices:      Span{BaseIndex: vertexBase, Count: int(vertexCounts[d])},
			Indices:       Span{BaseIndex: indexBase, Count: int(indexCounts[d])},
		}
		vertexBase += int(vertexCounts[d])
		indexBase += int(indexCounts[d])
	}
	return dst
}

// TotalCounts sums vertex and index counts over a layout.
func TotalCounts(drawables []RenderDrawable) (vertices, indices int) {
	for i := range drawables {
		vertices += drawables[i].Vertices.Count
		indices += drawables[i].Indices.Count
	}
	return
}
