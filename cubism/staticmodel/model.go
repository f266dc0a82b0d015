// Package staticmodel implements cubism.Model on plain Go slices.
// It stands in for the animation engine in tools and tests: callers
// mutate drawables through setters, which raise the same dynamic flags
// the engine would, and call ResetDynamicFlags between frames.
package staticmodel

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/cubism_renderer/cubism"
)

// Drawable describes a single drawable before it becomes part of a Model.
type Drawable struct {
	Id           string
	TextureIndex int32
	Flags        cubism.ConstantFlags
	Positions    []mgl32.Vec2
	Uvs          []mgl32.Vec2
	Indices      []uint16
	Opacity      float32
	RenderOrder  int32
	Hidden       bool
	Masks        []int32
}

type Model struct {
	ids            []string
	vertexCounts   []int32
	indexCounts    []int32
	textureIndices []int32
	constantFlags  []cubism.ConstantFlags
	dynamicFlags   []cubism.DynamicFlags
	positions      [][]mgl32.Vec2
	uvs            [][]mgl32.Vec2
	indices        [][]uint16
	opacities      []float32
	renderOrders   []int32
	maskCounts     []int32
	masks          [][]int32
}

var _ cubism.Model = (*Model)(nil)

// New validates drawables and builds a model from them. As with a freshly
// updated engine model every "did change" flag starts raised.
func New(drawables []Drawable) (*Model, error) {
	n := len(drawables)
	m := &Model{
		ids:            make([]string, n),
		vertexCounts:   make([]int32, n),
		indexCounts:    make([]int32, n),
		textureIndices: make([]int32, n),
		constantFlags:  make([]cubism.ConstantFlags, n),
		dynamicFlags:   make([]cubism.DynamicFlags, n),
		positions:      make([][]mgl32.Vec2, n),
		uvs:            make([][]mgl32.Vec2, n),
		indices:        make([][]uint16, n),
		opacities:      make([]float32, n),
		renderOrders:   make([]int32, n),
		maskCounts:     make([]int32, n),
		masks:          make([][]int32, n),
	}

	for d := range drawables {
		src := &drawables[d]
		if len(src.Uvs) != len(src.Positions) {
			return nil, errors.Errorf("drawable %d (%q): %d uvs for %d positions", d, src.Id, len(src.Uvs), len(src.Positions))
		}
		if len(src.Positions) > 0xffff {
			return nil, errors.Errorf("drawable %d (%q): too many vertices %d", d, src.Id, len(src.Positions))
		}
		if len(src.Indices)%3 != 0 {
			return nil, errors.Errorf("drawable %d (%q): index count %d is not a triangle list", d, src.Id, len(src.Indices))
		}
		for _, idx := range src.Indices {
			if int(idx) >= len(src.Positions) {
				return nil, errors.Errorf("drawable %d (%q): index %d out of %d vertices", d, src.Id, idx, len(src.Positions))
			}
		}
		for _, mask := range src.Masks {
			if mask < 0 || int(mask) >= n {
				return nil, errors.Errorf("drawable %d (%q): mask %d out of range", d, src.Id, mask)
			}
		}
		if src.TextureIndex < 0 {
			return nil, errors.Errorf("drawable %d (%q): negative texture index", d, src.Id)
		}

		m.ids[d] = src.Id
		m.vertexCounts[d] = int32(len(src.Positions))
		m.indexCounts[d] = int32(len(src.Indices))
		m.textureIndices[d] = src.TextureIndex
		m.constantFlags[d] = src.Flags
		m.positions[d] = append([]mgl32.Vec2(nil), src.Positions...)
		m.uvs[d] = append([]mgl32.Vec2(nil), src.Uvs...)
		m.indices[d] = append([]uint16(nil), src.Indices...)
		m.opacities[d] = src.Opacity
		m.renderOrders[d] = src.RenderOrder
		m.maskCounts[d] = int32(len(src.Masks))
		m.masks[d] = append([]int32(nil), src.Masks...)

		m.dynamicFlags[d] = cubism.DidChangeMask
		if !src.Hidden {
			m.dynamicFlags[d] |= cubism.IsVisible
		}
	}

	return m, nil
}

func (m *Model) DrawableCount() int                            { return len(m.ids) }
func (m *Model) DrawableIds() []string                         { return m.ids }
func (m *Model) DrawableVertexCounts() []int32                 { return m.vertexCounts }
func (m *Model) DrawableIndexCounts() []int32                  { return m.indexCounts }
func (m *Model) DrawableTextureIndices() []int32               { return m.textureIndices }
func (m *Model) DrawableConstantFlags() []cubism.ConstantFlags { return m.constantFlags }
func (m *Model) DrawableDynamicFlags() []cubism.DynamicFlags   { return m.dynamicFlags }
func (m *Model) DrawableVertexPositions() [][]mgl32.Vec2       { return m.positions }
func (m *Model) DrawableVertexUvs() [][]mgl32.Vec2             { return m.uvs }
func (m *Model) DrawableIndices() [][]uint16                   { return m.indices }
func (m *Model) DrawableOpacities() []float32                  { return m.opacities }
func (m *Model) DrawableRenderOrders() []int32                 { return m.renderOrders }
func (m *Model) DrawableMaskCounts() []int32                   { return m.maskCounts }
func (m *Model) DrawableMasks() [][]int32                      { return m.masks }

// Drawable returns a copy of drawable d in its current state.
func (m *Model) Drawable(d int) Drawable {
	return Drawable{
		Id:           m.ids[d],
		TextureIndex: m.textureIndices[d],
		Flags:        m.constantFlags[d],
		Positions:    append([]mgl32.Vec2(nil), m.positions[d]...),
		Uvs:          append([]mgl32.Vec2(nil), m.uvs[d]...),
		Indices:      append([]uint16(nil), m.indices[d]...),
		Opacity:      m.opacities[d],
		RenderOrder:  m.renderOrders[d],
		Hidden:       !m.dynamicFlags[d].Has(cubism.IsVisible),
		Masks:        append([]int32(nil), m.masks[d]...),
	}
}

// DrawableIndex looks a drawable up by id, -1 if absent.
func (m *Model) DrawableIndex(id string) int {
	for d, other := range m.ids {
		if other == id {
			return d
		}
	}
	return -1
}

func (m *Model) SetOpacity(d int, opacity float32) {
	if m.opacities[d] != opacity {
		m.opacities[d] = opacity
		m.dynamicFlags[d] |= cubism.OpacityDidChange
	}
}

func (m *Model) SetVisible(d int, visible bool) {
	if m.dynamicFlags[d].Has(cubism.IsVisible) == visible {
		return
	}
	if visible {
		m.dynamicFlags[d] |= cubism.IsVisible
	} else {
		m.dynamicFlags[d] &^= cubism.IsVisible
	}
	m.dynamicFlags[d] |= cubism.VisibilityDidChange
}

func (m *Model) SetRenderOrder(d int, order int32) {
	if m.renderOrders[d] != order {
		m.renderOrders[d] = order
		m.dynamicFlags[d] |= cubism.RenderOrderDidChange
	}
}

// SetVertexPositions overwrites the pose of drawable d. The vertex count is fixed.
func (m *Model) SetVertexPositions(d int, positions []mgl32.Vec2) error {
	if len(positions) != len(m.positions[d]) {
		return errors.Errorf("drawable %d (%q): %d positions for %d vertices", d, m.ids[d], len(positions), len(m.positions[d]))
	}
	copy(m.positions[d], positions)
	m.dynamicFlags[d] |= cubism.VertexPositionsDidChange
	return nil
}

// TranslateVertices moves every vertex of drawable d by offset.
func (m *Model) TranslateVertices(d int, offset mgl32.Vec2) {
	for i := range m.positions[d] {
		m.positions[d][i] = m.positions[d][i].Add(offset)
	}
	m.dynamicFlags[d] |= cubism.VertexPositionsDidChange
}

// ResetDynamicFlags clears every "did change" bit, keeping visibility.
func (m *Model) ResetDynamicFlags() {
	for d := range m.dynamicFlags {
		m.dynamicFlags[d] &^= cubism.DidChangeMask
	}
}
