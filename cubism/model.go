package cubism

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Model is the read-only view of an animated Cubism model.
// All slices are indexed by drawable index and stay valid until
// the model is reallocated. Renderers keep a reference to the model
// and read it on every Update and Draw.
type Model interface {
	DrawableCount() int
	DrawableIds() []string

	DrawableVertexCounts() []int32
	DrawableIndexCounts() []int32
	DrawableTextureIndices() []int32
	DrawableConstantFlags() []ConstantFlags

	DrawableDynamicFlags() []DynamicFlags
	DrawableVertexPositions() [][]mgl32.Vec2
	DrawableVertexUvs() [][]mgl32.Vec2
	// Indices are local to each drawable (0 refers to the drawable's first vertex).
	DrawableIndices() [][]uint16
	DrawableOpacities() []float32
	DrawableRenderOrders() []int32

	DrawableMaskCounts() []int32
	DrawableMasks() [][]int32
}

type ConstantFlags uint8

const (
	BlendAdditive ConstantFlags = 1 << iota
	BlendMultiplicative
	IsDoubleSided
)

func (f ConstantFlags) Has(mask ConstantFlags) bool { return f&mask == mask }

type DynamicFlags uint8

const (
	IsVisible DynamicFlags = 1 << iota
	VisibilityDidChange
	OpacityDidChange
	DrawOrderDidChange
	RenderOrderDidChange
	VertexPositionsDidChange
)

func (f DynamicFlags) Has(mask DynamicFlags) bool { return f&mask == mask }

// DidChangeMask covers every "did change" bit, i.e. everything but IsVisible.
const DidChangeMask = VisibilityDidChange | OpacityDidChange | DrawOrderDidChange |
	RenderOrderDidChange | VertexPositionsDidChange

type BlendMode uint8

const (
	NormalBlending BlendMode = iota
	AdditiveBlending
	MultiplicativeBlending
)

func (m BlendMode) String() string {
	switch m {
	case NormalBlending:
		return "normal"
	case AdditiveBlending:
		return "additive"
	case MultiplicativeBlending:
		return "multiplicative"
	default:
		return "unknown"
	}
}

// BlendModeOf resolves constant flags into a blend mode.
// The additive bit wins over the multiplicative one.
func BlendModeOf(f ConstantFlags) BlendMode {
	switch {
	case f.Has(BlendAdditive):
		return AdditiveBlending
	case f.Has(BlendMultiplicative):
		return MultiplicativeBlending
	default:
		return NormalBlending
	}
}
