package staticmodel

import (
	"math"
	"math/rand"

	"github.com/Pallinder/go-randomdata"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/cubism_renderer/cubism"
)

// uniqueId draws randomdata silly names until one is not in used.
func uniqueId(used map[string]struct{}) string {
	for {
		id := randomdata.SillyName()
		if _, exists := used[id]; !exists {
			used[id] = struct{}{}
			return id
		}
	}
}

type RandomOptions struct {
	Drawables int
	Textures  int
	// MaskChance is the probability in percent that a drawable is clipped by earlier drawables.
	MaskChance int
	// OrderSpread bounds render orders to [0, OrderSpread); small spreads produce ties.
	OrderSpread int
}

// Random builds a reproducible model: the same seed gives the same drawables.
// Each drawable is a triangle fan around a random centre.
func Random(seed int64, opts RandomOptions) *Model {
	randomdata.CustomRand(rand.New(rand.NewSource(seed)))

	if opts.Textures <= 0 {
		opts.Textures = 1
	}
	if opts.OrderSpread <= 0 {
		opts.OrderSpread = opts.Drawables*10 + 1
	}

	used := make(map[string]struct{}, opts.Drawables)
	drawables := make([]Drawable, opts.Drawables)
	for d := range drawables {
		id := uniqueId(used)

		rim := randomdata.Number(3, 9)
		center := mgl32.Vec2{
			float32(randomdata.Decimal(-1, 1)),
			float32(randomdata.Decimal(-1, 1)),
		}
		radius := float32(randomdata.Number(5, 30)) / 100

		positions := make([]mgl32.Vec2, rim+1)
		uvs := make([]mgl32.Vec2, rim+1)
		positions[0] = center
		uvs[0] = mgl32.Vec2{0.5, 0.5}
		for i := 0; i < rim; i++ {
			angle := 2 * math.Pi * float64(i) / float64(rim)
			dir := mgl32.Vec2{float32(math.Cos(angle)), float32(math.Sin(angle))}
			positions[i+1] = center.Add(dir.Mul(radius))
			uvs[i+1] = mgl32.Vec2{0.5, 0.5}.Add(dir.Mul(0.5))
		}
		indices := make([]uint16, 0, rim*3)
		for i := 0; i < rim; i++ {
			indices = append(indices, 0, uint16(i+1), uint16((i+1)%rim+1))
		}

		var flags cubism.ConstantFlags
		switch randomdata.Number(0, 6) {
		case 0:
			flags |= cubism.BlendAdditive
		case 1:
			flags |= cubism.BlendMultiplicative
		}
		if randomdata.Boolean() {
			flags |= cubism.IsDoubleSided
		}

		var masks []int32
		if d > 0 && opts.MaskChance > 0 && randomdata.Number(0, 100) < opts.MaskChance {
			for i := randomdata.Number(1, 3); i > 0; i-- {
				masks = append(masks, int32(randomdata.Number(0, d)))
			}
		}

		drawables[d] = Drawable{
			Id:           id,
			TextureIndex: int32(randomdata.Number(0, opts.Textures)),
			Flags:        flags,
			Positions:    positions,
			Uvs:          uvs,
			Indices:      indices,
			Opacity:      float32(randomdata.Number(1, 11)) / 10,
			RenderOrder:  int32(randomdata.Number(0, opts.OrderSpread)),
			Hidden:       randomdata.Number(0, 10) == 0,
			Masks:        masks,
		}
	}

	m, err := New(drawables)
	if err != nil {
		// generated data always satisfies New
		panic(err)
	}
	return m
}
