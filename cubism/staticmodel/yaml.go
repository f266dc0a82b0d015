package staticmodel

import (
	"io"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/cubism_renderer/cubism"
)

type yamlDrawable struct {
	Id          string       `yaml:"id"`
	Texture     int32        `yaml:"texture"`
	Blend       string       `yaml:"blend,omitempty"`
	DoubleSided bool         `yaml:"double_sided,omitempty"`
	Visible     *bool        `yaml:"visible,omitempty"`
	Opacity     *float32     `yaml:"opacity,omitempty"`
	RenderOrder int32        `yaml:"render_order"`
	Positions   [][2]float32 `yaml:"positions,flow"`
	Uvs         [][2]float32 `yaml:"uvs,flow"`
	Indices     []uint16     `yaml:"indices,flow"`
	Masks       []string     `yaml:"masks,omitempty,flow"`
}

type yamlModel struct {
	Drawables []yamlDrawable `yaml:"drawables"`
}

func parseBlend(s string) (cubism.ConstantFlags, error) {
	switch strings.ToLower(s) {
	case "", "normal":
		return 0, nil
	case "additive", "add":
		return cubism.BlendAdditive, nil
	case "multiplicative", "multiply", "mul":
		return cubism.BlendMultiplicative, nil
	default:
		return 0, errors.Errorf("unknown blend mode %q", s)
	}
}

func toVec2s(src [][2]float32) []mgl32.Vec2 {
	dst := make([]mgl32.Vec2, len(src))
	for i := range src {
		dst[i] = mgl32.Vec2(src[i])
	}
	return dst
}

func fromVec2s(src []mgl32.Vec2) [][2]float32 {
	dst := make([][2]float32, len(src))
	for i := range src {
		dst[i] = [2]float32(src[i])
	}
	return dst
}

// DecodeYAML reads a model description. Masks reference other drawables by id.
func DecodeYAML(r io.Reader) (*Model, error) {
	var ym yamlModel
	if err := yaml.NewDecoder(r).Decode(&ym); err != nil {
		return nil, errors.Wrapf(err, "Failed to decode model")
	}

	idToIndex := make(map[string]int32, len(ym.Drawables))
	for d, yd := range ym.Drawables {
		if yd.Id == "" {
			return nil, errors.Errorf("drawable %d has no id", d)
		}
		if _, exists := idToIndex[yd.Id]; exists {
			return nil, errors.Errorf("duplicate drawable id %q", yd.Id)
		}
		idToIndex[yd.Id] = int32(d)
	}

	drawables := make([]Drawable, len(ym.Drawables))
	for d, yd := range ym.Drawables {
		flags, err := parseBlend(yd.Blend)
		if err != nil {
			return nil, errors.Wrapf(err, "drawable %q", yd.Id)
		}
		if yd.DoubleSided {
			flags |= cubism.IsDoubleSided
		}

		opacity := float32(1)
		if yd.Opacity != nil {
			opacity = *yd.Opacity
		}

		masks := make([]int32, 0, len(yd.Masks))
		for _, maskId := range yd.Masks {
			mask, ok := idToIndex[maskId]
			if !ok {
				return nil, errors.Errorf("drawable %q: unknown mask %q", yd.Id, maskId)
			}
			masks = append(masks, mask)
		}

		uvs := yd.Uvs
		if uvs == nil {
			uvs = make([][2]float32, len(yd.Positions))
		}

		drawables[d] = Drawable{
			Id:           yd.Id,
			TextureIndex: yd.Texture,
			Flags:        flags,
			Positions:    toVec2s(yd.Positions),
			Uvs:          toVec2s(uvs),
			Indices:      yd.Indices,
			Opacity:      opacity,
			RenderOrder:  yd.RenderOrder,
			Hidden:       yd.Visible != nil && !*yd.Visible,
			Masks:        masks,
		}
	}

	return New(drawables)
}

func LoadYAML(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open %q", path)
	}
	defer f.Close()

	m, err := DecodeYAML(f)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to load %q", path)
	}
	return m, nil
}

// EncodeYAML writes the current state of m in the format DecodeYAML reads.
func EncodeYAML(w io.Writer, m *Model) error {
	ym := yamlModel{Drawables: make([]yamlDrawable, m.DrawableCount())}
	for d := range ym.Drawables {
		src := m.Drawable(d)

		yd := yamlDrawable{
			Id:          src.Id,
			Texture:     src.TextureIndex,
			DoubleSided: src.Flags.Has(cubism.IsDoubleSided),
			RenderOrder: src.RenderOrder,
			Positions:   fromVec2s(src.Positions),
			Uvs:         fromVec2s(src.Uvs),
			Indices:     src.Indices,
		}
		if mode := cubism.BlendModeOf(src.Flags); mode != cubism.NormalBlending {
			yd.Blend = mode.String()
		}
		if src.Hidden {
			visible := false
			yd.Visible = &visible
		}
		if src.Opacity != 1 {
			opacity := src.Opacity
			yd.Opacity = &opacity
		}
		for _, mask := range src.Masks {
			yd.Masks = append(yd.Masks, m.ids[mask])
		}
		ym.Drawables[d] = yd
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&ym); err != nil {
		return errors.Wrapf(err, "Failed to encode model")
	}
	return enc.Close()
}
