package staticmodel

import (
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/mogaika/cubism_renderer/cubism"
)

// Drawable state without a glTF equivalent travels in node extras.
type gltfExtras struct {
	RenderOrder *int32   `json:"cubismRenderOrder,omitempty"`
	Opacity     *float32 `json:"cubismOpacity,omitempty"`
	Blend       string   `json:"cubismBlend,omitempty"`
	DoubleSided bool     `json:"cubismDoubleSided,omitempty"`
	Hidden      bool     `json:"cubismHidden,omitempty"`
	Masks       []string `json:"cubismMasks,omitempty"`
}

func nodeExtras(node *gltf.Node) (*gltfExtras, error) {
	extras := &gltfExtras{}
	if node.Extras == nil {
		return extras, nil
	}
	raw, err := json.Marshal(node.Extras)
	if err != nil {
		return nil, errors.Wrapf(err, "node %q extras", node.Name)
	}
	if err := json.Unmarshal(raw, extras); err != nil {
		return nil, errors.Wrapf(err, "node %q extras", node.Name)
	}
	return extras, nil
}

// accessor checks that accessor idx exists and fits its buffer view,
// so readers never allocate from an untrusted count.
func accessor(doc *gltf.Document, idx uint32) (*gltf.Accessor, error) {
	if int(idx) >= len(doc.Accessors) {
		return nil, errors.Errorf("accessor %d out of range", idx)
	}
	acr := doc.Accessors[idx]
	if acr.BufferView == nil {
		return nil, errors.Errorf("accessor %d has no buffer view", idx)
	}
	if int(*acr.BufferView) >= len(doc.BufferViews) {
		return nil, errors.Errorf("accessor %d: buffer view %d out of range", idx, *acr.BufferView)
	}
	if acr.Count == 0 {
		return acr, nil
	}
	view := doc.BufferViews[*acr.BufferView]
	elemSize := uint64(gltf.SizeOfElement(acr.ComponentType, acr.Type))
	stride := uint64(view.ByteStride)
	if stride == 0 {
		stride = elemSize
	}
	if uint64(acr.ByteOffset)+uint64(acr.Count-1)*stride+elemSize > uint64(view.ByteLength) {
		return nil, errors.Errorf("accessor %d overruns its buffer view", idx)
	}
	return acr, nil
}

func readPositions(doc *gltf.Document, idx uint32) ([]mgl32.Vec2, error) {
	acr, err := accessor(doc, idx)
	if err != nil {
		return nil, err
	}
	positions, err := modeler.ReadPosition(doc, acr, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "accessor %d", idx)
	}
	result := make([]mgl32.Vec2, len(positions))
	for i, p := range positions {
		result[i] = mgl32.Vec2{p[0], p[1]}
	}
	return result, nil
}

func readUvs(doc *gltf.Document, idx uint32) ([]mgl32.Vec2, error) {
	acr, err := accessor(doc, idx)
	if err != nil {
		return nil, err
	}
	uvs, err := modeler.ReadTextureCoord(doc, acr, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "accessor %d", idx)
	}
	result := make([]mgl32.Vec2, len(uvs))
	for i, uv := range uvs {
		result[i] = mgl32.Vec2(uv)
	}
	return result, nil
}

func readIndices(doc *gltf.Document, idx uint32) ([]uint16, error) {
	acr, err := accessor(doc, idx)
	if err != nil {
		return nil, err
	}
	indices, err := modeler.ReadIndices(doc, acr, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "accessor %d", idx)
	}
	result := make([]uint16, len(indices))
	for i, v := range indices {
		if v > 0xffff {
			return nil, errors.Errorf("accessor %d: index %d does not fit 16 bits", idx, v)
		}
		result[i] = uint16(v)
	}
	return result, nil
}

// FromGLTF turns every triangle primitive of every node into a drawable, in node order.
// Material index becomes texture index; z coordinates are dropped.
func FromGLTF(doc *gltf.Document) (*Model, error) {
	type pending struct {
		drawable Drawable
		masks    []string
	}
	var list []pending

	for iNode, node := range doc.Nodes {
		if node.Mesh == nil {
			continue
		}
		if int(*node.Mesh) >= len(doc.Meshes) {
			return nil, errors.Errorf("node %d: mesh %d out of range", iNode, *node.Mesh)
		}
		mesh := doc.Meshes[*node.Mesh]

		extras, err := nodeExtras(node)
		if err != nil {
			return nil, err
		}

		for iPrim, prim := range mesh.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				return nil, errors.Errorf("node %d primitive %d: only triangle lists are supported", iNode, iPrim)
			}

			id := node.Name
			if id == "" {
				id = mesh.Name
			}
			if id == "" {
				id = fmt.Sprintf("node%d", iNode)
			}
			if len(mesh.Primitives) > 1 {
				id = fmt.Sprintf("%s_%d", id, iPrim)
			}

			posIdx, ok := prim.Attributes["POSITION"]
			if !ok {
				return nil, errors.Errorf("drawable %q has no POSITION", id)
			}
			positions, err := readPositions(doc, posIdx)
			if err != nil {
				return nil, errors.Wrapf(err, "drawable %q positions", id)
			}

			uvs := make([]mgl32.Vec2, len(positions))
			if uvIdx, ok := prim.Attributes["TEXCOORD_0"]; ok {
				if uvs, err = readUvs(doc, uvIdx); err != nil {
					return nil, errors.Wrapf(err, "drawable %q uvs", id)
				}
			}

			var indices []uint16
			if prim.Indices != nil {
				if indices, err = readIndices(doc, *prim.Indices); err != nil {
					return nil, errors.Wrapf(err, "drawable %q indices", id)
				}
			} else {
				indices = make([]uint16, len(positions))
				for i := range indices {
					indices[i] = uint16(i)
				}
			}

			flags, err := parseBlend(extras.Blend)
			if err != nil {
				return nil, errors.Wrapf(err, "drawable %q", id)
			}
			var texture int32
			if prim.Material != nil {
				texture = int32(*prim.Material)
				if int(*prim.Material) < len(doc.Materials) && doc.Materials[*prim.Material].DoubleSided {
					flags |= cubism.IsDoubleSided
				}
			}
			if extras.DoubleSided {
				flags |= cubism.IsDoubleSided
			}

			order := int32(len(list))
			if extras.RenderOrder != nil {
				order = *extras.RenderOrder
			}
			opacity := float32(1)
			if extras.Opacity != nil {
				opacity = *extras.Opacity
			}

			list = append(list, pending{
				drawable: Drawable{
					Id:           id,
					TextureIndex: texture,
					Flags:        flags,
					Positions:    positions,
					Uvs:          uvs,
					Indices:      indices,
					Opacity:      opacity,
					RenderOrder:  order,
					Hidden:       extras.Hidden,
				},
				masks: extras.Masks,
			})
		}
	}

	idToIndex := make(map[string]int32, len(list))
	for i, p := range list {
		idToIndex[p.drawable.Id] = int32(i)
	}

	drawables := make([]Drawable, len(list))
	for i, p := range list {
		drawables[i] = p.drawable
		for _, maskId := range p.masks {
			mask, ok := idToIndex[maskId]
			if !ok {
				return nil, errors.Errorf("drawable %q: unknown mask %q", p.drawable.Id, maskId)
			}
			drawables[i].Masks = append(drawables[i].Masks, mask)
		}
	}

	return New(drawables)
}

func LoadGLTF(path string) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open %q", path)
	}
	m, err := FromGLTF(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to load %q", path)
	}
	return m, nil
}

// ToGLTF exports the current pose of m, one node and mesh per drawable.
func ToGLTF(m *Model) *gltf.Document {
	doc := gltf.NewDocument()

	var textureCount int32
	for _, texture := range m.textureIndices {
		if texture+1 > textureCount {
			textureCount = texture + 1
		}
	}
	for i := int32(0); i < textureCount; i++ {
		doc.Materials = append(doc.Materials, &gltf.Material{
			Name: fmt.Sprintf("texture%d", i),
		})
	}

	for d := 0; d < m.DrawableCount(); d++ {
		src := m.Drawable(d)

		positions := make([][3]float32, len(src.Positions))
		for i, p := range src.Positions {
			positions[i] = [3]float32{p[0], p[1], 0}
		}
		indicesAccessor := modeler.WriteIndices(doc, src.Indices)

		attributes := map[string]uint32{
			"POSITION":   modeler.WritePosition(doc, positions),
			"TEXCOORD_0": modeler.WriteTextureCoord(doc, fromVec2s(src.Uvs)),
		}

		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name: src.Id,
			Primitives: []*gltf.Primitive{
				&gltf.Primitive{
					Indices:    &indicesAccessor,
					Attributes: attributes,
					Material:   gltf.Index(uint32(src.TextureIndex)),
				},
			},
		})

		order := src.RenderOrder
		opacity := src.Opacity
		extras := &gltfExtras{
			RenderOrder: &order,
			Opacity:     &opacity,
			DoubleSided: src.Flags.Has(cubism.IsDoubleSided),
			Hidden:      src.Hidden,
		}
		if mode := cubism.BlendModeOf(src.Flags); mode != cubism.NormalBlending {
			extras.Blend = mode.String()
		}
		for _, mask := range src.Masks {
			extras.Masks = append(extras.Masks, m.ids[mask])
		}

		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)))
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name:   src.Id,
			Mesh:   gltf.Index(uint32(len(doc.Meshes) - 1)),
			Extras: extras,
		})
	}

	return doc
}
