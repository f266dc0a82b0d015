package render

import (
	"unsafe"

	"github.com/pkg/errors"

	"github.com/mogaika/cubism_renderer/cubism"
	"github.com/mogaika/cubism_renderer/gfx"
)

// maxVertexCount is the vertex total 16-bit rebiased indices can address.
const maxVertexCount = 0x10000

const indexScratchLength = 128

type Buffers struct {
	Positions Buffer
	Uvs       Buffer
	Indices   Buffer
}

// Renderer keeps a model's geometry on the GPU and draws it.
// The model is referenced, not copied: reallocating it invalidates the renderer.
type Renderer struct {
	res   *Resources
	dev   gfx.Device
	model cubism.Model
	block *Block

	drawables []RenderDrawable
	sorted    []SortableDrawable

	buffers     Buffers
	vertexArray uint32

	positionLocation uint32
	uvLocation       uint32

	barebone bool
	released bool

	stats DrawStats
}

// SizeOf is the storage a renderer for model needs: a fixed header plus
// one RenderDrawable and one SortableDrawable per drawable.
func SizeOf(model cubism.Model) int {
	if model == nil {
		return 0
	}
	perDrawable := int(unsafe.Sizeof(RenderDrawable{}) + unsafe.Sizeof(SortableDrawable{}))
	return int(unsafe.Sizeof(Renderer{})) + model.DrawableCount()*perDrawable
}

// Block is caller owned storage a renderer lays its drawable tables in.
// A block serves one live renderer at a time and can be reused after Release.
type Block struct {
	size      int
	drawables []RenderDrawable
	sorted    []SortableDrawable
	inUse     bool
}

func NewBlock(size int) *Block {
	return &Block{size: size}
}

// NewBlockFor returns a block of exactly SizeOf(model) bytes.
func NewBlockFor(model cubism.Model) *Block {
	return NewBlock(SizeOf(model))
}

func (b *Block) Size() int   { return b.size }
func (b *Block) InUse() bool { return b.inUse }

func (b *Block) carve(count int) ([]RenderDrawable, []SortableDrawable) {
	if cap(b.drawables) < count {
		b.drawables = make([]RenderDrawable, count)
		b.sorted = make([]SortableDrawable, count)
	}
	return b.drawables[:count], b.sorted[:count]
}

func (r *Resources) validate(model cubism.Model, block *Block) error {
	if model == nil {
		return r.fail(ErrInvalidModel)
	}
	if block == nil {
		return r.fail(ErrInvalidBlock)
	}
	if block.inUse {
		return r.fail(errors.Wrap(ErrInvalidBlock, "block is used by a live renderer"))
	}
	if need := SizeOf(model); block.Size() < need {
		return r.fail(errors.Wrapf(ErrBlockTooSmall, "%d bytes given, %d required", block.Size(), need))
	}

	total := 0
	for _, count := range model.DrawableVertexCounts() {
		total += int(count)
	}
	if total > maxVertexCount {
		return r.fail(errors.Wrapf(ErrInvalidModel, "%d vertices do not fit 16-bit indices", total))
	}
	return nil
}

// NewRenderer builds a renderer able to Draw. It holds a reference to the
// shared programs and mask target until Release.
func (r *Resources) NewRenderer(model cubism.Model, block *Block) (*Renderer, error) {
	if err := r.validate(model, block); err != nil {
		return nil, err
	}
	if err := r.RequirePrograms(); err != nil {
		return nil, r.fail(errors.Wrap(err, "Failed to require programs"))
	}
	if err := r.RequireMaskbuffer(); err != nil {
		r.UnrequirePrograms()
		return nil, r.fail(errors.Wrap(err, "Failed to require mask buffer"))
	}

	rn := r.makeRenderer(model, block, VertexPositionLocation, VertexUvLocation)
	rn.barebone = false
	return rn, nil
}

// NewBareboneRenderer builds a renderer that only manages buffers and
// render order. The caller binds its own program; the vertex array
// feeds positions and uvs to the given attribute locations.
func (r *Resources) NewBareboneRenderer(model cubism.Model, block *Block, positionLocation, uvLocation uint32) (*Renderer, error) {
	if err := r.validate(model, block); err != nil {
		return nil, err
	}
	return r.makeRenderer(model, block, positionLocation, uvLocation), nil
}

func (r *Resources) makeRenderer(model cubism.Model, block *Block, positionLocation, uvLocation uint32) *Renderer {
	drawables, sorted := block.carve(model.DrawableCount())
	block.inUse = true

	rn := &Renderer{
		res:              r,
		dev:              r.dev,
		model:            model,
		block:            block,
		drawables:        BuildLayoutInto(drawables, model),
		sorted:           BuildSortOrderInto(sorted, model),
		positionLocation: positionLocation,
		uvLocation:       uvLocation,
		barebone:         true,
	}

	rn.initializeBuffers()
	if r.opts.Profile == ProfileGL33 {
		rn.initializeVertexArray()
	}
	rn.Update()
	return rn
}

func (rn *Renderer) initializeBuffers() {
	totalVertices, totalIndices := TotalCounts(rn.drawables)

	rn.buffers.Positions = MakeDynamicBuffer(rn.dev, gfx.ARRAY_BUFFER, totalVertices*sizeofVertex)
	rn.buffers.Uvs = MakeStaticBuffer(rn.dev, gfx.ARRAY_BUFFER, totalVertices*sizeofVertex)
	rn.buffers.Indices = MakeStaticBuffer(rn.dev, gfx.ELEMENT_ARRAY_BUFFER, totalIndices*sizeofIndex)

	uvs := rn.model.DrawableVertexUvs()
	rn.buffers.Uvs.Bind()
	for d := range rn.drawables {
		v := rn.drawables[d].Vertices
		rn.buffers.Uvs.Write(v.BaseIndex*sizeofVertex, vec2Bytes(uvs[d][:v.Count]))
	}
	rn.buffers.Uvs.Unbind()

	// All drawables share one vertex buffer, so local indices are shifted
	// by the drawable's vertex base before upload.
	var scratch [indexScratchLength]uint16
	indices := rn.model.DrawableIndices()
	rn.buffers.Indices.Bind()
	for d := range rn.drawables {
		rd := &rn.drawables[d]
		local := indices[d][:rd.Indices.Count]
		base := uint16(rd.Vertices.BaseIndex)
		for written := 0; written < len(local); {
			n := copy(scratch[:], local[written:])
			for i := range scratch[:n] {
				scratch[i] += base
			}
			rn.buffers.Indices.Write((rd.Indices.BaseIndex+written)*sizeofIndex, uint16Bytes(scratch[:n]))
			written += n
		}
	}
	rn.buffers.Indices.Unbind()
}

func (rn *Renderer) bindAttributes() {
	rn.buffers.Positions.Bind()
	rn.dev.VertexAttribPointer(rn.positionLocation, 2, gfx.FLOAT, false, 0, 0)
	rn.buffers.Uvs.Bind()
	rn.dev.VertexAttribPointer(rn.uvLocation, 2, gfx.FLOAT, false, 0, 0)
	rn.dev.EnableVertexAttribArray(rn.positionLocation)
	rn.dev.EnableVertexAttribArray(rn.uvLocation)
	rn.buffers.Indices.Bind()
}

func (rn *Renderer) initializeVertexArray() {
	rn.vertexArray = rn.dev.GenVertexArray()
	rn.dev.BindVertexArray(rn.vertexArray)
	rn.bindAttributes()

	rn.dev.BindVertexArray(0)
	rn.buffers.Uvs.Unbind()
	rn.buffers.Indices.Unbind()
}

func (rn *Renderer) check() error {
	if rn == nil {
		return (*Resources)(nil).fail(ErrInvalidRenderer)
	}
	if rn.released {
		return rn.res.fail(errors.Wrap(ErrInvalidRenderer, "renderer is released"))
	}
	return nil
}

// Release frees the renderer's buffers and, unless barebone, its references
// to the shared resources. The block becomes reusable.
func (rn *Renderer) Release() {
	if err := rn.check(); err != nil {
		return
	}

	rn.buffers.Indices.Release()
	rn.buffers.Uvs.Release()
	rn.buffers.Positions.Release()
	if rn.vertexArray != 0 {
		rn.dev.DeleteVertexArray(rn.vertexArray)
		rn.vertexArray = 0
	}

	if !rn.barebone {
		rn.res.UnrequireMaskbuffer()
		rn.res.UnrequirePrograms()
	}

	rn.block.inUse = false
	rn.released = true
}

// Update pulls dynamic model state. Visibility and opacity are always
// refreshed; vertex positions are uploaded only for drawables flagged as
// changed, and the render order is resorted only if some drawable's
// render order changed.
func (rn *Renderer) Update() error {
	if err := rn.check(); err != nil {
		return err
	}

	positions := rn.model.DrawableVertexPositions()
	flags := rn.model.DrawableDynamicFlags()
	opacities := rn.model.DrawableOpacities()

	resort := false
	rn.buffers.Positions.Bind()
	for d := range rn.drawables {
		rd := &rn.drawables[d]
		rd.IsVisible = flags[d].Has(cubism.IsVisible)
		rd.Opacity = opacities[d]

		if flags[d].Has(cubism.VertexPositionsDidChange) {
			v := rd.Vertices
			rn.buffers.Positions.Write(v.BaseIndex*sizeofVertex, vec2Bytes(positions[d][:v.Count]))
		}
		resort = resort || flags[d].Has(cubism.RenderOrderDidChange)
	}
	rn.buffers.Positions.Unbind()

	if resort {
		Resort(rn.sorted, rn.model)
	}
	return nil
}

func (rn *Renderer) Model() cubism.Model { return rn.model }
func (rn *Renderer) IsBarebone() bool    { return rn.barebone }
func (rn *Renderer) IsReleased() bool    { return rn.released }
func (rn *Renderer) Buffers() Buffers    { return rn.buffers }

// VertexArray is zero for the GLES20 profile.
func (rn *Renderer) VertexArray() uint32 { return rn.vertexArray }

// Drawables returns the renderer's table in drawable order. Read only.
func (rn *Renderer) Drawables() []RenderDrawable { return rn.drawables }

// SortedDrawables returns drawables in render order. Read only.
func (rn *Renderer) SortedDrawables() []SortableDrawable { return rn.sorted }
