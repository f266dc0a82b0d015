package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/cubism_renderer/cubism"
	"github.com/mogaika/cubism_renderer/gfx"
)

// blendFactors holds srcRGB, dstRGB, srcAlpha, dstAlpha per blend mode.
// Output is premultiplied.
var blendFactors = [...][4]uint32{
	cubism.NormalBlending:         {gfx.ONE, gfx.ONE_MINUS_SRC_ALPHA, gfx.ONE, gfx.ONE_MINUS_SRC_ALPHA},
	cubism.AdditiveBlending:       {gfx.SRC_ALPHA, gfx.ONE, gfx.ZERO, gfx.ONE},
	cubism.MultiplicativeBlending: {gfx.DST_COLOR, gfx.ONE_MINUS_SRC_ALPHA, gfx.ZERO, gfx.ONE},
}

// BlendFactors returns the BlendFuncSeparate arguments used for mode.
func BlendFactors(mode cubism.BlendMode) [4]uint32 { return blendFactors[mode] }

// Sentinels forcing the first drawable of a Draw to apply every state.
const (
	unsetBlend   = cubism.BlendMode(0xff)
	unsetOpacity = -1
	unsetCulling = -1
)

// DrawStats counts what the last Draw issued.
type DrawStats struct {
	DrawCalls       int
	MaskPasses      int
	MaskDrawCalls   int
	ProgramSwitches int
	TextureBinds    int
	BlendChanges    int
	OpacityUpdates  int
	CullToggles     int
	Skipped         int
}

type drawContext struct {
	rn       *Renderer
	res      *Resources
	dev      gfx.Device
	mvp      mgl32.Mat4
	textures []uint32

	activeProgram ProgramID
	activeBlend   cubism.BlendMode
	activeTexture uint32
	textureSet    bool
	activeOpacity float32
	culling       int

	stats DrawStats
}

func (rn *Renderer) newDrawContext(mvp mgl32.Mat4, textures []uint32) *drawContext {
	ctx := &drawContext{
		rn:            rn,
		res:           rn.res,
		dev:           rn.dev,
		mvp:           mvp,
		textures:      textures,
		activeProgram: noProgram,
		activeBlend:   unsetBlend,
		activeOpacity: unsetOpacity,
		culling:       unsetCulling,
	}
	ctx.res.ActivateProgram(NonMaskedProgram)
	ctx.res.SetMvp(mvp)
	return ctx
}

func (ctx *drawContext) texture(rd *RenderDrawable) (uint32, bool) {
	if rd.TextureIndex < 0 || int(rd.TextureIndex) >= len(ctx.textures) {
		return 0, false
	}
	return ctx.textures[rd.TextureIndex], true
}

func (ctx *drawContext) drawElements(rd *RenderDrawable) {
	ctx.dev.DrawElements(gfx.TRIANGLES, int32(rd.Indices.Count), gfx.UNSIGNED_SHORT, rd.indicesOffset())
}

// drawMasks renders the masks of drawable d into the mask target
// and returns the mask texture.
func (ctx *drawContext) drawMasks(d int) uint32 {
	res := ctx.res
	masks := ctx.rn.model.DrawableMasks()[d]

	ctx.activeProgram = MaskProgram
	res.ActivateMaskbuffer()
	res.ActivateProgram(MaskProgram)
	res.SetMvp(ctx.mvp)
	res.SetOpacity(1)

	normal := blendFactors[cubism.NormalBlending]
	ctx.dev.Enable(gfx.BLEND)
	ctx.dev.BlendFuncSeparate(normal[0], normal[1], normal[2], normal[3])

	for _, m := range masks {
		mask := &ctx.rn.drawables[m]
		texture, ok := ctx.texture(mask)
		if !ok {
			res.logf("Mask drawable %d has texture index %d out of %d textures", m, mask.TextureIndex, len(ctx.textures))
			continue
		}
		res.SetDiffuseTexture(texture)
		ctx.drawElements(mask)
		ctx.stats.MaskDrawCalls++
	}

	ctx.stats.MaskPasses++
	return res.DeactivateMaskbuffer()
}

func (ctx *drawContext) setState(d int, texture uint32) {
	res := ctx.res
	rd := &ctx.rn.drawables[d]

	program := NonMaskedProgram
	var maskTexture uint32
	if ctx.rn.model.DrawableMaskCounts()[d] > 0 {
		maskTexture = ctx.drawMasks(d)
		program = MaskedProgram
	}

	if ctx.activeProgram != program {
		ctx.activeProgram = program
		res.ActivateProgram(program)
		res.SetMvp(ctx.mvp)
		if program == MaskedProgram {
			res.SetMaskTexture(maskTexture)
		}

		ctx.activeBlend = unsetBlend
		ctx.textureSet = false
		ctx.activeOpacity = unsetOpacity
		ctx.stats.ProgramSwitches++
	}

	// texture name 0 is valid
	if !ctx.textureSet || texture != ctx.activeTexture {
		ctx.activeTexture = texture
		ctx.textureSet = true
		res.SetDiffuseTexture(texture)
		ctx.stats.TextureBinds++
	}

	if rd.BlendMode != ctx.activeBlend {
		ctx.activeBlend = rd.BlendMode
		factors := blendFactors[rd.BlendMode]
		ctx.dev.Enable(gfx.BLEND)
		ctx.dev.BlendFuncSeparate(factors[0], factors[1], factors[2], factors[3])
		ctx.stats.BlendChanges++
	}

	if rd.Opacity != ctx.activeOpacity {
		ctx.activeOpacity = rd.Opacity
		res.SetOpacity(rd.Opacity)
		ctx.stats.OpacityUpdates++
	}

	culling := 0
	if !rd.IsDoubleSided {
		culling = 1
	}
	if culling != ctx.culling {
		ctx.culling = culling
		if culling == 1 {
			ctx.dev.Enable(gfx.CULL_FACE)
			ctx.dev.CullFace(gfx.BACK)
		} else {
			ctx.dev.Disable(gfx.CULL_FACE)
		}
		ctx.stats.CullToggles++
	}
}

// Draw renders visible drawables in render order with mvp applied.
// textures maps model texture indices to GL texture names.
func (rn *Renderer) Draw(mvp mgl32.Mat4, textures []uint32) error {
	if err := rn.check(); err != nil {
		return err
	}
	if textures == nil {
		return rn.res.fail(ErrInvalidTextures)
	}
	if rn.barebone {
		return rn.res.fail(errors.Wrap(ErrBarebone, "Draw needs a renderer made by NewRenderer"))
	}

	ctx := rn.newDrawContext(mvp, textures)

	if rn.vertexArray != 0 {
		rn.dev.BindVertexArray(rn.vertexArray)
	} else {
		rn.bindAttributes()
	}

	for _, sd := range rn.sorted {
		rd := &rn.drawables[sd.DrawableIndex]
		if !rd.IsVisible {
			continue
		}
		texture, ok := ctx.texture(rd)
		if !ok {
			rn.res.logf("Drawable %d has texture index %d out of %d textures", sd.DrawableIndex, rd.TextureIndex, len(textures))
			ctx.stats.Skipped++
			continue
		}

		ctx.setState(sd.DrawableIndex, texture)
		ctx.drawElements(rd)
		ctx.stats.DrawCalls++
	}

	if rn.vertexArray != 0 {
		rn.dev.BindVertexArray(0)
	} else {
		rn.buffers.Uvs.Unbind()
		rn.buffers.Indices.Unbind()
	}

	rn.stats = ctx.stats
	return nil
}

// LastDrawStats reports the counters of the most recent successful Draw.
func (rn *Renderer) LastDrawStats() DrawStats { return rn.stats }
