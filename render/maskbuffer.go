package render

import (
	"github.com/pkg/errors"

	"github.com/mogaika/cubism_renderer/gfx"
)

// maskbuffer is the offscreen target masks are drawn into.
// It always has the fixed size chosen at creation, not the size of the
// caller's viewport.
type maskbuffer struct {
	framebuffer uint32
	texture     uint32
	depth       uint32
	size        int32
}

func (r *Resources) makeMaskbuffer(size int32) (maskbuffer, error) {
	dev := r.dev
	mb := maskbuffer{size: size}

	var userFramebuffer, userRenderbuffer [1]int32
	dev.GetIntegerv(gfx.FRAMEBUFFER_BINDING, userFramebuffer[:])

	mb.texture = dev.GenTexture()
	dev.BindTexture(gfx.TEXTURE_2D, mb.texture)
	dev.TexImage2D(gfx.TEXTURE_2D, 0, gfx.RGBA, size, size, gfx.RGBA, gfx.UNSIGNED_BYTE, nil)
	dev.TexParameteri(gfx.TEXTURE_2D, gfx.TEXTURE_WRAP_S, gfx.CLAMP_TO_EDGE)
	dev.TexParameteri(gfx.TEXTURE_2D, gfx.TEXTURE_WRAP_T, gfx.CLAMP_TO_EDGE)
	dev.TexParameteri(gfx.TEXTURE_2D, gfx.TEXTURE_MAG_FILTER, gfx.LINEAR)
	dev.TexParameteri(gfx.TEXTURE_2D, gfx.TEXTURE_MIN_FILTER, gfx.LINEAR)
	dev.BindTexture(gfx.TEXTURE_2D, 0)

	// depth is never read, but some drivers refuse colour-only framebuffers
	mb.depth = dev.GenRenderbuffer()
	dev.GetIntegerv(gfx.RENDERBUFFER_BINDING, userRenderbuffer[:])
	dev.BindRenderbuffer(gfx.RENDERBUFFER, mb.depth)
	dev.RenderbufferStorage(gfx.RENDERBUFFER, r.opts.Profile.depthFormat(), size, size)
	dev.BindRenderbuffer(gfx.RENDERBUFFER, uint32(userRenderbuffer[0]))

	mb.framebuffer = dev.GenFramebuffer()
	dev.BindFramebuffer(gfx.FRAMEBUFFER, mb.framebuffer)
	dev.FramebufferTexture2D(gfx.FRAMEBUFFER, gfx.COLOR_ATTACHMENT0, gfx.TEXTURE_2D, mb.texture, 0)
	dev.FramebufferRenderbuffer(gfx.FRAMEBUFFER, gfx.DEPTH_ATTACHMENT, gfx.RENDERBUFFER, mb.depth)
	status := dev.CheckFramebufferStatus(gfx.FRAMEBUFFER)
	dev.BindFramebuffer(gfx.FRAMEBUFFER, uint32(userFramebuffer[0]))

	if status != gfx.FRAMEBUFFER_COMPLETE {
		r.releaseMaskbuffer(&mb)
		return maskbuffer{}, errors.Errorf("mask framebuffer is incomplete: status %#x", status)
	}
	return mb, nil
}

func (r *Resources) releaseMaskbuffer(mb *maskbuffer) {
	r.dev.DeleteFramebuffer(mb.framebuffer)
	r.dev.DeleteRenderbuffer(mb.depth)
	r.dev.DeleteTexture(mb.texture)
	*mb = maskbuffer{}
}

// RequireMaskbuffer acquires a reference to the shared mask target,
// creating it on the first call. A failed call leaves the count unchanged.
func (r *Resources) RequireMaskbuffer() error {
	if r.maskRefs == 0 {
		mb, err := r.makeMaskbuffer(r.opts.MaskSize)
		if err != nil {
			return err
		}
		r.mask = mb
	}
	r.maskRefs++
	return nil
}

// UnrequireMaskbuffer drops a reference, deleting the target with the last one.
func (r *Resources) UnrequireMaskbuffer() {
	if r.maskRefs <= 0 {
		r.logf("UnrequireMaskbuffer called without a matching RequireMaskbuffer")
		return
	}
	r.maskRefs--
	if r.maskRefs == 0 {
		r.releaseMaskbuffer(&r.mask)
	}
}

// ActivateMaskbuffer redirects drawing into the cleared mask target.
// The caller's viewport and framebuffer are saved for DeactivateMaskbuffer,
// the clear colour is left as it was.
func (r *Resources) ActivateMaskbuffer() {
	dev := r.dev

	dev.GetIntegerv(gfx.VIEWPORT, r.userViewport[:])
	dev.GetIntegerv(gfx.FRAMEBUFFER_BINDING, r.userFramebuffer[:])

	dev.BindFramebuffer(gfx.FRAMEBUFFER, r.mask.framebuffer)
	dev.Viewport(0, 0, r.mask.size, r.mask.size)

	var userClearColor [4]float32
	dev.GetFloatv(gfx.COLOR_CLEAR_VALUE, userClearColor[:])
	dev.ClearColor(0, 0, 0, 0)
	dev.Clear(gfx.COLOR_BUFFER_BIT | gfx.DEPTH_BUFFER_BIT)
	dev.ClearColor(userClearColor[0], userClearColor[1], userClearColor[2], userClearColor[3])
}

// DeactivateMaskbuffer restores the caller's framebuffer and viewport
// and returns the mask texture.
func (r *Resources) DeactivateMaskbuffer() uint32 {
	r.dev.BindFramebuffer(gfx.FRAMEBUFFER, uint32(r.userFramebuffer[0]))
	r.dev.Viewport(r.userViewport[0], r.userViewport[1], r.userViewport[2], r.userViewport[3])
	return r.mask.texture
}

func (r *Resources) MaskSize() int32         { return r.opts.MaskSize }
func (r *Resources) MaskTexture() uint32     { return r.mask.texture }
func (r *Resources) MaskFramebuffer() uint32 { return r.mask.framebuffer }
