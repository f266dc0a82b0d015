// Package render draws Cubism models with OpenGL.
//
// Renderers created from the same Resources share one pair of shader
// programs and one mask framebuffer. All calls must happen on the thread
// that owns the GL context the Resources were created for.
package render

import (
	"fmt"
	"log"

	"github.com/pkg/errors"

	"github.com/mogaika/cubism_renderer/gfx"
)

var (
	ErrInvalidModel    = errors.New("model is invalid")
	ErrInvalidBlock    = errors.New("block is invalid")
	ErrBlockTooSmall   = errors.New("block is too small")
	ErrInvalidRenderer = errors.New("renderer is invalid")
	ErrInvalidTextures = errors.New("textures are invalid")
	ErrBarebone        = errors.New("renderer is barebone")
)

type Profile int

const (
	// ProfileGL33 draws through a vertex array object and "#version 330" shaders.
	ProfileGL33 Profile = iota
	// ProfileGLES20 binds attributes on every Draw and uses GLSL ES 1.00 shaders.
	ProfileGLES20
)

func (p Profile) String() string {
	switch p {
	case ProfileGL33:
		return "gl33"
	case ProfileGLES20:
		return "gles20"
	default:
		return fmt.Sprintf("Profile(%d)", int(p))
	}
}

func ParseProfile(s string) (Profile, error) {
	switch s {
	case "", "gl33":
		return ProfileGL33, nil
	case "gles20":
		return ProfileGLES20, nil
	default:
		return 0, errors.Errorf("Unknown profile %q", s)
	}
}

func (p Profile) defaultMaskSize() int32 {
	if p == ProfileGLES20 {
		return 1024
	}
	return 2048
}

func (p Profile) depthFormat() uint32 {
	if p == ProfileGLES20 {
		return gfx.DEPTH_COMPONENT16
	}
	return gfx.DEPTH_COMPONENT
}

type Options struct {
	Profile Profile
	// MaskSize overrides the mask framebuffer edge in pixels.
	MaskSize int32
	// Log receives every diagnostic message. Defaults to the standard logger.
	Log func(message string)
}

func defaultLog(message string) { log.Printf("[cubism] %s", message) }

// Resources is the registry of GL objects shared between renderers
// of one GL context. Reference counts are not synchronized.
type Resources struct {
	dev  gfx.Device
	opts Options

	programRefs   int
	programs      [2]program
	activeProgram *program

	maskRefs        int
	mask            maskbuffer
	userViewport    [4]int32
	userFramebuffer [1]int32
}

func NewResources(dev gfx.Device, opts Options) *Resources {
	if opts.MaskSize <= 0 {
		opts.MaskSize = opts.Profile.defaultMaskSize()
	}
	if opts.Log == nil {
		opts.Log = defaultLog
	}
	return &Resources{dev: dev, opts: opts}
}

func (r *Resources) Device() gfx.Device  { return r.dev }
func (r *Resources) Options() Options    { return r.opts }
func (r *Resources) ProgramRefs() int    { return r.programRefs }
func (r *Resources) MaskbufferRefs() int { return r.maskRefs }

func (r *Resources) logf(format string, args ...interface{}) {
	r.opts.Log(fmt.Sprintf(format, args...))
}

// fail logs err through the sink and hands it back.
func (r *Resources) fail(err error) error {
	if r == nil {
		defaultLog(err.Error())
	} else {
		r.opts.Log(err.Error())
	}
	return err
}
