package render

import (
	_ "embed"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/cubism_renderer/gfx"
)

//go:embed shaders/gl33/drawable.vert
var gl33VertexShader string

//go:embed shaders/gl33/nonmasked.frag
var gl33NonMaskedFragmentShader string

//go:embed shaders/gl33/masked.frag
var gl33MaskedFragmentShader string

//go:embed shaders/gles20/drawable.vert
var gles20VertexShader string

//go:embed shaders/gles20/nonmasked.frag
var gles20NonMaskedFragmentShader string

//go:embed shaders/gles20/masked.frag
var gles20MaskedFragmentShader string

// Attribute locations bound into both programs before linking.
const (
	VertexPositionLocation uint32 = 0
	VertexUvLocation       uint32 = 1
)

const (
	maskTextureUnit    = 0
	diffuseTextureUnit = 1
)

// ProgramID names the program a draw step runs with. Only two shader
// objects exist: MaskProgram renders mask geometry with the non-masked
// shader pair, MaskedProgram samples the mask texture.
type ProgramID int

const (
	noProgram ProgramID = iota - 1
	MaskProgram
	NonMaskedProgram
	MaskedProgram
)

func (id ProgramID) String() string {
	switch id {
	case MaskProgram:
		return "mask"
	case NonMaskedProgram:
		return "non-masked"
	case MaskedProgram:
		return "masked"
	default:
		return "none"
	}
}

const (
	nonMaskedSlot = 0
	maskedSlot    = 1
)

func (id ProgramID) slot() int {
	if id == MaskedProgram {
		return maskedSlot
	}
	return nonMaskedSlot
}

type program struct {
	id uint32

	uMvp            int32
	uOpacity        int32
	uMaskTexture    int32
	uDiffuseTexture int32
}

func (p Profile) shaderSources() (vertex, nonMasked, masked string) {
	if p == ProfileGLES20 {
		return gles20VertexShader, gles20NonMaskedFragmentShader, gles20MaskedFragmentShader
	}
	return gl33VertexShader, gl33NonMaskedFragmentShader, gl33MaskedFragmentShader
}

func (r *Resources) loadShader(xtype uint32, text string) (uint32, error) {
	shader := r.dev.CreateShader(xtype)
	r.dev.ShaderSource(shader, text)
	r.dev.CompileShader(shader)

	if ok, errString := r.dev.ShaderStatus(shader); !ok {
		r.logf("Failed to compile shader:\n%s", errString)
		r.dev.DeleteShader(shader)
		return 0, errors.Errorf("failed to compile shader: %q", errString)
	}
	return shader, nil
}

func (r *Resources) loadProgram(vertexShaderText, fragmentShaderText string) (program, error) {
	vs, err := r.loadShader(gfx.VERTEX_SHADER, vertexShaderText)
	if err != nil {
		return program{}, errors.Wrap(err, "vertex shader")
	}
	fs, err := r.loadShader(gfx.FRAGMENT_SHADER, fragmentShaderText)
	if err != nil {
		r.dev.DeleteShader(vs)
		return program{}, errors.Wrap(err, "fragment shader")
	}

	p := program{id: r.dev.CreateProgram()}
	r.dev.AttachShader(p.id, vs)
	r.dev.AttachShader(p.id, fs)
	r.dev.BindAttribLocation(p.id, VertexPositionLocation, "VertexPosition")
	r.dev.BindAttribLocation(p.id, VertexUvLocation, "VertexUv")
	r.dev.LinkProgram(p.id)

	// program keeps the shaders alive until it is deleted
	r.dev.DeleteShader(vs)
	r.dev.DeleteShader(fs)

	if ok, errString := r.dev.ProgramStatus(p.id); !ok {
		r.logf("Failed to link program:\n%s", errString)
		r.dev.DeleteProgram(p.id)
		return program{}, errors.Errorf("failed to link program: %q", errString)
	}

	p.uMvp = r.dev.GetUniformLocation(p.id, "Mvp")
	p.uOpacity = r.dev.GetUniformLocation(p.id, "Opacity")
	p.uMaskTexture = r.dev.GetUniformLocation(p.id, "MaskTexture")
	p.uDiffuseTexture = r.dev.GetUniformLocation(p.id, "DiffuseTexture")
	return p, nil
}

// RequirePrograms acquires a reference to the shared programs,
// compiling them on the first call. A failed call leaves the count unchanged.
func (r *Resources) RequirePrograms() error {
	if r.programRefs == 0 {
		vs, nonMaskedFs, maskedFs := r.opts.Profile.shaderSources()

		nonMasked, err := r.loadProgram(vs, nonMaskedFs)
		if err != nil {
			return errors.Wrap(err, "non-masked program")
		}
		masked, err := r.loadProgram(vs, maskedFs)
		if err != nil {
			r.dev.DeleteProgram(nonMasked.id)
			return errors.Wrap(err, "masked program")
		}
		r.programs[nonMaskedSlot] = nonMasked
		r.programs[maskedSlot] = masked
	}
	r.programRefs++
	return nil
}

// UnrequirePrograms drops a reference, deleting the programs with the last one.
func (r *Resources) UnrequirePrograms() {
	if r.programRefs <= 0 {
		r.logf("UnrequirePrograms called without a matching RequirePrograms")
		return
	}
	r.programRefs--
	if r.programRefs != 0 {
		return
	}
	for i := range r.programs {
		r.dev.DeleteProgram(r.programs[i].id)
		r.programs[i] = program{}
	}
	r.activeProgram = nil
}

// ActivateProgram makes id current, the Set* calls below target it.
func (r *Resources) ActivateProgram(id ProgramID) {
	r.activeProgram = &r.programs[id.slot()]
	r.dev.UseProgram(r.activeProgram.id)
}

func (r *Resources) SetMvp(mvp mgl32.Mat4) {
	r.dev.UniformMatrix4fv(r.activeProgram.uMvp, mvp)
}

func (r *Resources) SetOpacity(opacity float32) {
	r.dev.Uniform1f(r.activeProgram.uOpacity, opacity)
}

// SetMaskTexture binds texture to the mask sampler unit.
func (r *Resources) SetMaskTexture(texture uint32) {
	r.dev.Uniform1i(r.activeProgram.uMaskTexture, maskTextureUnit)
	r.dev.ActiveTexture(gfx.TEXTURE0 + maskTextureUnit)
	r.dev.BindTexture(gfx.TEXTURE_2D, texture)
}

// SetDiffuseTexture binds texture to the diffuse sampler unit.
func (r *Resources) SetDiffuseTexture(texture uint32) {
	r.dev.Uniform1i(r.activeProgram.uDiffuseTexture, diffuseTextureUnit)
	r.dev.ActiveTexture(gfx.TEXTURE0 + diffuseTextureUnit)
	r.dev.BindTexture(gfx.TEXTURE_2D, texture)
}

// ProgramHandle returns the GL name behind id, zero when not required.
func (r *Resources) ProgramHandle(id ProgramID) uint32 {
	return r.programs[id.slot()].id
}
