// Package glcore implements gfx.Device on top of go-gl (v4.3-core profile).
package glcore

import (
	"log"
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/cubism_renderer/gfx"
)

type Device struct{}

var _ gfx.Device = Device{}

// New loads GL function pointers. A context has to be current on the calling thread.
func New() (Device, error) {
	if err := gl.Init(); err != nil {
		return Device{}, errors.Wrapf(err, "Failed to initialize OpenGL")
	}
	log.Printf("[gl] Version: %q", gl.GoStr(gl.GetString(gl.VERSION)))
	return Device{}, nil
}

// EnableDebugOutput routes driver messages to the standard logger.
func (Device) EnableDebugOutput() {
	gl.Enable(gl.DEBUG_OUTPUT_SYNCHRONOUS)
	gl.Enable(gl.DEBUG_OUTPUT)
	gl.DebugMessageCallback(debugCallback, nil)
}

var debugNames = map[uint32]string{
	gl.DEBUG_SOURCE_API:             "API",
	gl.DEBUG_SOURCE_WINDOW_SYSTEM:   "WINDOW SYSTEM",
	gl.DEBUG_SOURCE_SHADER_COMPILER: "SHADER COMPILER",
	gl.DEBUG_SOURCE_THIRD_PARTY:     "THIRD PARTY",
	gl.DEBUG_SOURCE_APPLICATION:     "APPLICATION",
	gl.DEBUG_SOURCE_OTHER:           "OTHER",

	gl.DEBUG_TYPE_ERROR:               "ERROR",
	gl.DEBUG_TYPE_DEPRECATED_BEHAVIOR: "DEPRECATED BEHAVIOR",
	gl.DEBUG_TYPE_UNDEFINED_BEHAVIOR:  "UNDEFINED BEHAVIOR",
	gl.DEBUG_TYPE_PORTABILITY:         "PORTABILITY",
	gl.DEBUG_TYPE_PERFORMANCE:         "PERFORMANCE",
	gl.DEBUG_TYPE_OTHER:               "OTHER",
	gl.DEBUG_TYPE_MARKER:              "MARKER",

	gl.DEBUG_SEVERITY_HIGH:         "HIGH",
	gl.DEBUG_SEVERITY_MEDIUM:       "MEDIUM",
	gl.DEBUG_SEVERITY_LOW:          "LOW",
	gl.DEBUG_SEVERITY_NOTIFICATION: "NOTIFICATION",
}

func debugCallback(source uint32, gltype uint32, id uint32,
	severity uint32, length int32, message string, userParam unsafe.Pointer) {
	if severity == gl.DEBUG_SEVERITY_NOTIFICATION {
		return
	}
	log.Printf("[gl] id:%v severity:%v src:%v type:%v %q",
		id, debugNames[severity], debugNames[source], debugNames[gltype], message)
}

func (Device) GenBuffer() uint32 {
	var buffer uint32
	gl.GenBuffers(1, &buffer)
	return buffer
}

func (Device) DeleteBuffer(buffer uint32) { gl.DeleteBuffers(1, &buffer) }

func (Device) BindBuffer(target, buffer uint32) { gl.BindBuffer(target, buffer) }

func (Device) BufferData(target uint32, size int, usage uint32) {
	gl.BufferData(target, size, nil, usage)
}

func (Device) BufferSubData(target uint32, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BufferSubData(target, offset, len(data), gl.Ptr(data))
}

func (Device) GenVertexArray() uint32 {
	var array uint32
	gl.GenVertexArrays(1, &array)
	return array
}

func (Device) DeleteVertexArray(array uint32) { gl.DeleteVertexArrays(1, &array) }

func (Device) BindVertexArray(array uint32) { gl.BindVertexArray(array) }

func (Device) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
	gl.VertexAttribPointerWithOffset(index, size, xtype, normalized, stride, offset)
}

func (Device) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

func (Device) CreateShader(xtype uint32) uint32 { return gl.CreateShader(xtype) }

func (Device) ShaderSource(shader uint32, source string) {
	csource, free := gl.Strs(source + "\x00")
	defer free()
	gl.ShaderSource(shader, 1, csource, nil)
}

func (Device) CompileShader(shader uint32) { gl.CompileShader(shader) }

func (Device) ShaderStatus(shader uint32) (bool, string) {
	var success int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &success)
	if success != gl.FALSE {
		return true, ""
	}
	var logSize int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logSize)
	buf := make([]uint8, logSize+1)
	gl.GetShaderInfoLog(shader, int32(len(buf)), &logSize, &buf[0])
	return false, string(buf[:logSize])
}

func (Device) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

func (Device) CreateProgram() uint32 { return gl.CreateProgram() }

func (Device) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }

func (Device) BindAttribLocation(program, index uint32, name string) {
	gl.BindAttribLocation(program, index, gl.Str(name+"\x00"))
}

func (Device) LinkProgram(program uint32) { gl.LinkProgram(program) }

func (Device) ProgramStatus(program uint32) (bool, string) {
	var isLinked int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &isLinked)
	if isLinked != gl.FALSE {
		return true, ""
	}
	var logSize int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logSize)
	buf := make([]uint8, logSize+1)
	gl.GetProgramInfoLog(program, int32(len(buf)), &logSize, &buf[0])
	return false, string(buf[:logSize])
}

func (Device) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (Device) UseProgram(program uint32) { gl.UseProgram(program) }

func (Device) GetUniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (Device) Uniform1i(location int32, v int32) { gl.Uniform1i(location, v) }

func (Device) Uniform1f(location int32, v float32) { gl.Uniform1f(location, v) }

func (Device) UniformMatrix4fv(location int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (Device) ActiveTexture(unit uint32) { gl.ActiveTexture(unit) }

func (Device) GenTexture() uint32 {
	var texture uint32
	gl.GenTextures(1, &texture)
	return texture
}

func (Device) DeleteTexture(texture uint32) { gl.DeleteTextures(1, &texture) }

func (Device) BindTexture(target, texture uint32) { gl.BindTexture(target, texture) }

func (Device) TexImage2D(target uint32, level, internalFormat, width, height int32, format, xtype uint32, pixels []byte) {
	var ptr unsafe.Pointer
	if len(pixels) != 0 {
		ptr = gl.Ptr(pixels)
	}
	gl.TexImage2D(target, level, internalFormat, width, height, 0, format, xtype, ptr)
}

func (Device) TexParameteri(target, pname uint32, param int32) { gl.TexParameteri(target, pname, param) }

func (Device) GenRenderbuffer() uint32 {
	var renderbuffer uint32
	gl.GenRenderbuffers(1, &renderbuffer)
	return renderbuffer
}

func (Device) DeleteRenderbuffer(renderbuffer uint32) { gl.DeleteRenderbuffers(1, &renderbuffer) }

func (Device) BindRenderbuffer(target, renderbuffer uint32) { gl.BindRenderbuffer(target, renderbuffer) }

func (Device) RenderbufferStorage(target, internalFormat uint32, width, height int32) {
	gl.RenderbufferStorage(target, internalFormat, width, height)
}

func (Device) GenFramebuffer() uint32 {
	var framebuffer uint32
	gl.GenFramebuffers(1, &framebuffer)
	return framebuffer
}

func (Device) DeleteFramebuffer(framebuffer uint32) { gl.DeleteFramebuffers(1, &framebuffer) }

func (Device) BindFramebuffer(target, framebuffer uint32) { gl.BindFramebuffer(target, framebuffer) }

func (Device) FramebufferTexture2D(target, attachment, textarget, texture uint32, level int32) {
	gl.FramebufferTexture2D(target, attachment, textarget, texture, level)
}

func (Device) FramebufferRenderbuffer(target, attachment, renderbuffertarget, renderbuffer uint32) {
	gl.FramebufferRenderbuffer(target, attachment, renderbuffertarget, renderbuffer)
}

func (Device) CheckFramebufferStatus(target uint32) uint32 { return gl.CheckFramebufferStatus(target) }

func (Device) GetIntegerv(pname uint32, data []int32) { gl.GetIntegerv(pname, &data[0]) }

func (Device) GetFloatv(pname uint32, data []float32) { gl.GetFloatv(pname, &data[0]) }

func (Device) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

func (Device) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }

func (Device) Clear(mask uint32) { gl.Clear(mask) }

func (Device) Enable(capability uint32) { gl.Enable(capability) }

func (Device) Disable(capability uint32) { gl.Disable(capability) }

func (Device) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha uint32) {
	gl.BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha)
}

func (Device) CullFace(mode uint32) { gl.CullFace(mode) }

func (Device) DrawElements(mode uint32, count int32, xtype uint32, offset uintptr) {
	gl.DrawElementsWithOffset(mode, count, xtype, offset)
}
