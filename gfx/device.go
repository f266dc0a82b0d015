// Package gfx describes the slice of OpenGL the renderer talks to.
// Implementations must run on the thread that owns the GL context.
package gfx

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Device mirrors OpenGL entry points one to one. Arguments keep GL semantics,
// names drop the gl prefix, object creation returns the new name directly.
type Device interface {
	GenBuffer() uint32
	DeleteBuffer(buffer uint32)
	BindBuffer(target, buffer uint32)
	BufferData(target uint32, size int, usage uint32)
	BufferSubData(target uint32, offset int, data []byte)

	GenVertexArray() uint32
	DeleteVertexArray(array uint32)
	BindVertexArray(array uint32)
	VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr)
	EnableVertexAttribArray(index uint32)

	CreateShader(xtype uint32) uint32
	ShaderSource(shader uint32, source string)
	CompileShader(shader uint32)
	// ShaderStatus reports COMPILE_STATUS and the info log when it failed.
	ShaderStatus(shader uint32) (ok bool, infoLog string)
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	BindAttribLocation(program, index uint32, name string)
	LinkProgram(program uint32)
	// ProgramStatus reports LINK_STATUS and the info log when it failed.
	ProgramStatus(program uint32) (ok bool, infoLog string)
	DeleteProgram(program uint32)
	UseProgram(program uint32)
	GetUniformLocation(program uint32, name string) int32

	Uniform1i(location int32, v int32)
	Uniform1f(location int32, v float32)
	UniformMatrix4fv(location int32, m mgl32.Mat4)

	ActiveTexture(unit uint32)
	GenTexture() uint32
	DeleteTexture(texture uint32)
	BindTexture(target, texture uint32)
	TexImage2D(target uint32, level, internalFormat, width, height int32, format, xtype uint32, pixels []byte)
	TexParameteri(target, pname uint32, param int32)

	GenRenderbuffer() uint32
	DeleteRenderbuffer(renderbuffer uint32)
	BindRenderbuffer(target, renderbuffer uint32)
	RenderbufferStorage(target, internalFormat uint32, width, height int32)

	GenFramebuffer() uint32
	DeleteFramebuffer(framebuffer uint32)
	BindFramebuffer(target, framebuffer uint32)
	FramebufferTexture2D(target, attachment, textarget, texture uint32, level int32)
	FramebufferRenderbuffer(target, attachment, renderbuffertarget, renderbuffer uint32)
	CheckFramebufferStatus(target uint32) uint32

	GetIntegerv(pname uint32, data []int32)
	GetFloatv(pname uint32, data []float32)

	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	Clear(mask uint32)

	Enable(capability uint32)
	Disable(capability uint32)
	BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha uint32)
	CullFace(mode uint32)

	DrawElements(mode uint32, count int32, xtype uint32, offset uintptr)
}
