// Package gltrace is a gfx.Device that records every call and keeps just
// enough GL state to answer what an indexed draw would have read: bound
// program and uniforms, texture units, blend and cull state, framebuffer
// and the index data behind the element buffer.
package gltrace

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/cubism_renderer/gfx"
)

type Call struct {
	Name string
	Args []interface{}
}

func (c Call) String() string {
	args := make([]string, len(c.Args))
	for i, arg := range c.Args {
		switch v := arg.(type) {
		case []byte:
			args[i] = fmt.Sprintf("[%d bytes]", len(v))
		case mgl32.Mat4:
			args[i] = "mat4"
		case string:
			if len(v) > 24 {
				v = v[:24] + "..."
			}
			args[i] = fmt.Sprintf("%q", v)
		default:
			args[i] = fmt.Sprint(v)
		}
	}
	return c.Name + "(" + strings.Join(args, ", ") + ")"
}

type Buffer struct {
	Target uint32
	Usage  uint32
	Data   []byte
}

type Attrib struct {
	Buffer  uint32
	Size    int32
	Type    uint32
	Stride  int32
	Offset  uintptr
	Enabled bool
}

type VertexArray struct {
	Attribs       map[uint32]*Attrib
	ElementBuffer uint32
}

type Program struct {
	Shaders         []uint32
	Linked          bool
	AttribLocations map[string]uint32
	UniformNames    map[int32]string
	Uniforms        map[string]interface{}
}

type Framebuffer struct {
	Color uint32
	Depth uint32
}

// Draw is a snapshot of the state an indexed draw call was issued with.
type Draw struct {
	Framebuffer  uint32
	Program      uint32
	Count        int32
	Offset       uintptr
	Indices      []uint16
	Blend        bool
	BlendFunc    [4]uint32
	Cull         bool
	Textures     [2]uint32
	Uniforms     map[string]interface{}
	CallPosition int
}

type Device struct {
	Calls []Call
	Draws []Draw

	FailCompile       bool
	FailLink          bool
	FramebufferStatus uint32

	nextName uint32

	Buffers        map[uint32]*Buffer
	boundBuffers   map[uint32]uint32
	VertexArrays   map[uint32]*VertexArray
	defaultArray   *VertexArray
	boundArray     uint32
	Programs       map[uint32]*Program
	shaderTypes    map[uint32]uint32
	shaderSources  map[uint32]string
	CurrentProgram uint32

	Textures      map[uint32]bool
	activeUnit    uint32
	units         map[uint32]uint32
	Renderbuffers map[uint32]bool
	renderbuffer  uint32
	Framebuffers  map[uint32]*Framebuffer
	framebuffer   uint32

	ViewportRect    [4]int32
	ClearColorValue [4]float32
	caps            map[uint32]bool
	blendFunc       [4]uint32
	cullFaceMode    uint32
}

var _ gfx.Device = (*Device)(nil)

func New() *Device {
	return &Device{
		nextName:          1,
		FramebufferStatus: gfx.FRAMEBUFFER_COMPLETE,
		Buffers:           make(map[uint32]*Buffer),
		boundBuffers:      make(map[uint32]uint32),
		VertexArrays:      make(map[uint32]*VertexArray),
		defaultArray:      &VertexArray{Attribs: make(map[uint32]*Attrib)},
		Programs:          make(map[uint32]*Program),
		shaderTypes:       make(map[uint32]uint32),
		shaderSources:     make(map[uint32]string),
		Textures:          make(map[uint32]bool),
		activeUnit:        gfx.TEXTURE0,
		units:             make(map[uint32]uint32),
		Renderbuffers:     make(map[uint32]bool),
		Framebuffers:      make(map[uint32]*Framebuffer),
		ViewportRect:      [4]int32{0, 0, 800, 600},
		caps:              make(map[uint32]bool),
		blendFunc:         [4]uint32{gfx.ONE, gfx.ZERO, gfx.ONE, gfx.ZERO},
		cullFaceMode:      gfx.BACK,
	}
}

func (d *Device) record(name string, args ...interface{}) {
	d.Calls = append(d.Calls, Call{Name: name, Args: args})
}

func (d *Device) genName() uint32 {
	name := d.nextName
	d.nextName++
	return name
}

// Reset forgets recorded calls and draws, GL state is kept.
func (d *Device) Reset() {
	d.Calls = nil
	d.Draws = nil
}

// Count returns how many recorded calls have the given name.
func (d *Device) Count(name string) int {
	count := 0
	for _, c := range d.Calls {
		if c.Name == name {
			count++
		}
	}
	return count
}

// CallNames lists recorded call names in [from, to).
func (d *Device) CallNames(from, to int) []string {
	names := make([]string, 0, to-from)
	for _, c := range d.Calls[from:to] {
		names = append(names, c.Name)
	}
	return names
}

func (d *Device) String() string {
	var b strings.Builder
	for i, c := range d.Calls {
		fmt.Fprintf(&b, "%4d %v\n", i, c)
	}
	return b.String()
}

func (d *Device) IsEnabled(capability uint32) bool { return d.caps[capability] }
func (d *Device) BlendFunc() [4]uint32             { return d.blendFunc }
func (d *Device) BoundFramebuffer() uint32         { return d.framebuffer }
func (d *Device) BoundTexture(unit uint32) uint32  { return d.units[unit] }

func (d *Device) currentArray() *VertexArray {
	if d.boundArray == 0 {
		return d.defaultArray
	}
	return d.VertexArrays[d.boundArray]
}

func (d *Device) GenBuffer() uint32 {
	name := d.genName()
	d.Buffers[name] = &Buffer{}
	d.record("GenBuffer", name)
	return name
}

func (d *Device) DeleteBuffer(buffer uint32) {
	d.record("DeleteBuffer", buffer)
	delete(d.Buffers, buffer)
}

func (d *Device) BindBuffer(target, buffer uint32) {
	d.record("BindBuffer", target, buffer)
	if target == gfx.ELEMENT_ARRAY_BUFFER {
		d.currentArray().ElementBuffer = buffer
		return
	}
	d.boundBuffers[target] = buffer
}

func (d *Device) boundBuffer(target uint32) *Buffer {
	if target == gfx.ELEMENT_ARRAY_BUFFER {
		return d.Buffers[d.currentArray().ElementBuffer]
	}
	return d.Buffers[d.boundBuffers[target]]
}

func (d *Device) BufferData(target uint32, size int, usage uint32) {
	d.record("BufferData", target, size, usage)
	if b := d.boundBuffer(target); b != nil {
		b.Target = target
		b.Usage = usage
		b.Data = make([]byte, size)
	}
}

func (d *Device) BufferSubData(target uint32, offset int, data []byte) {
	d.record("BufferSubData", target, offset, data)
	b := d.boundBuffer(target)
	if b == nil || offset < 0 || offset+len(data) > len(b.Data) {
		panic(fmt.Sprintf("gltrace: BufferSubData out of range: target %#x offset %d size %d", target, offset, len(data)))
	}
	copy(b.Data[offset:], data)
}

func (d *Device) GenVertexArray() uint32 {
	name := d.genName()
	d.VertexArrays[name] = &VertexArray{Attribs: make(map[uint32]*Attrib)}
	d.record("GenVertexArray", name)
	return name
}

func (d *Device) DeleteVertexArray(array uint32) {
	d.record("DeleteVertexArray", array)
	delete(d.VertexArrays, array)
}

func (d *Device) BindVertexArray(array uint32) {
	d.record("BindVertexArray", array)
	d.boundArray = array
}

func (d *Device) attrib(index uint32) *Attrib {
	va := d.currentArray()
	a, ok := va.Attribs[index]
	if !ok {
		a = &Attrib{}
		va.Attribs[index] = a
	}
	return a
}

func (d *Device) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
	d.record("VertexAttribPointer", index, size, xtype, normalized, stride, offset)
	a := d.attrib(index)
	a.Buffer = d.boundBuffers[gfx.ARRAY_BUFFER]
	a.Size = size
	a.Type = xtype
	a.Stride = stride
	a.Offset = offset
}

func (d *Device) EnableVertexAttribArray(index uint32) {
	d.record("EnableVertexAttribArray", index)
	d.attrib(index).Enabled = true
}

// Attrib returns the attribute state of the bound vertex array.
func (d *Device) Attrib(array, index uint32) *Attrib {
	va := d.defaultArray
	if array != 0 {
		va = d.VertexArrays[array]
	}
	if va == nil {
		return nil
	}
	return va.Attribs[index]
}

func (d *Device) CreateShader(xtype uint32) uint32 {
	name := d.genName()
	d.shaderTypes[name] = xtype
	d.record("CreateShader", xtype, name)
	return name
}

func (d *Device) ShaderSource(shader uint32, source string) {
	d.record("ShaderSource", shader, source)
	d.shaderSources[shader] = source
}

func (d *Device) CompileShader(shader uint32) { d.record("CompileShader", shader) }

func (d *Device) ShaderStatus(shader uint32) (bool, string) {
	d.record("ShaderStatus", shader)
	if d.FailCompile {
		return false, "0:1(1): error: simulated compile failure"
	}
	return true, ""
}

func (d *Device) DeleteShader(shader uint32) {
	d.record("DeleteShader", shader)
	delete(d.shaderTypes, shader)
	delete(d.shaderSources, shader)
}

// ShaderSourceOf returns the source uploaded to a live shader.
func (d *Device) ShaderSourceOf(shader uint32) string { return d.shaderSources[shader] }

func (d *Device) CreateProgram() uint32 {
	name := d.genName()
	d.Programs[name] = &Program{
		AttribLocations: make(map[string]uint32),
		UniformNames:    make(map[int32]string),
		Uniforms:        make(map[string]interface{}),
	}
	d.record("CreateProgram", name)
	return name
}

func (d *Device) AttachShader(program, shader uint32) {
	d.record("AttachShader", program, shader)
	if p := d.Programs[program]; p != nil {
		p.Shaders = append(p.Shaders, shader)
	}
}

func (d *Device) BindAttribLocation(program, index uint32, name string) {
	d.record("BindAttribLocation", program, index, name)
	if p := d.Programs[program]; p != nil {
		p.AttribLocations[name] = index
	}
}

func (d *Device) LinkProgram(program uint32) {
	d.record("LinkProgram", program)
	if p := d.Programs[program]; p != nil {
		p.Linked = !d.FailLink
	}
}

func (d *Device) ProgramStatus(program uint32) (bool, string) {
	d.record("ProgramStatus", program)
	if p := d.Programs[program]; p != nil && p.Linked {
		return true, ""
	}
	return false, "error: simulated link failure"
}

func (d *Device) DeleteProgram(program uint32) {
	d.record("DeleteProgram", program)
	delete(d.Programs, program)
	if d.CurrentProgram == program {
		d.CurrentProgram = 0
	}
}

func (d *Device) UseProgram(program uint32) {
	d.record("UseProgram", program)
	d.CurrentProgram = program
}

// Uniform locations are unique across programs: program<<8 | slot.
func (d *Device) GetUniformLocation(program uint32, name string) int32 {
	d.record("GetUniformLocation", program, name)
	p := d.Programs[program]
	if p == nil {
		return -1
	}
	for loc, other := range p.UniformNames {
		if other == name {
			return loc
		}
	}
	loc := int32(program<<8) | int32(len(p.UniformNames))
	p.UniformNames[loc] = name
	return loc
}

func (d *Device) setUniform(call string, location int32, v interface{}) {
	d.record(call, location, v)
	if location < 0 {
		return
	}
	p := d.Programs[d.CurrentProgram]
	if p == nil {
		panic(fmt.Sprintf("gltrace: %s without a program", call))
	}
	name, ok := p.UniformNames[location]
	if !ok {
		panic(fmt.Sprintf("gltrace: %s location %#x does not belong to program %d", call, location, d.CurrentProgram))
	}
	p.Uniforms[name] = v
}

func (d *Device) Uniform1i(location int32, v int32)   { d.setUniform("Uniform1i", location, v) }
func (d *Device) Uniform1f(location int32, v float32) { d.setUniform("Uniform1f", location, v) }
func (d *Device) UniformMatrix4fv(location int32, m mgl32.Mat4) {
	d.setUniform("UniformMatrix4fv", location, m)
}

func (d *Device) ActiveTexture(unit uint32) {
	d.record("ActiveTexture", unit)
	d.activeUnit = unit
}

func (d *Device) GenTexture() uint32 {
	name := d.genName()
	d.Textures[name] = true
	d.record("GenTexture", name)
	return name
}

func (d *Device) DeleteTexture(texture uint32) {
	d.record("DeleteTexture", texture)
	delete(d.Textures, texture)
}

func (d *Device) BindTexture(target, texture uint32) {
	d.record("BindTexture", target, texture)
	d.units[d.activeUnit] = texture
}

func (d *Device) TexImage2D(target uint32, level, internalFormat, width, height int32, format, xtype uint32, pixels []byte) {
	d.record("TexImage2D", target, level, internalFormat, width, height, format, xtype, pixels)
}

func (d *Device) TexParameteri(target, pname uint32, param int32) {
	d.record("TexParameteri", target, pname, param)
}

func (d *Device) GenRenderbuffer() uint32 {
	name := d.genName()
	d.Renderbuffers[name] = true
	d.record("GenRenderbuffer", name)
	return name
}

func (d *Device) DeleteRenderbuffer(renderbuffer uint32) {
	d.record("DeleteRenderbuffer", renderbuffer)
	delete(d.Renderbuffers, renderbuffer)
}

func (d *Device) BindRenderbuffer(target, renderbuffer uint32) {
	d.record("BindRenderbuffer", target, renderbuffer)
	d.renderbuffer = renderbuffer
}

func (d *Device) RenderbufferStorage(target, internalFormat uint32, width, height int32) {
	d.record("RenderbufferStorage", target, internalFormat, width, height)
}

func (d *Device) GenFramebuffer() uint32 {
	name := d.genName()
	d.Framebuffers[name] = &Framebuffer{}
	d.record("GenFramebuffer", name)
	return name
}

func (d *Device) DeleteFramebuffer(framebuffer uint32) {
	d.record("DeleteFramebuffer", framebuffer)
	delete(d.Framebuffers, framebuffer)
}

func (d *Device) BindFramebuffer(target, framebuffer uint32) {
	d.record("BindFramebuffer", target, framebuffer)
	d.framebuffer = framebuffer
}

func (d *Device) FramebufferTexture2D(target, attachment, textarget, texture uint32, level int32) {
	d.record("FramebufferTexture2D", target, attachment, textarget, texture, level)
	if fb := d.Framebuffers[d.framebuffer]; fb != nil {
		fb.Color = texture
	}
}

func (d *Device) FramebufferRenderbuffer(target, attachment, renderbuffertarget, renderbuffer uint32) {
	d.record("FramebufferRenderbuffer", target, attachment, renderbuffertarget, renderbuffer)
	if fb := d.Framebuffers[d.framebuffer]; fb != nil {
		fb.Depth = renderbuffer
	}
}

func (d *Device) CheckFramebufferStatus(target uint32) uint32 {
	d.record("CheckFramebufferStatus", target)
	return d.FramebufferStatus
}

func (d *Device) GetIntegerv(pname uint32, data []int32) {
	d.record("GetIntegerv", pname)
	switch pname {
	case gfx.FRAMEBUFFER_BINDING:
		data[0] = int32(d.framebuffer)
	case gfx.RENDERBUFFER_BINDING:
		data[0] = int32(d.renderbuffer)
	case gfx.VIEWPORT:
		copy(data, d.ViewportRect[:])
	default:
		panic(fmt.Sprintf("gltrace: GetIntegerv(%#x) is not simulated", pname))
	}
}

func (d *Device) GetFloatv(pname uint32, data []float32) {
	d.record("GetFloatv", pname)
	switch pname {
	case gfx.COLOR_CLEAR_VALUE:
		copy(data, d.ClearColorValue[:])
	default:
		panic(fmt.Sprintf("gltrace: GetFloatv(%#x) is not simulated", pname))
	}
}

func (d *Device) Viewport(x, y, width, height int32) {
	d.record("Viewport", x, y, width, height)
	d.ViewportRect = [4]int32{x, y, width, height}
}

func (d *Device) ClearColor(r, g, b, a float32) {
	d.record("ClearColor", r, g, b, a)
	d.ClearColorValue = [4]float32{r, g, b, a}
}

func (d *Device) Clear(mask uint32) { d.record("Clear", mask) }

func (d *Device) Enable(capability uint32) {
	d.record("Enable", capability)
	d.caps[capability] = true
}

func (d *Device) Disable(capability uint32) {
	d.record("Disable", capability)
	d.caps[capability] = false
}

func (d *Device) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha uint32) {
	d.record("BlendFuncSeparate", srcRGB, dstRGB, srcAlpha, dstAlpha)
	d.blendFunc = [4]uint32{srcRGB, dstRGB, srcAlpha, dstAlpha}
}

func (d *Device) CullFace(mode uint32) {
	d.record("CullFace", mode)
	d.cullFaceMode = mode
}

func (d *Device) DrawElements(mode uint32, count int32, xtype uint32, offset uintptr) {
	d.record("DrawElements", mode, count, xtype, offset)

	draw := Draw{
		Framebuffer:  d.framebuffer,
		Program:      d.CurrentProgram,
		Count:        count,
		Offset:       offset,
		Blend:        d.caps[gfx.BLEND],
		BlendFunc:    d.blendFunc,
		Cull:         d.caps[gfx.CULL_FACE],
		Textures:     [2]uint32{d.units[gfx.TEXTURE0], d.units[gfx.TEXTURE1]},
		Uniforms:     make(map[string]interface{}),
		CallPosition: len(d.Calls) - 1,
	}
	if p := d.Programs[d.CurrentProgram]; p != nil {
		for name, v := range p.Uniforms {
			draw.Uniforms[name] = v
		}
	}
	if xtype == gfx.UNSIGNED_SHORT {
		if eb := d.boundBuffer(gfx.ELEMENT_ARRAY_BUFFER); eb != nil {
			end := int(offset) + int(count)*2
			if end > len(eb.Data) {
				panic(fmt.Sprintf("gltrace: DrawElements reads past element buffer (%d > %d)", end, len(eb.Data)))
			}
			draw.Indices = make([]uint16, count)
			for i := range draw.Indices {
				draw.Indices[i] = binary.LittleEndian.Uint16(eb.Data[int(offset)+i*2:])
			}
		}
	}
	d.Draws = append(d.Draws, draw)
}
