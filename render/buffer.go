package render

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/cubism_renderer/gfx"
)

const (
	sizeofVertex = int(unsafe.Sizeof(mgl32.Vec2{}))
	sizeofIndex  = int(unsafe.Sizeof(uint16(0)))
)

// Buffer is a single GL buffer object. Write does not check bounds,
// out of range writes are left to the driver.
type Buffer struct {
	dev    gfx.Device
	Target uint32
	Handle uint32
	Size   int
}

func makeBuffer(dev gfx.Device, target uint32, size int, usage uint32) Buffer {
	b := Buffer{dev: dev, Target: target, Size: size}
	b.Handle = dev.GenBuffer()
	dev.BindBuffer(target, b.Handle)
	dev.BufferData(target, size, usage)
	dev.BindBuffer(target, 0)
	return b
}

// MakeStaticBuffer allocates size uninitialized bytes written once.
func MakeStaticBuffer(dev gfx.Device, target uint32, size int) Buffer {
	return makeBuffer(dev, target, size, gfx.STATIC_DRAW)
}

// MakeDynamicBuffer allocates size uninitialized bytes rewritten every frame.
func MakeDynamicBuffer(dev gfx.Device, target uint32, size int) Buffer {
	return makeBuffer(dev, target, size, gfx.DYNAMIC_DRAW)
}

func (b *Buffer) Release() {
	if b.Handle != 0 {
		b.dev.DeleteBuffer(b.Handle)
	}
	b.Target = 0
	b.Handle = 0
	b.Size = 0
}

func (b *Buffer) Bind()   { b.dev.BindBuffer(b.Target, b.Handle) }
func (b *Buffer) Unbind() { b.dev.BindBuffer(b.Target, 0) }

// Write updates the buffer at offset bytes. The buffer must be bound.
func (b *Buffer) Write(offset int, data []byte) {
	b.dev.BufferSubData(b.Target, offset, data)
}

func vec2Bytes(v []mgl32.Vec2) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*sizeofVertex)
}

func uint16Bytes(v []uint16) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*sizeofIndex)
}
