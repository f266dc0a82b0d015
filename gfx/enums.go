package gfx

// OpenGL enum values, copied from the Khronos registry so that code
// depending on gfx does not need cgo.
const (
	FALSE = 0
	TRUE  = 1

	ZERO                = 0
	ONE                 = 1
	SRC_ALPHA           = 0x0302
	ONE_MINUS_SRC_ALPHA = 0x0303
	DST_COLOR           = 0x0306

	ARRAY_BUFFER         = 0x8892
	ELEMENT_ARRAY_BUFFER = 0x8893
	STATIC_DRAW          = 0x88E4
	DYNAMIC_DRAW         = 0x88E8

	FLOAT          = 0x1406
	UNSIGNED_BYTE  = 0x1401
	UNSIGNED_SHORT = 0x1403

	TRIANGLES = 0x0004

	VERTEX_SHADER   = 0x8B31
	FRAGMENT_SHADER = 0x8B30

	TEXTURE_2D         = 0x0DE1
	TEXTURE0           = 0x84C0
	TEXTURE1           = 0x84C1
	TEXTURE_WRAP_S     = 0x2802
	TEXTURE_WRAP_T     = 0x2803
	TEXTURE_MAG_FILTER = 0x2800
	TEXTURE_MIN_FILTER = 0x2801
	CLAMP_TO_EDGE      = 0x812F
	LINEAR             = 0x2601
	RGBA               = 0x1908
	RGBA8              = 0x8058

	RENDERBUFFER         = 0x8D41
	DEPTH_COMPONENT      = 0x1902
	DEPTH_COMPONENT16    = 0x81A5
	FRAMEBUFFER          = 0x8D40
	COLOR_ATTACHMENT0    = 0x8CE0
	DEPTH_ATTACHMENT     = 0x8D00
	FRAMEBUFFER_COMPLETE = 0x8CD5

	FRAMEBUFFER_BINDING  = 0x8CA6
	RENDERBUFFER_BINDING = 0x8CA7
	VIEWPORT             = 0x0BA2
	COLOR_CLEAR_VALUE    = 0x0C22

	COLOR_BUFFER_BIT = 0x00004000
	DEPTH_BUFFER_BIT = 0x00000100

	BLEND     = 0x0BE2
	CULL_FACE = 0x0B44
	BACK      = 0x0405
)
