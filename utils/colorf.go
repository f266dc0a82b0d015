package utils

// ColorFloat is a straight (not premultiplied) RGBA colour with components in [0, 1].
type ColorFloat [4]float32

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// RGBA implements color.Color.
func (c *ColorFloat) RGBA() (r, g, b, a uint32) {
	const mf = float32(256*256 - 1)
	alpha := clamp01(c[3])
	r = uint32(clamp01(c[0]) * alpha * mf)
	g = uint32(clamp01(c[1]) * alpha * mf)
	b = uint32(clamp01(c[2]) * alpha * mf)
	a = uint32(alpha * mf)
	return
}

func NewColorFloatA(c []float32) ColorFloat {
	return ColorFloat{c[0], c[1], c[2], c[3]}
}

func NewColorFloat(c []float32) ColorFloat {
	return ColorFloat{c[0], c[1], c[2], 1.0}
}
