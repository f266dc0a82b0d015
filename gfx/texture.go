package gfx

import (
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// LoadImage decodes a png, jpeg, bmp or tiff file.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open texture")
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to decode texture %q", path)
	}
	return img, nil
}

// SolidImage is a 1x1 image of colour c.
func SolidImage(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, c)
	return img
}

// UploadImage creates a linear filtered, edge clamped RGBA8 texture.
// The TEXTURE_2D binding of the active unit is reset to 0.
func UploadImage(dev Device, img image.Image) uint32 {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	texture := dev.GenTexture()
	dev.BindTexture(TEXTURE_2D, texture)
	dev.TexParameteri(TEXTURE_2D, TEXTURE_MIN_FILTER, LINEAR)
	dev.TexParameteri(TEXTURE_2D, TEXTURE_MAG_FILTER, LINEAR)
	dev.TexParameteri(TEXTURE_2D, TEXTURE_WRAP_S, CLAMP_TO_EDGE)
	dev.TexParameteri(TEXTURE_2D, TEXTURE_WRAP_T, CLAMP_TO_EDGE)
	dev.TexImage2D(TEXTURE_2D, 0, RGBA8, int32(bounds.Dx()), int32(bounds.Dy()), RGBA, UNSIGNED_BYTE, rgba.Pix)
	dev.BindTexture(TEXTURE_2D, 0)
	return texture
}
