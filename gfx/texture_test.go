package gfx_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/mogaika/cubism_renderer/gfx"
	"github.com/mogaika/cubism_renderer/gfx/gltrace"
)

func TestUploadImage(t *testing.T) {
	dev := gltrace.New()
	texture := gfx.UploadImage(dev, gfx.SolidImage(color.RGBA{0x10, 0x20, 0x30, 0xff}))
	if !dev.Textures[texture] {
		t.Fatalf("texture %d was not created", texture)
	}
	if dev.BoundTexture(gfx.TEXTURE0) != 0 {
		t.Error("texture left bound")
	}

	var upload *gltrace.Call
	for i := range dev.Calls {
		if dev.Calls[i].Name == "TexImage2D" {
			upload = &dev.Calls[i]
		}
	}
	if upload == nil {
		t.Fatal("no TexImage2D call")
	}
	if w, h := upload.Args[3].(int32), upload.Args[4].(int32); w != 1 || h != 1 {
		t.Errorf("uploaded %dx%d", w, h)
	}
	if pixels := upload.Args[7].([]byte); !bytes.Equal(pixels, []byte{0x10, 0x20, 0x30, 0xff}) {
		t.Errorf("pixels %v", pixels)
	}
}

func TestUploadImageConvertsSubImages(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.Set(2, 2, color.NRGBA{0xff, 0, 0, 0xff})
	sub := src.SubImage(image.Rect(2, 2, 4, 3))

	dev := gltrace.New()
	gfx.UploadImage(dev, sub)
	for _, c := range dev.Calls {
		if c.Name != "TexImage2D" {
			continue
		}
		pixels := c.Args[7].([]byte)
		if c.Args[3].(int32) != 2 || c.Args[4].(int32) != 1 || len(pixels) != 8 {
			t.Fatalf("upload %v", c)
		}
		if pixels[0] != 0xff || pixels[3] != 0xff || pixels[7] != 0 {
			t.Errorf("pixels %v", pixels)
		}
	}
}

func TestLoadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "white.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, gfx.SolidImage(color.White)); err != nil {
		t.Fatal(err)
	}
	f.Close()

	img, err := gfx.LoadImage(path)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 1 {
		t.Errorf("bounds %v", img.Bounds())
	}
	if _, err := gfx.LoadImage(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("LoadImage accepted a missing file")
	}
}
