package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mogaika/cubism_renderer/config"
	"github.com/mogaika/cubism_renderer/render"
	"github.com/mogaika/cubism_renderer/utils"
)

func TestDecode(t *testing.T) {
	cfg, err := config.Decode(strings.NewReader(`
window: {width: 640, height: 480}
profile: gles20
mask_size: 256
clear_color: [0, 0.5, 1, 1]
random: {seed: 9, drawables: 4}
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Window.Width != 640 || cfg.Window.Height != 480 || cfg.Window.Title != "cubism" {
		t.Errorf("window %+v", cfg.Window)
	}
	if cfg.ClearColor != (utils.ColorFloat{0, 0.5, 1, 1}) {
		t.Errorf("clear colour %v", cfg.ClearColor)
	}
	if cfg.Listen != ":8000" || cfg.FrameRate != 30 {
		t.Errorf("defaults lost: listen %q frame rate %d", cfg.Listen, cfg.FrameRate)
	}

	opts, err := cfg.RenderOptions(nil)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Profile != render.ProfileGLES20 || opts.MaskSize != 256 {
		t.Errorf("options %+v", opts)
	}

	m, err := cfg.LoadModel()
	if err != nil {
		t.Fatal(err)
	}
	if m.DrawableCount() != 4 {
		t.Errorf("random model has %d drawables", m.DrawableCount())
	}
}

func TestDecodeErrors(t *testing.T) {
	var tests = []string{
		"profile: vulkan\n",
		"window: {width: 0}\n",
		"mask_size: -1\n",
		"frame_rate: 0\n",
		"unknown_key: 1\n",
		"clear_color: [1, 2]\n",
	}
	for _, text := range tests {
		if _, err := config.Decode(strings.NewReader(text)); err == nil {
			t.Errorf("Decode accepted %q", text)
		}
	}
}

func TestLoad(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil || cfg.Window != config.Default().Window {
		t.Fatalf("Load(\"\") = %+v, %v", cfg, err)
	}

	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.yml")
	model := "drawables:\n  - id: a\n    positions: [[0, 0], [1, 0], [0, 1]]\n    indices: [0, 1, 2]\n"
	if err := os.WriteFile(modelPath, []byte(model), 0644); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("model: "+modelPath+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err = config.Load(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	m, err := cfg.LoadModel()
	if err != nil {
		t.Fatal(err)
	}
	if m.DrawableCount() != 1 || m.DrawableIds()[0] != "a" {
		t.Errorf("loaded %v", m.DrawableIds())
	}

	cfg.Model = filepath.Join(dir, "model.obj")
	if _, err := cfg.LoadModel(); err == nil {
		t.Error("LoadModel accepted an unknown extension")
	}
	if _, err := config.Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load accepted a missing file")
	}
}
