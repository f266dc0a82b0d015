// Package config holds the settings shared by the tools: window, GL
// profile, model source and the inspector address. It is read from YAML
// and then overridden by command line flags.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/cubism_renderer/cubism/staticmodel"
	"github.com/mogaika/cubism_renderer/render"
	"github.com/mogaika/cubism_renderer/utils"
)

type Window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// RandomModel configures the generated model used when no model path is set.
type RandomModel struct {
	Seed        int64 `yaml:"seed"`
	Drawables   int   `yaml:"drawables"`
	Textures    int   `yaml:"textures"`
	MaskChance  int   `yaml:"mask_chance"`
	OrderSpread int   `yaml:"order_spread"`
}

type Config struct {
	Window   Window `yaml:"window"`
	Profile  string `yaml:"profile"`
	MaskSize int32  `yaml:"mask_size"`

	// Model is a .yaml, .yml, .gltf or .glb file. Empty means a random model.
	Model    string      `yaml:"model"`
	Random   RandomModel `yaml:"random"`
	Textures []string    `yaml:"textures"`

	ClearColor    utils.ColorFloat `yaml:"clear_color"`
	FallbackColor utils.ColorFloat `yaml:"fallback_color"`

	Listen string `yaml:"listen"`
	// FrameRate of the inspector animation.
	FrameRate int `yaml:"frame_rate"`
}

func Default() Config {
	return Config{
		Window:        Window{Width: 1024, Height: 768, Title: "cubism"},
		Profile:       render.ProfileGL33.String(),
		Random:        RandomModel{Seed: 1, Drawables: 16, Textures: 2, MaskChance: 25},
		ClearColor:    utils.ColorFloat{0.1, 0.1, 0.1, 1},
		FallbackColor: utils.ColorFloat{1, 1, 1, 1},
		Listen:        ":8000",
		FrameRate:     30,
	}
}

// Decode reads YAML over the defaults. Unknown keys are errors.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return cfg, errors.Wrapf(err, "Failed to decode config")
	}
	return cfg, cfg.Validate()
}

// Load is Decode on a file. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), errors.Wrapf(err, "Failed to read config")
	}
	cfg, err := Decode(bytes.NewReader(data))
	return cfg, errors.Wrapf(err, "Config %q", path)
}

func (c Config) Validate() error {
	if _, err := render.ParseProfile(c.Profile); err != nil {
		return err
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Errorf("Invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.MaskSize < 0 {
		return errors.Errorf("Invalid mask size %d", c.MaskSize)
	}
	if c.FrameRate <= 0 {
		return errors.Errorf("Invalid frame rate %d", c.FrameRate)
	}
	return nil
}

// RenderOptions converts the GL settings to renderer options.
func (c Config) RenderOptions(logSink func(string)) (render.Options, error) {
	profile, err := render.ParseProfile(c.Profile)
	if err != nil {
		return render.Options{}, err
	}
	return render.Options{Profile: profile, MaskSize: c.MaskSize, Log: logSink}, nil
}

// LoadModel picks the loader by file extension.
func (c Config) LoadModel() (*staticmodel.Model, error) {
	if c.Model == "" {
		return staticmodel.Random(c.Random.Seed, staticmodel.RandomOptions{
			Drawables:   c.Random.Drawables,
			Textures:    c.Random.Textures,
			MaskChance:  c.Random.MaskChance,
			OrderSpread: c.Random.OrderSpread,
		}), nil
	}
	switch strings.ToLower(filepath.Ext(c.Model)) {
	case ".yaml", ".yml":
		return staticmodel.LoadYAML(c.Model)
	case ".gltf", ".glb":
		return staticmodel.LoadGLTF(c.Model)
	default:
		return nil, errors.Errorf("Unknown model format %q", c.Model)
	}
}
