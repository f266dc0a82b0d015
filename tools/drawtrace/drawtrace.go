package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/cubism_renderer/config"
	"github.com/mogaika/cubism_renderer/cubism/staticmodel"
	"github.com/mogaika/cubism_renderer/gfx"
	"github.com/mogaika/cubism_renderer/gfx/gltrace"
	"github.com/mogaika/cubism_renderer/render"
	"github.com/mogaika/cubism_renderer/utils"
	"github.com/mogaika/cubism_renderer/utils/gltfutils"
)

func export(m *staticmodel.Model, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return staticmodel.EncodeYAML(f, m)
	case ".glb":
		return gltfutils.ExportBinary(f, staticmodel.ToGLTF(m))
	case ".gltf":
		return gltfutils.Encode(f, staticmodel.ToGLTF(m), false)
	default:
		return fmt.Errorf("Unknown export format %q", path)
	}
}

func main() {
	var cfgPath, modelPath, profile, exportPath string
	var frames, textures int
	var seed int64
	var dump, quiet bool
	flag.StringVar(&cfgPath, "config", "", "Path to yaml config")
	flag.StringVar(&modelPath, "model", "", "Model file (.yaml, .gltf, .glb), random model if empty")
	flag.StringVar(&profile, "profile", "", "GL profile override: gl33 or gles20")
	flag.IntVar(&frames, "frames", 1, "Animated frames to trace after the first one")
	flag.IntVar(&textures, "textures", 0, "Textures to bind, 0 - as many as the model uses")
	flag.Int64Var(&seed, "seed", 0, "Random model seed override")
	flag.BoolVar(&dump, "dump", false, "Dump renderer tables after the last frame")
	flag.BoolVar(&quiet, "q", false, "Print only frame stats")
	flag.StringVar(&exportPath, "export", "", "Write the final model pose to .yaml, .gltf or .glb")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if modelPath != "" {
		cfg.Model = modelPath
	}
	if profile != "" {
		cfg.Profile = profile
	}
	if seed != 0 {
		cfg.Random.Seed = seed
	}

	m, err := cfg.LoadModel()
	if err != nil {
		log.Fatal(err)
	}
	opts, err := cfg.RenderOptions(nil)
	if err != nil {
		log.Fatal(err)
	}

	dev := gltrace.New()
	res := render.NewResources(dev, opts)

	log.Printf("[cubism] %d drawables, renderer needs %d bytes", m.DrawableCount(), render.SizeOf(m))
	rn, err := res.NewRenderer(m, render.NewBlockFor(m))
	if err != nil {
		log.Fatal(err)
	}
	defer rn.Release()

	if textures == 0 {
		for _, t := range m.DrawableTextureIndices() {
			if int(t)+1 > textures {
				textures = int(t) + 1
			}
		}
	}
	textureNames := make([]uint32, textures)
	for i := range textureNames {
		c := cfg.FallbackColor
		textureNames[i] = gfx.UploadImage(dev, gfx.SolidImage(&c))
	}

	mvp := mgl32.Ortho2D(-1, 1, -1, 1)
	anim := staticmodel.NewAnimator(m)
	for frame := 0; frame <= frames; frame++ {
		if frame != 0 {
			anim.Step(uint64(frame))
		}
		dev.Reset()
		if err := rn.Update(); err != nil {
			log.Fatal(err)
		}
		if err := rn.Draw(mvp, textureNames); err != nil {
			log.Fatal(err)
		}
		m.ResetDynamicFlags()

		if !quiet {
			fmt.Printf("# frame %d\n%s", frame, dev.String())
		}
		fmt.Printf("# frame %d stats %+v\n", frame, rn.LastDrawStats())
	}

	if dump {
		utils.Dump(rn.Drawables(), rn.SortedDrawables())
	}
	if exportPath != "" {
		if err := export(m, exportPath); err != nil {
			log.Fatal(err)
		}
	}
}
