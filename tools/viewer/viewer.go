package main

import (
	"flag"
	"log"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/cubism_renderer/config"
	"github.com/mogaika/cubism_renderer/cubism/staticmodel"
	"github.com/mogaika/cubism_renderer/gfx"
	"github.com/mogaika/cubism_renderer/gfx/glcore"
	"github.com/mogaika/cubism_renderer/render"
)

func init() {
	// GL calls have to come from the thread that created the context
	runtime.LockOSThread()
}

func loadTextures(dev gfx.Device, cfg config.Config, m *staticmodel.Model) ([]uint32, error) {
	textures := make([]uint32, 0, len(cfg.Textures))
	for _, path := range cfg.Textures {
		img, err := gfx.LoadImage(path)
		if err != nil {
			return nil, err
		}
		textures = append(textures, gfx.UploadImage(dev, img))
	}
	for _, t := range m.DrawableTextureIndices() {
		for int(t) >= len(textures) {
			c := cfg.FallbackColor
			textures = append(textures, gfx.UploadImage(dev, gfx.SolidImage(&c)))
		}
	}
	return textures, nil
}

type viewer struct {
	zoom   float32
	paused bool
	width  int
	height int
}

func (v *viewer) mvp() mgl32.Mat4 {
	aspect := float32(v.width) / float32(v.height)
	return mgl32.Ortho2D(-aspect, aspect, -1, 1).Mul4(mgl32.Scale3D(v.zoom, v.zoom, 1))
}

func main() {
	var cfgPath, modelPath string
	var debug bool
	flag.StringVar(&cfgPath, "config", "", "Path to yaml config")
	flag.StringVar(&modelPath, "model", "", "Model file (.yaml, .gltf, .glb), random model if empty")
	flag.BoolVar(&debug, "debug", false, "Log GL debug output")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if modelPath != "" {
		cfg.Model = modelPath
	}
	m, err := cfg.LoadModel()
	if err != nil {
		log.Fatal(err)
	}
	opts, err := cfg.RenderOptions(nil)
	if err != nil {
		log.Fatal(err)
	}
	if opts.Profile != render.ProfileGL33 {
		log.Fatalf("viewer supports only the gl33 profile, got %v", opts.Profile)
	}

	if err := glfw.Init(); err != nil {
		log.Fatal(err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		log.Fatal(err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	dev, err := glcore.New()
	if err != nil {
		log.Fatal(err)
	}
	if debug {
		dev.EnableDebugOutput()
	}

	textures, err := loadTextures(dev, cfg, m)
	if err != nil {
		log.Fatal(err)
	}

	res := render.NewResources(dev, opts)
	rn, err := res.NewRenderer(m, render.NewBlockFor(m))
	if err != nil {
		log.Fatal(err)
	}
	defer rn.Release()

	v := &viewer{zoom: 1}
	v.width, v.height = window.GetFramebufferSize()
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		v.width, v.height = width, height
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeySpace:
			v.paused = !v.paused
		case glfw.Key0:
			v.zoom = 1
		}
	})
	window.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		v.zoom = mgl32.Clamp(v.zoom*(1+float32(yoff)*0.1), 0.1, 10)
	})

	anim := staticmodel.NewAnimator(m)
	clearColor := cfg.ClearColor
	var frame uint64
	lastReport := time.Now()
	for !window.ShouldClose() {
		glfw.PollEvents()

		if !v.paused {
			frame++
			anim.Step(frame)
		}
		if err := rn.Update(); err != nil {
			log.Fatal(err)
		}

		dev.Viewport(0, 0, int32(v.width), int32(v.height))
		dev.ClearColor(clearColor[0], clearColor[1], clearColor[2], clearColor[3])
		dev.Clear(gfx.COLOR_BUFFER_BIT | gfx.DEPTH_BUFFER_BIT)
		if err := rn.Draw(v.mvp(), textures); err != nil {
			log.Fatal(err)
		}
		m.ResetDynamicFlags()

		window.SwapBuffers()

		if time.Since(lastReport) > time.Second*5 {
			lastReport = time.Now()
			log.Printf("[viewer] frame %d %+v", frame, rn.LastDrawStats())
		}
	}
}
