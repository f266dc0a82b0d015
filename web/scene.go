package web

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/cubism_renderer/cubism/staticmodel"
	"github.com/mogaika/cubism_renderer/gfx"
	"github.com/mogaika/cubism_renderer/gfx/gltrace"
	"github.com/mogaika/cubism_renderer/render"
	"github.com/mogaika/cubism_renderer/status"
	"github.com/mogaika/cubism_renderer/utils"
)

// Scene is what the inspector serves: a model, its renderer on the trace
// device and the GL calls of the last frame. Handlers and the animation
// loop share it through the embedded mutex.
type Scene struct {
	sync.Mutex

	Resources *render.Resources
	Device    *gltrace.Device
	Model     *staticmodel.Model
	Renderer  *render.Renderer
	Animator  *staticmodel.Animator
	Textures  []uint32
	Mvp       mgl32.Mat4
	Status    *status.Hub

	// Paused stops the animation, Step still draws.
	Paused bool

	fallback utils.ColorFloat
	frame    uint64
	calls    []gltrace.Call
	draws    []gltrace.Draw
	stats    render.DrawStats
	lastErr  error
}

func NewScene(dev *gltrace.Device, opts render.Options, model *staticmodel.Model, fallback utils.ColorFloat) (*Scene, error) {
	s := &Scene{
		Resources: render.NewResources(dev, opts),
		Device:    dev,
		Mvp:       mgl32.Ident4(),
		fallback:  fallback,
	}
	if err := s.setModel(model); err != nil {
		return nil, err
	}
	return s, nil
}

// setModel swaps the model. The new renderer is created before the old one
// is released so the shared programs and mask buffer survive the swap.
func (s *Scene) setModel(m *staticmodel.Model) error {
	rn, err := s.Resources.NewRenderer(m, render.NewBlockFor(m))
	if err != nil {
		return err
	}
	if s.Renderer != nil {
		s.Renderer.Release()
	}
	s.Model, s.Renderer = m, rn
	s.Animator = staticmodel.NewAnimator(m)
	s.ensureTextures()
	return nil
}

// ensureTextures creates fallback textures up to the highest index the model uses.
func (s *Scene) ensureTextures() {
	need := 0
	for _, t := range s.Model.DrawableTextureIndices() {
		if int(t)+1 > need {
			need = int(t) + 1
		}
	}
	for len(s.Textures) < need {
		c := s.fallback
		s.Textures = append(s.Textures, gfx.UploadImage(s.Device, gfx.SolidImage(&c)))
	}
}

func (s *Scene) SetModel(m *staticmodel.Model) error {
	s.Lock()
	defer s.Unlock()
	return s.setModel(m)
}

// Step advances the animation by one frame, then updates and draws while
// recording the GL calls.
func (s *Scene) Step() error {
	s.Lock()
	defer s.Unlock()

	if !s.Paused {
		s.frame++
		s.Animator.Step(s.frame)
	}
	return s.draw()
}

func (s *Scene) draw() error {
	s.Device.Reset()
	err := s.Renderer.Update()
	if err == nil {
		err = s.Renderer.Draw(s.Mvp, s.Textures)
	}
	s.Model.ResetDynamicFlags()

	s.calls = append(s.calls[:0], s.Device.Calls...)
	s.draws = append(s.draws[:0], s.Device.Draws...)
	s.stats = s.Renderer.LastDrawStats()
	s.lastErr = err
	if s.Status != nil {
		if err != nil {
			s.Status.Error("frame %d: %v", s.frame, err)
		}
		s.Status.Frame(s.frame, s.stats)
	}
	return err
}

// Frame returns the frame counter and the stats of the last draw.
func (s *Scene) Frame() (uint64, render.DrawStats) {
	s.Lock()
	defer s.Unlock()
	return s.frame, s.stats
}

// Close releases the renderer.
func (s *Scene) Close() {
	s.Lock()
	defer s.Unlock()
	if s.Renderer != nil {
		s.Renderer.Release()
	}
}
