package render_test

import (
	"strings"
	"testing"

	"github.com/mogaika/cubism_renderer/gfx"
	"github.com/mogaika/cubism_renderer/render"
)

func TestMaskbufferActivation(t *testing.T) {
	env := newEnv(render.ProfileGL33)
	if err := env.res.RequireMaskbuffer(); err != nil {
		t.Fatal(err)
	}
	defer env.res.UnrequireMaskbuffer()

	env.dev.BindFramebuffer(gfx.FRAMEBUFFER, 77)
	env.dev.Viewport(10, 20, 300, 200)
	env.dev.ClearColor(0.1, 0.2, 0.3, 0.4)

	env.res.ActivateMaskbuffer()
	if env.dev.BoundFramebuffer() != env.res.MaskFramebuffer() {
		t.Errorf("bound framebuffer %d; expected mask framebuffer %d", env.dev.BoundFramebuffer(), env.res.MaskFramebuffer())
	}
	if env.dev.ViewportRect != [4]int32{0, 0, 2048, 2048} {
		t.Errorf("mask viewport %v", env.dev.ViewportRect)
	}
	if env.dev.ClearColorValue != [4]float32{0.1, 0.2, 0.3, 0.4} {
		t.Errorf("clear colour %v; expected every channel restored", env.dev.ClearColorValue)
	}
	if env.dev.Count("Clear") != 1 {
		t.Errorf("Clear called %d times", env.dev.Count("Clear"))
	}

	texture := env.res.DeactivateMaskbuffer()
	if texture == 0 || texture != env.res.MaskTexture() {
		t.Errorf("Deactivate returned texture %d; expected %d", texture, env.res.MaskTexture())
	}
	if env.dev.BoundFramebuffer() != 77 {
		t.Errorf("framebuffer %d after Deactivate; expected 77", env.dev.BoundFramebuffer())
	}
	if env.dev.ViewportRect != [4]int32{10, 20, 300, 200} {
		t.Errorf("viewport %v after Deactivate", env.dev.ViewportRect)
	}
}

func TestMaskbufferProfiles(t *testing.T) {
	var tests = []struct {
		profile  render.Profile
		maskSize int32
		wantSize int32
		depth    uint32
	}{
		{render.ProfileGL33, 0, 2048, gfx.DEPTH_COMPONENT},
		{render.ProfileGLES20, 0, 1024, gfx.DEPTH_COMPONENT16},
		{render.ProfileGL33, 512, 512, gfx.DEPTH_COMPONENT},
	}
	for _, test := range tests {
		env := newEnv(test.profile)
		env.res = render.NewResources(env.dev, render.Options{Profile: test.profile, MaskSize: test.maskSize})
		if err := env.res.RequireMaskbuffer(); err != nil {
			t.Fatal(err)
		}
		if env.res.MaskSize() != test.wantSize {
			t.Errorf("%v: mask size %d; expected %d", test.profile, env.res.MaskSize(), test.wantSize)
		}
		for _, c := range env.dev.Calls {
			if c.Name == "RenderbufferStorage" && c.Args[1] != test.depth {
				t.Errorf("%v: depth format %v; expected %#x", test.profile, c.Args[1], test.depth)
			}
		}
		env.res.UnrequireMaskbuffer()
	}
}

func TestMaskbufferIncomplete(t *testing.T) {
	env := newEnv(render.ProfileGL33)
	env.dev.FramebufferStatus = 0

	m := mustModel(t, quad("a", 0))
	if _, err := env.res.NewRenderer(m, render.NewBlockFor(m)); err == nil {
		t.Fatal("NewRenderer succeeded with an incomplete mask framebuffer")
	}
	if env.res.MaskbufferRefs() != 0 || env.res.ProgramRefs() != 0 {
		t.Errorf("refs after failure: programs %d mask %d", env.res.ProgramRefs(), env.res.MaskbufferRefs())
	}
	if len(env.dev.Framebuffers) != 0 || len(env.dev.Programs) != 0 || len(env.dev.Buffers) != 0 {
		t.Errorf("leaked %d framebuffers, %d programs, %d buffers",
			len(env.dev.Framebuffers), len(env.dev.Programs), len(env.dev.Buffers))
	}
}

func TestProgramCompileFailure(t *testing.T) {
	env := newEnv(render.ProfileGL33)
	env.dev.FailCompile = true

	if err := env.res.RequirePrograms(); err == nil || !strings.Contains(err.Error(), "failed to compile shader") {
		t.Fatalf("err = %v", err)
	}
	if env.res.ProgramRefs() != 0 {
		t.Errorf("ProgramRefs() = %d after failure", env.res.ProgramRefs())
	}
	if len(env.dev.Programs) != 0 {
		t.Errorf("%d programs leaked", len(env.dev.Programs))
	}
}

func TestProgramLinkFailure(t *testing.T) {
	env := newEnv(render.ProfileGL33)
	env.dev.FailLink = true

	if err := env.res.RequirePrograms(); err == nil || !strings.Contains(err.Error(), "failed to link program") {
		t.Fatalf("err = %v", err)
	}
	if len(env.dev.Programs) != 0 {
		t.Errorf("%d programs leaked", len(env.dev.Programs))
	}
}

func TestPrograms(t *testing.T) {
	for _, profile := range []render.Profile{render.ProfileGL33, render.ProfileGLES20} {
		env := newEnv(profile)
		if err := env.res.RequirePrograms(); err != nil {
			t.Fatal(err)
		}

		mask := env.res.ProgramHandle(render.MaskProgram)
		nonMasked := env.res.ProgramHandle(render.NonMaskedProgram)
		masked := env.res.ProgramHandle(render.MaskedProgram)
		if mask != nonMasked || masked == nonMasked || masked == 0 {
			t.Errorf("%v: programs mask %d non-masked %d masked %d", profile, mask, nonMasked, masked)
		}

		for _, id := range []uint32{nonMasked, masked} {
			p := env.dev.Programs[id]
			if p.AttribLocations["VertexPosition"] != render.VertexPositionLocation || p.AttribLocations["VertexUv"] != render.VertexUvLocation {
				t.Errorf("%v: program %d attribute locations %v", profile, id, p.AttribLocations)
			}
		}

		for _, c := range env.dev.Calls {
			if c.Name != "ShaderSource" {
				continue
			}
			source := c.Args[1].(string)
			if hasVersion := strings.HasPrefix(source, "#version 330"); hasVersion != (profile == render.ProfileGL33) {
				t.Errorf("%v: shader source starts with %q", profile, strings.SplitN(source, "\n", 2)[0])
			}
		}

		env.res.ActivateProgram(render.MaskedProgram)
		if env.dev.CurrentProgram != masked {
			t.Errorf("%v: current program %d; expected %d", profile, env.dev.CurrentProgram, masked)
		}
		env.res.SetOpacity(0.5)
		if got := env.dev.Programs[masked].Uniforms["Opacity"]; got != float32(0.5) {
			t.Errorf("%v: Opacity uniform %v", profile, got)
		}

		env.res.UnrequirePrograms()
		logged := len(env.logs)
		env.res.UnrequirePrograms()
		if len(env.logs) != logged+1 || env.res.ProgramRefs() != 0 {
			t.Errorf("%v: unbalanced UnrequirePrograms: refs %d logs %q", profile, env.res.ProgramRefs(), env.logs[logged:])
		}
	}
}

func TestParseProfile(t *testing.T) {
	var tests = []struct {
		in   string
		out  render.Profile
		fail bool
	}{
		{"", render.ProfileGL33, false},
		{"gl33", render.ProfileGL33, false},
		{"gles20", render.ProfileGLES20, false},
		{"vulkan", 0, true},
	}
	for _, test := range tests {
		p, err := render.ParseProfile(test.in)
		if (err != nil) != test.fail || (!test.fail && p != test.out) {
			t.Errorf("ParseProfile(%q) = %v, %v", test.in, p, err)
		}
		if !test.fail && p.String() != test.in && test.in != "" {
			t.Errorf("%v.String() = %q; expected %q", p, p.String(), test.in)
		}
	}
}
