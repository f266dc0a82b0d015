package web

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/mogaika/cubism_renderer/cubism/staticmodel"
	"github.com/mogaika/cubism_renderer/render"
	"github.com/mogaika/cubism_renderer/utils"
	"github.com/mogaika/cubism_renderer/utils/gltfutils"
	"github.com/mogaika/cubism_renderer/webutils"
)

type drawableInfo struct {
	Index    int                   `json:"index"`
	Source   staticmodel.Drawable  `json:"source"`
	Render   render.RenderDrawable `json:"render"`
	Blend    string                `json:"blend"`
	Position int                   `json:"position"`
}

type frameInfo struct {
	Frame  uint64           `json:"frame"`
	Paused bool             `json:"paused"`
	Stats  render.DrawStats `json:"stats"`
	Error  string           `json:"error,omitempty"`
}

type traceInfo struct {
	Calls []string      `json:"calls"`
	Draws []interface{} `json:"draws"`
}

// drawableByParam resolves a drawable id or index. Scene must be locked.
func (s *Scene) drawableByParam(param string) (int, error) {
	if d := s.Model.DrawableIndex(param); d >= 0 {
		return d, nil
	}
	d, err := strconv.Atoi(param)
	if err != nil || d < 0 || d >= s.Model.DrawableCount() {
		return -1, errors.Errorf("Unknown drawable %q", param)
	}
	return d, nil
}

func (s *Scene) infoOf(d int) drawableInfo {
	rd := s.Renderer.Drawables()[d]
	info := drawableInfo{
		Index:    d,
		Source:   s.Model.Drawable(d),
		Render:   rd,
		Blend:    rd.BlendMode.String(),
		Position: -1,
	}
	for i, sd := range s.Renderer.SortedDrawables() {
		if sd.DrawableIndex == d {
			info.Position = i
		}
	}
	return info
}

func (s *Scene) HandlerModel(w http.ResponseWriter, r *http.Request) {
	s.Lock()
	defer s.Unlock()
	infos := make([]drawableInfo, s.Model.DrawableCount())
	for d := range infos {
		infos[d] = s.infoOf(d)
	}
	webutils.WriteJson(w, infos)
}

func (s *Scene) HandlerDrawable(w http.ResponseWriter, r *http.Request) {
	s.Lock()
	defer s.Unlock()
	d, err := s.drawableByParam(mux.Vars(r)["drawable"])
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, s.infoOf(d))
}

func (s *Scene) HandlerLayout(w http.ResponseWriter, r *http.Request) {
	s.Lock()
	defer s.Unlock()
	webutils.WriteJson(w, s.Renderer.Drawables())
}

func (s *Scene) HandlerOrder(w http.ResponseWriter, r *http.Request) {
	s.Lock()
	defer s.Unlock()
	webutils.WriteJson(w, s.Renderer.SortedDrawables())
}

func (s *Scene) HandlerFrame(w http.ResponseWriter, r *http.Request) {
	s.Lock()
	defer s.Unlock()
	info := frameInfo{Frame: s.frame, Paused: s.Paused, Stats: s.stats}
	if s.lastErr != nil {
		info.Error = s.lastErr.Error()
	}
	webutils.WriteJson(w, info)
}

func (s *Scene) HandlerTrace(w http.ResponseWriter, r *http.Request) {
	s.Lock()
	defer s.Unlock()
	trace := traceInfo{
		Calls: make([]string, len(s.calls)),
		Draws: make([]interface{}, len(s.draws)),
	}
	for i, c := range s.calls {
		trace.Calls[i] = c.String()
	}
	for i, d := range s.draws {
		trace.Draws[i] = d
	}
	webutils.WriteJson(w, trace)
}

// HandlerActionDrawable changes one drawable: /action/drawable/{drawable}/{action}?value=
// with action one of opacity, visible, order, move (value "x,y").
func (s *Scene) HandlerActionDrawable(w http.ResponseWriter, r *http.Request) {
	s.Lock()
	defer s.Unlock()
	d, err := s.drawableByParam(mux.Vars(r)["drawable"])
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	if err := s.applyAction(d, mux.Vars(r)["action"], r.FormValue("value")); err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, s.infoOf(d))
}

func (s *Scene) applyAction(d int, action, value string) error {
	switch action {
	case "opacity":
		f, err := strconv.ParseFloat(value, 32)
		if err != nil || f < 0 || f > 1 {
			return errors.Errorf("Invalid opacity %q", value)
		}
		s.Model.SetOpacity(d, float32(f))
	case "visible":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Wrapf(err, "Invalid visibility")
		}
		s.Model.SetVisible(d, b)
	case "order":
		o, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return errors.Wrapf(err, "Invalid render order")
		}
		s.Model.SetRenderOrder(d, int32(o))
	case "move":
		var x, y float32
		if _, err := fmt.Sscanf(value, "%g,%g", &x, &y); err != nil {
			return errors.Wrapf(err, "Invalid offset %q", value)
		}
		s.Model.TranslateVertices(d, mgl32.Vec2{x, y})
	default:
		return errors.Errorf("Unknown action %q", action)
	}
	// redraw so the trace reflects the change right away
	return s.draw()
}

// HandlerActionScene handles /action/scene/{action}: pause, resume and step.
func (s *Scene) HandlerActionScene(w http.ResponseWriter, r *http.Request) {
	action := mux.Vars(r)["action"]
	switch action {
	case "pause", "resume":
		s.Lock()
		s.Paused = action == "pause"
		s.Unlock()
	case "step":
		s.Lock()
		s.frame++
		s.Animator.Step(s.frame)
		err := s.draw()
		s.Unlock()
		if err != nil {
			webutils.WriteError(w, err)
			return
		}
	default:
		webutils.WriteError(w, errors.Errorf("Unknown action %q", action))
		return
	}
	s.HandlerFrame(w, r)
}

// HandlerDump writes the model as a file: model.yaml, model.glb or state.txt.
func (s *Scene) HandlerDump(w http.ResponseWriter, r *http.Request) {
	s.Lock()
	defer s.Unlock()
	file := mux.Vars(r)["file"]

	var buf bytes.Buffer
	switch file {
	case "model.yaml":
		if err := staticmodel.EncodeYAML(&buf, s.Model); err != nil {
			webutils.WriteError(w, err)
			return
		}
	case "model.glb":
		if err := gltfutils.ExportBinary(&buf, staticmodel.ToGLTF(s.Model)); err != nil {
			webutils.WriteError(w, err)
			return
		}
	case "state.txt":
		buf.WriteString(utils.SDumpShallow(3, s.Renderer.Drawables(), s.Renderer.SortedDrawables(), s.stats))
	default:
		webutils.WriteError(w, errors.Errorf("Unknown dump %q", file))
		return
	}
	webutils.WriteFile(w, &buf, file)
}

// HandlerUploadModel replaces the model with a posted .yaml or .glb/.gltf file.
func (s *Scene) HandlerUploadModel(w http.ResponseWriter, r *http.Request) {
	data, name, err := webutils.ReadFormFile(r, "data")
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	m, err := decodeModel(data, name)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	s.Lock()
	defer s.Unlock()
	if err := s.setModel(m); err != nil {
		webutils.WriteError(w, err)
		return
	}
	if err := s.draw(); err != nil {
		webutils.WriteError(w, err)
		return
	}
	if s.Status != nil {
		s.Status.Info("loaded %q: %d drawables", name, m.DrawableCount())
	}
	webutils.WriteJson(w, s.Model.DrawableIds())
}

func decodeModel(data []byte, name string) (*staticmodel.Model, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return staticmodel.DecodeYAML(bytes.NewReader(data))
	case ".glb", ".gltf":
		doc, err := gltfutils.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrapf(err, "Model %q", name)
		}
		return staticmodel.FromGLTF(doc)
	default:
		return nil, errors.Errorf("Unknown model format %q", name)
	}
}
