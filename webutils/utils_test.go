package webutils

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, errors.New("bad drawable"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("code %d", w.Code)
	}
	var body jError
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Error != "bad drawable" {
		t.Errorf("body %q (%v)", w.Body.String(), err)
	}
}

func TestWriteJsonFile(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJsonFile(w, map[string]int{"a": 1}, "layout")
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="layout.json"`) {
		t.Errorf("Content-Disposition %q", cd)
	}
	if !strings.Contains(w.Body.String(), `"a": 1`) {
		t.Errorf("body %q", w.Body.String())
	}
}

func TestReadFormFile(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("data", "model.yaml")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("drawables: []\n"))
	mw.Close()

	r := httptest.NewRequest("POST", "/upload/model", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	data, name, err := ReadFormFile(r, "data")
	if err != nil {
		t.Fatal(err)
	}
	if name != "model.yaml" || string(data) != "drawables: []\n" {
		t.Errorf("got %q %q", name, data)
	}

	if _, _, err := ReadFormFile(httptest.NewRequest("GET", "/upload/model", nil), "data"); err == nil {
		t.Error("GET accepted")
	}
}
