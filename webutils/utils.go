package webutils

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// MaxUploadSize bounds files accepted by ReadFormFile.
const MaxUploadSize = 64 << 20

func WriteFileHeaders(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+name+"\"")
}

func WriteFile(w http.ResponseWriter, in io.Reader, name string) {
	WriteFileHeaders(w, name)
	if _, err := io.Copy(w, in); err != nil {
		log.Printf("[web] Error when writing file %q: %v", name, err)
	}
}

func WriteJson(w http.ResponseWriter, data interface{}) {
	res, err := json.Marshal(data)
	if err != nil {
		WriteError(w, errors.Wrapf(err, "Failed to marshal"))
	} else {
		w.Header().Set("Content-Type", "application/json")
		WriteResult(w, res)
	}
}

func WriteJsonFile(w http.ResponseWriter, v interface{}, fileName string) {
	if data, err := json.MarshalIndent(v, "", "  "); err != nil {
		WriteError(w, errors.Wrapf(err, "Failed to marshal"))
	} else {
		WriteFile(w, bytes.NewReader(data), fileName+".json")
	}
}

func WriteText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	WriteResult(w, []byte(text))
}

// ReadFormFile returns the content and the client side name of an uploaded file.
func ReadFormFile(r *http.Request, formFileKey string) ([]byte, string, error) {
	if strings.ToUpper(r.Method) != "POST" {
		return nil, "", errors.Errorf("Invalid http method %q", r.Method)
	}
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		return nil, "", errors.Wrapf(err, "Failed to parse form")
	}

	f, header, err := r.FormFile(formFileKey)
	if err != nil {
		return nil, "", errors.Wrapf(err, "Failed to get file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxUploadSize))
	if err != nil {
		return nil, "", errors.Wrapf(err, "Failed to read")
	}
	return data, header.Filename, nil
}

func WriteResult(w http.ResponseWriter, data []byte) {
	_, err := w.Write(data)
	if err != nil {
		log.Printf("[web] Error when writing response: %v", err)
	}
}

type jError struct {
	Error string `json:"error"`
}

// WriteError answers with 400 and a json body {"error": "..."}.
func WriteError(w http.ResponseWriter, err error) {
	data, merr := json.Marshal(&jError{Error: err.Error()})
	if merr != nil {
		log.Printf("[web] Error marshaling error '%v': %v", err, merr)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	log.Printf("[web] HERR: %v", string(data))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	WriteResult(w, data)
}
