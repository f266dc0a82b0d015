package gltfutils

import (
	"io"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

// Encode writes doc as a .glb when binary is set, as .gltf json otherwise.
// Buffers of a json document are embedded as data uris.
func Encode(w io.Writer, doc *gltf.Document, binary bool) error {
	if !binary {
		for _, b := range doc.Buffers {
			if b.URI == "" {
				b.EmbeddedResource()
			}
		}
	}
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = binary
	return errors.Wrapf(encoder.Encode(doc), "Failed to encode gltf")
}

func ExportBinary(w io.Writer, doc *gltf.Document) error {
	return Encode(w, doc, true)
}

// Decode reads a .glb or a self contained .gltf.
func Decode(r io.Reader) (*gltf.Document, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, errors.Wrapf(err, "Failed to decode gltf")
	}
	return doc, nil
}
