package pipeline

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/forcegraph/pkg/cache"
	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
)

// Input is a loaded graph. Layout is set when the source was a layout file
// written by a previous run; Document is always set.
type Input struct {
	Document graph.Document
	Layout   *graph.Layout
}

// Simulated reports whether the input needs no simulation.
func (in Input) Simulated() bool {
	return in.Layout != nil || in.Document.Positioned()
}

// ReadInput decodes a document or a layout. A top-level "graph" key marks a
// layout; anything else is read as a document.
func ReadInput(r io.Reader) (Input, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Input{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read input")
	}
	return decodeInput(data)
}

// ReadInputFile reads a document or layout from path, or stdin when path
// is "-".
func ReadInputFile(path string) (Input, error) {
	if path == "-" {
		return ReadInput(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Input{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "input file %s", path)
		}
		return Input{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return decodeInput(data)
}

func decodeInput(data []byte) (Input, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Input{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode graph")
	}
	if _, ok := fields["graph"]; ok {
		l, err := graph.UnmarshalLayout(data)
		if err != nil {
			return Input{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode layout")
		}
		return Input{Document: l.Graph, Layout: &l}, nil
	}
	doc, err := graph.UnmarshalDocument(data)
	if err != nil {
		return Input{}, err
	}
	return Input{Document: doc}, nil
}

// HashDocument returns the content hash of a document's canonical encoding.
func HashDocument(doc graph.Document) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode document")
	}
	return cache.Hash(data), nil
}

// HashLayout returns the content hash of a layout.
func HashLayout(l graph.Layout) (string, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode layout")
	}
	return cache.Hash(data), nil
}
