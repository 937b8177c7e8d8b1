package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/forcegraph/pkg/errors"
)

// =============================================================================
// Document - Wire Format
// =============================================================================

// Document is the canonical JSON format for graphs, raw or pre-simulated.
type Document struct {
	Nodes []DocNode `json:"nodes" bson:"nodes"`
	Links []DocLink `json:"links" bson:"links"`
}

// DocNode is a node as it appears in a document.
type DocNode struct {
	ID      ID                 `json:"id" bson:"id"`
	Num     *float64           `json:"num,omitempty" bson:"num,omitempty"`
	Cluster ID                 `json:"cluster,omitempty" bson:"cluster,omitempty"`
	Pie     map[string]float64 `json:"pie,omitempty" bson:"pie,omitempty"`
	X       *float64           `json:"x,omitempty" bson:"x,omitempty"`
	Y       *float64           `json:"y,omitempty" bson:"y,omitempty"`
	FX      *float64           `json:"fx,omitempty" bson:"fx,omitempty"`
	FY      *float64           `json:"fy,omitempty" bson:"fy,omitempty"`
}

// DocLink is a link between two node ids. Distance and Strength override the
// simulation defaults for this link when present; an explicit 0 is kept.
type DocLink struct {
	Source   ID       `json:"source" bson:"source"`
	Target   ID       `json:"target" bson:"target"`
	Distance *float64 `json:"distance,omitempty" bson:"distance,omitempty"`
	Strength *float64 `json:"strength,omitempty" bson:"strength,omitempty"`
}

// ID is a node or cluster identifier. JSON numbers and strings are both
// accepted and normalized to their textual form; ids are written back as
// strings.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %s", data)
	}
	*id = ID(n.String())
	return nil
}

// Positioned reports whether every node carries x and y, meaning the document
// is pre-simulated. An empty document is not considered positioned.
func (d Document) Positioned() bool {
	if len(d.Nodes) == 0 {
		return false
	}
	for _, n := range d.Nodes {
		if n.X == nil || n.Y == nil {
			return false
		}
	}
	return true
}

// =============================================================================
// Document <-> Graph Conversion
// =============================================================================

// Build resolves a document into a graph.
//
// Node ids must be valid and unique, and every link must reference existing
// nodes. Violations fail the whole build with INVALID_INPUT or GRAPH_INTEGRITY
// errors; no partial graph is returned. Nodes without both x and y start at
// the origin with Positioned unset and are placed by the simulation.
func Build(doc Document) (*Graph, error) {
	g := &Graph{
		Nodes: make([]*Node, len(doc.Nodes)),
		Edges: make([]*Edge, len(doc.Links)),
		byID:  make(map[string]*Node, len(doc.Nodes)),
	}

	for i, dn := range doc.Nodes {
		id := string(dn.ID)
		if err := errors.ValidateNodeID(id); err != nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "node %d: %s", i, errors.UserMessage(err))
		}
		if _, dup := g.byID[id]; dup {
			return nil, errors.New(errors.ErrCodeGraphIntegrity, "duplicate node id %q", id)
		}
		n := &Node{
			ID:       id,
			Index:    i,
			Category: string(dn.Cluster),
			Pie:      copyPie(dn.Pie),
		}
		if dn.Num != nil {
			n.Value, n.HasValue = *dn.Num, true
		}
		if dn.X != nil && dn.Y != nil {
			n.X, n.Y = *dn.X, *dn.Y
			n.Positioned = true
		}
		if dn.FX != nil && dn.FY != nil {
			n.Pin(*dn.FX, *dn.FY)
		}
		g.Nodes[i] = n
		g.byID[id] = n
	}

	for i, dl := range doc.Links {
		src, ok := g.byID[string(dl.Source)]
		if !ok {
			return nil, IntegrityError(i, "source", string(dl.Source))
		}
		tgt, ok := g.byID[string(dl.Target)]
		if !ok {
			return nil, IntegrityError(i, "target", string(dl.Target))
		}
		g.Edges[i] = &Edge{
			Index:    i,
			Source:   src,
			Target:   tgt,
			Distance: clonePtr(dl.Distance),
			Strength: clonePtr(dl.Strength),
		}
	}

	return g, nil
}

// IntegrityError returns the GRAPH_INTEGRITY error for link i whose endpoint
// (role "source" or "target") names an unknown node.
func IntegrityError(i int, role, id string) error {
	return errors.New(errors.ErrCodeGraphIntegrity, "link %d references unknown %s node %q", i, role, id)
}

// Document converts the graph back to its wire format, including the current
// position of every positioned node. Pinned nodes also carry fx and fy.
func (g *Graph) Document() Document {
	doc := Document{
		Nodes: make([]DocNode, len(g.Nodes)),
		Links: make([]DocLink, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		dn := DocNode{
			ID:      ID(n.ID),
			Cluster: ID(n.Category),
			Pie:     copyPie(n.Pie),
		}
		if n.Positioned {
			dn.X, dn.Y = ptr(n.X), ptr(n.Y)
		}
		if n.HasValue {
			dn.Num = ptr(n.Value)
		}
		if n.Pinned {
			dn.FX, dn.FY = ptr(n.FX), ptr(n.FY)
		}
		doc.Nodes[i] = dn
	}
	for i, e := range g.Edges {
		doc.Links[i] = DocLink{
			Source:   ID(e.Source.ID),
			Target:   ID(e.Target.ID),
			Distance: clonePtr(e.Distance),
			Strength: clonePtr(e.Strength),
		}
	}
	return doc
}

func ptr(v float64) *float64 { return &v }

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return ptr(*p)
}

// =============================================================================
// Document Serialization API
// =============================================================================

// MarshalDocument converts a document to indented JSON bytes.
func MarshalDocument(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDocument(doc, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalDocument decodes JSON bytes into a document.
func UnmarshalDocument(data []byte) (Document, error) {
	return ReadDocument(bytes.NewReader(data))
}

// WriteDocument writes a document as indented JSON.
func WriteDocument(doc Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadDocument decodes a JSON document from r.
// Malformed input yields an INVALID_FORMAT error.
func ReadDocument(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode graph document")
	}
	return doc, nil
}

// ReadDocumentFile reads a JSON document from path. A path of "-" reads stdin.
func ReadDocumentFile(path string) (Document, error) {
	if path == "-" {
		return ReadDocument(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDocument(f)
}

// WriteDocumentFile writes a document to path with 0644 permissions.
func WriteDocumentFile(doc Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDocument(doc, f)
}
