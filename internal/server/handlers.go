package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/forcegraph/pkg/buildinfo"
	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
	"github.com/matzehuels/forcegraph/pkg/spatial"
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, struct {
		Status string         `json:"status"`
		Build  buildinfo.Info `json:"build"`
	}{"ok", buildinfo.Get()})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	q := query{r: r}
	opts := s.defaults
	opts.Width = q.float("width", opts.Width)
	opts.Height = q.float("height", opts.Height)
	opts.Refresh = q.bool("refresh")
	if q.err != nil {
		s.writeError(w, q.err)
		return
	}
	if err := opts.ValidateForLayout(); err != nil {
		s.writeError(w, err)
		return
	}

	doc, err := graph.ReadDocument(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, err)
		return
	}
	// Integrity problems are reported synchronously rather than as a failed job.
	if _, err := graph.Build(doc); err != nil {
		s.writeError(w, err)
		return
	}

	j, err := s.submit(doc, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/layouts/"+j.id)
	s.writeJSON(w, http.StatusAccepted, struct {
		ID string `json:"id"`
	}{j.id})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	j, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, j.snapshot())
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	j, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	j.cancel()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	j, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	l, err := j.result()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, l.Graph)
}

// nodeView is the JSON view of a selected node.
type nodeView struct {
	ID       string   `json:"id"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Value    *float64 `json:"num,omitempty"`
	Category string   `json:"cluster,omitempty"`
	Pinned   bool     `json:"pinned,omitempty"`
}

func (s *Server) handleHit(w http.ResponseWriter, r *http.Request) {
	j, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	q := query{r: r}
	sx, sy := q.required("x"), q.required("y")
	t := q.transform()
	exact := q.bool("exact")
	if q.err != nil {
		s.writeError(w, q.err)
		return
	}

	ix, err := j.index(r.Context(), s.defaults.Style, exact)
	if err != nil {
		s.writeError(w, err)
		return
	}
	wx, wy := t.Invert(sx, sy)
	n, err := ix.HitTest(wx, wy)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := struct {
		Node *nodeView `json:"node"`
	}{}
	if n != nil {
		resp.Node = &nodeView{ID: n.ID, X: n.X, Y: n.Y, Category: n.Category, Pinned: n.Pinned}
		if n.HasValue {
			v := n.Value
			resp.Node.Value = &v
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCull(w http.ResponseWriter, r *http.Request) {
	j, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	q := query{r: r}
	t := q.transform()
	width := q.float("width", s.defaults.Width)
	height := q.float("height", s.defaults.Height)
	if q.err == nil {
		q.err = errors.ValidateViewport(width, height)
	}
	if q.err != nil {
		s.writeError(w, q.err)
		return
	}

	g, err := j.positioned()
	if err != nil {
		s.writeError(w, err)
		return
	}
	cl := s.defaults.Style.Classifiers(g)
	v := spatial.Cull(g.Nodes, g.Edges, t, width, height, cl.MaxRadius(g))

	resp := struct {
		Nodes []string    `json:"nodes"`
		Edges [][2]string `json:"edges"`
	}{Nodes: make([]string, len(v.Nodes)), Edges: make([][2]string, len(v.Edges))}
	for i, n := range v.Nodes {
		resp.Nodes[i] = n.ID
	}
	for i, e := range v.Edges {
		resp.Edges[i] = [2]string{e.Source.ID, e.Target.ID}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	j, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	format := chi.URLParam(r, "format")
	contentType, ok := contentTypes[format]
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format))
		return
	}

	q := query{r: r}
	opts := s.defaults
	opts.Formats = []string{format}
	opts.Transform = q.transform()
	opts.Width = q.float("width", opts.Width)
	opts.Height = q.float("height", opts.Height)
	opts.Fit = q.bool("fit")
	opts.Style.OnlyRenderOnScreenElement = q.bool("cull")
	opts.Style.IsDynamicRadius = opts.Style.IsDynamicRadius || q.bool("dynamic")
	if q.err != nil {
		s.writeError(w, q.err)
		return
	}
	if err := opts.ValidateForLayout(); err != nil {
		s.writeError(w, err)
		return
	}

	l, err := j.result()
	if err != nil {
		s.writeError(w, err)
		return
	}
	artifacts, err := s.runner.Render(r.Context(), l, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifacts[format]); err != nil {
		s.logger.Debug("write frame", "err", err)
	}
}
