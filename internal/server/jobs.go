package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
	"github.com/matzehuels/forcegraph/pkg/progress"
	"github.com/matzehuels/forcegraph/pkg/spatial"
	"github.com/matzehuels/forcegraph/pkg/style"
)

// Job states.
const (
	StatusRunning   = "running"
	StatusDone      = "done"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// job is one submitted layout.
type job struct {
	id  string
	key string

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	status   string
	progress float64
	err      error
	layout   graph.Layout
	hash     string
	finished time.Time

	// Built on first use once done.
	graph  *graph.Graph
	approx *spatial.Index
	exact  *spatial.ExactIndex
}

// jobStatus is the JSON view of a job.
type jobStatus struct {
	ID       string  `json:"id"`
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
	Ticks    int     `json:"ticks,omitempty"`
	Error    string  `json:"error,omitempty"`
	Code     string  `json:"code,omitempty"`
}

func (j *job) snapshot() jobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	st := jobStatus{ID: j.id, Status: j.status, Progress: j.progress}
	if j.status == StatusDone {
		st.Ticks = j.layout.Ticks
	}
	if j.err != nil {
		st.Error = errors.UserMessage(j.err)
		st.Code = string(errors.GetCode(j.err))
	}
	return st
}

func (j *job) report(p float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status == StatusRunning {
		j.progress = p
	}
}

func (j *job) finish(status string, l graph.Layout, hash string, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != StatusRunning {
		return
	}
	j.status, j.layout, j.hash, j.err = status, l, hash, err
	if status == StatusDone {
		j.progress = 1
	}
	j.finished = time.Now()
}

// result returns the finished layout, or an error describing why there is
// none yet.
func (j *job) result() (graph.Layout, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	switch j.status {
	case StatusDone:
		return j.layout, nil
	case StatusRunning:
		return graph.Layout{}, errNotReady(j.id)
	case StatusCancelled:
		return graph.Layout{}, errors.New(errors.ErrCodeCancelled, "layout %s was cancelled", j.id)
	default:
		return graph.Layout{}, j.err
	}
}

// positioned returns the built graph of a finished job.
func (j *job) positioned() (*graph.Graph, error) {
	l, err := j.result()
	if err != nil {
		return nil, err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.graph == nil {
		g, err := graph.Build(l.Graph)
		if err != nil {
			return nil, err
		}
		j.graph = g
	}
	return j.graph, nil
}

// index returns a hit tester over the finished graph using cfg's radii.
// Each kind of index is built once and reused.
func (j *job) index(ctx context.Context, cfg style.Config, exact bool) (spatial.HitTester, error) {
	g, err := j.positioned()
	if err != nil {
		return nil, err
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if exact {
		if j.exact == nil {
			j.exact = pipeline.BuildIndex(ctx, g, cfg, true).(*spatial.ExactIndex)
		}
		return j.exact, nil
	}
	if j.approx == nil {
		j.approx = pipeline.BuildIndex(ctx, g, cfg, false).(*spatial.Index)
	}
	return j.approx, nil
}

// =============================================================================
// Job Registry
// =============================================================================

// submit registers a job for doc and starts it. Jobs with the same document
// and options share one layout computation.
func (s *Server) submit(doc graph.Document, opts pipeline.Options) (*job, error) {
	graphHash, err := pipeline.HashDocument(doc)
	if err != nil {
		return nil, err
	}
	key := s.runner.Keyer.LayoutKey(graphHash, opts.LayoutKeyOpts())

	ctx, cancel := context.WithCancel(s.ctx)
	j := &job{
		id:     uuid.NewString(),
		key:    key,
		ctx:    ctx,
		cancel: cancel,
		status: StatusRunning,
	}

	s.mu.Lock()
	s.sweepLocked()
	s.jobs[j.id] = j
	s.mu.Unlock()

	s.logger.Info("layout submitted", "id", j.id, "nodes", len(doc.Nodes), "links", len(doc.Links))
	go s.run(j, doc, opts)
	return j, nil
}

type flightResult struct {
	layout graph.Layout
	hash   string
}

func (s *Server) run(j *job, doc graph.Document, opts pipeline.Options) {
	defer j.cancel()

	opts.Progress = s.broadcast(j.key)
	ch := s.flight.DoChan(j.key, func() (any, error) {
		l, err := s.runner.Layout(s.ctx, doc, opts)
		if err != nil {
			return nil, err
		}
		hash, err := pipeline.HashLayout(l)
		if err != nil {
			return nil, err
		}
		return flightResult{layout: l, hash: hash}, nil
	})

	select {
	case <-j.ctx.Done():
		j.finish(StatusCancelled, graph.Layout{}, "", nil)
		s.logger.Info("layout cancelled", "id", j.id)
	case res := <-ch:
		if res.Err != nil {
			j.finish(StatusFailed, graph.Layout{}, "", res.Err)
			s.logger.Warn("layout failed", "id", j.id, "err", res.Err)
			return
		}
		fr := res.Val.(flightResult)
		j.finish(StatusDone, fr.layout, fr.hash, nil)
		s.logger.Info("layout done", "id", j.id, "ticks", fr.layout.Ticks, "shared", res.Shared)
	}
}

// broadcast reports progress to every running job waiting on key.
func (s *Server) broadcast(key string) progress.Reporter {
	return progress.Func(func(p float64) {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, j := range s.jobs {
			if j.key == key {
				j.report(p)
			}
		}
	})
}

func (s *Server) lookup(id string) (*job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "layout %s not found", id)
	}
	return j, nil
}

// sweepLocked drops jobs that finished more than ttl ago.
func (s *Server) sweepLocked() {
	cutoff := time.Now().Add(-s.ttl)
	for id, j := range s.jobs {
		j.mu.Lock()
		expired := j.status != StatusRunning && j.finished.Before(cutoff)
		j.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}
