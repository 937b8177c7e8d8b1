package worker

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/sim"
)

// Client owns the active batch job. It is safe for concurrent use.
type Client struct {
	logger *log.Logger

	mu     sync.Mutex
	active *Job
	closed bool

	lastSeen atomic.Int64
}

// NewClient returns an idle client. A nil logger discards output.
func NewClient(logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{logger: logger}
}

// Start cancels any running job and launches a new one for req. Document
// and configuration problems are reported asynchronously as a [Failed]
// message; Start itself only fails for a closed client or an invalid
// viewport. A zero Width and Height keep the configured centre.
func (c *Client) Start(ctx context.Context, req Start) (*Job, error) {
	cfg := req.Config
	if req.Width != 0 || req.Height != 0 {
		if err := errors.ValidateViewport(req.Width, req.Height); err != nil {
			return nil, err
		}
		cfg = cfg.Centered(req.Width, req.Height)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errors.New(errors.ErrCodeCancelled, "worker client is closed")
	}
	if c.active != nil {
		c.logger.Debug("superseding layout job", "request", c.active.id)
		c.active.cancel()
	}

	// Room for every progress tick plus the terminal message.
	size := 1
	if cfg.Validate() == nil {
		size += sim.Iterations(cfg.Alpha, cfg.AlphaMin, cfg.AlphaDecay)
	}

	jctx, cancel := context.WithCancel(ctx)
	j := &Job{
		id:       uuid.NewString(),
		client:   c,
		ctx:      jctx,
		cancel:   cancel,
		messages: make(chan Message, size),
		done:     make(chan struct{}),
	}
	c.active = j
	c.touch()

	c.logger.Debug("starting layout job", "request", j.id, "nodes", len(req.Document.Nodes), "links", len(req.Document.Links))
	go j.run(cfg, req.Document)
	return j, nil
}

// Active returns the id of the active request.
func (c *Client) Active() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return "", false
	}
	return c.active.id, true
}

// Cancel stops the active job. Its remaining messages are dropped.
func (c *Client) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
}

func (c *Client) cancelLocked() {
	if c.active != nil {
		c.active.cancel()
		c.active = nil
	}
}

// Close cancels the active job and rejects further Starts.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	c.closed = true
}

// LastSeen returns when the active job last produced a message.
func (c *Client) LastSeen() time.Time {
	return time.Unix(0, c.lastSeen.Load())
}

// Alive reports whether the active job produced a message within the given
// window. An idle client or a finished job counts as alive.
func (c *Client) Alive(within time.Duration) bool {
	c.mu.Lock()
	j := c.active
	c.mu.Unlock()
	if j == nil || j.Finished() {
		return true
	}
	return time.Since(c.LastSeen()) <= within
}

func (c *Client) touch() {
	c.lastSeen.Store(time.Now().UnixNano())
}

func (c *Client) current(j *Job) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active == j
}

func (c *Client) release(j *Job) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == j {
		c.cancelLocked()
	}
}
