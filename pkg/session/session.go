// Package session persists explorer state between runs.
//
// A session belongs to one layout, identified by the layout's content hash,
// and records where the user left off: the viewport transform, the selected
// node and any nodes pinned by dragging. Reopening the same layout restores
// that state.
//
// Two stores are provided:
//   - [CacheStore]: any [cache.Cache] backend (file, Redis or MongoDB)
//   - [FileStore]: JSON files in the user's config directory
//
// # Usage
//
//	store := session.NewCacheStore(c, nil)
//	sess, err := store.Get(ctx, layoutHash)
//	if sess == nil {
//	    sess = session.New(layoutHash, session.DefaultTTL)
//	}
//	sess.Transform = v.Transform()
//	err = store.Set(ctx, sess)
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/forcegraph/pkg/cache"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

// DefaultTTL is how long an untouched session is kept.
const DefaultTTL = cache.SessionTTL

// Pin is a node held at a fixed position.
type Pin struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Session is the explorer state of one layout.
type Session struct {
	ID         string             `json:"id"`
	LayoutHash string             `json:"layout_hash"`
	Transform  viewport.Transform `json:"transform"`
	Selected   string             `json:"selected,omitempty"`
	Pins       map[string]Pin     `json:"pins,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
	ExpiresAt  time.Time          `json:"expires_at"`
}

// New creates an empty session for a layout with the identity transform.
func New(layoutHash string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:         uuid.NewString(),
		LayoutHash: layoutHash,
		Transform:  viewport.Identity,
		CreatedAt:  now,
		UpdatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch extends the session by ttl from now.
func (s *Session) Touch(ttl time.Duration) {
	s.UpdatedAt = time.Now()
	s.ExpiresAt = s.UpdatedAt.Add(ttl)
}

// Capture records the pinned nodes of g.
func (s *Session) Capture(g *graph.Graph) {
	s.Pins = nil
	for _, n := range g.Nodes {
		if n.Pinned {
			if s.Pins == nil {
				s.Pins = make(map[string]Pin)
			}
			s.Pins[n.ID] = Pin{X: n.FX, Y: n.FY}
		}
	}
}

// Apply pins the recorded nodes of g and returns the selected node, if it
// still exists. Pins for unknown ids are ignored.
func (s *Session) Apply(g *graph.Graph) *graph.Node {
	for id, p := range s.Pins {
		if n, ok := g.Node(id); ok {
			n.Pin(p.X, p.Y)
		}
	}
	if len(s.Pins) > 0 {
		g.Touch()
	}
	if s.Selected == "" {
		return nil
	}
	n, _ := g.Node(s.Selected)
	return n
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves the session of a layout.
	// Returns nil, nil if it doesn't exist or has expired.
	Get(ctx context.Context, layoutHash string) (*Session, error)

	// Set stores a session under its layout hash.
	Set(ctx context.Context, session *Session) error

	// Delete removes the session of a layout.
	Delete(ctx context.Context, layoutHash string) error
}
