package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/forcegraph/pkg/cache"
)

// CacheStore keeps sessions in a cache backend under [cache.Keyer.SessionKey].
type CacheStore struct {
	cache cache.Cache
	keyer cache.Keyer
}

// NewCacheStore wraps c. A nil keyer uses the default key layout.
func NewCacheStore(c cache.Cache, keyer cache.Keyer) *CacheStore {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &CacheStore{cache: c, keyer: keyer}
}

func (s *CacheStore) Get(ctx context.Context, layoutHash string) (*Session, error) {
	data, ok, err := s.cache.Get(ctx, s.keyer.SessionKey(layoutHash))
	if err != nil || !ok {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if sess.IsExpired() {
		return nil, nil
	}
	return &sess, nil
}

func (s *CacheStore) Set(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, sess.LayoutHash)
	}
	return s.cache.Set(ctx, s.keyer.SessionKey(sess.LayoutHash), data, ttl)
}

func (s *CacheStore) Delete(ctx context.Context, layoutHash string) error {
	return s.cache.Delete(ctx, s.keyer.SessionKey(layoutHash))
}

var _ Store = (*CacheStore)(nil)
