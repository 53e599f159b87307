package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// KV is an in-process store backed by go-cache. It exists for tests and
// single-node deployments; production runs against the redis backend.
type KV struct {
	c *gocache.Cache

	// go-cache increments don't create missing keys, so the
	// check-then-create in Incr needs its own lock.
	mu sync.Mutex
}

func NewKV(settings map[string]any) (*KV, error) {
	return &KV{
		c: gocache.New(gocache.NoExpiration, 5*time.Minute),
	}, nil
}

func (s *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false, nil
	}
	return b, true, nil
}

func (s *KV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	s.c.Set(key, value, ttl)
	return nil
}

func (s *KV) Delete(ctx context.Context, key string) error {
	s.c.Delete(key)
	return nil
}

func (s *KV) Incr(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.c.Get(key); !ok {
		s.c.Set(key, int64(0), gocache.NoExpiration)
	}
	return s.c.IncrementInt64(key, 1)
}

func (s *KV) Counter(ctx context.Context, key string) (int64, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return 0, nil
	}
	n, ok := v.(int64)
	if !ok {
		return 0, nil
	}
	return n, nil
}

func (s *KV) Keys(ctx context.Context, prefix string) ([]string, error) {
	items := s.c.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
