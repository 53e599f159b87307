package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/driveshare/driveshare/pkg/config"
	"github.com/driveshare/driveshare/pkg/storage/kv/memory"
	"github.com/driveshare/driveshare/pkg/storage/kv/redis"
)

// KV is the external key-value collaborator. Implementations guarantee
// atomic single-key operations only; there are no multi-key transactions.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set writes value under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete is idempotent; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Incr atomically increments the integer at key, creating it at zero.
	Incr(ctx context.Context, key string) (int64, error)

	// Counter reads the integer at key, zero when missing.
	Counter(ctx context.Context, key string) (int64, error)

	// Keys returns every key starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

func NewKV(conf config.KV) (KV, error) {
	switch conf.Type {
	case "memory":
		return memory.NewKV(conf.Settings)
	case "redis":
		return redis.NewKV(conf.Settings)
	}

	return nil, fmt.Errorf("unsupported kv store: %s", conf.Type)
}
