package session

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"readiness-workers/internal/common/config"
)

// NewStore builds the backend named by cfg.Store. client is only used for
// the redis backend.
func NewStore(cfg config.SessionConfig, client redis.Cmdable) (Store, error) {
	switch cfg.Store {
	case "", "memory":
		return NewMemoryStore(cfg.TTLDuration()), nil
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("session store %q needs a redis client", cfg.Store)
		}
		return NewRedisStore(client, cfg.KeyPrefix, cfg.TTLDuration()), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}
