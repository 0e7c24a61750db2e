package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Repository defines the Redis operations used to coordinate contact mutations
// across server instances.
type Repository interface {
	AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, token string) error
}

type redis struct {
	client *goredis.Client
}

// releaseScript deletes the lock only while it still holds the caller's token,
// so an expired lock taken over by another holder is left alone.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewRepository returns a Redis Repository implementation. A nil client grants
// every lock, which is correct for a single server instance.
func NewRepository(client *goredis.Client) Repository {
	return &redis{client: client}
}

// AcquireLock sets key to token if it is free, expiring after ttl.
func (r *redis) AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	if r.client == nil {
		return true, nil
	}
	return r.client.SetNX(ctx, key, token, ttl).Result()
}

// ReleaseLock removes key if it is still owned by token.
func (r *redis) ReleaseLock(ctx context.Context, key, token string) error {
	if r.client == nil {
		return nil
	}
	return releaseScript.Run(ctx, r.client, []string{key}, token).Err()
}
