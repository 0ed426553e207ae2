package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis wraps the client shared by the mark queue and the live counters.
// Timeouts are short: every Redis call here sits on a request or worker
// path, and a slow cache must not stall marking.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to the given address. Connectivity is not verified
// here; use Healthy, the reporting is a health-check concern.
func NewRedis(addr string) *Redis {
	return &Redis{Client: redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolSize:     8,
	})}
}

// Healthy reports whether Redis currently answers a ping.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

// Close releases the client's connections.
func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
