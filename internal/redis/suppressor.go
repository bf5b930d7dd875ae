package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Suppressor keeps alert suppression flags as Redis keys that expire on their own.
type Suppressor struct {
	client *redis.Client
	prefix string
}

func NewSuppressor(client *redis.Client, prefix string) *Suppressor {
	return &Suppressor{client: client, prefix: prefix}
}

func (s *Suppressor) Suppressed(ctx context.Context, key string, _ time.Time) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("check suppression: %w", err)
	}
	return n > 0, nil
}

// Suppress sets the flag only if it is not already present; an existing flag keeps its original expiry.
func (s *Suppressor) Suppress(ctx context.Context, key string, now time.Time, ttl time.Duration) error {
	_, err := s.client.SetNX(ctx, s.prefix+key, now.Format(time.RFC3339), ttl).Result()
	if err != nil {
		return fmt.Errorf("set suppression: %w", err)
	}
	return nil
}

func (s *Suppressor) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
