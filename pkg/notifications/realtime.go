package notifications

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/go-redis/redis/v8"
)

// ChannelPrefix prefixes the per-user Redis channel
const ChannelPrefix = "notifications:"

// Channel is the Redis channel userID's notifications are pushed to
func Channel(userID string) string {
	return ChannelPrefix + userID
}

// RedisRealtime publishes notifications on per-user Redis channels
type RedisRealtime struct {
	client *redis.Client
}

// NewRedisRealtime creates a publisher on client
func NewRedisRealtime(client *redis.Client) *RedisRealtime {
	return &RedisRealtime{client: client}
}

// Push implements Realtime
func (r *RedisRealtime) Push(ctx context.Context, n *Notification) error {
	b, err := sonic.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}
	if err := r.client.Publish(ctx, Channel(n.UserID), b).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}
