package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	onlineUsersKey = "online:users"

	// OnlineUserTTL bounds how long a per-user key survives without a resync,
	// so a crashed instance cannot leave users online forever.
	OnlineUserTTL = 10 * time.Minute
)

// OnlineCache mirrors the in-process presence registry into Redis so other
// services can read who is online. The registry stays authoritative.
// A nil *OnlineCache is valid and does nothing.
type OnlineCache struct {
	client *redis.Client
}

// NewOnlineCache wraps client. A nil client yields a nil cache.
func NewOnlineCache(client *redis.Client) *OnlineCache {
	if client == nil {
		return nil
	}
	return &OnlineCache{client: client}
}

func userKey(userID string) string {
	return fmt.Sprintf("online:%s", userID)
}

// UserOnline adds userID to the online set.
func (c *OnlineCache) UserOnline(ctx context.Context, userID string) error {
	if c == nil {
		return nil
	}
	pipe := c.client.TxPipeline()
	pipe.SAdd(ctx, onlineUsersKey, userID)
	pipe.Set(ctx, userKey(userID), "1", OnlineUserTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// UserOffline removes userID from the online set.
func (c *OnlineCache) UserOffline(ctx context.Context, userID string) error {
	if c == nil {
		return nil
	}
	pipe := c.client.TxPipeline()
	pipe.SRem(ctx, onlineUsersKey, userID)
	pipe.Del(ctx, userKey(userID))
	_, err := pipe.Exec(ctx)
	return err
}

// IsUserOnline reports whether the mirror currently lists userID.
func (c *OnlineCache) IsUserOnline(ctx context.Context, userID string) (bool, error) {
	if c == nil {
		return false, nil
	}
	n, err := c.client.Exists(ctx, userKey(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// OnlineUsers returns the mirrored online set.
func (c *OnlineCache) OnlineUsers(ctx context.Context) ([]string, error) {
	if c == nil {
		return nil, nil
	}
	return c.client.SMembers(ctx, onlineUsersKey).Result()
}

// Resync replaces the mirrored set with users and refreshes their TTL keys.
func (c *OnlineCache) Resync(ctx context.Context, users []string) error {
	if c == nil {
		return nil
	}

	stale, err := c.client.SMembers(ctx, onlineUsersKey).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("read online set: %w", err)
	}

	current := make(map[string]struct{}, len(users))
	for _, u := range users {
		current[u] = struct{}{}
	}

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, onlineUsersKey)
	for _, u := range stale {
		if _, ok := current[u]; !ok {
			pipe.Del(ctx, userKey(u))
		}
	}
	for _, u := range users {
		pipe.SAdd(ctx, onlineUsersKey, u)
		pipe.Set(ctx, userKey(u), "1", OnlineUserTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("resync online set: %w", err)
	}
	return nil
}

// Ping checks connectivity for the health endpoint.
func (c *OnlineCache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}
