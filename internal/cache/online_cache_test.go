package cache

import (
	"context"
	"testing"
)

func TestOnlineCache_NilIsNoop(t *testing.T) {
	c := NewOnlineCache(nil)
	if c != nil {
		t.Fatal("NewOnlineCache(nil) should return nil")
	}

	ctx := context.Background()
	if err := c.UserOnline(ctx, "u1"); err != nil {
		t.Errorf("UserOnline: %v", err)
	}
	if err := c.UserOffline(ctx, "u1"); err != nil {
		t.Errorf("UserOffline: %v", err)
	}
	if online, err := c.IsUserOnline(ctx, "u1"); online || err != nil {
		t.Errorf("IsUserOnline: got %v, %v", online, err)
	}
	if users, err := c.OnlineUsers(ctx); users != nil || err != nil {
		t.Errorf("OnlineUsers: got %v, %v", users, err)
	}
	if err := c.Resync(ctx, []string{"u1"}); err != nil {
		t.Errorf("Resync: %v", err)
	}
	if err := c.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestUserKey(t *testing.T) {
	if got := userKey("abc"); got != "online:abc" {
		t.Errorf("userKey: got %q", got)
	}
}
