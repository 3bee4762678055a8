// internal/presence/registry.go
package presence

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// UserID identifies an account.
type UserID string

// ConnectionID identifies one live websocket session. Minted on connect, never reused.
type ConnectionID string

const shardCount = 64

type shard struct {
	mu    sync.RWMutex
	users map[UserID]map[ConnectionID]struct{}
}

// Registry maps users to their open connections.
//
// A user has an entry only while at least one connection is registered, so
// "online" is simply "has an entry". Users are spread over independently locked
// shards; connect/disconnect traffic for unrelated users does not serialize.
type Registry struct {
	shards [shardCount]*shard
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i] = &shard{users: make(map[UserID]map[ConnectionID]struct{})}
	}
	return r
}

func (r *Registry) shardFor(user UserID) *shard {
	return r.shards[xxhash.Sum64String(string(user))%shardCount]
}

// Register adds conn to the user's set. Registering the same pair twice is a no-op.
// It reports whether this call brought the user online.
func (r *Registry) Register(user UserID, conn ConnectionID) bool {
	s := r.shardFor(user)
	s.mu.Lock()
	defer s.mu.Unlock()

	conns, ok := s.users[user]
	if !ok {
		conns = make(map[ConnectionID]struct{}, 1)
		s.users[user] = conns
	}
	conns[conn] = struct{}{}
	return !ok
}

// Unregister removes conn from the user's set and drops the entry once it is empty.
// It reports whether this call took the user offline.
func (r *Registry) Unregister(user UserID, conn ConnectionID) bool {
	s := r.shardFor(user)
	s.mu.Lock()
	defer s.mu.Unlock()

	conns, ok := s.users[user]
	if !ok {
		return false
	}
	if _, ok := conns[conn]; !ok {
		return false
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(s.users, user)
		return true
	}
	return false
}

// ConnectionsOf returns a copy of the user's current connections.
// Unknown or offline users yield an empty slice.
func (r *Registry) ConnectionsOf(user UserID) []ConnectionID {
	s := r.shardFor(user)
	s.mu.RLock()
	defer s.mu.RUnlock()

	conns := s.users[user]
	out := make([]ConnectionID, 0, len(conns))
	for c := range conns {
		out = append(out, c)
	}
	return out
}

// IsOnline reports whether the user holds at least one connection.
func (r *Registry) IsOnline(user UserID) bool {
	s := r.shardFor(user)
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.users[user]
	return ok
}

// OnlineUsers lists every user with a live connection. The result is assembled
// shard by shard and is not a single atomic snapshot of the whole registry.
func (r *Registry) OnlineUsers() []UserID {
	var users []UserID
	for _, s := range r.shards {
		s.mu.RLock()
		for u := range s.users {
			users = append(users, u)
		}
		s.mu.RUnlock()
	}
	return users
}

// Len returns the total number of registered connections.
func (r *Registry) Len() int {
	n := 0
	for _, s := range r.shards {
		s.mu.RLock()
		for _, conns := range s.users {
			n += len(conns)
		}
		s.mu.RUnlock()
	}
	return n
}
