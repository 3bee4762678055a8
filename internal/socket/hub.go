// internal/socket/hub.go
package socket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Marga-Ghale/ora-chat-backend/internal/presence"
)

// System frame types. Domain events use their own names as the frame type.
const (
	FramePing = "ping"
	FramePong = "pong"
)

var (
	ErrUnknownConnection = errors.New("unknown connection")
	ErrSendBufferFull    = errors.New("send buffer full")
)

// Message is the JSON frame written to a websocket
type Message struct {
	Type      string                 `json:"type"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// PresenceHook is told when a user gets their first connection and loses their last.
type PresenceHook interface {
	UserOnline(ctx context.Context, userID string) error
	UserOffline(ctx context.Context, userID string) error
}

// Hub owns the live websocket clients and keeps the presence registry in step with them.
type Hub struct {
	clients  map[presence.ConnectionID]*Client
	registry *presence.Registry
	hook     PresenceHook
	log      *zap.Logger

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed once Run returns
	done chan struct{}

	mu sync.RWMutex
}

// NewHub creates a hub that records connections in registry. hook may be nil.
func NewHub(registry *presence.Registry, hook PresenceHook, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[presence.ConnectionID]*Client),
		registry:   registry,
		hook:       hook,
		log:        log.Named("hub"),
		register:   make(chan *Client),
		unregister: make(chan *Client, 64),
		done:       make(chan struct{}),
	}
}

// Run serves register and unregister requests until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("websocket hub started")

	for {
		select {
		case client := <-h.register:
			h.attach(client)

		case client := <-h.unregister:
			h.detach(client)

		case <-ctx.Done():
			close(h.done)
			h.shutdown()
			h.log.Info("websocket hub stopped")
			return
		}
	}
}

func (h *Hub) attach(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	total := len(h.clients)
	h.mu.Unlock()

	first := h.registry.Register(presence.UserID(client.UserID), client.ID)

	h.log.Info("client registered",
		zap.String("user", client.UserID),
		zap.String("conn", string(client.ID)),
		zap.Int("total_clients", total))

	if first {
		go h.notifyPresence(client.UserID, true)
	}
}

func (h *Hub) detach(client *Client) {
	h.mu.Lock()
	if current, ok := h.clients[client.ID]; !ok || current != client {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.ID)
	close(client.send)
	total := len(h.clients)
	h.mu.Unlock()

	last := h.registry.Unregister(presence.UserID(client.UserID), client.ID)

	h.log.Info("client disconnected",
		zap.String("user", client.UserID),
		zap.String("conn", string(client.ID)),
		zap.Int("total_clients", total))

	if last {
		go h.notifyPresence(client.UserID, false)
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.detach(c)
	}
}

func (h *Hub) notifyPresence(userID string, online bool) {
	if h.hook == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	if online {
		err = h.hook.UserOnline(ctx, userID)
	} else {
		err = h.hook.UserOffline(ctx, userID)
	}
	if err != nil {
		h.log.Warn("presence hook failed",
			zap.String("user", userID), zap.Bool("online", online), zap.Error(err))
	}
}

// Send queues one frame for a single connection. It never blocks: a client whose
// buffer is full is dropped and ErrSendBufferFull is returned.
func (h *Hub) Send(conn presence.ConnectionID, event string, payload map[string]interface{}) error {
	data, err := json.Marshal(Message{
		Type:      event,
		Payload:   payload,
		Timestamp: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal %s frame: %w", event, err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[conn]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownConnection, conn)
	}

	select {
	case client.send <- data:
		return nil
	default:
		h.requestUnregister(client)
		return fmt.Errorf("%w: %s", ErrSendBufferFull, conn)
	}
}

func (h *Hub) requestUnregister(client *Client) {
	go h.Unregister(client)
}

// Register hands a new client to the hub. It returns false if the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister asks the hub to drop client. Safe to call more than once.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Connected reports whether conn is currently attached.
func (h *Hub) Connected(conn presence.ConnectionID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[conn]
	return ok
}

// GetOnlineUsers returns the ids of users with at least one connection.
func (h *Hub) GetOnlineUsers() []string {
	users := h.registry.OnlineUsers()
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = string(u)
	}
	return out
}

// GetConnectedClientsCount returns total connected clients
func (h *Hub) GetConnectedClientsCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
