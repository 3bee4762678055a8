// internal/notification/dispatcher.go
package notification

import (
	"sync/atomic"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/Marga-Ghale/ora-chat-backend/internal/presence"
)

// Sender pushes one event to one connection. Implemented by the websocket hub.
type Sender interface {
	Send(conn presence.ConnectionID, event string, payload map[string]interface{}) error
}

// ConnectionLookup resolves the live connections of a user.
type ConnectionLookup interface {
	ConnectionsOf(user presence.UserID) []presence.ConnectionID
}

// Report summarizes one dispatch. It exists for logging and tests; callers are
// never told whether anything was delivered.
type Report struct {
	Attempted int
	Delivered int
}

// Dispatcher fans an event out to every connection a user currently holds.
// Delivery is best effort: no retry, no queueing for offline users.
type Dispatcher struct {
	registry ConnectionLookup
	sender   Sender
	log      *zap.Logger
}

// NewDispatcher creates a dispatcher over the given registry and transport.
func NewDispatcher(registry ConnectionLookup, sender Sender, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		registry: registry,
		sender:   sender,
		log:      log.Named("dispatcher"),
	}
}

// Dispatch sends ev to every connection of target. Per-connection failures are
// logged and skipped. The registry lock is only held while taking the snapshot.
func (d *Dispatcher) Dispatch(target string, ev Event) Report {
	conns := d.registry.ConnectionsOf(presence.UserID(target))
	if len(conns) == 0 {
		d.log.Debug("target offline, dropping event",
			zap.String("user", target), zap.String("event", ev.Name))
		return Report{}
	}

	var delivered atomic.Int64
	var wg conc.WaitGroup
	for _, conn := range conns {
		conn := conn
		wg.Go(func() {
			if err := d.sender.Send(conn, ev.Name, ev.Payload); err != nil {
				d.log.Warn("send failed",
					zap.String("user", target),
					zap.String("conn", string(conn)),
					zap.String("event", ev.Name),
					zap.Error(err))
				return
			}
			delivered.Add(1)
		})
	}
	wg.Wait()

	r := Report{Attempted: len(conns), Delivered: int(delivered.Load())}
	d.log.Debug("event dispatched",
		zap.String("user", target),
		zap.String("event", ev.Name),
		zap.Int("attempted", r.Attempted),
		zap.Int("delivered", r.Delivered))
	return r
}
