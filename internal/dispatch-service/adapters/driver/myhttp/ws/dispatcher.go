package ws

import (
	"context"
	"net/http"
	"sync"

	"instantfix/internal/dispatch-service/core/ports"
	"instantfix/internal/metrics"
	"instantfix/internal/mylogger"

	websocketdto "instantfix/internal/dispatch-service/core/domain/websocket_dto"

	"github.com/gorilla/websocket"
)

var websocketUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Dispatcher is the live-delivery hub: one logical channel per user id,
// any number of open connections behind it. A user with no connections
// simply misses the push; the durable notification row still exists.
type Dispatcher struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]bool
	log     mylogger.Logger
}

func NewDispatcher(log mylogger.Logger) *Dispatcher {
	return &Dispatcher{
		clients: make(map[string]map[*Client]bool),
		log:     log,
	}
}

// WsHandler upgrades the connection and registers it under the path's
// user id. The auth middleware runs first; the handler only has to stop
// a user subscribing to someone else's channel.
func (d *Dispatcher) WsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := d.log.Action("WsHandler")

		userId := r.PathValue("user_id")
		if userId == "" || userId != r.Header.Get("X-UserId") {
			w.WriteHeader(http.StatusForbidden)
			return
		}

		conn, err := websocketUpgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("cannot upgrade connection", err, "user_id", userId)
			return
		}

		// the request context dies with the upgrade, the connection outlives it
		client := NewClient(context.Background(), conn, d, userId)
		d.AddClient(client)

		go client.ReadMessages()
		go client.WriteMessages()

		log.Info("subscriber connected", "user_id", userId)
	}
}

func (d *Dispatcher) AddClient(client *Client) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.clients[client.userId] == nil {
		d.clients[client.userId] = make(map[*Client]bool)
	}
	d.clients[client.userId][client] = true
	metrics.LiveConnections.Inc()
}

func (d *Dispatcher) RemoveClient(client *Client) {
	d.mu.Lock()
	defer d.mu.Unlock()

	conns, ok := d.clients[client.userId]
	if !ok || !conns[client] {
		return
	}
	delete(conns, client)
	if len(conns) == 0 {
		delete(d.clients, client.userId)
	}
	metrics.LiveConnections.Dec()
	client.close()
}

// WriteToUser fans one event out to every connection of the user. A
// connection with a full egress buffer is skipped rather than letting
// one slow reader stall delivery to the rest.
func (d *Dispatcher) WriteToUser(userId string, msg websocketdto.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for client := range d.clients[userId] {
		select {
		case client.egress <- msg:
		default:
			d.log.Warn("dropping event for slow subscriber", "user_id", userId, "type", msg.Type)
		}
	}
}

var _ ports.INotifyWebsocket = (*Dispatcher)(nil)
