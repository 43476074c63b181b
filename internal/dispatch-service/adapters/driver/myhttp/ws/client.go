package ws

import (
	"context"
	"sync"

	websocketdto "instantfix/internal/dispatch-service/core/domain/websocket_dto"

	"github.com/gorilla/websocket"
)

const egressBuffer = 16

type Client struct {
	ctx       context.Context
	conn      *websocket.Conn
	dis       *Dispatcher
	egress    chan websocketdto.Event
	userId    string
	closeOnce sync.Once
}

func NewClient(ctx context.Context, conn *websocket.Conn, dis *Dispatcher, userId string) *Client {
	return &Client{
		ctx:    ctx,
		conn:   conn,
		dis:    dis,
		egress: make(chan websocketdto.Event, egressBuffer),
		userId: userId,
	}
}

// ReadMessages drains the connection. Subscribers never send anything
// the hub acts on; the pump exists to notice closes and pings.
func (c *Client) ReadMessages() {
	defer c.dis.RemoveClient(c)

	c.conn.SetReadLimit(1024)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) WriteMessages() {
	defer c.dis.RemoveClient(c)

	for {
		select {
		case <-c.ctx.Done():
			return
		case event, ok := <-c.egress:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		if c.conn != nil {
			c.conn.Close()
		}
	})
}
