package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
)

type WebSocketClient struct {
	conn   *websocket.Conn
	events chan []byte
	ctx    context.Context
	logger *Logger
}

func NewWebSocketClient(ctx context.Context, logger *Logger) *WebSocketClient {
	return &WebSocketClient{
		events: make(chan []byte, 100),
		ctx:    ctx,
		logger: logger,
	}
}

func (w *WebSocketClient) Connect(url string) error {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("connecting to websocket: %w", err)
	}
	w.conn = conn

	go w.readLoop()
	return nil
}

func (w *WebSocketClient) Close() {
	if w.conn != nil {
		w.conn.Close()
	}
}

// Events yields raw event payloads as they arrive.
func (w *WebSocketClient) Events() <-chan []byte {
	return w.events
}

func (w *WebSocketClient) readLoop() {
	defer close(w.events)

	for {
		_, msg, err := w.conn.ReadMessage()
		if err != nil {
			w.logger.Warn("websocket closed: %v", err)
			return
		}

		select {
		case w.events <- msg:
		case <-w.ctx.Done():
			return
		}
	}
}

type StatusEvent struct {
	Type string `json:"type"`
	Data struct {
		RequestID string `json:"request_id"`
		Status    string `json:"status"`
		WorkerID  string `json:"worker_id,omitempty"`
	} `json:"data"`
}

func ParseStatusEvent(raw []byte) (StatusEvent, error) {
	ev := StatusEvent{}
	if err := json.Unmarshal(raw, &ev); err != nil {
		return ev, fmt.Errorf("parsing event: %w", err)
	}
	return ev, nil
}
