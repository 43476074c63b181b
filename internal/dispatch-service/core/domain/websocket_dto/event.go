package websocketdto

import "encoding/json"

const (
	TypeRequestStatusUpdated = "REQUEST_STATUS_UPDATED"
)

// Event is the envelope every websocket message travels in.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// RequestStatusUpdateDto is what the subscriber sees on a transition.
type RequestStatusUpdateDto struct {
	RequestID     string `json:"request_id"`
	Status        string `json:"status"`
	WorkerID      string `json:"worker_id,omitempty"`
	CorrelationID string `json:"correlation_id"`
}
