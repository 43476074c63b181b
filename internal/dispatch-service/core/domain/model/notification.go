package model

import "time"

const (
	NotificationRequestCompleted = "REQUEST_COMPLETED"
)

// Notification is an append-only row owned by the event fanout. Dispatch
// logic creates them; only a read-acknowledgement mutates them.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
