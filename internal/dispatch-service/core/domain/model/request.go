package model

import "time"

const (
	StatusPending    = "pending"
	StatusAccepted   = "accepted"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

const (
	IssueFan    = "fan"
	IssueLight  = "light"
	IssueSwitch = "switch"
	IssueWiring = "wiring"
	IssueOther  = "other"
)

var AllowedIssueTypes = map[string]bool{
	IssueFan:    true,
	IssueLight:  true,
	IssueSwitch: true,
	IssueWiring: true,
	IssueOther:  true,
}

// GeoPoint is a WGS84 coordinate pair, longitude first, matching the
// column order of the PostGIS point the request is stored as.
type GeoPoint struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

// ServiceRequest is the dispatch engine's central record. Status, WorkerID
// and RejectedBy are written only through the coordinator; everything else
// is immutable after creation.
type ServiceRequest struct {
	ID          string     `json:"id"`
	CustomerID  string     `json:"customer_id"`
	WorkerID    string     `json:"worker_id,omitempty"` // empty until accepted
	IssueType   string     `json:"issue_type"`
	Description string     `json:"description"`
	Address     Address    `json:"address"`
	Images      []string   `json:"images,omitempty"`
	Location    GeoPoint   `json:"location"`
	Status      string     `json:"status"`
	RejectedBy  []string   `json:"rejected_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
}

// IsRejectedBy reports whether the worker already declined this request.
func (r ServiceRequest) IsRejectedBy(workerId string) bool {
	for _, id := range r.RejectedBy {
		if id == workerId {
			return true
		}
	}
	return false
}

// TransitionMutation describes the field changes applied together with a
// status move. It is only ever applied through the conditional-transition
// primitive, guarded on the expected prior status.
type TransitionMutation struct {
	NewStatus       string
	WorkerID        *string
	ClearRejections bool
	StartedAt       *time.Time
	CompletedAt     *time.Time
}

// MatchCandidate is a pending request surfaced to a worker, with the
// distance computed by the geo query. DistanceMeters is derived output,
// never stored.
type MatchCandidate struct {
	Request        ServiceRequest
	DistanceMeters float64
}
