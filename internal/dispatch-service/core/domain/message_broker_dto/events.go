package messagebrokerdto

// RequestStatusUpdate is the broker payload emitted by the coordinator
// after every applied transition. TargetUserID names the subscriber
// channel the fanout should deliver to.
type RequestStatusUpdate struct {
	RequestID     string `json:"request_id"`
	Status        string `json:"status"`
	WorkerID      string `json:"worker_id,omitempty"`
	TargetUserID  string `json:"target_user_id"`
	CorrelationID string `json:"correlation_id"`
	Timestamp     string `json:"timestamp"`
}
