package ports

import (
	"context"

	"instantfix/internal/dispatch-service/core/domain/model"

	"github.com/jackc/pgx/v5"
)

type IDB interface {
	GetConn() *pgx.Conn
	IsAlive() error
	Close() error
}

// IRequestRepo is the request store. ConditionalTransition is the single
// concurrency-control primitive: the mutation applies only when the row's
// current status equals expectedStatus, atomically at the storage layer.
// A failed guard returns myerrors.ErrConflict, an unknown id
// myerrors.ErrNotFound.
type IRequestRepo interface {
	Create(ctx context.Context, req model.ServiceRequest) (string, error)
	FindById(ctx context.Context, requestId string) (model.ServiceRequest, error)
	ConditionalTransition(ctx context.Context, requestId, expectedStatus string, mut model.TransitionMutation) (model.ServiceRequest, error)

	// AppendRejection records a per-worker rejection while the request is
	// pending. ErrAlreadyRejected for a repeat, ErrConflict when the
	// request left pending, ErrNotFound for an unknown id.
	AppendRejection(ctx context.Context, requestId, workerId string) error

	// FindNearbyPending returns pending requests within maxMeters of
	// origin whose rejection set does not contain workerId, each with its
	// computed distance. Ordering is left to the matcher.
	FindNearbyPending(ctx context.Context, workerId string, origin model.GeoPoint, maxMeters float64) ([]model.MatchCandidate, error)

	ListByCustomer(ctx context.Context, customerId string, offset, limit int) ([]model.ServiceRequest, int64, error)
	ListByWorker(ctx context.Context, workerId string, statuses []string, offset, limit int) ([]model.ServiceRequest, int64, error)
}

// IWorkerRepo is the worker directory, read-only on the dispatch path;
// the set operations serve the worker's own profile updates.
type IWorkerRepo interface {
	FindById(ctx context.Context, workerId string) (model.Worker, error)
	SetLocation(ctx context.Context, workerId string, loc model.GeoPoint) error
	SetAvailability(ctx context.Context, workerId string, isAvailable bool) error
}

type INotificationRepo interface {
	Create(ctx context.Context, n model.Notification) (string, error)
	ListByUser(ctx context.Context, userId string, offset, limit int) ([]model.Notification, int64, error)
	MarkRead(ctx context.Context, notificationId, userId string) (model.Notification, error)
	Delete(ctx context.Context, notificationId, userId string) error
}
