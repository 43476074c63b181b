package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"instantfix/internal/dispatch-service/core/domain/dto"
	"instantfix/internal/dispatch-service/core/domain/model"
	"instantfix/internal/dispatch-service/core/myerrors"
	"instantfix/internal/dispatch-service/core/ports"
	"instantfix/internal/metrics"
	"instantfix/internal/mylogger"

	messagebrokerdto "instantfix/internal/dispatch-service/core/domain/message_broker_dto"

	"github.com/google/uuid"
)

const (
	repoTimeout      = 15 * time.Second
	defaultListLimit = 10
)

// DispatchService enforces the request lifecycle. Every transition goes
// through the request repo's conditional-transition primitive, so two
// stateless instances can race safely: the storage-layer status guard is
// the only lock in the system.
type DispatchService struct {
	ctx              context.Context
	mylog            mylogger.Logger
	requestRepo      ports.IRequestRepo
	workerRepo       ports.IWorkerRepo
	notificationRepo ports.INotificationRepo
	broker           ports.IEventBroker
}

func NewDispatchService(ctx context.Context,
	log mylogger.Logger,
	requestRepo ports.IRequestRepo,
	workerRepo ports.IWorkerRepo,
	notificationRepo ports.INotificationRepo,
	broker ports.IEventBroker,
) ports.IDispatchService {
	return &DispatchService{
		ctx:              ctx,
		mylog:            log,
		requestRepo:      requestRepo,
		workerRepo:       workerRepo,
		notificationRepo: notificationRepo,
		broker:           broker,
	}
}

func (ds *DispatchService) CreateRequest(customerId string, req dto.CreateRequestDto) (model.ServiceRequest, error) {
	log := ds.mylog.Action("CreateRequest")

	if customerId == "" {
		return model.ServiceRequest{}, fmt.Errorf("%w: empty customer id", myerrors.ErrValidation)
	}
	if err := req.Validate(); err != nil {
		return model.ServiceRequest{}, err
	}

	m := model.ServiceRequest{
		CustomerID:  customerId,
		IssueType:   req.IssueType,
		Description: req.Description,
		Address: model.Address{
			Street:  req.Street,
			City:    req.City,
			State:   req.State,
			Pincode: req.Pincode,
		},
		Images: req.Images,
		Location: model.GeoPoint{
			Longitude: *req.Longitude,
			Latitude:  *req.Latitude,
		},
		Status: model.StatusPending,
	}

	ctx, cancel := context.WithTimeout(ds.ctx, repoTimeout)
	defer cancel()

	requestId, err := ds.requestRepo.Create(ctx, m)
	if err != nil {
		log.Error("cannot create service request", err, "customer_id", customerId)
		return model.ServiceRequest{}, err
	}

	ctx, cancel = context.WithTimeout(ds.ctx, repoTimeout)
	defer cancel()

	created, err := ds.requestRepo.FindById(ctx, requestId)
	if err != nil {
		return model.ServiceRequest{}, err
	}

	log.Info("service request created", "request_id", requestId, "issue_type", m.IssueType)
	return created, nil
}

// GetRequest applies the visibility rules: the owning customer always
// sees their request; a worker sees a pending request unless they
// rejected it, and a non-pending request only if assigned to them.
func (ds *DispatchService) GetRequest(requestId, actorId, role string) (model.ServiceRequest, error) {
	ctx, cancel := context.WithTimeout(ds.ctx, repoTimeout)
	defer cancel()

	req, err := ds.requestRepo.FindById(ctx, requestId)
	if err != nil {
		return model.ServiceRequest{}, err
	}

	if role == model.RoleCustomer {
		if req.CustomerID != actorId {
			return model.ServiceRequest{}, myerrors.ErrNotAuthorized
		}
		return req, nil
	}

	if req.Status == model.StatusPending {
		if req.IsRejectedBy(actorId) {
			return model.ServiceRequest{}, fmt.Errorf("you rejected this request: %w", myerrors.ErrNotAuthorized)
		}
		return req, nil
	}
	if req.WorkerID != actorId {
		return model.ServiceRequest{}, myerrors.ErrNotAuthorized
	}
	return req, nil
}

// Accept is the dispatch race. The worker gate runs first; the actual
// assignment is one conditional transition keyed on status=pending, so
// with N concurrent callers exactly one wins and the rest get
// ErrAlreadyAssigned. A fresh assignment clears the rejection history:
// the request is no longer up for re-matching.
func (ds *DispatchService) Accept(requestId, workerId string) (model.ServiceRequest, error) {
	log := ds.mylog.Action("Accept")

	if err := ds.checkWorkerEligible(workerId); err != nil {
		metrics.RequestTransitions.WithLabelValues("accept", "rejected").Inc()
		return model.ServiceRequest{}, err
	}

	ctx, cancel := context.WithTimeout(ds.ctx, repoTimeout)
	defer cancel()

	req, err := ds.requestRepo.ConditionalTransition(ctx, requestId, model.StatusPending, model.TransitionMutation{
		NewStatus:       model.StatusAccepted,
		WorkerID:        &workerId,
		ClearRejections: true,
	})
	if err != nil {
		if errors.Is(err, myerrors.ErrConflict) {
			metrics.RequestTransitions.WithLabelValues("accept", "conflict").Inc()
			return model.ServiceRequest{}, myerrors.ErrAlreadyAssigned
		}
		return model.ServiceRequest{}, err
	}

	metrics.RequestTransitions.WithLabelValues("accept", "ok").Inc()
	log.Info("request accepted", "request_id", requestId, "worker_id", workerId)

	ds.publishStatus(req, model.StatusAccepted)
	return req, nil
}

// Reject is per-worker: it never changes the global status, only the
// request's rejection set, so other workers keep seeing the request.
func (ds *DispatchService) Reject(requestId, workerId string) error {
	log := ds.mylog.Action("Reject")

	ctx, cancel := context.WithTimeout(ds.ctx, repoTimeout)
	defer cancel()

	if err := ds.requestRepo.AppendRejection(ctx, requestId, workerId); err != nil {
		metrics.RequestTransitions.WithLabelValues("reject", "rejected").Inc()
		return err
	}

	metrics.RequestTransitions.WithLabelValues("reject", "ok").Inc()
	log.Info("request rejected for worker", "request_id", requestId, "worker_id", workerId)
	return nil
}

func (ds *DispatchService) Start(requestId, workerId string) (model.ServiceRequest, error) {
	log := ds.mylog.Action("Start")

	req, err := ds.ownedTransition(requestId, workerId, model.StatusAccepted, func(now time.Time) model.TransitionMutation {
		return model.TransitionMutation{
			NewStatus: model.StatusInProgress,
			StartedAt: &now,
		}
	})
	if err != nil {
		metrics.RequestTransitions.WithLabelValues("start", outcomeLabel(err)).Inc()
		return model.ServiceRequest{}, err
	}

	metrics.RequestTransitions.WithLabelValues("start", "ok").Inc()
	log.Info("job started", "request_id", requestId, "worker_id", workerId)

	ds.publishStatus(req, model.StatusInProgress)
	return req, nil
}

// Complete moves in-progress to the terminal completed state. The durable
// notification is written synchronously: losing it is data loss the
// caller must hear about, unlike a missed live push.
func (ds *DispatchService) Complete(requestId, workerId string) (model.ServiceRequest, error) {
	log := ds.mylog.Action("Complete")

	req, err := ds.ownedTransition(requestId, workerId, model.StatusInProgress, func(now time.Time) model.TransitionMutation {
		return model.TransitionMutation{
			NewStatus:   model.StatusCompleted,
			CompletedAt: &now,
		}
	})
	if err != nil {
		metrics.RequestTransitions.WithLabelValues("complete", outcomeLabel(err)).Inc()
		return model.ServiceRequest{}, err
	}

	ctx, cancel := context.WithTimeout(ds.ctx, repoTimeout)
	defer cancel()

	_, err = ds.notificationRepo.Create(ctx, model.Notification{
		UserID:  req.CustomerID,
		Title:   "Service Completed",
		Type:    model.NotificationRequestCompleted,
		Message: "Your service has been completed successfully.",
	})
	if err != nil {
		log.Error("cannot record completion notification", err, "request_id", requestId)
		return model.ServiceRequest{}, fmt.Errorf("record completion notification: %w", err)
	}
	metrics.NotificationsRecorded.Inc()

	metrics.RequestTransitions.WithLabelValues("complete", "ok").Inc()
	log.Info("job completed", "request_id", requestId, "worker_id", workerId)

	ds.publishStatus(req, model.StatusCompleted)
	return req, nil
}

// Cancel is customer-only and only while pending. Nothing is published:
// no worker is assigned yet and the customer is the actor.
func (ds *DispatchService) Cancel(requestId, customerId string) (model.ServiceRequest, error) {
	log := ds.mylog.Action("Cancel")

	ctx, cancel := context.WithTimeout(ds.ctx, repoTimeout)
	defer cancel()

	current, err := ds.requestRepo.FindById(ctx, requestId)
	if err != nil {
		return model.ServiceRequest{}, err
	}
	if current.CustomerID != customerId {
		metrics.RequestTransitions.WithLabelValues("cancel", "rejected").Inc()
		return model.ServiceRequest{}, myerrors.ErrNotAuthorized
	}

	ctx, cancel = context.WithTimeout(ds.ctx, repoTimeout)
	defer cancel()

	req, err := ds.requestRepo.ConditionalTransition(ctx, requestId, model.StatusPending, model.TransitionMutation{
		NewStatus: model.StatusCancelled,
	})
	if err != nil {
		if errors.Is(err, myerrors.ErrConflict) {
			metrics.RequestTransitions.WithLabelValues("cancel", "conflict").Inc()
			return model.ServiceRequest{}, fmt.Errorf("cannot cancel in current state: %w", myerrors.ErrConflict)
		}
		return model.ServiceRequest{}, err
	}

	metrics.RequestTransitions.WithLabelValues("cancel", "ok").Inc()
	log.Info("request cancelled", "request_id", requestId, "customer_id", customerId)
	return req, nil
}

func (ds *DispatchService) ListMyRequests(customerId string, page dto.Page) (dto.RequestListDto, error) {
	page = page.Normalize(defaultListLimit)

	ctx, cancel := context.WithTimeout(ds.ctx, repoTimeout)
	defer cancel()

	items, total, err := ds.requestRepo.ListByCustomer(ctx, customerId, page.Offset(), page.Limit)
	if err != nil {
		return dto.RequestListDto{}, err
	}
	return listDto(items, total, page), nil
}

func (ds *DispatchService) ListAssigned(workerId string, page dto.Page) (dto.RequestListDto, error) {
	page = page.Normalize(defaultListLimit)

	ctx, cancel := context.WithTimeout(ds.ctx, repoTimeout)
	defer cancel()

	items, total, err := ds.requestRepo.ListByWorker(ctx, workerId,
		[]string{model.StatusAccepted, model.StatusInProgress}, page.Offset(), page.Limit)
	if err != nil {
		return dto.RequestListDto{}, err
	}
	return listDto(items, total, page), nil
}

func (ds *DispatchService) ListCompleted(workerId string, page dto.Page) (dto.RequestListDto, error) {
	page = page.Normalize(defaultListLimit)

	ctx, cancel := context.WithTimeout(ds.ctx, repoTimeout)
	defer cancel()

	items, total, err := ds.requestRepo.ListByWorker(ctx, workerId,
		[]string{model.StatusCompleted}, page.Offset(), page.Limit)
	if err != nil {
		return dto.RequestListDto{}, err
	}
	return listDto(items, total, page), nil
}

// ownedTransition runs the ownership check before the status guard, so a
// foreign worker always gets ErrNotAuthorized no matter what state the
// request is in.
func (ds *DispatchService) ownedTransition(requestId, workerId, expectedStatus string,
	mut func(now time.Time) model.TransitionMutation,
) (model.ServiceRequest, error) {
	ctx, cancel := context.WithTimeout(ds.ctx, repoTimeout)
	defer cancel()

	current, err := ds.requestRepo.FindById(ctx, requestId)
	if err != nil {
		return model.ServiceRequest{}, err
	}
	if current.WorkerID == "" || current.WorkerID != workerId {
		return model.ServiceRequest{}, myerrors.ErrNotAuthorized
	}

	ctx, cancel = context.WithTimeout(ds.ctx, repoTimeout)
	defer cancel()

	return ds.requestRepo.ConditionalTransition(ctx, requestId, expectedStatus, mut(time.Now().UTC()))
}

func (ds *DispatchService) checkWorkerEligible(workerId string) error {
	ctx, cancel := context.WithTimeout(ds.ctx, repoTimeout)
	defer cancel()

	worker, err := ds.workerRepo.FindById(ctx, workerId)
	if err != nil {
		if errors.Is(err, myerrors.ErrNotFound) {
			return fmt.Errorf("unknown worker: %w", myerrors.ErrWorkerNotEligible)
		}
		return err
	}
	if !worker.Approved {
		return fmt.Errorf("worker not approved: %w", myerrors.ErrWorkerNotEligible)
	}
	if !worker.IsAvailable {
		return fmt.Errorf("worker not available: %w", myerrors.ErrWorkerNotEligible)
	}
	return nil
}

// publishStatus pushes the transition to the broker for live fanout.
// Failures are logged and swallowed: the state change already happened
// and must not be rolled back or blocked by delivery problems.
func (ds *DispatchService) publishStatus(req model.ServiceRequest, status string) {
	log := ds.mylog.Action("publishStatus")

	msg := messagebrokerdto.RequestStatusUpdate{
		RequestID:     req.ID,
		Status:        status,
		WorkerID:      req.WorkerID,
		TargetUserID:  req.CustomerID,
		CorrelationID: uuid.NewString(),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}

	ctx, cancel := context.WithTimeout(ds.ctx, repoTimeout)
	defer cancel()

	if err := ds.broker.PushStatusUpdate(ctx, msg); err != nil {
		metrics.EventsPublished.WithLabelValues(status, "error").Inc()
		log.Error("cannot publish status update", err, "request_id", req.ID, "status", status)
		return
	}
	metrics.EventsPublished.WithLabelValues(status, "ok").Inc()
}

func listDto(items []model.ServiceRequest, total int64, page dto.Page) dto.RequestListDto {
	return dto.RequestListDto{
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      total,
		TotalPages: dto.TotalPages(total, page.Limit),
		Count:      len(items),
		Requests:   items,
	}
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, myerrors.ErrNotAuthorized):
		return "rejected"
	case errors.Is(err, myerrors.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
