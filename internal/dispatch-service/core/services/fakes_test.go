package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"instantfix/internal/dispatch-service/core/domain/model"
	"instantfix/internal/dispatch-service/core/myerrors"
	"instantfix/internal/mylogger"

	messagebrokerdto "instantfix/internal/dispatch-service/core/domain/message_broker_dto"

	amqp "github.com/rabbitmq/amqp091-go"
)

func testLogger(t *testing.T) mylogger.Logger {
	t.Helper()
	log, err := mylogger.New(mylogger.LevelError)
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

// fakeRequestRepo mirrors the storage contract in memory. The mutex
// makes ConditionalTransition atomic, which is exactly the guarantee
// the real store provides with its guarded UPDATE.
type fakeRequestRepo struct {
	mu        sync.Mutex
	seq       int
	requests  map[string]model.ServiceRequest
	distances map[string]float64 // per-request distance used by FindNearbyPending
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{
		requests:  make(map[string]model.ServiceRequest),
		distances: make(map[string]float64),
	}
}

func (f *fakeRequestRepo) put(req model.ServiceRequest, distance float64) model.ServiceRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.ID == "" {
		f.seq++
		req.ID = fmt.Sprintf("req-%d", f.seq)
	}
	if req.Status == "" {
		req.Status = model.StatusPending
	}
	f.requests[req.ID] = req
	f.distances[req.ID] = distance
	return req
}

func (f *fakeRequestRepo) Create(ctx context.Context, req model.ServiceRequest) (string, error) {
	return f.put(req, 0).ID, nil
}

func (f *fakeRequestRepo) FindById(ctx context.Context, requestId string) (model.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[requestId]
	if !ok {
		return model.ServiceRequest{}, myerrors.ErrNotFound
	}
	return req, nil
}

func (f *fakeRequestRepo) ConditionalTransition(ctx context.Context, requestId, expectedStatus string, mut model.TransitionMutation) (model.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	req, ok := f.requests[requestId]
	if !ok {
		return model.ServiceRequest{}, myerrors.ErrNotFound
	}
	if req.Status != expectedStatus {
		return model.ServiceRequest{}, myerrors.ErrConflict
	}

	req.Status = mut.NewStatus
	if mut.WorkerID != nil {
		req.WorkerID = *mut.WorkerID
	}
	if mut.ClearRejections {
		req.RejectedBy = nil
	}
	if mut.StartedAt != nil {
		req.StartedAt = mut.StartedAt
	}
	if mut.CompletedAt != nil {
		req.CompletedAt = mut.CompletedAt
	}
	f.requests[requestId] = req
	return req, nil
}

func (f *fakeRequestRepo) AppendRejection(ctx context.Context, requestId, workerId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	req, ok := f.requests[requestId]
	if !ok {
		return myerrors.ErrNotFound
	}
	if req.Status != model.StatusPending {
		return myerrors.ErrConflict
	}
	if req.IsRejectedBy(workerId) {
		return myerrors.ErrAlreadyRejected
	}
	req.RejectedBy = append(req.RejectedBy, workerId)
	f.requests[requestId] = req
	return nil
}

func (f *fakeRequestRepo) FindNearbyPending(ctx context.Context, workerId string, origin model.GeoPoint, maxMeters float64) ([]model.MatchCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []model.MatchCandidate{}
	for id, req := range f.requests {
		if req.Status != model.StatusPending || req.IsRejectedBy(workerId) {
			continue
		}
		if d := f.distances[id]; d <= maxMeters {
			out = append(out, model.MatchCandidate{Request: req, DistanceMeters: d})
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) ListByCustomer(ctx context.Context, customerId string, offset, limit int) ([]model.ServiceRequest, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all := []model.ServiceRequest{}
	for _, req := range f.requests {
		if req.CustomerID == customerId {
			all = append(all, req)
		}
	}
	return pageSlice(all, offset, limit), int64(len(all)), nil
}

func (f *fakeRequestRepo) ListByWorker(ctx context.Context, workerId string, statuses []string, offset, limit int) ([]model.ServiceRequest, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	wanted := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}

	all := []model.ServiceRequest{}
	for _, req := range f.requests {
		if req.WorkerID == workerId && wanted[req.Status] {
			all = append(all, req)
		}
	}
	return pageSlice(all, offset, limit), int64(len(all)), nil
}

func pageSlice(all []model.ServiceRequest, offset, limit int) []model.ServiceRequest {
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if limit < 1 || end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

type fakeWorkerRepo struct {
	mu      sync.Mutex
	workers map[string]model.Worker
}

func newFakeWorkerRepo(workers ...model.Worker) *fakeWorkerRepo {
	f := &fakeWorkerRepo{workers: make(map[string]model.Worker)}
	for _, w := range workers {
		f.workers[w.ID] = w
	}
	return f
}

func (f *fakeWorkerRepo) FindById(ctx context.Context, workerId string) (model.Worker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workers[workerId]
	if !ok {
		return model.Worker{}, myerrors.ErrNotFound
	}
	return w, nil
}

func (f *fakeWorkerRepo) SetLocation(ctx context.Context, workerId string, loc model.GeoPoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workers[workerId]
	if !ok {
		return myerrors.ErrNotFound
	}
	w.Location = &loc
	f.workers[workerId] = w
	return nil
}

func (f *fakeWorkerRepo) SetAvailability(ctx context.Context, workerId string, isAvailable bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workers[workerId]
	if !ok {
		return myerrors.ErrNotFound
	}
	w.IsAvailable = isAvailable
	f.workers[workerId] = w
	return nil
}

type fakeNotificationRepo struct {
	mu         sync.Mutex
	seq        int
	rows       []model.Notification
	createErr  error
	deletedIds []string
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n model.Notification) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.seq++
	n.ID = fmt.Sprintf("ntf-%d", f.seq)
	f.rows = append(f.rows, n)
	return n.ID, nil
}

func (f *fakeNotificationRepo) ListByUser(ctx context.Context, userId string, offset, limit int) ([]model.Notification, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all := []model.Notification{}
	for _, n := range f.rows {
		if n.UserID == userId {
			all = append(all, n)
		}
	}
	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if limit < 1 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, notificationId, userId string) (model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.rows {
		if n.ID == notificationId && n.UserID == userId {
			f.rows[i].IsRead = true
			return f.rows[i], nil
		}
	}
	return model.Notification{}, myerrors.ErrNotFound
}

func (f *fakeNotificationRepo) Delete(ctx context.Context, notificationId, userId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.rows {
		if n.ID == notificationId && n.UserID == userId {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			f.deletedIds = append(f.deletedIds, notificationId)
			return nil
		}
	}
	return myerrors.ErrNotFound
}

type fakeBroker struct {
	mu        sync.Mutex
	published []messagebrokerdto.RequestStatusUpdate
	pushErr   error
}

func (f *fakeBroker) Close() error { return nil }

func (f *fakeBroker) PushStatusUpdate(ctx context.Context, msg messagebrokerdto.RequestStatusUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pushErr != nil {
		return f.pushErr
	}
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeBroker) ConsumeStatusUpdates(ctx context.Context) (<-chan amqp.Delivery, error) {
	return nil, nil
}

func (f *fakeBroker) publishedStatuses() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.published))
	for _, m := range f.published {
		out = append(out, m.Status)
	}
	return out
}
