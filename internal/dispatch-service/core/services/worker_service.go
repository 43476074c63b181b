package services

import (
	"context"
	"fmt"

	"instantfix/internal/dispatch-service/core/domain/dto"
	"instantfix/internal/dispatch-service/core/domain/model"
	"instantfix/internal/dispatch-service/core/myerrors"
	"instantfix/internal/dispatch-service/core/ports"
	"instantfix/internal/mylogger"
)

// WorkerService handles the worker's own profile updates on the dispatch
// path: position and availability. Both are gated on admin approval, as
// in the intake system, so an unapproved account cannot put itself on
// the map.
type WorkerService struct {
	ctx        context.Context
	mylog      mylogger.Logger
	workerRepo ports.IWorkerRepo
}

func NewWorkerService(ctx context.Context, log mylogger.Logger, workerRepo ports.IWorkerRepo) ports.IWorkerService {
	return &WorkerService{
		ctx:        ctx,
		mylog:      log,
		workerRepo: workerRepo,
	}
}

func (ws *WorkerService) SetLocation(workerId string, req dto.SetLocationDto) (model.Worker, error) {
	log := ws.mylog.Action("SetLocation")

	if err := req.Validate(); err != nil {
		return model.Worker{}, err
	}

	worker, err := ws.approvedWorker(workerId)
	if err != nil {
		return model.Worker{}, err
	}

	loc := model.GeoPoint{Longitude: *req.Longitude, Latitude: *req.Latitude}

	ctx, cancel := context.WithTimeout(ws.ctx, repoTimeout)
	defer cancel()

	if err := ws.workerRepo.SetLocation(ctx, workerId, loc); err != nil {
		log.Error("cannot set worker location", err, "worker_id", workerId)
		return model.Worker{}, err
	}

	worker.Location = &loc
	log.Info("worker location updated", "worker_id", workerId)
	return worker, nil
}

func (ws *WorkerService) SetAvailability(workerId string, isAvailable bool) (model.Worker, error) {
	log := ws.mylog.Action("SetAvailability")

	worker, err := ws.approvedWorker(workerId)
	if err != nil {
		return model.Worker{}, err
	}

	ctx, cancel := context.WithTimeout(ws.ctx, repoTimeout)
	defer cancel()

	if err := ws.workerRepo.SetAvailability(ctx, workerId, isAvailable); err != nil {
		log.Error("cannot set worker availability", err, "worker_id", workerId)
		return model.Worker{}, err
	}

	worker.IsAvailable = isAvailable
	log.Info("worker availability updated", "worker_id", workerId, "is_available", isAvailable)
	return worker, nil
}

func (ws *WorkerService) approvedWorker(workerId string) (model.Worker, error) {
	ctx, cancel := context.WithTimeout(ws.ctx, repoTimeout)
	defer cancel()

	worker, err := ws.workerRepo.FindById(ctx, workerId)
	if err != nil {
		return model.Worker{}, err
	}
	if !worker.Approved {
		return model.Worker{}, fmt.Errorf("worker not approved: %w", myerrors.ErrWorkerNotEligible)
	}
	return worker, nil
}
