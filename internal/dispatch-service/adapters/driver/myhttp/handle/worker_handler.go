package handle

import (
	"encoding/json"
	"fmt"
	"net/http"

	"instantfix/internal/dispatch-service/core/domain/dto"
	"instantfix/internal/dispatch-service/core/ports"
	"instantfix/internal/mylogger"
)

type WorkerHandler struct {
	workerService ports.IWorkerService
	log           mylogger.Logger
}

func NewWorkerHandler(ws ports.IWorkerService, log mylogger.Logger) *WorkerHandler {
	return &WorkerHandler{
		workerService: ws,
		log:           log,
	}
}

func (wh *WorkerHandler) SetLocation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := wh.log.Action("SetLocation")

		req := dto.SetLocationDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}

		worker, err := wh.workerService.SetLocation(actorId(r), req)
		if err != nil {
			log.Warn("location update refused", "error", err.Error())
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, worker)
	}
}

func (wh *WorkerHandler) SetAvailability() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := wh.log.Action("SetAvailability")

		req := dto.SetAvailabilityDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}
		if req.IsAvailable == nil {
			JsonError(w, http.StatusBadRequest, fmt.Errorf("is_available is required"))
			return
		}

		worker, err := wh.workerService.SetAvailability(actorId(r), *req.IsAvailable)
		if err != nil {
			log.Warn("availability update refused", "error", err.Error())
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, worker)
	}
}
