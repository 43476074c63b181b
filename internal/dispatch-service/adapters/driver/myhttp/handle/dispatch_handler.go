package handle

import (
	"net/http"
	"strconv"

	"instantfix/internal/dispatch-service/core/domain/dto"
	"instantfix/internal/dispatch-service/core/ports"
	"instantfix/internal/mylogger"
)

// DispatchHandler covers the worker-facing lifecycle: the ranked match
// feed plus accept, reject, start and complete.
type DispatchHandler struct {
	dispatchService ports.IDispatchService
	matchService    ports.IMatchService
	log             mylogger.Logger
}

func NewDispatchHandler(ds ports.IDispatchService, ms ports.IMatchService, log mylogger.Logger) *DispatchHandler {
	return &DispatchHandler{
		dispatchService: ds,
		matchService:    ms,
		log:             log,
	}
}

func (dh *DispatchHandler) NearbyRequests() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := dto.NearbyQuery{Page: pageFromQuery(r)}
		if v, err := strconv.ParseFloat(r.URL.Query().Get("distance"), 64); err == nil {
			q.MaxDistanceMeters = v
		}

		res, err := dh.matchService.NearbyRequests(actorId(r), q)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (dh *DispatchHandler) AcceptRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := dh.log.Action("AcceptRequest")
		requestId := r.PathValue("request_id")

		res, err := dh.dispatchService.Accept(requestId, actorId(r))
		if err != nil {
			log.Warn("accept refused", "request_id", requestId, "error", err.Error())
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, dto.RequestResponseDto{
			Request: res,
			Message: "Request accepted.",
		})
	}
}

func (dh *DispatchHandler) RejectRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := dh.log.Action("RejectRequest")
		requestId := r.PathValue("request_id")

		if err := dh.dispatchService.Reject(requestId, actorId(r)); err != nil {
			log.Warn("reject refused", "request_id", requestId, "error", err.Error())
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, map[string]string{"message": "Request rejected."})
	}
}

func (dh *DispatchHandler) StartRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestId := r.PathValue("request_id")

		res, err := dh.dispatchService.Start(requestId, actorId(r))
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, dto.RequestResponseDto{
			Request: res,
			Message: "Work started.",
		})
	}
}

func (dh *DispatchHandler) CompleteRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestId := r.PathValue("request_id")

		res, err := dh.dispatchService.Complete(requestId, actorId(r))
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, dto.RequestResponseDto{
			Request: res,
			Message: "Work completed.",
		})
	}
}

func (dh *DispatchHandler) ListAssigned() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := dh.dispatchService.ListAssigned(actorId(r), pageFromQuery(r))
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (dh *DispatchHandler) ListCompleted() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := dh.dispatchService.ListCompleted(actorId(r), pageFromQuery(r))
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}
