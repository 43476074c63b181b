package handle

import (
	"encoding/json"
	"net/http"

	"instantfix/internal/dispatch-service/core/domain/dto"
	"instantfix/internal/dispatch-service/core/ports"
	"instantfix/internal/mylogger"
)

// RequestHandler covers the customer-facing surface: intake, detail,
// history and cancellation.
type RequestHandler struct {
	dispatchService ports.IDispatchService
	log             mylogger.Logger
}

func NewRequestHandler(ds ports.IDispatchService, log mylogger.Logger) *RequestHandler {
	return &RequestHandler{
		dispatchService: ds,
		log:             log,
	}
}

func (rh *RequestHandler) CreateRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := rh.log.Action("CreateRequest")

		req := dto.CreateRequestDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}

		res, err := rh.dispatchService.CreateRequest(actorId(r), req)
		if err != nil {
			log.Warn("request intake refused", "error", err.Error())
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusCreated, dto.RequestResponseDto{
			Request: res,
			Message: "Service request created successfully.",
		})
	}
}

func (rh *RequestHandler) GetRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestId := r.PathValue("request_id")

		res, err := rh.dispatchService.GetRequest(requestId, actorId(r), r.Header.Get("X-Role"))
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, dto.RequestResponseDto{Request: res})
	}
}

func (rh *RequestHandler) CancelRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := rh.log.Action("CancelRequest")
		requestId := r.PathValue("request_id")

		res, err := rh.dispatchService.Cancel(requestId, actorId(r))
		if err != nil {
			log.Warn("cancel refused", "request_id", requestId, "error", err.Error())
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, dto.RequestResponseDto{
			Request: res,
			Message: "Service request cancelled.",
		})
	}
}

func (rh *RequestHandler) ListMyRequests() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := rh.dispatchService.ListMyRequests(actorId(r), pageFromQuery(r))
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}
