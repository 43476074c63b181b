package handle

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"instantfix/internal/dispatch-service/core/domain/dto"
	"instantfix/internal/dispatch-service/core/myerrors"
)

func jsonResponse(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// JsonError writes an error response as JSON with the specified HTTP status code.
func JsonError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// statusFromError maps the core error taxonomy onto HTTP statuses. The
// conflict family (already assigned, already rejected, bad source state)
// all land on 409 so callers can treat them as lost races.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, myerrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, myerrors.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, myerrors.ErrWorkerNotEligible):
		return http.StatusForbidden
	case errors.Is(err, myerrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, myerrors.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func serviceError(w http.ResponseWriter, err error) {
	code := statusFromError(err)
	if code == http.StatusInternalServerError {
		// do not leak internals on unexpected failures
		JsonError(w, code, errors.New("internal server error"))
		return
	}
	JsonError(w, code, err)
}

func pageFromQuery(r *http.Request) dto.Page {
	p := dto.Page{}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		p.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		p.Limit = v
	}
	return p
}

func actorId(r *http.Request) string {
	return r.Header.Get("X-UserId")
}
