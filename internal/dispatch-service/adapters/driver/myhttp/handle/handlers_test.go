package handle

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"instantfix/internal/dispatch-service/core/domain/dto"
	"instantfix/internal/dispatch-service/core/domain/model"
	"instantfix/internal/dispatch-service/core/myerrors"
	"instantfix/internal/mylogger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDispatchService returns a canned error (or a canned request) so
// the tests can exercise the transport-level error mapping in isolation.
type stubDispatchService struct {
	err error
	req model.ServiceRequest
}

func (s *stubDispatchService) CreateRequest(customerId string, req dto.CreateRequestDto) (model.ServiceRequest, error) {
	return s.req, s.err
}

func (s *stubDispatchService) GetRequest(requestId, actorId, role string) (model.ServiceRequest, error) {
	return s.req, s.err
}

func (s *stubDispatchService) Accept(requestId, workerId string) (model.ServiceRequest, error) {
	return s.req, s.err
}

func (s *stubDispatchService) Reject(requestId, workerId string) error { return s.err }

func (s *stubDispatchService) Start(requestId, workerId string) (model.ServiceRequest, error) {
	return s.req, s.err
}

func (s *stubDispatchService) Complete(requestId, workerId string) (model.ServiceRequest, error) {
	return s.req, s.err
}

func (s *stubDispatchService) Cancel(requestId, customerId string) (model.ServiceRequest, error) {
	return s.req, s.err
}

func (s *stubDispatchService) ListMyRequests(customerId string, page dto.Page) (dto.RequestListDto, error) {
	return dto.RequestListDto{}, s.err
}

func (s *stubDispatchService) ListAssigned(workerId string, page dto.Page) (dto.RequestListDto, error) {
	return dto.RequestListDto{}, s.err
}

func (s *stubDispatchService) ListCompleted(workerId string, page dto.Page) (dto.RequestListDto, error) {
	return dto.RequestListDto{}, s.err
}

type stubMatchService struct {
	err error
}

func (s *stubMatchService) NearbyRequests(workerId string, q dto.NearbyQuery) (dto.MatchListDto, error) {
	return dto.MatchListDto{}, s.err
}

func testMux(t *testing.T, svc *stubDispatchService, match *stubMatchService) *http.ServeMux {
	t.Helper()

	log, err := mylogger.New(mylogger.LevelError)
	require.NoError(t, err)

	rh := NewRequestHandler(svc, log)
	dh := NewDispatchHandler(svc, match, log)

	mux := http.NewServeMux()
	mux.Handle("POST /requests", rh.CreateRequest())
	mux.Handle("GET /requests/{request_id}", rh.GetRequest())
	mux.Handle("POST /requests/{request_id}/cancel", rh.CancelRequest())
	mux.Handle("GET /worker/requests/nearby", dh.NearbyRequests())
	mux.Handle("POST /worker/requests/{request_id}/accept", dh.AcceptRequest())
	mux.Handle("POST /worker/requests/{request_id}/reject", dh.RejectRequest())
	return mux
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", myerrors.ErrNotFound, http.StatusNotFound},
		{"not authorized", myerrors.ErrNotAuthorized, http.StatusForbidden},
		{"not eligible", myerrors.ErrWorkerNotEligible, http.StatusForbidden},
		{"already assigned", myerrors.ErrAlreadyAssigned, http.StatusConflict},
		{"already rejected", myerrors.ErrAlreadyRejected, http.StatusConflict},
		{"generic conflict", myerrors.ErrConflict, http.StatusConflict},
		{"validation", myerrors.ErrValidation, http.StatusBadRequest},
		{"unexpected", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := testMux(t, &stubDispatchService{err: tt.err}, &stubMatchService{err: tt.err})

			req := httptest.NewRequest(http.MethodPost, "/worker/requests/req-1/accept", nil)
			req.Header.Set("X-UserId", "w-1")
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestInternalErrorsAreOpaque(t *testing.T) {
	mux := testMux(t, &stubDispatchService{err: assert.AnError}, &stubMatchService{})

	req := httptest.NewRequest(http.MethodPost, "/worker/requests/req-1/accept", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}

func TestCreateRequestRejectsBadJson(t *testing.T) {
	mux := testMux(t, &stubDispatchService{}, &stubMatchService{})

	req := httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRequestSuccess(t *testing.T) {
	svc := &stubDispatchService{req: model.ServiceRequest{ID: "req-1", Status: model.StatusPending}}
	mux := testMux(t, svc, &stubMatchService{})

	body := `{"issue_type":"wiring","description":"d","street":"s","city":"c","state":"st","pincode":"1","latitude":43.2,"longitude":76.9}`
	req := httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader(body))
	req.Header.Set("X-UserId", "cust-1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"req-1"`)
}

func TestNearbyRequestsOk(t *testing.T) {
	mux := testMux(t, &stubDispatchService{}, &stubMatchService{})

	req := httptest.NewRequest(http.MethodGet, "/worker/requests/nearby?distance=500&page=2&limit=5", nil)
	req.Header.Set("X-UserId", "w-1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
