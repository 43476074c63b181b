package ports

import (
	"instantfix/internal/dispatch-service/core/domain/dto"
	"instantfix/internal/dispatch-service/core/domain/model"
)

// IDispatchService is the assignment coordinator: the only writer of a
// request's status, worker assignment and rejection history.
type IDispatchService interface {
	CreateRequest(customerId string, req dto.CreateRequestDto) (model.ServiceRequest, error)
	GetRequest(requestId, actorId, role string) (model.ServiceRequest, error)

	Accept(requestId, workerId string) (model.ServiceRequest, error)
	Reject(requestId, workerId string) error
	Start(requestId, workerId string) (model.ServiceRequest, error)
	Complete(requestId, workerId string) (model.ServiceRequest, error)
	Cancel(requestId, customerId string) (model.ServiceRequest, error)

	ListMyRequests(customerId string, page dto.Page) (dto.RequestListDto, error)
	ListAssigned(workerId string, page dto.Page) (dto.RequestListDto, error)
	ListCompleted(workerId string, page dto.Page) (dto.RequestListDto, error)
}

// IMatchService surfaces open requests to an eligible worker, ranked by
// skill then distance. The result is a point-in-time snapshot; winning
// the request still goes through Accept.
type IMatchService interface {
	NearbyRequests(workerId string, q dto.NearbyQuery) (dto.MatchListDto, error)
}

type IWorkerService interface {
	SetLocation(workerId string, req dto.SetLocationDto) (model.Worker, error)
	SetAvailability(workerId string, isAvailable bool) (model.Worker, error)
}

type INotificationService interface {
	ListMyNotifications(userId string, page dto.Page) (dto.NotificationListDto, error)
	MarkAsRead(notificationId, userId string) (model.Notification, error)
	Delete(notificationId, userId string) error
}
