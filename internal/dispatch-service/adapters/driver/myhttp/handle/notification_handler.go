package handle

import (
	"net/http"

	"instantfix/internal/dispatch-service/core/ports"
	"instantfix/internal/mylogger"
)

type NotificationHandler struct {
	notificationService ports.INotificationService
	log                 mylogger.Logger
}

func NewNotificationHandler(ns ports.INotificationService, log mylogger.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: ns,
		log:                 log,
	}
}

func (nh *NotificationHandler) ListNotifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := nh.notificationService.ListMyNotifications(actorId(r), pageFromQuery(r))
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (nh *NotificationHandler) MarkRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notificationId := r.PathValue("notification_id")

		res, err := nh.notificationService.MarkAsRead(notificationId, actorId(r))
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (nh *NotificationHandler) DeleteNotification() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notificationId := r.PathValue("notification_id")

		if err := nh.notificationService.Delete(notificationId, actorId(r)); err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, map[string]string{"message": "Notification deleted."})
	}
}
