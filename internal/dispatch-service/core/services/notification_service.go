package services

import (
	"context"

	"instantfix/internal/dispatch-service/core/domain/dto"
	"instantfix/internal/dispatch-service/core/domain/model"
	"instantfix/internal/dispatch-service/core/ports"
	"instantfix/internal/mylogger"
)

// NotificationService is the read/acknowledge surface over the durable
// notification rows the coordinator writes. It never creates rows itself.
type NotificationService struct {
	ctx              context.Context
	mylog            mylogger.Logger
	notificationRepo ports.INotificationRepo
	defaultPageLimit int
}

func NewNotificationService(ctx context.Context,
	log mylogger.Logger,
	notificationRepo ports.INotificationRepo,
	defaultPageLimit int,
) ports.INotificationService {
	return &NotificationService{
		ctx:              ctx,
		mylog:            log,
		notificationRepo: notificationRepo,
		defaultPageLimit: defaultPageLimit,
	}
}

func (ns *NotificationService) ListMyNotifications(userId string, page dto.Page) (dto.NotificationListDto, error) {
	page = page.Normalize(ns.defaultPageLimit)

	ctx, cancel := context.WithTimeout(ns.ctx, repoTimeout)
	defer cancel()

	items, total, err := ns.notificationRepo.ListByUser(ctx, userId, page.Offset(), page.Limit)
	if err != nil {
		return dto.NotificationListDto{}, err
	}

	return dto.NotificationListDto{
		Page:          page.Page,
		Limit:         page.Limit,
		Total:         total,
		TotalPages:    dto.TotalPages(total, page.Limit),
		Count:         len(items),
		Notifications: items,
	}, nil
}

func (ns *NotificationService) MarkAsRead(notificationId, userId string) (model.Notification, error) {
	log := ns.mylog.Action("MarkAsRead")

	ctx, cancel := context.WithTimeout(ns.ctx, repoTimeout)
	defer cancel()

	n, err := ns.notificationRepo.MarkRead(ctx, notificationId, userId)
	if err != nil {
		return model.Notification{}, err
	}

	log.Debug("notification marked read", "notification_id", notificationId, "user_id", userId)
	return n, nil
}

func (ns *NotificationService) Delete(notificationId, userId string) error {
	log := ns.mylog.Action("Delete")

	ctx, cancel := context.WithTimeout(ns.ctx, repoTimeout)
	defer cancel()

	if err := ns.notificationRepo.Delete(ctx, notificationId, userId); err != nil {
		return err
	}

	log.Debug("notification deleted", "notification_id", notificationId, "user_id", userId)
	return nil
}
