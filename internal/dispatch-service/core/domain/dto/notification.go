package dto

import "instantfix/internal/dispatch-service/core/domain/model"

type NotificationListDto struct {
	Page          int                  `json:"page"`
	Limit         int                  `json:"limit"`
	Total         int64                `json:"total"`
	TotalPages    int64                `json:"total_pages"`
	Count         int                  `json:"count"`
	Notifications []model.Notification `json:"notifications"`
}
