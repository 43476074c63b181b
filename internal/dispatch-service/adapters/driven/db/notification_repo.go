package db

import (
	"context"
	"errors"

	"instantfix/internal/dispatch-service/core/domain/model"
	"instantfix/internal/dispatch-service/core/myerrors"
	"instantfix/internal/dispatch-service/core/ports"

	"github.com/jackc/pgx/v5"
)

type NotificationRepo struct {
	db *DB
}

func NewNotificationRepo(db *DB) ports.INotificationRepo {
	return &NotificationRepo{db: db}
}

func (nr *NotificationRepo) Create(ctx context.Context, n model.Notification) (string, error) {
	q := `
	INSERT INTO notifications(user_id, title, type, message)
	VALUES ($1, $2, $3, $4)
	RETURNING notification_id`

	notificationId := ""
	row := nr.db.conn.QueryRow(ctx, q, n.UserID, n.Title, n.Type, n.Message)
	if err := row.Scan(&notificationId); err != nil {
		return "", err
	}
	return notificationId, nil
}

func (nr *NotificationRepo) ListByUser(ctx context.Context, userId string, offset, limit int) ([]model.Notification, int64, error) {
	var total int64
	if err := nr.db.conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1`, userId,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `
	SELECT notification_id, user_id, title, type, message, is_read, created_at
	FROM notifications
	WHERE user_id = $1
	ORDER BY created_at DESC
	OFFSET $2 LIMIT $3`

	rows, err := nr.db.conn.Query(ctx, q, userId, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []model.Notification
	for rows.Next() {
		n := model.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Type, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, n)
	}
	return items, total, rows.Err()
}

func (nr *NotificationRepo) MarkRead(ctx context.Context, notificationId, userId string) (model.Notification, error) {
	q := `
	UPDATE notifications
	SET is_read = TRUE
	WHERE notification_id = $1 AND user_id = $2
	RETURNING notification_id, user_id, title, type, message, is_read, created_at`

	n := model.Notification{}
	row := nr.db.conn.QueryRow(ctx, q, notificationId, userId)
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Type, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Notification{}, myerrors.ErrNotFound
		}
		return model.Notification{}, err
	}
	return n, nil
}

func (nr *NotificationRepo) Delete(ctx context.Context, notificationId, userId string) error {
	tag, err := nr.db.conn.Exec(ctx,
		`DELETE FROM notifications WHERE notification_id = $1 AND user_id = $2`,
		notificationId, userId)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return myerrors.ErrNotFound
	}
	return nil
}
