package services

import (
	"context"
	"testing"

	"instantfix/internal/dispatch-service/core/domain/dto"
	"instantfix/internal/dispatch-service/core/domain/model"
	"instantfix/internal/dispatch-service/core/myerrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNotificationFixture(t *testing.T) (*NotificationService, *fakeNotificationRepo) {
	t.Helper()
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(context.Background(), testLogger(t), repo, 10)
	return svc.(*NotificationService), repo
}

func seedNotifications(t *testing.T, repo *fakeNotificationRepo, userId string, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id, err := repo.Create(context.Background(), model.Notification{
			UserID:  userId,
			Title:   "Service Completed",
			Type:    model.NotificationRequestCompleted,
			Message: "Your service has been completed successfully.",
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestListMyNotifications(t *testing.T) {
	svc, repo := newNotificationFixture(t)
	seedNotifications(t, repo, "cust-1", 12)
	seedNotifications(t, repo, "cust-2", 3)

	list, err := svc.ListMyNotifications("cust-1", dto.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 12, list.Total)
	assert.Equal(t, 10, list.Count, "default page size")
	assert.EqualValues(t, 2, list.TotalPages)

	second, err := svc.ListMyNotifications("cust-1", dto.Page{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Count)
}

func TestMarkAsRead(t *testing.T) {
	svc, repo := newNotificationFixture(t)
	ids := seedNotifications(t, repo, "cust-1", 1)

	n, err := svc.MarkAsRead(ids[0], "cust-1")
	require.NoError(t, err)
	assert.True(t, n.IsRead)

	_, err = svc.MarkAsRead(ids[0], "cust-2")
	assert.ErrorIs(t, err, myerrors.ErrNotFound, "another user's row is invisible")
}

func TestDeleteNotification(t *testing.T) {
	svc, repo := newNotificationFixture(t)
	ids := seedNotifications(t, repo, "cust-1", 2)

	require.NoError(t, svc.Delete(ids[0], "cust-1"))

	list, err := svc.ListMyNotifications("cust-1", dto.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)

	err = svc.Delete(ids[0], "cust-1")
	assert.ErrorIs(t, err, myerrors.ErrNotFound)
}
