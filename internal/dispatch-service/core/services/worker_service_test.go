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

func newWorkerFixture(t *testing.T, workers ...model.Worker) (*WorkerService, *fakeWorkerRepo) {
	t.Helper()
	repo := newFakeWorkerRepo(workers...)
	svc := NewWorkerService(context.Background(), testLogger(t), repo)
	return svc.(*WorkerService), repo
}

func TestSetLocation(t *testing.T) {
	svc, repo := newWorkerFixture(t, eligibleWorker("w-1", model.IssueWiring))

	updated, err := svc.SetLocation("w-1", dto.SetLocationDto{
		Latitude:  floatPtr(43.25),
		Longitude: floatPtr(76.91),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Location)
	assert.Equal(t, 43.25, updated.Location.Latitude)

	stored, err := repo.FindById(context.Background(), "w-1")
	require.NoError(t, err)
	assert.Equal(t, 76.91, stored.Location.Longitude)
}

func TestSetLocationValidation(t *testing.T) {
	svc, _ := newWorkerFixture(t, eligibleWorker("w-1", model.IssueWiring))

	_, err := svc.SetLocation("w-1", dto.SetLocationDto{Latitude: floatPtr(43.25)})
	assert.ErrorIs(t, err, myerrors.ErrValidation)

	_, err = svc.SetLocation("w-1", dto.SetLocationDto{
		Latitude:  floatPtr(95),
		Longitude: floatPtr(76.91),
	})
	assert.ErrorIs(t, err, myerrors.ErrValidation)
}

func TestProfileUpdatesRequireApproval(t *testing.T) {
	w := eligibleWorker("w-pending", model.IssueWiring)
	w.Approved = false
	svc, _ := newWorkerFixture(t, w)

	_, err := svc.SetLocation("w-pending", dto.SetLocationDto{
		Latitude:  floatPtr(43.25),
		Longitude: floatPtr(76.91),
	})
	assert.ErrorIs(t, err, myerrors.ErrWorkerNotEligible)

	_, err = svc.SetAvailability("w-pending", true)
	assert.ErrorIs(t, err, myerrors.ErrWorkerNotEligible)
}

func TestSetAvailability(t *testing.T) {
	svc, repo := newWorkerFixture(t, eligibleWorker("w-1", model.IssueWiring))

	updated, err := svc.SetAvailability("w-1", false)
	require.NoError(t, err)
	assert.False(t, updated.IsAvailable)

	stored, err := repo.FindById(context.Background(), "w-1")
	require.NoError(t, err)
	assert.False(t, stored.IsAvailable)
}

func TestWorkerNotFound(t *testing.T) {
	svc, _ := newWorkerFixture(t)

	_, err := svc.SetAvailability("w-ghost", true)
	assert.ErrorIs(t, err, myerrors.ErrNotFound)
}
