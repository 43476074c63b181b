package services

import (
	"context"
	"testing"
	"time"

	"instantfix/internal/dispatch-service/core/domain/dto"
	"instantfix/internal/dispatch-service/core/domain/model"
	"instantfix/internal/dispatch-service/core/myerrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaxDistance = 10_000.0

type matchFixture struct {
	svc      *MatchService
	requests *fakeRequestRepo
	workers  *fakeWorkerRepo
}

func newMatchFixture(t *testing.T, workers ...model.Worker) *matchFixture {
	t.Helper()

	requests := newFakeRequestRepo()
	workerRepo := newFakeWorkerRepo(workers...)

	svc := NewMatchService(context.Background(), testLogger(t), requests, workerRepo, testMaxDistance, 10)
	return &matchFixture{
		svc:      svc.(*MatchService),
		requests: requests,
		workers:  workerRepo,
	}
}

func (fx *matchFixture) addPending(id, issueType string, distance float64, createdAt time.Time) {
	fx.requests.put(model.ServiceRequest{
		ID:         id,
		CustomerID: "cust-1",
		IssueType:  issueType,
		Status:     model.StatusPending,
		CreatedAt:  createdAt,
	}, distance)
}

func matchedIds(list dto.MatchListDto) []string {
	out := make([]string, 0, len(list.Matches))
	for _, m := range list.Matches {
		out = append(out, m.Request.ID)
	}
	return out
}

func TestNearbyRequestsEligibility(t *testing.T) {
	base := eligibleWorker("w-ok", model.IssueWiring)

	noLocation := base
	noLocation.ID = "w-no-location"
	noLocation.Location = nil

	noSkills := base
	noSkills.ID = "w-no-skills"
	noSkills.Skills = nil

	offline := base
	offline.ID = "w-offline"
	offline.IsAvailable = false

	unapproved := base
	unapproved.ID = "w-unapproved"
	unapproved.Approved = false

	fx := newMatchFixture(t, noLocation, noSkills, offline, unapproved)

	for _, id := range []string{"w-no-location", "w-no-skills", "w-offline", "w-unapproved", "w-ghost"} {
		_, err := fx.svc.NearbyRequests(id, dto.NearbyQuery{})
		assert.ErrorIs(t, err, myerrors.ErrWorkerNotEligible, id)
	}
}

// A close fallback request never outranks a farther request matching the
// worker's skill.
func TestNearbyRequestsSkillBeatsDistance(t *testing.T) {
	fx := newMatchFixture(t, eligibleWorker("w-1", model.IssueWiring))

	now := time.Now()
	fx.addPending("req-fan-near", model.IssueFan, 200, now)
	fx.addPending("req-wiring-far", model.IssueWiring, 9_000, now)

	list, err := fx.svc.NearbyRequests("w-1", dto.NearbyQuery{})
	require.NoError(t, err)

	assert.Equal(t, []string{"req-wiring-far", "req-fan-near"}, matchedIds(list))
	assert.Equal(t, dto.SkillScoreExact, list.Matches[0].SkillScore)
	assert.Equal(t, dto.SkillScoreFallback, list.Matches[1].SkillScore)
}

func TestNearbyRequestsTieBreaks(t *testing.T) {
	fx := newMatchFixture(t, eligibleWorker("w-1", model.IssueWiring))

	now := time.Now()
	fx.addPending("req-far", model.IssueWiring, 3_000, now)
	fx.addPending("req-near", model.IssueWiring, 1_000, now)
	fx.addPending("req-same-dist-old", model.IssueWiring, 2_000, now.Add(-time.Hour))
	fx.addPending("req-same-dist-new", model.IssueWiring, 2_000, now)

	list, err := fx.svc.NearbyRequests("w-1", dto.NearbyQuery{})
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"req-near", "req-same-dist-old", "req-same-dist-new", "req-far"},
		matchedIds(list))
}

func TestNearbyRequestsExcludesRejectedAndNonPending(t *testing.T) {
	fx := newMatchFixture(t, eligibleWorker("w-1", model.IssueWiring))

	now := time.Now()
	fx.addPending("req-open", model.IssueWiring, 1_000, now)
	fx.requests.put(model.ServiceRequest{
		ID: "req-rejected", CustomerID: "cust-1", IssueType: model.IssueWiring,
		Status: model.StatusPending, RejectedBy: []string{"w-1"}, CreatedAt: now,
	}, 500)
	fx.requests.put(model.ServiceRequest{
		ID: "req-taken", CustomerID: "cust-1", IssueType: model.IssueWiring,
		WorkerID: "w-2", Status: model.StatusAccepted, CreatedAt: now,
	}, 500)

	list, err := fx.svc.NearbyRequests("w-1", dto.NearbyQuery{})
	require.NoError(t, err)

	assert.Equal(t, []string{"req-open"}, matchedIds(list))
}

func TestNearbyRequestsRadius(t *testing.T) {
	fx := newMatchFixture(t, eligibleWorker("w-1", model.IssueWiring))

	now := time.Now()
	fx.addPending("req-inside", model.IssueWiring, 4_000, now)
	fx.addPending("req-outside", model.IssueWiring, 11_000, now)

	t.Run("default radius", func(t *testing.T) {
		list, err := fx.svc.NearbyRequests("w-1", dto.NearbyQuery{})
		require.NoError(t, err)
		assert.Equal(t, []string{"req-inside"}, matchedIds(list))
	})

	t.Run("caller narrows", func(t *testing.T) {
		list, err := fx.svc.NearbyRequests("w-1", dto.NearbyQuery{MaxDistanceMeters: 1_000})
		require.NoError(t, err)
		assert.Empty(t, list.Matches)
	})

	t.Run("caller cannot widen", func(t *testing.T) {
		list, err := fx.svc.NearbyRequests("w-1", dto.NearbyQuery{MaxDistanceMeters: 50_000})
		require.NoError(t, err)
		assert.Equal(t, []string{"req-inside"}, matchedIds(list))
	})
}

func TestNearbyRequestsPagination(t *testing.T) {
	fx := newMatchFixture(t, eligibleWorker("w-1", model.IssueWiring))

	now := time.Now()
	for i := 0; i < 5; i++ {
		fx.addPending(
			string(rune('a'+i))+"-req",
			model.IssueWiring,
			float64((i+1)*1_000),
			now,
		)
	}

	first, err := fx.svc.NearbyRequests("w-1", dto.NearbyQuery{Page: dto.Page{Page: 1, Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a-req", "b-req"}, matchedIds(first), "pagination applies after ranking")

	second, err := fx.svc.NearbyRequests("w-1", dto.NearbyQuery{Page: dto.Page{Page: 2, Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, []string{"c-req", "d-req"}, matchedIds(second))

	far, err := fx.svc.NearbyRequests("w-1", dto.NearbyQuery{Page: dto.Page{Page: 9, Limit: 2}})
	require.NoError(t, err)
	assert.Empty(t, far.Matches, "past-the-end pages are empty, not an error")
}

func TestNearbyRequestsEmptyFeed(t *testing.T) {
	fx := newMatchFixture(t, eligibleWorker("w-1", model.IssueWiring))

	list, err := fx.svc.NearbyRequests("w-1", dto.NearbyQuery{})
	require.NoError(t, err)
	assert.Zero(t, list.Count)
	assert.Empty(t, list.Matches)
}
