package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"instantfix/internal/dispatch-service/core/domain/dto"
	"instantfix/internal/dispatch-service/core/myerrors"
	"instantfix/internal/dispatch-service/core/ports"
	"instantfix/internal/metrics"
	"instantfix/internal/mylogger"
)

// MatchService is the geo-skill matcher. It only reads: the store hands
// back pending requests within the radius minus the worker's rejections,
// and the service ranks them. The result is a snapshot; a request in it
// may already be taken by the time the worker calls Accept, which is the
// accept race's problem, not the matcher's.
type MatchService struct {
	ctx               context.Context
	mylog             mylogger.Logger
	requestRepo       ports.IRequestRepo
	workerRepo        ports.IWorkerRepo
	maxDistanceMeters float64
	defaultPageLimit  int
}

func NewMatchService(ctx context.Context,
	log mylogger.Logger,
	requestRepo ports.IRequestRepo,
	workerRepo ports.IWorkerRepo,
	maxDistanceMeters float64,
	defaultPageLimit int,
) ports.IMatchService {
	return &MatchService{
		ctx:               ctx,
		mylog:             log,
		requestRepo:       requestRepo,
		workerRepo:        workerRepo,
		maxDistanceMeters: maxDistanceMeters,
		defaultPageLimit:  defaultPageLimit,
	}
}

func (ms *MatchService) NearbyRequests(workerId string, q dto.NearbyQuery) (dto.MatchListDto, error) {
	log := ms.mylog.Action("NearbyRequests")

	ctx, cancel := context.WithTimeout(ms.ctx, repoTimeout)
	defer cancel()

	worker, err := ms.workerRepo.FindById(ctx, workerId)
	if err != nil {
		metrics.MatchQueries.WithLabelValues("rejected").Inc()
		if errors.Is(err, myerrors.ErrNotFound) {
			return dto.MatchListDto{}, fmt.Errorf("unknown worker: %w", myerrors.ErrWorkerNotEligible)
		}
		return dto.MatchListDto{}, err
	}
	if !worker.Eligible() {
		metrics.MatchQueries.WithLabelValues("rejected").Inc()
		return dto.MatchListDto{}, fmt.Errorf("worker %s: %w", workerId, myerrors.ErrWorkerNotEligible)
	}

	maxDistance := ms.maxDistanceMeters
	if q.MaxDistanceMeters > 0 && q.MaxDistanceMeters < maxDistance {
		maxDistance = q.MaxDistanceMeters
	}

	ctx, cancel = context.WithTimeout(ms.ctx, repoTimeout)
	defer cancel()

	candidates, err := ms.requestRepo.FindNearbyPending(ctx, workerId, *worker.Location, maxDistance)
	if err != nil {
		metrics.MatchQueries.WithLabelValues("error").Inc()
		log.Error("nearby query failed", err, "worker_id", workerId)
		return dto.MatchListDto{}, err
	}

	matches := make([]dto.MatchedRequest, 0, len(candidates))
	for _, c := range candidates {
		score := dto.SkillScoreFallback
		if worker.HasSkill(c.Request.IssueType) {
			score = dto.SkillScoreExact
		}
		matches = append(matches, dto.MatchedRequest{
			Request:        c.Request,
			DistanceMeters: c.DistanceMeters,
			SkillScore:     score,
		})
	}

	// Skill beats distance, distance beats age; creation time settles the
	// rest so the ordering is deterministic run to run.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].SkillScore != matches[j].SkillScore {
			return matches[i].SkillScore > matches[j].SkillScore
		}
		if matches[i].DistanceMeters != matches[j].DistanceMeters {
			return matches[i].DistanceMeters < matches[j].DistanceMeters
		}
		return matches[i].Request.CreatedAt.Before(matches[j].Request.CreatedAt)
	})

	page := q.Page.Normalize(ms.defaultPageLimit)
	start := page.Offset()
	if start > len(matches) {
		start = len(matches)
	}
	end := start + page.Limit
	if end > len(matches) {
		end = len(matches)
	}
	paged := matches[start:end]

	metrics.MatchQueries.WithLabelValues("ok").Inc()
	log.Debug("nearby requests served", "worker_id", workerId, "candidates", len(matches), "returned", len(paged))

	return dto.MatchListDto{
		Page:    page.Page,
		Limit:   page.Limit,
		Count:   len(paged),
		Matches: paged,
	}, nil
}
