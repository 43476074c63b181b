package dto

import "instantfix/internal/dispatch-service/core/domain/model"

const (
	// Skill scoring is deliberately coarse: an exact skill match beats
	// any distance advantage, a miss still surfaces as a fallback.
	SkillScoreExact    = 10
	SkillScoreFallback = 5
)

// NearbyQuery narrows the matcher's radius and pages its output.
// MaxDistanceMeters <= 0 means "use the configured default".
type NearbyQuery struct {
	MaxDistanceMeters float64
	Page              Page
}

// MatchedRequest is one ranked candidate. DistanceMeters and SkillScore
// are computed per query for display and are never persisted.
type MatchedRequest struct {
	Request        model.ServiceRequest `json:"request"`
	DistanceMeters float64              `json:"distance_meters"`
	SkillScore     int                  `json:"skill_score"`
}

type MatchListDto struct {
	Page    int              `json:"page"`
	Limit   int              `json:"limit"`
	Count   int              `json:"count"`
	Matches []MatchedRequest `json:"matches"`
}
