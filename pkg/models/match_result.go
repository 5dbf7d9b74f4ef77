package models

import (
	"time"

	"github.com/google/uuid"
)

// Provenance values recording which path produced a result.
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

// Recommendation tiers, ordered. Thresholds: 80, 60, 40.
const (
	TierHighlyRecommended = "Highly Recommended"
	TierRecommended       = "Recommended"
	TierConsider          = "Consider"
	TierNotRecommended    = "Not Recommended"
)

// RecommendationTier maps a 0-100 match score to its tier. Thresholds are
// inclusive, so a score of exactly 40 lands in Consider.
func RecommendationTier(score float64) string {
	switch {
	case score >= 80:
		return TierHighlyRecommended
	case score >= 60:
		return TierRecommended
	case score >= 40:
		return TierConsider
	default:
		return TierNotRecommended
	}
}

// MatchDetails records which individual criteria a student satisfied.
// Only GPA and course gate eligibility; the rest are informational.
type MatchDetails struct {
	GPAMatch       bool `json:"gpaMatch"`
	CourseMatch    bool `json:"courseMatch"`
	YearLevelMatch bool `json:"yearLevelMatch"`
	IncomeMatch    bool `json:"incomeMatch"`
	SkillsMatch    bool `json:"skillsMatch"`
}

// MatchResult is the fit assessment of one student against one scholarship.
// Exactly one result exists per scholarship passed into a matching run.
type MatchResult struct {
	ScholarshipID   uuid.UUID    `json:"scholarshipId"`
	ScholarshipName string       `json:"scholarshipName"`
	MatchScore      float64      `json:"matchScore"`
	Eligible        bool         `json:"eligible"`
	MatchDetails    MatchDetails `json:"matchDetails"`
	Explanation     string       `json:"explanation"`
	Recommendation  string       `json:"recommendation"`
	Source          string       `json:"source,omitempty"`
}

// MatchSnapshot is a persisted matching run for one student. Regeneration
// fully replaces the previous snapshot rather than merging into it.
type MatchSnapshot struct {
	StudentID   uuid.UUID     `json:"student_id"`
	Results     []MatchResult `json:"results"`
	GeneratedAt time.Time     `json:"generated_at"`
}
