package models

import (
	"time"

	"github.com/google/uuid"
)

// Fallback ranking recommendation strings.
const (
	RankRecommendApproval = "Recommended for Approval"
	RankNeedsReview       = "Needs Review"
)

// ScoreBreakdown holds the five named sub-scores of a ranked applicant,
// each on a 0-100 scale.
type ScoreBreakdown struct {
	Academic      float64 `json:"academic"`
	FinancialNeed float64 `json:"financialNeed"`
	Skills        float64 `json:"skills"`
	Essay         float64 `json:"essay"`
	OverallFit    float64 `json:"overallFit"`
}

// RankResult is one applicant's standing within a single ranking run.
// Rank positions within a run are dense and 1-based: sorted by descending
// RankScore they form exactly {1..N} with ties kept in input order.
type RankResult struct {
	ApplicationID  uuid.UUID      `json:"applicationId"`
	StudentName    string         `json:"studentName"`
	RankScore      float64        `json:"rankScore"`
	Rank           int            `json:"rank"`
	Eligible       bool           `json:"eligible"`
	ScoreBreakdown ScoreBreakdown `json:"scoreBreakdown"`
	Strengths      []string       `json:"strengths"`
	Weaknesses     []string       `json:"weaknesses"`
	Recommendation string         `json:"recommendation"`
	Source         string         `json:"source,omitempty"`
}

// RankSnapshot is a persisted ranking run for one scholarship. A new run
// overwrites any prior rank data for the same applications.
type RankSnapshot struct {
	ScholarshipID uuid.UUID    `json:"scholarship_id"`
	Results       []RankResult `json:"results"`
	GeneratedAt   time.Time    `json:"generated_at"`
}
