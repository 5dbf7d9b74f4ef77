package services

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/scholarmatch/scholarmatch-engine/pkg/models"
)

// Fallback thresholds.
const (
	strongAcademicGPA  = 3.5
	approvalScoreFloor = 70
	strongFitScore     = 80
)

// FallbackEngine is the deterministic scoring path used whenever the model
// is unreachable, unconfigured, or returns unusable output. It produces the
// same result shapes as the model path and never fails for well-formed
// input: two runs over identical input yield identical output.
type FallbackEngine struct {
	logger *zap.Logger
}

// NewFallbackEngine creates a fallback engine.
func NewFallbackEngine(logger *zap.Logger) *FallbackEngine {
	return &FallbackEngine{logger: logger.Named("fallback")}
}

// MatchScholarships scores every supplied scholarship with the rule model
// and returns one result per scholarship, sorted by descending score with
// ties kept in input order. No scholarship is ever omitted.
func (e *FallbackEngine) MatchScholarships(profile *models.StudentProfile, scholarships []*models.Scholarship) []models.MatchResult {
	results := make([]models.MatchResult, 0, len(scholarships))

	for _, s := range scholarships {
		score, details := ScoreMatch(profile, s)
		results = append(results, models.MatchResult{
			ScholarshipID:   s.ID,
			ScholarshipName: s.Name,
			MatchScore:      score,
			Eligible:        MatchEligible(details),
			MatchDetails:    details,
			Explanation:     matchExplanation(s, details, score),
			Recommendation:  models.RecommendationTier(score),
			Source:          models.SourceFallback,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})

	e.logger.Debug("fallback matching completed",
		zap.Int("scholarships", len(scholarships)))

	return results
}

// RankApplicants scores every supplied application with the rule model,
// sorts by descending rank score, and assigns dense 1-based ranks with ties
// kept in input order.
func (e *FallbackEngine) RankApplicants(applications []*models.Application, scholarship *models.Scholarship) []models.RankResult {
	results := make([]models.RankResult, 0, len(applications))

	for _, a := range applications {
		score, breakdown, eligible := ScoreApplicant(a, scholarship)

		strengths := []string{}
		if a.GPA >= strongAcademicGPA {
			strengths = append(strengths, "Strong academic performance")
		}
		weaknesses := []string{}
		if a.GPA < scholarship.MinGPA {
			weaknesses = append(weaknesses, "GPA below requirement")
		}

		recommendation := models.RankNeedsReview
		if score >= approvalScoreFloor {
			recommendation = models.RankRecommendApproval
		}

		results = append(results, models.RankResult{
			ApplicationID:  a.ID,
			StudentName:    a.StudentName,
			RankScore:      score,
			Eligible:       eligible,
			ScoreBreakdown: breakdown,
			Strengths:      strengths,
			Weaknesses:     weaknesses,
			Recommendation: recommendation,
			Source:         models.SourceFallback,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RankScore > results[j].RankScore
	})
	for i := range results {
		results[i].Rank = i + 1
	}

	e.logger.Debug("fallback ranking completed",
		zap.Int("applications", len(applications)))

	return results
}

// matchExplanation assembles the human-readable reason for a score. A
// strong fit leads with its best passing criterion; everything else leads
// with the primary failing criterion and, when one exists, appends a
// mitigating positive.
func matchExplanation(s *models.Scholarship, details models.MatchDetails, score float64) string {
	positives := explanationPositives(s, details)
	negatives := explanationNegatives(s, details)

	if score >= strongFitScore && len(positives) > 0 {
		return fmt.Sprintf("Excellent fit for %s: %s.", s.Name, strings.Join(positives, ", and "))
	}

	if len(negatives) == 0 {
		if len(positives) == 0 {
			return fmt.Sprintf("%s has open criteria, so your profile was given a neutral assessment.", s.Name)
		}
		return fmt.Sprintf("Good fit for %s: %s.", s.Name, strings.Join(positives, ", and "))
	}

	msg := fmt.Sprintf("Limited fit for %s: %s.", s.Name, negatives[0])
	if len(positives) > 0 {
		msg += fmt.Sprintf(" However, %s.", positives[0])
	}
	return msg
}

func explanationPositives(s *models.Scholarship, details models.MatchDetails) []string {
	var out []string
	if details.GPAMatch {
		out = append(out, fmt.Sprintf("your GPA meets the %.1f minimum", s.MinGPA))
	}
	if details.CourseMatch {
		if len(s.EligibleCourses) == 0 {
			out = append(out, "the scholarship is open to all courses")
		} else {
			out = append(out, "your course is on the eligible list")
		}
	}
	if details.YearLevelMatch && len(s.EligibleYearLevels) > 0 {
		out = append(out, "your year level qualifies")
	}
	return out
}

func explanationNegatives(s *models.Scholarship, details models.MatchDetails) []string {
	var out []string
	if !details.GPAMatch {
		out = append(out, fmt.Sprintf("your GPA is below the required %.1f minimum", s.MinGPA))
	}
	if !details.CourseMatch {
		out = append(out, "your course is not on the eligible list")
	}
	if !details.YearLevelMatch {
		out = append(out, "your year level is not covered")
	}
	return out
}
