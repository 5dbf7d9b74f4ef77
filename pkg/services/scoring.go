// Package services holds the matching and ranking core: the rule-based
// scoring model, the deterministic fallback engine, the recommendation
// cache, and the orchestration services that tie them to the external model.
package services

import (
	"math"
	"strings"

	"github.com/scholarmatch/scholarmatch-engine/pkg/models"
)

// Match scoring deltas. Scoring starts from a neutral base and moves up or
// down per criterion; the final score is clamped to [0, 100].
const (
	matchBaseScore = 50

	gpaMatchBonus    = 15
	gpaMismatchMalus = 20

	courseMatchBonus    = 15
	courseMismatchMalus = 15
	courseOpenBonus     = 10

	yearMatchBonus    = 10
	yearMismatchMalus = 10
	yearOpenBonus     = 5

	typePreferenceBonus = 10
)

// Applicant rank weighting. Skills and essay cannot be judged by rules, so
// the fallback pins them to a neutral 50 and weights the overall score from
// academics and financial need.
const (
	academicWeight  = 0.40
	needWeight      = 0.20
	skillsWeight    = 0.20
	essayWeight     = 0.20
	neutralSubScore = 50.0

	gpaScale = 4.0
)

// Upper bounds of each income bracket, aligned with models.IncomeBrackets.
// The last bracket is unbounded.
var incomeBracketCeilings = []float64{10000, 20000, 30000, 50000, math.Inf(1)}

// ScoreMatch computes the 0-100 fit score of a student profile against one
// scholarship, with a per-criterion breakdown. It is pure and total: any
// profile or scholarship value it reads is used as-is, with malformed
// numerics already coerced to zero at the parsing boundary.
//
// Eligibility is gated by GPA and course only. Year level, income, and
// skills feed the score and the breakdown but a student failing them is
// still eligible.
func ScoreMatch(profile *models.StudentProfile, scholarship *models.Scholarship) (float64, models.MatchDetails) {
	score := float64(matchBaseScore)
	details := models.MatchDetails{
		GPAMatch:       true,
		CourseMatch:    true,
		YearLevelMatch: true,
		IncomeMatch:    true,
		SkillsMatch:    true,
	}

	if profile.GPA >= scholarship.MinGPA {
		score += gpaMatchBonus
	} else {
		details.GPAMatch = false
		score -= gpaMismatchMalus
	}

	if len(scholarship.EligibleCourses) == 0 {
		score += courseOpenBonus
	} else if anyContains(scholarship.EligibleCourses, profile.Course) {
		score += courseMatchBonus
	} else {
		details.CourseMatch = false
		score -= courseMismatchMalus
	}

	if len(scholarship.EligibleYearLevels) == 0 {
		score += yearOpenBonus
	} else if anyContains(scholarship.EligibleYearLevels, profile.YearLevel) {
		score += yearMatchBonus
	} else {
		details.YearLevelMatch = false
		score -= yearMismatchMalus
	}

	if scholarship.Type != "" && strings.EqualFold(profile.PreferredType, scholarship.Type) {
		score += typePreferenceBonus
	}

	details.IncomeMatch = incomeWithinCeiling(profile.IncomeRange, scholarship.IncomeCeiling)
	details.SkillsMatch = hasRequiredSkills(profile.Skills, scholarship.RequiredSkills)

	return clampScore(score), details
}

// MatchEligible applies the eligibility rule shared by the fallback engine.
func MatchEligible(details models.MatchDetails) bool {
	return details.GPAMatch && details.CourseMatch
}

// ScoreApplicant computes the 0-100 rank score of one application against a
// scholarship's criteria, with the five-part sub-score breakdown. Academic
// performance contributes only when the applicant clears the GPA minimum;
// skills and essay stay at the neutral placeholder since rules cannot judge
// them qualitatively.
func ScoreApplicant(app *models.Application, scholarship *models.Scholarship) (float64, models.ScoreBreakdown, bool) {
	academic := clampScore(app.GPA / gpaScale * 100)
	eligible := app.GPA >= scholarship.MinGPA

	need := financialNeedScore(app.IncomeRange)

	breakdown := models.ScoreBreakdown{
		Academic:      academic,
		FinancialNeed: need,
		Skills:        neutralSubScore,
		Essay:         neutralSubScore,
	}

	total := needWeight*need + skillsWeight*neutralSubScore + essayWeight*neutralSubScore
	if eligible {
		total += academicWeight * academic
	}

	rankScore := clampScore(math.Round(total))
	breakdown.OverallFit = rankScore

	return rankScore, breakdown, eligible
}

// financialNeedScore maps an income bracket label to a need score: the
// lowest bracket scores 100 and each step up loses an equal share. Unknown
// labels get the neutral 50.
func financialNeedScore(incomeRange string) float64 {
	idx := models.IncomeBracketIndex(incomeRange)
	if idx < 0 {
		return neutralSubScore
	}
	n := len(models.IncomeBrackets)
	return float64(n-1-idx) * (100.0 / float64(n-1))
}

// incomeWithinCeiling reports whether the profile's bracket fits under the
// scholarship's income ceiling. No ceiling or an unknown bracket passes.
func incomeWithinCeiling(incomeRange string, ceiling *float64) bool {
	if ceiling == nil {
		return true
	}
	idx := models.IncomeBracketIndex(incomeRange)
	if idx < 0 {
		return true
	}
	return incomeBracketCeilings[idx] <= *ceiling
}

// hasRequiredSkills reports whether any required skill appears in the
// student's free-text skills. An empty requirement list passes.
func hasRequiredSkills(skills string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	lower := strings.ToLower(skills)
	for _, r := range required {
		if r != "" && strings.Contains(lower, strings.ToLower(r)) {
			return true
		}
	}
	return false
}

// anyContains reports whether any list entry matches the value by
// case-insensitive substring containment in either direction.
func anyContains(list []string, value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, entry := range list {
		e := strings.ToLower(strings.TrimSpace(entry))
		if e == "" || v == "" {
			continue
		}
		if strings.Contains(v, e) || strings.Contains(e, v) {
			return true
		}
	}
	return false
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
