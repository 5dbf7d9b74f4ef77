package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarmatch/scholarmatch-engine/pkg/models"
)

func TestScoreMatch_AllCriteriaMet(t *testing.T) {
	profile := &models.StudentProfile{
		Course:        "Computer Science",
		YearLevel:     "3rd Year",
		GPA:           3.8,
		PreferredType: "academic",
	}
	scholarship := &models.Scholarship{
		Name:               "STEM Excellence",
		Type:               models.ScholarshipTypeAcademic,
		MinGPA:             3.5,
		EligibleCourses:    []string{"Computer Science", "Engineering"},
		EligibleYearLevels: []string{"3rd Year", "4th Year"},
	}

	score, details := ScoreMatch(profile, scholarship)

	// 50 base + 15 gpa + 15 course + 10 year + 10 type preference
	assert.Equal(t, 100.0, score)
	assert.True(t, details.GPAMatch)
	assert.True(t, details.CourseMatch)
	assert.True(t, details.YearLevelMatch)
	assert.True(t, MatchEligible(details))
}

func TestScoreMatch_OpenCriteria(t *testing.T) {
	profile := &models.StudentProfile{
		Course:    "Nursing",
		YearLevel: "1st Year",
		GPA:       3.0,
	}
	scholarship := &models.Scholarship{
		Name:   "Community Grant",
		Type:   models.ScholarshipTypeCommunity,
		MinGPA: 2.5,
	}

	score, details := ScoreMatch(profile, scholarship)

	// 50 base + 15 gpa + 10 open courses + 5 open year levels
	assert.Equal(t, 80.0, score)
	assert.True(t, details.CourseMatch)
	assert.True(t, details.YearLevelMatch)
	assert.True(t, MatchEligible(details))
}

func TestScoreMatch_AllCriteriaMissed(t *testing.T) {
	profile := &models.StudentProfile{
		Course:    "Fine Arts",
		YearLevel: "1st Year",
		GPA:       2.0,
	}
	scholarship := &models.Scholarship{
		Name:               "Engineering Leaders",
		Type:               models.ScholarshipTypeAcademic,
		MinGPA:             3.5,
		EligibleCourses:    []string{"Engineering"},
		EligibleYearLevels: []string{"4th Year"},
	}

	score, details := ScoreMatch(profile, scholarship)

	// 50 base - 20 gpa - 15 course - 10 year
	assert.Equal(t, 5.0, score)
	assert.False(t, details.GPAMatch)
	assert.False(t, details.CourseMatch)
	assert.False(t, details.YearLevelMatch)
	assert.False(t, MatchEligible(details))
}

func TestScoreMatch_EligibilityIgnoresYearLevel(t *testing.T) {
	profile := &models.StudentProfile{
		Course:    "Computer Science",
		YearLevel: "1st Year",
		GPA:       3.9,
	}
	scholarship := &models.Scholarship{
		MinGPA:             3.0,
		EligibleCourses:    []string{"Computer Science"},
		EligibleYearLevels: []string{"4th Year"},
	}

	_, details := ScoreMatch(profile, scholarship)

	assert.False(t, details.YearLevelMatch)
	assert.True(t, MatchEligible(details), "year level must not gate eligibility")
}

func TestScoreMatch_CourseMatchingIsCaseInsensitiveSubstring(t *testing.T) {
	profile := &models.StudentProfile{Course: "BS computer science", GPA: 3.0}
	scholarship := &models.Scholarship{
		EligibleCourses: []string{"Computer Science"},
	}

	_, details := ScoreMatch(profile, scholarship)

	assert.True(t, details.CourseMatch)
}

func TestScoreMatch_TypePreferenceBonus(t *testing.T) {
	profile := &models.StudentProfile{GPA: 3.0, PreferredType: "need_based"}

	preferred := &models.Scholarship{Type: models.ScholarshipTypeNeedBased}
	other := &models.Scholarship{Type: models.ScholarshipTypeAthletic}

	withBonus, _ := ScoreMatch(profile, preferred)
	without, _ := ScoreMatch(profile, other)

	assert.Equal(t, 10.0, withBonus-without)
}

func TestScoreMatch_IncomeAndSkillsAreInformational(t *testing.T) {
	ceiling := 20000.0
	profile := &models.StudentProfile{
		GPA:         3.0,
		IncomeRange: "Above 50,000",
		Skills:      "painting",
	}
	scholarship := &models.Scholarship{
		IncomeCeiling:  &ceiling,
		RequiredSkills: []string{"programming"},
	}
	open := &models.Scholarship{}

	scoreWith, details := ScoreMatch(profile, scholarship)
	scoreOpen, _ := ScoreMatch(profile, open)

	assert.False(t, details.IncomeMatch)
	assert.False(t, details.SkillsMatch)
	assert.Equal(t, scoreOpen, scoreWith, "income and skills must not move the score")
}

func TestScoreApplicant_Weighting(t *testing.T) {
	scholarship := &models.Scholarship{MinGPA: 3.0}

	tests := []struct {
		name         string
		gpa          float64
		incomeRange  string
		wantScore    float64
		wantEligible bool
	}{
		{name: "perfect GPA", gpa: 4.0, wantScore: 70, wantEligible: true},
		{name: "minimum GPA", gpa: 3.0, wantScore: 60, wantEligible: true},
		{name: "below minimum gates academics", gpa: 2.0, wantScore: 30, wantEligible: false},
		{name: "lowest income bracket", gpa: 4.0, incomeRange: "Less than 10,000", wantScore: 80, wantEligible: true},
		{name: "highest income bracket", gpa: 4.0, incomeRange: "Above 50,000", wantScore: 60, wantEligible: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := &models.Application{GPA: tt.gpa, IncomeRange: tt.incomeRange}

			score, breakdown, eligible := ScoreApplicant(app, scholarship)

			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantEligible, eligible)
			assert.Equal(t, score, breakdown.OverallFit)
			assert.Equal(t, neutralSubScore, breakdown.Skills)
			assert.Equal(t, neutralSubScore, breakdown.Essay)
		})
	}
}

func TestScoreApplicant_IneligibleKeepsAcademicInBreakdown(t *testing.T) {
	app := &models.Application{GPA: 2.0}
	scholarship := &models.Scholarship{MinGPA: 3.5}

	_, breakdown, eligible := ScoreApplicant(app, scholarship)

	require.False(t, eligible)
	// The sub-score shows what the applicant earned even though the
	// weighted total excludes it.
	assert.Equal(t, 50.0, breakdown.Academic)
}

func TestFinancialNeedScore(t *testing.T) {
	tests := []struct {
		bracket string
		want    float64
	}{
		{"Less than 10,000", 100},
		{"10,000 - 20,000", 75},
		{"20,001 - 30,000", 50},
		{"30,001 - 50,000", 25},
		{"Above 50,000", 0},
		{"", 50},
		{"not a bracket", 50},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, financialNeedScore(tt.bracket), "bracket %q", tt.bracket)
	}
}

func TestRecommendationTierBoundaries(t *testing.T) {
	assert.Equal(t, models.TierHighlyRecommended, models.RecommendationTier(80))
	assert.Equal(t, models.TierRecommended, models.RecommendationTier(79.9))
	assert.Equal(t, models.TierRecommended, models.RecommendationTier(60))
	assert.Equal(t, models.TierConsider, models.RecommendationTier(40))
	assert.Equal(t, models.TierNotRecommended, models.RecommendationTier(39.9))
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, clampScore(-5))
	assert.Equal(t, 100.0, clampScore(150))
	assert.Equal(t, 42.0, clampScore(42))
}
