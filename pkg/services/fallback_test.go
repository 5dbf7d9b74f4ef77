package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scholarmatch/scholarmatch-engine/pkg/models"
)

func newTestFallback() *FallbackEngine {
	return NewFallbackEngine(zap.NewNop())
}

func TestFallbackMatch_OneResultPerScholarship(t *testing.T) {
	engine := newTestFallback()
	profile := &models.StudentProfile{Course: "Computer Science", GPA: 3.2}

	scholarships := []*models.Scholarship{
		{ID: uuid.New(), Name: "A", MinGPA: 3.0},
		{ID: uuid.New(), Name: "B", MinGPA: 3.9},
		{ID: uuid.New(), Name: "C", EligibleCourses: []string{"Engineering"}},
	}

	results := engine.MatchScholarships(profile, scholarships)

	require.Len(t, results, len(scholarships))
	seen := make(map[uuid.UUID]bool)
	for _, r := range results {
		assert.False(t, seen[r.ScholarshipID], "scholarship %s appears twice", r.ScholarshipID)
		seen[r.ScholarshipID] = true
		assert.Equal(t, models.SourceFallback, r.Source)
		assert.NotEmpty(t, r.Explanation)
		assert.NotEmpty(t, r.Recommendation)
	}
}

func TestFallbackMatch_SortedByScoreDescending(t *testing.T) {
	engine := newTestFallback()
	profile := &models.StudentProfile{Course: "Computer Science", GPA: 3.2}

	scholarships := []*models.Scholarship{
		{ID: uuid.New(), Name: "Hard", MinGPA: 3.9, EligibleCourses: []string{"Engineering"}},
		{ID: uuid.New(), Name: "Easy", MinGPA: 2.0, EligibleCourses: []string{"Computer Science"}},
	}

	results := engine.MatchScholarships(profile, scholarships)

	require.Len(t, results, 2)
	assert.Equal(t, "Easy", results[0].ScholarshipName)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].MatchScore, results[i].MatchScore)
	}
}

func TestFallbackMatch_Deterministic(t *testing.T) {
	engine := newTestFallback()
	profile := &models.StudentProfile{Course: "Nursing", YearLevel: "2nd Year", GPA: 3.4}

	scholarships := []*models.Scholarship{
		{ID: uuid.New(), Name: "A", MinGPA: 3.0, EligibleCourses: []string{"Nursing"}},
		{ID: uuid.New(), Name: "B", MinGPA: 3.5},
	}

	first := engine.MatchScholarships(profile, scholarships)
	second := engine.MatchScholarships(profile, scholarships)

	assert.Equal(t, first, second)
}

func TestFallbackMatch_EmptyInput(t *testing.T) {
	engine := newTestFallback()
	results := engine.MatchScholarships(&models.StudentProfile{}, nil)
	assert.Empty(t, results)
	assert.NotNil(t, results)
}

func TestFallbackMatch_ExplanationShapes(t *testing.T) {
	engine := newTestFallback()

	strong := &models.StudentProfile{Course: "Computer Science", YearLevel: "3rd Year", GPA: 3.9, PreferredType: "academic"}
	weak := &models.StudentProfile{Course: "Fine Arts", GPA: 2.0}

	scholarship := []*models.Scholarship{{
		ID:                 uuid.New(),
		Name:               "STEM Grant",
		Type:               models.ScholarshipTypeAcademic,
		MinGPA:             3.5,
		EligibleCourses:    []string{"Computer Science"},
		EligibleYearLevels: []string{"3rd Year"},
	}}

	strongResults := engine.MatchScholarships(strong, scholarship)
	weakResults := engine.MatchScholarships(weak, scholarship)

	assert.Contains(t, strongResults[0].Explanation, "Excellent fit for STEM Grant")
	assert.Contains(t, weakResults[0].Explanation, "Limited fit for STEM Grant")
}

func TestFallbackRank_DenseRanksAndOrdering(t *testing.T) {
	engine := newTestFallback()
	scholarship := &models.Scholarship{MinGPA: 3.0}

	apps := []*models.Application{
		{ID: uuid.New(), StudentName: "Mid", GPA: 3.0},
		{ID: uuid.New(), StudentName: "Top", GPA: 4.0},
		{ID: uuid.New(), StudentName: "Ineligible", GPA: 2.0},
	}

	results := engine.RankApplicants(apps, scholarship)

	require.Len(t, results, 3)
	assert.Equal(t, "Top", results[0].StudentName)
	assert.Equal(t, "Mid", results[1].StudentName)
	assert.Equal(t, "Ineligible", results[2].StudentName)
	for i, r := range results {
		assert.Equal(t, i+1, r.Rank)
	}
	assert.False(t, results[2].Eligible)
}

func TestFallbackRank_TiesKeepInputOrder(t *testing.T) {
	engine := newTestFallback()
	scholarship := &models.Scholarship{MinGPA: 0}

	apps := []*models.Application{
		{ID: uuid.New(), StudentName: "First", GPA: 3.0},
		{ID: uuid.New(), StudentName: "Second", GPA: 3.0},
	}

	results := engine.RankApplicants(apps, scholarship)

	require.Len(t, results, 2)
	assert.Equal(t, "First", results[0].StudentName)
	assert.Equal(t, "Second", results[1].StudentName)
	assert.Equal(t, []int{1, 2}, []int{results[0].Rank, results[1].Rank})
}

func TestFallbackRank_StrengthsWeaknessesRecommendation(t *testing.T) {
	engine := newTestFallback()
	scholarship := &models.Scholarship{MinGPA: 3.0}

	apps := []*models.Application{
		{ID: uuid.New(), StudentName: "Strong", GPA: 3.8, IncomeRange: "Less than 10,000"},
		{ID: uuid.New(), StudentName: "Weak", GPA: 2.5},
	}

	results := engine.RankApplicants(apps, scholarship)
	require.Len(t, results, 2)

	strong := results[0]
	assert.Equal(t, "Strong", strong.StudentName)
	assert.Contains(t, strong.Strengths, "Strong academic performance")
	assert.Empty(t, strong.Weaknesses)
	assert.Equal(t, models.RankRecommendApproval, strong.Recommendation)

	weak := results[1]
	assert.Contains(t, weak.Weaknesses, "GPA below requirement")
	assert.Empty(t, weak.Strengths)
	assert.Equal(t, models.RankNeedsReview, weak.Recommendation)

	// Strengths and weaknesses are always non-nil for JSON clients.
	assert.NotNil(t, strong.Weaknesses)
	assert.NotNil(t, weak.Strengths)
}
