package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scholarmatch/scholarmatch-engine/pkg/apperrors"
	"github.com/scholarmatch/scholarmatch-engine/pkg/models"
)

type fakeMatcher struct {
	results []models.MatchResult
	calls   int
}

func (f *fakeMatcher) MatchStudentToScholarships(_ context.Context, _ *models.StudentProfile, _ []*models.Scholarship, _ uuid.UUID) []models.MatchResult {
	f.calls++
	return f.results
}

type fakeSnapshotRepo struct {
	snapshot *models.MatchSnapshot
}

func (f *fakeSnapshotRepo) ReplaceForStudent(context.Context, uuid.UUID, []models.MatchResult, time.Time) error {
	return nil
}

func (f *fakeSnapshotRepo) GetByStudent(context.Context, uuid.UUID) (*models.MatchSnapshot, error) {
	if f.snapshot == nil {
		return nil, apperrors.ErrNotFound
	}
	return f.snapshot, nil
}

func TestRecommendationsGet_SortedByScore(t *testing.T) {
	studentID := uuid.New()
	profiles := &fakeProfileRepo{active: &models.StudentProfile{StudentID: studentID, GPA: 3.5}}
	scholarships := &fakeScholarshipRepo{listed: []*models.Scholarship{
		{ID: uuid.New(), Status: models.ScholarshipStatusApproved},
	}}
	matcher := &fakeMatcher{results: []models.MatchResult{
		{ScholarshipName: "Low", MatchScore: 35},
		{ScholarshipName: "High", MatchScore: 90},
		{ScholarshipName: "Mid", MatchScore: 60},
	}}
	handler := NewRecommendationsHandler(profiles, scholarships, &fakeSnapshotRepo{}, matcher, zap.NewNop())

	req := requestWithClaims(t, http.MethodGet, "/api/recommendations", "", studentID, models.RoleStudent)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp RecommendationsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 3, resp.Total)
	assert.Equal(t, "High", resp.Results[0].ScholarshipName)
	assert.Equal(t, "Mid", resp.Results[1].ScholarshipName)
	assert.Equal(t, "Low", resp.Results[2].ScholarshipName)
	assert.Equal(t, 1, matcher.calls)
}

func TestRecommendationsGet_NoAssessment(t *testing.T) {
	handler := NewRecommendationsHandler(&fakeProfileRepo{}, &fakeScholarshipRepo{}, &fakeSnapshotRepo{}, &fakeMatcher{}, zap.NewNop())

	req := requestWithClaims(t, http.MethodGet, "/api/recommendations", "", uuid.New(), models.RoleStudent)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRecommendationsSnapshot(t *testing.T) {
	studentID := uuid.New()
	repo := &fakeSnapshotRepo{snapshot: &models.MatchSnapshot{
		StudentID: studentID,
		Results:   []models.MatchResult{{ScholarshipName: "Saved", MatchScore: 72}},
	}}
	handler := NewRecommendationsHandler(&fakeProfileRepo{}, &fakeScholarshipRepo{}, repo, &fakeMatcher{}, zap.NewNop())

	req := requestWithClaims(t, http.MethodGet, "/api/recommendations/snapshot", "", studentID, models.RoleStudent)
	rec := httptest.NewRecorder()

	handler.GetSnapshot(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var snapshot models.MatchSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Equal(t, "Saved", snapshot.Results[0].ScholarshipName)
}

func TestRecommendationsSnapshot_Empty(t *testing.T) {
	handler := NewRecommendationsHandler(&fakeProfileRepo{}, &fakeScholarshipRepo{}, &fakeSnapshotRepo{}, &fakeMatcher{}, zap.NewNop())

	req := requestWithClaims(t, http.MethodGet, "/api/recommendations/snapshot", "", uuid.New(), models.RoleStudent)
	rec := httptest.NewRecorder()

	handler.GetSnapshot(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
