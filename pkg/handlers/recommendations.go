package handlers

import (
	"errors"
	"net/http"
	"sort"

	"go.uber.org/zap"

	"github.com/scholarmatch/scholarmatch-engine/pkg/apperrors"
	"github.com/scholarmatch/scholarmatch-engine/pkg/auth"
	"github.com/scholarmatch/scholarmatch-engine/pkg/models"
	"github.com/scholarmatch/scholarmatch-engine/pkg/repositories"
	"github.com/scholarmatch/scholarmatch-engine/pkg/services"
)

// RecommendationsResponse carries a matching run's results for display.
type RecommendationsResponse struct {
	Results []models.MatchResult `json:"results"`
	Total   int                  `json:"total"`
}

// RecommendationsHandler serves scholarship recommendations to students.
type RecommendationsHandler struct {
	profiles     repositories.StudentProfileRepository
	scholarships repositories.ScholarshipRepository
	matchRepo    repositories.MatchResultRepository
	matcher      services.MatchingService
	logger       *zap.Logger
}

// NewRecommendationsHandler creates a new recommendations handler.
func NewRecommendationsHandler(
	profiles repositories.StudentProfileRepository,
	scholarships repositories.ScholarshipRepository,
	matchRepo repositories.MatchResultRepository,
	matcher services.MatchingService,
	logger *zap.Logger,
) *RecommendationsHandler {
	return &RecommendationsHandler{
		profiles:     profiles,
		scholarships: scholarships,
		matchRepo:    matchRepo,
		matcher:      matcher,
		logger:       logger,
	}
}

// RegisterRoutes registers the recommendations routes on the given mux.
func (h *RecommendationsHandler) RegisterRoutes(mux *http.ServeMux, mw *auth.Middleware) {
	studentOnly := mw.RequireRole(models.RoleStudent)
	mux.HandleFunc("GET /api/recommendations", studentOnly(h.Get))
	mux.HandleFunc("GET /api/recommendations/snapshot", studentOnly(h.GetSnapshot))
}

// Get handles GET /api/recommendations.
// Runs the matching pipeline against all approved scholarships and returns
// results sorted by descending match score. This endpoint never fails on
// model errors; degraded runs are served from the deterministic fallback.
func (h *RecommendationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	studentID, err := auth.MustUserID(r.Context())
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid token subject")
		return
	}

	profile, err := h.profiles.GetActiveByStudent(r.Context(), studentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoActiveProfile) {
			h.writeError(w, http.StatusConflict, "no_assessment", "Submit an assessment before requesting recommendations")
			return
		}
		h.logger.Error("Failed to load profile",
			zap.String("student_id", studentID.String()),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load profile")
		return
	}

	// Cap the candidate set; a matching run covers at most one page of
	// approved scholarships to keep prompt sizes bounded.
	scholarships, err := h.scholarships.ListByStatus(r.Context(), models.ScholarshipStatusApproved, 100, 0)
	if err != nil {
		h.logger.Error("Failed to list scholarships", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list scholarships")
		return
	}

	results := h.matcher.MatchStudentToScholarships(r.Context(), profile, scholarships, studentID)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})

	response := RecommendationsResponse{Results: results, Total: len(results)}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetSnapshot handles GET /api/recommendations/snapshot.
// Returns the last persisted matching run without triggering a new one.
func (h *RecommendationsHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	studentID, err := auth.MustUserID(r.Context())
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid token subject")
		return
	}

	snapshot, err := h.matchRepo.GetByStudent(r.Context(), studentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "No recommendations generated yet")
			return
		}
		h.logger.Error("Failed to load snapshot",
			zap.String("student_id", studentID.String()),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load snapshot")
		return
	}

	if err := WriteJSON(w, http.StatusOK, snapshot); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *RecommendationsHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
