package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scholarmatch/scholarmatch-engine/pkg/apperrors"
	"github.com/scholarmatch/scholarmatch-engine/pkg/auth"
	"github.com/scholarmatch/scholarmatch-engine/pkg/models"
	"github.com/scholarmatch/scholarmatch-engine/pkg/repositories"
	"github.com/scholarmatch/scholarmatch-engine/pkg/services"
)

// RankingResponse carries a ranking run's results for sponsor review.
type RankingResponse struct {
	ScholarshipID uuid.UUID           `json:"scholarshipId"`
	Results       []models.RankResult `json:"results"`
	Total         int                 `json:"total"`
}

// RankingHandler lets sponsors rank a scholarship's applicants.
type RankingHandler struct {
	applications repositories.ApplicationRepository
	scholarships repositories.ScholarshipRepository
	rankRepo     repositories.RankResultRepository
	ranker       services.RankingService
	logger       *zap.Logger
}

// NewRankingHandler creates a new ranking handler.
func NewRankingHandler(
	applications repositories.ApplicationRepository,
	scholarships repositories.ScholarshipRepository,
	rankRepo repositories.RankResultRepository,
	ranker services.RankingService,
	logger *zap.Logger,
) *RankingHandler {
	return &RankingHandler{
		applications: applications,
		scholarships: scholarships,
		rankRepo:     rankRepo,
		ranker:       ranker,
		logger:       logger,
	}
}

// RegisterRoutes registers the ranking routes on the given mux.
func (h *RankingHandler) RegisterRoutes(mux *http.ServeMux, mw *auth.Middleware) {
	sponsorOnly := mw.RequireRole(models.RoleSponsor)
	mux.HandleFunc("POST /api/scholarships/{id}/rankings", sponsorOnly(h.Rank))
	mux.HandleFunc("GET /api/scholarships/{id}/rankings", sponsorOnly(h.GetSnapshot))
}

// Rank handles POST /api/scholarships/{id}/rankings.
// Runs a fresh ranking pass over the scholarship's applicants. Like
// matching, the run itself cannot fail: model errors degrade to the
// deterministic fallback.
func (h *RankingHandler) Rank(w http.ResponseWriter, r *http.Request) {
	scholarship, ok := h.loadOwnedScholarship(w, r)
	if !ok {
		return
	}

	apps, err := h.applications.ListByScholarship(r.Context(), scholarship.ID)
	if err != nil {
		h.logger.Error("Failed to list applications",
			zap.String("scholarship_id", scholarship.ID.String()),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list applications")
		return
	}

	results := h.ranker.RankApplicantsForScholarship(r.Context(), apps, scholarship)

	response := RankingResponse{
		ScholarshipID: scholarship.ID,
		Results:       results,
		Total:         len(results),
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetSnapshot handles GET /api/scholarships/{id}/rankings.
// Returns the last persisted ranking run without triggering a new one.
func (h *RankingHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	scholarship, ok := h.loadOwnedScholarship(w, r)
	if !ok {
		return
	}

	snapshot, err := h.rankRepo.GetByScholarship(r.Context(), scholarship.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "No ranking generated yet")
			return
		}
		h.logger.Error("Failed to load ranking snapshot",
			zap.String("scholarship_id", scholarship.ID.String()),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load ranking")
		return
	}

	if err := WriteJSON(w, http.StatusOK, snapshot); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *RankingHandler) loadOwnedScholarship(w http.ResponseWriter, r *http.Request) (*models.Scholarship, bool) {
	sponsorID, err := auth.MustUserID(r.Context())
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid token subject")
		return nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_id", "Invalid scholarship ID")
		return nil, false
	}

	scholarship, err := h.scholarships.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "Scholarship not found")
			return nil, false
		}
		h.logger.Error("Failed to load scholarship",
			zap.String("scholarship_id", id.String()),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load scholarship")
		return nil, false
	}
	if scholarship.SponsorID != sponsorID {
		h.writeError(w, http.StatusForbidden, "forbidden", "Not your scholarship")
		return nil, false
	}
	return scholarship, true
}

func (h *RankingHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
