package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scholarmatch/scholarmatch-engine/pkg/apperrors"
	"github.com/scholarmatch/scholarmatch-engine/pkg/auth"
	"github.com/scholarmatch/scholarmatch-engine/pkg/models"
	"github.com/scholarmatch/scholarmatch-engine/pkg/repositories"
	"github.com/scholarmatch/scholarmatch-engine/pkg/services"
)

// ScholarshipRequest is the sponsor-facing payload for creating or updating
// a scholarship offer.
type ScholarshipRequest struct {
	Name               string     `json:"name" validate:"required,max=200"`
	Organization       string     `json:"organization" validate:"required,max=200"`
	Type               string     `json:"type" validate:"required,oneof=academic need_based athletic community vocational"`
	Description        string     `json:"description" validate:"max=5000"`
	MinGPA             float64    `json:"minGpa" validate:"gte=0,lte=4"`
	EligibleCourses    []string   `json:"eligibleCourses" validate:"max=50"`
	EligibleYearLevels []string   `json:"eligibleYearLevels" validate:"max=10"`
	IncomeCeiling      *float64   `json:"incomeCeiling" validate:"omitempty,gte=0"`
	RequiredSkills     []string   `json:"requiredSkills" validate:"max=50"`
	TotalSlots         int        `json:"totalSlots" validate:"required,gte=1,lte=1000"`
	Deadline           *time.Time `json:"deadline"`
}

// ScholarshipsHandler handles sponsor scholarship management and admin
// moderation.
type ScholarshipsHandler struct {
	scholarships  repositories.ScholarshipRepository
	notifications repositories.NotificationRepository
	cache         services.MatchCache
	logger        *zap.Logger
}

// NewScholarshipsHandler creates a new scholarships handler.
func NewScholarshipsHandler(
	scholarships repositories.ScholarshipRepository,
	notifications repositories.NotificationRepository,
	cache services.MatchCache,
	logger *zap.Logger,
) *ScholarshipsHandler {
	return &ScholarshipsHandler{
		scholarships:  scholarships,
		notifications: notifications,
		cache:         cache,
		logger:        logger,
	}
}

// RegisterRoutes registers the scholarship routes on the given mux.
func (h *ScholarshipsHandler) RegisterRoutes(mux *http.ServeMux, mw *auth.Middleware) {
	anyRole := mw.RequireRole()
	sponsorOnly := mw.RequireRole(models.RoleSponsor)
	adminOnly := mw.RequireRole(models.RoleAdmin)

	mux.HandleFunc("GET /api/scholarships", anyRole(h.List))
	mux.HandleFunc("GET /api/scholarships/{id}", anyRole(h.Get))
	mux.HandleFunc("POST /api/scholarships", sponsorOnly(h.Create))
	mux.HandleFunc("PUT /api/scholarships/{id}", sponsorOnly(h.Update))
	mux.HandleFunc("GET /api/sponsor/scholarships", sponsorOnly(h.ListMine))
	mux.HandleFunc("POST /api/scholarships/{id}/approve", adminOnly(h.moderate(models.ScholarshipStatusApproved)))
	mux.HandleFunc("POST /api/scholarships/{id}/reject", adminOnly(h.moderate(models.ScholarshipStatusRejected)))
	mux.HandleFunc("POST /api/scholarships/{id}/close", adminOnly(h.moderate(models.ScholarshipStatusClosed)))
}

// Create handles POST /api/scholarships.
// New scholarships start pending and are invisible to students until an
// admin approves them.
func (h *ScholarshipsHandler) Create(w http.ResponseWriter, r *http.Request) {
	sponsorID, err := auth.MustUserID(r.Context())
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid token subject")
		return
	}

	var req ScholarshipRequest
	if err := DecodeJSON(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	scholarship := &models.Scholarship{
		SponsorID:          sponsorID,
		Name:               req.Name,
		Organization:       req.Organization,
		Type:               req.Type,
		Description:        req.Description,
		MinGPA:             req.MinGPA,
		EligibleCourses:    req.EligibleCourses,
		EligibleYearLevels: req.EligibleYearLevels,
		IncomeCeiling:      req.IncomeCeiling,
		RequiredSkills:     req.RequiredSkills,
		TotalSlots:         req.TotalSlots,
		Status:             models.ScholarshipStatusPending,
		Deadline:           req.Deadline,
	}

	if err := h.scholarships.Create(r.Context(), scholarship); err != nil {
		h.logger.Error("Failed to create scholarship",
			zap.String("sponsor_id", sponsorID.String()),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to create scholarship")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, scholarship); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/scholarships/{id}.
// Only the owning sponsor may update, and edits return the scholarship to
// pending for re-moderation.
func (h *ScholarshipsHandler) Update(w http.ResponseWriter, r *http.Request) {
	sponsorID, err := auth.MustUserID(r.Context())
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid token subject")
		return
	}

	scholarship, ok := h.loadScholarship(w, r)
	if !ok {
		return
	}
	if scholarship.SponsorID != sponsorID {
		h.writeError(w, http.StatusForbidden, "forbidden", "Not your scholarship")
		return
	}

	var req ScholarshipRequest
	if err := DecodeJSON(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.TotalSlots < scholarship.FilledSlots {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Total slots cannot drop below filled slots")
		return
	}

	scholarship.Name = req.Name
	scholarship.Organization = req.Organization
	scholarship.Type = req.Type
	scholarship.Description = req.Description
	scholarship.MinGPA = req.MinGPA
	scholarship.EligibleCourses = req.EligibleCourses
	scholarship.EligibleYearLevels = req.EligibleYearLevels
	scholarship.IncomeCeiling = req.IncomeCeiling
	scholarship.RequiredSkills = req.RequiredSkills
	scholarship.TotalSlots = req.TotalSlots
	scholarship.Deadline = req.Deadline
	scholarship.Status = models.ScholarshipStatusPending

	if err := h.scholarships.Update(r.Context(), scholarship); err != nil {
		h.logger.Error("Failed to update scholarship",
			zap.String("scholarship_id", scholarship.ID.String()),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to update scholarship")
		return
	}

	// Criteria changed; cached recommendations built against the old
	// criteria are stale.
	h.cache.Clear(r.Context())

	if err := WriteJSON(w, http.StatusOK, scholarship); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/scholarships.
// Students and sponsors see approved scholarships; admins may filter by any
// status using the status query parameter.
func (h *ScholarshipsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := models.ScholarshipStatusApproved
	if requested := r.URL.Query().Get("status"); requested != "" {
		claims, _ := auth.GetClaims(r.Context())
		if claims == nil || !claims.HasRole(models.RoleAdmin) {
			h.writeError(w, http.StatusForbidden, "forbidden", "Status filter requires admin role")
			return
		}
		status = requested
	}

	limit, offset := pagination(r)
	scholarships, err := h.scholarships.ListByStatus(r.Context(), status, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list scholarships", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list scholarships")
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{
		"scholarships": scholarships,
		"total":        len(scholarships),
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListMine handles GET /api/sponsor/scholarships.
func (h *ScholarshipsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	sponsorID, err := auth.MustUserID(r.Context())
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid token subject")
		return
	}

	scholarships, err := h.scholarships.ListBySponsor(r.Context(), sponsorID)
	if err != nil {
		h.logger.Error("Failed to list sponsor scholarships",
			zap.String("sponsor_id", sponsorID.String()),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list scholarships")
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{
		"scholarships": scholarships,
		"total":        len(scholarships),
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/scholarships/{id}.
func (h *ScholarshipsHandler) Get(w http.ResponseWriter, r *http.Request) {
	scholarship, ok := h.loadScholarship(w, r)
	if !ok {
		return
	}

	// Unmoderated scholarships are visible to their sponsor and admins only.
	if scholarship.Status != models.ScholarshipStatusApproved {
		claims, _ := auth.GetClaims(r.Context())
		callerID, _ := auth.MustUserID(r.Context())
		if claims == nil || (!claims.HasRole(models.RoleAdmin) && scholarship.SponsorID != callerID) {
			h.writeError(w, http.StatusNotFound, "not_found", "Scholarship not found")
			return
		}
	}

	if err := WriteJSON(w, http.StatusOK, scholarship); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// moderate returns a handler that transitions a scholarship to the given
// status and notifies the sponsor.
func (h *ScholarshipsHandler) moderate(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scholarship, ok := h.loadScholarship(w, r)
		if !ok {
			return
		}

		if err := h.scholarships.UpdateStatus(r.Context(), scholarship.ID, status); err != nil {
			h.logger.Error("Failed to update scholarship status",
				zap.String("scholarship_id", scholarship.ID.String()),
				zap.String("status", status),
				zap.Error(err))
			h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to update status")
			return
		}

		// The approved set changed, so cached matching runs are stale.
		h.cache.Clear(r.Context())

		notification := &models.Notification{
			UserID: scholarship.SponsorID,
			Kind:   models.NotificationScholarshipStatus,
			Title:  "Scholarship " + status,
			Body:   fmt.Sprintf("%q is now %s.", scholarship.Name, status),
		}
		if err := h.notifications.Create(r.Context(), notification); err != nil {
			h.logger.Warn("Failed to notify sponsor",
				zap.String("sponsor_id", scholarship.SponsorID.String()),
				zap.Error(err))
		}

		scholarship.Status = status
		if err := WriteJSON(w, http.StatusOK, scholarship); err != nil {
			h.logger.Error("Failed to write response", zap.Error(err))
		}
	}
}

// loadScholarship parses the {id} path value and fetches the scholarship,
// writing the error response itself on failure.
func (h *ScholarshipsHandler) loadScholarship(w http.ResponseWriter, r *http.Request) (*models.Scholarship, bool) {
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
	return scholarship, true
}

func pagination(r *http.Request) (limit, offset int) {
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

func (h *ScholarshipsHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
