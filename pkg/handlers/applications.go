package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scholarmatch/scholarmatch-engine/pkg/apperrors"
	"github.com/scholarmatch/scholarmatch-engine/pkg/auth"
	"github.com/scholarmatch/scholarmatch-engine/pkg/models"
	"github.com/scholarmatch/scholarmatch-engine/pkg/repositories"
)

// ApplicationStatusRequest is a sponsor's decision on an application.
type ApplicationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// ApplicationsHandler handles scholarship applications and sponsor decisions.
type ApplicationsHandler struct {
	applications  repositories.ApplicationRepository
	scholarships  repositories.ScholarshipRepository
	profiles      repositories.StudentProfileRepository
	notifications repositories.NotificationRepository
	logger        *zap.Logger
}

// NewApplicationsHandler creates a new applications handler.
func NewApplicationsHandler(
	applications repositories.ApplicationRepository,
	scholarships repositories.ScholarshipRepository,
	profiles repositories.StudentProfileRepository,
	notifications repositories.NotificationRepository,
	logger *zap.Logger,
) *ApplicationsHandler {
	return &ApplicationsHandler{
		applications:  applications,
		scholarships:  scholarships,
		profiles:      profiles,
		notifications: notifications,
		logger:        logger,
	}
}

// RegisterRoutes registers the application routes on the given mux.
func (h *ApplicationsHandler) RegisterRoutes(mux *http.ServeMux, mw *auth.Middleware) {
	studentOnly := mw.RequireRole(models.RoleStudent)
	sponsorOnly := mw.RequireRole(models.RoleSponsor)

	mux.HandleFunc("POST /api/scholarships/{id}/applications", studentOnly(h.Apply))
	mux.HandleFunc("GET /api/applications/me", studentOnly(h.ListMine))
	mux.HandleFunc("GET /api/scholarships/{id}/applications", sponsorOnly(h.ListForScholarship))
	mux.HandleFunc("PATCH /api/applications/{id}/status", sponsorOnly(h.Decide))
}

// Apply handles POST /api/scholarships/{id}/applications.
// The student's active profile is copied into the application so later
// ranking sees the data they applied with, even if they resubmit their
// assessment afterwards.
func (h *ApplicationsHandler) Apply(w http.ResponseWriter, r *http.Request) {
	studentID, err := auth.MustUserID(r.Context())
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid token subject")
		return
	}

	scholarshipID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_id", "Invalid scholarship ID")
		return
	}

	scholarship, err := h.scholarships.GetByID(r.Context(), scholarshipID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "Scholarship not found")
			return
		}
		h.logger.Error("Failed to load scholarship", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load scholarship")
		return
	}
	if !scholarship.IsOpen() {
		h.writeError(w, http.StatusConflict, "scholarship_closed", "Scholarship is not accepting applications")
		return
	}

	profile, err := h.profiles.GetActiveByStudent(r.Context(), studentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoActiveProfile) {
			h.writeError(w, http.StatusConflict, "no_assessment", "Submit an assessment before applying")
			return
		}
		h.logger.Error("Failed to load profile", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load profile")
		return
	}

	claims, _ := auth.GetClaims(r.Context())
	app := &models.Application{
		StudentID:     studentID,
		ScholarshipID: scholarshipID,
		StudentName:   claims.Name,
		Course:        profile.Course,
		YearLevel:     profile.YearLevel,
		GPA:           profile.GPA,
		IncomeRange:   profile.IncomeRange,
		Skills:        profile.Skills,
		Essay:         profile.Essay,
		Status:        models.ApplicationStatusPending,
	}

	if err := h.applications.Create(r.Context(), app); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyApplied) {
			h.writeError(w, http.StatusConflict, "already_applied", "You already applied to this scholarship")
			return
		}
		h.logger.Error("Failed to create application",
			zap.String("student_id", studentID.String()),
			zap.String("scholarship_id", scholarshipID.String()),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to submit application")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, app); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListMine handles GET /api/applications/me.
func (h *ApplicationsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	studentID, err := auth.MustUserID(r.Context())
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid token subject")
		return
	}

	apps, err := h.applications.ListByStudent(r.Context(), studentID)
	if err != nil {
		h.logger.Error("Failed to list applications", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list applications")
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{
		"applications": apps,
		"total":        len(apps),
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListForScholarship handles GET /api/scholarships/{id}/applications.
// Only the owning sponsor may view a scholarship's applicants.
func (h *ApplicationsHandler) ListForScholarship(w http.ResponseWriter, r *http.Request) {
	sponsorID, err := auth.MustUserID(r.Context())
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid token subject")
		return
	}

	scholarshipID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_id", "Invalid scholarship ID")
		return
	}

	scholarship, err := h.scholarships.GetByID(r.Context(), scholarshipID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "Scholarship not found")
			return
		}
		h.logger.Error("Failed to load scholarship", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load scholarship")
		return
	}
	if scholarship.SponsorID != sponsorID {
		h.writeError(w, http.StatusForbidden, "forbidden", "Not your scholarship")
		return
	}

	apps, err := h.applications.ListByScholarship(r.Context(), scholarshipID)
	if err != nil {
		h.logger.Error("Failed to list applications", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list applications")
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{
		"applications": apps,
		"total":        len(apps),
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Decide handles PATCH /api/applications/{id}/status.
// Only pending applications may be decided. Approval consumes a slot; when
// the last slot fills the scholarship closes automatically.
func (h *ApplicationsHandler) Decide(w http.ResponseWriter, r *http.Request) {
	sponsorID, err := auth.MustUserID(r.Context())
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid token subject")
		return
	}

	applicationID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_id", "Invalid application ID")
		return
	}

	var req ApplicationStatusRequest
	if err := DecodeJSON(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	app, err := h.applications.GetByID(r.Context(), applicationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "Application not found")
			return
		}
		h.logger.Error("Failed to load application", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load application")
		return
	}

	scholarship, err := h.scholarships.GetByID(r.Context(), app.ScholarshipID)
	if err != nil {
		h.logger.Error("Failed to load scholarship", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load scholarship")
		return
	}
	if scholarship.SponsorID != sponsorID {
		h.writeError(w, http.StatusForbidden, "forbidden", "Not your scholarship")
		return
	}
	if app.Status != models.ApplicationStatusPending {
		h.writeError(w, http.StatusConflict, "invalid_transition", "Application has already been decided")
		return
	}

	if req.Status == models.ApplicationStatusApproved {
		remaining, err := h.scholarships.FillSlot(r.Context(), scholarship.ID)
		if err != nil {
			if errors.Is(err, apperrors.ErrScholarshipFull) {
				h.writeError(w, http.StatusConflict, "scholarship_full", "No remaining slots")
				return
			}
			h.logger.Error("Failed to fill slot", zap.Error(err))
			h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to approve application")
			return
		}
		if remaining == 0 {
			if err := h.scholarships.UpdateStatus(r.Context(), scholarship.ID, models.ScholarshipStatusClosed); err != nil {
				h.logger.Warn("Failed to close filled scholarship",
					zap.String("scholarship_id", scholarship.ID.String()),
					zap.Error(err))
			}
		}
	}

	if err := h.applications.UpdateStatus(r.Context(), applicationID, req.Status); err != nil {
		h.logger.Error("Failed to update application status", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to update application")
		return
	}
	app.Status = req.Status

	notification := &models.Notification{
		UserID: app.StudentID,
		Kind:   models.NotificationApplicationStatus,
		Title:  "Application " + req.Status,
		Body:   fmt.Sprintf("Your application to %q was %s.", scholarship.Name, req.Status),
	}
	if err := h.notifications.Create(r.Context(), notification); err != nil {
		h.logger.Warn("Failed to notify student",
			zap.String("student_id", app.StudentID.String()),
			zap.Error(err))
	}

	if err := WriteJSON(w, http.StatusOK, app); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *ApplicationsHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
