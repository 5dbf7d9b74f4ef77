package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/scholarmatch/scholarmatch-engine/pkg/apperrors"
	"github.com/scholarmatch/scholarmatch-engine/pkg/audit"
	"github.com/scholarmatch/scholarmatch-engine/pkg/auth"
	"github.com/scholarmatch/scholarmatch-engine/pkg/jsonutil"
	"github.com/scholarmatch/scholarmatch-engine/pkg/models"
	"github.com/scholarmatch/scholarmatch-engine/pkg/repositories"
	"github.com/scholarmatch/scholarmatch-engine/pkg/services"
)

// AssessmentRequest is a student's self-assessment submission. GPA accepts
// either a JSON number or a quoted numeric string since mobile clients have
// historically sent both.
type AssessmentRequest struct {
	Course           string          `json:"course" validate:"required,max=120"`
	YearLevel        string          `json:"yearLevel" validate:"required,max=40"`
	GPA              json.RawMessage `json:"gpa" validate:"required"`
	IncomeRange      string          `json:"incomeRange" validate:"required"`
	Skills           string          `json:"skills" validate:"max=2000"`
	Extracurriculars string          `json:"extracurriculars" validate:"max=2000"`
	PreferredType    string          `json:"preferredType" validate:"omitempty,oneof=academic need_based athletic community vocational"`
	Essay            string          `json:"essay" validate:"max=10000"`
}

// AssessmentHandler handles student self-assessment submissions.
type AssessmentHandler struct {
	profiles repositories.StudentProfileRepository
	cache    services.MatchCache
	auditor  *audit.SecurityAuditor
	logger   *zap.Logger
}

// NewAssessmentHandler creates a new assessment handler.
func NewAssessmentHandler(
	profiles repositories.StudentProfileRepository,
	cache services.MatchCache,
	auditor *audit.SecurityAuditor,
	logger *zap.Logger,
) *AssessmentHandler {
	return &AssessmentHandler{
		profiles: profiles,
		cache:    cache,
		auditor:  auditor,
		logger:   logger,
	}
}

// RegisterRoutes registers the assessment handler's routes on the given mux.
func (h *AssessmentHandler) RegisterRoutes(mux *http.ServeMux, mw *auth.Middleware) {
	studentOnly := mw.RequireRole(models.RoleStudent)
	mux.HandleFunc("POST /api/assessments", studentOnly(h.Submit))
	mux.HandleFunc("GET /api/assessments/me", studentOnly(h.GetMine))
}

// Submit handles POST /api/assessments.
// Stores a new active profile for the student, superseding any previous one,
// and invalidates cached recommendations so the next request reflects it.
func (h *AssessmentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	studentID, err := auth.MustUserID(r.Context())
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid token subject")
		return
	}

	var req AssessmentRequest
	if err := DecodeJSON(r, &req); err != nil {
		h.auditor.LogFieldValidation(r.Context(), studentID, err.Error(), r.RemoteAddr)
		h.writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	gpa := jsonutil.FlexibleFloat(req.GPA)
	if gpa < 0 || gpa > 4.0 {
		h.auditor.LogFieldValidation(r.Context(), studentID, "gpa must be between 0 and 4", r.RemoteAddr)
		h.writeError(w, http.StatusBadRequest, "invalid_request", "GPA must be between 0 and 4")
		return
	}
	if models.IncomeBracketIndex(req.IncomeRange) < 0 {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Unknown income range")
		return
	}

	// Free-text fields end up in SQL and in model prompts; scan and reject
	// anything that looks like an injection payload.
	hits := audit.CheckFields(map[string]string{
		"skills":           req.Skills,
		"extracurriculars": req.Extracurriculars,
		"essay":            req.Essay,
	})
	if len(hits) > 0 {
		for _, hit := range hits {
			h.auditor.LogInjectionAttempt(r.Context(), studentID, *hit, r.RemoteAddr)
		}
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Submission contains disallowed content")
		return
	}

	profile := &models.StudentProfile{
		StudentID:        studentID,
		Course:           req.Course,
		YearLevel:        req.YearLevel,
		GPA:              gpa,
		IncomeRange:      req.IncomeRange,
		Skills:           req.Skills,
		Extracurriculars: req.Extracurriculars,
		PreferredType:    req.PreferredType,
		Essay:            req.Essay,
	}

	if err := h.profiles.Upsert(r.Context(), profile); err != nil {
		h.logger.Error("Failed to store assessment",
			zap.String("student_id", studentID.String()),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to store assessment")
		return
	}

	// A new profile makes every cached recommendation for this student stale.
	h.cache.Clear(r.Context())

	if err := WriteJSON(w, http.StatusCreated, profile); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetMine handles GET /api/assessments/me.
// Returns the student's active profile.
func (h *AssessmentHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	studentID, err := auth.MustUserID(r.Context())
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid token subject")
		return
	}

	profile, err := h.profiles.GetActiveByStudent(r.Context(), studentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoActiveProfile) {
			h.writeError(w, http.StatusNotFound, "not_found", "No assessment submitted yet")
			return
		}
		h.logger.Error("Failed to load assessment",
			zap.String("student_id", studentID.String()),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load assessment")
		return
	}

	if err := WriteJSON(w, http.StatusOK, profile); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *AssessmentHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
