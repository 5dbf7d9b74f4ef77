package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scholarmatch/scholarmatch-engine/pkg/apperrors"
	"github.com/scholarmatch/scholarmatch-engine/pkg/auth"
	"github.com/scholarmatch/scholarmatch-engine/pkg/repositories"
)

// NotificationsHandler serves a user's in-app notifications.
type NotificationsHandler struct {
	notifications repositories.NotificationRepository
	logger        *zap.Logger
}

// NewNotificationsHandler creates a new notifications handler.
func NewNotificationsHandler(notifications repositories.NotificationRepository, logger *zap.Logger) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications, logger: logger}
}

// RegisterRoutes registers the notification routes on the given mux.
func (h *NotificationsHandler) RegisterRoutes(mux *http.ServeMux, mw *auth.Middleware) {
	anyRole := mw.RequireRole()
	mux.HandleFunc("GET /api/notifications", anyRole(h.List))
	mux.HandleFunc("POST /api/notifications/{id}/read", anyRole(h.MarkRead))
}

// List handles GET /api/notifications.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.MustUserID(r.Context())
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid token subject")
		return
	}

	limit, _ := pagination(r)
	notifications, err := h.notifications.ListByUser(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error("Failed to list notifications",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list notifications")
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{
		"notifications": notifications,
		"total":         len(notifications),
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// MarkRead handles POST /api/notifications/{id}/read.
// Scoped to the caller's own notifications.
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.MustUserID(r.Context())
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid token subject")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_id", "Invalid notification ID")
		return
	}

	if err := h.notifications.MarkRead(r.Context(), id, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "Notification not found")
			return
		}
		h.logger.Error("Failed to mark notification read",
			zap.String("notification_id", id.String()),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to update notification")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationsHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
