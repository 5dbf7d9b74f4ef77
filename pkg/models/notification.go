package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification kinds.
const (
	NotificationMatchReady        = "match_ready"
	NotificationApplicationStatus = "application_status"
	NotificationScholarshipStatus = "scholarship_status"
)

// Notification is an in-app message for a user.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
