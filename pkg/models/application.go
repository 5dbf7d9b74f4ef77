package models

import (
	"time"

	"github.com/google/uuid"
)

// Application status values.
const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusApproved = "approved"
	ApplicationStatusRejected = "rejected"
)

// Application is a student's submission against a single scholarship.
// Academic fields are copied from the student's active profile at submission
// time so sponsor-side ranking sees the data the student applied with.
type Application struct {
	ID            uuid.UUID `json:"id"`
	StudentID     uuid.UUID `json:"student_id"`
	ScholarshipID uuid.UUID `json:"scholarship_id"`
	StudentName   string    `json:"student_name"`
	Course        string    `json:"course"`
	YearLevel     string    `json:"year_level"`
	GPA           float64   `json:"gpa"`
	IncomeRange   string    `json:"income_range"`
	Skills        string    `json:"skills"`
	Essay         string    `json:"essay"`
	Status        string    `json:"status"`
	SubmittedAt   time.Time `json:"submitted_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
