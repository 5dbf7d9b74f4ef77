package models

import (
	"time"

	"github.com/google/uuid"
)

// IncomeBrackets is the fixed ascending list of monthly family income range
// labels used by assessments. Ordering matters: the financial-need sub-score
// is derived from a bracket's position in this list.
var IncomeBrackets = []string{
	"Less than 10,000",
	"10,000 - 20,000",
	"20,001 - 30,000",
	"30,001 - 50,000",
	"Above 50,000",
}

// IncomeBracketIndex returns the position of a bracket label in
// IncomeBrackets, or -1 if the label is unknown.
func IncomeBracketIndex(label string) int {
	for i, b := range IncomeBrackets {
		if b == label {
			return i
		}
	}
	return -1
}

// StudentProfile is a snapshot of a student's assessment submission.
// A profile is immutable once submitted; re-submitting an assessment
// supersedes the previous profile so exactly one is active per student.
type StudentProfile struct {
	ID               uuid.UUID `json:"id"`
	StudentID        uuid.UUID `json:"student_id"`
	Course           string    `json:"course"`
	YearLevel        string    `json:"year_level"`
	GPA              float64   `json:"gpa"`
	IncomeRange      string    `json:"income_range"`
	Skills           string    `json:"skills"`
	Extracurriculars string    `json:"extracurriculars"`
	PreferredType    string    `json:"preferred_type"`
	Essay            string    `json:"essay"`
	SubmittedAt      time.Time `json:"submitted_at"`
}
