package models

import (
	"time"

	"github.com/google/uuid"
)

// Scholarship lifecycle states. A scholarship is created by a sponsor in
// pending state, reviewed by an admin, and closed either manually or when
// all slots are filled.
const (
	ScholarshipStatusPending  = "pending"
	ScholarshipStatusApproved = "approved"
	ScholarshipStatusRejected = "rejected"
	ScholarshipStatusClosed   = "closed"
)

// Scholarship type tags offered by sponsors and used for the student
// preference bonus during matching.
const (
	ScholarshipTypeAcademic   = "academic"
	ScholarshipTypeNeedBased  = "need_based"
	ScholarshipTypeAthletic   = "athletic"
	ScholarshipTypeCommunity  = "community"
	ScholarshipTypeVocational = "vocational"
)

// Scholarship holds a sponsor's offer and its selection criteria.
// Empty EligibleCourses or EligibleYearLevels means all are eligible.
type Scholarship struct {
	ID                 uuid.UUID  `json:"id"`
	SponsorID          uuid.UUID  `json:"sponsor_id"`
	Name               string     `json:"name"`
	Organization       string     `json:"organization"`
	Type               string     `json:"type"`
	Description        string     `json:"description,omitempty"`
	MinGPA             float64    `json:"min_gpa"`
	EligibleCourses    []string   `json:"eligible_courses"`
	EligibleYearLevels []string   `json:"eligible_year_levels"`
	IncomeCeiling      *float64   `json:"income_ceiling,omitempty"`
	RequiredSkills     []string   `json:"required_skills"`
	TotalSlots         int        `json:"total_slots"`
	FilledSlots        int        `json:"filled_slots"`
	Status             string     `json:"status"`
	Deadline           *time.Time `json:"deadline,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// SlotsRemaining returns total minus filled, never negative and never more
// than the total slot count.
func (s *Scholarship) SlotsRemaining() int {
	filled := s.FilledSlots
	if filled < 0 {
		filled = 0
	}
	if filled > s.TotalSlots {
		filled = s.TotalSlots
	}
	return s.TotalSlots - filled
}

// IsOpen reports whether the scholarship can still accept applications.
func (s *Scholarship) IsOpen() bool {
	return s.Status == ScholarshipStatusApproved && s.SlotsRemaining() > 0
}
