// Package repositories provides Postgres data access for the matching
// domain: assessment profiles, scholarships, applications, and the
// persisted match/rank snapshots.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/scholarmatch/scholarmatch-engine/pkg/apperrors"
	"github.com/scholarmatch/scholarmatch-engine/pkg/database"
	"github.com/scholarmatch/scholarmatch-engine/pkg/models"
)

// StudentProfileRepository provides data access for assessment profiles.
type StudentProfileRepository interface {
	// Upsert stores a new assessment snapshot and deactivates the
	// student's previous one, keeping exactly one active per student.
	Upsert(ctx context.Context, profile *models.StudentProfile) error

	// GetActiveByStudent returns the student's active profile, or
	// apperrors.ErrNoActiveProfile when none exists.
	GetActiveByStudent(ctx context.Context, studentID uuid.UUID) (*models.StudentProfile, error)
}

type studentProfileRepository struct {
	db *database.DB
}

// NewStudentProfileRepository creates a new StudentProfileRepository.
func NewStudentProfileRepository(db *database.DB) StudentProfileRepository {
	return &studentProfileRepository{db: db}
}

var _ StudentProfileRepository = (*studentProfileRepository)(nil)

func (r *studentProfileRepository) Upsert(ctx context.Context, profile *models.StudentProfile) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`UPDATE student_profiles SET active = false WHERE student_id = $1 AND active`,
		profile.StudentID)
	if err != nil {
		return fmt.Errorf("deactivate previous profile: %w", err)
	}

	now := time.Now()
	query := `
		INSERT INTO student_profiles (
			student_id, course, year_level, gpa, income_range,
			skills, extracurriculars, preferred_type, essay, active, submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, true, $10)
		RETURNING id`

	err = tx.QueryRow(ctx, query,
		profile.StudentID,
		profile.Course,
		profile.YearLevel,
		profile.GPA,
		profile.IncomeRange,
		profile.Skills,
		profile.Extracurriculars,
		profile.PreferredType,
		profile.Essay,
		now,
	).Scan(&profile.ID)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	profile.SubmittedAt = now

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *studentProfileRepository) GetActiveByStudent(ctx context.Context, studentID uuid.UUID) (*models.StudentProfile, error) {
	query := `
		SELECT id, student_id, course, year_level, gpa, income_range,
		       skills, extracurriculars, preferred_type, essay, submitted_at
		FROM student_profiles
		WHERE student_id = $1 AND active`

	var p models.StudentProfile
	err := r.db.QueryRow(ctx, query, studentID).Scan(
		&p.ID, &p.StudentID, &p.Course, &p.YearLevel, &p.GPA, &p.IncomeRange,
		&p.Skills, &p.Extracurriculars, &p.PreferredType, &p.Essay, &p.SubmittedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNoActiveProfile
		}
		return nil, fmt.Errorf("query active profile: %w", err)
	}
	return &p, nil
}
