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

// ScholarshipRepository provides data access for scholarships.
type ScholarshipRepository interface {
	Create(ctx context.Context, s *models.Scholarship) error
	Update(ctx context.Context, s *models.Scholarship) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Scholarship, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.Scholarship, error)
	ListBySponsor(ctx context.Context, sponsorID uuid.UUID) ([]*models.Scholarship, error)

	// FillSlot increments the filled-slot count, refusing to exceed the
	// total. Returns the scholarship's remaining slots after the fill.
	FillSlot(ctx context.Context, id uuid.UUID) (int, error)
}

type scholarshipRepository struct {
	db *database.DB
}

// NewScholarshipRepository creates a new ScholarshipRepository.
func NewScholarshipRepository(db *database.DB) ScholarshipRepository {
	return &scholarshipRepository{db: db}
}

var _ ScholarshipRepository = (*scholarshipRepository)(nil)

const scholarshipColumns = `
	id, sponsor_id, name, organization, type, description, min_gpa,
	eligible_courses, eligible_year_levels, income_ceiling, required_skills,
	total_slots, filled_slots, status, deadline, created_at, updated_at`

func (r *scholarshipRepository) Create(ctx context.Context, s *models.Scholarship) error {
	now := time.Now()
	query := `
		INSERT INTO scholarships (
			sponsor_id, name, organization, type, description, min_gpa,
			eligible_courses, eligible_year_levels, income_ceiling,
			required_skills, total_slots, filled_slots, status, deadline,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, $12, $13, $14, $14)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		s.SponsorID, s.Name, s.Organization, s.Type, s.Description, s.MinGPA,
		s.EligibleCourses, s.EligibleYearLevels, s.IncomeCeiling,
		s.RequiredSkills, s.TotalSlots, s.Status, s.Deadline, now,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("insert scholarship: %w", err)
	}
	s.CreatedAt = now
	s.UpdatedAt = now
	return nil
}

func (r *scholarshipRepository) Update(ctx context.Context, s *models.Scholarship) error {
	query := `
		UPDATE scholarships
		SET name = $2, organization = $3, type = $4, description = $5,
		    min_gpa = $6, eligible_courses = $7, eligible_year_levels = $8,
		    income_ceiling = $9, required_skills = $10, total_slots = $11,
		    deadline = $12, status = $13, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		s.ID, s.Name, s.Organization, s.Type, s.Description,
		s.MinGPA, s.EligibleCourses, s.EligibleYearLevels,
		s.IncomeCeiling, s.RequiredSkills, s.TotalSlots, s.Deadline,
		s.Status,
	).Scan(&s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("update scholarship: %w", err)
	}
	return nil
}

func (r *scholarshipRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.db.Exec(ctx,
		`UPDATE scholarships SET status = $2, updated_at = now() WHERE id = $1`,
		id, status)
	if err != nil {
		return fmt.Errorf("update scholarship status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *scholarshipRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Scholarship, error) {
	query := `SELECT` + scholarshipColumns + `FROM scholarships WHERE id = $1`

	s, err := scanScholarship(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("query scholarship: %w", err)
	}
	return s, nil
}

func (r *scholarshipRepository) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.Scholarship, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT` + scholarshipColumns + `
		FROM scholarships
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query scholarships: %w", err)
	}
	defer rows.Close()

	return collectScholarships(rows)
}

func (r *scholarshipRepository) ListBySponsor(ctx context.Context, sponsorID uuid.UUID) ([]*models.Scholarship, error) {
	query := `SELECT` + scholarshipColumns + `
		FROM scholarships
		WHERE sponsor_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, sponsorID)
	if err != nil {
		return nil, fmt.Errorf("query sponsor scholarships: %w", err)
	}
	defer rows.Close()

	return collectScholarships(rows)
}

func (r *scholarshipRepository) FillSlot(ctx context.Context, id uuid.UUID) (int, error) {
	query := `
		UPDATE scholarships
		SET filled_slots = filled_slots + 1, updated_at = now()
		WHERE id = $1 AND filled_slots < total_slots
		RETURNING total_slots - filled_slots`

	var remaining int
	err := r.db.QueryRow(ctx, query, id).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrScholarshipFull
		}
		return 0, fmt.Errorf("fill slot: %w", err)
	}
	return remaining, nil
}

func scanScholarship(row pgx.Row) (*models.Scholarship, error) {
	var s models.Scholarship
	err := row.Scan(
		&s.ID, &s.SponsorID, &s.Name, &s.Organization, &s.Type, &s.Description,
		&s.MinGPA, &s.EligibleCourses, &s.EligibleYearLevels, &s.IncomeCeiling,
		&s.RequiredSkills, &s.TotalSlots, &s.FilledSlots, &s.Status,
		&s.Deadline, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if s.EligibleCourses == nil {
		s.EligibleCourses = []string{}
	}
	if s.EligibleYearLevels == nil {
		s.EligibleYearLevels = []string{}
	}
	if s.RequiredSkills == nil {
		s.RequiredSkills = []string{}
	}
	return &s, nil
}

func collectScholarships(rows pgx.Rows) ([]*models.Scholarship, error) {
	var out []*models.Scholarship
	for rows.Next() {
		s, err := scanScholarship(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scholarship: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scholarships: %w", err)
	}
	return out, nil
}
