package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/scholarmatch/scholarmatch-engine/pkg/apperrors"
	"github.com/scholarmatch/scholarmatch-engine/pkg/database"
	"github.com/scholarmatch/scholarmatch-engine/pkg/models"
)

// ApplicationRepository provides data access for scholarship applications.
type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	ListByScholarship(ctx context.Context, scholarshipID uuid.UUID) ([]*models.Application, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.Application, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type applicationRepository struct {
	db *database.DB
}

// NewApplicationRepository creates a new ApplicationRepository.
func NewApplicationRepository(db *database.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

var _ ApplicationRepository = (*applicationRepository)(nil)

const applicationColumns = `
	id, student_id, scholarship_id, student_name, course, year_level, gpa,
	income_range, skills, essay, status, submitted_at, updated_at`

func (r *applicationRepository) Create(ctx context.Context, app *models.Application) error {
	now := time.Now()
	query := `
		INSERT INTO applications (
			student_id, scholarship_id, student_name, course, year_level,
			gpa, income_range, skills, essay, status, submitted_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		app.StudentID, app.ScholarshipID, app.StudentName, app.Course,
		app.YearLevel, app.GPA, app.IncomeRange, app.Skills, app.Essay,
		app.Status, now,
	).Scan(&app.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505: unique_violation on (student_id, scholarship_id)
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrAlreadyApplied
		}
		return fmt.Errorf("insert application: %w", err)
	}
	app.SubmittedAt = now
	app.UpdatedAt = now
	return nil
}

func (r *applicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	query := `SELECT` + applicationColumns + `FROM applications WHERE id = $1`

	var a models.Application
	err := r.db.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.StudentID, &a.ScholarshipID, &a.StudentName, &a.Course,
		&a.YearLevel, &a.GPA, &a.IncomeRange, &a.Skills, &a.Essay,
		&a.Status, &a.SubmittedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("query application: %w", err)
	}
	return &a, nil
}

func (r *applicationRepository) ListByScholarship(ctx context.Context, scholarshipID uuid.UUID) ([]*models.Application, error) {
	query := `SELECT` + applicationColumns + `
		FROM applications
		WHERE scholarship_id = $1
		ORDER BY submitted_at ASC`

	return r.list(ctx, query, scholarshipID)
}

func (r *applicationRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.Application, error) {
	query := `SELECT` + applicationColumns + `
		FROM applications
		WHERE student_id = $1
		ORDER BY submitted_at DESC`

	return r.list(ctx, query, studentID)
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.db.Exec(ctx,
		`UPDATE applications SET status = $2, updated_at = now() WHERE id = $1`,
		id, status)
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *applicationRepository) list(ctx context.Context, query string, arg any) ([]*models.Application, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	var out []*models.Application
	for rows.Next() {
		var a models.Application
		err := rows.Scan(
			&a.ID, &a.StudentID, &a.ScholarshipID, &a.StudentName, &a.Course,
			&a.YearLevel, &a.GPA, &a.IncomeRange, &a.Skills, &a.Essay,
			&a.Status, &a.SubmittedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return out, nil
}
