package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/scholarmatch/scholarmatch-engine/pkg/apperrors"
	"github.com/scholarmatch/scholarmatch-engine/pkg/database"
	"github.com/scholarmatch/scholarmatch-engine/pkg/models"
)

// MatchResultRepository persists matching snapshots. A snapshot is tied to
// its generation timestamp and fully replaced on regeneration, never merged.
type MatchResultRepository interface {
	ReplaceForStudent(ctx context.Context, studentID uuid.UUID, results []models.MatchResult, generatedAt time.Time) error
	GetByStudent(ctx context.Context, studentID uuid.UUID) (*models.MatchSnapshot, error)
}

type matchResultRepository struct {
	db *database.DB
}

// NewMatchResultRepository creates a new MatchResultRepository.
func NewMatchResultRepository(db *database.DB) MatchResultRepository {
	return &matchResultRepository{db: db}
}

var _ MatchResultRepository = (*matchResultRepository)(nil)

func (r *matchResultRepository) ReplaceForStudent(ctx context.Context, studentID uuid.UUID, results []models.MatchResult, generatedAt time.Time) error {
	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encode match results: %w", err)
	}

	query := `
		INSERT INTO match_snapshots (student_id, results, generated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (student_id)
		DO UPDATE SET results = EXCLUDED.results, generated_at = EXCLUDED.generated_at`

	if _, err := r.db.Exec(ctx, query, studentID, payload, generatedAt); err != nil {
		return fmt.Errorf("replace match snapshot: %w", err)
	}
	return nil
}

func (r *matchResultRepository) GetByStudent(ctx context.Context, studentID uuid.UUID) (*models.MatchSnapshot, error) {
	query := `SELECT results, generated_at FROM match_snapshots WHERE student_id = $1`

	var payload []byte
	snapshot := models.MatchSnapshot{StudentID: studentID}
	err := r.db.QueryRow(ctx, query, studentID).Scan(&payload, &snapshot.GeneratedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("query match snapshot: %w", err)
	}

	if err := json.Unmarshal(payload, &snapshot.Results); err != nil {
		return nil, fmt.Errorf("decode match results: %w", err)
	}
	return &snapshot, nil
}
