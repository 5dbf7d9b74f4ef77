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

// RankResultRepository persists ranking snapshots. A ranking run overwrites
// any prior rank data for the same scholarship.
type RankResultRepository interface {
	ReplaceForScholarship(ctx context.Context, scholarshipID uuid.UUID, results []models.RankResult, generatedAt time.Time) error
	GetByScholarship(ctx context.Context, scholarshipID uuid.UUID) (*models.RankSnapshot, error)
}

type rankResultRepository struct {
	db *database.DB
}

// NewRankResultRepository creates a new RankResultRepository.
func NewRankResultRepository(db *database.DB) RankResultRepository {
	return &rankResultRepository{db: db}
}

var _ RankResultRepository = (*rankResultRepository)(nil)

func (r *rankResultRepository) ReplaceForScholarship(ctx context.Context, scholarshipID uuid.UUID, results []models.RankResult, generatedAt time.Time) error {
	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encode rank results: %w", err)
	}

	query := `
		INSERT INTO rank_snapshots (scholarship_id, results, generated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (scholarship_id)
		DO UPDATE SET results = EXCLUDED.results, generated_at = EXCLUDED.generated_at`

	if _, err := r.db.Exec(ctx, query, scholarshipID, payload, generatedAt); err != nil {
		return fmt.Errorf("replace rank snapshot: %w", err)
	}
	return nil
}

func (r *rankResultRepository) GetByScholarship(ctx context.Context, scholarshipID uuid.UUID) (*models.RankSnapshot, error) {
	query := `SELECT results, generated_at FROM rank_snapshots WHERE scholarship_id = $1`

	var payload []byte
	snapshot := models.RankSnapshot{ScholarshipID: scholarshipID}
	err := r.db.QueryRow(ctx, query, scholarshipID).Scan(&payload, &snapshot.GeneratedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("query rank snapshot: %w", err)
	}

	if err := json.Unmarshal(payload, &snapshot.Results); err != nil {
		return nil, fmt.Errorf("decode rank results: %w", err)
	}
	return &snapshot, nil
}
