package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/scholarmatch/scholarmatch-engine/pkg/llm"
	"github.com/scholarmatch/scholarmatch-engine/pkg/models"
	"github.com/scholarmatch/scholarmatch-engine/pkg/prompts"
	"github.com/scholarmatch/scholarmatch-engine/pkg/repositories"
)

// RankingService orders a scholarship's applicants by fit. Ranking is never
// cached: sponsors review small applicant sets and expect a fresh pass.
// Like matching, it never returns an error; any model-path failure routes
// to the deterministic fallback.
type RankingService interface {
	// RankApplicantsForScholarship ranks the applications against the
	// scholarship's criteria. An empty application list returns an empty
	// slice without touching the model.
	RankApplicantsForScholarship(ctx context.Context, applications []*models.Application, scholarship *models.Scholarship) []models.RankResult
}

type rankingService struct {
	chat     llm.ChatClient // nil when the model is not configured
	fallback *FallbackEngine
	rankRepo repositories.RankResultRepository // nil skips persistence
	timeout  time.Duration
	logger   *zap.Logger
}

// NewRankingService creates a ranking service.
func NewRankingService(
	chat llm.ChatClient,
	fallback *FallbackEngine,
	rankRepo repositories.RankResultRepository,
	logger *zap.Logger,
) RankingService {
	return &rankingService{
		chat:     chat,
		fallback: fallback,
		rankRepo: rankRepo,
		timeout:  modelCallTimeout,
		logger:   logger.Named("ranking"),
	}
}

var _ RankingService = (*rankingService)(nil)

func (s *rankingService) RankApplicantsForScholarship(ctx context.Context, applications []*models.Application, scholarship *models.Scholarship) []models.RankResult {
	if len(applications) == 0 {
		return []models.RankResult{}
	}

	results, err := s.rankWithModel(ctx, applications, scholarship)
	if err != nil {
		s.logger.Warn("model ranking failed, using fallback",
			zap.String("error_kind", string(llm.KindOf(err))),
			zap.Error(err))
		results = s.fallback.RankApplicants(applications, scholarship)
	} else {
		for i := range results {
			results[i].Source = models.SourceAI
		}
	}

	if s.rankRepo != nil {
		if err := s.rankRepo.ReplaceForScholarship(ctx, scholarship.ID, results, time.Now()); err != nil {
			s.logger.Error("failed to persist rank snapshot",
				zap.String("scholarship_id", scholarship.ID.String()),
				zap.Error(err))
		}
	}

	return results
}

func (s *rankingService) rankWithModel(ctx context.Context, applications []*models.Application, scholarship *models.Scholarship) ([]models.RankResult, error) {
	if s.chat == nil {
		return nil, llm.NewError(llm.KindConfig, "model credential not configured", nil)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := prompts.BuildRankingPrompt(applications, scholarship)
	content, err := s.chat.Complete(callCtx, prompts.RankingSystemMessage, prompt, modelTemperature)
	if err != nil {
		return nil, err
	}

	return parseRankResponse(content, applications)
}
