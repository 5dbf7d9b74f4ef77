package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scholarmatch/scholarmatch-engine/pkg/llm"
	"github.com/scholarmatch/scholarmatch-engine/pkg/models"
	"github.com/scholarmatch/scholarmatch-engine/pkg/prompts"
	"github.com/scholarmatch/scholarmatch-engine/pkg/repositories"
)

const (
	modelCallTimeout = 45 * time.Second
	modelTemperature = 0.2
)

// MatchingService produces scholarship recommendations for a student.
// It never returns an error: any model-path failure routes to the
// deterministic fallback, and the caller always receives one result per
// supplied scholarship.
type MatchingService interface {
	// MatchStudentToScholarships runs the matching pipeline: cache lookup,
	// model call, parse-or-fallback, cache write, snapshot persistence.
	// Pass uuid.Nil as studentID to skip the cache and persistence.
	// Result order is not guaranteed; callers sort by score for display.
	MatchStudentToScholarships(ctx context.Context, profile *models.StudentProfile, scholarships []*models.Scholarship, studentID uuid.UUID) []models.MatchResult
}

type matchingService struct {
	chat      llm.ChatClient // nil when the model is not configured
	fallback  *FallbackEngine
	cache     MatchCache
	matchRepo repositories.MatchResultRepository // nil skips persistence
	timeout   time.Duration
	logger    *zap.Logger
}

// NewMatchingService creates a matching service. A nil chat client means
// the model is not configured and every run uses the fallback engine.
func NewMatchingService(
	chat llm.ChatClient,
	fallback *FallbackEngine,
	cache MatchCache,
	matchRepo repositories.MatchResultRepository,
	logger *zap.Logger,
) MatchingService {
	return &matchingService{
		chat:      chat,
		fallback:  fallback,
		cache:     cache,
		matchRepo: matchRepo,
		timeout:   modelCallTimeout,
		logger:    logger.Named("matching"),
	}
}

var _ MatchingService = (*matchingService)(nil)

func (s *matchingService) MatchStudentToScholarships(ctx context.Context, profile *models.StudentProfile, scholarships []*models.Scholarship, studentID uuid.UUID) []models.MatchResult {
	if len(scholarships) == 0 {
		return []models.MatchResult{}
	}

	useCache := studentID != uuid.Nil && s.cache != nil
	var scholarshipIDs []string
	if useCache {
		scholarshipIDs = make([]string, len(scholarships))
		for i, sch := range scholarships {
			scholarshipIDs[i] = sch.ID.String()
		}
		if results, ok := s.cache.Get(ctx, studentID.String(), scholarshipIDs); ok {
			s.logger.Debug("cache hit",
				zap.String("student_id", studentID.String()),
				zap.Int("scholarships", len(scholarships)))
			return results
		}
	}

	results, err := s.matchWithModel(ctx, profile, scholarships)
	if err != nil {
		s.logger.Warn("model matching failed, using fallback",
			zap.String("error_kind", string(llm.KindOf(err))),
			zap.Error(err))
		results = s.fallback.MatchScholarships(profile, scholarships)
	} else {
		for i := range results {
			results[i].Source = models.SourceAI
		}
	}

	// Fallback output is cached too, so repeated failures inside the TTL
	// window do not hammer the model endpoint.
	if useCache {
		s.cache.Set(ctx, studentID.String(), scholarshipIDs, results)
	}

	if studentID != uuid.Nil && s.matchRepo != nil {
		if err := s.matchRepo.ReplaceForStudent(ctx, studentID, results, time.Now()); err != nil {
			s.logger.Error("failed to persist match snapshot",
				zap.String("student_id", studentID.String()),
				zap.Error(err))
		}
	}

	return results
}

// matchWithModel runs the model path end to end: build prompt, call the
// model under a deadline, validate the reply against the contract.
func (s *matchingService) matchWithModel(ctx context.Context, profile *models.StudentProfile, scholarships []*models.Scholarship) ([]models.MatchResult, error) {
	if s.chat == nil {
		return nil, llm.NewError(llm.KindConfig, "model credential not configured", nil)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := prompts.BuildMatchingPrompt(profile, scholarships)
	content, err := s.chat.Complete(callCtx, prompts.MatchingSystemMessage, prompt, modelTemperature)
	if err != nil {
		return nil, err
	}

	return parseMatchResponse(content, scholarships)
}
