package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-engine/internal/cache"
	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/SAP-F-2025/quiz-engine/internal/repositories"
	"github.com/SAP-F-2025/quiz-engine/internal/scoring"
	"gorm.io/gorm"
)

// quizStore loads quizzes with their answer keys through the cache and
// applies aggregated totals to sessions. The session and response services
// share one instance.
type quizStore struct {
	repo   repositories.Repository
	cache  cache.CacheService
	ttl    time.Duration
	logger *slog.Logger
}

func newQuizStore(repo repositories.Repository, cacheService cache.CacheService, ttl time.Duration, logger *slog.Logger) *quizStore {
	if cacheService == nil {
		cacheService = cache.NewNoopCache()
	}
	return &quizStore{repo: repo, cache: cacheService, ttl: ttl, logger: logger}
}

// load returns the quiz with every question and answer key.
func (s *quizStore) load(ctx context.Context, quizID uint) (*models.Quiz, error) {
	key := cache.QuizKey(quizID)

	var cached models.Quiz
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Quiz cache read failed", "quiz_id", quizID, "error", err)
	}

	quiz, err := s.repo.Quiz().GetWithQuestions(ctx, nil, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if err := s.cache.Set(ctx, key, quiz, s.ttl); err != nil {
		s.logger.Warn("Quiz cache write failed", "quiz_id", quizID, "error", err)
	}
	return quiz, nil
}

func (s *quizStore) invalidateQuiz(ctx context.Context, quizID uint) {
	if err := s.cache.Delete(ctx, cache.QuizKey(quizID)); err != nil {
		s.logger.Warn("Failed to invalidate quiz cache", "quiz_id", quizID, "error", err)
	}
}

func (s *quizStore) invalidateResults(ctx context.Context, token string) {
	if err := s.cache.Delete(ctx, cache.SessionResultKey(token)); err != nil {
		s.logger.Warn("Failed to invalidate session results cache", "token", token, "error", err)
	}
}

// applySummary copies aggregated totals onto the session.
func applySummary(session *models.Session, summary scoring.Summary) {
	session.TotalScore = summary.TotalScore
	session.MaxScore = summary.MaxScore
	session.Percentage = summary.Percentage
	session.Passed = summary.Passed
}

// reaggregate recomputes and stores the frozen totals of a terminal session.
func (s *quizStore) reaggregate(ctx context.Context, tx *gorm.DB, session *models.Session, quiz *models.Quiz) error {
	responses, err := s.repo.Response().GetBySession(ctx, tx, session.ID)
	if err != nil {
		return fmt.Errorf("failed to get responses: %w", err)
	}

	applySummary(session, scoring.Aggregate(quiz.Questions, responses, quiz.PassingScore))
	if err := s.repo.Session().Update(ctx, tx, session); err != nil {
		return fmt.Errorf("failed to update session totals: %w", err)
	}
	return nil
}
