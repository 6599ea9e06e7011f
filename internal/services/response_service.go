package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/SAP-F-2025/quiz-engine/internal/repositories"
	"github.com/SAP-F-2025/quiz-engine/internal/scoring"
	"github.com/SAP-F-2025/quiz-engine/internal/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ResponseService stores and scores answers. Every stored response carries
// the score of its payload against the current answer key.
type ResponseService interface {
	// Submit scores payload and upserts the (session, question) response.
	// A question with an unknown type is stored with a zero score and the
	// *scoring.UnknownQuestionTypeError is returned alongside the response.
	Submit(ctx context.Context, tx *gorm.DB, session *models.Session, question *models.Question, payload json.RawMessage) (*models.Response, scoring.Result, error)

	// Recompute re-scores one stored response against the current key.
	Recompute(ctx context.Context, responseID uint) (*models.Response, error)

	// RecomputeQuestion re-scores every response to a question and refreshes
	// the totals of finished sessions that contain one.
	RecomputeQuestion(ctx context.Context, questionID uint) (*RescoreSummary, error)

	// Evaluate scores payload without storing anything.
	Evaluate(ctx context.Context, questionID uint, payload json.RawMessage) (*EvaluationResult, error)
}

type RescoreSummary struct {
	QuestionID        uint `json:"question_id"`
	ResponsesRescored int  `json:"responses_rescored"`
	ScoresChanged     int  `json:"scores_changed"`
	SessionsUpdated   int  `json:"sessions_updated"`
}

type EvaluationResult struct {
	scoring.Result
	KeyIssues validator.ValidationErrors `json:"key_issues,omitempty"`
}

type responseService struct {
	repo      repositories.Repository
	store     *quizStore
	engine    *scoring.Engine
	events    QuizEventService
	validator *validator.Validator
	logger    *slog.Logger
	now       func() time.Time
}

func newResponseService(repo repositories.Repository, store *quizStore, engine *scoring.Engine, eventService QuizEventService, v *validator.Validator, logger *slog.Logger, now func() time.Time) *responseService {
	return &responseService{
		repo:      repo,
		store:     store,
		engine:    engine,
		events:    eventService,
		validator: v,
		logger:    logger,
		now:       now,
	}
}

// ===== SUBMISSION =====

func (s *responseService) Submit(ctx context.Context, tx *gorm.DB, session *models.Session, question *models.Question, payload json.RawMessage) (*models.Response, scoring.Result, error) {
	result, evalErr := s.engine.Evaluate(question, payload)

	now := s.now()
	response := &models.Response{
		SessionID:   session.ID,
		QuestionID:  question.ID,
		RawPayload:  datatypes.JSON(payload),
		SubmittedAt: now,
	}
	applyResult(response, result, now)

	if err := s.repo.Response().Upsert(ctx, tx, response); err != nil {
		return nil, result, fmt.Errorf("failed to save response: %w", err)
	}

	s.logger.Info("Response scored",
		"session_id", session.ID,
		"question_id", question.ID,
		"score", response.Score,
		"max_score", response.MaxScore,
		"outcome", result.Outcome)

	return response, result, evalErr
}

// ===== RE-EVALUATION =====

func (s *responseService) Recompute(ctx context.Context, responseID uint) (*models.Response, error) {
	response, err := s.repo.Response().GetByID(ctx, nil, responseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResponseNotFound
		}
		return nil, fmt.Errorf("failed to get response: %w", err)
	}

	question, err := s.getQuestion(ctx, response.QuestionID)
	if err != nil {
		return nil, err
	}

	result, evalErr := s.engine.Evaluate(question, response.RawPayload)
	applyResult(response, result, s.now())

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Response().UpdateEvaluation(ctx, tx, response); err != nil {
			return fmt.Errorf("failed to update response: %w", err)
		}
		session, err := s.repo.Session().GetByID(ctx, tx, response.SessionID)
		if err != nil {
			return fmt.Errorf("failed to get session: %w", err)
		}
		if !session.State.IsTerminal() {
			return nil
		}
		quiz, err := s.loadQuizUncached(ctx, tx, question.QuizID)
		if err != nil {
			return err
		}
		if err := s.store.reaggregate(ctx, tx, session, quiz); err != nil {
			return err
		}
		s.store.invalidateResults(ctx, session.Token)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, evalErr
}

func (s *responseService) RecomputeQuestion(ctx context.Context, questionID uint) (*RescoreSummary, error) {
	s.logger.Info("Re-scoring question", "question_id", questionID)

	question, err := s.getQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if issues := s.validator.Question().ValidateKey(question); len(issues) > 0 {
		return nil, fmt.Errorf("answer key of question %d is invalid: %w", questionID, issues)
	}
	key, err := scoring.KeyFor(question)
	if err != nil {
		return nil, err
	}

	// The key changed, so cached copies of the quiz are stale.
	s.store.invalidateQuiz(ctx, question.QuizID)

	summary := &RescoreSummary{QuestionID: questionID}
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		responses, err := s.repo.Response().GetByQuestion(ctx, tx, questionID)
		if err != nil {
			return fmt.Errorf("failed to get responses: %w", err)
		}

		now := s.now()
		touched := make([]uint, 0, len(responses))
		for i := range responses {
			response := &responses[i]
			before, wasCorrect := response.Score, response.IsCorrect

			applyResult(response, s.engine.Score(key, response.RawPayload), now)
			if err := s.repo.Response().UpdateEvaluation(ctx, tx, response); err != nil {
				return fmt.Errorf("failed to update response %d: %w", response.ID, err)
			}

			summary.ResponsesRescored++
			if response.Score != before || response.IsCorrect != wasCorrect {
				summary.ScoresChanged++
			}
			touched = append(touched, response.SessionID)
		}

		sessions, err := s.repo.Session().GetByIDs(ctx, tx, touched)
		if err != nil {
			return fmt.Errorf("failed to get sessions: %w", err)
		}
		var quiz *models.Quiz
		for _, session := range sessions {
			if !session.State.IsTerminal() {
				continue
			}
			if quiz == nil {
				if quiz, err = s.loadQuizUncached(ctx, tx, question.QuizID); err != nil {
					return err
				}
			}
			if err := s.store.reaggregate(ctx, tx, session, quiz); err != nil {
				return err
			}
			s.store.invalidateResults(ctx, session.Token)
			summary.SessionsUpdated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Question re-scored",
		"question_id", questionID,
		"responses", summary.ResponsesRescored,
		"changed", summary.ScoresChanged,
		"sessions_updated", summary.SessionsUpdated)

	s.events.NotifyQuestionRescored(ctx, summary)
	return summary, nil
}

// ===== DRY RUN =====

func (s *responseService) Evaluate(ctx context.Context, questionID uint, payload json.RawMessage) (*EvaluationResult, error) {
	question, err := s.getQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Evaluate(question, payload)
	if err != nil {
		return nil, err
	}
	return &EvaluationResult{
		Result:    result,
		KeyIssues: s.validator.Question().ValidateKey(question),
	}, nil
}

// ===== HELPERS =====

func (s *responseService) getQuestion(ctx context.Context, questionID uint) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, nil, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}

// loadQuizUncached reads the quiz inside tx, bypassing the cache the caller
// has just invalidated.
func (s *responseService) loadQuizUncached(ctx context.Context, tx *gorm.DB, quizID uint) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetWithQuestions(ctx, tx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return quiz, nil
}

func applyResult(response *models.Response, result scoring.Result, evaluatedAt time.Time) {
	response.Score = result.Score
	response.MaxScore = result.MaxScore
	response.IsCorrect = result.IsCorrect
	response.Feedback = nil
	if result.Feedback != "" {
		feedback := result.Feedback
		response.Feedback = &feedback
	}
	response.EvaluatedAt = &evaluatedAt
}
