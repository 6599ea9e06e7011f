package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-engine/internal/events"
	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/SAP-F-2025/quiz-engine/internal/scoring"
)

// QuizEventService publishes session and scoring events. Publishing is best
// effort: failures are logged and never fail the operation that caused them.
type QuizEventService interface {
	NotifySessionStarted(ctx context.Context, session *models.Session, quiz *models.Quiz)
	NotifySessionFinished(ctx context.Context, session *models.Session)
	NotifyResponseScored(ctx context.Context, response *models.Response, result scoring.Result)
	NotifyQuestionRescored(ctx context.Context, summary *RescoreSummary)
}

type quizEventService struct {
	eventPublisher events.EventPublisher
	logger         *slog.Logger
}

func NewQuizEventService(eventPublisher events.EventPublisher, logger *slog.Logger) QuizEventService {
	return &quizEventService{
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// ===== SESSION EVENTS =====

func (s *quizEventService) NotifySessionStarted(ctx context.Context, session *models.Session, quiz *models.Quiz) {
	payload := events.SessionStartedEvent{
		SessionID:   session.ID,
		Token:       session.Token,
		QuizID:      session.QuizID,
		QuizTitle:   quiz.Title,
		Participant: session.Participant(),
	}
	if session.StartTime != nil {
		payload.StartedAt = *session.StartTime
	}
	if session.TimeLimitMinutes > 0 {
		limit := session.TimeLimitMinutes
		payload.TimeLimit = &limit
	}
	s.publish(ctx, events.NewSessionStartedEvent(payload))
}

func (s *quizEventService) NotifySessionFinished(ctx context.Context, session *models.Session) {
	payload := events.SessionFinishedEvent{
		SessionID:        session.ID,
		QuizID:           session.QuizID,
		Participant:      session.Participant(),
		TotalScore:       session.TotalScore,
		MaxScore:         session.MaxScore,
		Percentage:       session.Percentage,
		Passed:           session.Passed,
		TimeSpentSeconds: session.TimeSpentSeconds,
	}
	if session.EndTime != nil {
		payload.FinishedAt = *session.EndTime
	}

	if session.State == models.SessionExpired {
		s.publish(ctx, events.NewSessionExpiredEvent(payload))
		return
	}
	s.publish(ctx, events.NewSessionCompletedEvent(payload))
}

// ===== SCORING EVENTS =====

func (s *quizEventService) NotifyResponseScored(ctx context.Context, response *models.Response, result scoring.Result) {
	s.publish(ctx, events.NewResponseScoredEvent(events.ResponseScoredEvent{
		SessionID:  response.SessionID,
		QuestionID: response.QuestionID,
		ResponseID: response.ID,
		Score:      response.Score,
		MaxScore:   response.MaxScore,
		IsCorrect:  response.IsCorrect,
		Outcome:    result.Outcome,
	}))
}

func (s *quizEventService) NotifyQuestionRescored(ctx context.Context, summary *RescoreSummary) {
	s.publish(ctx, events.NewQuestionRescoredEvent(events.QuestionRescoredEvent{
		QuestionID:        summary.QuestionID,
		ResponsesRescored: summary.ResponsesRescored,
		SessionsUpdated:   summary.SessionsUpdated,
		RescoredAt:        time.Now(),
	}))
}

func (s *quizEventService) publish(ctx context.Context, event *events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish quiz event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
	}
}
