package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/SAP-F-2025/quiz-engine/internal/scoring"
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
}

func NewServiceLogger(logger *slog.Logger, component string) *ServiceLogger {
	return &ServiceLogger{logger: logger.With("component", component)}
}

// ===== OPERATION LOGGING =====

// LogOperation logs the outcome of one operation. The level follows the
// error class: caller mistakes are warnings, missing rows are info and
// everything else is an error.
func (l *ServiceLogger) LogOperation(ctx context.Context, operation, resource string, duration time.Duration, err error) {
	level := slog.LevelDebug
	status := "success"

	switch {
	case err == nil:
	case IsValidation(err):
		level, status = slog.LevelWarn, "validation_error"
	case IsUnauthorized(err):
		level, status = slog.LevelWarn, "unauthorized"
	case IsNotFound(err):
		level, status = slog.LevelInfo, "not_found"
	case IsConflict(err):
		level, status = slog.LevelInfo, "conflict"
	case IsUnprocessable(err):
		level, status = slog.LevelWarn, "unscorable"
	default:
		level, status = slog.LevelError, "error"
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("resource", resource),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		attrs = append(attrs, errorAttrs(err)...)
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

func errorAttrs(err error) []slog.Attr {
	var validationErrs ValidationErrors
	if errors.As(err, &validationErrs) {
		return []slog.Attr{slog.Int("validation_errors_count", len(validationErrs))}
	}
	var closed *SessionClosedError
	if errors.As(err, &closed) {
		return []slog.Attr{slog.String("session_state", string(closed.State))}
	}
	var unknown *scoring.UnknownQuestionTypeError
	if errors.As(err, &unknown) {
		return []slog.Attr{slog.String("question_type", string(unknown.Type))}
	}
	return nil
}

// ===== CONTEXTUAL LOGGER =====

type ContextualLogger struct {
	logger    *ServiceLogger
	operation string
	resource  string
	startTime time.Time
	ctx       context.Context
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation, resource string) *ContextualLogger {
	return &ContextualLogger{
		logger:    l,
		operation: operation,
		resource:  resource,
		startTime: time.Now(),
		ctx:       ctx,
	}
}

func (cl *ContextualLogger) LogResult(err error) {
	cl.logger.LogOperation(cl.ctx, cl.operation, cl.resource, time.Since(cl.startTime), err)
}

// ===== SESSION SERVICE DECORATOR =====

// loggedSessionService records the duration and outcome of every session
// operation.
type loggedSessionService struct {
	next SessionService
	log  *ServiceLogger
}

func withOperationLogging(next SessionService, log *ServiceLogger) SessionService {
	return &loggedSessionService{next: next, log: log}
}

func (s *loggedSessionService) Create(ctx context.Context, quizID uint, participant *Participant) (*models.Session, error) {
	op := s.log.WithOperation(ctx, "create_session", fmt.Sprintf("quiz:%d", quizID))
	session, err := s.next.Create(ctx, quizID, participant)
	op.LogResult(err)
	return session, err
}

func (s *loggedSessionService) Start(ctx context.Context, token string) (*SessionView, error) {
	op := s.log.WithOperation(ctx, "start_session", "session:"+token)
	view, err := s.next.Start(ctx, token)
	op.LogResult(err)
	return view, err
}

func (s *loggedSessionService) StartQuiz(ctx context.Context, slug string, participant *Participant) (*SessionView, error) {
	op := s.log.WithOperation(ctx, "start_quiz", "quiz:"+slug)
	view, err := s.next.StartQuiz(ctx, slug, participant)
	op.LogResult(err)
	return view, err
}

func (s *loggedSessionService) Get(ctx context.Context, token string) (*SessionView, error) {
	op := s.log.WithOperation(ctx, "get_session", "session:"+token)
	view, err := s.next.Get(ctx, token)
	op.LogResult(err)
	return view, err
}

func (s *loggedSessionService) SubmitResponse(ctx context.Context, token string, req *SubmitResponseRequest) (*SubmitResult, error) {
	op := s.log.WithOperation(ctx, "submit_response", "session:"+token)
	result, err := s.next.SubmitResponse(ctx, token, req)
	op.LogResult(err)
	return result, err
}

func (s *loggedSessionService) Complete(ctx context.Context, token string) (*SessionResult, error) {
	op := s.log.WithOperation(ctx, "complete_session", "session:"+token)
	result, err := s.next.Complete(ctx, token)
	op.LogResult(err)
	return result, err
}

func (s *loggedSessionService) Results(ctx context.Context, token string) (*SessionResult, error) {
	op := s.log.WithOperation(ctx, "get_results", "session:"+token)
	result, err := s.next.Results(ctx, token)
	op.LogResult(err)
	return result, err
}

func (s *loggedSessionService) Aggregate(ctx context.Context, token string) (*scoring.Summary, error) {
	op := s.log.WithOperation(ctx, "aggregate_session", "session:"+token)
	summary, err := s.next.Aggregate(ctx, token)
	op.LogResult(err)
	return summary, err
}

func (s *loggedSessionService) ExpireOverdue(ctx context.Context) (int, error) {
	op := s.log.WithOperation(ctx, "expire_overdue", "sessions")
	count, err := s.next.ExpireOverdue(ctx)
	op.LogResult(err)
	return count, err
}
