package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SAP-F-2025/quiz-engine/internal/cache"
	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/SAP-F-2025/quiz-engine/internal/repositories"
	"github.com/SAP-F-2025/quiz-engine/internal/scoring"
	"github.com/SAP-F-2025/quiz-engine/internal/validator"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionService drives the draft -> in_progress -> completed|expired
// lifecycle of quiz sessions. Every read and write checks the time limit
// first, so an overdue session is expired before anything else happens.
type SessionService interface {
	Create(ctx context.Context, quizID uint, participant *Participant) (*models.Session, error)
	Start(ctx context.Context, token string) (*SessionView, error)
	// StartQuiz creates and starts a session for the quiz behind slug.
	StartQuiz(ctx context.Context, slug string, participant *Participant) (*SessionView, error)
	Get(ctx context.Context, token string) (*SessionView, error)

	// SubmitResponse scores and stores one answer. Closed sessions return a
	// *SessionClosedError and nothing is written.
	SubmitResponse(ctx context.Context, token string, req *SubmitResponseRequest) (*SubmitResult, error)
	Complete(ctx context.Context, token string) (*SessionResult, error)

	Results(ctx context.Context, token string) (*SessionResult, error)
	Aggregate(ctx context.Context, token string) (*scoring.Summary, error)

	// ExpireOverdue closes every in-progress session past its time limit and
	// returns how many were expired.
	ExpireOverdue(ctx context.Context) (int, error)
}

// SessionRecorder observes sessions reaching a terminal state.
type SessionRecorder interface {
	ObserveSessionClosed(state models.SessionState, passed bool)
}

// ===== REQUESTS AND VIEWS =====

type Participant struct {
	UserID *string `json:"user_id" validate:"omitempty,max=64"`
	Name   *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email  *string `json:"email" validate:"omitempty,email,max=255"`
}

type SubmitResponseRequest struct {
	QuestionID uint            `json:"question_id" validate:"required"`
	Answer     json.RawMessage `json:"answer"`
}

type SubmitResult struct {
	Response      *models.Response    `json:"response"`
	Result        scoring.Result      `json:"result"`
	SessionState  models.SessionState `json:"session_state"`
	AutoCompleted bool                `json:"auto_completed"`
}

type SessionView struct {
	Session          *models.Session `json:"session"`
	QuestionIDs      []uint          `json:"question_ids"`
	AnsweredIDs      []uint          `json:"answered_ids"`
	RemainingSeconds *int            `json:"remaining_seconds,omitempty"`
}

type SessionResult struct {
	Session   *models.Session   `json:"session"`
	Summary   scoring.Summary   `json:"summary"`
	Responses []models.Response `json:"responses"`
}

type sessionService struct {
	repo      repositories.Repository
	store     *quizStore
	responses *responseService
	engine    *scoring.Engine
	events    QuizEventService
	validator *validator.Validator
	recorder  SessionRecorder
	resultTTL time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// ===== LIFECYCLE =====

func (s *sessionService) Create(ctx context.Context, quizID uint, participant *Participant) (*models.Session, error) {
	s.logger.Info("Creating quiz session", "quiz_id", quizID)

	quiz, err := s.store.load(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsPublished {
		return nil, ErrQuizNotPublished
	}

	if participant == nil {
		participant = &Participant{}
	}
	if err := s.validator.Validate(participant); err != nil {
		return nil, err
	}
	if quiz.RequireLogin && (participant.UserID == nil || *participant.UserID == "") {
		return nil, ErrLoginRequired
	}

	session := &models.Session{
		QuizID:           quiz.ID,
		Token:            uuid.NewString(),
		UserID:           participant.UserID,
		ParticipantName:  participant.Name,
		ParticipantEmail: participant.Email,
		State:            models.SessionDraft,
	}
	if err := s.repo.Session().Create(ctx, nil, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("Quiz session created",
		"session_id", session.ID,
		"quiz_id", quiz.ID,
		"participant", session.Participant())
	return session, nil
}

func (s *sessionService) Start(ctx context.Context, token string) (*SessionView, error) {
	session, quiz, err := s.loadSession(ctx, token)
	if err != nil {
		return nil, err
	}

	switch {
	case session.State.IsTerminal():
		return nil, newSessionClosedError(session)
	case session.State == models.SessionInProgress:
		s.logger.Info("Resuming quiz session", "session_id", session.ID)
		return s.buildView(ctx, session, quiz)
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		locked, err := s.repo.Session().GetForUpdate(ctx, tx, session.ID)
		if err != nil {
			return fmt.Errorf("failed to lock session: %w", err)
		}
		if locked.State != models.SessionDraft {
			return &InvalidTransitionError{SessionID: locked.ID, From: locked.State, To: models.SessionInProgress}
		}

		now := s.now()
		locked.State = models.SessionInProgress
		locked.StartTime = &now
		locked.TimeLimitMinutes = quiz.TimeLimitMinutes
		if err := s.repo.Session().Update(ctx, tx, locked); err != nil {
			return fmt.Errorf("failed to start session: %w", err)
		}
		session = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quiz session started",
		"session_id", session.ID,
		"quiz_id", quiz.ID,
		"time_limit_minutes", session.TimeLimitMinutes)
	s.events.NotifySessionStarted(ctx, session, quiz)

	return s.buildView(ctx, session, quiz)
}

func (s *sessionService) StartQuiz(ctx context.Context, slug string, participant *Participant) (*SessionView, error) {
	quiz, err := s.repo.Quiz().GetBySlug(ctx, nil, slug)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	session, err := s.Create(ctx, quiz.ID, participant)
	if err != nil {
		return nil, err
	}
	return s.Start(ctx, session.Token)
}

func (s *sessionService) Get(ctx context.Context, token string) (*SessionView, error) {
	session, quiz, err := s.loadSession(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, session, quiz)
}

// ===== SUBMISSION =====

func (s *sessionService) SubmitResponse(ctx context.Context, token string, req *SubmitResponseRequest) (*SubmitResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	session, quiz, err := s.loadSession(ctx, token)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Submitting response",
		"session_id", session.ID,
		"question_id", req.QuestionID)

	question := quiz.Question(req.QuestionID)
	if question == nil {
		return nil, ErrQuestionNotInQuiz
	}

	var (
		out     = &SubmitResult{}
		evalErr error
		closed  bool
	)
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		locked, err := s.repo.Session().GetForUpdate(ctx, tx, session.ID)
		if err != nil {
			return fmt.Errorf("failed to lock session: %w", err)
		}
		if err := s.checkAcceptsResponses(locked); err != nil {
			return err
		}

		response, result, err := s.responses.Submit(ctx, tx, locked, question, req.Answer)
		if err != nil {
			if !scoring.IsUnknownQuestionType(err) {
				return err
			}
			evalErr = err
		}
		out.Response, out.Result = response, result

		if quiz.AutoComplete {
			answered, err := s.repo.Response().CountBySession(ctx, tx, locked.ID)
			if err != nil {
				return fmt.Errorf("failed to count responses: %w", err)
			}
			if int(answered) >= len(quiz.Questions) {
				if err := s.close(ctx, tx, locked, quiz, models.SessionCompleted); err != nil {
					return err
				}
				out.AutoCompleted = true
				closed = true
			}
		}

		out.SessionState = locked.State
		session = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.NotifyResponseScored(ctx, out.Response, out.Result)
	if closed {
		s.logger.Info("Every question answered, session completed automatically", "session_id", session.ID)
		s.afterClose(ctx, session, quiz)
	}
	return out, evalErr
}

func (s *sessionService) checkAcceptsResponses(session *models.Session) error {
	switch {
	case session.State == models.SessionDraft:
		return ErrSessionNotStarted
	case session.State.IsTerminal():
		return newSessionClosedError(session)
	case session.IsOverdue(s.now()):
		// Raced with expiry; the next read closes it.
		return &SessionClosedError{SessionID: session.ID, Token: session.Token, State: models.SessionExpired}
	}
	return nil
}

// ===== COMPLETION =====

func (s *sessionService) Complete(ctx context.Context, token string) (*SessionResult, error) {
	session, quiz, err := s.loadSession(ctx, token)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Completing quiz session", "session_id", session.ID)

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		locked, err := s.repo.Session().GetForUpdate(ctx, tx, session.ID)
		if err != nil {
			return fmt.Errorf("failed to lock session: %w", err)
		}
		switch {
		case locked.State == models.SessionDraft:
			return ErrSessionNotStarted
		case locked.State.IsTerminal():
			return newSessionClosedError(locked)
		}

		state := models.SessionCompleted
		if locked.IsOverdue(s.now()) {
			state = models.SessionExpired
		}
		if err := s.close(ctx, tx, locked, quiz, state); err != nil {
			return err
		}
		session = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterClose(ctx, session, quiz)
	return s.buildResult(ctx, session, quiz)
}

// expire closes an overdue session. It returns the session as stored after
// the lock was taken, which may already have been closed by someone else.
func (s *sessionService) expire(ctx context.Context, session *models.Session, quiz *models.Quiz) (*models.Session, error) {
	expired := false
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		locked, err := s.repo.Session().GetForUpdate(ctx, tx, session.ID)
		if err != nil {
			return fmt.Errorf("failed to lock session: %w", err)
		}
		session = locked
		if !locked.IsOverdue(s.now()) {
			return nil
		}
		expired = true
		return s.close(ctx, tx, locked, quiz, models.SessionExpired)
	})
	if err != nil {
		return nil, err
	}

	if expired {
		s.logger.Info("Quiz session expired",
			"session_id", session.ID,
			"time_limit_minutes", session.TimeLimitMinutes)
		s.afterClose(ctx, session, quiz)
	}
	return session, nil
}

func (s *sessionService) ExpireOverdue(ctx context.Context) (int, error) {
	overdue, err := s.repo.Session().GetOverdue(ctx, nil, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to get overdue sessions: %w", err)
	}

	count := 0
	for _, session := range overdue {
		quiz, err := s.store.load(ctx, session.QuizID)
		if err != nil {
			s.logger.Error("Failed to load quiz for expiry", "session_id", session.ID, "error", err)
			continue
		}
		expired, err := s.expire(ctx, session, quiz)
		if err != nil {
			s.logger.Error("Failed to expire session", "session_id", session.ID, "error", err)
			continue
		}
		if expired.State == models.SessionExpired {
			count++
		}
	}
	return count, nil
}

// close scores any unevaluated responses, freezes the totals and moves the
// session to state. The caller holds the row lock.
func (s *sessionService) close(ctx context.Context, tx *gorm.DB, session *models.Session, quiz *models.Quiz, state models.SessionState) error {
	responses, err := s.repo.Response().GetBySession(ctx, tx, session.ID)
	if err != nil {
		return fmt.Errorf("failed to get responses: %w", err)
	}

	now := s.now()
	for i := range responses {
		response := &responses[i]
		if response.IsEvaluated() {
			continue
		}
		question := quiz.Question(response.QuestionID)
		if question == nil {
			continue
		}
		result, _ := s.engine.Evaluate(question, response.RawPayload)
		applyResult(response, result, now)
		if err := s.repo.Response().UpdateEvaluation(ctx, tx, response); err != nil {
			return fmt.Errorf("failed to update response %d: %w", response.ID, err)
		}
	}

	applySummary(session, scoring.Aggregate(quiz.Questions, responses, quiz.PassingScore))

	end := now
	if state == models.SessionExpired {
		if deadline := session.Deadline(); deadline != nil && deadline.Before(end) {
			end = *deadline
		}
	}
	session.State = state
	session.EndTime = &end
	if session.StartTime != nil {
		session.TimeSpentSeconds = int(end.Sub(*session.StartTime).Seconds())
	}

	if err := s.repo.Session().Update(ctx, tx, session); err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	return nil
}

// afterClose runs once the closing transaction has committed.
func (s *sessionService) afterClose(ctx context.Context, session *models.Session, quiz *models.Quiz) {
	s.logger.Info("Quiz session closed",
		"session_id", session.ID,
		"state", session.State,
		"total_score", session.TotalScore,
		"max_score", session.MaxScore,
		"percentage", session.Percentage,
		"passed", session.Passed)

	s.store.invalidateResults(ctx, session.Token)
	s.events.NotifySessionFinished(ctx, session)
	if s.recorder != nil {
		s.recorder.ObserveSessionClosed(session.State, session.Passed)
	}
}

// ===== RESULTS =====

func (s *sessionService) Results(ctx context.Context, token string) (*SessionResult, error) {
	key := cache.SessionResultKey(token)

	var cached SessionResult
	err := s.store.cache.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Results cache read failed", "token", token, "error", err)
	}

	session, quiz, err := s.loadSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if !session.State.IsTerminal() {
		return nil, ErrResultsNotAvailable
	}

	result, err := s.buildResult(ctx, session, quiz)
	if err != nil {
		return nil, err
	}
	if err := s.store.cache.Set(ctx, key, result, s.resultTTL); err != nil {
		s.logger.Warn("Results cache write failed", "token", token, "error", err)
	}
	return result, nil
}

func (s *sessionService) Aggregate(ctx context.Context, token string) (*scoring.Summary, error) {
	session, quiz, err := s.loadSession(ctx, token)
	if err != nil {
		return nil, err
	}
	responses, err := s.repo.Response().GetBySession(ctx, nil, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get responses: %w", err)
	}

	summary := scoring.Aggregate(quiz.Questions, responses, quiz.PassingScore)
	return &summary, nil
}

// ===== HELPERS =====

// loadSession resolves token and its quiz, expiring the session first when
// it is past its time limit.
func (s *sessionService) loadSession(ctx context.Context, token string) (*models.Session, *models.Quiz, error) {
	session, err := s.repo.Session().GetByToken(ctx, nil, token)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, fmt.Errorf("failed to get session: %w", err)
	}

	quiz, err := s.store.load(ctx, session.QuizID)
	if err != nil {
		return nil, nil, err
	}

	if session.IsOverdue(s.now()) {
		if session, err = s.expire(ctx, session, quiz); err != nil {
			return nil, nil, err
		}
	}
	return session, quiz, nil
}

func (s *sessionService) buildView(ctx context.Context, session *models.Session, quiz *models.Quiz) (*SessionView, error) {
	responses, err := s.repo.Response().GetBySession(ctx, nil, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get responses: %w", err)
	}

	view := &SessionView{
		Session:     session,
		QuestionIDs: make([]uint, 0, len(quiz.Questions)),
		AnsweredIDs: make([]uint, 0, len(responses)),
	}
	for _, question := range quiz.OrderedQuestions(session.Token) {
		view.QuestionIDs = append(view.QuestionIDs, question.ID)
	}
	for _, response := range responses {
		view.AnsweredIDs = append(view.AnsweredIDs, response.QuestionID)
	}
	sort.Slice(view.AnsweredIDs, func(i, j int) bool { return view.AnsweredIDs[i] < view.AnsweredIDs[j] })

	if deadline := session.Deadline(); deadline != nil && session.State == models.SessionInProgress {
		remaining := int(deadline.Sub(s.now()).Seconds())
		if remaining < 0 {
			remaining = 0
		}
		view.RemainingSeconds = &remaining
	}
	return view, nil
}

func (s *sessionService) buildResult(ctx context.Context, session *models.Session, quiz *models.Quiz) (*SessionResult, error) {
	responses, err := s.repo.Response().GetBySession(ctx, nil, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get responses: %w", err)
	}

	summary := scoring.Aggregate(quiz.Questions, responses, quiz.PassingScore)
	// Frozen totals are authoritative.
	summary.TotalScore = session.TotalScore
	summary.MaxScore = session.MaxScore
	summary.Percentage = session.Percentage
	summary.Passed = session.Passed

	return &SessionResult{Session: session, Summary: summary, Responses: responses}, nil
}
