package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-engine/internal/events"
	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/SAP-F-2025/quiz-engine/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

type serviceFixture struct {
	repo      *MockRepository
	publisher *events.MockEventPublisher
	recorder  *stubSessionRecorder
	services  *Services
	now       time.Time
}

type stubSessionRecorder struct {
	closed []models.SessionState
}

func (r *stubSessionRecorder) ObserveSessionClosed(state models.SessionState, passed bool) {
	r.closed = append(r.closed, state)
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := &serviceFixture{
		repo:      newMockRepository(),
		publisher: events.NewMockEventPublisher(logger),
		recorder:  &stubSessionRecorder{},
		now:       testNow,
	}
	f.services = NewServices(Dependencies{
		Repo:     f.repo,
		Events:   NewQuizEventService(f.publisher, logger),
		Logger:   logger,
		Recorder: f.recorder,
		Clock:    func() time.Time { return f.now },
	})
	return f
}

func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

// testQuiz has a 4 point single choice question (option 11 correct) and a
// 6 point numeric question (10 +/- 0.5).
func testQuiz() *models.Quiz {
	return &models.Quiz{
		ID: 7, Title: "Basics", Slug: "ab12cd34", IsPublished: true,
		PassingScore: 50, TimeLimitMinutes: 30,
		Questions: []models.Question{
			{
				ID: 1, QuizID: 7, Sequence: 1, Type: models.SingleChoice, Text: "Capital of France?", Points: 4,
				Choices: []models.Choice{
					{ID: 11, QuestionID: 1, Label: "Paris", IsCorrect: true},
					{ID: 12, QuestionID: 1, Label: "Lyon"},
				},
			},
			{
				ID: 2, QuizID: 7, Sequence: 2, Type: models.Numeric, Text: "5 + 5?", Points: 6,
				NumericKey: &models.NumericKey{QuestionID: 2, Value: floatPtr(10), Tolerance: 0.5},
			},
		},
	}
}

func (f *serviceFixture) expectQuiz(quiz *models.Quiz) {
	f.repo.quizzes.On("GetWithQuestions", mock.Anything, mock.Anything, quiz.ID).Return(quiz, nil)
}

// expectSession makes the token lookup and the locked read return separate
// copies of session, as two database reads would.
func (f *serviceFixture) expectSession(session *models.Session) {
	byToken, locked := *session, *session
	f.repo.sessions.On("GetByToken", mock.Anything, mock.Anything, session.Token).Return(&byToken, nil)
	f.repo.sessions.On("GetForUpdate", mock.Anything, mock.Anything, session.ID).Return(&locked, nil)
}

func startedSession(state models.SessionState, startedAt time.Time) *models.Session {
	return &models.Session{
		ID: 100, QuizID: 7, Token: "0d7f7a1e-6c3b-4d36-9a55-3c1f7c1b2a90",
		State: state, StartTime: &startedAt, TimeLimitMinutes: 30,
	}
}

func evaluatedResponse(id, questionID uint, payload string, score, maxScore float64) models.Response {
	evaluatedAt := testNow.Add(-time.Minute)
	return models.Response{
		ID: id, SessionID: 100, QuestionID: questionID,
		RawPayload: datatypes.JSON(payload),
		Score:      score, MaxScore: maxScore, IsCorrect: score == maxScore,
		EvaluatedAt: &evaluatedAt,
	}
}

// ===== CREATE / START =====

func TestSessionService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("guest session on published quiz", func(t *testing.T) {
		f := newFixture(t)
		f.expectQuiz(testQuiz())
		f.repo.sessions.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*models.Session")).
			Run(func(args mock.Arguments) { args.Get(2).(*models.Session).ID = 100 }).
			Return(nil)

		session, err := f.services.Session.Create(ctx, 7, &Participant{Name: strPtr("Ada")})
		require.NoError(t, err)

		assert.Equal(t, uint(100), session.ID)
		assert.Equal(t, models.SessionDraft, session.State)
		assert.Len(t, session.Token, 36)
		assert.Equal(t, "Ada", session.Participant())
		assert.Nil(t, session.StartTime)
	})

	t.Run("unpublished quiz", func(t *testing.T) {
		f := newFixture(t)
		quiz := testQuiz()
		quiz.IsPublished = false
		f.expectQuiz(quiz)

		_, err := f.services.Session.Create(ctx, 7, nil)
		assert.ErrorIs(t, err, ErrQuizNotPublished)
		assert.True(t, IsNotFound(err))
		f.repo.sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("login required", func(t *testing.T) {
		f := newFixture(t)
		quiz := testQuiz()
		quiz.RequireLogin = true
		f.expectQuiz(quiz)

		_, err := f.services.Session.Create(ctx, 7, &Participant{Name: strPtr("guest")})
		assert.ErrorIs(t, err, ErrLoginRequired)
		assert.True(t, IsUnauthorized(err))
	})

	t.Run("invalid participant email", func(t *testing.T) {
		f := newFixture(t)
		f.expectQuiz(testQuiz())

		_, err := f.services.Session.Create(ctx, 7, &Participant{Email: strPtr("not-an-email")})
		assert.True(t, IsValidation(err))
	})

	t.Run("missing quiz", func(t *testing.T) {
		f := newFixture(t)
		f.repo.quizzes.On("GetWithQuestions", mock.Anything, mock.Anything, uint(9)).Return(nil, gorm.ErrRecordNotFound)

		_, err := f.services.Session.Create(ctx, 9, nil)
		assert.ErrorIs(t, err, ErrQuizNotFound)
	})
}

func TestSessionService_Start(t *testing.T) {
	ctx := context.Background()

	t.Run("draft moves to in progress", func(t *testing.T) {
		f := newFixture(t)
		f.expectQuiz(testQuiz())
		f.expectSession(&models.Session{ID: 100, QuizID: 7, Token: "tok", State: models.SessionDraft})
		f.repo.sessions.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.repo.responses.On("GetBySession", mock.Anything, mock.Anything, uint(100)).Return([]models.Response{}, nil)

		view, err := f.services.Session.Start(ctx, "tok")
		require.NoError(t, err)

		assert.Equal(t, models.SessionInProgress, view.Session.State)
		require.NotNil(t, view.Session.StartTime)
		assert.Equal(t, testNow, *view.Session.StartTime)
		assert.Equal(t, 30, view.Session.TimeLimitMinutes)
		assert.Equal(t, []uint{1, 2}, view.QuestionIDs)
		assert.Empty(t, view.AnsweredIDs)
		require.NotNil(t, view.RemainingSeconds)
		assert.Equal(t, 1800, *view.RemainingSeconds)

		assert.Len(t, f.publisher.EventsOfType(events.EventSessionStarted), 1)
	})

	t.Run("in progress session resumes", func(t *testing.T) {
		f := newFixture(t)
		f.expectQuiz(testQuiz())
		f.expectSession(startedSession(models.SessionInProgress, testNow.Add(-5*time.Minute)))
		f.repo.responses.On("GetBySession", mock.Anything, mock.Anything, uint(100)).
			Return([]models.Response{evaluatedResponse(1, 2, `{"value": 10}`, 6, 6)}, nil)

		view, err := f.services.Session.Start(ctx, "0d7f7a1e-6c3b-4d36-9a55-3c1f7c1b2a90")
		require.NoError(t, err)

		assert.Equal(t, []uint{2}, view.AnsweredIDs)
		assert.Equal(t, 1500, *view.RemainingSeconds)
		f.repo.sessions.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.GetPublishedEvents())
	})

	t.Run("completed session cannot restart", func(t *testing.T) {
		f := newFixture(t)
		f.expectQuiz(testQuiz())
		f.expectSession(startedSession(models.SessionCompleted, testNow.Add(-5*time.Minute)))

		_, err := f.services.Session.Start(ctx, "0d7f7a1e-6c3b-4d36-9a55-3c1f7c1b2a90")

		var closed *SessionClosedError
		require.ErrorAs(t, err, &closed)
		assert.Equal(t, models.SessionCompleted, closed.State)
		assert.True(t, IsConflict(err))
	})

	t.Run("unknown token", func(t *testing.T) {
		f := newFixture(t)
		f.repo.sessions.On("GetByToken", mock.Anything, mock.Anything, "nope").Return(nil, gorm.ErrRecordNotFound)

		_, err := f.services.Session.Start(ctx, "nope")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestSessionService_StartQuiz(t *testing.T) {
	f := newFixture(t)
	quiz := testQuiz()
	f.expectQuiz(quiz)
	f.repo.quizzes.On("GetBySlug", mock.Anything, mock.Anything, "ab12cd34").Return(quiz, nil)

	f.repo.sessions.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*models.Session")).
		Run(func(args mock.Arguments) { args.Get(2).(*models.Session).ID = 100 }).
		Return(nil)
	draft := &models.Session{ID: 100, QuizID: 7, Token: "tok", State: models.SessionDraft, UserID: strPtr("u-1")}
	locked := *draft
	f.repo.sessions.On("GetByToken", mock.Anything, mock.Anything, mock.AnythingOfType("string")).Return(draft, nil)
	f.repo.sessions.On("GetForUpdate", mock.Anything, mock.Anything, uint(100)).Return(&locked, nil)
	f.repo.sessions.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.repo.responses.On("GetBySession", mock.Anything, mock.Anything, uint(100)).Return([]models.Response{}, nil)

	view, err := f.services.Session.StartQuiz(context.Background(), "ab12cd34", &Participant{UserID: strPtr("u-1")})
	require.NoError(t, err)
	assert.Equal(t, models.SessionInProgress, view.Session.State)
	assert.Equal(t, "u-1", *view.Session.UserID)
}

// ===== SUBMISSION =====

func TestSessionService_SubmitResponse(t *testing.T) {
	ctx := context.Background()
	token := "0d7f7a1e-6c3b-4d36-9a55-3c1f7c1b2a90"

	t.Run("scores and stores the answer", func(t *testing.T) {
		f := newFixture(t)
		f.expectQuiz(testQuiz())
		f.expectSession(startedSession(models.SessionInProgress, testNow.Add(-time.Minute)))

		var stored *models.Response
		f.repo.responses.On("Upsert", mock.Anything, mock.Anything, mock.AnythingOfType("*models.Response")).
			Run(func(args mock.Arguments) { stored = args.Get(2).(*models.Response) }).
			Return(nil)

		out, err := f.services.Session.SubmitResponse(ctx, token, &SubmitResponseRequest{
			QuestionID: 1,
			Answer:     json.RawMessage(`{"selected_options": [11]}`),
		})
		require.NoError(t, err)

		assert.Equal(t, 4.0, out.Result.Score)
		assert.True(t, out.Result.IsCorrect)
		assert.Equal(t, models.SessionInProgress, out.SessionState)
		assert.False(t, out.AutoCompleted)

		require.NotNil(t, stored)
		assert.Equal(t, uint(100), stored.SessionID)
		assert.Equal(t, 4.0, stored.Score)
		assert.Equal(t, 4.0, stored.MaxScore)
		assert.NotNil(t, stored.EvaluatedAt)
		assert.JSONEq(t, `{"selected_options": [11]}`, string(stored.RawPayload))

		assert.Len(t, f.publisher.EventsOfType(events.EventResponseScored), 1)
	})

	t.Run("completed session rejects the answer", func(t *testing.T) {
		f := newFixture(t)
		f.expectQuiz(testQuiz())
		f.expectSession(startedSession(models.SessionCompleted, testNow.Add(-time.Minute)))

		out, err := f.services.Session.SubmitResponse(ctx, token, &SubmitResponseRequest{
			QuestionID: 1,
			Answer:     json.RawMessage(`{"selected_options": [12]}`),
		})

		assert.Nil(t, out)
		var closed *SessionClosedError
		require.ErrorAs(t, err, &closed)
		assert.Equal(t, uint(100), closed.SessionID)
		assert.True(t, IsSessionClosed(err))

		f.repo.responses.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
		f.repo.responses.AssertNotCalled(t, "UpdateEvaluation", mock.Anything, mock.Anything, mock.Anything)
		f.repo.sessions.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.GetPublishedEvents())
	})

	t.Run("draft session is not started", func(t *testing.T) {
		f := newFixture(t)
		f.expectQuiz(testQuiz())
		f.expectSession(&models.Session{ID: 100, QuizID: 7, Token: token, State: models.SessionDraft})

		_, err := f.services.Session.SubmitResponse(ctx, token, &SubmitResponseRequest{QuestionID: 1})
		assert.ErrorIs(t, err, ErrSessionNotStarted)
		f.repo.responses.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("question from another quiz", func(t *testing.T) {
		f := newFixture(t)
		f.expectQuiz(testQuiz())
		f.expectSession(startedSession(models.SessionInProgress, testNow.Add(-time.Minute)))

		_, err := f.services.Session.SubmitResponse(ctx, token, &SubmitResponseRequest{QuestionID: 99})
		assert.ErrorIs(t, err, ErrQuestionNotInQuiz)
		assert.True(t, IsBadRequest(err))
	})

	t.Run("missing question id", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.services.Session.SubmitResponse(ctx, token, &SubmitResponseRequest{})
		assert.True(t, IsValidation(err))
	})

	t.Run("unknown question type stores a zero score", func(t *testing.T) {
		f := newFixture(t)
		quiz := testQuiz()
		quiz.Questions = append(quiz.Questions, models.Question{ID: 3, QuizID: 7, Type: "hotspot", Points: 2})
		f.expectQuiz(quiz)
		f.expectSession(startedSession(models.SessionInProgress, testNow.Add(-time.Minute)))
		f.repo.responses.On("Upsert", mock.Anything, mock.Anything, mock.AnythingOfType("*models.Response")).Return(nil)

		out, err := f.services.Session.SubmitResponse(ctx, token, &SubmitResponseRequest{
			QuestionID: 3,
			Answer:     json.RawMessage(`{"x": 1}`),
		})

		assert.True(t, IsUnprocessable(err))
		require.NotNil(t, out)
		assert.Equal(t, 0.0, out.Response.Score)
		assert.Equal(t, scoring.OutcomeUnknownType, out.Result.Outcome)
		f.repo.responses.AssertCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("last answer completes the session automatically", func(t *testing.T) {
		f := newFixture(t)
		quiz := testQuiz()
		quiz.AutoComplete = true
		f.expectQuiz(quiz)
		f.expectSession(startedSession(models.SessionInProgress, testNow.Add(-10*time.Minute)))
		f.repo.responses.On("Upsert", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.repo.responses.On("CountBySession", mock.Anything, mock.Anything, uint(100)).Return(int64(2), nil)
		f.repo.responses.On("GetBySession", mock.Anything, mock.Anything, uint(100)).Return([]models.Response{
			evaluatedResponse(1, 1, `{"selected_options": [11]}`, 4, 4),
			evaluatedResponse(2, 2, `{"value": 10.4}`, 6, 6),
		}, nil)
		f.repo.sessions.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		out, err := f.services.Session.SubmitResponse(ctx, token, &SubmitResponseRequest{
			QuestionID: 2,
			Answer:     json.RawMessage(`{"value": 10.4}`),
		})
		require.NoError(t, err)

		assert.True(t, out.AutoCompleted)
		assert.Equal(t, models.SessionCompleted, out.SessionState)
		assert.Len(t, f.publisher.EventsOfType(events.EventSessionCompleted), 1)
		assert.Equal(t, []models.SessionState{models.SessionCompleted}, f.recorder.closed)
	})
}

// ===== COMPLETION AND EXPIRY =====

func TestSessionService_Complete(t *testing.T) {
	ctx := context.Background()
	token := "0d7f7a1e-6c3b-4d36-9a55-3c1f7c1b2a90"

	t.Run("scores pending responses and freezes totals", func(t *testing.T) {
		f := newFixture(t)
		f.expectQuiz(testQuiz())
		f.expectSession(startedSession(models.SessionInProgress, testNow.Add(-10*time.Minute)))

		pending := models.Response{ID: 2, SessionID: 100, QuestionID: 2, RawPayload: datatypes.JSON(`{"value": 10.4}`)}
		f.repo.responses.On("GetBySession", mock.Anything, mock.Anything, uint(100)).Return([]models.Response{
			evaluatedResponse(1, 1, `{"selected_options": [11]}`, 4, 4),
			pending,
		}, nil)
		f.repo.responses.On("UpdateEvaluation", mock.Anything, mock.Anything, mock.MatchedBy(func(r *models.Response) bool {
			return r.ID == 2 && r.Score == 6 && r.IsEvaluated()
		})).Return(nil).Once()
		f.repo.sessions.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		result, err := f.services.Session.Complete(ctx, token)
		require.NoError(t, err)

		session := result.Session
		assert.Equal(t, models.SessionCompleted, session.State)
		assert.Equal(t, 10.0, session.TotalScore)
		assert.Equal(t, 10.0, session.MaxScore)
		assert.Equal(t, 100.0, session.Percentage)
		assert.True(t, session.Passed)
		require.NotNil(t, session.EndTime)
		assert.Equal(t, testNow, *session.EndTime)
		assert.Equal(t, 600, session.TimeSpentSeconds)

		assert.Equal(t, 2, result.Summary.Answered)
		assert.Equal(t, 2, result.Summary.Correct)
		f.repo.responses.AssertExpectations(t)
		assert.Len(t, f.publisher.EventsOfType(events.EventSessionCompleted), 1)
	})

	t.Run("already completed", func(t *testing.T) {
		f := newFixture(t)
		f.expectQuiz(testQuiz())
		f.expectSession(startedSession(models.SessionCompleted, testNow.Add(-10*time.Minute)))

		_, err := f.services.Session.Complete(ctx, token)
		assert.True(t, IsSessionClosed(err))
		f.repo.sessions.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("draft", func(t *testing.T) {
		f := newFixture(t)
		f.expectQuiz(testQuiz())
		f.expectSession(&models.Session{ID: 100, QuizID: 7, Token: token, State: models.SessionDraft})

		_, err := f.services.Session.Complete(ctx, token)
		assert.ErrorIs(t, err, ErrSessionNotStarted)
	})
}

func TestSessionService_LazyExpiry(t *testing.T) {
	f := newFixture(t)
	f.expectQuiz(testQuiz())
	startedAt := testNow.Add(-40 * time.Minute)
	f.expectSession(startedSession(models.SessionInProgress, startedAt))
	f.repo.responses.On("GetBySession", mock.Anything, mock.Anything, uint(100)).Return([]models.Response{
		evaluatedResponse(1, 1, `{"selected_options": [11]}`, 4, 4),
	}, nil)
	f.repo.sessions.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	view, err := f.services.Session.Get(context.Background(), "0d7f7a1e-6c3b-4d36-9a55-3c1f7c1b2a90")
	require.NoError(t, err)

	session := view.Session
	assert.Equal(t, models.SessionExpired, session.State)
	require.NotNil(t, session.EndTime)
	assert.Equal(t, startedAt.Add(30*time.Minute), *session.EndTime)
	assert.Equal(t, 1800, session.TimeSpentSeconds)
	assert.Equal(t, 4.0, session.TotalScore)
	assert.Equal(t, 40.0, session.Percentage)
	assert.False(t, session.Passed)
	assert.Nil(t, view.RemainingSeconds)

	assert.Len(t, f.publisher.EventsOfType(events.EventSessionExpired), 1)
	assert.Equal(t, []models.SessionState{models.SessionExpired}, f.recorder.closed)
}

func TestSessionService_SubmitAfterDeadline(t *testing.T) {
	f := newFixture(t)
	f.expectQuiz(testQuiz())
	f.expectSession(startedSession(models.SessionInProgress, testNow.Add(-31*time.Minute)))
	f.repo.responses.On("GetBySession", mock.Anything, mock.Anything, uint(100)).Return([]models.Response{}, nil)
	f.repo.sessions.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.services.Session.SubmitResponse(context.Background(), "0d7f7a1e-6c3b-4d36-9a55-3c1f7c1b2a90",
		&SubmitResponseRequest{QuestionID: 1, Answer: json.RawMessage(`{"selected_options": [11]}`)})

	var closed *SessionClosedError
	require.ErrorAs(t, err, &closed)
	assert.Equal(t, models.SessionExpired, closed.State)
	f.repo.responses.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionService_ExpireOverdue(t *testing.T) {
	f := newFixture(t)
	f.expectQuiz(testQuiz())
	overdue := startedSession(models.SessionInProgress, testNow.Add(-45*time.Minute))
	locked := *overdue
	f.repo.sessions.On("GetOverdue", mock.Anything, mock.Anything, testNow).Return([]*models.Session{overdue}, nil)
	f.repo.sessions.On("GetForUpdate", mock.Anything, mock.Anything, uint(100)).Return(&locked, nil)
	f.repo.responses.On("GetBySession", mock.Anything, mock.Anything, uint(100)).Return([]models.Response{}, nil)
	f.repo.sessions.On("Update", mock.Anything, mock.Anything, mock.MatchedBy(func(s *models.Session) bool {
		return s.State == models.SessionExpired
	})).Return(nil).Once()

	count, err := f.services.Session.ExpireOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	f.repo.sessions.AssertExpectations(t)
}

// ===== RESULTS =====

func TestSessionService_Results(t *testing.T) {
	ctx := context.Background()
	token := "0d7f7a1e-6c3b-4d36-9a55-3c1f7c1b2a90"

	t.Run("not available while in progress", func(t *testing.T) {
		f := newFixture(t)
		f.expectQuiz(testQuiz())
		f.expectSession(startedSession(models.SessionInProgress, testNow.Add(-time.Minute)))

		_, err := f.services.Session.Results(ctx, token)
		assert.ErrorIs(t, err, ErrResultsNotAvailable)
		assert.True(t, IsConflict(err))
	})

	t.Run("frozen totals of a completed session", func(t *testing.T) {
		f := newFixture(t)
		f.expectQuiz(testQuiz())
		session := startedSession(models.SessionCompleted, testNow.Add(-time.Hour))
		session.TotalScore, session.MaxScore, session.Percentage, session.Passed = 4, 10, 40, false
		f.expectSession(session)
		f.repo.responses.On("GetBySession", mock.Anything, mock.Anything, uint(100)).Return([]models.Response{
			evaluatedResponse(1, 1, `{"selected_options": [11]}`, 4, 4),
			evaluatedResponse(2, 2, `{"value": 3}`, 0, 6),
		}, nil)

		result, err := f.services.Session.Results(ctx, token)
		require.NoError(t, err)

		assert.Equal(t, 4.0, result.Summary.TotalScore)
		assert.Equal(t, 10.0, result.Summary.MaxScore)
		assert.Equal(t, 40.0, result.Summary.Percentage)
		assert.Equal(t, 2, result.Summary.Answered)
		assert.Equal(t, 1, result.Summary.Correct)
		assert.Len(t, result.Responses, 2)
	})
}

func TestSessionService_Aggregate(t *testing.T) {
	f := newFixture(t)
	f.expectQuiz(testQuiz())
	f.expectSession(startedSession(models.SessionInProgress, testNow.Add(-time.Minute)))
	f.repo.responses.On("GetBySession", mock.Anything, mock.Anything, uint(100)).Return([]models.Response{
		evaluatedResponse(1, 1, `{"selected_options": [11]}`, 4, 4),
	}, nil)

	summary, err := f.services.Session.Aggregate(context.Background(), "0d7f7a1e-6c3b-4d36-9a55-3c1f7c1b2a90")
	require.NoError(t, err)

	assert.Equal(t, 4.0, summary.TotalScore)
	assert.Equal(t, 10.0, summary.MaxScore)
	assert.Equal(t, 40.0, summary.Percentage)
	assert.False(t, summary.Passed)
}

func TestSessionClosedError_Is(t *testing.T) {
	err := error(&SessionClosedError{SessionID: 1, State: models.SessionExpired})
	assert.True(t, errors.Is(err, ErrSessionClosed))
	assert.Contains(t, err.Error(), "expired")
}
