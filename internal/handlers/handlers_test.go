package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/SAP-F-2025/quiz-engine/internal/errors"
	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/SAP-F-2025/quiz-engine/internal/repositories"
	"github.com/SAP-F-2025/quiz-engine/internal/scoring"
	"github.com/SAP-F-2025/quiz-engine/internal/services"
	"github.com/SAP-F-2025/quiz-engine/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testToken = "0d7f7a1e-6c3b-4d36-9a55-3c1f7c1b2a90"

// ===== MOCKS =====

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Create(ctx context.Context, quizID uint, participant *services.Participant) (*models.Session, error) {
	args := m.Called(ctx, quizID, participant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionService) Start(ctx context.Context, token string) (*services.SessionView, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SessionView), args.Error(1)
}

func (m *MockSessionService) StartQuiz(ctx context.Context, slug string, participant *services.Participant) (*services.SessionView, error) {
	args := m.Called(ctx, slug, participant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SessionView), args.Error(1)
}

func (m *MockSessionService) Get(ctx context.Context, token string) (*services.SessionView, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SessionView), args.Error(1)
}

func (m *MockSessionService) SubmitResponse(ctx context.Context, token string, req *services.SubmitResponseRequest) (*services.SubmitResult, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SubmitResult), args.Error(1)
}

func (m *MockSessionService) Complete(ctx context.Context, token string) (*services.SessionResult, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SessionResult), args.Error(1)
}

func (m *MockSessionService) Results(ctx context.Context, token string) (*services.SessionResult, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SessionResult), args.Error(1)
}

func (m *MockSessionService) Aggregate(ctx context.Context, token string) (*scoring.Summary, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scoring.Summary), args.Error(1)
}

func (m *MockSessionService) ExpireOverdue(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockResponseService struct {
	mock.Mock
}

func (m *MockResponseService) Submit(ctx context.Context, tx *gorm.DB, session *models.Session, question *models.Question, payload json.RawMessage) (*models.Response, scoring.Result, error) {
	args := m.Called(ctx, tx, session, question, payload)
	var response *models.Response
	if args.Get(0) != nil {
		response = args.Get(0).(*models.Response)
	}
	return response, args.Get(1).(scoring.Result), args.Error(2)
}

func (m *MockResponseService) Recompute(ctx context.Context, responseID uint) (*models.Response, error) {
	args := m.Called(ctx, responseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Response), args.Error(1)
}

func (m *MockResponseService) RecomputeQuestion(ctx context.Context, questionID uint) (*services.RescoreSummary, error) {
	args := m.Called(ctx, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RescoreSummary), args.Error(1)
}

func (m *MockResponseService) Evaluate(ctx context.Context, questionID uint, payload json.RawMessage) (*services.EvaluationResult, error) {
	args := m.Called(ctx, questionID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.EvaluationResult), args.Error(1)
}

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) ExportQuizResults(ctx context.Context, quizID uint, filters repositories.SessionFilters) ([]byte, error) {
	args := m.Called(ctx, quizID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

// ===== FIXTURE =====

type handlerFixture struct {
	sessions  *MockSessionService
	responses *MockResponseService
	exports   *MockExportService
	router    *gin.Engine
}

func newHandlerFixture(t *testing.T, db Pinger) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &handlerFixture{
		sessions:  new(MockSessionService),
		responses: new(MockResponseService),
		exports:   new(MockExportService),
		router:    gin.New(),
	}
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc := &services.Services{Session: f.sessions, Response: f.responses, Export: f.exports}
	NewHandlerManager(svc, db, nil, logger).SetupRoutes(f.router)

	t.Cleanup(func() {
		f.sessions.AssertExpectations(t)
		f.responses.AssertExpectations(t)
		f.exports.AssertExpectations(t)
	})
	return f
}

func (f *handlerFixture) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// ===== TESTS =====

func TestStartSession_Created(t *testing.T) {
	f := newHandlerFixture(t, nil)
	view := &services.SessionView{
		Session:     &models.Session{ID: 100, Token: testToken, State: models.SessionInProgress},
		QuestionIDs: []uint{1, 2},
		AnsweredIDs: []uint{},
	}
	f.sessions.On("StartQuiz", mock.Anything, "ab12cd34", mock.MatchedBy(func(p *services.Participant) bool {
		return p.Name != nil && *p.Name == "Ada"
	})).Return(view, nil)

	rec := f.do(http.MethodPost, "/api/v1/quizzes/ab12cd34/sessions", map[string]string{"name": "Ada"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(utils.RequestIDHeader))

	var got services.SessionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, testToken, got.Session.Token)
	assert.Equal(t, []uint{1, 2}, got.QuestionIDs)
}

func TestStartSession_EmptyBodyIsGuest(t *testing.T) {
	f := newHandlerFixture(t, nil)
	f.sessions.On("StartQuiz", mock.Anything, "ab12cd34", &services.Participant{}).
		Return(&services.SessionView{Session: &models.Session{Token: testToken}}, nil)

	rec := f.do(http.MethodPost, "/api/v1/quizzes/ab12cd34/sessions", nil)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestStartSession_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"missing quiz", services.ErrQuizNotFound, http.StatusNotFound, CodeNotFound},
		{"login required", services.ErrLoginRequired, http.StatusUnauthorized, CodeLoginRequired},
		{"invalid participant", apperrors.ValidationErrors{{Field: "email", Message: "must be a valid email"}}, http.StatusBadRequest, CodeValidationFailed},
		{"database down", errors.New("connection reset"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture(t, nil)
			f.sessions.On("StartQuiz", mock.Anything, "ab12cd34", mock.Anything).Return(nil, tt.err)

			rec := f.do(http.MethodPost, "/api/v1/quizzes/ab12cd34/sessions", map[string]string{})

			assert.Equal(t, tt.status, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.code, resp.Code)
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, "Internal server error", resp.Message)
			}
		})
	}
}

func TestGetSession_InvalidToken(t *testing.T) {
	f := newHandlerFixture(t, nil)

	rec := f.do(http.MethodGet, "/api/v1/sessions/not-a-token", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeInvalidRequest, decodeError(t, rec).Code)
}

func TestSubmitResponse_Scored(t *testing.T) {
	f := newHandlerFixture(t, nil)
	out := &services.SubmitResult{
		Response:     &models.Response{ID: 5, QuestionID: 1},
		Result:       scoring.Result{QuestionID: 1, Score: 4, MaxScore: 4, IsCorrect: true},
		SessionState: models.SessionInProgress,
	}
	f.sessions.On("SubmitResponse", mock.Anything, testToken, mock.MatchedBy(func(req *services.SubmitResponseRequest) bool {
		return req.QuestionID == 1 && string(req.Answer) == `{"choice_id":11}`
	})).Return(out, nil)

	rec := f.do(http.MethodPost, "/api/v1/sessions/"+testToken+"/responses", map[string]interface{}{
		"question_id": 1,
		"answer":      map[string]int{"choice_id": 11},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	var got services.SubmitResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 4.0, got.Result.Score)
	assert.True(t, got.Result.IsCorrect)
}

func TestSubmitResponse_SessionClosed(t *testing.T) {
	f := newHandlerFixture(t, nil)
	f.sessions.On("SubmitResponse", mock.Anything, testToken, mock.Anything).
		Return(nil, &services.SessionClosedError{SessionID: 100, Token: testToken, State: models.SessionCompleted})

	rec := f.do(http.MethodPost, "/api/v1/sessions/"+testToken+"/responses", map[string]interface{}{"question_id": 1})

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, CodeSessionClosed, resp.Code)
	details, ok := resp.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, string(models.SessionCompleted), details["state"])
}

func TestSubmitResponse_UnknownTypeCarriesResult(t *testing.T) {
	f := newHandlerFixture(t, nil)
	out := &services.SubmitResult{
		Response:     &models.Response{ID: 9, QuestionID: 3},
		Result:       scoring.Result{QuestionID: 3, Type: "essay"},
		SessionState: models.SessionInProgress,
	}
	f.sessions.On("SubmitResponse", mock.Anything, testToken, mock.Anything).
		Return(out, &scoring.UnknownQuestionTypeError{QuestionID: 3, Type: "essay"})

	rec := f.do(http.MethodPost, "/api/v1/sessions/"+testToken+"/responses", map[string]interface{}{"question_id": 3, "answer": "text"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, CodeUnknownType, resp.Code)
	assert.NotNil(t, resp.Details)
}

func TestSubmitResponse_NotStarted(t *testing.T) {
	f := newHandlerFixture(t, nil)
	f.sessions.On("SubmitResponse", mock.Anything, testToken, mock.Anything).Return(nil, services.ErrSessionNotStarted)

	rec := f.do(http.MethodPost, "/api/v1/sessions/"+testToken+"/responses", map[string]interface{}{"question_id": 1})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, CodeConflict, decodeError(t, rec).Code)
}

func TestCompleteSession(t *testing.T) {
	f := newHandlerFixture(t, nil)
	result := &services.SessionResult{
		Session: &models.Session{Token: testToken, State: models.SessionCompleted},
		Summary: scoring.Summary{TotalScore: 10, MaxScore: 10, Percentage: 100, Passed: true, Answered: 2, Correct: 2},
	}
	f.sessions.On("Complete", mock.Anything, testToken).Return(result, nil)

	rec := f.do(http.MethodPost, "/api/v1/sessions/"+testToken+"/complete", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var got services.SessionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Summary.Passed)
	assert.Equal(t, 100.0, got.Summary.Percentage)
}

func TestGetResults_NotFinished(t *testing.T) {
	f := newHandlerFixture(t, nil)
	f.sessions.On("Results", mock.Anything, testToken).Return(nil, services.ErrResultsNotAvailable)

	rec := f.do(http.MethodGet, "/api/v1/sessions/"+testToken+"/results", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestEvaluateAnswer(t *testing.T) {
	f := newHandlerFixture(t, nil)
	f.responses.On("Evaluate", mock.Anything, uint(2), json.RawMessage(`10.4`)).
		Return(&services.EvaluationResult{Result: scoring.Result{QuestionID: 2, Score: 6, MaxScore: 6, IsCorrect: true}}, nil)

	rec := f.do(http.MethodPost, "/api/v1/questions/2/evaluate", map[string]float64{"answer": 10.4})

	assert.Equal(t, http.StatusOK, rec.Code)
	var got services.EvaluationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 6.0, got.Score)
}

func TestEvaluateAnswer_InvalidID(t *testing.T) {
	f := newHandlerFixture(t, nil)

	rec := f.do(http.MethodPost, "/api/v1/questions/abc/evaluate", map[string]int{"answer": 1})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecomputeQuestion(t *testing.T) {
	f := newHandlerFixture(t, nil)
	f.responses.On("RecomputeQuestion", mock.Anything, uint(1)).
		Return(&services.RescoreSummary{QuestionID: 1, ResponsesRescored: 2, ScoresChanged: 2, SessionsUpdated: 1}, nil)

	rec := f.do(http.MethodPost, "/api/v1/questions/1/recompute", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Data services.RescoreSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Data.ScoresChanged)
}

func TestRecomputeResponse_NotFound(t *testing.T) {
	f := newHandlerFixture(t, nil)
	f.responses.On("Recompute", mock.Anything, uint(42)).Return(nil, services.ErrResponseNotFound)

	rec := f.do(http.MethodPost, "/api/v1/responses/42/recompute", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportResults(t *testing.T) {
	f := newHandlerFixture(t, nil)
	completed := models.SessionCompleted
	f.exports.On("ExportQuizResults", mock.Anything, uint(7), repositories.SessionFilters{
		State:  &completed,
		SortBy: "total_score",
	}).Return([]byte("xlsx"), nil)

	rec := f.do(http.MethodGet, "/api/v1/quizzes/7/results/export?state=completed&sort_by=total_score", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "quiz-7-results.xlsx")
	assert.Equal(t, "xlsx", rec.Body.String())
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		f := newHandlerFixture(t, stubPinger{})
		rec := f.do(http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("database down", func(t *testing.T) {
		f := newHandlerFixture(t, stubPinger{err: errors.New("dial tcp: refused")})
		rec := f.do(http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, CodeServiceUnavailable, decodeError(t, rec).Code)
	})
}
