package services

import (
	"context"
	"time"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/SAP-F-2025/quiz-engine/internal/repositories"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockRepository wires the per-entity mocks together. WithTransaction runs
// fn with a nil tx and returns its error.
type MockRepository struct {
	quizzes   *MockQuizRepository
	questions *MockQuestionRepository
	sessions  *MockSessionRepository
	responses *MockResponseRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		quizzes:   &MockQuizRepository{},
		questions: &MockQuestionRepository{},
		sessions:  &MockSessionRepository{},
		responses: &MockResponseRepository{},
	}
}

func (m *MockRepository) Quiz() repositories.QuizRepository         { return m.quizzes }
func (m *MockRepository) Question() repositories.QuestionRepository { return m.questions }
func (m *MockRepository) Session() repositories.SessionRepository   { return m.sessions }
func (m *MockRepository) Response() repositories.ResponseRepository { return m.responses }

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (m *MockRepository) Ping(ctx context.Context) error { return nil }

// ===== QUIZ =====

type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	args := m.Called(ctx, tx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*models.Quiz, error) {
	args := m.Called(ctx, tx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

// ===== QUESTION =====

type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) ([]models.Question, error) {
	args := m.Called(ctx, tx, quizID)
	return args.Get(0).([]models.Question), args.Error(1)
}

func (m *MockQuestionRepository) CountByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) (int64, error) {
	args := m.Called(ctx, tx, quizID)
	return args.Get(0).(int64), args.Error(1)
}

// ===== SESSION =====

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, tx *gorm.DB, session *models.Session) error {
	args := m.Called(ctx, tx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Session, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionRepository) GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.Session, error) {
	args := m.Called(ctx, tx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Session, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionRepository) Update(ctx context.Context, tx *gorm.DB, session *models.Session) error {
	args := m.Called(ctx, tx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByQuiz(ctx context.Context, tx *gorm.DB, quizID uint, filters repositories.SessionFilters) ([]*models.Session, int64, error) {
	args := m.Called(ctx, tx, quizID, filters)
	return args.Get(0).([]*models.Session), args.Get(1).(int64), args.Error(2)
}

func (m *MockSessionRepository) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Session, error) {
	args := m.Called(ctx, tx, ids)
	return args.Get(0).([]*models.Session), args.Error(1)
}

func (m *MockSessionRepository) GetOverdue(ctx context.Context, tx *gorm.DB, now time.Time) ([]*models.Session, error) {
	args := m.Called(ctx, tx, now)
	return args.Get(0).([]*models.Session), args.Error(1)
}

// ===== RESPONSE =====

type MockResponseRepository struct {
	mock.Mock
}

func (m *MockResponseRepository) Upsert(ctx context.Context, tx *gorm.DB, response *models.Response) error {
	args := m.Called(ctx, tx, response)
	return args.Error(0)
}

func (m *MockResponseRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Response, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Response), args.Error(1)
}

func (m *MockResponseRepository) GetBySessionAndQuestion(ctx context.Context, tx *gorm.DB, sessionID, questionID uint) (*models.Response, error) {
	args := m.Called(ctx, tx, sessionID, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Response), args.Error(1)
}

func (m *MockResponseRepository) GetBySession(ctx context.Context, tx *gorm.DB, sessionID uint) ([]models.Response, error) {
	args := m.Called(ctx, tx, sessionID)
	return args.Get(0).([]models.Response), args.Error(1)
}

func (m *MockResponseRepository) GetBySessions(ctx context.Context, tx *gorm.DB, sessionIDs []uint) ([]models.Response, error) {
	args := m.Called(ctx, tx, sessionIDs)
	return args.Get(0).([]models.Response), args.Error(1)
}

func (m *MockResponseRepository) GetByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) ([]models.Response, error) {
	args := m.Called(ctx, tx, questionID)
	return args.Get(0).([]models.Response), args.Error(1)
}

func (m *MockResponseRepository) CountBySession(ctx context.Context, tx *gorm.DB, sessionID uint) (int64, error) {
	args := m.Called(ctx, tx, sessionID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockResponseRepository) UpdateEvaluation(ctx context.Context, tx *gorm.DB, response *models.Response) error {
	args := m.Called(ctx, tx, response)
	return args.Error(0)
}

func (m *MockResponseRepository) GetQuestionStats(ctx context.Context, tx *gorm.DB, quizID uint) ([]repositories.QuestionResponseStats, error) {
	args := m.Called(ctx, tx, quizID)
	return args.Get(0).([]repositories.QuestionResponseStats), args.Error(1)
}
