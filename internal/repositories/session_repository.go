package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"gorm.io/gorm"
)

// SessionRepository interface for quiz session operations
type SessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *models.Session) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Session, error)
	GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.Session, error)
	// GetForUpdate reads the session with a row lock; tx must be a transaction.
	GetForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Session, error)
	Update(ctx context.Context, tx *gorm.DB, session *models.Session) error

	// Query operations
	GetByQuiz(ctx context.Context, tx *gorm.DB, quizID uint, filters SessionFilters) ([]*models.Session, int64, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Session, error)
	GetOverdue(ctx context.Context, tx *gorm.DB, now time.Time) ([]*models.Session, error)
}

// ResponseRepository interface for scored response operations
type ResponseRepository interface {
	// Upsert inserts or replaces the response for (session, question).
	Upsert(ctx context.Context, tx *gorm.DB, response *models.Response) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Response, error)
	GetBySessionAndQuestion(ctx context.Context, tx *gorm.DB, sessionID, questionID uint) (*models.Response, error)
	GetBySession(ctx context.Context, tx *gorm.DB, sessionID uint) ([]models.Response, error)
	GetBySessions(ctx context.Context, tx *gorm.DB, sessionIDs []uint) ([]models.Response, error)
	GetByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) ([]models.Response, error)
	CountBySession(ctx context.Context, tx *gorm.DB, sessionID uint) (int64, error)

	// UpdateEvaluation writes score, max score, correctness, feedback and
	// evaluation time without touching the payload.
	UpdateEvaluation(ctx context.Context, tx *gorm.DB, response *models.Response) error

	GetQuestionStats(ctx context.Context, tx *gorm.DB, quizID uint) ([]QuestionResponseStats, error)
}
