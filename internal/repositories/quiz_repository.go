package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"gorm.io/gorm"
)

// QuizRepository interface for quiz operations
type QuizRepository interface {
	Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*models.Quiz, error)

	// GetWithQuestions loads the quiz with every question and answer key.
	GetWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error)
}

// QuestionRepository interface for question operations
type QuestionRepository interface {
	// GetByID loads the question with its answer-key items.
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	GetByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) ([]models.Question, error)
	CountByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) (int64, error)
}
