package postgres

import (
	"context"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/SAP-F-2025/quiz-engine/internal/repositories"
	"gorm.io/gorm"
)

type QuizPostgreSQL struct {
	db *gorm.DB
}

func NewQuizPostgreSQL(db *gorm.DB) repositories.QuizRepository {
	return &QuizPostgreSQL{db: db}
}

func (q QuizPostgreSQL) Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	return pick(q.db, tx).WithContext(ctx).Create(quiz).Error
}

func (q QuizPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := pick(q.db, tx).WithContext(ctx).First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q QuizPostgreSQL) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := pick(q.db, tx).WithContext(ctx).Where("slug = ?", slug).First(&quiz).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q QuizPostgreSQL) GetWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	query := pick(q.db, tx).WithContext(ctx).Preload("Questions", ordered("sequence"))
	if err := preloadQuestionKeys(query, "Questions.").First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}
