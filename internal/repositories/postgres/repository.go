package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/quiz-engine/internal/repositories"
	"gorm.io/gorm"
)

type Repository struct {
	db       *gorm.DB
	quiz     repositories.QuizRepository
	question repositories.QuestionRepository
	session  repositories.SessionRepository
	response repositories.ResponseRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		db:       db,
		quiz:     NewQuizPostgreSQL(db),
		question: NewQuestionPostgreSQL(db),
		session:  NewSessionPostgreSQL(db),
		response: NewResponsePostgreSQL(db),
	}
}

func (r *Repository) Quiz() repositories.QuizRepository         { return r.quiz }
func (r *Repository) Question() repositories.QuestionRepository { return r.question }
func (r *Repository) Session() repositories.SessionRepository   { return r.session }
func (r *Repository) Response() repositories.ResponseRepository { return r.response }

func (r *Repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// ===== SHARED HELPERS =====

func pick(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

func ordered(column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(column + ", id")
	}
}

// preloadQuestionKeys preloads every answer-key collection of a question.
// prefix is "" for questions and "Questions." for quizzes.
func preloadQuestionKeys(db *gorm.DB, prefix string) *gorm.DB {
	return db.
		Preload(prefix+"Choices", ordered("sequence")).
		Preload(prefix+"Blanks", ordered("number")).
		Preload(prefix+"MatchPairs", ordered("sequence")).
		Preload(prefix+"DragTokens", ordered("blank_number")).
		Preload(prefix + "NumericKey").
		Preload(prefix + "TextKey").
		Preload(prefix+"MatrixRows", ordered("sequence")).
		Preload(prefix+"MatrixColumns", ordered("sequence")).
		Preload(prefix + "MatrixCells").
		Preload(prefix+"OrderingItems", ordered("position"))
}
