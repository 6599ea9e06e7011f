package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// IsNotFoundError reports whether err means the requested row does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// Repository groups the quiz engine repositories. Every method takes an
// optional tx; nil runs against the root connection.
type Repository interface {
	Quiz() QuizRepository
	Question() QuestionRepository
	Session() SessionRepository
	Response() ResponseRepository

	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	Ping(ctx context.Context) error
}

// ===== SHARED FILTER STRUCTS =====

type SessionFilters struct {
	State     *models.SessionState `json:"state"`
	DateFrom  *time.Time           `json:"date_from"`
	DateTo    *time.Time           `json:"date_to"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
	SortBy    string               `json:"sort_by"`    // "created_at", "total_score", "percentage"
	SortOrder string               `json:"sort_order"` // "asc", "desc"
}

// ===== SHARED STATISTICS STRUCTS =====

type QuestionResponseStats struct {
	QuestionID    uint    `json:"question_id"`
	ResponseCount int     `json:"response_count"`
	CorrectCount  int     `json:"correct_count"`
	AverageScore  float64 `json:"average_score"`
}
