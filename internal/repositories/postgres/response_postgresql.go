package postgres

import (
	"context"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/SAP-F-2025/quiz-engine/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResponsePostgreSQL struct {
	db *gorm.DB
}

func NewResponsePostgreSQL(db *gorm.DB) repositories.ResponseRepository {
	return &ResponsePostgreSQL{db: db}
}

// Upsert relies on idx_response_session_question: concurrent submissions for
// the same (session, question) converge to one row, last write wins.
func (r ResponsePostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, response *models.Response) error {
	return pick(r.db, tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "session_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"raw_payload", "score", "max_score", "is_correct",
				"feedback", "evaluated_at", "submitted_at", "updated_at",
			}),
		}).
		Create(response).Error
}

func (r ResponsePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Response, error) {
	var response models.Response
	if err := pick(r.db, tx).WithContext(ctx).First(&response, id).Error; err != nil {
		return nil, err
	}
	return &response, nil
}

func (r ResponsePostgreSQL) GetBySessionAndQuestion(ctx context.Context, tx *gorm.DB, sessionID, questionID uint) (*models.Response, error) {
	var response models.Response
	if err := pick(r.db, tx).WithContext(ctx).
		Where("session_id = ? AND question_id = ?", sessionID, questionID).
		First(&response).Error; err != nil {
		return nil, err
	}
	return &response, nil
}

func (r ResponsePostgreSQL) GetBySession(ctx context.Context, tx *gorm.DB, sessionID uint) ([]models.Response, error) {
	var responses []models.Response
	if err := pick(r.db, tx).WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("question_id").
		Find(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}

func (r ResponsePostgreSQL) GetBySessions(ctx context.Context, tx *gorm.DB, sessionIDs []uint) ([]models.Response, error) {
	var responses []models.Response
	if len(sessionIDs) == 0 {
		return responses, nil
	}
	if err := pick(r.db, tx).WithContext(ctx).
		Where("session_id IN ?", sessionIDs).
		Order("session_id, question_id").
		Find(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}

func (r ResponsePostgreSQL) GetByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) ([]models.Response, error) {
	var responses []models.Response
	if err := pick(r.db, tx).WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("id").
		Find(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}

func (r ResponsePostgreSQL) CountBySession(ctx context.Context, tx *gorm.DB, sessionID uint) (int64, error) {
	var count int64
	if err := pick(r.db, tx).WithContext(ctx).
		Model(&models.Response{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r ResponsePostgreSQL) UpdateEvaluation(ctx context.Context, tx *gorm.DB, response *models.Response) error {
	return pick(r.db, tx).WithContext(ctx).
		Model(&models.Response{}).
		Where("id = ?", response.ID).
		Updates(map[string]interface{}{
			"score":        response.Score,
			"max_score":    response.MaxScore,
			"is_correct":   response.IsCorrect,
			"feedback":     response.Feedback,
			"evaluated_at": response.EvaluatedAt,
		}).Error
}

func (r ResponsePostgreSQL) GetQuestionStats(ctx context.Context, tx *gorm.DB, quizID uint) ([]repositories.QuestionResponseStats, error) {
	var stats []repositories.QuestionResponseStats
	if err := pick(r.db, tx).WithContext(ctx).
		Model(&models.Response{}).
		Select(`quiz_responses.question_id,
			COUNT(*) AS response_count,
			SUM(CASE WHEN quiz_responses.is_correct THEN 1 ELSE 0 END) AS correct_count,
			COALESCE(AVG(quiz_responses.score), 0) AS average_score`).
		Joins("JOIN quiz_sessions ON quiz_sessions.id = quiz_responses.session_id").
		Where("quiz_sessions.quiz_id = ?", quizID).
		Group("quiz_responses.question_id").
		Order("quiz_responses.question_id").
		Scan(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
