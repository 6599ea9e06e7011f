package postgres

import (
	"context"
	"time"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/SAP-F-2025/quiz-engine/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionPostgreSQL struct {
	db *gorm.DB
}

func NewSessionPostgreSQL(db *gorm.DB) repositories.SessionRepository {
	return &SessionPostgreSQL{db: db}
}

func (s SessionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, session *models.Session) error {
	return pick(s.db, tx).WithContext(ctx).Omit(clause.Associations).Create(session).Error
}

func (s SessionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Session, error) {
	var session models.Session
	if err := pick(s.db, tx).WithContext(ctx).First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s SessionPostgreSQL) GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.Session, error) {
	var session models.Session
	if err := pick(s.db, tx).WithContext(ctx).Where("token = ?", token).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s SessionPostgreSQL) GetForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Session, error) {
	var session models.Session
	if err := pick(s.db, tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s SessionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, session *models.Session) error {
	return pick(s.db, tx).WithContext(ctx).Omit(clause.Associations).Save(session).Error
}

func (s SessionPostgreSQL) GetByQuiz(ctx context.Context, tx *gorm.DB, quizID uint, filters repositories.SessionFilters) ([]*models.Session, int64, error) {
	var sessions []*models.Session
	var total int64

	// apply filter first
	query := pick(s.db, tx).WithContext(ctx).Model(&models.Session{}).Where("quiz_id = ?", quizID)
	query = s.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = s.applyPaginationAndSort(query, filters)

	if err := query.Find(&sessions).Error; err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func (s SessionPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Session, error) {
	var sessions []*models.Session
	if len(ids) == 0 {
		return sessions, nil
	}
	if err := pick(s.db, tx).WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s SessionPostgreSQL) GetOverdue(ctx context.Context, tx *gorm.DB, now time.Time) ([]*models.Session, error) {
	var sessions []*models.Session
	if err := pick(s.db, tx).WithContext(ctx).
		Where("state = ? AND time_limit_minutes > 0", models.SessionInProgress).
		Where("start_time + make_interval(mins => time_limit_minutes) < ?", now).
		Order("start_time").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s SessionPostgreSQL) applyFilters(query *gorm.DB, filters repositories.SessionFilters) *gorm.DB {
	if filters.State != nil {
		query = query.Where("state = ?", *filters.State)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}

var sessionSortColumns = map[string]string{
	"created_at":  "created_at",
	"total_score": "total_score",
	"percentage":  "percentage",
	"end_time":    "end_time",
}

func (s SessionPostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.SessionFilters) *gorm.DB {
	column, ok := sessionSortColumns[filters.SortBy]
	if !ok {
		column = "created_at"
	}
	query = query.Order(clause.OrderByColumn{
		Column: clause.Column{Name: column},
		Desc:   filters.SortOrder != "asc",
	})

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}
