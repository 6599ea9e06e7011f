package models

import (
	"hash/fnv"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Quiz struct {
	ID               uint    `json:"id" gorm:"primaryKey"`
	Title            string  `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Slug             string  `json:"slug" gorm:"not null;size:16;uniqueIndex"`
	Description      *string `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	IsPublished      bool    `json:"is_published" gorm:"default:false;index"`
	TimeLimitMinutes int     `json:"time_limit_minutes" gorm:"default:0" validate:"min=0,max=1440"` // 0 means unlimited
	PassingScore     float64 `json:"passing_score" gorm:"not null;default:0" validate:"min=0,max=100"`
	ShuffleQuestions bool    `json:"shuffle_questions"`
	RequireLogin     bool    `json:"require_login"`
	AutoComplete     bool    `json:"auto_complete"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// BeforeCreate assigns a short public slug when none was provided.
func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.Slug == "" {
		q.Slug = NewSlug()
	}
	return nil
}

// NewSlug returns the first 8 hex characters of a random UUID.
func NewSlug() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// TotalPoints sums the point value of every question in the quiz.
func (q *Quiz) TotalPoints() float64 {
	total := 0.0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}

// Question returns the quiz question with the given id, or nil.
func (q *Quiz) Question(id uint) *Question {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return &q.Questions[i]
		}
	}
	return nil
}

// OrderedQuestions returns the questions in presentation order. When
// ShuffleQuestions is set the order is a permutation seeded by seed, so the
// same session always sees the same order.
func (q *Quiz) OrderedQuestions(seed string) []Question {
	ordered := make([]Question, len(q.Questions))
	copy(ordered, q.Questions)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Sequence != ordered[j].Sequence {
			return ordered[i].Sequence < ordered[j].Sequence
		}
		return ordered[i].ID < ordered[j].ID
	})

	if !q.ShuffleQuestions || len(ordered) < 2 {
		return ordered
	}

	h := fnv.New64a()
	h.Write([]byte(seed))
	rng := rand.New(rand.NewPCG(h.Sum64(), uint64(q.ID)))
	rng.Shuffle(len(ordered), func(i, j int) {
		ordered[i], ordered[j] = ordered[j], ordered[i]
	})
	return ordered
}
