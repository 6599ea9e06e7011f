package models

import (
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	SingleChoice   QuestionType = "single_choice"
	MultiChoice    QuestionType = "multi_choice"
	FillInBlank    QuestionType = "fill_blank"
	Matching       QuestionType = "matching"
	DragIntoZone   QuestionType = "drag_into_zone"
	DragIntoText   QuestionType = "drag_into_text"
	DropdownInText QuestionType = "dropdown_in_text"
	Numeric        QuestionType = "numeric"
	FreeText       QuestionType = "free_text"
	Matrix         QuestionType = "matrix"
	Ordering       QuestionType = "ordering"
)

// QuestionTypes lists every supported question type.
func QuestionTypes() []QuestionType {
	return []QuestionType{
		SingleChoice, MultiChoice, FillInBlank, Matching, DragIntoZone, DragIntoText,
		DropdownInText, Numeric, FreeText, Matrix, Ordering,
	}
}

func (t QuestionType) IsValid() bool {
	for _, known := range QuestionTypes() {
		if t == known {
			return true
		}
	}
	return false
}

type Question struct {
	ID            uint         `json:"id" gorm:"primaryKey"`
	QuizID        uint         `json:"quiz_id" gorm:"not null;index"`
	Sequence      int          `json:"sequence" gorm:"default:0"`
	Type          QuestionType `json:"type" gorm:"not null;size:32" validate:"required,question_type"`
	Text          string       `json:"text" gorm:"type:text;not null" validate:"required"`
	TextTemplate  *string      `json:"text_template,omitempty" gorm:"type:text"` // {{n}} placeholders for *_in_text types
	Points        float64      `json:"points" gorm:"not null;default:1" validate:"gt=0"`
	NegativeMarks float64      `json:"negative_marks" gorm:"default:0" validate:"gte=0"`
	PartialCredit bool         `json:"partial_credit"`
	CaseSensitive bool         `json:"case_sensitive"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Answer-key items. Only the collection matching Type is populated.
	Choices       []Choice       `json:"choices,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	Blanks        []Blank        `json:"blanks,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	MatchPairs    []MatchPair    `json:"match_pairs,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	DragTokens    []DragToken    `json:"drag_tokens,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	NumericKey    *NumericKey    `json:"numeric_key,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	TextKey       *TextKey       `json:"text_key,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	MatrixRows    []MatrixRow    `json:"matrix_rows,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	MatrixColumns []MatrixColumn `json:"matrix_columns,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	MatrixCells   []MatrixCell   `json:"matrix_cells,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	OrderingItems []OrderingItem `json:"ordering_items,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

func (Question) TableName() string {
	return "questions"
}

// ===== ANSWER-KEY ITEMS =====

type Choice struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Label      string `json:"label" gorm:"not null;size:500" validate:"required"`
	IsCorrect  bool   `json:"is_correct"`
	Sequence   int    `json:"sequence"`
}

type Blank struct {
	ID              uint                        `json:"id" gorm:"primaryKey"`
	QuestionID      uint                        `json:"question_id" gorm:"not null;index"`
	Number          int                         `json:"number" gorm:"not null" validate:"min=1"`
	AcceptedAnswers datatypes.JSONSlice[string] `json:"accepted_answers" gorm:"type:jsonb"`
}

type MatchPair struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	LeftItem   string `json:"left_item" gorm:"not null;size:500" validate:"required"`
	RightItem  string `json:"right_item" gorm:"not null;size:500" validate:"required"`
	Sequence   int    `json:"sequence"`
}

// DragToken is a draggable label, or a dropdown option, targeting one blank
// or zone. Tokens with IsCorrect false are distractors.
type DragToken struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	QuestionID  uint   `json:"question_id" gorm:"not null;index"`
	Label       string `json:"label" gorm:"not null;size:255" validate:"required"`
	BlankNumber int    `json:"blank_number" gorm:"not null" validate:"min=1"`
	IsCorrect   bool   `json:"is_correct"`
}

// NumericKey holds either an exact value with tolerance or a [min, max] range.
type NumericKey struct {
	ID         uint     `json:"id" gorm:"primaryKey"`
	QuestionID uint     `json:"question_id" gorm:"not null;uniqueIndex"`
	Value      *float64 `json:"value"`
	Tolerance  float64  `json:"tolerance" validate:"gte=0"`
	MinValue   *float64 `json:"min_value"`
	MaxValue   *float64 `json:"max_value"`
}

func (k *NumericKey) IsRange() bool {
	return k.MinValue != nil || k.MaxValue != nil
}

type TextKey struct {
	ID                uint                        `json:"id" gorm:"primaryKey"`
	QuestionID        uint                        `json:"question_id" gorm:"not null;uniqueIndex"`
	Expected          string                      `json:"expected" gorm:"type:text"`
	CaseSensitive     bool                        `json:"case_sensitive"`
	Keywords          datatypes.JSONSlice[string] `json:"keywords" gorm:"type:jsonb"`
	AllowPartialMatch bool                        `json:"allow_partial_match"`
}

type MatrixRow struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Label      string `json:"label" gorm:"not null;size:255"`
	Sequence   int    `json:"sequence"`
}

type MatrixColumn struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Label      string `json:"label" gorm:"not null;size:255"`
	Sequence   int    `json:"sequence"`
}

// MatrixCell marks a (row, column) combination. A combination without a
// stored cell is not correct.
type MatrixCell struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	QuestionID uint `json:"question_id" gorm:"not null;uniqueIndex:idx_matrix_cell"`
	RowID      uint `json:"row_id" gorm:"not null;uniqueIndex:idx_matrix_cell"`
	ColumnID   uint `json:"column_id" gorm:"not null;uniqueIndex:idx_matrix_cell"`
	IsCorrect  bool `json:"is_correct"`
}

type OrderingItem struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Label      string `json:"label" gorm:"not null;size:500"`
	Position   int    `json:"position" gorm:"not null" validate:"min=1"` // correct 1-based position
}
