package validator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/quiz-engine/internal/errors"
	"github.com/SAP-F-2025/quiz-engine/internal/models"
)

// QuestionValidator checks that a question owns the answer key its type
// requires, so the scoring engine never meets a key it cannot score.
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

var placeholderPattern = regexp.MustCompile(`\{\{\s*(\d+)\s*\}\}`)

// ValidateKey returns every answer-key invariant the question violates.
func (v *QuestionValidator) ValidateKey(q *models.Question) ValidationErrors {
	var errs ValidationErrors
	add := func(field, message string) {
		errs = append(errs, *errors.NewValidationErrorWithRule(field, message, "answer_key", nil))
	}

	switch q.Type {
	case models.SingleChoice, models.MultiChoice:
		v.validateChoices(q, add)
	case models.FillInBlank:
		v.validateBlanks(q, add)
	case models.Matching:
		v.validateMatchPairs(q, add)
	case models.DragIntoZone, models.DragIntoText, models.DropdownInText:
		v.validateDragTokens(q, add)
	case models.Numeric:
		v.validateNumericKey(q, add)
	case models.FreeText:
		v.validateTextKey(q, add)
	case models.Matrix:
		v.validateMatrix(q, add)
	case models.Ordering:
		v.validateOrdering(q, add)
	default:
		add("type", fmt.Sprintf("unsupported question type %q", q.Type))
	}
	return errs
}

// Private validation methods for each question family

func (v *QuestionValidator) validateChoices(q *models.Question, add func(string, string)) {
	if len(q.Choices) == 0 {
		add("choices", "must have at least 1 choice")
		return
	}

	correct := 0
	for i, choice := range q.Choices {
		if strings.TrimSpace(choice.Label) == "" {
			add(fmt.Sprintf("choices[%d].label", i), "is required")
		}
		if choice.IsCorrect {
			correct++
		}
	}

	if q.Type == models.SingleChoice && correct != 1 {
		add("choices", fmt.Sprintf("must have exactly 1 correct choice, got %d", correct))
	}
	if q.Type == models.MultiChoice && correct == 0 {
		add("choices", "must have at least 1 correct choice")
	}
}

func (v *QuestionValidator) validateBlanks(q *models.Question, add func(string, string)) {
	if len(q.Blanks) == 0 {
		add("blanks", "must have at least 1 blank")
		return
	}

	seen := make(map[int]bool, len(q.Blanks))
	for i, blank := range q.Blanks {
		field := fmt.Sprintf("blanks[%d]", i)
		if blank.Number < 1 {
			add(field+".number", "must be at least 1")
		}
		if seen[blank.Number] {
			add(field+".number", fmt.Sprintf("duplicate blank number %d", blank.Number))
		}
		seen[blank.Number] = true

		accepted := 0
		for _, answer := range blank.AcceptedAnswers {
			if strings.TrimSpace(answer) != "" {
				accepted++
			}
		}
		if accepted == 0 {
			add(field+".accepted_answers", "must have at least 1 accepted answer")
		}
	}
}

func (v *QuestionValidator) validateMatchPairs(q *models.Question, add func(string, string)) {
	if len(q.MatchPairs) < 2 {
		add("match_pairs", "must have at least 2 pairs")
	}
	for i, pair := range q.MatchPairs {
		if strings.TrimSpace(pair.LeftItem) == "" || strings.TrimSpace(pair.RightItem) == "" {
			add(fmt.Sprintf("match_pairs[%d]", i), "left and right items are required")
		}
	}
}

func (v *QuestionValidator) validateDragTokens(q *models.Question, add func(string, string)) {
	correctTargets := make(map[int]bool)
	for i, token := range q.DragTokens {
		if strings.TrimSpace(token.Label) == "" {
			add(fmt.Sprintf("drag_tokens[%d].label", i), "is required")
		}
		if token.BlankNumber < 1 {
			add(fmt.Sprintf("drag_tokens[%d].blank_number", i), "must be at least 1")
		}
		if token.IsCorrect {
			correctTargets[token.BlankNumber] = true
		}
	}
	if len(correctTargets) == 0 {
		add("drag_tokens", "must have at least 1 correct token")
		return
	}

	if q.Type == models.DragIntoZone || q.TextTemplate == nil {
		return
	}
	placeholders := make(map[int]bool)
	for _, match := range placeholderPattern.FindAllStringSubmatch(*q.TextTemplate, -1) {
		n, _ := strconv.Atoi(match[1])
		placeholders[n] = true
	}
	for target := range correctTargets {
		if !placeholders[target] {
			add("text_template", fmt.Sprintf("missing placeholder {{%d}}", target))
		}
	}
}

func (v *QuestionValidator) validateNumericKey(q *models.Question, add func(string, string)) {
	key := q.NumericKey
	if key == nil {
		add("numeric_key", "is required")
		return
	}

	exact := key.Value != nil
	ranged := key.MinValue != nil && key.MaxValue != nil
	switch {
	case exact && key.IsRange():
		add("numeric_key", "must set either value or min_value/max_value, not both")
	case !exact && !ranged:
		add("numeric_key", "must set value, or both min_value and max_value")
	}

	if key.Tolerance < 0 {
		add("numeric_key.tolerance", "must not be negative")
	}
	if ranged && *key.MinValue > *key.MaxValue {
		add("numeric_key.min_value", "must not exceed max_value")
	}
}

func (v *QuestionValidator) validateTextKey(q *models.Question, add func(string, string)) {
	key := q.TextKey
	if key == nil {
		add("text_key", "is required")
		return
	}

	hasKeyword := false
	for _, keyword := range key.Keywords {
		if strings.TrimSpace(keyword) != "" {
			hasKeyword = true
			break
		}
	}
	if strings.TrimSpace(key.Expected) == "" && !hasKeyword {
		add("text_key", "must set expected text or at least 1 keyword")
	}
}

func (v *QuestionValidator) validateMatrix(q *models.Question, add func(string, string)) {
	if len(q.MatrixRows) == 0 {
		add("matrix_rows", "must have at least 1 row")
	}
	if len(q.MatrixColumns) == 0 {
		add("matrix_columns", "must have at least 1 column")
	}

	rows := make(map[uint]bool, len(q.MatrixRows))
	for _, row := range q.MatrixRows {
		rows[row.ID] = true
	}
	columns := make(map[uint]bool, len(q.MatrixColumns))
	for _, column := range q.MatrixColumns {
		columns[column.ID] = true
	}
	// Unsaved rows and columns have no ids yet, so cells cannot be checked.
	if rows[0] || columns[0] {
		return
	}
	for i, cell := range q.MatrixCells {
		if !rows[cell.RowID] || !columns[cell.ColumnID] {
			add(fmt.Sprintf("matrix_cells[%d]", i), "references an unknown row or column")
		}
	}
}

func (v *QuestionValidator) validateOrdering(q *models.Question, add func(string, string)) {
	n := len(q.OrderingItems)
	if n < 2 {
		add("ordering_items", "must have at least 2 items")
		return
	}

	seen := make(map[int]bool, n)
	for i, item := range q.OrderingItems {
		if item.Position < 1 || item.Position > n || seen[item.Position] {
			add(fmt.Sprintf("ordering_items[%d].position", i), fmt.Sprintf("positions must be a permutation of 1..%d", n))
			continue
		}
		seen[item.Position] = true
	}
}
