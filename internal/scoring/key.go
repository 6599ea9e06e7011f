package scoring

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/shopspring/decimal"
)

var (
	errInvalidJSON = errors.New("invalid JSON")
	errNotAnObject = errors.New("expected a JSON object")
)

// QuestionKey is the correctness model of one question. The variant set is
// closed: every implementation lives in this package and carries its own
// normalize and score rule, so a question type cannot exist without a rule.
type QuestionKey interface {
	QuestionID() uint
	Type() models.QuestionType
	Points() decimal.Decimal

	// size is the scoring denominator. Zero means the key is empty.
	size() int
	// bareField names the object field a non-object payload is wrapped in,
	// or "" when the type only accepts objects.
	bareField() string
	normalize(object []byte) (Answer, error)
	score(answer Answer) decimal.Decimal
	malformed(reason string, err error) *MalformedAnswerError
}

type keyBase struct {
	questionID    uint
	kind          models.QuestionType
	points        decimal.Decimal
	negativeMarks decimal.Decimal
}

func (k keyBase) QuestionID() uint { return k.questionID }
func (k keyBase) Type() models.QuestionType { return k.kind }
func (k keyBase) Points() decimal.Decimal { return k.points }
func (k keyBase) bareField() string { return "" }

func (k keyBase) malformed(reason string, err error) *MalformedAnswerError {
	return &MalformedAnswerError{QuestionID: k.questionID, Type: k.kind, Reason: reason, Err: err}
}

func (k keyBase) decode(object []byte, v any) error {
	if err := json.Unmarshal(object, v); err != nil {
		return k.malformed("payload does not match the "+string(k.kind)+" answer shape", err)
	}
	return nil
}

// proportion returns points * n / d, or zero when d is zero.
func (k keyBase) proportion(n, d int) decimal.Decimal {
	if d <= 0 {
		return decimal.Zero
	}
	return k.points.Mul(decimal.NewFromInt(int64(n))).Div(decimal.NewFromInt(int64(d)))
}

// KeyFor builds the correctness model of q from its answer-key items. It is
// the only place the question type tag is inspected.
func KeyFor(q *models.Question) (QuestionKey, error) {
	base := keyBase{
		questionID:    q.ID,
		kind:          q.Type,
		points:        decimal.NewFromFloat(q.Points),
		negativeMarks: decimal.NewFromFloat(q.NegativeMarks),
	}

	switch q.Type {
	case models.SingleChoice, models.MultiChoice:
		return newChoiceKey(base, q), nil
	case models.FillInBlank:
		return newBlankKey(base, q), nil
	case models.Matching:
		return newMatchKey(base, q), nil
	case models.DragIntoZone, models.DragIntoText, models.DropdownInText:
		return newPlacementKey(base, q), nil
	case models.Numeric:
		return newNumericKey(base, q), nil
	case models.FreeText:
		return newTextKey(base, q), nil
	case models.Matrix:
		return newMatrixKey(base, q), nil
	case models.Ordering:
		return newOrderingKey(base, q), nil
	default:
		return nil, &UnknownQuestionTypeError{QuestionID: q.ID, Type: q.Type}
	}
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func cellKey(rowID, columnID uint) string {
	return idString(rowID) + ":" + idString(columnID)
}
