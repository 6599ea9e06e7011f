package scoring

import (
	"errors"
	"log/slog"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/shopspring/decimal"
)

// Evaluation outcomes reported to a Recorder.
const (
	OutcomeCorrect     = "correct"
	OutcomePartial     = "partial"
	OutcomeIncorrect   = "incorrect"
	OutcomeUnanswered  = "unanswered"
	OutcomeMalformed   = "malformed"
	OutcomeEmptyKey    = "empty_key"
	OutcomeUnknownType = "unknown_type"
)

// Recorder observes evaluation outcomes, e.g. for metrics.
type Recorder interface {
	ObserveEvaluation(questionType models.QuestionType, outcome string)
}

// Result is the outcome of evaluating one answer against one question.
type Result struct {
	QuestionID uint                `json:"question_id"`
	Type       models.QuestionType `json:"type"`
	Score      float64             `json:"score"`
	MaxScore   float64             `json:"max_score"`
	IsCorrect  bool                `json:"is_correct"`
	Outcome    string              `json:"outcome"`
	Feedback   string              `json:"feedback,omitempty"`

	// Issue holds a recovered *MalformedAnswerError or *EmptyKeyError.
	Issue error `json:"-"`
}

type Engine struct {
	logger    *slog.Logger
	precision int32
	recorder  Recorder
}

type Option func(*Engine)

// WithPrecision sets the number of decimal places scores are rounded to.
func WithPrecision(places int32) Option {
	return func(e *Engine) { e.precision = places }
}

func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

func NewEngine(logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{logger: logger, precision: 2}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Evaluate scores raw against q. The only error returned is
// *UnknownQuestionTypeError; every other failure degrades to a zero score
// with a feedback note.
func (e *Engine) Evaluate(q *models.Question, raw []byte) (Result, error) {
	key, err := KeyFor(q)
	if err != nil {
		e.logger.Error("Cannot evaluate question",
			"question_id", q.ID,
			"type", q.Type,
			"error", err)
		e.record(q.Type, OutcomeUnknownType)
		return Result{
			QuestionID: q.ID,
			Type:       q.Type,
			MaxScore:   q.Points,
			Outcome:    OutcomeUnknownType,
			Feedback:   "This question cannot be scored automatically.",
		}, err
	}
	return e.Score(key, raw), nil
}

// Score evaluates raw against an already built key.
func (e *Engine) Score(key QuestionKey, raw []byte) Result {
	points := key.Points()
	res := Result{QuestionID: key.QuestionID(), Type: key.Type(), MaxScore: points.InexactFloat64()}

	if key.size() == 0 {
		issue := &EmptyKeyError{QuestionID: key.QuestionID(), Type: key.Type()}
		e.logger.Warn("Question has an empty answer key, scoring zero",
			"question_id", key.QuestionID(),
			"type", key.Type())
		res.Outcome = OutcomeEmptyKey
		res.Feedback = "This question has no answer key yet."
		res.Issue = issue
		e.record(key.Type(), res.Outcome)
		return res
	}

	answer, err := Normalize(key, raw)
	if err != nil {
		e.logger.Info("Malformed answer payload, scoring zero",
			"question_id", key.QuestionID(),
			"type", key.Type(),
			"error", err)
		res.Outcome = OutcomeMalformed
		res.Feedback = "The submitted answer could not be read."
		var malformed *MalformedAnswerError
		if errors.As(err, &malformed) {
			res.Issue = malformed
		} else {
			res.Issue = key.malformed("unexpected payload", err)
		}
		e.record(key.Type(), res.Outcome)
		return res
	}

	if answer.Empty() {
		res.Outcome = OutcomeUnanswered
		e.record(key.Type(), res.Outcome)
		return res
	}

	earned := clamp(key.score(answer), points)
	full := points.IsPositive() && earned.GreaterThanOrEqual(points)
	score := points
	if !full {
		// Partial credit never rounds up to the full mark.
		score = earned.Round(e.precision)
		if score.GreaterThanOrEqual(points) {
			score = earned.RoundFloor(e.precision)
		}
	}

	res.Score = score.InexactFloat64()
	res.IsCorrect = full
	switch {
	case res.IsCorrect:
		res.Outcome = OutcomeCorrect
	case score.IsPositive():
		res.Outcome = OutcomePartial
	default:
		res.Outcome = OutcomeIncorrect
	}
	e.record(key.Type(), res.Outcome)
	return res
}

func (e *Engine) record(questionType models.QuestionType, outcome string) {
	if e.recorder != nil {
		e.recorder.ObserveEvaluation(questionType, outcome)
	}
}

// clamp bounds v to [0, limit].
func clamp(v, limit decimal.Decimal) decimal.Decimal {
	if v.IsNegative() || limit.IsNegative() {
		return decimal.Zero
	}
	if v.GreaterThan(limit) {
		return limit
	}
	return v
}
