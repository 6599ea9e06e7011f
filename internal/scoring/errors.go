package scoring

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
)

// MalformedAnswerError reports a payload that cannot take the shape the
// question type expects. It is recovered locally as a zero score.
type MalformedAnswerError struct {
	QuestionID uint
	Type       models.QuestionType
	Reason     string
	Err        error
}

func (e *MalformedAnswerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed answer for question %d (%s): %s: %v", e.QuestionID, e.Type, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed answer for question %d (%s): %s", e.QuestionID, e.Type, e.Reason)
}

func (e *MalformedAnswerError) Unwrap() error {
	return e.Err
}

// UnknownQuestionTypeError is a configuration defect: the question carries a
// type tag no rule exists for.
type UnknownQuestionTypeError struct {
	QuestionID uint
	Type       models.QuestionType
}

func (e *UnknownQuestionTypeError) Error() string {
	return fmt.Sprintf("question %d has unknown type %q", e.QuestionID, e.Type)
}

// EmptyKeyError reports a question whose answer key has nothing to score
// against, e.g. a fill-in-blank question without blanks.
type EmptyKeyError struct {
	QuestionID uint
	Type       models.QuestionType
}

func (e *EmptyKeyError) Error() string {
	return fmt.Sprintf("question %d (%s) has an empty answer key", e.QuestionID, e.Type)
}

func IsMalformedAnswer(err error) bool {
	var target *MalformedAnswerError
	return errors.As(err, &target)
}

func IsUnknownQuestionType(err error) bool {
	var target *UnknownQuestionTypeError
	return errors.As(err, &target)
}

func IsEmptyKey(err error) bool {
	var target *EmptyKeyError
	return errors.As(err, &target)
}
