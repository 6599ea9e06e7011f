package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/quiz-engine/internal/errors"
	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/SAP-F-2025/quiz-engine/internal/scoring"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrValidationFailed = errors.New("validation failed")

	// Quiz specific errors
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuizNotPublished = errors.New("quiz is not published")
	ErrLoginRequired    = errors.New("quiz requires a logged-in participant")

	// Question specific errors
	ErrQuestionNotFound  = errors.New("question not found")
	ErrQuestionNotInQuiz = errors.New("question does not belong to the session's quiz")

	// Session specific errors
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionNotStarted   = errors.New("session has not been started")
	ErrSessionClosed       = errors.New("session is closed")
	ErrResultsNotAvailable = errors.New("results are available once the session is finished")

	// Response specific errors
	ErrResponseNotFound = errors.New("response not found")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// SessionClosedError is returned when a session in a terminal state is asked
// to change. The session and its responses are left untouched.
type SessionClosedError struct {
	SessionID uint                `json:"session_id"`
	Token     string              `json:"token"`
	State     models.SessionState `json:"state"`
}

func (e *SessionClosedError) Error() string {
	return fmt.Sprintf("session %d is %s and accepts no further changes", e.SessionID, e.State)
}

func (e *SessionClosedError) Is(target error) bool {
	return target == ErrSessionClosed
}

// InvalidTransitionError reports a state change the session machine forbids.
type InvalidTransitionError struct {
	SessionID uint                `json:"session_id"`
	From      models.SessionState `json:"from"`
	To        models.SessionState `json:"to"`
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("session %d cannot move from %s to %s", e.SessionID, e.From, e.To)
}

// ===== ERROR HELPERS =====

func newSessionClosedError(session *models.Session) *SessionClosedError {
	return &SessionClosedError{
		SessionID: session.ID,
		Token:     session.Token,
		State:     session.State,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrQuizNotPublished) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrResponseNotFound)
}

// IsSessionClosed checks if error reports a session in a terminal state
func IsSessionClosed(err error) bool {
	return errors.Is(err, ErrSessionClosed)
}

// IsConflict checks if error represents a request the session state forbids
func IsConflict(err error) bool {
	var transition *InvalidTransitionError
	return IsSessionClosed(err) ||
		errors.Is(err, ErrSessionNotStarted) ||
		errors.Is(err, ErrResultsNotAvailable) ||
		errors.As(err, &transition)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBadRequest checks if error was caused by the request itself
func IsBadRequest(err error) bool {
	return IsValidation(err) || errors.Is(err, ErrQuestionNotInQuiz)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrLoginRequired)
}

// IsUnprocessable checks if error is a question configuration defect
func IsUnprocessable(err error) bool {
	return scoring.IsUnknownQuestionType(err)
}
