package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the kind of quiz event
type EventType string

const (
	// Session events
	EventSessionStarted   EventType = "session.started"
	EventSessionCompleted EventType = "session.completed"
	EventSessionExpired   EventType = "session.expired"

	// Scoring events
	EventResponseScored   EventType = "response.scored"
	EventQuestionRescored EventType = "question.rescored"
)

const (
	eventSource  = "quiz-engine"
	eventVersion = "1.0"
)

// Event is the envelope for all quiz events
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Session event payloads

type SessionStartedEvent struct {
	SessionID   uint      `json:"session_id"`
	Token       string    `json:"token"`
	QuizID      uint      `json:"quiz_id"`
	QuizTitle   string    `json:"quiz_title"`
	Participant string    `json:"participant"`
	StartedAt   time.Time `json:"started_at"`
	TimeLimit   *int      `json:"time_limit,omitempty"` // minutes
}

// SessionFinishedEvent is the payload of session.completed and
// session.expired.
type SessionFinishedEvent struct {
	SessionID        uint      `json:"session_id"`
	QuizID           uint      `json:"quiz_id"`
	Participant      string    `json:"participant"`
	FinishedAt       time.Time `json:"finished_at"`
	TotalScore       float64   `json:"total_score"`
	MaxScore         float64   `json:"max_score"`
	Percentage       float64   `json:"percentage"`
	Passed           bool      `json:"passed"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
}

// Scoring event payloads

type ResponseScoredEvent struct {
	SessionID  uint    `json:"session_id"`
	QuestionID uint    `json:"question_id"`
	ResponseID uint    `json:"response_id"`
	Score      float64 `json:"score"`
	MaxScore   float64 `json:"max_score"`
	IsCorrect  bool    `json:"is_correct"`
	Outcome    string  `json:"outcome"`
}

type QuestionRescoredEvent struct {
	QuestionID        uint      `json:"question_id"`
	ResponsesRescored int       `json:"responses_rescored"`
	SessionsUpdated   int       `json:"sessions_updated"`
	RescoredAt        time.Time `json:"rescored_at"`
}

// Event factory functions

func newEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

func NewSessionStartedEvent(payload SessionStartedEvent) *Event {
	return newEvent(EventSessionStarted, payload)
}

func NewSessionCompletedEvent(payload SessionFinishedEvent) *Event {
	return newEvent(EventSessionCompleted, payload)
}

func NewSessionExpiredEvent(payload SessionFinishedEvent) *Event {
	return newEvent(EventSessionExpired, payload)
}

func NewResponseScoredEvent(payload ResponseScoredEvent) *Event {
	return newEvent(EventResponseScored, payload)
}

func NewQuestionRescoredEvent(payload QuestionRescoredEvent) *Event {
	return newEvent(EventQuestionRescored, payload)
}

// GenerateEventID returns a new random event id
func GenerateEventID() string {
	return uuid.NewString()
}
