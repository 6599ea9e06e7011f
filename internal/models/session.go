package models

import (
	"time"

	"gorm.io/datatypes"
)

type SessionState string

const (
	SessionDraft      SessionState = "draft"
	SessionInProgress SessionState = "in_progress"
	SessionCompleted  SessionState = "completed"
	SessionExpired    SessionState = "expired"
)

func (s SessionState) IsTerminal() bool {
	return s == SessionCompleted || s == SessionExpired
}

type Session struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	QuizID uint   `json:"quiz_id" gorm:"not null;index"`
	Token  string `json:"token" gorm:"not null;size:36;uniqueIndex"`

	// Participant: a registered user, or a guest identified by name/email
	UserID           *string `json:"user_id,omitempty" gorm:"size:64;index"`
	ParticipantName  *string `json:"participant_name,omitempty" gorm:"size:100"`
	ParticipantEmail *string `json:"participant_email,omitempty" gorm:"size:255"`

	State            SessionState `json:"state" gorm:"not null;size:20;default:draft;index"`
	StartTime        *time.Time   `json:"start_time"`
	EndTime          *time.Time   `json:"end_time"`
	TimeLimitMinutes int          `json:"time_limit_minutes"` // copied from the quiz at start
	TimeSpentSeconds int          `json:"time_spent_seconds"`

	TotalScore float64 `json:"total_score"`
	MaxScore   float64 `json:"max_score"`
	Percentage float64 `json:"percentage"`
	Passed     bool    `json:"passed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Responses []Response `json:"responses,omitempty" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

func (Session) TableName() string {
	return "quiz_sessions"
}

// Deadline returns when the session runs out of time, or nil when the
// session has not started or has no time limit.
func (s *Session) Deadline() *time.Time {
	if s.StartTime == nil || s.TimeLimitMinutes <= 0 {
		return nil
	}
	deadline := s.StartTime.Add(time.Duration(s.TimeLimitMinutes) * time.Minute)
	return &deadline
}

// IsOverdue reports whether an in-progress session has passed its deadline.
func (s *Session) IsOverdue(now time.Time) bool {
	deadline := s.Deadline()
	return s.State == SessionInProgress && deadline != nil && now.After(*deadline)
}

// Participant returns the best available display name.
func (s *Session) Participant() string {
	switch {
	case s.ParticipantName != nil && *s.ParticipantName != "":
		return *s.ParticipantName
	case s.UserID != nil:
		return *s.UserID
	case s.ParticipantEmail != nil:
		return *s.ParticipantEmail
	default:
		return "guest"
	}
}

// Response is the scored answer of one session to one question.
type Response struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	SessionID  uint           `json:"session_id" gorm:"not null;uniqueIndex:idx_response_session_question"`
	QuestionID uint           `json:"question_id" gorm:"not null;uniqueIndex:idx_response_session_question;index"`
	RawPayload datatypes.JSON `json:"raw_payload" gorm:"type:jsonb"`

	Score       float64    `json:"score"`
	MaxScore    float64    `json:"max_score"`
	IsCorrect   bool       `json:"is_correct"`
	Feedback    *string    `json:"feedback,omitempty" gorm:"type:text"`
	EvaluatedAt *time.Time `json:"evaluated_at"`

	SubmittedAt time.Time `json:"submitted_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Response) TableName() string {
	return "quiz_responses"
}

func (r *Response) IsEvaluated() bool {
	return r.EvaluatedAt != nil
}
