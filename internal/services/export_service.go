package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/SAP-F-2025/quiz-engine/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const (
	ResultsSheet   = "Results"
	ResponsesSheet = "Responses"
	QuestionsSheet = "Questions"

	exportTimeFormat = "2006-01-02 15:04:05"
)

// ExportService renders quiz results as spreadsheets.
type ExportService interface {
	// ExportQuizResults returns an xlsx workbook with one row per session,
	// one row per response and per-question statistics.
	ExportQuizResults(ctx context.Context, quizID uint, filters repositories.SessionFilters) ([]byte, error)
}

type exportService struct {
	repo   repositories.Repository
	store  *quizStore
	logger *slog.Logger
}

func (s *exportService) ExportQuizResults(ctx context.Context, quizID uint, filters repositories.SessionFilters) ([]byte, error) {
	s.logger.Info("Exporting quiz results", "quiz_id", quizID)

	quiz, err := s.store.load(ctx, quizID)
	if err != nil {
		return nil, err
	}

	sessions, _, err := s.repo.Session().GetByQuiz(ctx, nil, quizID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz sessions: %w", err)
	}

	ids := make([]uint, len(sessions))
	for i, session := range sessions {
		ids[i] = session.ID
	}
	responses, err := s.repo.Response().GetBySessions(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get session responses: %w", err)
	}

	stats, err := s.repo.Response().GetQuestionStats(ctx, nil, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question statistics: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeResultsSheet(f, sessions); err != nil {
		return nil, err
	}
	if err := writeResponsesSheet(f, sessions, responses); err != nil {
		return nil, err
	}
	if err := writeQuestionsSheet(f, quiz, stats); err != nil {
		return nil, err
	}

	// excelize always starts with Sheet1
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}
	if index, err := f.GetSheetIndex(ResultsSheet); err == nil {
		f.SetActiveSheet(index)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Quiz results exported",
		"quiz_id", quizID,
		"sessions", len(sessions),
		"responses", len(responses))
	return buf.Bytes(), nil
}

func writeResultsSheet(f *excelize.File, sessions []*models.Session) error {
	rows := [][]interface{}{{
		"Token", "Participant", "Email", "State", "Started At", "Ended At",
		"Total Score", "Max Score", "Percentage", "Result", "Time Spent (seconds)",
	}}
	for _, session := range sessions {
		result := ""
		if session.State.IsTerminal() {
			result = "Fail"
			if session.Passed {
				result = "Pass"
			}
		}
		email := ""
		if session.ParticipantEmail != nil {
			email = *session.ParticipantEmail
		}
		rows = append(rows, []interface{}{
			session.Token,
			session.Participant(),
			email,
			string(session.State),
			formatTime(session.StartTime),
			formatTime(session.EndTime),
			session.TotalScore,
			session.MaxScore,
			session.Percentage,
			result,
			session.TimeSpentSeconds,
		})
	}
	return writeSheet(f, ResultsSheet, rows)
}

func writeResponsesSheet(f *excelize.File, sessions []*models.Session, responses []models.Response) error {
	tokens := make(map[uint]string, len(sessions))
	for _, session := range sessions {
		tokens[session.ID] = session.Token
	}

	rows := [][]interface{}{{
		"Token", "Question ID", "Score", "Max Score", "Correct", "Feedback", "Submitted At",
	}}
	for _, response := range responses {
		feedback := ""
		if response.Feedback != nil {
			feedback = *response.Feedback
		}
		rows = append(rows, []interface{}{
			tokens[response.SessionID],
			response.QuestionID,
			response.Score,
			response.MaxScore,
			response.IsCorrect,
			feedback,
			response.SubmittedAt.Format(exportTimeFormat),
		})
	}
	return writeSheet(f, ResponsesSheet, rows)
}

func writeQuestionsSheet(f *excelize.File, quiz *models.Quiz, stats []repositories.QuestionResponseStats) error {
	byQuestion := make(map[uint]repositories.QuestionResponseStats, len(stats))
	for _, stat := range stats {
		byQuestion[stat.QuestionID] = stat
	}

	rows := [][]interface{}{{
		"Question ID", "Type", "Text", "Points", "Responses", "Correct", "Average Score",
	}}
	for _, question := range quiz.Questions {
		stat := byQuestion[question.ID]
		rows = append(rows, []interface{}{
			question.ID,
			string(question.Type),
			question.Text,
			question.Points,
			stat.ResponseCount,
			stat.CorrectCount,
			stat.AverageScore,
		})
	}
	return writeSheet(f, QuestionsSheet, rows)
}

func writeSheet(f *excelize.File, sheet string, rows [][]interface{}) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create Excel sheet %s: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, sheet, err)
		}
	}
	return nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(exportTimeFormat)
}
