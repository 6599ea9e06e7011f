package scoring

import (
	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/shopspring/decimal"
)

// Summary is the aggregated outcome of a session.
type Summary struct {
	TotalScore float64 `json:"total_score"`
	MaxScore   float64 `json:"max_score"`
	Percentage float64 `json:"percentage"`
	Passed     bool    `json:"passed"`
	Answered   int     `json:"answered"`
	Correct    int     `json:"correct"`
}

// Aggregate sums the response scores of a session against the points of
// the quiz questions. Responses to questions outside the quiz are ignored.
// The percentage is 0 when the quiz has no points.
func Aggregate(questions []models.Question, responses []models.Response, passingScore float64) Summary {
	inQuiz := make(map[uint]struct{}, len(questions))
	maxScore := decimal.Zero
	for _, q := range questions {
		inQuiz[q.ID] = struct{}{}
		maxScore = maxScore.Add(decimal.NewFromFloat(q.Points))
	}

	var summary Summary
	total := decimal.Zero
	seen := make(map[uint]struct{}, len(responses))
	for _, r := range responses {
		if _, ok := inQuiz[r.QuestionID]; !ok {
			continue
		}
		if _, dup := seen[r.QuestionID]; dup {
			continue
		}
		seen[r.QuestionID] = struct{}{}
		total = total.Add(decimal.NewFromFloat(r.Score))
		summary.Answered++
		if r.IsCorrect {
			summary.Correct++
		}
	}

	percentage := decimal.Zero
	if maxScore.IsPositive() {
		percentage = total.Div(maxScore).Mul(decimal.NewFromInt(100)).Round(2)
	}

	summary.TotalScore = total.InexactFloat64()
	summary.MaxScore = maxScore.InexactFloat64()
	summary.Percentage = percentage.InexactFloat64()
	summary.Passed = percentage.GreaterThanOrEqual(decimal.NewFromFloat(passingScore))
	return summary
}
