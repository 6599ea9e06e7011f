package handlers

import (
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/quiz-engine/internal/services"
	"github.com/SAP-F-2025/quiz-engine/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type QuizHandler struct {
	BaseHandler
	exportService services.ExportService
}

func NewQuizHandler(exportService services.ExportService, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler:   NewBaseHandler(logger),
		exportService: exportService,
	}
}

// ExportResults downloads the quiz results as an xlsx workbook
// @Summary Export quiz results
// @Tags quizzes
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Quiz ID"
// @Param state query string false "Session state"
// @Param sort_by query string false "created_at, total_score, percentage or end_time"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id}/results/export [get]
func (h *QuizHandler) ExportResults(c *gin.Context) {
	quizID := ParseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	h.LogRequest(c, "Exporting quiz results", "quiz_id", quizID)

	data, err := h.exportService.ExportQuizResults(c.Request.Context(), quizID, parseSessionFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="quiz-%d-results.xlsx"`, quizID))
	c.Data(http.StatusOK, xlsxContentType, data)
}
