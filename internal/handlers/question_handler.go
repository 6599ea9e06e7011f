package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/SAP-F-2025/quiz-engine/internal/services"
	"github.com/SAP-F-2025/quiz-engine/internal/utils"
	"github.com/gin-gonic/gin"
)

// QuestionHandler exposes scoring operations on questions and stored responses
type QuestionHandler struct {
	BaseHandler
	responseService services.ResponseService
}

type EvaluateRequest struct {
	Answer json.RawMessage `json:"answer"`
}

func NewQuestionHandler(responseService services.ResponseService, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		responseService: responseService,
	}
}

// EvaluateAnswer scores an answer without storing it
// @Summary Dry-run evaluation
// @Tags questions
// @Accept json
// @Produce json
// @Param id path uint true "Question ID"
// @Param answer body EvaluateRequest true "Answer"
// @Success 200 {object} services.EvaluationResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /questions/{id}/evaluate [post]
func (h *QuestionHandler) EvaluateAnswer(c *gin.Context) {
	questionID := ParseIDParam(c, "id")
	if questionID == 0 {
		return
	}

	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request payload", err, err.Error())
		return
	}

	result, err := h.responseService.Evaluate(c.Request.Context(), questionID, req.Answer)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RecomputeQuestion re-scores every stored response to a question
// @Summary Re-score question
// @Tags questions
// @Produce json
// @Param id path uint true "Question ID"
// @Success 200 {object} SuccessResponse{data=services.RescoreSummary}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id}/recompute [post]
func (h *QuestionHandler) RecomputeQuestion(c *gin.Context) {
	questionID := ParseIDParam(c, "id")
	if questionID == 0 {
		return
	}

	h.LogRequest(c, "Re-scoring question", "question_id", questionID)

	summary, err := h.responseService.RecomputeQuestion(c.Request.Context(), questionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Question re-scored", summary)
}

// RecomputeResponse re-scores one stored response
// @Summary Re-score response
// @Tags responses
// @Produce json
// @Param id path uint true "Response ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} ErrorResponse
// @Router /responses/{id}/recompute [post]
func (h *QuestionHandler) RecomputeResponse(c *gin.Context) {
	responseID := ParseIDParam(c, "id")
	if responseID == 0 {
		return
	}

	h.LogRequest(c, "Re-scoring response", "response_id", responseID)

	response, err := h.responseService.Recompute(c.Request.Context(), responseID)
	if err != nil {
		if response != nil {
			h.handleServiceError(c, err, response)
			return
		}
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
