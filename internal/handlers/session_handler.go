package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/SAP-F-2025/quiz-engine/internal/services"
	"github.com/SAP-F-2025/quiz-engine/internal/utils"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	BaseHandler
	sessionService services.SessionService
}

func NewSessionHandler(sessionService services.SessionService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
	}
}

// StartSession creates and starts a session on a published quiz
// @Summary Start quiz session
// @Tags sessions
// @Accept json
// @Produce json
// @Param slug path string true "Quiz slug"
// @Param participant body services.Participant false "Participant"
// @Success 201 {object} services.SessionView
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{slug}/sessions [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	slug := c.Param("slug")
	h.LogRequest(c, "Starting quiz session", "slug", slug)

	var participant services.Participant
	if err := c.ShouldBindJSON(&participant); err != nil && !errors.Is(err, io.EOF) {
		h.RespondWithError(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request payload", err, err.Error())
		return
	}

	view, err := h.sessionService.StartQuiz(c.Request.Context(), slug, &participant)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// GetSession returns the session state, expiring it first when overdue
// @Summary Get session
// @Tags sessions
// @Produce json
// @Param token path string true "Session token"
// @Success 200 {object} services.SessionView
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{token} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	token := ParseTokenParam(c, "token")
	if token == "" {
		return
	}

	view, err := h.sessionService.Get(c.Request.Context(), token)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SubmitResponse scores and stores one answer
// @Summary Submit response
// @Tags sessions
// @Accept json
// @Produce json
// @Param token path string true "Session token"
// @Param response body services.SubmitResponseRequest true "Answer"
// @Success 200 {object} services.SubmitResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /sessions/{token}/responses [post]
func (h *SessionHandler) SubmitResponse(c *gin.Context) {
	token := ParseTokenParam(c, "token")
	if token == "" {
		return
	}

	var req services.SubmitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request payload", err, err.Error())
		return
	}

	h.LogRequest(c, "Submitting response", "question_id", req.QuestionID)

	result, err := h.sessionService.SubmitResponse(c.Request.Context(), token, &req)
	if err != nil {
		// An unscorable question still stores the response; report it with the result.
		if result != nil {
			h.handleServiceError(c, err, result)
			return
		}
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CompleteSession closes the session and returns its results
// @Summary Complete session
// @Tags sessions
// @Produce json
// @Param token path string true "Session token"
// @Success 200 {object} services.SessionResult
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{token}/complete [post]
func (h *SessionHandler) CompleteSession(c *gin.Context) {
	token := ParseTokenParam(c, "token")
	if token == "" {
		return
	}

	h.LogRequest(c, "Completing quiz session")

	result, err := h.sessionService.Complete(c.Request.Context(), token)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetResults returns the frozen results of a finished session
// @Summary Get session results
// @Tags sessions
// @Produce json
// @Param token path string true "Session token"
// @Success 200 {object} services.SessionResult
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{token}/results [get]
func (h *SessionHandler) GetResults(c *gin.Context) {
	token := ParseTokenParam(c, "token")
	if token == "" {
		return
	}

	result, err := h.sessionService.Results(c.Request.Context(), token)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSummary aggregates the current responses without closing the session
// @Summary Get running totals
// @Tags sessions
// @Produce json
// @Param token path string true "Session token"
// @Success 200 {object} scoring.Summary
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{token}/summary [get]
func (h *SessionHandler) GetSummary(c *gin.Context) {
	token := ParseTokenParam(c, "token")
	if token == "" {
		return
	}

	summary, err := h.sessionService.Aggregate(c.Request.Context(), token)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
