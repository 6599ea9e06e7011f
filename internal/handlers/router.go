package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/SAP-F-2025/quiz-engine/internal/services"
	"github.com/SAP-F-2025/quiz-engine/internal/utils"
	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MetricsExporter serves the Prometheus scrape endpoint.
type MetricsExporter interface {
	MetricsMiddleware() gin.HandlerFunc
	PrometheusHandler() gin.HandlerFunc
}

type HandlerManager struct {
	sessionHandler  *SessionHandler
	questionHandler *QuestionHandler
	quizHandler     *QuizHandler

	db      Pinger
	metrics MetricsExporter
	logger  utils.Logger
}

func NewHandlerManager(
	svc *services.Services,
	db Pinger,
	metrics MetricsExporter,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		sessionHandler:  NewSessionHandler(svc.Session, logger),
		questionHandler: NewQuestionHandler(svc.Response, logger),
		quizHandler:     NewQuizHandler(svc.Export, logger),
		db:              db,
		metrics:         metrics,
		logger:          logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.Use(utils.ContextLogger(hm.logger))
	if hm.metrics != nil {
		router.Use(hm.metrics.MetricsMiddleware())
		router.GET("/metrics", hm.metrics.PrometheusHandler())
	}

	router.GET("/health", hm.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Quiz routes
		quizzes := v1.Group("/quizzes")
		{
			quizzes.POST("/:slug/sessions", hm.sessionHandler.StartSession)
			quizzes.GET("/:slug/results/export", hm.exportResults)
		}

		// Session routes
		sessions := v1.Group("/sessions")
		{
			sessions.GET("/:token", hm.sessionHandler.GetSession)
			sessions.POST("/:token/responses", hm.sessionHandler.SubmitResponse)
			sessions.POST("/:token/complete", hm.sessionHandler.CompleteSession)
			sessions.GET("/:token/results", hm.sessionHandler.GetResults)
			sessions.GET("/:token/summary", hm.sessionHandler.GetSummary)
		}

		// Scoring routes
		questions := v1.Group("/questions")
		{
			questions.POST("/:id/evaluate", hm.questionHandler.EvaluateAnswer)
			questions.POST("/:id/recompute", hm.questionHandler.RecomputeQuestion)
		}

		responses := v1.Group("/responses")
		{
			responses.POST("/:id/recompute", hm.questionHandler.RecomputeResponse)
		}
	}
}

// exportResults adapts the shared :slug segment, which holds the quiz id on
// the export route.
func (hm *HandlerManager) exportResults(c *gin.Context) {
	for i := range c.Params {
		if c.Params[i].Key == "slug" {
			c.Params = append(c.Params, gin.Param{Key: "id", Value: c.Params[i].Value})
			break
		}
	}
	hm.quizHandler.ExportResults(c)
}

// HealthCheck reports whether the database answers a ping
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	if hm.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		if err := hm.db.Ping(ctx); err != nil {
			utils.GetLoggerFromContext(c, hm.logger).LogError(err, "Health check failed")
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{
				Message: "Database unavailable",
				Code:    CodeServiceUnavailable,
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "quiz-engine",
	})
}
