package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/SAP-F-2025/quiz-engine/internal/repositories"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ParseTokenParam reads a session token path parameter. It writes a 400 and
// returns "" when the value is not a UUID.
func ParseTokenParam(c *gin.Context, param string) string {
	token := strings.TrimSpace(c.Param(param))
	if err := uuid.Validate(token); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "must be a UUID",
			Code:    CodeInvalidRequest,
		})
		return ""
	}
	return token
}

// ParseIDParam reads a numeric path parameter. It writes a 400 and returns
// 0 when the value is not a positive integer.
func ParseIDParam(c *gin.Context, param string) uint {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "must be a positive integer",
			Code:    CodeInvalidRequest,
		})
		return 0
	}
	return uint(id)
}

// parseSessionFilters reads state, date range, sort and pagination from the
// query string. Unparseable values are ignored.
func parseSessionFilters(c *gin.Context) repositories.SessionFilters {
	filters := repositories.SessionFilters{
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if state := models.SessionState(c.Query("state")); state != "" {
		filters.State = &state
	}
	if from, err := time.Parse(time.RFC3339, c.Query("date_from")); err == nil {
		filters.DateFrom = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("date_to")); err == nil {
		filters.DateTo = &to
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
		filters.Offset = offset
	}
	return filters
}
