package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"mindcare-go/internal/model"
	"mindcare-go/pkg/log"
)

const (
	defaultTrendDays = 30
	maxTrendDays     = 365
)

// TrendSource aggregates tier counts over a time window.
type TrendSource interface {
	Trend(ctx context.Context, userID string, since time.Time) (model.Insights, error)
}

// TrendHandler serves windowed tier counts from the search index.
type TrendHandler struct {
	source TrendSource
	now    func() time.Time
}

// NewTrendHandler creates a new TrendHandler.
func NewTrendHandler(source TrendSource) *TrendHandler {
	return &TrendHandler{source: source, now: time.Now}
}

// GetTrend handles GET /trends/:user_id?days=N.
func (h *TrendHandler) GetTrend(c *gin.Context) {
	days := defaultTrendDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxTrendDays {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "days must be between 1 and 365", "data": nil})
			return
		}
		days = n
	}

	userID := c.Param("user_id")
	since := h.now().UTC().AddDate(0, 0, -days)
	insights, err := h.source.Trend(c.Request.Context(), userID, since)
	if err != nil {
		log.Errorw("GetTrend: trend query failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "failed to load trend", "data": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": gin.H{
		"days":     days,
		"since":    since.Format(time.RFC3339),
		"insights": insights,
	}})
}
