package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReadinessChecker reports whether the classifier loaded.
type ReadinessChecker interface {
	ModelReady() bool
}

// Health reports liveness and whether predictions can be served.
func Health(checker ReadinessChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"code":    http.StatusOK,
			"message": "Social Anxiety Detection API is running",
			"data":    gin.H{"model_ready": checker.ModelReady()},
		})
	}
}
