// Package handler contains the gin HTTP handlers.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mindcare-go/internal/model"
	"mindcare-go/internal/service"
	"mindcare-go/pkg/log"
)

// AnalysisHandler serves the prediction endpoint.
type AnalysisHandler struct {
	service service.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(service service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{service: service}
}

// PredictRequest is the body of POST /predict.
type PredictRequest struct {
	Text   string `json:"text"`
	UserID string `json:"user_id"`
}

// Predict analyses one statement.
func (h *AnalysisHandler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Predict: invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "invalid request payload", "data": nil})
		return
	}
	if req.UserID == "" {
		req.UserID = model.DefaultUserID
	}

	analysis, err := h.service.Analyze(c.Request.Context(), req.Text, req.UserID)
	switch {
	case errors.Is(err, service.ErrModelUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"code": http.StatusServiceUnavailable, "message": err.Error(), "data": nil})
		return
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error(), "data": nil})
		return
	case err != nil:
		log.Error("Predict: analysis failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "analysis failed", "data": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": analysis})
}
