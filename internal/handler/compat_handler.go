package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mindcare-go/internal/model"
	"mindcare-go/internal/service"
	"mindcare-go/pkg/log"
)

// CompatHandler serves the unversioned paths that the Streamlit app and the
// React frontend call. Bodies are bare JSON without the {code,message,data}
// envelope, and errors are {"detail": "..."}.
type CompatHandler struct {
	analysis service.AnalysisService
	history  service.HistoryService
}

// NewCompatHandler creates a new CompatHandler.
func NewCompatHandler(analysis service.AnalysisService, history service.HistoryService) *CompatHandler {
	return &CompatHandler{analysis: analysis, history: history}
}

func detail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}

// Predict handles POST /predict and returns the Analysis itself.
func (h *CompatHandler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "invalid request payload")
		return
	}
	if req.UserID == "" {
		req.UserID = model.DefaultUserID
	}

	analysis, err := h.analysis.Analyze(c.Request.Context(), req.Text, req.UserID)
	switch {
	case errors.Is(err, service.ErrModelUnavailable):
		detail(c, http.StatusServiceUnavailable, "Model not loaded")
	case errors.Is(err, service.ErrInvalidInput):
		detail(c, http.StatusBadRequest, "Input text is empty or invalid")
	case err != nil:
		log.Error("compat Predict: analysis failed", err)
		detail(c, http.StatusInternalServerError, "analysis failed")
	default:
		c.JSON(http.StatusOK, analysis)
	}
}

// SaveChat handles POST /history.
func (h *CompatHandler) SaveChat(c *gin.Context) {
	var req SaveChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "invalid request payload")
		return
	}
	id, err := h.history.SaveRecord(c.Request.Context(), req.UserID, req.Message, req.Response, req.AnxietyLevel, req.Suggestions)
	if errors.Is(err, service.ErrInvalidInput) {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Error("compat SaveChat: failed to save chat", err)
		detail(c, http.StatusInternalServerError, "failed to save chat")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Chat saved successfully", "id": id})
}

// GetHistory returns the user's records as a bare array.
func (h *CompatHandler) GetHistory(c *gin.Context) {
	c.JSON(http.StatusOK, h.history.ListHistory(c.Request.Context(), c.Param("user_id")))
}

// DeleteChat removes one record.
func (h *CompatHandler) DeleteChat(c *gin.Context) {
	deleted, err := h.history.DeleteRecord(c.Request.Context(), c.Param("chat_id"))
	if err != nil {
		log.Error("compat DeleteChat: database delete failed", err)
		detail(c, http.StatusInternalServerError, "failed to delete record")
		return
	}
	if !deleted {
		detail(c, http.StatusNotFound, "Record not found or invalid ID")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Record deleted successfully"})
}

// GetInsights returns {"low","moderate","high"}.
func (h *CompatHandler) GetInsights(c *gin.Context) {
	c.JSON(http.StatusOK, h.history.GetInsights(c.Request.Context(), c.Param("user_id")))
}
