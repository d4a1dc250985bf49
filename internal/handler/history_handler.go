package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mindcare-go/internal/service"
	"mindcare-go/pkg/log"
)

// HistoryHandler serves chat history and insights.
type HistoryHandler struct {
	service service.HistoryService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(service service.HistoryService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

// SaveChatRequest is the body of POST /history.
type SaveChatRequest struct {
	UserID       string   `json:"user_id"`
	Message      string   `json:"message"`
	Response     string   `json:"response"`
	AnxietyLevel string   `json:"anxiety_level" binding:"required"`
	Suggestions  []string `json:"suggestions"`
}

// SaveChat stores a precomputed interaction.
func (h *HistoryHandler) SaveChat(c *gin.Context) {
	var req SaveChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("SaveChat: invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "invalid request payload", "data": nil})
		return
	}

	id, err := h.service.SaveRecord(c.Request.Context(), req.UserID, req.Message, req.Response, req.AnxietyLevel, req.Suggestions)
	if errors.Is(err, service.ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error(), "data": nil})
		return
	}
	if err != nil {
		log.Error("SaveChat: failed to save chat", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "failed to save chat", "data": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "Chat saved successfully", "data": gin.H{"id": id}})
}

// GetHistory lists a user's records.
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	records := h.service.ListHistory(c.Request.Context(), c.Param("user_id"))
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": records})
}

// DeleteChat removes one record by id.
func (h *HistoryHandler) DeleteChat(c *gin.Context) {
	id := c.Param("chat_id")
	deleted, err := h.service.DeleteRecord(c.Request.Context(), id)
	if err != nil {
		log.Error("DeleteChat: database delete failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "failed to delete record", "data": nil})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "Record not found or invalid ID", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "Record deleted successfully", "data": nil})
}

// GetInsights returns per-tier counts for a user.
func (h *HistoryHandler) GetInsights(c *gin.Context) {
	insights := h.service.GetInsights(c.Request.Context(), c.Param("user_id"))
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": insights})
}
