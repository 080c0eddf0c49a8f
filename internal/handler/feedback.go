package handler

import (
	"net/http"

	"assistant/internal/model"
	"assistant/internal/service"

	"github.com/gin-gonic/gin"
)

// FeedbackHandler handles feedback-related HTTP requests
type FeedbackHandler struct {
	chatService *service.ChatService
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(chatService *service.ChatService) *FeedbackHandler {
	return &FeedbackHandler{
		chatService: chatService,
	}
}

// Submit handles POST /api/v1/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req model.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	// Validate action
	validActions := map[string]bool{
		"helpful":            true,
		"unhelpful":          true,
		"clicked_suggestion": true,
	}

	if !validActions[req.Action] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action. Must be one of: helpful, unhelpful, clicked_suggestion"})
		return
	}

	err := h.chatService.LogFeedback(c.Request.Context(), req.SessionID, req.MessageID, req.Action)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log feedback: " + err.Error()})
		return
	}

	response := model.FeedbackResponse{
		Success: true,
		Message: "Feedback logged successfully",
	}

	c.JSON(http.StatusOK, response)
}
