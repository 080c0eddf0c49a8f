package handler

import (
	"net/http"

	"assistant/internal/service"

	"github.com/gin-gonic/gin"
)

// SessionHandler handles session lifecycle HTTP requests
type SessionHandler struct {
	chatService *service.ChatService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(chatService *service.ChatService) *SessionHandler {
	return &SessionHandler{
		chatService: chatService,
	}
}

// Suggestions handles GET /api/v1/sessions/:id/suggestions
func (h *SessionHandler) Suggestions(c *gin.Context) {
	sessionID := c.Param("id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing session ID"})
		return
	}

	suggestions := h.chatService.Suggestions(sessionID)
	c.JSON(http.StatusOK, gin.H{
		"session_id":  sessionID,
		"suggestions": suggestions,
	})
}

// Clear handles POST /api/v1/sessions/:id/clear
func (h *SessionHandler) Clear(c *gin.Context) {
	sessionID := c.Param("id")
	if !h.chatService.ClearSession(sessionID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Delete handles DELETE /api/v1/sessions/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	sessionID := c.Param("id")
	if !h.chatService.DeleteSession(sessionID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
