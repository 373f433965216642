package handler

import (
	"net/http"

	"charitychain/internal/service"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatSvc *service.ChatService
}

func NewChatHandler(chatSvc *service.ChatService) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc}
}

// Chat handles POST /api/chat.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	answer, err := h.chatSvc.Answer(req.Message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "assistant is unavailable right now"})
		return
	}
	c.JSON(http.StatusOK, answer)
}
