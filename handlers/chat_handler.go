package handlers

import (
	"errors"
	"net/http"

	"nyayamitra-backend/markdown"
	"nyayamitra-backend/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles HTTP requests for question answering
type ChatHandler struct {
	chatService *service.ChatService
	production  bool
}

// NewChatHandler creates a new chat handler. In production the detail of
// internal errors is withheld from responses.
func NewChatHandler(chatService *service.ChatService, production bool) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		production:  production,
	}
}

// AskRequest represents the request body for a question
type AskRequest struct {
	Question string `json:"question" binding:"required"`
	// Blocks asks for the answer parsed into renderable blocks as well.
	Blocks bool `json:"blocks"`
}

// Ask handles POST /api/chat
func (h *ChatHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.chatService.Answer(c.Request.Context(), req.Question)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyQuestion):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_QUESTION",
					"message": "Question must not be empty",
				},
			})
		case errors.Is(err, service.ErrCompleterMissing):
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CONFIGURATION_ERROR",
					"message": "Answer generation is not configured",
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "GENERATION_FAILED",
					"message": h.errorMessage(err, "Failed to generate an answer"),
				},
			})
		}
		return
	}

	data := gin.H{
		"answer":  result.Answer,
		"sources": result.Sources,
	}
	if req.Blocks {
		data["blocks"] = markdown.Parse(result.Answer)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func (h *ChatHandler) errorMessage(err error, fallback string) string {
	if h.production {
		return fallback
	}
	return err.Error()
}
