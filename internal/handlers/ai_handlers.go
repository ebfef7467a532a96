package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/01moynul/storefront-golang/internal/ai"
	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/gin-gonic/gin"
)

const maxChatMessage = 1000

// ChatInput defines the structure of the JSON request body.
type ChatInput struct {
	Message string `json:"message" binding:"required"`
}

// ChatAssistant is the handler for POST /api/assistant/chat
func (h *Handlers) ChatAssistant(c *gin.Context) {
	if h.Assistant == nil {
		h.respondError(c, apperr.Unavailable("Assistant is not available", ai.ErrDisabled))
		return
	}

	var input ChatInput
	if err := bindJSON(c, &input); err != nil {
		h.respondError(c, err)
		return
	}
	msg := strings.TrimSpace(input.Message)
	if msg == "" || len(msg) > maxChatMessage {
		h.respondError(c, apperr.Validation("Message must be between 1 and 1000 characters"))
		return
	}

	reply, err := h.Assistant.Chat(c.Request.Context(), msg)
	if err != nil {
		if errors.Is(err, ai.ErrDisabled) {
			err = apperr.Unavailable("Assistant is not available", err)
		} else {
			err = apperr.Unavailable("Assistant is temporarily unavailable", err)
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": reply})
}
