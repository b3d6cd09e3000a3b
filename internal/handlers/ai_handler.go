package handlers

import (
	"net/http"

	"roti-erp/internal/ai"
	"roti-erp/internal/apperr"
	"roti-erp/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AskRequest struct {
	Message string `json:"message" binding:"required,max=2000"`
}

type AssistantHandler struct {
	agent *ai.Agent
}

func NewAssistantHandler(agent *ai.Agent) *AssistantHandler {
	return &AssistantHandler{agent: agent}
}

// --- POST: /api/assistant/ask ---
func (h *AssistantHandler) Ask(c *gin.Context) {
	if !h.agent.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "unavailable", "message": "Assistant is not configured"})
		return
	}
	var req AskRequest
	if !bindJSON(c, &req) {
		return
	}

	reply, err := h.agent.Ask(c.Request.Context(), req.Message)
	if err != nil {
		logger.FromGin(c).Error("Assistant failed", zap.Error(err))
		respondError(c, apperr.Internal("Assistant failed to answer", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
