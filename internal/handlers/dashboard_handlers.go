package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetMyStats is the handler for GET /api/users/stats
// It returns the counters shown on the account dashboard.
func (h *Handlers) GetMyStats(c *gin.Context) {
	stats, err := h.Users.Stats(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
