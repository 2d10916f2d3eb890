package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const leaderboardSize = 100

// Leaderboard returns the top creators by lifetime likes, 1-based ranks.
func (h *Handler) Leaderboard(c *gin.Context) {
	limit := leaderboardSize
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= leaderboardSize {
			limit = n
		}
	}

	entries, err := h.Ranking.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

// Stats returns the platform aggregates from one consistent snapshot.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.Ranking.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
