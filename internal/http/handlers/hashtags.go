package handlers

import (
	"net/http"

	"aura_avatar/internal/prompt"

	"github.com/gin-gonic/gin"
)

type hashtagRequest struct {
	ArtStyle string `json:"art_style"`
	Gender   string `json:"gender"`
	Age      string `json:"age"`
}

// Hashtags derives share hashtags from the given traits. Deterministic, no
// vendor call.
func (h *Handler) Hashtags(c *gin.Context) {
	var req hashtagRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hashtags": prompt.Hashtags(req.ArtStyle, req.Gender, req.Age),
	})
}
