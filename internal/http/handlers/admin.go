package handlers

import (
	"net/http"

	"aura_avatar/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h *Handler) requireAdmin(c *gin.Context) (int64, bool) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return 0, false
	}

	user, err := h.Accounts.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return 0, false
	}
	if !user.IsAdmin() {
		respondError(c, domain.ErrForbidden)
		return 0, false
	}
	return userID, true
}

type featureRequest struct {
	Featured bool `json:"featured"`
}

// Feature sets the curated-gallery flag on an avatar. Admin only.
func (h *Handler) Feature(c *gin.Context) {
	if _, ok := h.requireAdmin(c); !ok {
		return
	}

	var req featureRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	if err := h.Engagement.SetFeatured(c.Request.Context(), c.Param("id"), req.Featured); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"featured": req.Featured})
}
