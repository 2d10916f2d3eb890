package handlers

import (
	"net/http"

	"aura_avatar/internal/service"

	"github.com/gin-gonic/gin"
)

// Auth upserts the account for a verified identity and issues a session
// token. First sign-in seeds the free credit allowance.
func (h *Handler) Auth(c *gin.Context) {
	var profile service.AuthProfile
	if err := c.BindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	user, err := h.Accounts.Authenticate(c.Request.Context(), profile)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := service.GenerateJWT(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userJSON(user),
	})
}
