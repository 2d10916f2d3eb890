package handlers

import (
	"net/http"
	"strconv"

	"aura_avatar/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Me(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	user, err := h.Accounts.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, userJSON(user))
}

// MyAvatars returns the caller's avatars, private ones included.
func (h *Handler) MyAvatars(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	avatars, err := h.Engagement.UserAvatars(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatars": avatars})
}

// UpdateUser patches the caller's own profile. Patching someone else's
// account is rejected regardless of role.
func (h *Handler) UpdateUser(c *gin.Context) {
	callerID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad user id"})
		return
	}
	if targetID != callerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "FORBIDDEN"})
		return
	}

	var upd service.ProfileUpdate
	if err := c.BindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	user, err := h.Accounts.UpdateProfile(c.Request.Context(), callerID, upd)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, userJSON(user))
}

// Upgrade switches the account to premium. Payment handling is external;
// this endpoint records the entitlement.
func (h *Handler) Upgrade(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	user, err := h.Accounts.Upgrade(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, userJSON(user))
}
