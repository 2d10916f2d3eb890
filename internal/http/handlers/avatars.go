package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultGalleryLimit = 50

func limitParam(c *gin.Context) int {
	limit := defaultGalleryLimit
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	return limit
}

func (h *Handler) Gallery(c *gin.Context) {
	avatars, err := h.Engagement.Gallery(c.Request.Context(), limitParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatars": avatars})
}

func (h *Handler) Trending(c *gin.Context) {
	avatars, err := h.Ranking.Trending(c.Request.Context(), limitParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatars": avatars})
}

func (h *Handler) Featured(c *gin.Context) {
	avatars, err := h.Engagement.Featured(c.Request.Context(), limitParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatars": avatars})
}

func (h *Handler) GetAvatar(c *gin.Context) {
	avatar, err := h.Engagement.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, avatar)
}

// UserAvatars lists a user's avatars. Owner only: private drafts would leak
// otherwise.
func (h *Handler) UserAvatars(c *gin.Context) {
	callerID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	ownerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad user id"})
		return
	}
	if ownerID != callerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "FORBIDDEN"})
		return
	}

	avatars, err := h.Engagement.UserAvatars(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatars": avatars})
}

// DownloadAll returns every stored rendition of an avatar for batch download.
func (h *Handler) DownloadAll(c *gin.Context) {
	avatar, err := h.Engagement.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"urls":       avatar.URLs,
		"variations": avatar.Variations,
	})
}
