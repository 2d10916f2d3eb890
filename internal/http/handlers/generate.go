package handlers

import (
	"net/http"

	"aura_avatar/internal/domain"

	"github.com/gin-gonic/gin"
)

// Generate runs the full avatar pipeline for the caller.
func (h *Handler) Generate(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req domain.AvatarRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	res, err := h.Generation.Generate(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"avatar":            res.Avatar,
		"credits_remaining": res.Remaining,
	})
}

type imageURLRequest struct {
	ImageURL string `json:"image_url" binding:"required"`
}

// RemoveBackground cuts the subject out of a hosted image.
func (h *Handler) RemoveBackground(c *gin.Context) {
	var req imageURLRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	url, err := h.Generation.RemoveBackground(c.Request.Context(), req.ImageURL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_url": url})
}

// GenerateVariations renders alternate styles for an existing image without
// creating a new avatar record.
func (h *Handler) GenerateVariations(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req imageURLRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	variations, err := h.Generation.Variations(c.Request.Context(), userID, req.ImageURL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"variations": variations})
}

type enhanceRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// EnhancePrompt rewrites a raw prompt into a richer one. Degrades to an
// echo when no enhancer is configured.
func (h *Handler) EnhancePrompt(c *gin.Context) {
	var req enhanceRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"prompt": h.Generation.EnhancePrompt(c.Request.Context(), req.Prompt),
	})
}
