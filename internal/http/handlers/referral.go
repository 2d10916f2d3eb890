package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ReferralCode(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	code, err := h.Accounts.ReferralCode(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": code})
}

type applyReferralRequest struct {
	Code string `json:"code" binding:"required"`
}

// ApplyReferral redeems a referral code for the caller. One redemption per
// account; the code owner gets the credit award.
func (h *Handler) ApplyReferral(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req applyReferralRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	ref, err := h.Accounts.ApplyReferral(c.Request.Context(), userID, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"referrer_id":     ref.ReferrerID,
		"credits_awarded": ref.CreditsAwarded,
	})
}

func (h *Handler) MyReferrals(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	refs, err := h.Accounts.Referrals(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"referrals": refs})
}
