package handler

import (
	"errors"
	"net/http"

	"charitychain/internal/identity"
	"charitychain/internal/service"

	"github.com/gin-gonic/gin"
)

type ReferralHandler struct {
	referralSvc *service.ReferralService
}

func NewReferralHandler(referralSvc *service.ReferralService) *ReferralHandler {
	return &ReferralHandler{referralSvc: referralSvc}
}

// identityReq is the address-or-email body shared by referral endpoints.
type identityReq struct {
	Address string `json:"address"`
	Email   string `json:"email"`
}

func (r identityReq) resolve() (string, error) {
	return identity.Resolve(r.Address, r.Email)
}

// GenerateCode handles POST /api/user/generate-referral.
func (h *ReferralHandler) GenerateCode(c *gin.Context) {
	var req identityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address or email is required"})
		return
	}
	key, err := req.resolve()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	code, err := h.referralSvc.GetOrCreateCode(c.Request.Context(), key)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrCodeGenerationExhaust):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to generate referral code"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"referral_code": code}})
}

// Bind handles POST /api/referral/bind.
func (h *ReferralHandler) Bind(c *gin.Context) {
	var req struct {
		identityReq
		ReferralCode string `json:"referral_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "referral_code is required"})
		return
	}
	key, err := req.resolve()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	referrer, err := h.referralSvc.BindReferral(c.Request.Context(), key, req.ReferralCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidReferralCode), errors.Is(err, service.ErrSelfReferral):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrAlreadyReferred):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to bind referral"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"referrer_address": referrer,
		"message":          "Referral linked successfully",
	}})
}

// Stats handles GET /api/referral/stats.
func (h *ReferralHandler) Stats(c *gin.Context) {
	key, err := identity.Resolve(c.Query("address"), c.Query("email"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stats, err := h.referralSvc.GetReferralStats(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to load referral stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}
