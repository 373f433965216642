package handler

import (
	"errors"
	"net/http"
	"strconv"

	"charitychain/internal/identity"
	"charitychain/internal/middleware"
	"charitychain/internal/repository"
	"charitychain/internal/service"

	"github.com/gin-gonic/gin"
)

type ImpactHandler struct {
	impactSvc  *service.ImpactService
	rewardRepo *repository.RewardRepository
}

func NewImpactHandler(impactSvc *service.ImpactService, rewardRepo *repository.RewardRepository) *ImpactHandler {
	return &ImpactHandler{impactSvc: impactSvc, rewardRepo: rewardRepo}
}

// Stats handles GET /api/impact/stats.
func (h *ImpactHandler) Stats(c *gin.Context) {
	key, err := identity.Resolve(c.Query("address"), c.Query("email"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stats, err := h.impactSvc.GetImpactStats(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to load impact stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

// AwardBonus handles POST /api/rewards/bonus. The bonus is never minted by
// the donation path; this is the explicit opt-in call.
func (h *ImpactHandler) AwardBonus(c *gin.Context) {
	address := middleware.GetAddress(c)
	var req struct {
		TxHash string `json:"tx_hash" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tx_hash is required"})
		return
	}
	award, err := h.impactSvc.AwardBonus(c.Request.Context(), address, identity.Normalize(req.TxHash))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrDonationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrBonusNotEligible):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrBonusAlreadyAwarded):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to award bonus"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": award})
}

// RewardHistory handles GET /api/rewards/history/:address.
func (h *ImpactHandler) RewardHistory(c *gin.Context) {
	address := identity.Normalize(c.Param("address"))
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.rewardRepo.ListByUser(address, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to load reward history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": list})
}
