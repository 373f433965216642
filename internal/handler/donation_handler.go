package handler

import (
	"errors"
	"net/http"
	"strconv"

	"charitychain/internal/identity"
	"charitychain/internal/repository"
	"charitychain/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DonationHandler struct {
	donationSvc  *service.DonationService
	donationRepo *repository.DonationRepository
}

func NewDonationHandler(donationSvc *service.DonationService, donationRepo *repository.DonationRepository) *DonationHandler {
	return &DonationHandler{donationSvc: donationSvc, donationRepo: donationRepo}
}

// Donate handles POST /api/donate: one transaction covering the receipt,
// the donation row and the reward accrual. Resubmitting a transaction hash
// yields 409, never a double credit.
func (h *DonationHandler) Donate(c *gin.Context) {
	var req service.DonationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid donation payload"})
		return
	}
	result, err := h.donationSvc.Record(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateDonation):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidTxHash), errors.Is(err, service.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record donation"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// Lookup handles GET /api/donation/:txHash, for receipt verification by hash.
func (h *DonationHandler) Lookup(c *gin.Context) {
	hash := identity.Normalize(c.Param("txHash"))
	if !identity.ValidTxHash(hash) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed transaction hash"})
		return
	}
	d, err := h.donationRepo.GetByTxHash(hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "donation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to load donation"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": d})
}

// History handles GET /api/donations/:address.
func (h *DonationHandler) History(c *gin.Context) {
	address := identity.Normalize(c.Param("address"))
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.donationRepo.ListByDonor(address, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to load donations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": list})
}
