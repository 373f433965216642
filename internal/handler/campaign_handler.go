package handler

import (
	"errors"
	"net/http"

	"charitychain/internal/service"

	"github.com/gin-gonic/gin"
)

type CampaignHandler struct {
	campaignSvc *service.CampaignService
}

func NewCampaignHandler(campaignSvc *service.CampaignService) *CampaignHandler {
	return &CampaignHandler{campaignSvc: campaignSvc}
}

func (h *CampaignHandler) List(c *gin.Context) {
	campaigns, err := h.campaignSvc.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to load campaigns"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": campaigns})
}

func (h *CampaignHandler) Get(c *gin.Context) {
	campaign, err := h.campaignSvc.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrCampaignNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to load campaign"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": campaign})
}

func (h *CampaignHandler) Create(c *gin.Context) {
	var req service.CreateCampaignInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign payload"})
		return
	}
	campaign, err := h.campaignSvc.Create(req)
	if err != nil {
		if errors.Is(err, service.ErrNameRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "campaign name is required"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to create campaign"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": campaign})
}
