package handler

import (
	"net/http"

	"charitychain/internal/identity"
	"charitychain/internal/repository"
	"charitychain/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	userRepo *repository.UserRepository
}

func NewDashboardHandler(userRepo *repository.UserRepository) *DashboardHandler {
	return &DashboardHandler{userRepo: userRepo}
}

// dashboardView renders the donor-facing summary. The display score here
// (charities*120 + donations*15) is a presentation metric and is unrelated
// to the reward engine's impact score.
func dashboardView(stats *repository.DashboardStats) gin.H {
	score := stats.CharitiesSupported*120 + stats.TotalDonations*15
	return gin.H{
		"totalDonatedEth":    service.WeiToEthString(stats.TotalWei),
		"charitiesSupported": stats.CharitiesSupported,
		"impactScore":        score,
		"totalDonations":     stats.TotalDonations,
	}
}

// Stats handles GET /api/dashboard/:address.
func (h *DashboardHandler) Stats(c *gin.Context) {
	address := identity.Normalize(c.Param("address"))
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}
	stats, err := h.userRepo.DashboardStats(address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to fetch dashboard stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": dashboardView(stats)})
}
