package handler

import (
	"errors"
	"net/http"

	"charitychain/internal/identity"
	"charitychain/internal/repository"
	"charitychain/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	authSvc  *service.AuthService
	userRepo *repository.UserRepository
}

func NewAuthHandler(authSvc *service.AuthService, userRepo *repository.UserRepository) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, userRepo: userRepo}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email, and password are required"})
		return
	}
	u, access, refresh, err := h.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNameRequired),
			errors.Is(err, service.ErrInvalidEmail),
			errors.Is(err, service.ErrWeakPassword),
			errors.Is(err, identity.ErrInvalidAddress),
			errors.Is(err, service.ErrInvalidReferralCode),
			errors.Is(err, service.ErrSelfReferral):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrAlreadyReferred), errors.Is(err, service.ErrEmailConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to register user"})
		}
		return
	}

	stats, err := h.userRepo.DashboardStats(u.Address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to register user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"user":          u,
		"stats":         dashboardView(stats),
		"access_token":  access,
		"refresh_token": refresh,
	}})
}

// Profile handles GET /api/user/:address. The param accepts either identity
// form since users without a wallet are keyed by email.
func (h *AuthHandler) Profile(c *gin.Context) {
	key := identity.Normalize(c.Param("address"))
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}
	u, err := h.userRepo.GetByAddress(key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to load user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": u})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}
	u, access, refresh, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCreds) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to login"})
		return
	}

	stats, err := h.userRepo.DashboardStats(u.Address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to login"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"user":          u,
		"stats":         dashboardView(stats),
		"access_token":  access,
		"refresh_token": refresh,
	}})
}
