package router

import (
	"net/http"
	"time"

	"charitychain/config"
	"charitychain/internal/handler"
	"charitychain/internal/middleware"
	"charitychain/internal/repository"
	"charitychain/internal/service"
	"charitychain/pkg/ipfs"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, log zerolog.Logger) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	donationRepo := repository.NewDonationRepository(db)
	rewardRepo := repository.NewRewardRepository(db)

	resolver := ipfs.NewResolver(cfg.IPFS.Gateway, cfg.IPFS.DefaultImage)

	// Services
	impactSvc := service.NewImpactService(db, log)
	referralSvc := service.NewReferralService(db, log)
	donationSvc := service.NewDonationService(db, impactSvc, log)
	authSvc := service.NewAuthService(cfg, db, referralSvc)
	campaignSvc := service.NewCampaignService(campaignRepo, resolver)
	chatSvc := service.NewChatService(campaignRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, userRepo)
	campaignHandler := handler.NewCampaignHandler(campaignSvc)
	donationHandler := handler.NewDonationHandler(donationSvc, donationRepo)
	referralHandler := handler.NewReferralHandler(referralSvc)
	impactHandler := handler.NewImpactHandler(impactSvc, rewardRepo)
	dashboardHandler := handler.NewDashboardHandler(userRepo)
	chatHandler := handler.NewChatHandler(chatSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "CharityChain Backend is Running!")
	})

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		api.GET("/campaigns", campaignHandler.List)
		api.GET("/campaigns/:id", campaignHandler.Get)
		api.POST("/campaign", authMw, campaignHandler.Create)

		api.POST("/donate", donationHandler.Donate)
		api.GET("/donation/:txHash", donationHandler.Lookup)
		api.GET("/donations/:address", donationHandler.History)
		api.GET("/dashboard/:address", dashboardHandler.Stats)

		api.GET("/user/:address", authHandler.Profile)
		api.POST("/user/generate-referral", referralHandler.GenerateCode)
		api.POST("/referral/bind", referralHandler.Bind)
		api.GET("/referral/stats", referralHandler.Stats)

		api.GET("/impact/stats", impactHandler.Stats)
		api.POST("/rewards/bonus", authMw, impactHandler.AwardBonus)
		api.GET("/rewards/history/:address", impactHandler.RewardHistory)

		api.POST("/chat", chatHandler.Chat)
	}

	return r
}
