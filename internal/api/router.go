package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/estate_go_server/config"
	"github.com/qs3c/estate_go_server/internal/api/handler"
	"github.com/qs3c/estate_go_server/internal/api/middleware"
	"github.com/qs3c/estate_go_server/internal/pkg/ratelimit"
	"github.com/qs3c/estate_go_server/internal/repository"
)

type Router struct {
	authHandler         *handler.AuthHandler
	userHandler         *handler.UserHandler
	listingHandler      *handler.ListingHandler
	subscriptionHandler *handler.SubscriptionHandler
	contactHandler      *handler.ContactHandler
	adminHandler        *handler.AdminHandler
	userRepo            *repository.UserRepository
	limiter             *ratelimit.Limiter
	cfg                 *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	listingHandler *handler.ListingHandler,
	subscriptionHandler *handler.SubscriptionHandler,
	contactHandler *handler.ContactHandler,
	adminHandler *handler.AdminHandler,
	userRepo *repository.UserRepository,
	limiter *ratelimit.Limiter,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:         authHandler,
		userHandler:         userHandler,
		listingHandler:      listingHandler,
		subscriptionHandler: subscriptionHandler,
		contactHandler:      contactHandler,
		adminHandler:        adminHandler,
		userRepo:            userRepo,
		limiter:             limiter,
		cfg:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/otp/request",
				middleware.RateLimit(r.limiter, "otp", r.cfg.RateLimit.OtpPerTenMin, 10*time.Minute),
				r.authHandler.RequestOtp)
			auth.POST("/otp/verify", r.authHandler.VerifyOtp)
			auth.POST("/google", r.authHandler.GoogleLogin)
			auth.POST("/forgot",
				middleware.RateLimit(r.limiter, "otp", r.cfg.RateLimit.OtpPerTenMin, 10*time.Minute),
				r.authHandler.ForgotPassword)
			auth.POST("/reset", r.authHandler.ResetPassword)
		}

		// 公开接口 - 套餐
		api.GET("/subscription/plans", r.subscriptionHandler.ListPlans)

		// 公开接口 - 房源检索（可选认证，用于"已解锁"标记）
		listings := api.Group("/listings")
		listings.Use(middleware.OptionalAuth(r.cfg.JWT.Secret))
		{
			listings.GET("", r.listingHandler.Search)
			listings.GET("/nearby", r.listingHandler.Nearby)
			listings.GET("/:id", r.listingHandler.Get)
		}

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			me := authenticated.Group("/me")
			{
				me.GET("", r.userHandler.GetProfile)
				me.PUT("", r.userHandler.UpdateProfile)
				me.POST("/profile-image", r.userHandler.UploadProfileImage)
				me.GET("/subscription", r.userHandler.GetSubscription)
			}

			authenticated.POST("/subscription/verify",
				middleware.RateLimit(r.limiter, "verify", r.cfg.RateLimit.VerifyPerTenMin, 10*time.Minute),
				r.subscriptionHandler.Verify)

			// 联系方式解锁
			authenticated.GET("/listings/:id/contact",
				middleware.RateLimit(r.limiter, "contact", r.cfg.RateLimit.ContactPerMinute, time.Minute),
				r.contactHandler.Reveal)

			// 房源管理（业主）
			authenticated.POST("/listings", r.listingHandler.Create)
			authenticated.PUT("/listings/:id", r.listingHandler.Update)
			authenticated.DELETE("/listings/:id", r.listingHandler.Delete)
			authenticated.POST("/listings/:id/images", r.listingHandler.UploadImage)
			authenticated.GET("/my/listings", r.listingHandler.MyListings)

			// 收藏
			authenticated.POST("/listings/:id/save", r.listingHandler.Save)
			authenticated.DELETE("/listings/:id/save", r.listingHandler.Unsave)
			authenticated.GET("/my/saved", r.listingHandler.Saved)
		}

		// 管理后台
		admin := api.Group("/admin")
		admin.Use(middleware.Auth(r.cfg.JWT.Secret))
		admin.Use(middleware.RequireAdmin(r.userRepo))
		{
			admin.GET("/listings/pending", r.adminHandler.PendingListings)
			admin.POST("/listings/:id/:action", r.adminHandler.ModerateListing)
			admin.DELETE("/listings/:id", r.adminHandler.DeleteListing)
			admin.PUT("/listings/:id/duplicates", r.adminHandler.AllowDuplicates)

			admin.GET("/owners/pending", r.adminHandler.PendingOwners)
			admin.POST("/owners/:id/:action", r.adminHandler.ModerateOwner)

			admin.GET("/images/pending", r.adminHandler.PendingImages)
			admin.POST("/images/:id/:action", r.adminHandler.ModerateImage)

			admin.GET("/moderation-logs", r.adminHandler.Logs)
		}
	}

	return engine
}
