package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/printcraft/loyalty-backend/internal/config"
	"github.com/printcraft/loyalty-backend/internal/handlers"
	"github.com/printcraft/loyalty-backend/internal/middleware"
)

// HandlerDependencies bundles the handlers the router wires up
type HandlerDependencies struct {
	AuthHandler     *handlers.AuthHandler
	LoyaltyHandler  *handlers.LoyaltyHandler
	CouponHandler   *handlers.CouponHandler
	CheckoutHandler *handlers.CheckoutHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		public.POST("/auth/login", deps.AuthHandler.Login)
	}

	// Authenticated storefront routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		loyalty := protected.Group("/loyalty")
		{
			loyalty.GET("/account", deps.LoyaltyHandler.GetAccount)
			loyalty.GET("/transactions", deps.LoyaltyHandler.GetTransactions)
			loyalty.GET("/tiers", deps.LoyaltyHandler.GetTierTable)
			loyalty.GET("/progress", deps.LoyaltyHandler.GetProgress)
			loyalty.GET("/max-redeemable", deps.LoyaltyHandler.GetMaxRedeemable)
			loyalty.GET("/points-discount", deps.LoyaltyHandler.GetPointsDiscount)
			loyalty.GET("/achievements", deps.LoyaltyHandler.GetAchievements)
			loyalty.POST("/achievements/check", deps.LoyaltyHandler.CheckAchievements)
			loyalty.POST("/achievements/:id/unlock", deps.LoyaltyHandler.UnlockAchievement)
		}

		coupons := protected.Group("/coupons")
		{
			coupons.POST("/validate", deps.CouponHandler.ValidateCoupon)
			coupons.POST("/apply", deps.CouponHandler.ApplyCoupon)
			coupons.GET("/applied", deps.CouponHandler.GetAppliedCoupon)
			coupons.DELETE("/applied", deps.CouponHandler.RemoveCoupon)
			coupons.GET("/available", deps.CouponHandler.GetAvailableCoupons)
		}

		checkout := protected.Group("/checkout")
		{
			checkout.POST("/quote", deps.CheckoutHandler.Quote)
			checkout.POST("/complete", deps.CheckoutHandler.Complete)
		}
	}

	// Admin dashboard routes
	admin := router.Group("/api/v1/admin")
	admin.Use(middleware.JWTAuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("/coupons", deps.CouponHandler.ListCoupons)
		admin.POST("/coupons", deps.CouponHandler.CreateCoupon)
		admin.PUT("/coupons/:id", deps.CouponHandler.UpdateCoupon)
		admin.POST("/coupons/:id/deactivate", deps.CouponHandler.DeactivateCoupon)
		admin.GET("/coupons/:id/usages", deps.CouponHandler.ListUsages)
		admin.POST("/loyalty/bonus", deps.LoyaltyHandler.GrantBonus)
	}

	return router
}
