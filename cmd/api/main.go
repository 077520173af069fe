package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/printcraft/loyalty-backend/api/routes"
	"github.com/printcraft/loyalty-backend/internal/config"
	"github.com/printcraft/loyalty-backend/internal/handlers"
	"github.com/printcraft/loyalty-backend/internal/repositories"
	mongorepo "github.com/printcraft/loyalty-backend/internal/repositories/mongodb"
	"github.com/printcraft/loyalty-backend/internal/services"
	"github.com/printcraft/loyalty-backend/pkg/mongodb"
)

func main() {
	// .env is optional; real deployments configure through the environment
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	// Repositories
	var accountRepo repositories.LoyaltyAccountRepository = mongorepo.NewLoyaltyAccountRepository(db)
	var couponRepo repositories.CouponRepository = mongorepo.NewCouponRepository(db)
	var usageRepo repositories.CouponUsageRepository = mongorepo.NewCouponUsageRepository(db)
	var appliedRepo repositories.AppliedCouponRepository = mongorepo.NewAppliedCouponRepository(db)
	var adminRepo repositories.AdminUserRepository = mongorepo.NewAdminUserRepository(db)

	// Services
	loyaltyService := services.NewLoyaltyService(accountRepo, cfg)
	couponService := services.NewCouponService(couponRepo, usageRepo, appliedRepo, cfg)
	checkoutService := services.NewCheckoutService(loyaltyService, couponService)
	authService := services.NewAuthService(adminRepo, cfg)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStartup()

	if cfg.Coupons.SeedDefaults {
		if err := couponService.SeedDefaults(startupCtx); err != nil {
			log.Fatalf("Failed to seed coupon catalog: %v", err)
		}
	}
	if err := authService.EnsureAdmin(startupCtx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Fatalf("Failed to ensure admin account: %v", err)
	}

	// Handlers
	handlerDeps := routes.HandlerDependencies{
		AuthHandler:     handlers.NewAuthHandler(authService),
		LoyaltyHandler:  handlers.NewLoyaltyHandler(loyaltyService),
		CouponHandler:   handlers.NewCouponHandler(couponService),
		CheckoutHandler: handlers.NewCheckoutHandler(checkoutService),
	}

	router := routes.SetupRouter(cfg, handlerDeps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	log.Printf("Server starting on port %s", cfg.Server.Port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}
