package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/printcraft/loyalty-backend/internal/middleware"
	"github.com/printcraft/loyalty-backend/internal/models"
	"github.com/printcraft/loyalty-backend/internal/services"
)

// LoyaltyHandler handles loyalty-related HTTP requests
type LoyaltyHandler struct {
	loyaltyService services.LoyaltyService
}

// NewLoyaltyHandler creates a new LoyaltyHandler
func NewLoyaltyHandler(loyaltyService services.LoyaltyService) *LoyaltyHandler {
	return &LoyaltyHandler{
		loyaltyService: loyaltyService,
	}
}

// GetAccount handles GET /loyalty/account
func (h *LoyaltyHandler) GetAccount(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User identity not found in token"})
		return
	}

	account, err := h.loyaltyService.GetAccount(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load loyalty account"})
		return
	}

	c.JSON(http.StatusOK, account)
}

// GetTransactions handles GET /loyalty/transactions
func (h *LoyaltyHandler) GetTransactions(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User identity not found in token"})
		return
	}

	transactions, err := h.loyaltyService.GetTransactions(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transactions"})
		return
	}

	c.JSON(http.StatusOK, transactions)
}

// GetTierTable handles GET /loyalty/tiers
func (h *LoyaltyHandler) GetTierTable(c *gin.Context) {
	c.JSON(http.StatusOK, models.TierTable)
}

// GetProgress handles GET /loyalty/progress
func (h *LoyaltyHandler) GetProgress(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User identity not found in token"})
		return
	}

	progress, err := h.loyaltyService.ProgressToNextTier(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute tier progress"})
		return
	}

	c.JSON(http.StatusOK, progress)
}

// GetMaxRedeemable handles GET /loyalty/max-redeemable?cartTotal=…
func (h *LoyaltyHandler) GetMaxRedeemable(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User identity not found in token"})
		return
	}

	cartTotal, err := strconv.ParseFloat(c.Query("cartTotal"), 64)
	if err != nil || cartTotal < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cartTotal"})
		return
	}

	points, err := h.loyaltyService.MaxRedeemablePoints(c.Request.Context(), userID, cartTotal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute redeemable points"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"maxRedeemablePoints": points,
		"discount":            h.loyaltyService.CalculatePointsDiscount(points),
	})
}

// GetPointsDiscount handles GET /loyalty/points-discount?points=…
func (h *LoyaltyHandler) GetPointsDiscount(c *gin.Context) {
	points, err := strconv.Atoi(c.Query("points"))
	if err != nil || points < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid points"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"discount": h.loyaltyService.CalculatePointsDiscount(points)})
}

// GetAchievements handles GET /loyalty/achievements
func (h *LoyaltyHandler) GetAchievements(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User identity not found in token"})
		return
	}

	account, err := h.loyaltyService.GetAccount(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load loyalty account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"catalog":  models.AchievementCatalog,
		"unlocked": account.UnlockedAchievements,
	})
}

// CheckAchievements handles POST /loyalty/achievements/check
func (h *LoyaltyHandler) CheckAchievements(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User identity not found in token"})
		return
	}

	var stats models.MemberStats
	if err := c.ShouldBindJSON(&stats); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	unlocked, err := h.loyaltyService.CheckAchievements(c.Request.Context(), userID, stats)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check achievements"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"newAchievements": unlocked})
}

// UnlockAchievement handles POST /loyalty/achievements/:id/unlock
func (h *LoyaltyHandler) UnlockAchievement(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User identity not found in token"})
		return
	}

	result, err := h.loyaltyService.UnlockAchievement(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unlock achievement"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GrantBonus handles POST /admin/loyalty/bonus
func (h *LoyaltyHandler) GrantBonus(c *gin.Context) {
	var request struct {
		UserID      string `json:"userId" binding:"required"`
		Points      int    `json:"points" binding:"required,gt=0"`
		Description string `json:"description" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.loyaltyService.GrantBonusPoints(c.Request.Context(), request.UserID, request.Points, request.Description)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to grant bonus points"})
		return
	}

	c.JSON(http.StatusOK, result)
}
