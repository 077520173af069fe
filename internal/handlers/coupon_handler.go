package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/printcraft/loyalty-backend/internal/middleware"
	"github.com/printcraft/loyalty-backend/internal/models"
	"github.com/printcraft/loyalty-backend/internal/repositories"
	"github.com/printcraft/loyalty-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CouponHandler handles coupon-related HTTP requests
type CouponHandler struct {
	couponService services.CouponService
}

// NewCouponHandler creates a new CouponHandler
func NewCouponHandler(couponService services.CouponService) *CouponHandler {
	return &CouponHandler{
		couponService: couponService,
	}
}

// ValidateCoupon handles POST /coupons/validate
func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User identity not found in token"})
		return
	}

	var request struct {
		Code      string  `json:"code" binding:"required"`
		CartTotal float64 `json:"cartTotal" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	validation, err := h.couponService.ValidateCoupon(c.Request.Context(), userID, request.Code, request.CartTotal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate coupon"})
		return
	}

	c.JSON(http.StatusOK, validation)
}

// ApplyCoupon handles POST /coupons/apply
func (h *CouponHandler) ApplyCoupon(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User identity not found in token"})
		return
	}

	var request struct {
		Code      string  `json:"code" binding:"required"`
		CartTotal float64 `json:"cartTotal" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.couponService.ApplyCoupon(c.Request.Context(), userID, request.Code, request.CartTotal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply coupon"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// RemoveCoupon handles DELETE /coupons/applied
func (h *CouponHandler) RemoveCoupon(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User identity not found in token"})
		return
	}

	if err := h.couponService.RemoveCoupon(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove coupon"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cupón removido"})
}

// GetAppliedCoupon handles GET /coupons/applied
func (h *CouponHandler) GetAppliedCoupon(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User identity not found in token"})
		return
	}

	applied, err := h.couponService.GetAppliedCoupon(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load applied coupon"})
		return
	}
	if applied == nil {
		c.JSON(http.StatusOK, gin.H{"applied": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"applied": applied})
}

// GetAvailableCoupons handles GET /coupons/available?cartTotal=…
// Minimum purchase does not filter the list; each entry carries an
// eligibility flag instead, so the storefront can badge locked coupons.
func (h *CouponHandler) GetAvailableCoupons(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User identity not found in token"})
		return
	}

	cartTotal := 0.0
	if raw := c.Query("cartTotal"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cartTotal"})
			return
		}
		cartTotal = parsed
	}

	coupons, err := h.couponService.AvailableCouponsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list coupons"})
		return
	}

	type couponWithEligibility struct {
		*models.Coupon
		Eligible bool `json:"eligible"`
	}
	response := make([]couponWithEligibility, 0, len(coupons))
	for _, coupon := range coupons {
		eligible, err := h.couponService.IsCouponAvailableForUser(c.Request.Context(), userID, coupon.ID, cartTotal)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check coupon eligibility"})
			return
		}
		response = append(response, couponWithEligibility{Coupon: coupon, Eligible: eligible})
	}

	c.JSON(http.StatusOK, response)
}

// --- Admin catalog management ---

// ListCoupons handles GET /admin/coupons
func (h *CouponHandler) ListCoupons(c *gin.Context) {
	coupons, err := h.couponService.ListCoupons(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list coupons"})
		return
	}
	c.JSON(http.StatusOK, coupons)
}

// CreateCoupon handles POST /admin/coupons
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var coupon models.Coupon
	if err := c.ShouldBindJSON(&coupon); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.couponService.CreateCoupon(c.Request.Context(), &coupon); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create coupon"})
		return
	}

	c.JSON(http.StatusCreated, coupon)
}

// UpdateCoupon handles PUT /admin/coupons/:id
func (h *CouponHandler) UpdateCoupon(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var coupon models.Coupon
	if err := c.ShouldBindJSON(&coupon); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	coupon.ID = id

	if err := h.couponService.UpdateCoupon(c.Request.Context(), &coupon); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update coupon"})
		return
	}

	c.JSON(http.StatusOK, coupon)
}

// DeactivateCoupon handles POST /admin/coupons/:id/deactivate
func (h *CouponHandler) DeactivateCoupon(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	if err := h.couponService.DeactivateCoupon(c.Request.Context(), id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate coupon"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Coupon deactivated"})
}

// ListUsages handles GET /admin/coupons/:id/usages
func (h *CouponHandler) ListUsages(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	usages, err := h.couponService.ListUsages(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list usages"})
		return
	}

	c.JSON(http.StatusOK, usages)
}
