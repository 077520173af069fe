package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/printcraft/loyalty-backend/internal/middleware"
	"github.com/printcraft/loyalty-backend/internal/models"
	"github.com/printcraft/loyalty-backend/internal/services"
)

// CheckoutHandler handles checkout pricing and settlement requests
type CheckoutHandler struct {
	checkoutService services.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

// Quote handles POST /checkout/quote
func (h *CheckoutHandler) Quote(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User identity not found in token"})
		return
	}

	var request models.QuoteRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quote, err := h.checkoutService.Quote(c.Request.Context(), userID, &request)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build quote"})
		return
	}

	c.JSON(http.StatusOK, quote)
}

// Complete handles POST /checkout/complete. Called by the storefront once,
// after payment confirmation.
func (h *CheckoutHandler) Complete(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User identity not found in token"})
		return
	}

	var request models.CompleteRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.checkoutService.Complete(c.Request.Context(), userID, &request)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to settle order"})
		return
	}

	c.JSON(http.StatusOK, result)
}
