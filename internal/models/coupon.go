package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DiscountType classifies how a coupon reduces the order total.
type DiscountType string

const (
	DiscountPercentage  DiscountType = "percentage"
	DiscountFixedAmount DiscountType = "fixed_amount"
	DiscountFreeShip    DiscountType = "free_shipping"
)

// Coupon is one discount code. Codes are stored uppercase and matched
// case-insensitively. UsageLimit nil means no global cap.
type Coupon struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Code            string             `bson:"code" json:"code"`
	Description     string             `bson:"description" json:"description"`
	DiscountType    DiscountType       `bson:"discountType" json:"discountType"`
	DiscountValue   float64            `bson:"discountValue" json:"discountValue"`
	MinimumPurchase float64            `bson:"minimumPurchase" json:"minimumPurchase"`
	MaximumDiscount *float64           `bson:"maximumDiscount,omitempty" json:"maximumDiscount,omitempty"`
	ValidFrom       time.Time          `bson:"validFrom" json:"validFrom"`
	ValidUntil      time.Time          `bson:"validUntil" json:"validUntil"`
	IsActive        bool               `bson:"isActive" json:"isActive"`
	UsageLimit      *int               `bson:"usageLimit,omitempty" json:"usageLimit,omitempty"`
	UsageCount      int                `bson:"usageCount" json:"usageCount"`
	UserUsageLimit  int                `bson:"userUsageLimit" json:"userUsageLimit"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NormalizeCouponCode maps a user-typed code to its stored form.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// InDateRange reports whether now falls inside the inclusive validity window.
func (c *Coupon) InDateRange(now time.Time) bool {
	return !now.Before(c.ValidFrom) && !now.After(c.ValidUntil)
}

// GlobalLimitReached reports whether the global usage cap is consumed.
func (c *Coupon) GlobalLimitReached() bool {
	return c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit
}

// CouponUsage is one per-user redemption record.
type CouponUsage struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID          string             `bson:"userId" json:"userId"`
	CouponID        primitive.ObjectID `bson:"couponId" json:"couponId"`
	OrderID         string             `bson:"orderId" json:"orderId"`
	DiscountApplied float64            `bson:"discountApplied" json:"discountApplied"`
	UsedAt          time.Time          `bson:"usedAt" json:"usedAt"`
}

// AppliedCoupon is the single checkout slot per user: the coupon currently
// attached to the cart, with the discount frozen at apply time. Cleared on
// usage registration or explicit removal.
type AppliedCoupon struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID       string             `bson:"userId" json:"userId"`
	CouponID     primitive.ObjectID `bson:"couponId" json:"couponId"`
	Code         string             `bson:"code" json:"code"`
	Discount     float64            `bson:"discount" json:"discount"`
	FreeShipping bool               `bson:"freeShipping" json:"freeShipping"`
	AppliedAt    time.Time          `bson:"appliedAt" json:"appliedAt"`
}

// CouponValidation is the structured outcome of validating a code against a
// cart. Message is shown to the shopper verbatim.
type CouponValidation struct {
	IsValid bool    `json:"isValid"`
	Coupon  *Coupon `json:"coupon,omitempty"`
	Message string  `json:"message"`
}

// DiscountResult is the computed effect of a coupon on one cart.
type DiscountResult struct {
	Discount     float64 `json:"discount"`
	FinalTotal   float64 `json:"finalTotal"`
	FreeShipping bool    `json:"freeShipping"`
	SavedAmount  float64 `json:"savedAmount"`
}

// ApplyCouponResult is the outcome of attaching a coupon to the checkout slot.
type ApplyCouponResult struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Coupon  *Coupon `json:"coupon,omitempty"`
}

// RegisterUsageResult is the outcome of consuming a coupon for a paid order.
type RegisterUsageResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DefaultCoupons returns the seed catalog inserted when the coupon collection
// is empty. Validity windows are anchored at seed time.
func DefaultCoupons(now time.Time) []*Coupon {
	maxSummer := 200.0
	maxVIP := 500.0
	globalVIP := 100
	yearOut := now.AddDate(1, 0, 0)
	return []*Coupon{
		{
			Code:            "WELCOME10",
			Description:     "10% de descuento en tu primera compra",
			DiscountType:    DiscountPercentage,
			DiscountValue:   10,
			MinimumPurchase: 0,
			ValidFrom:       now,
			ValidUntil:      yearOut,
			IsActive:        true,
			UserUsageLimit:  1,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			Code:            "SUMMER25",
			Description:     "25% de descuento en compras mayores a $500",
			DiscountType:    DiscountPercentage,
			DiscountValue:   25,
			MinimumPurchase: 500,
			MaximumDiscount: &maxSummer,
			ValidFrom:       now,
			ValidUntil:      yearOut,
			IsActive:        true,
			UserUsageLimit:  2,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			Code:            "FREESHIP",
			Description:     "Envío gratis en compras mayores a $300",
			DiscountType:    DiscountFreeShip,
			DiscountValue:   0,
			MinimumPurchase: 300,
			ValidFrom:       now,
			ValidUntil:      yearOut,
			IsActive:        true,
			UserUsageLimit:  3,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			Code:            "SAVE50",
			Description:     "$50 de descuento en compras mayores a $250",
			DiscountType:    DiscountFixedAmount,
			DiscountValue:   50,
			MinimumPurchase: 250,
			ValidFrom:       now,
			ValidUntil:      yearOut,
			IsActive:        true,
			UserUsageLimit:  2,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			Code:            "VIP20",
			Description:     "20% de descuento exclusivo en compras mayores a $1,000",
			DiscountType:    DiscountPercentage,
			DiscountValue:   20,
			MinimumPurchase: 1000,
			MaximumDiscount: &maxVIP,
			ValidFrom:       now,
			ValidUntil:      yearOut,
			IsActive:        true,
			UsageLimit:      &globalVIP,
			UserUsageLimit:  1,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
	}
}
