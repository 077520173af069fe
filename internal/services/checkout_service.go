package services

import (
	"context"
	"fmt"

	"github.com/printcraft/loyalty-backend/internal/models"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure CheckoutServiceImpl implements CheckoutService
var _ CheckoutService = (*CheckoutServiceImpl)(nil)

// CheckoutServiceImpl composes the coupon and loyalty engines into the
// storefront checkout flow: coupon discount first, then points, shipping
// handled per the free-shipping flag.
type CheckoutServiceImpl struct {
	loyaltyService LoyaltyService
	couponService  CouponService
}

func NewCheckoutService(loyaltyService LoyaltyService, couponService CouponService) *CheckoutServiceImpl {
	return &CheckoutServiceImpl{
		loyaltyService: loyaltyService,
		couponService:  couponService,
	}
}

// Quote prices a cart without mutating anything. An invalid coupon code does
// not fail the quote; the breakdown simply carries the rejection message.
func (s *CheckoutServiceImpl) Quote(ctx context.Context, userID string, req *models.QuoteRequest) (*models.CheckoutQuote, error) {
	quote := &models.CheckoutQuote{
		CartTotal:    req.CartTotal,
		ShippingCost: req.ShippingCost,
	}

	couponSaved := 0.0
	if req.CouponCode != "" {
		validation, err := s.couponService.ValidateCoupon(ctx, userID, req.CouponCode, req.CartTotal)
		if err != nil {
			return nil, err
		}
		quote.CouponMessage = validation.Message
		if validation.IsValid {
			quote.CouponValid = true
			quote.CouponCode = validation.Coupon.Code
			discount := s.couponService.CalculateDiscount(validation.Coupon, req.CartTotal, req.ShippingCost)
			quote.CouponDiscount = discount.Discount
			quote.FreeShipping = discount.FreeShipping
			couponSaved = discount.SavedAmount
		}
	}

	if req.PointsToRedeem > 0 {
		maxPoints, err := s.loyaltyService.MaxRedeemablePoints(ctx, userID, req.CartTotal)
		if err != nil {
			return nil, err
		}
		points := req.PointsToRedeem
		if points > maxPoints {
			points = maxPoints
		}
		quote.PointsUsed = points
		quote.PointsDiscount = s.loyaltyService.CalculatePointsDiscount(points)
	}

	shipping := req.ShippingCost
	if quote.FreeShipping {
		shipping = 0
	}
	final := req.CartTotal - quote.CouponDiscount - quote.PointsDiscount + shipping
	if final < 0 {
		final = 0
	}
	quote.FinalTotal = final
	quote.SavedAmount = couponSaved + quote.PointsDiscount

	return quote, nil
}

// Complete settles loyalty effects for a paid order, in a fixed order:
// coupon usage registration, point redemption, accrual, achievement check.
// Accrual uses the amount actually charged, so discounts never earn points.
func (s *CheckoutServiceImpl) Complete(ctx context.Context, userID string, req *models.CompleteRequest) (*models.CheckoutResult, error) {
	result := &models.CheckoutResult{NewAchievements: []models.Achievement{}}

	applied, err := s.couponService.GetAppliedCoupon(ctx, userID)
	if err != nil {
		return nil, err
	}
	if applied != nil {
		registration, err := s.couponService.RegisterUsage(ctx, userID, applied.CouponID, req.OrderID, applied.Discount)
		if err != nil {
			return nil, err
		}
		result.CouponRegistered = registration.Success
		result.CouponMessage = registration.Message
	}

	if req.PointsRedeemed > 0 {
		discount := s.loyaltyService.CalculatePointsDiscount(req.PointsRedeemed)
		redeem, err := s.loyaltyService.RedeemPoints(ctx, userID, req.PointsRedeemed, req.OrderID, discount)
		if err != nil {
			return nil, err
		}
		result.Redeem = redeem
		if !redeem.Success {
			slog.Warn("Point redemption failed while settling order", "userId", userID, "orderId", req.OrderID, "message", redeem.Message)
		}
	}

	earn, err := s.loyaltyService.EarnPointsFromPurchase(ctx, userID, req.OrderTotal, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to accrue points for order %s: %w", req.OrderID, err)
	}
	result.Earn = earn

	if req.Stats != nil {
		unlocked, err := s.loyaltyService.CheckAchievements(ctx, userID, *req.Stats)
		if err != nil {
			return nil, err
		}
		result.NewAchievements = unlocked
	}

	return result, nil
}
