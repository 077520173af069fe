package services

import (
	"context"

	"github.com/printcraft/loyalty-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoyaltyService defines the interface for point, tier and achievement
// operations. Domain outcomes (insufficient points, unknown or already
// unlocked achievements) come back as structured results; only storage
// failures surface as errors.
type LoyaltyService interface {
	// GetAccount loads the caller's aggregate, creating a bronze account on
	// first access.
	GetAccount(ctx context.Context, userID string) (*models.LoyaltyAccount, error)

	// EarnPointsFromPurchase accrues floor(orderTotal/earnRate) base points
	// multiplied by the tier held before the purchase.
	EarnPointsFromPurchase(ctx context.Context, userID string, orderTotal float64, orderID string) (*models.EarnResult, error)

	// RedeemPoints burns points against an order; no partial redemption.
	RedeemPoints(ctx context.Context, userID string, points int, orderID string, discountApplied float64) (*models.RedeemResult, error)

	// CalculatePointsDiscount converts a point amount to its currency value.
	CalculatePointsDiscount(points int) float64

	// MaxRedeemablePoints caps redemption at a fraction of the cart and at
	// the caller's balance.
	MaxRedeemablePoints(ctx context.Context, userID string, cartTotal float64) (int, error)

	// GrantBonusPoints credits points outside the purchase flow.
	GrantBonusPoints(ctx context.Context, userID string, points int, description string) (*models.EarnResult, error)

	// UnlockAchievement records the unlock and grants its reward in one
	// aggregate write.
	UnlockAchievement(ctx context.Context, userID string, achievementID string) (*models.UnlockResult, error)

	// CheckAchievements evaluates the catalog in order against the supplied
	// stats and returns only the achievements unlocked by this call.
	CheckAchievements(ctx context.Context, userID string, stats models.MemberStats) ([]models.Achievement, error)

	// ProgressToNextTier reports linear progress between the current and
	// next tier thresholds.
	ProgressToNextTier(ctx context.Context, userID string) (*models.TierProgress, error)

	// GetTransactions returns the ledger, newest first.
	GetTransactions(ctx context.Context, userID string) ([]models.PointTransaction, error)
}

// CouponService defines the interface for coupon validation, discount
// computation and usage tracking.
type CouponService interface {
	// ValidateCoupon runs the five eligibility checks in order; the first
	// failure wins.
	ValidateCoupon(ctx context.Context, userID, code string, cartTotal float64) (*models.CouponValidation, error)

	// CalculateDiscount is pure: it never reads or writes state.
	CalculateDiscount(coupon *models.Coupon, cartTotal, shippingCost float64) models.DiscountResult

	// ApplyCoupon validates and, on success, fills the caller's single
	// checkout slot, replacing any previous coupon.
	ApplyCoupon(ctx context.Context, userID, code string, cartTotal float64) (*models.ApplyCouponResult, error)

	// RemoveCoupon empties the slot; removing an empty slot is a no-op.
	RemoveCoupon(ctx context.Context, userID string) error

	// GetAppliedCoupon returns the slot contents, or nil when empty.
	GetAppliedCoupon(ctx context.Context, userID string) (*models.AppliedCoupon, error)

	// RegisterUsage consumes the coupon for a paid order: guarded global
	// counter increment, usage record, slot clear. Call exactly once per
	// completed order, after payment confirmation.
	RegisterUsage(ctx context.Context, userID string, couponID primitive.ObjectID, orderID string, discountApplied float64) (*models.RegisterUsageResult, error)

	// AvailableCouponsForUser lists coupons the user could still redeem,
	// ignoring the minimum-purchase requirement.
	AvailableCouponsForUser(ctx context.Context, userID string) ([]*models.Coupon, error)

	// IsCouponAvailableForUser checks only the minimum purchase and the
	// per-user limit, for eligibility badges.
	IsCouponAvailableForUser(ctx context.Context, userID string, couponID primitive.ObjectID, cartTotal float64) (bool, error)

	// SeedDefaults inserts the default catalog when the collection is empty.
	SeedDefaults(ctx context.Context) error

	// Admin catalog management.
	CreateCoupon(ctx context.Context, coupon *models.Coupon) error
	UpdateCoupon(ctx context.Context, coupon *models.Coupon) error
	DeactivateCoupon(ctx context.Context, id primitive.ObjectID) error
	ListCoupons(ctx context.Context) ([]*models.Coupon, error)
	ListUsages(ctx context.Context, couponID primitive.ObjectID) ([]*models.CouponUsage, error)
}

// CheckoutService composes both engines into the storefront checkout flow.
type CheckoutService interface {
	// Quote prices a cart without touching state.
	Quote(ctx context.Context, userID string, req *models.QuoteRequest) (*models.CheckoutQuote, error)

	// Complete settles loyalty effects for a paid order: coupon usage
	// registration, point redemption, accrual, achievement checks.
	Complete(ctx context.Context, userID string, req *models.CompleteRequest) (*models.CheckoutResult, error)
}

// AuthService defines the interface for dashboard authentication.
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	// EnsureAdmin creates the bootstrap dashboard account when configured
	// and absent.
	EnsureAdmin(ctx context.Context, email, password string) error
}
