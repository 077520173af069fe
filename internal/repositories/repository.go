package repositories

import (
	"context"
	"errors"

	"github.com/printcraft/loyalty-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned by every implementation when a lookup matches
// nothing, so services never depend on driver-specific sentinels.
var ErrNotFound = errors.New("not found")

// LoyaltyAccountRepository persists the per-user loyalty aggregate. Save
// writes the whole document (balance, ledger, unlocks) in one operation.
type LoyaltyAccountRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.LoyaltyAccount, error)
	Save(ctx context.Context, account *models.LoyaltyAccount) error
}

// CouponRepository defines the interface for coupon catalog operations.
type CouponRepository interface {
	Create(ctx context.Context, coupon *models.Coupon) error
	CreateMany(ctx context.Context, coupons []*models.Coupon) error
	Update(ctx context.Context, coupon *models.Coupon) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Coupon, error)
	// FindActiveByCode matches a normalized code against active coupons only.
	FindActiveByCode(ctx context.Context, code string) (*models.Coupon, error)
	FindActive(ctx context.Context) ([]*models.Coupon, error)
	FindAll(ctx context.Context) ([]*models.Coupon, error)
	Count(ctx context.Context) (int64, error)
	// IncrementUsage bumps the global usage counter only while it is below
	// the coupon's limit. It reports false when the limit was already
	// consumed, which makes the global cap safe under concurrent checkouts.
	IncrementUsage(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// CouponUsageRepository defines the interface for redemption records.
type CouponUsageRepository interface {
	Create(ctx context.Context, usage *models.CouponUsage) error
	CountByUserAndCoupon(ctx context.Context, userID string, couponID primitive.ObjectID) (int64, error)
	FindByUserID(ctx context.Context, userID string) ([]*models.CouponUsage, error)
	FindByCouponID(ctx context.Context, couponID primitive.ObjectID) ([]*models.CouponUsage, error)
}

// AppliedCouponRepository manages the single checkout slot per user.
type AppliedCouponRepository interface {
	Get(ctx context.Context, userID string) (*models.AppliedCoupon, error)
	// Set replaces whatever coupon was previously in the slot.
	Set(ctx context.Context, applied *models.AppliedCoupon) error
	// Clear empties the slot; clearing an empty slot is not an error.
	Clear(ctx context.Context, userID string) error
}

// AdminUserRepository defines the interface for dashboard accounts.
type AdminUserRepository interface {
	Create(ctx context.Context, user *models.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
}
