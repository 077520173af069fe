package services

import (
	"context"
	"testing"
	"time"

	"github.com/printcraft/loyalty-backend/internal/models"
	"github.com/printcraft/loyalty-backend/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type couponFixture struct {
	svc         *CouponServiceImpl
	couponRepo  *memory.CouponRepository
	usageRepo   *memory.CouponUsageRepository
	appliedRepo *memory.AppliedCouponRepository
}

func newCouponFixture(t *testing.T, seed bool) *couponFixture {
	t.Helper()
	f := &couponFixture{
		couponRepo:  memory.NewCouponRepository(),
		usageRepo:   memory.NewCouponUsageRepository(),
		appliedRepo: memory.NewAppliedCouponRepository(),
	}
	f.svc = NewCouponService(f.couponRepo, f.usageRepo, f.appliedRepo, testConfig())
	if seed {
		require.NoError(t, f.svc.SeedDefaults(context.Background()))
	}
	return f
}

func (f *couponFixture) coupon(t *testing.T, code string) *models.Coupon {
	t.Helper()
	coupon, err := f.couponRepo.FindActiveByCode(context.Background(), code)
	require.NoError(t, err)
	return coupon
}

func (f *couponFixture) recordUsage(t *testing.T, userID string, coupon *models.Coupon, orderID string) {
	t.Helper()
	require.NoError(t, f.usageRepo.Create(context.Background(), &models.CouponUsage{
		UserID:   userID,
		CouponID: coupon.ID,
		OrderID:  orderID,
		UsedAt:   time.Now(),
	}))
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	f := newCouponFixture(t, true)
	ctx := context.Background()

	count, err := f.couponRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	require.NoError(t, f.svc.SeedDefaults(ctx))
	count, err = f.couponRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestValidateCouponCaseInsensitiveZeroMinimum(t *testing.T) {
	f := newCouponFixture(t, true)

	validation, err := f.svc.ValidateCoupon(context.Background(), "user-1", "welcome10", 0)
	require.NoError(t, err)
	assert.True(t, validation.IsValid)
	require.NotNil(t, validation.Coupon)
	assert.Equal(t, "WELCOME10", validation.Coupon.Code)
}

func TestValidateCouponUnknownOrInactive(t *testing.T) {
	f := newCouponFixture(t, true)
	ctx := context.Background()

	validation, err := f.svc.ValidateCoupon(ctx, "user-1", "NOPE", 100)
	require.NoError(t, err)
	assert.False(t, validation.IsValid)
	assert.Equal(t, "Cupón inválido o expirado", validation.Message)

	// Deactivated codes behave exactly like unknown ones.
	coupon := f.coupon(t, "WELCOME10")
	require.NoError(t, f.svc.DeactivateCoupon(ctx, coupon.ID))
	validation, err = f.svc.ValidateCoupon(ctx, "user-1", "WELCOME10", 100)
	require.NoError(t, err)
	assert.False(t, validation.IsValid)
	assert.Equal(t, "Cupón inválido o expirado", validation.Message)
}

func TestValidateCouponExpiryBeatsMinimumPurchase(t *testing.T) {
	f := newCouponFixture(t, false)
	ctx := context.Background()

	expired := &models.Coupon{
		Code:            "OLD25",
		DiscountType:    models.DiscountPercentage,
		DiscountValue:   25,
		MinimumPurchase: 500,
		ValidFrom:       time.Now().AddDate(0, -2, 0),
		ValidUntil:      time.Now().AddDate(0, -1, 0),
		IsActive:        true,
		UserUsageLimit:  1,
	}
	require.NoError(t, f.couponRepo.Create(ctx, expired))

	// Cart is also below the minimum; the date check fires first.
	validation, err := f.svc.ValidateCoupon(ctx, "user-1", "OLD25", 100)
	require.NoError(t, err)
	assert.False(t, validation.IsValid)
	assert.Equal(t, "Cupón expirado", validation.Message)
}

func TestValidateCouponBelowMinimumMentionsAmount(t *testing.T) {
	f := newCouponFixture(t, true)

	validation, err := f.svc.ValidateCoupon(context.Background(), "user-1", "SUMMER25", 499.99)
	require.NoError(t, err)
	assert.False(t, validation.IsValid)
	assert.Contains(t, validation.Message, "$500.00")
}

func TestValidateCouponUserLimitReached(t *testing.T) {
	f := newCouponFixture(t, true)
	coupon := f.coupon(t, "WELCOME10") // userUsageLimit 1
	f.recordUsage(t, "user-1", coupon, "order-1")

	validation, err := f.svc.ValidateCoupon(context.Background(), "user-1", "WELCOME10", 100)
	require.NoError(t, err)
	assert.False(t, validation.IsValid)
	assert.Equal(t, "Ya alcanzaste el límite de uso de este cupón", validation.Message)

	// Other users are unaffected.
	validation, err = f.svc.ValidateCoupon(context.Background(), "user-2", "WELCOME10", 100)
	require.NoError(t, err)
	assert.True(t, validation.IsValid)
}

func TestValidateCouponGlobalLimitReached(t *testing.T) {
	f := newCouponFixture(t, false)
	ctx := context.Background()

	limit := 1
	coupon := &models.Coupon{
		Code:           "SCARCE",
		DiscountType:   models.DiscountFixedAmount,
		DiscountValue:  10,
		ValidFrom:      time.Now().AddDate(0, 0, -1),
		ValidUntil:     time.Now().AddDate(0, 1, 0),
		IsActive:       true,
		UsageLimit:     &limit,
		UsageCount:     1,
		UserUsageLimit: 5,
	}
	require.NoError(t, f.couponRepo.Create(ctx, coupon))

	validation, err := f.svc.ValidateCoupon(ctx, "user-1", "SCARCE", 100)
	require.NoError(t, err)
	assert.False(t, validation.IsValid)
	assert.Equal(t, "Este cupón ha alcanzado su límite de uso", validation.Message)
}

func TestCalculateDiscountPercentageClampedToMaximum(t *testing.T) {
	f := newCouponFixture(t, true)
	coupon := f.coupon(t, "SUMMER25") // 25%, max discount 200

	result := f.svc.CalculateDiscount(coupon, 1000, 50)
	assert.Equal(t, 200.0, result.Discount)
	assert.Equal(t, 850.0, result.FinalTotal)
	assert.False(t, result.FreeShipping)
	assert.Equal(t, 200.0, result.SavedAmount)
}

func TestCalculateDiscountFreeShipping(t *testing.T) {
	f := newCouponFixture(t, true)
	coupon := f.coupon(t, "FREESHIP")

	result := f.svc.CalculateDiscount(coupon, 400, 50)
	assert.Equal(t, 0.0, result.Discount)
	assert.True(t, result.FreeShipping)
	assert.Equal(t, 400.0, result.FinalTotal)
	assert.Equal(t, 50.0, result.SavedAmount)
}

func TestCalculateDiscountFixedAmountNeverExceedsCart(t *testing.T) {
	f := newCouponFixture(t, true)
	coupon := f.coupon(t, "SAVE50")

	result := f.svc.CalculateDiscount(coupon, 30, 0)
	assert.Equal(t, 30.0, result.Discount)
	assert.Equal(t, 0.0, result.FinalTotal)
}

func TestApplyAndRemoveCoupon(t *testing.T) {
	f := newCouponFixture(t, true)
	ctx := context.Background()

	result, err := f.svc.ApplyCoupon(ctx, "user-1", "summer25", 1000)
	require.NoError(t, err)
	require.True(t, result.Success)

	applied, err := f.svc.GetAppliedCoupon(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, applied)
	assert.Equal(t, "SUMMER25", applied.Code)
	assert.Equal(t, 200.0, applied.Discount) // frozen at apply time

	// Applying another coupon replaces the slot.
	result, err = f.svc.ApplyCoupon(ctx, "user-1", "SAVE50", 1000)
	require.NoError(t, err)
	require.True(t, result.Success)
	applied, err = f.svc.GetAppliedCoupon(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "SAVE50", applied.Code)

	// A failed apply leaves the slot untouched.
	result, err = f.svc.ApplyCoupon(ctx, "user-1", "VIP20", 100)
	require.NoError(t, err)
	assert.False(t, result.Success)
	applied, err = f.svc.GetAppliedCoupon(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "SAVE50", applied.Code)

	// Remove is idempotent.
	require.NoError(t, f.svc.RemoveCoupon(ctx, "user-1"))
	require.NoError(t, f.svc.RemoveCoupon(ctx, "user-1"))
	applied, err = f.svc.GetAppliedCoupon(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, applied)
}

func TestRegisterUsage(t *testing.T) {
	f := newCouponFixture(t, true)
	ctx := context.Background()

	result, err := f.svc.ApplyCoupon(ctx, "user-1", "SUMMER25", 1000)
	require.NoError(t, err)
	require.True(t, result.Success)
	coupon := f.coupon(t, "SUMMER25")

	registration, err := f.svc.RegisterUsage(ctx, "user-1", coupon.ID, "order-1", 200)
	require.NoError(t, err)
	require.True(t, registration.Success)

	// Counter bumped, record written, slot cleared.
	updated, err := f.couponRepo.FindByID(ctx, coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.UsageCount)

	count, err := f.usageRepo.CountByUserAndCoupon(ctx, "user-1", coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	applied, err := f.svc.GetAppliedCoupon(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, applied)
}

func TestRegisterUsageRefusedAtGlobalLimit(t *testing.T) {
	f := newCouponFixture(t, false)
	ctx := context.Background()

	limit := 1
	coupon := &models.Coupon{
		Code:           "LAST1",
		DiscountType:   models.DiscountFixedAmount,
		DiscountValue:  10,
		ValidFrom:      time.Now().AddDate(0, 0, -1),
		ValidUntil:     time.Now().AddDate(0, 1, 0),
		IsActive:       true,
		UsageLimit:     &limit,
		UserUsageLimit: 5,
	}
	require.NoError(t, f.couponRepo.Create(ctx, coupon))

	first, err := f.svc.RegisterUsage(ctx, "user-1", coupon.ID, "order-1", 10)
	require.NoError(t, err)
	assert.True(t, first.Success)

	// The guarded increment loses once the cap is consumed; no usage record
	// is written for the refused order.
	second, err := f.svc.RegisterUsage(ctx, "user-2", coupon.ID, "order-2", 10)
	require.NoError(t, err)
	assert.False(t, second.Success)

	updated, err := f.couponRepo.FindByID(ctx, coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.UsageCount)

	count, err := f.usageRepo.CountByUserAndCoupon(ctx, "user-2", coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestAvailableCouponsIgnoreMinimumPurchase(t *testing.T) {
	f := newCouponFixture(t, true)
	ctx := context.Background()

	coupons, err := f.svc.AvailableCouponsForUser(ctx, "user-1")
	require.NoError(t, err)
	// All five seeds are listed even though the user has an empty cart.
	assert.Len(t, coupons, 5)

	// A user at their limit no longer sees the coupon.
	welcome := f.coupon(t, "WELCOME10")
	f.recordUsage(t, "user-1", welcome, "order-1")
	coupons, err = f.svc.AvailableCouponsForUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, coupons, 4)
	for _, c := range coupons {
		assert.NotEqual(t, "WELCOME10", c.Code)
	}
}

func TestIsCouponAvailableForUser(t *testing.T) {
	f := newCouponFixture(t, true)
	ctx := context.Background()
	vip := f.coupon(t, "VIP20") // minimum purchase 1000

	eligible, err := f.svc.IsCouponAvailableForUser(ctx, "user-1", vip.ID, 999)
	require.NoError(t, err)
	assert.False(t, eligible)

	eligible, err = f.svc.IsCouponAvailableForUser(ctx, "user-1", vip.ID, 1000)
	require.NoError(t, err)
	assert.True(t, eligible)

	f.recordUsage(t, "user-1", vip, "order-1") // userUsageLimit 1
	eligible, err = f.svc.IsCouponAvailableForUser(ctx, "user-1", vip.ID, 1500)
	require.NoError(t, err)
	assert.False(t, eligible)
}
