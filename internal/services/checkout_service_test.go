package services

import (
	"context"
	"testing"

	"github.com/printcraft/loyalty-backend/internal/models"
	"github.com/printcraft/loyalty-backend/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	svc         *CheckoutServiceImpl
	loyalty     *LoyaltyServiceImpl
	coupons     *CouponServiceImpl
	accountRepo *memory.LoyaltyAccountRepository
	couponRepo  *memory.CouponRepository
	usageRepo   *memory.CouponUsageRepository
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	cfg := testConfig()
	f := &checkoutFixture{
		accountRepo: memory.NewLoyaltyAccountRepository(),
		couponRepo:  memory.NewCouponRepository(),
		usageRepo:   memory.NewCouponUsageRepository(),
	}
	f.loyalty = NewLoyaltyService(f.accountRepo, cfg)
	f.coupons = NewCouponService(f.couponRepo, f.usageRepo, memory.NewAppliedCouponRepository(), cfg)
	f.svc = NewCheckoutService(f.loyalty, f.coupons)
	require.NoError(t, f.coupons.SeedDefaults(context.Background()))
	return f
}

func TestQuoteCouponThenPoints(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	seedAccount(t, f.accountRepo, "user-1", 500)

	// Points request above the balance is capped, not rejected.
	quote, err := f.svc.Quote(ctx, "user-1", &models.QuoteRequest{
		CartTotal:      1000,
		ShippingCost:   50,
		CouponCode:     "SUMMER25",
		PointsToRedeem: 10000,
	})
	require.NoError(t, err)

	assert.True(t, quote.CouponValid)
	assert.Equal(t, 200.0, quote.CouponDiscount)
	assert.Equal(t, 500, quote.PointsUsed)
	assert.Equal(t, 50.0, quote.PointsDiscount)
	assert.Equal(t, 800.0, quote.FinalTotal) // 1000 - 200 - 50 + 50 shipping
	assert.Equal(t, 250.0, quote.SavedAmount)
}

func TestQuotePointsCappedByCart(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	seedAccount(t, f.accountRepo, "user-1", 5000)

	// Half-cart cap: a $40 cart supports at most a $20 points discount.
	quote, err := f.svc.Quote(ctx, "user-1", &models.QuoteRequest{
		CartTotal:      40,
		PointsToRedeem: 5000,
	})
	require.NoError(t, err)

	assert.Equal(t, 200, quote.PointsUsed)
	assert.Equal(t, 20.0, quote.PointsDiscount)
	assert.Equal(t, 20.0, quote.FinalTotal)
}

func TestQuoteInvalidCouponDoesNotFail(t *testing.T) {
	f := newCheckoutFixture(t)

	quote, err := f.svc.Quote(context.Background(), "user-1", &models.QuoteRequest{
		CartTotal:    100,
		ShippingCost: 20,
		CouponCode:   "SUMMER25", // below the $500 minimum
	})
	require.NoError(t, err)

	assert.False(t, quote.CouponValid)
	assert.Contains(t, quote.CouponMessage, "$500.00")
	assert.Equal(t, 0.0, quote.CouponDiscount)
	assert.Equal(t, 120.0, quote.FinalTotal)
}

func TestQuoteFreeShipping(t *testing.T) {
	f := newCheckoutFixture(t)

	quote, err := f.svc.Quote(context.Background(), "user-1", &models.QuoteRequest{
		CartTotal:    400,
		ShippingCost: 50,
		CouponCode:   "FREESHIP",
	})
	require.NoError(t, err)

	assert.True(t, quote.CouponValid)
	assert.True(t, quote.FreeShipping)
	assert.Equal(t, 0.0, quote.CouponDiscount)
	assert.Equal(t, 400.0, quote.FinalTotal)
	assert.Equal(t, 50.0, quote.SavedAmount)
}

func TestCompleteSettlesEverything(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	seedAccount(t, f.accountRepo, "user-1", 500)

	apply, err := f.coupons.ApplyCoupon(ctx, "user-1", "SUMMER25", 1000)
	require.NoError(t, err)
	require.True(t, apply.Success)

	result, err := f.svc.Complete(ctx, "user-1", &models.CompleteRequest{
		OrderID:        "order-1",
		OrderTotal:     750, // amount actually charged
		PointsRedeemed: 500,
		Stats:          &models.MemberStats{OrdersCount: 1, TotalSpent: 750},
	})
	require.NoError(t, err)

	assert.True(t, result.CouponRegistered)
	require.NotNil(t, result.Redeem)
	assert.True(t, result.Redeem.Success)
	require.NotNil(t, result.Earn)
	assert.Equal(t, 75, result.Earn.PointsEarned)

	require.Len(t, result.NewAchievements, 1)
	assert.Equal(t, "first_order", result.NewAchievements[0].ID)

	// Slot cleared and usage recorded.
	applied, err := f.coupons.GetAppliedCoupon(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, applied)
	summer, err := f.couponRepo.FindActiveByCode(ctx, "SUMMER25")
	require.NoError(t, err)
	assert.Equal(t, 1, summer.UsageCount)

	// 500 - 500 redeemed + 75 earned + 50 first-order bonus.
	account, err := f.loyalty.GetAccount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 125, account.Points)
	assert.Equal(t, account.Points, ledgerSum(account))
}

func TestCompleteWithoutCouponOrPoints(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	result, err := f.svc.Complete(ctx, "user-1", &models.CompleteRequest{
		OrderID:    "order-1",
		OrderTotal: 120,
	})
	require.NoError(t, err)

	assert.False(t, result.CouponRegistered)
	assert.Nil(t, result.Redeem)
	assert.Equal(t, 12, result.Earn.PointsEarned)
	assert.Empty(t, result.NewAchievements)
}
