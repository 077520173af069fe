package services

import (
	"context"
	"fmt"
	"time"

	"github.com/printcraft/loyalty-backend/internal/config"
	"github.com/printcraft/loyalty-backend/internal/models"
	"github.com/printcraft/loyalty-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure CouponServiceImpl implements CouponService
var _ CouponService = (*CouponServiceImpl)(nil)

type CouponServiceImpl struct {
	couponRepo  repositories.CouponRepository
	usageRepo   repositories.CouponUsageRepository
	appliedRepo repositories.AppliedCouponRepository
	cfg         *config.Config
}

func NewCouponService(
	couponRepo repositories.CouponRepository,
	usageRepo repositories.CouponUsageRepository,
	appliedRepo repositories.AppliedCouponRepository,
	cfg *config.Config,
) *CouponServiceImpl {
	return &CouponServiceImpl{
		couponRepo:  couponRepo,
		usageRepo:   usageRepo,
		appliedRepo: appliedRepo,
		cfg:         cfg,
	}
}

// ValidateCoupon runs the eligibility checks in a fixed order so the shopper
// always sees the same message for the same cart: existence/active, date
// window, minimum purchase, per-user limit, global limit.
func (s *CouponServiceImpl) ValidateCoupon(ctx context.Context, userID, code string, cartTotal float64) (*models.CouponValidation, error) {
	coupon, err := s.couponRepo.FindActiveByCode(ctx, code)
	if err != nil {
		if err == repositories.ErrNotFound {
			return &models.CouponValidation{IsValid: false, Message: "Cupón inválido o expirado"}, nil
		}
		slog.Error("Failed to look up coupon", "error", err, "code", models.NormalizeCouponCode(code))
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}

	if !coupon.InDateRange(time.Now()) {
		return &models.CouponValidation{IsValid: false, Message: "Cupón expirado"}, nil
	}

	if cartTotal < coupon.MinimumPurchase {
		return &models.CouponValidation{
			IsValid: false,
			Message: fmt.Sprintf("Compra mínima de $%.2f requerida", coupon.MinimumPurchase),
		}, nil
	}

	userCount, err := s.usageRepo.CountByUserAndCoupon(ctx, userID, coupon.ID)
	if err != nil {
		slog.Error("Failed to count coupon usages", "error", err, "userId", userID, "couponId", coupon.ID)
		return nil, fmt.Errorf("failed to count coupon usages: %w", err)
	}
	if userCount >= int64(coupon.UserUsageLimit) {
		return &models.CouponValidation{IsValid: false, Message: "Ya alcanzaste el límite de uso de este cupón"}, nil
	}

	if coupon.GlobalLimitReached() {
		return &models.CouponValidation{IsValid: false, Message: "Este cupón ha alcanzado su límite de uso"}, nil
	}

	return &models.CouponValidation{IsValid: true, Coupon: coupon, Message: "Cupón válido"}, nil
}

// CalculateDiscount computes the effect of a coupon on one cart. Pure.
func (s *CouponServiceImpl) CalculateDiscount(coupon *models.Coupon, cartTotal, shippingCost float64) models.DiscountResult {
	var discount float64
	freeShipping := false

	switch coupon.DiscountType {
	case models.DiscountPercentage:
		discount = cartTotal * coupon.DiscountValue / 100
		if coupon.MaximumDiscount != nil && discount > *coupon.MaximumDiscount {
			discount = *coupon.MaximumDiscount
		}
	case models.DiscountFixedAmount:
		discount = coupon.DiscountValue
		if discount > cartTotal {
			discount = cartTotal
		}
	case models.DiscountFreeShip:
		freeShipping = true
	}

	effectiveShipping := shippingCost
	if freeShipping {
		effectiveShipping = 0
	}

	finalTotal := cartTotal - discount + effectiveShipping
	if finalTotal < 0 {
		finalTotal = 0
	}

	saved := discount
	if freeShipping {
		saved += shippingCost
	}

	return models.DiscountResult{
		Discount:     discount,
		FinalTotal:   finalTotal,
		FreeShipping: freeShipping,
		SavedAmount:  saved,
	}
}

// ApplyCoupon validates and fills the checkout slot. The discount is frozen
// at apply time against the current cart subtotal; a failed validation
// leaves the slot untouched.
func (s *CouponServiceImpl) ApplyCoupon(ctx context.Context, userID, code string, cartTotal float64) (*models.ApplyCouponResult, error) {
	validation, err := s.ValidateCoupon(ctx, userID, code, cartTotal)
	if err != nil {
		return nil, err
	}
	if !validation.IsValid {
		return &models.ApplyCouponResult{Success: false, Message: validation.Message}, nil
	}

	discount := s.CalculateDiscount(validation.Coupon, cartTotal, 0)
	applied := &models.AppliedCoupon{
		UserID:       userID,
		CouponID:     validation.Coupon.ID,
		Code:         validation.Coupon.Code,
		Discount:     discount.Discount,
		FreeShipping: discount.FreeShipping,
		AppliedAt:    time.Now(),
	}
	if err := s.appliedRepo.Set(ctx, applied); err != nil {
		slog.Error("Failed to set applied coupon", "error", err, "userId", userID, "code", validation.Coupon.Code)
		return nil, fmt.Errorf("failed to apply coupon: %w", err)
	}

	slog.Info("Coupon applied", "userId", userID, "code", validation.Coupon.Code, "discount", discount.Discount)
	return &models.ApplyCouponResult{Success: true, Message: "Cupón aplicado", Coupon: validation.Coupon}, nil
}

// RemoveCoupon empties the slot unconditionally.
func (s *CouponServiceImpl) RemoveCoupon(ctx context.Context, userID string) error {
	if err := s.appliedRepo.Clear(ctx, userID); err != nil {
		slog.Error("Failed to clear applied coupon", "error", err, "userId", userID)
		return fmt.Errorf("failed to remove coupon: %w", err)
	}
	return nil
}

// GetAppliedCoupon returns the slot contents, nil when empty.
func (s *CouponServiceImpl) GetAppliedCoupon(ctx context.Context, userID string) (*models.AppliedCoupon, error) {
	applied, err := s.appliedRepo.Get(ctx, userID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load applied coupon: %w", err)
	}
	return applied, nil
}

// RegisterUsage consumes the coupon for a paid order. The global counter is
// bumped with the limit check inside the write, so two concurrent orders
// cannot both take the last slot.
func (s *CouponServiceImpl) RegisterUsage(ctx context.Context, userID string, couponID primitive.ObjectID, orderID string, discountApplied float64) (*models.RegisterUsageResult, error) {
	ok, err := s.couponRepo.IncrementUsage(ctx, couponID)
	if err != nil {
		slog.Error("Failed to increment coupon usage", "error", err, "couponId", couponID)
		return nil, fmt.Errorf("failed to increment coupon usage: %w", err)
	}
	if !ok {
		slog.Warn("Coupon usage refused at global limit", "couponId", couponID, "orderId", orderID)
		return &models.RegisterUsageResult{Success: false, Message: "El cupón ya no está disponible"}, nil
	}

	usage := &models.CouponUsage{
		UserID:          userID,
		CouponID:        couponID,
		OrderID:         orderID,
		DiscountApplied: discountApplied,
		UsedAt:          time.Now(),
	}
	if err := s.usageRepo.Create(ctx, usage); err != nil {
		slog.Error("Failed to record coupon usage", "error", err, "couponId", couponID, "orderId", orderID)
		return nil, fmt.Errorf("failed to record coupon usage: %w", err)
	}

	if err := s.appliedRepo.Clear(ctx, userID); err != nil {
		slog.Error("Failed to clear applied coupon after usage", "error", err, "userId", userID)
		return nil, fmt.Errorf("failed to clear applied coupon: %w", err)
	}

	slog.Info("Coupon usage registered", "userId", userID, "couponId", couponID, "orderId", orderID, "discount", discountApplied)
	return &models.RegisterUsageResult{Success: true, Message: "Uso de cupón registrado"}, nil
}

// AvailableCouponsForUser lists active, date-valid coupons whose limits the
// user has not exhausted. Minimum purchase is deliberately ignored so the
// storefront can show coupons the shopper does not yet qualify for.
func (s *CouponServiceImpl) AvailableCouponsForUser(ctx context.Context, userID string) ([]*models.Coupon, error) {
	coupons, err := s.couponRepo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}

	now := time.Now()
	available := []*models.Coupon{}
	for _, coupon := range coupons {
		if !coupon.InDateRange(now) || coupon.GlobalLimitReached() {
			continue
		}
		userCount, err := s.usageRepo.CountByUserAndCoupon(ctx, userID, coupon.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count coupon usages: %w", err)
		}
		if userCount >= int64(coupon.UserUsageLimit) {
			continue
		}
		available = append(available, coupon)
	}
	return available, nil
}

// IsCouponAvailableForUser backs the per-card eligibility badge: minimum
// purchase and per-user limit only.
func (s *CouponServiceImpl) IsCouponAvailableForUser(ctx context.Context, userID string, couponID primitive.ObjectID, cartTotal float64) (bool, error) {
	coupon, err := s.couponRepo.FindByID(ctx, couponID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to load coupon: %w", err)
	}

	if cartTotal < coupon.MinimumPurchase {
		return false, nil
	}

	userCount, err := s.usageRepo.CountByUserAndCoupon(ctx, userID, couponID)
	if err != nil {
		return false, fmt.Errorf("failed to count coupon usages: %w", err)
	}
	return userCount < int64(coupon.UserUsageLimit), nil
}

// SeedDefaults inserts the default catalog when the collection is empty, so
// a fresh or wiped deployment always has working codes.
func (s *CouponServiceImpl) SeedDefaults(ctx context.Context) error {
	count, err := s.couponRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count coupons: %w", err)
	}
	if count > 0 {
		return nil
	}

	coupons := models.DefaultCoupons(time.Now())
	if err := s.couponRepo.CreateMany(ctx, coupons); err != nil {
		return fmt.Errorf("failed to seed coupons: %w", err)
	}
	slog.Info("Default coupon catalog seeded", "count", len(coupons))
	return nil
}

// CreateCoupon adds a coupon to the catalog.
func (s *CouponServiceImpl) CreateCoupon(ctx context.Context, coupon *models.Coupon) error {
	now := time.Now()
	coupon.CreatedAt = now
	coupon.UpdatedAt = now
	coupon.UsageCount = 0
	if err := s.couponRepo.Create(ctx, coupon); err != nil {
		slog.Error("Failed to create coupon", "error", err, "code", coupon.Code)
		return fmt.Errorf("failed to create coupon: %w", err)
	}
	slog.Info("Coupon created", "code", coupon.Code)
	return nil
}

// UpdateCoupon replaces a catalog entry.
func (s *CouponServiceImpl) UpdateCoupon(ctx context.Context, coupon *models.Coupon) error {
	if err := s.couponRepo.Update(ctx, coupon); err != nil {
		if err == repositories.ErrNotFound {
			return err
		}
		slog.Error("Failed to update coupon", "error", err, "couponId", coupon.ID)
		return fmt.Errorf("failed to update coupon: %w", err)
	}
	return nil
}

// DeactivateCoupon retires a code without deleting its usage history.
func (s *CouponServiceImpl) DeactivateCoupon(ctx context.Context, id primitive.ObjectID) error {
	coupon, err := s.couponRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	coupon.IsActive = false
	return s.UpdateCoupon(ctx, coupon)
}

// ListCoupons returns the full catalog for the dashboard.
func (s *CouponServiceImpl) ListCoupons(ctx context.Context) ([]*models.Coupon, error) {
	return s.couponRepo.FindAll(ctx)
}

// ListUsages returns one coupon's redemption history for the dashboard.
func (s *CouponServiceImpl) ListUsages(ctx context.Context, couponID primitive.ObjectID) ([]*models.CouponUsage, error) {
	return s.usageRepo.FindByCouponID(ctx, couponID)
}
