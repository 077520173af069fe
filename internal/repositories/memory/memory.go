// Package memory provides in-memory repository implementations backing the
// service tests. Behavior mirrors the mongodb package, including the guarded
// usage-counter increment.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/printcraft/loyalty-backend/internal/models"
	"github.com/printcraft/loyalty-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ repositories.LoyaltyAccountRepository = (*LoyaltyAccountRepository)(nil)
	_ repositories.CouponRepository         = (*CouponRepository)(nil)
	_ repositories.CouponUsageRepository    = (*CouponUsageRepository)(nil)
	_ repositories.AppliedCouponRepository  = (*AppliedCouponRepository)(nil)
	_ repositories.AdminUserRepository      = (*AdminUserRepository)(nil)
)

// LoyaltyAccountRepository stores loyalty aggregates keyed by user ID.
type LoyaltyAccountRepository struct {
	mu       sync.Mutex
	accounts map[string]models.LoyaltyAccount
}

// NewLoyaltyAccountRepository creates an empty in-memory account store.
func NewLoyaltyAccountRepository() *LoyaltyAccountRepository {
	return &LoyaltyAccountRepository{accounts: make(map[string]models.LoyaltyAccount)}
}

func (r *LoyaltyAccountRepository) FindByUserID(_ context.Context, userID string) (*models.LoyaltyAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := account
	clone.Transactions = append([]models.PointTransaction(nil), account.Transactions...)
	clone.UnlockedAchievements = append([]models.AchievementUnlock(nil), account.UnlockedAchievements...)
	return &clone, nil
}

func (r *LoyaltyAccountRepository) Save(_ context.Context, account *models.LoyaltyAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if account.ID.IsZero() {
		account.ID = primitive.NewObjectID()
	}
	clone := *account
	clone.Transactions = append([]models.PointTransaction(nil), account.Transactions...)
	clone.UnlockedAchievements = append([]models.AchievementUnlock(nil), account.UnlockedAchievements...)
	r.accounts[account.UserID] = clone
	return nil
}

// CouponRepository stores the coupon catalog keyed by ID.
type CouponRepository struct {
	mu      sync.Mutex
	coupons map[primitive.ObjectID]models.Coupon
}

// NewCouponRepository creates an empty in-memory coupon catalog.
func NewCouponRepository() *CouponRepository {
	return &CouponRepository{coupons: make(map[primitive.ObjectID]models.Coupon)}
}

func (r *CouponRepository) Create(_ context.Context, coupon *models.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	coupon.ID = primitive.NewObjectID()
	coupon.Code = models.NormalizeCouponCode(coupon.Code)
	r.coupons[coupon.ID] = *coupon
	return nil
}

func (r *CouponRepository) CreateMany(ctx context.Context, coupons []*models.Coupon) error {
	for _, c := range coupons {
		if err := r.Create(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *CouponRepository) Update(_ context.Context, coupon *models.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.coupons[coupon.ID]; !ok {
		return repositories.ErrNotFound
	}
	coupon.Code = models.NormalizeCouponCode(coupon.Code)
	coupon.UpdatedAt = time.Now()
	r.coupons[coupon.ID] = *coupon
	return nil
}

func (r *CouponRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	coupon, ok := r.coupons[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &coupon, nil
}

func (r *CouponRepository) FindActiveByCode(_ context.Context, code string) (*models.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	normalized := models.NormalizeCouponCode(code)
	for _, coupon := range r.coupons {
		if coupon.Code == normalized && coupon.IsActive {
			c := coupon
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *CouponRepository) FindActive(_ context.Context) ([]*models.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	coupons := []*models.Coupon{}
	for _, coupon := range r.coupons {
		if coupon.IsActive {
			c := coupon
			coupons = append(coupons, &c)
		}
	}
	return coupons, nil
}

func (r *CouponRepository) FindAll(_ context.Context) ([]*models.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	coupons := []*models.Coupon{}
	for _, coupon := range r.coupons {
		c := coupon
		coupons = append(coupons, &c)
	}
	return coupons, nil
}

func (r *CouponRepository) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.coupons)), nil
}

func (r *CouponRepository) IncrementUsage(_ context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	coupon, ok := r.coupons[id]
	if !ok {
		return false, nil
	}
	if coupon.GlobalLimitReached() {
		return false, nil
	}
	coupon.UsageCount++
	coupon.UpdatedAt = time.Now()
	r.coupons[id] = coupon
	return true, nil
}

// CouponUsageRepository stores redemption records.
type CouponUsageRepository struct {
	mu     sync.Mutex
	usages []models.CouponUsage
}

// NewCouponUsageRepository creates an empty in-memory usage log.
func NewCouponUsageRepository() *CouponUsageRepository {
	return &CouponUsageRepository{}
}

func (r *CouponUsageRepository) Create(_ context.Context, usage *models.CouponUsage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	usage.ID = primitive.NewObjectID()
	r.usages = append(r.usages, *usage)
	return nil
}

func (r *CouponUsageRepository) CountByUserAndCoupon(_ context.Context, userID string, couponID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, u := range r.usages {
		if u.UserID == userID && u.CouponID == couponID {
			count++
		}
	}
	return count, nil
}

func (r *CouponUsageRepository) FindByUserID(_ context.Context, userID string) ([]*models.CouponUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	usages := []*models.CouponUsage{}
	for i := range r.usages {
		if r.usages[i].UserID == userID {
			u := r.usages[i]
			usages = append(usages, &u)
		}
	}
	return usages, nil
}

func (r *CouponUsageRepository) FindByCouponID(_ context.Context, couponID primitive.ObjectID) ([]*models.CouponUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	usages := []*models.CouponUsage{}
	for i := range r.usages {
		if r.usages[i].CouponID == couponID {
			u := r.usages[i]
			usages = append(usages, &u)
		}
	}
	return usages, nil
}

// AppliedCouponRepository stores the per-user checkout slot.
type AppliedCouponRepository struct {
	mu    sync.Mutex
	slots map[string]models.AppliedCoupon
}

// NewAppliedCouponRepository creates an empty in-memory slot store.
func NewAppliedCouponRepository() *AppliedCouponRepository {
	return &AppliedCouponRepository{slots: make(map[string]models.AppliedCoupon)}
}

func (r *AppliedCouponRepository) Get(_ context.Context, userID string) (*models.AppliedCoupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	applied, ok := r.slots[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &applied, nil
}

func (r *AppliedCouponRepository) Set(_ context.Context, applied *models.AppliedCoupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if applied.ID.IsZero() {
		applied.ID = primitive.NewObjectID()
	}
	r.slots[applied.UserID] = *applied
	return nil
}

func (r *AppliedCouponRepository) Clear(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.slots, userID)
	return nil
}

// AdminUserRepository stores dashboard accounts keyed by email.
type AdminUserRepository struct {
	mu    sync.Mutex
	users map[string]models.AdminUser
}

// NewAdminUserRepository creates an empty in-memory admin store.
func NewAdminUserRepository() *AdminUserRepository {
	return &AdminUserRepository{users: make(map[string]models.AdminUser)}
}

func (r *AdminUserRepository) Create(_ context.Context, user *models.AdminUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = primitive.NewObjectID()
	r.users[user.Email] = *user
	return nil
}

func (r *AdminUserRepository) FindByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[email]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &user, nil
}
