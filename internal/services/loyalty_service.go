package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/printcraft/loyalty-backend/internal/config"
	"github.com/printcraft/loyalty-backend/internal/models"
	"github.com/printcraft/loyalty-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure LoyaltyServiceImpl implements LoyaltyService
var _ LoyaltyService = (*LoyaltyServiceImpl)(nil)

type LoyaltyServiceImpl struct {
	accountRepo repositories.LoyaltyAccountRepository
	cfg         *config.Config
}

func NewLoyaltyService(accountRepo repositories.LoyaltyAccountRepository, cfg *config.Config) *LoyaltyServiceImpl {
	return &LoyaltyServiceImpl{
		accountRepo: accountRepo,
		cfg:         cfg,
	}
}

// GetAccount loads the aggregate, creating and persisting a fresh bronze
// account on first access.
func (s *LoyaltyServiceImpl) GetAccount(ctx context.Context, userID string) (*models.LoyaltyAccount, error) {
	account, err := s.accountRepo.FindByUserID(ctx, userID)
	if err == nil {
		return account, nil
	}
	if err != repositories.ErrNotFound {
		slog.Error("Failed to load loyalty account", "error", err, "userId", userID)
		return nil, fmt.Errorf("failed to load loyalty account: %w", err)
	}

	account = models.NewLoyaltyAccount(userID)
	if err := s.accountRepo.Save(ctx, account); err != nil {
		slog.Error("Failed to create loyalty account", "error", err, "userId", userID)
		return nil, fmt.Errorf("failed to create loyalty account: %w", err)
	}
	slog.Info("Loyalty account created", "userId", userID)
	return account, nil
}

// EarnPointsFromPurchase accrues points for a paid order. The multiplier is
// the one held before the purchase; a tier reached by this very order does
// not retroactively raise its own accrual.
func (s *LoyaltyServiceImpl) EarnPointsFromPurchase(ctx context.Context, userID string, orderTotal float64, orderID string) (*models.EarnResult, error) {
	if orderTotal < 0 {
		return nil, fmt.Errorf("order total must not be negative: %.2f", orderTotal)
	}

	account, err := s.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	currentTier := models.TierForPoints(account.Points)
	basePoints := int(math.Floor(orderTotal / s.cfg.Loyalty.EarnRate))
	pointsEarned := int(math.Floor(float64(basePoints) * currentTier.PointsMultiplier))

	now := time.Now()
	expires := now.AddDate(0, 0, s.cfg.Loyalty.ExpiryDays)
	account.Apply(models.PointTransaction{
		ID:          primitive.NewObjectID(),
		Type:        models.TransactionEarned,
		Points:      pointsEarned,
		Description: fmt.Sprintf("Puntos por compra de $%.2f", orderTotal),
		Timestamp:   now,
		ExpiresAt:   &expires,
		OrderID:     orderID,
	})

	if err := s.accountRepo.Save(ctx, account); err != nil {
		slog.Error("Failed to save account after accrual", "error", err, "userId", userID, "orderId", orderID)
		return nil, fmt.Errorf("failed to save loyalty account: %w", err)
	}

	result := &models.EarnResult{
		PointsEarned:   pointsEarned,
		NewTotalPoints: account.Points,
	}
	if account.Tier != currentTier.Tier {
		result.TierUpgrade = true
		result.NewTier = models.TierForPoints(account.Points).Name
	}

	slog.Info("Points accrued", "userId", userID, "orderId", orderID, "orderTotal", orderTotal,
		"pointsEarned", pointsEarned, "newTotal", account.Points, "tierUpgrade", result.TierUpgrade)
	return result, nil
}

// RedeemPoints burns points against an order. Redemption is all-or-nothing:
// asking for more than the balance fails without side effects.
func (s *LoyaltyServiceImpl) RedeemPoints(ctx context.Context, userID string, points int, orderID string, discountApplied float64) (*models.RedeemResult, error) {
	if points <= 0 {
		return &models.RedeemResult{Success: false, Message: "La cantidad de puntos debe ser mayor a cero"}, nil
	}

	account, err := s.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	if points > account.Points {
		slog.Warn("Redemption rejected, insufficient points", "userId", userID, "requested", points, "balance", account.Points)
		return &models.RedeemResult{Success: false, Message: "Puntos insuficientes"}, nil
	}

	account.Apply(models.PointTransaction{
		ID:          primitive.NewObjectID(),
		Type:        models.TransactionRedeemed,
		Points:      -points,
		Description: fmt.Sprintf("Canje de %d puntos por $%.2f de descuento", points, discountApplied),
		Timestamp:   time.Now(),
		OrderID:     orderID,
	})

	if err := s.accountRepo.Save(ctx, account); err != nil {
		slog.Error("Failed to save account after redemption", "error", err, "userId", userID, "orderId", orderID)
		return nil, fmt.Errorf("failed to save loyalty account: %w", err)
	}

	slog.Info("Points redeemed", "userId", userID, "orderId", orderID, "points", points, "newTotal", account.Points)
	return &models.RedeemResult{
		Success:        true,
		NewTotalPoints: account.Points,
		Message:        "Puntos canjeados correctamente",
	}, nil
}

// CalculatePointsDiscount converts points to currency at the configured rate
// (100 points = RedeemValue).
func (s *LoyaltyServiceImpl) CalculatePointsDiscount(points int) float64 {
	return float64(points) / 100 * s.cfg.Loyalty.RedeemValue
}

/// MaxRedeemablePoints returns the largest redemption the cart admits: the
// configured fraction of the cart expressed in points, capped by the balance.
func (s *LoyaltyServiceImpl) MaxRedeemablePoints(ctx context.Context, userID string, cartTotal float64) (int, error) {
	account, err := s.GetAccount(ctx, userID)
	if err != nil {
		return 0, err
	}

	capPoints := int(math.Floor(cartTotal * s.cfg.Loyalty.RedeemCapFraction / s.cfg.Loyalty.RedeemValue * 100))
	if capPoints > account.Points {
		capPoints = account.Points
	}
	if capPoints < 0 {
		capPoints = 0
	}
	return capPoints, nil
}

// GrantBonusPoints credits points outside the purchase flow. Bonus entries
// follow the same expiry rule as earned ones.
func (s *LoyaltyServiceImpl) GrantBonusPoints(ctx context.Context, userID string, points int, description string) (*models.EarnResult, error) {
	if points <= 0 {
		return nil, fmt.Errorf("bonus points must be positive: %d", points)
	}

	account, err := s.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	previousTier := account.Tier
	s.applyBonus(account, points, description, time.Now())

	if err := s.accountRepo.Save(ctx, account); err != nil {
		slog.Error("Failed to save account after bonus", "error", err, "userId", userID)
		return nil, fmt.Errorf("failed to save loyalty account: %w", err)
	}

	result := &models.EarnResult{
		PointsEarned:   points,
		NewTotalPoints: account.Points,
	}
	if account.Tier != previousTier {
		result.TierUpgrade = true
		result.NewTier = models.TierForPoints(account.Points).Name
	}

	slog.Info("Bonus points granted", "userId", userID, "points", points, "description", description)
	return result, nil
}

// UnlockAchievement records the unlock and grants the reward in one aggregate
// save, so an unlock without its points can never be persisted.
func (s *LoyaltyServiceImpl) UnlockAchievement(ctx context.Context, userID string, achievementID string) (*models.UnlockResult, error) {
	achievement := models.AchievementByID(achievementID)
	if achievement == nil {
		return &models.UnlockResult{Success: false, Message: "Logro no encontrado"}, nil
	}

	account, err := s.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	if account.HasUnlocked(achievementID) {
		return &models.UnlockResult{Success: false, Message: "Logro ya desbloqueado"}, nil
	}

	s.unlock(account, achievement, time.Now())

	if err := s.accountRepo.Save(ctx, account); err != nil {
		slog.Error("Failed to save account after unlock", "error", err, "userId", userID, "achievementId", achievementID)
		return nil, fmt.Errorf("failed to save loyalty account: %w", err)
	}

	slog.Info("Achievement unlocked", "userId", userID, "achievementId", achievementID, "reward", achievement.PointsReward)
	return &models.UnlockResult{
		Success:      true,
		Achievement:  achievement,
		PointsEarned: achievement.PointsReward,
		Message:      "¡Logro desbloqueado!",
	}, nil
}

// CheckAchievements walks the catalog in order and unlocks everything the
// stats satisfy, in one aggregate save. Returns only this call's unlocks.
func (s *LoyaltyServiceImpl) CheckAchievements(ctx context.Context, userID string, stats models.MemberStats) ([]models.Achievement, error) {
	account, err := s.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	unlocked := []models.Achievement{}
	for _, achievement := range models.AchievementCatalog {
		if account.HasUnlocked(achievement.ID) {
			continue
		}
		if stats.Value(achievement.RequirementType) < achievement.RequirementValue {
			continue
		}
		a := achievement
		s.unlock(account, &a, now)
		unlocked = append(unlocked, achievement)
	}

	if len(unlocked) == 0 {
		return unlocked, nil
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		slog.Error("Failed to save account after achievement check", "error", err, "userId", userID)
		return nil, fmt.Errorf("failed to save loyalty account: %w", err)
	}

	slog.Info("Achievements unlocked by stats check", "userId", userID, "count", len(unlocked))
	return unlocked, nil
}

// ProgressToNextTier reports linear progress between the floor of the current
// tier and the floor of the next one.
func (s *LoyaltyServiceImpl) ProgressToNextTier(ctx context.Context, userID string) (*models.TierProgress, error) {
	account, err := s.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	current := models.TierForPoints(account.Points)
	next := models.NextTierDefinition(current.Tier)
	if next == nil {
		return &models.TierProgress{IsMaxTier: true, Progress: 100}, nil
	}

	span := float64(next.MinPoints - current.MinPoints)
	progress := float64(account.Points-current.MinPoints) / span * 100
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	needed := next.MinPoints - account.Points
	if needed < 0 {
		needed = 0
	}

	return &models.TierProgress{
		Progress:     progress,
		PointsNeeded: needed,
		NextTier:     next.Name,
	}, nil
}

// GetTransactions returns the ledger, newest first.
func (s *LoyaltyServiceImpl) GetTransactions(ctx context.Context, userID string) ([]models.PointTransaction, error) {
	account, err := s.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return account.Transactions, nil
}

func (s *LoyaltyServiceImpl) applyBonus(account *models.LoyaltyAccount, points int, description string, now time.Time) {
	expires := now.AddDate(0, 0, s.cfg.Loyalty.ExpiryDays)
	account.Apply(models.PointTransaction{
		ID:          primitive.NewObjectID(),
		Type:        models.TransactionBonus,
		Points:      points,
		Description: description,
		Timestamp:   now,
		ExpiresAt:   &expires,
	})
}

func (s *LoyaltyServiceImpl) unlock(account *models.LoyaltyAccount, achievement *models.Achievement, now time.Time) {
	account.UnlockedAchievements = append(account.UnlockedAchievements, models.AchievementUnlock{
		AchievementID: achievement.ID,
		UnlockedAt:    now,
		PointsReward:  achievement.PointsReward,
	})
	s.applyBonus(account, achievement.PointsReward, fmt.Sprintf("Logro desbloqueado: %s", achievement.Name), now)
}
