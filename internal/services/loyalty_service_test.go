package services

import (
	"context"
	"testing"
	"time"

	"github.com/printcraft/loyalty-backend/internal/config"
	"github.com/printcraft/loyalty-backend/internal/models"
	"github.com/printcraft/loyalty-backend/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", ExpiresIn: 3600},
		Loyalty: config.LoyaltyConfig{
			EarnRate:          10,
			RedeemValue:       10,
			RedeemCapFraction: 0.5,
			ExpiryDays:        365,
		},
	}
}

func newLoyaltyFixture() (*LoyaltyServiceImpl, *memory.LoyaltyAccountRepository) {
	repo := memory.NewLoyaltyAccountRepository()
	return NewLoyaltyService(repo, testConfig()), repo
}

func seedAccount(t *testing.T, repo *memory.LoyaltyAccountRepository, userID string, points int) {
	t.Helper()
	account := models.NewLoyaltyAccount(userID)
	account.Apply(models.PointTransaction{
		ID:        primitive.NewObjectID(),
		Type:      models.TransactionEarned,
		Points:    points,
		Timestamp: time.Now(),
	})
	require.NoError(t, repo.Save(context.Background(), account))
}

func ledgerSum(account *models.LoyaltyAccount) int {
	sum := 0
	for _, tx := range account.Transactions {
		sum += tx.Points
	}
	return sum
}

func TestEarnPointsFreshAccount(t *testing.T) {
	svc, _ := newLoyaltyFixture()
	ctx := context.Background()

	result, err := svc.EarnPointsFromPurchase(ctx, "user-1", 250, "order-1")
	require.NoError(t, err)

	assert.Equal(t, 25, result.PointsEarned)
	assert.Equal(t, 25, result.NewTotalPoints)
	assert.False(t, result.TierUpgrade)

	account, err := svc.GetAccount(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, account.Transactions, 1)
	assert.Equal(t, models.TransactionEarned, account.Transactions[0].Type)
	assert.Equal(t, "order-1", account.Transactions[0].OrderID)
	require.NotNil(t, account.Transactions[0].ExpiresAt)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 365), *account.Transactions[0].ExpiresAt, time.Minute)
}

func TestEarnPointsTierUpgradeUsesPreviousMultiplier(t *testing.T) {
	svc, repo := newLoyaltyFixture()
	ctx := context.Background()
	seedAccount(t, repo, "user-1", 980)

	result, err := svc.EarnPointsFromPurchase(ctx, "user-1", 300, "order-2")
	require.NoError(t, err)

	// Bronze multiplier applies even though the purchase crosses into silver.
	assert.Equal(t, 30, result.PointsEarned)
	assert.Equal(t, 1010, result.NewTotalPoints)
	assert.True(t, result.TierUpgrade)
	assert.Equal(t, "Plata", result.NewTier)
}

func TestEarnPointsAppliesTierMultiplier(t *testing.T) {
	svc, repo := newLoyaltyFixture()
	ctx := context.Background()
	seedAccount(t, repo, "user-1", 1500) // silver, multiplier 1.25

	result, err := svc.EarnPointsFromPurchase(ctx, "user-1", 300, "order-3")
	require.NoError(t, err)

	// floor(floor(300/10) * 1.25) = floor(37.5) = 37
	assert.Equal(t, 37, result.PointsEarned)
}

func TestLedgerSumMatchesBalanceAcrossMutations(t *testing.T) {
	svc, _ := newLoyaltyFixture()
	ctx := context.Background()
	userID := "user-ledger"

	_, err := svc.EarnPointsFromPurchase(ctx, userID, 420, "o1")
	require.NoError(t, err)
	_, err = svc.GrantBonusPoints(ctx, userID, 100, "promo")
	require.NoError(t, err)
	redeem, err := svc.RedeemPoints(ctx, userID, 50, "o2", 5)
	require.NoError(t, err)
	require.True(t, redeem.Success)
	_, err = svc.EarnPointsFromPurchase(ctx, userID, 999.99, "o3")
	require.NoError(t, err)

	account, err := svc.GetAccount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, account.Points, ledgerSum(account))
	assert.Equal(t, models.TierForPoints(account.Points).Tier, account.Tier)
}

func TestRedeemPointsBoundary(t *testing.T) {
	svc, repo := newLoyaltyFixture()
	ctx := context.Background()
	seedAccount(t, repo, "user-1", 100)

	// One point over the balance fails with no side effects.
	result, err := svc.RedeemPoints(ctx, "user-1", 101, "order-x", 10.1)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Puntos insuficientes", result.Message)

	account, err := svc.GetAccount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 100, account.Points)
	assert.Len(t, account.Transactions, 1)

	// The exact balance drains to zero.
	result, err = svc.RedeemPoints(ctx, "user-1", 100, "order-y", 10)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.NewTotalPoints)

	account, err = svc.GetAccount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, account.Points)
	assert.Equal(t, models.TierBronze, account.Tier)
	assert.Equal(t, -100, account.Transactions[0].Points)
}

func TestRedeemPointsCanDowngradeTier(t *testing.T) {
	svc, repo := newLoyaltyFixture()
	ctx := context.Background()
	seedAccount(t, repo, "user-1", 3200) // gold

	result, err := svc.RedeemPoints(ctx, "user-1", 500, "order-z", 50)
	require.NoError(t, err)
	require.True(t, result.Success)

	account, err := svc.GetAccount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.TierSilver, account.Tier)
}

func TestRedeemRejectsNonPositive(t *testing.T) {
	svc, _ := newLoyaltyFixture()
	result, err := svc.RedeemPoints(context.Background(), "user-1", 0, "order", 0)
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestCalculatePointsDiscount(t *testing.T) {
	svc, _ := newLoyaltyFixture()
	assert.Equal(t, 10.0, svc.CalculatePointsDiscount(100))
	assert.Equal(t, 2.5, svc.CalculatePointsDiscount(25))
	assert.Equal(t, 0.0, svc.CalculatePointsDiscount(0))
}

func TestMaxRedeemablePoints(t *testing.T) {
	svc, repo := newLoyaltyFixture()
	ctx := context.Background()
	seedAccount(t, repo, "rich", 10000)
	seedAccount(t, repo, "poor", 120)

	// Cart cap: floor(400 * 0.5 / 10 * 100) = 2000.
	points, err := svc.MaxRedeemablePoints(ctx, "rich", 400)
	require.NoError(t, err)
	assert.Equal(t, 2000, points)

	// Balance cap wins when smaller.
	points, err = svc.MaxRedeemablePoints(ctx, "poor", 400)
	require.NoError(t, err)
	assert.Equal(t, 120, points)
}

func TestGrantBonusPoints(t *testing.T) {
	svc, _ := newLoyaltyFixture()
	ctx := context.Background()

	result, err := svc.GrantBonusPoints(ctx, "user-1", 75, "Compensación por retraso")
	require.NoError(t, err)
	assert.Equal(t, 75, result.PointsEarned)

	account, err := svc.GetAccount(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, account.Transactions, 1)
	assert.Equal(t, models.TransactionBonus, account.Transactions[0].Type)
	require.NotNil(t, account.Transactions[0].ExpiresAt)

	_, err = svc.GrantBonusPoints(ctx, "user-1", -5, "negativo")
	assert.Error(t, err)
}

func TestUnlockAchievement(t *testing.T) {
	svc, _ := newLoyaltyFixture()
	ctx := context.Background()

	result, err := svc.UnlockAchievement(ctx, "user-1", "first_order")
	require.NoError(t, err)
	require.True(t, result.Success)
	require.NotNil(t, result.Achievement)
	assert.Equal(t, 50, result.PointsEarned)

	// The unlock and its reward land in one aggregate.
	account, err := svc.GetAccount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 50, account.Points)
	require.Len(t, account.UnlockedAchievements, 1)
	assert.Equal(t, 50, account.UnlockedAchievements[0].PointsReward)

	// Second unlock fails with no side effects.
	result, err = svc.UnlockAchievement(ctx, "user-1", "first_order")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Logro ya desbloqueado", result.Message)

	account, err = svc.GetAccount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 50, account.Points)
	assert.Len(t, account.UnlockedAchievements, 1)
}

func TestUnlockAchievementUnknownID(t *testing.T) {
	svc, _ := newLoyaltyFixture()
	result, err := svc.UnlockAchievement(context.Background(), "user-1", "no_such_thing")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Logro no encontrado", result.Message)
}

func TestCheckAchievements(t *testing.T) {
	svc, _ := newLoyaltyFixture()
	ctx := context.Background()

	stats := models.MemberStats{OrdersCount: 1, ReviewsCount: 5}
	unlocked, err := svc.CheckAchievements(ctx, "user-1", stats)
	require.NoError(t, err)
	require.Len(t, unlocked, 2)
	// Catalog order: first_order before reviewer.
	assert.Equal(t, "first_order", unlocked[0].ID)
	assert.Equal(t, "reviewer", unlocked[1].ID)

	account, err := svc.GetAccount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 150, account.Points)
	assert.Equal(t, account.Points, ledgerSum(account))

	// Re-check with the same stats unlocks nothing new.
	unlocked, err = svc.CheckAchievements(ctx, "user-1", stats)
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	// Higher stats unlock the next milestone only.
	stats.OrdersCount = 10
	unlocked, err = svc.CheckAchievements(ctx, "user-1", stats)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "loyal_customer", unlocked[0].ID)
}

func TestProgressToNextTier(t *testing.T) {
	svc, repo := newLoyaltyFixture()
	ctx := context.Background()

	seedAccount(t, repo, "mid-bronze", 500)
	progress, err := svc.ProgressToNextTier(ctx, "mid-bronze")
	require.NoError(t, err)
	assert.False(t, progress.IsMaxTier)
	assert.InDelta(t, 50.0, progress.Progress, 0.01)
	assert.Equal(t, 500, progress.PointsNeeded)
	assert.Equal(t, "Plata", progress.NextTier)

	seedAccount(t, repo, "platinum", 8000)
	progress, err = svc.ProgressToNextTier(ctx, "platinum")
	require.NoError(t, err)
	assert.True(t, progress.IsMaxTier)
	assert.Equal(t, 100.0, progress.Progress)
}

func TestGetAccountCreatesOnFirstLoad(t *testing.T) {
	svc, repo := newLoyaltyFixture()
	ctx := context.Background()

	account, err := svc.GetAccount(ctx, "new-user")
	require.NoError(t, err)
	assert.Equal(t, 0, account.Points)
	assert.Equal(t, models.TierBronze, account.Tier)

	// The aggregate was persisted, not just returned.
	stored, err := repo.FindByUserID(ctx, "new-user")
	require.NoError(t, err)
	assert.Equal(t, "new-user", stored.UserID)
}
