package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tier identifies a membership level.
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TransactionEarned   TransactionType = "earned"
	TransactionRedeemed TransactionType = "redeemed"
	TransactionBonus    TransactionType = "bonus"
)

// TierDefinition is one row of the static tier table. MaxPoints is inclusive;
// -1 means unbounded.
type TierDefinition struct {
	Tier             Tier     `bson:"tier" json:"tier"`
	Name             string   `bson:"name" json:"name"`
	MinPoints        int      `bson:"minPoints" json:"minPoints"`
	MaxPoints        int      `bson:"maxPoints" json:"maxPoints"`
	PointsMultiplier float64  `bson:"pointsMultiplier" json:"pointsMultiplier"`
	Benefits         []string `bson:"benefits" json:"benefits"`
}

// TierTable is the static membership ladder. Ranges are contiguous and
// partition [0, ∞), so TierForPoints is total.
var TierTable = []TierDefinition{
	{
		Tier:             TierBronze,
		Name:             "Bronce",
		MinPoints:        0,
		MaxPoints:        999,
		PointsMultiplier: 1.0,
		Benefits:         []string{"Acumula 1 punto por cada $10 de compra"},
	},
	{
		Tier:             TierSilver,
		Name:             "Plata",
		MinPoints:        1000,
		MaxPoints:        2999,
		PointsMultiplier: 1.25,
		Benefits:         []string{"25% más puntos por compra", "Acceso anticipado a promociones"},
	},
	{
		Tier:             TierGold,
		Name:             "Oro",
		MinPoints:        3000,
		MaxPoints:        5999,
		PointsMultiplier: 1.5,
		Benefits:         []string{"50% más puntos por compra", "Envío gratis en pedidos seleccionados", "Soporte prioritario"},
	},
	{
		Tier:             TierPlatinum,
		Name:             "Platino",
		MinPoints:        6000,
		MaxPoints:        -1,
		PointsMultiplier: 2.0,
		Benefits:         []string{"Puntos dobles por compra", "Envío gratis siempre", "Regalos exclusivos", "Soporte prioritario"},
	},
}

// TierForPoints returns the tier definition whose range contains points.
func TierForPoints(points int) TierDefinition {
	for _, def := range TierTable {
		if points >= def.MinPoints && (def.MaxPoints < 0 || points <= def.MaxPoints) {
			return def
		}
	}
	// Unreachable while the table partitions [0, ∞); negative balances are
	// rejected before they can be persisted.
	return TierTable[0]
}

// NextTierDefinition returns the definition one level above t, or nil when t
// is the top of the ladder.
func NextTierDefinition(t Tier) *TierDefinition {
	for i, def := range TierTable {
		if def.Tier == t {
			if i+1 < len(TierTable) {
				next := TierTable[i+1]
				return &next
			}
			return nil
		}
	}
	return nil
}

// PointTransaction is one immutable ledger entry. Points is signed: negative
// for redemptions.
type PointTransaction struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type        TransactionType    `bson:"type" json:"type"`
	Points      int                `bson:"points" json:"points"`
	Description string             `bson:"description" json:"description"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
	ExpiresAt   *time.Time         `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
	OrderID     string             `bson:"orderId,omitempty" json:"orderId,omitempty"`
}

// LoyaltyAccount is the per-user aggregate: balance, derived tier, ledger and
// achievement unlocks. It is always loaded and saved as a whole document.
type LoyaltyAccount struct {
	ID                   primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	UserID               string              `bson:"userId" json:"userId"`
	Points               int                 `bson:"points" json:"points"`
	Tier                 Tier                `bson:"tier" json:"tier"`
	Transactions         []PointTransaction  `bson:"transactions" json:"transactions"`
	UnlockedAchievements []AchievementUnlock `bson:"unlockedAchievements" json:"unlockedAchievements"`
	CreatedAt            time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// NewLoyaltyAccount returns a fresh bronze account with an empty ledger.
func NewLoyaltyAccount(userID string) *LoyaltyAccount {
	now := time.Now()
	return &LoyaltyAccount{
		UserID:               userID,
		Points:               0,
		Tier:                 TierBronze,
		Transactions:         []PointTransaction{},
		UnlockedAchievements: []AchievementUnlock{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// Apply appends a ledger entry (newest first), adjusts the balance and
// re-derives the tier from the new balance. The tier field is never written
// through any other path, so it cannot drift from the balance.
func (a *LoyaltyAccount) Apply(tx PointTransaction) {
	a.Points += tx.Points
	a.Transactions = append([]PointTransaction{tx}, a.Transactions...)
	a.Tier = TierForPoints(a.Points).Tier
	a.UpdatedAt = tx.Timestamp
}

// HasUnlocked reports whether the achievement is already in the unlock set.
func (a *LoyaltyAccount) HasUnlocked(achievementID string) bool {
	for _, u := range a.UnlockedAchievements {
		if u.AchievementID == achievementID {
			return true
		}
	}
	return false
}

// EarnResult is returned by point-earning mutations.
type EarnResult struct {
	PointsEarned   int    `json:"pointsEarned"`
	NewTotalPoints int    `json:"newTotalPoints"`
	TierUpgrade    bool   `json:"tierUpgrade"`
	NewTier        string `json:"newTier,omitempty"`
}

// RedeemResult is the structured outcome of a redemption attempt.
type RedeemResult struct {
	Success        bool   `json:"success"`
	NewTotalPoints int    `json:"newTotalPoints,omitempty"`
	Message        string `json:"message"`
}

// TierProgress describes how far the account is from the next tier.
type TierProgress struct {
	IsMaxTier    bool    `json:"isMaxTier"`
	Progress     float64 `json:"progress"`
	PointsNeeded int     `json:"pointsNeeded"`
	NextTier     string  `json:"nextTier,omitempty"`
}
