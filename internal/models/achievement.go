package models

import "time"

// RequirementType selects which member statistic an achievement is measured
// against.
type RequirementType string

const (
	RequirementOrdersCount  RequirementType = "orders_count"
	RequirementTotalSpent   RequirementType = "total_spent"
	RequirementReviewsCount RequirementType = "reviews_count"
	RequirementReferrals    RequirementType = "referrals"
	RequirementCustomOrders RequirementType = "custom_orders"
)

// Achievement is one entry of the static milestone catalog.
type Achievement struct {
	ID               string          `bson:"id" json:"id"`
	Name             string          `bson:"name" json:"name"`
	Description      string          `bson:"description" json:"description"`
	RequirementType  RequirementType `bson:"requirementType" json:"requirementType"`
	RequirementValue float64         `bson:"requirementValue" json:"requirementValue"`
	PointsReward     int             `bson:"pointsReward" json:"pointsReward"`
}

// AchievementUnlock records one unlock. PointsReward is snapshotted so later
// catalog changes never rewrite history.
type AchievementUnlock struct {
	AchievementID string    `bson:"achievementId" json:"achievementId"`
	UnlockedAt    time.Time `bson:"unlockedAt" json:"unlockedAt"`
	PointsReward  int       `bson:"pointsReward" json:"pointsReward"`
}

// MemberStats carries the counters achievements are evaluated against. The
// order service supplies them; this service never derives them itself.
type MemberStats struct {
	OrdersCount  int     `json:"ordersCount"`
	TotalSpent   float64 `json:"totalSpent"`
	ReviewsCount int     `json:"reviewsCount"`
	Referrals    int     `json:"referrals"`
	CustomOrders int     `json:"customOrders"`
}

// Value returns the stat matching the requirement type.
func (s MemberStats) Value(t RequirementType) float64 {
	switch t {
	case RequirementOrdersCount:
		return float64(s.OrdersCount)
	case RequirementTotalSpent:
		return s.TotalSpent
	case RequirementReviewsCount:
		return float64(s.ReviewsCount)
	case RequirementReferrals:
		return float64(s.Referrals)
	case RequirementCustomOrders:
		return float64(s.CustomOrders)
	}
	return 0
}

// AchievementCatalog is the static milestone set, evaluated in this order.
var AchievementCatalog = []Achievement{
	{
		ID:               "first_order",
		Name:             "Primera Compra",
		Description:      "Completa tu primer pedido",
		RequirementType:  RequirementOrdersCount,
		RequirementValue: 1,
		PointsReward:     50,
	},
	{
		ID:               "loyal_customer",
		Name:             "Cliente Fiel",
		Description:      "Completa 10 pedidos",
		RequirementType:  RequirementOrdersCount,
		RequirementValue: 10,
		PointsReward:     200,
	},
	{
		ID:               "big_spender",
		Name:             "Gran Comprador",
		Description:      "Acumula $5,000 en compras",
		RequirementType:  RequirementTotalSpent,
		RequirementValue: 5000,
		PointsReward:     300,
	},
	{
		ID:               "reviewer",
		Name:             "Crítico Estrella",
		Description:      "Escribe 5 reseñas de productos",
		RequirementType:  RequirementReviewsCount,
		RequirementValue: 5,
		PointsReward:     100,
	},
	{
		ID:               "ambassador",
		Name:             "Embajador",
		Description:      "Refiere a 3 amigos",
		RequirementType:  RequirementReferrals,
		RequirementValue: 3,
		PointsReward:     150,
	},
	{
		ID:               "custom_creator",
		Name:             "Creador Personalizado",
		Description:      "Completa 5 pedidos con diseño propio",
		RequirementType:  RequirementCustomOrders,
		RequirementValue: 5,
		PointsReward:     250,
	},
}

// AchievementByID looks up a catalog entry; nil when the id is unknown.
func AchievementByID(id string) *Achievement {
	for i := range AchievementCatalog {
		if AchievementCatalog[i].ID == id {
			return &AchievementCatalog[i]
		}
	}
	return nil
}

// UnlockResult is the structured outcome of an unlock attempt.
type UnlockResult struct {
	Success      bool         `json:"success"`
	Achievement  *Achievement `json:"achievement,omitempty"`
	PointsEarned int          `json:"pointsEarned,omitempty"`
	Message      string       `json:"message"`
}
