package models

// QuoteRequest prices a cart before payment.
type QuoteRequest struct {
	CartTotal      float64 `json:"cartTotal" binding:"required,gte=0"`
	ShippingCost   float64 `json:"shippingCost" binding:"gte=0"`
	CouponCode     string  `json:"couponCode"`
	PointsToRedeem int     `json:"pointsToRedeem" binding:"gte=0"`
}

// CheckoutQuote is the composed price breakdown for one cart. Nothing in it
// is persisted; the storefront re-quotes whenever the cart changes.
type CheckoutQuote struct {
	CartTotal      float64 `json:"cartTotal"`
	ShippingCost   float64 `json:"shippingCost"`
	CouponCode     string  `json:"couponCode,omitempty"`
	CouponValid    bool    `json:"couponValid"`
	CouponMessage  string  `json:"couponMessage,omitempty"`
	CouponDiscount float64 `json:"couponDiscount"`
	FreeShipping   bool    `json:"freeShipping"`
	PointsUsed     int     `json:"pointsUsed"`
	PointsDiscount float64 `json:"pointsDiscount"`
	FinalTotal     float64 `json:"finalTotal"`
	SavedAmount    float64 `json:"savedAmount"`
}

// CompleteRequest settles loyalty effects after payment confirmation.
type CompleteRequest struct {
	OrderID        string       `json:"orderId" binding:"required"`
	OrderTotal     float64      `json:"orderTotal" binding:"required,gte=0"`
	PointsRedeemed int          `json:"pointsRedeemed" binding:"gte=0"`
	Stats          *MemberStats `json:"stats"`
}

// CheckoutResult reports everything that happened while settling an order.
type CheckoutResult struct {
	CouponRegistered bool          `json:"couponRegistered"`
	CouponMessage    string        `json:"couponMessage,omitempty"`
	Redeem           *RedeemResult `json:"redeem,omitempty"`
	Earn             *EarnResult   `json:"earn"`
	NewAchievements  []Achievement `json:"newAchievements"`
}
