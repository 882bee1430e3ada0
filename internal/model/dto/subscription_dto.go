package dto

// VerifySubscriptionRequest 校验 Google Play 订阅购买
type VerifySubscriptionRequest struct {
	PurchaseToken string `json:"purchase_token" binding:"required,min=1"`
	ProductID     string `json:"product_id" binding:"required,min=1"`
}

// VerifySubscriptionResponse 校验结果
type VerifySubscriptionResponse struct {
	Status       string `json:"status"` // valid
	ExpiryTimeMs int64  `json:"expiry_time"`
	OrderID      string `json:"order_id,omitempty"`
	PlanID       string `json:"plan_id"`
	ExpiresAt    string `json:"expires_at"`
}

// PlanInfo 套餐信息
type PlanInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PriceINR     int    `json:"price_inr"`
	DurationDays int    `json:"duration_days"`
	ContactLimit int    `json:"contact_limit"`
}
