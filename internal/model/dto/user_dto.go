package dto

// UpdateProfileRequest 更新个人资料（仅更新提供的字段）
type UpdateProfileRequest struct {
	Name               *string  `json:"name,omitempty" binding:"omitempty,max=255"`
	Phone              *string  `json:"phone,omitempty" binding:"omitempty,max=32"`
	State              *string  `json:"state,omitempty" binding:"omitempty,max=80"`
	District           *string  `json:"district,omitempty" binding:"omitempty,max=120"`
	CompanyName        *string  `json:"company_name,omitempty" binding:"omitempty,max=255"`
	CompanyDescription *string  `json:"company_description,omitempty" binding:"omitempty,max=2000"`
	CompanyAddress     *string  `json:"company_address,omitempty" binding:"omitempty,max=512"`
	GpsLat             *float64 `json:"gps_lat,omitempty"`
	GpsLng             *float64 `json:"gps_lng,omitempty"`
}

// SubscriptionStatus 订阅状态（GET /me/subscription）
type SubscriptionStatus struct {
	Status    string `json:"status"`
	Provider  string `json:"provider"`
	ExpiresAt string `json:"expires_at,omitempty"`
	// 当前生效周期（仅激活时返回）
	PlanID    string `json:"plan_id,omitempty"`
	PlanName  string `json:"plan_name,omitempty"`
	Allowance int    `json:"allowance,omitempty"`
	Used      int    `json:"used,omitempty"`
}
