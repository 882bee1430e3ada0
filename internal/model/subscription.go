package model

import (
	"time"
)

// Subscription 每个用户至多一行（user_id 唯一），记录订阅的当前状态。
// 过期不做后台扫描，读取方通过 expires_at 判定实际是否生效。
type Subscription struct {
	ID            int64      `gorm:"primaryKey" json:"id"`
	UserID        int64      `gorm:"uniqueIndex;not null" json:"user_id"`
	Provider      string     `gorm:"size:40;default:google_play" json:"provider"`
	Status        string     `gorm:"size:40;default:inactive;index" json:"status"` // active | inactive
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	PurchaseToken *string    `gorm:"size:255" json:"-"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// SubscriptionPlan 套餐是静态参考数据，主键为 Google Play 商品 ID。
type SubscriptionPlan struct {
	ID           string `gorm:"primaryKey;size:80" json:"id"` // 如 smart_monthly_199
	Name         string `gorm:"size:80;not null" json:"name"`
	PriceINR     int    `gorm:"default:0" json:"price_inr"`
	DurationDays int    `gorm:"default:30" json:"duration_days"`
	ContactLimit int    `gorm:"default:0" json:"contact_limit"`
}

func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}

// SubscriptionPeriod 每次激活产生一行；purchase_token 全局唯一，防止令牌跨账号复用。
// 联系方式用量按 period 计数，续费轮换 period 后额度自然重置。
type SubscriptionPeriod struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	UserID        int64     `gorm:"not null;index" json:"user_id"`
	PlanID        string    `gorm:"size:80;not null;index" json:"plan_id"`
	PurchaseToken string    `gorm:"size:255;uniqueIndex;not null" json:"-"`
	StartTime     time.Time `gorm:"not null" json:"start_time"`
	EndTime       time.Time `gorm:"not null" json:"end_time"`
	Active        bool      `gorm:"default:true;index" json:"active"`
	CreatedAt     time.Time `json:"created_at"`
}

func (SubscriptionPeriod) TableName() string {
	return "subscription_periods"
}
