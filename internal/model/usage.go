package model

import (
	"time"
)

// ContactUsage 付费解锁记录，只插入不更新。
// (user, listing, period) 唯一约束是幂等与并发正确性的唯一机制：
// 重复插入冲突即视为"已解锁"。
type ContactUsage struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;index;uniqueIndex:uq_usage_user_listing_period" json:"user_id"`
	ListingID int64     `gorm:"not null;index;uniqueIndex:uq_usage_user_listing_period" json:"listing_id"`
	PeriodID  int64     `gorm:"not null;index;uniqueIndex:uq_usage_user_listing_period" json:"period_id"`
	UsedAt    time.Time `json:"used_at"`
}

func (ContactUsage) TableName() string {
	return "contact_usage"
}

// FreeContactUsage 免费解锁记录：每个 (user, listing) 终身一次，与订阅状态无关。
type FreeContactUsage struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;index;uniqueIndex:uq_free_usage_user_listing" json:"user_id"`
	ListingID int64     `gorm:"not null;index;uniqueIndex:uq_free_usage_user_listing" json:"listing_id"`
	UsedAt    time.Time `json:"used_at"`
}

func (FreeContactUsage) TableName() string {
	return "free_contact_usage"
}
