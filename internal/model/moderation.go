package model

import (
	"time"
)

type ModerationLog struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	ActorUserID int64     `gorm:"not null;index" json:"actor_user_id"`
	EntityType  string    `gorm:"size:40;not null;index" json:"entity_type"` // user|listing|listing_image
	EntityID    int64     `gorm:"not null;index" json:"entity_id"`
	Action      string    `gorm:"size:40;not null;index" json:"action"` // approve|reject|suspend|create|upload
	Reason      string    `gorm:"type:text" json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (ModerationLog) TableName() string {
	return "moderation_logs"
}
