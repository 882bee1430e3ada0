package model

import (
	"time"
)

type OtpCode struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	Identifier string    `gorm:"size:255;not null;index" json:"identifier"` // 邮箱/用户名/手机号
	Purpose    string    `gorm:"size:40;not null;index" json:"purpose"`     // login | forgot | change_email | change_phone
	Code       string    `gorm:"size:12;not null" json:"-"`
	ExpiresAt  time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func (OtpCode) TableName() string {
	return "otp_codes"
}
