package model

import (
	"time"
)

type User struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	Email    string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Username string `gorm:"size:80;uniqueIndex;not null" json:"username"`
	// 手机号唯一性依赖 normalized 字段的非空校验（空串不参与查重）
	Phone           string `gorm:"size:32;index" json:"phone"`
	PhoneNormalized string `gorm:"size:32;index" json:"-"`
	Name            string `gorm:"size:255" json:"name"`
	State           string `gorm:"size:80" json:"state"`
	District        string `gorm:"size:120" json:"district"`
	// 最近一次上报的 GPS 位置（用于附近房源排序）
	GpsLat *float64 `gorm:"index" json:"gps_lat,omitempty"`
	GpsLng *float64 `gorm:"index" json:"gps_lng,omitempty"`

	Role          string `gorm:"size:32;default:user;index" json:"role"` // user | owner | admin
	OwnerCategory string `gorm:"size:120" json:"owner_category,omitempty"`

	// 业主/公司资料
	CompanyName              string `gorm:"size:255;index" json:"company_name,omitempty"`
	CompanyNameNormalized    string `gorm:"size:255;index" json:"-"`
	CompanyDescription       string `gorm:"type:text" json:"company_description,omitempty"`
	CompanyAddress           string `gorm:"size:512" json:"company_address,omitempty"`
	CompanyAddressNormalized string `gorm:"size:512;index" json:"-"`

	ProfileImagePath   string `gorm:"size:512" json:"profile_image_path,omitempty"`
	ProfileImageOSSKey string `gorm:"size:255" json:"-"`

	// 业主入驻审核（role=owner）
	ApprovalStatus string `gorm:"size:40;default:approved;index" json:"approval_status"` // approved|pending|rejected|suspended
	ApprovalReason string `gorm:"type:text" json:"approval_reason,omitempty"`

	PasswordHash string    `gorm:"size:255" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
