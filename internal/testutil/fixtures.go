package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/estate_go_server/internal/model"
)

var fixtureSeq int64

func nextSeq() int64 {
	return atomic.AddInt64(&fixtureSeq, 1)
}

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	seq := nextSeq()
	user := &model.User{
		Email:          fmt.Sprintf("test_%d@example.com", seq),
		Username:       fmt.Sprintf("testuser_%d", seq),
		PasswordHash:   "$2a$10$abcdefghijklmnopqrstuvwxyz123456", // bcrypt hash placeholder
		Role:           "user",
		ApprovalStatus: "approved",
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// WithPhone 设置手机号（含归一化值）
func WithPhone(phone, normalized string) func(*model.User) {
	return func(u *model.User) {
		u.Phone = phone
		u.PhoneNormalized = normalized
	}
}

// WithRole 设置角色
func WithRole(role string) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// WithApproval 设置审核状态
func WithApproval(status string) func(*model.User) {
	return func(u *model.User) {
		u.ApprovalStatus = status
	}
}

// TestListing 创建测试房源
func TestListing(t *testing.T, db *gorm.DB, ownerID int64, opts ...func(*model.Listing)) *model.Listing {
	t.Helper()

	seq := nextSeq()
	listing := &model.Listing{
		OwnerID:      ownerID,
		AdNumber:     fmt.Sprintf("T%05d", seq%100000),
		Title:        fmt.Sprintf("Test Listing %d", seq),
		ListingType:  "apartment",
		RentSale:     "rent",
		Price:        12000,
		Status:       "approved",
		Availability: "available",
		ContactPhone: "+91 98765 43210",
		ContactEmail: "owner@example.com",
	}

	for _, opt := range opts {
		opt(listing)
	}

	if err := db.Create(listing).Error; err != nil {
		t.Fatalf("Failed to create test listing: %v", err)
	}

	return listing
}

// WithListingStatus 设置房源审核状态
func WithListingStatus(status string) func(*model.Listing) {
	return func(l *model.Listing) {
		l.Status = status
	}
}

// WithContact 设置联系方式
func WithContact(phone, email string) func(*model.Listing) {
	return func(l *model.Listing) {
		l.ContactPhone = phone
		l.ContactEmail = email
	}
}

// WithLocation 设置位置（含归一化值）
func WithLocation(state, district, area string) func(*model.Listing) {
	return func(l *model.Listing) {
		l.State = state
		l.District = district
		l.Area = area
		l.StateNormalized = state
		l.DistrictNormalized = district
		l.AreaNormalized = area
	}
}

// WithAddress 设置地址（含归一化值）
func WithAddress(address, normalized string) func(*model.Listing) {
	return func(l *model.Listing) {
		l.Address = address
		l.AddressNormalized = normalized
	}
}

// TestPlan 创建测试套餐
func TestPlan(t *testing.T, db *gorm.DB, id string, contactLimit int, opts ...func(*model.SubscriptionPlan)) *model.SubscriptionPlan {
	t.Helper()

	plan := &model.SubscriptionPlan{
		ID:           id,
		Name:         id,
		PriceINR:     199,
		DurationDays: 30,
		ContactLimit: contactLimit,
	}

	for _, opt := range opts {
		opt(plan)
	}

	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("Failed to create test plan: %v", err)
	}

	return plan
}

// TestSubscription 创建测试订阅行
func TestSubscription(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Subscription)) *model.Subscription {
	t.Helper()

	sub := &model.Subscription{
		UserID:   userID,
		Provider: "google_play",
		Status:   "inactive",
	}

	for _, opt := range opts {
		opt(sub)
	}

	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}

	return sub
}

// WithActiveUntil 置为激活并设置到期时间
func WithActiveUntil(expiresAt time.Time) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.Status = "active"
		s.ExpiresAt = &expiresAt
	}
}

// TestPeriod 创建测试订阅周期
func TestPeriod(t *testing.T, db *gorm.DB, userID int64, planID string, opts ...func(*model.SubscriptionPeriod)) *model.SubscriptionPeriod {
	t.Helper()

	seq := nextSeq()
	now := time.Now()
	period := &model.SubscriptionPeriod{
		UserID:        userID,
		PlanID:        planID,
		PurchaseToken: fmt.Sprintf("token_%d", seq),
		StartTime:     now.Add(-time.Hour),
		EndTime:       now.Add(29 * 24 * time.Hour),
		Active:        true,
	}

	for _, opt := range opts {
		opt(period)
	}

	if err := db.Create(period).Error; err != nil {
		t.Fatalf("Failed to create test period: %v", err)
	}

	return period
}

// WithPeriodWindow 设置周期起止时间
func WithPeriodWindow(start, end time.Time) func(*model.SubscriptionPeriod) {
	return func(p *model.SubscriptionPeriod) {
		p.StartTime = start
		p.EndTime = end
	}
}

// WithPeriodActive 设置周期生效标志
func WithPeriodActive(active bool) func(*model.SubscriptionPeriod) {
	return func(p *model.SubscriptionPeriod) {
		p.Active = active
	}
}

// WithPurchaseToken 设置购买令牌
func WithPurchaseToken(token string) func(*model.SubscriptionPeriod) {
	return func(p *model.SubscriptionPeriod) {
		p.PurchaseToken = token
	}
}
