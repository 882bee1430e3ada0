package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/estate_go_server/internal/model"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(sub *model.Subscription) error {
	return r.db.Create(sub).Error
}

func (r *SubscriptionRepository) GetByUserID(userID int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) Update(sub *model.Subscription) error {
	return r.db.Save(sub).Error
}

// --- 套餐 ---

func (r *SubscriptionRepository) GetPlan(id string) (*model.SubscriptionPlan, error) {
	var plan model.SubscriptionPlan
	err := r.db.Where("id = ?", id).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *SubscriptionRepository) ListPlans() ([]*model.SubscriptionPlan, error) {
	var plans []*model.SubscriptionPlan
	err := r.db.Order("price_inr ASC").Find(&plans).Error
	return plans, err
}

// UpsertPlan 幂等写入套餐参考数据（启动时从配置播种）
func (r *SubscriptionRepository) UpsertPlan(plan *model.SubscriptionPlan) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "price_inr", "duration_days", "contact_limit"}),
	}).Create(plan).Error
}

// --- 订阅周期 ---

func (r *SubscriptionRepository) CreatePeriod(period *model.SubscriptionPeriod) error {
	return r.db.Create(period).Error
}

// GetPeriodByToken 按购买令牌查找周期（令牌全局唯一，防跨账号复用）
func (r *SubscriptionRepository) GetPeriodByToken(token string) (*model.SubscriptionPeriod, error) {
	var period model.SubscriptionPeriod
	err := r.db.Where("purchase_token = ?", token).First(&period).Error
	if err != nil {
		return nil, err
	}
	return &period, nil
}

// GetActivePeriod 用户当前生效的周期（最多一条，取最新）
func (r *SubscriptionRepository) GetActivePeriod(userID int64) (*model.SubscriptionPeriod, error) {
	var period model.SubscriptionPeriod
	err := r.db.Where("user_id = ? AND active = ?", userID, true).
		Order("created_at DESC").First(&period).Error
	if err != nil {
		return nil, err
	}
	return &period, nil
}

// DeactivatePeriods 续费前将用户既有周期全部置为不生效
func (r *SubscriptionRepository) DeactivatePeriods(userID int64) error {
	return r.db.Model(&model.SubscriptionPeriod{}).
		Where("user_id = ? AND active = ?", userID, true).
		Update("active", false).Error
}

// DeactivatePeriod 读取时发现周期已过期，就地降级单行
func (r *SubscriptionRepository) DeactivatePeriod(id int64) error {
	return r.db.Model(&model.SubscriptionPeriod{}).Where("id = ?", id).
		Update("active", false).Error
}

// ExpirePeriodsBefore 清理命令用：把 end_time 早于给定时刻的周期批量置为不生效
func (r *SubscriptionRepository) ExpirePeriodsBefore(t time.Time) (int64, error) {
	result := r.db.Model(&model.SubscriptionPeriod{}).
		Where("active = ? AND end_time < ?", true, t).
		Update("active", false)
	return result.RowsAffected, result.Error
}
