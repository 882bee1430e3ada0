package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/estate_go_server/config"
	"github.com/qs3c/estate_go_server/internal/model"
	"github.com/qs3c/estate_go_server/internal/model/dto"
	"github.com/qs3c/estate_go_server/internal/pkg/playstore"
	"github.com/qs3c/estate_go_server/internal/repository"
)

var (
	ErrUnknownPlan        = errors.New("unknown subscription plan")
	ErrDuplicateToken     = errors.New("purchase token already used by another account")
	ErrVerificationFailed = errors.New("purchase verification failed")
)

type SubscriptionService struct {
	subRepo   *repository.SubscriptionRepository
	usageRepo *repository.UsageRepository
	verifier  playstore.Verifier
	cfg       *config.Config
}

func NewSubscriptionService(subRepo *repository.SubscriptionRepository, usageRepo *repository.UsageRepository, verifier playstore.Verifier, cfg *config.Config) *SubscriptionService {
	return &SubscriptionService{
		subRepo:   subRepo,
		usageRepo: usageRepo,
		verifier:  verifier,
		cfg:       cfg,
	}
}

// GetOrCreate 懒创建订阅行。并发下重复插入撞 user_id 唯一约束，
// 冲突即重读既有行。
func (s *SubscriptionService) GetOrCreate(userID int64) (*model.Subscription, error) {
	sub, err := s.subRepo.GetByUserID(userID)
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	sub = &model.Subscription{
		UserID:   userID,
		Provider: "google_play",
		Status:   "inactive",
	}
	if err := s.subRepo.Create(sub); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.subRepo.GetByUserID(userID)
		}
		return nil, err
	}
	return sub, nil
}

// IsActive 订阅是否实际生效。过期只在读取时判定，不做后台扫描。
func (s *SubscriptionService) IsActive(sub *model.Subscription) bool {
	if sub == nil || sub.Status != "active" {
		return false
	}
	if sub.ExpiresAt != nil && !sub.ExpiresAt.After(time.Now()) {
		return false
	}
	return true
}

// CurrentPeriod 当前生效周期；读取时发现已过期就地降级该行并返回 nil。
func (s *SubscriptionService) CurrentPeriod(userID int64) (*model.SubscriptionPeriod, error) {
	period, err := s.subRepo.GetActivePeriod(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !period.EndTime.After(time.Now()) {
		if err := s.subRepo.DeactivatePeriod(period.ID); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return period, nil
}

// AllowanceFor 周期绑定套餐的联系方式额度；无周期或无套餐为 0
func (s *SubscriptionService) AllowanceFor(period *model.SubscriptionPeriod) (int, error) {
	if period == nil {
		return 0, nil
	}
	plan, err := s.subRepo.GetPlan(period.PlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return plan.ContactLimit, nil
}

// Activate 校验购买令牌并激活订阅。
// 失败路径（未知套餐/令牌重复/校验失败）不触碰任何台账。
func (s *SubscriptionService) Activate(ctx context.Context, userID int64, planID, purchaseToken string) (*model.Subscription, *model.SubscriptionPeriod, error) {
	plan, err := s.subRepo.GetPlan(planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUnknownPlan
		}
		return nil, nil, err
	}

	// 令牌全局唯一：绑到别的账号直接拒绝；同一账号重放视为幂等
	existing, err := s.subRepo.GetPeriodByToken(purchaseToken)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}
	if existing != nil {
		if existing.UserID != userID {
			return nil, nil, ErrDuplicateToken
		}
		sub, err := s.GetOrCreate(userID)
		if err != nil {
			return nil, nil, err
		}
		return sub, existing, nil
	}

	expiresAt, err := s.verifyWindow(ctx, plan, purchaseToken)
	if err != nil {
		return nil, nil, err
	}

	sub, err := s.GetOrCreate(userID)
	if err != nil {
		return nil, nil, err
	}

	sub.Status = "active"
	sub.ExpiresAt = &expiresAt
	sub.PurchaseToken = &purchaseToken
	if err := s.subRepo.Update(sub); err != nil {
		return nil, nil, err
	}

	if err := s.subRepo.DeactivatePeriods(userID); err != nil {
		return nil, nil, err
	}

	period := &model.SubscriptionPeriod{
		UserID:        userID,
		PlanID:        plan.ID,
		PurchaseToken: purchaseToken,
		StartTime:     time.Now(),
		EndTime:       expiresAt,
		Active:        true,
	}
	if err := s.subRepo.CreatePeriod(period); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 并发激活抢先插入了同一令牌
			return nil, nil, ErrDuplicateToken
		}
		return nil, nil, err
	}

	return sub, period, nil
}

// verifyWindow 向 Google Play 求证购买，返回到期时间。
// 未配置凭证时退化为"按套餐时长激活"（开发环境路径）。
func (s *SubscriptionService) verifyWindow(ctx context.Context, plan *model.SubscriptionPlan, purchaseToken string) (time.Time, error) {
	result, err := s.verifier.VerifySubscription(ctx, plan.ID, purchaseToken)
	if err != nil {
		if errors.Is(err, playstore.ErrNotConfigured) {
			return time.Now().Add(time.Duration(plan.DurationDays) * 24 * time.Hour), nil
		}
		return time.Time{}, ErrVerificationFailed
	}

	expiresAt := time.UnixMilli(result.ExpiryTimeMillis)
	if !expiresAt.After(time.Now()) {
		return time.Time{}, ErrVerificationFailed
	}
	return expiresAt, nil
}

// Status 组装 GET /me/subscription 的响应；订阅行不存在则懒创建
func (s *SubscriptionService) Status(userID int64) (*dto.SubscriptionStatus, error) {
	sub, err := s.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	status := &dto.SubscriptionStatus{
		Status:   "inactive",
		Provider: sub.Provider,
	}
	if sub.ExpiresAt != nil {
		status.ExpiresAt = sub.ExpiresAt.Format(time.RFC3339)
	}
	if !s.IsActive(sub) {
		return status, nil
	}
	status.Status = "active"

	period, err := s.CurrentPeriod(userID)
	if err != nil {
		return nil, err
	}
	if period == nil {
		return status, nil
	}

	status.PlanID = period.PlanID
	if plan, err := s.subRepo.GetPlan(period.PlanID); err == nil {
		status.PlanName = plan.Name
		status.Allowance = plan.ContactLimit
	}
	used, err := s.usageRepo.CountUsedInPeriod(userID, period.ID)
	if err != nil {
		return nil, err
	}
	status.Used = int(used)
	return status, nil
}

// ListPlans 套餐列表
func (s *SubscriptionService) ListPlans() ([]*dto.PlanInfo, error) {
	plans, err := s.subRepo.ListPlans()
	if err != nil {
		return nil, err
	}
	items := make([]*dto.PlanInfo, 0, len(plans))
	for _, p := range plans {
		items = append(items, &dto.PlanInfo{
			ID:           p.ID,
			Name:         p.Name,
			PriceINR:     p.PriceINR,
			DurationDays: p.DurationDays,
			ContactLimit: p.ContactLimit,
		})
	}
	return items, nil
}

// SeedPlans 启动时从配置幂等播种套餐参考数据
func (s *SubscriptionService) SeedPlans(plans []config.PlanConfig) error {
	for _, p := range plans {
		err := s.subRepo.UpsertPlan(&model.SubscriptionPlan{
			ID:           p.ID,
			Name:         p.Name,
			PriceINR:     p.PriceINR,
			DurationDays: p.DurationDays,
			ContactLimit: p.ContactLimit,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
