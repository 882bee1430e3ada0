package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/qs3c/estate_go_server/internal/model"
	"github.com/qs3c/estate_go_server/internal/model/dto"
	"github.com/qs3c/estate_go_server/internal/repository"
)

var (
	// 未过审/被拒绝的房源对外等同于不存在
	ErrListingNotFound = errors.New("listing not found")
	ErrQuotaExhausted  = errors.New("contact quota exhausted")
)

// ContactService 联系方式解锁的闸门。
// 额度判定是 count-then-insert 的软预算：并发解锁不同房源可能略微超额，
// 接受这一点；同一房源的并发由台账唯一约束收敛成一次扣减。
type ContactService struct {
	listingRepo *repository.ListingRepository
	usageRepo   *repository.UsageRepository
	subSvc      *SubscriptionService
	freeTier    bool
}

func NewContactService(listingRepo *repository.ListingRepository, usageRepo *repository.UsageRepository, subSvc *SubscriptionService, freeTierEnabled bool) *ContactService {
	return &ContactService{
		listingRepo: listingRepo,
		usageRepo:   usageRepo,
		subSvc:      subSvc,
		freeTier:    freeTierEnabled,
	}
}

// Reveal 解锁房源联系方式。
// 判定顺序：付费已解锁 → 付费额度 → 免费已解锁 → 免费新解锁 → 拒绝。
func (s *ContactService) Reveal(userID, listingID int64) (*dto.ContactReveal, error) {
	listing, err := s.listingRepo.GetByIDWithOwner(listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	if listing.Status != "approved" {
		return nil, ErrListingNotFound
	}
	if listing.Owner == nil || listing.Owner.ApprovalStatus != "approved" {
		return nil, ErrListingNotFound
	}

	sub, err := s.subSvc.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	if s.subSvc.IsActive(sub) {
		period, err := s.subSvc.CurrentPeriod(userID)
		if err != nil {
			return nil, err
		}
		if period != nil {
			granted, err := s.tryPaid(userID, listingID, period)
			if err != nil {
				return nil, err
			}
			if granted {
				return s.buildReveal(listing, "paid"), nil
			}
		}
		// 额度用尽或无套餐绑定：落到免费档
	}

	used, err := s.usageRepo.HasUsedFree(userID, listingID)
	if err != nil {
		return nil, err
	}
	if used {
		// 同一 (user, listing) 重复解锁返回同样的结果，不再扣减
		return s.buildReveal(listing, "free"), nil
	}

	if !s.freeTier {
		return nil, ErrQuotaExhausted
	}
	if err := s.usageRepo.RecordFreeUse(userID, listingID); err != nil {
		return nil, err
	}
	return s.buildReveal(listing, "free"), nil
}

// tryPaid 付费路径：已解锁直接放行，否则在额度内幂等落一笔
func (s *ContactService) tryPaid(userID, listingID int64, period *model.SubscriptionPeriod) (bool, error) {
	has, err := s.usageRepo.HasPaidUse(userID, listingID, period.ID)
	if err != nil {
		return false, err
	}
	if has {
		return true, nil
	}

	allowance, err := s.subSvc.AllowanceFor(period)
	if err != nil {
		return false, err
	}
	if allowance <= 0 {
		return false, nil
	}

	used, err := s.usageRepo.CountUsedInPeriod(userID, period.ID)
	if err != nil {
		return false, err
	}
	if used >= int64(allowance) {
		return false, nil
	}

	if err := s.usageRepo.RecordPaidUse(userID, listingID, period.ID); err != nil {
		return false, err
	}
	return true, nil
}

// buildReveal 原样返回存储的联系方式字段
func (s *ContactService) buildReveal(listing *model.Listing, source string) *dto.ContactReveal {
	reveal := &dto.ContactReveal{
		AdNumber: listing.AdNumber,
		Phone:    listing.ContactPhone,
		Email:    listing.ContactEmail,
		Source:   source,
	}
	if listing.Owner != nil {
		reveal.OwnerName = listing.Owner.Name
		if reveal.OwnerName == "" {
			reveal.OwnerName = listing.Owner.Username
		}
		reveal.CompanyName = listing.Owner.CompanyName
		if reveal.Phone == "" {
			reveal.Phone = listing.Owner.Phone
		}
		if reveal.Email == "" {
			reveal.Email = listing.Owner.Email
		}
	}
	return reveal
}
