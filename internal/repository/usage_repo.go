package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/estate_go_server/internal/model"
)

// UsageRepository 解锁台账，只追加。幂等性完全由唯一约束承担：
// 插入冲突（gorm.ErrDuplicatedKey，依赖 TranslateError）等同于已记录成功。
type UsageRepository struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// CountUsedInPeriod 当前周期内已消耗的付费解锁次数
func (r *UsageRepository) CountUsedInPeriod(userID, periodID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.ContactUsage{}).
		Where("user_id = ? AND period_id = ?", userID, periodID).Count(&count).Error
	return count, err
}

// HasPaidUse 该房源在当前周期内是否已付费解锁过
func (r *UsageRepository) HasPaidUse(userID, listingID, periodID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.ContactUsage{}).
		Where("user_id = ? AND listing_id = ? AND period_id = ?", userID, listingID, periodID).
		Count(&count).Error
	return count > 0, err
}

// HasUsedFree 该房源是否已用过免费解锁（终身一次）
func (r *UsageRepository) HasUsedFree(userID, listingID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.FreeContactUsage{}).
		Where("user_id = ? AND listing_id = ?", userID, listingID).Count(&count).Error
	return count > 0, err
}

// RecordPaidUse 记录付费解锁；(user, listing, period) 冲突即视为成功
func (r *UsageRepository) RecordPaidUse(userID, listingID, periodID int64) error {
	usage := &model.ContactUsage{
		UserID:    userID,
		ListingID: listingID,
		PeriodID:  periodID,
		UsedAt:    time.Now(),
	}
	err := r.db.Create(usage).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

// RecordFreeUse 记录免费解锁；(user, listing) 冲突即视为成功
func (r *UsageRepository) RecordFreeUse(userID, listingID int64) error {
	usage := &model.FreeContactUsage{
		UserID:    userID,
		ListingID: listingID,
		UsedAt:    time.Now(),
	}
	err := r.db.Create(usage).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

// ContactedListingIDs 用户解锁过的全部房源 ID（付费+免费，用于列表打标）
func (r *UsageRepository) ContactedListingIDs(userID int64) (map[int64]bool, error) {
	var paid []int64
	if err := r.db.Model(&model.ContactUsage{}).Where("user_id = ?", userID).
		Pluck("listing_id", &paid).Error; err != nil {
		return nil, err
	}
	var free []int64
	if err := r.db.Model(&model.FreeContactUsage{}).Where("user_id = ?", userID).
		Pluck("listing_id", &free).Error; err != nil {
		return nil, err
	}

	ids := make(map[int64]bool, len(paid)+len(free))
	for _, id := range paid {
		ids[id] = true
	}
	for _, id := range free {
		ids[id] = true
	}
	return ids, nil
}

// DeleteByListingIDs 删除指定房源的解锁记录（房源删除前先清台账，保持外键顺序）
func (r *UsageRepository) DeleteByListingIDs(listingIDs []int64) (int64, error) {
	if len(listingIDs) == 0 {
		return 0, nil
	}
	var deleted int64
	result := r.db.Where("listing_id IN ?", listingIDs).Delete(&model.ContactUsage{})
	if result.Error != nil {
		return deleted, result.Error
	}
	deleted += result.RowsAffected

	result = r.db.Where("listing_id IN ?", listingIDs).Delete(&model.FreeContactUsage{})
	if result.Error != nil {
		return deleted, result.Error
	}
	deleted += result.RowsAffected
	return deleted, nil
}

// OrphanedListingIDs 台账里引用、但 listings 表已不存在的房源 ID
func (r *UsageRepository) OrphanedListingIDs() ([]int64, error) {
	var ids []int64
	err := r.db.Model(&model.ContactUsage{}).
		Joins("LEFT JOIN listings ON listings.id = contact_usage.listing_id").
		Where("listings.id IS NULL").
		Distinct().Pluck("contact_usage.listing_id", &ids).Error
	if err != nil {
		return nil, err
	}
	var freeIDs []int64
	err = r.db.Model(&model.FreeContactUsage{}).
		Joins("LEFT JOIN listings ON listings.id = free_contact_usage.listing_id").
		Where("listings.id IS NULL").
		Distinct().Pluck("free_contact_usage.listing_id", &freeIDs).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	for _, id := range freeIDs {
		if !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	return ids, nil
}
