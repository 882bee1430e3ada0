package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/estate_go_server/internal/model"
)

type SavedRepository struct {
	db *gorm.DB
}

func NewSavedRepository(db *gorm.DB) *SavedRepository {
	return &SavedRepository{db: db}
}

// Save 收藏房源；(user, listing) 唯一冲突视为已收藏
func (r *SavedRepository) Save(userID, listingID int64) error {
	saved := &model.SavedListing{
		UserID:    userID,
		ListingID: listingID,
		CreatedAt: time.Now(),
	}
	err := r.db.Create(saved).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

// Unsave 取消收藏；未收藏时同样视为成功
func (r *SavedRepository) Unsave(userID, listingID int64) error {
	return r.db.Where("user_id = ? AND listing_id = ?", userID, listingID).
		Delete(&model.SavedListing{}).Error
}

func (r *SavedRepository) IsSaved(userID, listingID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.SavedListing{}).
		Where("user_id = ? AND listing_id = ?", userID, listingID).Count(&count).Error
	return count > 0, err
}

// SavedListingIDs 用户收藏的全部房源 ID（按收藏时间倒序）
func (r *SavedRepository) SavedListingIDs(userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&model.SavedListing{}).Where("user_id = ?", userID).
		Order("created_at DESC").Pluck("listing_id", &ids).Error
	return ids, err
}
