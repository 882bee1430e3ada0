package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/estate_go_server/internal/model"
	"github.com/qs3c/estate_go_server/internal/model/dto"
	"github.com/qs3c/estate_go_server/internal/repository"
)

var (
	ErrInvalidAction = errors.New("invalid moderation action")
	ErrEntityGone    = errors.New("entity not found")
)

// ModerationService 管理员审核：房源、业主、图片。
// 每个动作都落一条审核日志。
type ModerationService struct {
	listingRepo    *repository.ListingRepository
	userRepo       *repository.UserRepository
	moderationRepo *repository.ModerationRepository
}

func NewModerationService(listingRepo *repository.ListingRepository, userRepo *repository.UserRepository, moderationRepo *repository.ModerationRepository) *ModerationService {
	return &ModerationService{
		listingRepo:    listingRepo,
		userRepo:       userRepo,
		moderationRepo: moderationRepo,
	}
}

func statusForAction(action string) (string, bool) {
	switch action {
	case "approve":
		return "approved", true
	case "reject":
		return "rejected", true
	case "suspend":
		return "suspended", true
	}
	return "", false
}

// ModerateListing 审核房源
func (s *ModerationService) ModerateListing(actorID, listingID int64, action, reason string) error {
	status, ok := statusForAction(action)
	if !ok {
		return ErrInvalidAction
	}

	if _, err := s.listingRepo.GetByID(listingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntityGone
		}
		return err
	}

	if err := s.listingRepo.UpdateFields(listingID, map[string]interface{}{
		"status":            status,
		"moderation_reason": reason,
	}); err != nil {
		return err
	}

	return s.logAction(actorID, "listing", listingID, action, reason)
}

// ModerateOwner 审核业主账号
func (s *ModerationService) ModerateOwner(actorID, ownerID int64, action, reason string) error {
	status, ok := statusForAction(action)
	if !ok {
		return ErrInvalidAction
	}

	if _, err := s.userRepo.GetByID(ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntityGone
		}
		return err
	}

	if err := s.userRepo.UpdateFields(ownerID, map[string]interface{}{
		"approval_status": status,
		"approval_reason": reason,
	}); err != nil {
		return err
	}

	return s.logAction(actorID, "user", ownerID, action, reason)
}

// ModerateImage 审核图片
func (s *ModerationService) ModerateImage(actorID, imageID int64, action, reason string) error {
	status, ok := statusForAction(action)
	if !ok {
		return ErrInvalidAction
	}

	if _, err := s.listingRepo.GetImageByID(imageID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntityGone
		}
		return err
	}

	if err := s.listingRepo.UpdateImageFields(imageID, map[string]interface{}{
		"status":            status,
		"moderation_reason": reason,
	}); err != nil {
		return err
	}

	return s.logAction(actorID, "listing_image", imageID, action, reason)
}

// SetDuplicateOverrides 管理员豁免查重（地址/电话）
func (s *ModerationService) SetDuplicateOverrides(actorID, listingID int64, req *dto.AllowDuplicatesRequest) error {
	if _, err := s.listingRepo.GetByID(listingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntityGone
		}
		return err
	}

	fields := map[string]interface{}{}
	if req.AllowDuplicateAddress != nil {
		fields["allow_duplicate_address"] = *req.AllowDuplicateAddress
	}
	if req.AllowDuplicatePhone != nil {
		fields["allow_duplicate_phone"] = *req.AllowDuplicatePhone
	}
	if len(fields) == 0 {
		return nil
	}
	if err := s.listingRepo.UpdateFields(listingID, fields); err != nil {
		return err
	}

	return s.logAction(actorID, "listing", listingID, "allow_duplicates", req.Reason)
}

// PendingListings 待审核房源队列
func (s *ModerationService) PendingListings(page, pageSize int) ([]*model.Listing, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.listingRepo.ListPending(page, pageSize)
}

// PendingOwners 待审核业主队列
func (s *ModerationService) PendingOwners(page, pageSize int) ([]*dto.PendingOwnerItem, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	owners, total, err := s.userRepo.ListPendingOwners(page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	items := make([]*dto.PendingOwnerItem, 0, len(owners))
	for _, o := range owners {
		items = append(items, &dto.PendingOwnerItem{
			ID:             o.ID,
			Email:          o.Email,
			Username:       o.Username,
			Name:           o.Name,
			CompanyName:    o.CompanyName,
			OwnerCategory:  o.OwnerCategory,
			ApprovalStatus: o.ApprovalStatus,
			CreatedAt:      o.CreatedAt.Format(time.RFC3339),
		})
	}
	return items, total, nil
}

// PendingImages 待审核图片队列
func (s *ModerationService) PendingImages(page, pageSize int) ([]*model.ListingImage, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.listingRepo.ListPendingImages(page, pageSize)
}

// Logs 审核日志
func (s *ModerationService) Logs(entityType string, page, pageSize int) ([]*dto.ModerationLogItem, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	logs, total, err := s.moderationRepo.List(entityType, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	items := make([]*dto.ModerationLogItem, 0, len(logs))
	for _, l := range logs {
		items = append(items, &dto.ModerationLogItem{
			ID:          l.ID,
			ActorUserID: l.ActorUserID,
			EntityType:  l.EntityType,
			EntityID:    l.EntityID,
			Action:      l.Action,
			Reason:      l.Reason,
			CreatedAt:   l.CreatedAt.Format(time.RFC3339),
		})
	}
	return items, total, nil
}

func (s *ModerationService) logAction(actorID int64, entityType string, entityID int64, action, reason string) error {
	return s.moderationRepo.Create(&model.ModerationLog{
		ActorUserID: actorID,
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		Reason:      reason,
	})
}
