package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/estate_go_server/internal/model"
)

type ModerationRepository struct {
	db *gorm.DB
}

func NewModerationRepository(db *gorm.DB) *ModerationRepository {
	return &ModerationRepository{db: db}
}

func (r *ModerationRepository) Create(log *model.ModerationLog) error {
	return r.db.Create(log).Error
}

// List 审核日志列表，可按实体类型过滤
func (r *ModerationRepository) List(entityType string, page, pageSize int) ([]*model.ModerationLog, int64, error) {
	var logs []*model.ModerationLog
	var total int64

	query := r.db.Model(&model.ModerationLog{})
	if entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
