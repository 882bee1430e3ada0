package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/estate_go_server/internal/model"
)

type OtpRepository struct {
	db *gorm.DB
}

func NewOtpRepository(db *gorm.DB) *OtpRepository {
	return &OtpRepository{db: db}
}

// Replace 同一 identifier+purpose 只保留最新一条验证码
func (r *OtpRepository) Replace(otp *model.OtpCode) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("identifier = ? AND purpose = ?", otp.Identifier, otp.Purpose).
			Delete(&model.OtpCode{}).Error; err != nil {
			return err
		}
		return tx.Create(otp).Error
	})
}

// GetValid 获取未过期的验证码记录
func (r *OtpRepository) GetValid(identifier, purpose, code string) (*model.OtpCode, error) {
	var otp model.OtpCode
	err := r.db.Where("identifier = ? AND purpose = ? AND code = ? AND expires_at > ?",
		identifier, purpose, code, time.Now()).First(&otp).Error
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

// Consume 验证通过后删除，防止重放
func (r *OtpRepository) Consume(id int64) error {
	return r.db.Delete(&model.OtpCode{}, id).Error
}

// DeleteExpired 清理过期验证码，返回删除行数
func (r *OtpRepository) DeleteExpired(before time.Time) (int64, error) {
	result := r.db.Where("expires_at < ?", before).Delete(&model.OtpCode{})
	return result.RowsAffected, result.Error
}
