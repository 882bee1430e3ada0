package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/estate_go_server/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetByID(id int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByIdentifier 按邮箱/用户名/归一化手机号查找（登录入口统一处理）
func (r *UserRepository) GetByIdentifier(identifier, phoneNormalized string) (*model.User, error) {
	var user model.User
	query := r.db.Where("email = ? OR username = ?", identifier, identifier)
	if phoneNormalized != "" {
		query = r.db.Where("email = ? OR username = ? OR phone_normalized = ?",
			identifier, identifier, phoneNormalized)
	}
	err := query.First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// ExistsByPhoneNormalized 归一化手机号查重（空串不参与）
func (r *UserRepository) ExistsByPhoneNormalized(phoneNormalized string) (bool, error) {
	if phoneNormalized == "" {
		return false, nil
	}
	var count int64
	err := r.db.Model(&model.User{}).
		Where("phone_normalized = ?", phoneNormalized).Count(&count).Error
	return count > 0, err
}

// ExistsByCompany 公司名或公司地址的归一化查重（业主入驻时防重复公司）
func (r *UserRepository) ExistsByCompany(nameNormalized, addressNormalized string) (bool, error) {
	var count int64
	query := r.db.Model(&model.User{}).Where("role = ?", "owner")
	switch {
	case nameNormalized != "" && addressNormalized != "":
		query = query.Where("company_name_normalized = ? OR company_address_normalized = ?",
			nameNormalized, addressNormalized)
	case nameNormalized != "":
		query = query.Where("company_name_normalized = ?", nameNormalized)
	case addressNormalized != "":
		query = query.Where("company_address_normalized = ?", addressNormalized)
	default:
		return false, nil
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *UserRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

// ListPendingOwners 待审核业主列表
func (r *UserRepository) ListPendingOwners(page, pageSize int) ([]*model.User, int64, error) {
	var users []*model.User
	var total int64

	query := r.db.Model(&model.User{}).
		Where("role = ? AND approval_status = ?", "owner", "pending")

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at ASC").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}
