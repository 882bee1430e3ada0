package service

import (
	"errors"

	"github.com/qs3c/estate_go_server/internal/model/dto"
	"github.com/qs3c/estate_go_server/internal/pkg/normalize"
	"github.com/qs3c/estate_go_server/internal/repository"
)

var ErrStorageUnavailable = errors.New("image storage not configured")

// ImageStore 图片存储出口（OSS 实现）
type ImageStore interface {
	UploadListingImage(listingID int64, data []byte, ext string) (string, string, error)
	UploadProfileImage(userID int64, data []byte, ext string) (string, string, error)
	Delete(objectKey string) error
}

type UserService struct {
	userRepo *repository.UserRepository
	store    ImageStore
}

func NewUserService(userRepo *repository.UserRepository, store ImageStore) *UserService {
	return &UserService{userRepo: userRepo, store: store}
}

// GetProfile 获取个人资料
func (s *UserService) GetProfile(userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	return BuildUserInfo(user, user.ProfileImagePath), nil
}

// UpdateProfile 更新个人资料；只写提供的字段，归一化字段同步维护
func (s *UserService) UpdateProfile(userID int64, req *dto.UpdateProfileRequest) (*dto.UserInfo, error) {
	fields := map[string]interface{}{}

	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Phone != nil {
		phoneNorm := normalize.Phone(*req.Phone)
		if phoneNorm != "" {
			exists, err := s.userRepo.ExistsByPhoneNormalized(phoneNorm)
			if err != nil {
				return nil, err
			}
			if exists {
				current, err := s.userRepo.GetByID(userID)
				if err != nil {
					return nil, err
				}
				if current.PhoneNormalized != phoneNorm {
					return nil, ErrPhoneExists
				}
			}
		}
		fields["phone"] = *req.Phone
		fields["phone_normalized"] = phoneNorm
	}
	if req.State != nil {
		fields["state"] = *req.State
	}
	if req.District != nil {
		fields["district"] = *req.District
	}
	if req.CompanyName != nil {
		fields["company_name"] = *req.CompanyName
		fields["company_name_normalized"] = normalize.Key(*req.CompanyName)
	}
	if req.CompanyDescription != nil {
		fields["company_description"] = *req.CompanyDescription
	}
	if req.CompanyAddress != nil {
		fields["company_address"] = *req.CompanyAddress
		fields["company_address_normalized"] = normalize.Key(*req.CompanyAddress)
	}
	if req.GpsLat != nil {
		fields["gps_lat"] = *req.GpsLat
	}
	if req.GpsLng != nil {
		fields["gps_lng"] = *req.GpsLng
	}

	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(userID, fields); err != nil {
			return nil, err
		}
	}
	return s.GetProfile(userID)
}

// UploadProfileImage 上传头像，替换旧图
func (s *UserService) UploadProfileImage(userID int64, data []byte, ext string) (string, error) {
	if s.store == nil {
		return "", ErrStorageUnavailable
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "", err
	}

	key, url, err := s.store.UploadProfileImage(userID, data, ext)
	if err != nil {
		return "", err
	}

	if err := s.userRepo.UpdateFields(userID, map[string]interface{}{
		"profile_image_path":    url,
		"profile_image_oss_key": key,
	}); err != nil {
		return "", err
	}

	// 旧图清理失败不影响结果
	if user.ProfileImageOSSKey != "" && user.ProfileImageOSSKey != key {
		_ = s.store.Delete(user.ProfileImageOSSKey)
	}
	return url, nil
}
