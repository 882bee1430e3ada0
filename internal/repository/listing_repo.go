package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/estate_go_server/internal/model"
)

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Create(listing *model.Listing) error {
	return r.db.Create(listing).Error
}

func (r *ListingRepository) GetByID(id int64) (*model.Listing, error) {
	var listing model.Listing
	err := r.db.Where("id = ?", id).First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *ListingRepository) GetByIDWithOwner(id int64) (*model.Listing, error) {
	var listing model.Listing
	err := r.db.Preload("Owner").Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Where("id = ?", id).First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *ListingRepository) GetByAdNumber(adNumber string) (*model.Listing, error) {
	var listing model.Listing
	err := r.db.Where("ad_number = ?", adNumber).First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *ListingRepository) AdNumberExists(adNumber string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Listing{}).Where("ad_number = ?", adNumber).Count(&count).Error
	return count > 0, err
}

func (r *ListingRepository) Update(listing *model.Listing) error {
	return r.db.Save(listing).Error
}

func (r *ListingRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Listing{}).Where("id = ?", id).Updates(fields).Error
}

func (r *ListingRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", id).Delete(&model.ListingImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", id).Delete(&model.SavedListing{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Listing{}, id).Error
	})
}

// SearchFilter 公开检索条件
type SearchFilter struct {
	State     string
	District  string
	Area      string
	Type      string
	PostGroup string
	RentSale  string
	PriceMin  int
	PriceMax  int
	Keyword   string
}

// SearchApproved 公开检索：仅返回已过审房源，且业主本身未被拒绝/停用
func (r *ListingRepository) SearchApproved(f SearchFilter, page, pageSize int) ([]*model.Listing, int64, error) {
	var listings []*model.Listing
	var total int64

	query := r.db.Model(&model.Listing{}).
		Joins("JOIN users ON users.id = listings.owner_id").
		Where("listings.status = ?", "approved").
		Where("users.approval_status = ?", "approved")

	if f.State != "" {
		query = query.Where("listings.state_normalized = ?", f.State)
	}
	if f.District != "" {
		query = query.Where("listings.district_normalized = ?", f.District)
	}
	if f.Area != "" {
		query = query.Where("listings.area_normalized = ?", f.Area)
	}
	if f.Type != "" {
		query = query.Where("listings.listing_type = ?", f.Type)
	}
	if f.PostGroup != "" {
		query = query.Where("listings.post_group = ?", f.PostGroup)
	}
	if f.RentSale != "" {
		query = query.Where("listings.rent_sale = ?", f.RentSale)
	}
	if f.PriceMin > 0 {
		query = query.Where("listings.price >= ?", f.PriceMin)
	}
	if f.PriceMax > 0 {
		query = query.Where("listings.price <= ?", f.PriceMax)
	}
	if f.Keyword != "" {
		like := "%" + f.Keyword + "%"
		query = query.Where("listings.title LIKE ? OR listings.description LIKE ? OR listings.location LIKE ?",
			like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Order("listings.created_at DESC").Offset(offset).Limit(pageSize).
		Find(&listings).Error; err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

// ListByOwner 业主自己的房源（不过滤审核状态）
func (r *ListingRepository) ListByOwner(ownerID int64, page, pageSize int) ([]*model.Listing, int64, error) {
	var listings []*model.Listing
	var total int64

	query := r.db.Model(&model.Listing{}).Where("owner_id = ?", ownerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&listings).Error; err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

// FindByAddressNormalized 地址查重（排除指定房源）
func (r *ListingRepository) FindByAddressNormalized(addressNormalized string, excludeID int64) (*model.Listing, error) {
	if addressNormalized == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var listing model.Listing
	query := r.db.Where("address_normalized = ?", addressNormalized)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// FindByContactPhoneNormalized 联系电话查重（排除同一业主与指定房源）
func (r *ListingRepository) FindByContactPhoneNormalized(phoneNormalized string, ownerID, excludeID int64) (*model.Listing, error) {
	if phoneNormalized == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var listing model.Listing
	query := r.db.Where("contact_phone_normalized = ? AND owner_id <> ?", phoneNormalized, ownerID)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// ListPending 待审核房源队列
func (r *ListingRepository) ListPending(page, pageSize int) ([]*model.Listing, int64, error) {
	var listings []*model.Listing
	var total int64

	query := r.db.Model(&model.Listing{}).Where("status = ?", "pending")

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Preload("Owner").Order("created_at ASC").
		Offset(offset).Limit(pageSize).Find(&listings).Error; err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

// --- 图片 ---

func (r *ListingRepository) CreateImage(img *model.ListingImage) error {
	return r.db.Create(img).Error
}

func (r *ListingRepository) GetImageByID(id int64) (*model.ListingImage, error) {
	var img model.ListingImage
	err := r.db.Where("id = ?", id).First(&img).Error
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *ListingRepository) ListImages(listingID int64) ([]*model.ListingImage, error) {
	var images []*model.ListingImage
	err := r.db.Where("listing_id = ?", listingID).Order("sort_order ASC").Find(&images).Error
	return images, err
}

// NextImageSortOrder 下一个排序号（唯一约束 (listing_id, sort_order) 兜底并发）
func (r *ListingRepository) NextImageSortOrder(listingID int64) (int, error) {
	var max *int
	err := r.db.Model(&model.ListingImage{}).Where("listing_id = ?", listingID).
		Select("MAX(sort_order)").Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}

// ImageHashExists 同一房源下的图片内容查重
func (r *ListingRepository) ImageHashExists(listingID int64, hash string) (bool, error) {
	var count int64
	err := r.db.Model(&model.ListingImage{}).
		Where("listing_id = ? AND image_hash = ?", listingID, hash).Count(&count).Error
	return count > 0, err
}

func (r *ListingRepository) UpdateImageFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.ListingImage{}).Where("id = ?", id).Updates(fields).Error
}

func (r *ListingRepository) DeleteImage(id int64) error {
	return r.db.Delete(&model.ListingImage{}, id).Error
}

// ListPendingImages 待审核图片队列
func (r *ListingRepository) ListPendingImages(page, pageSize int) ([]*model.ListingImage, int64, error) {
	var images []*model.ListingImage
	var total int64

	query := r.db.Model(&model.ListingImage{}).Where("status = ?", "pending")

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at ASC").Offset(offset).Limit(pageSize).Find(&images).Error; err != nil {
		return nil, 0, err
	}

	return images, total, nil
}
