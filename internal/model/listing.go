package model

import (
	"time"
)

type Listing struct {
	ID      int64 `gorm:"primaryKey" json:"id"`
	OwnerID int64 `gorm:"not null;index" json:"owner_id"`
	// 对外展示的广告编号（6位 base36）
	AdNumber string `gorm:"size:6;uniqueIndex" json:"ad_number"`

	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	ListingType string `gorm:"size:40;default:apartment" json:"listing_type"` // apartment/house/...
	// UI 上的大类切换（服务类 vs 房产/物料类），与 listing_type 独立，
	// 自定义类目也能正确过滤。
	PostGroup string `gorm:"size:40;index" json:"post_group,omitempty"`
	RentSale  string `gorm:"size:10;default:rent" json:"rent_sale"` // rent/sale
	Price     int    `gorm:"default:0" json:"price"`

	// 展示地址与查重用的归一化字段
	Location          string `gorm:"size:255" json:"location"`
	Address           string `gorm:"size:512" json:"address"`
	AddressNormalized string `gorm:"size:512;index" json:"-"`

	State              string `gorm:"size:80;index" json:"state"`
	District           string `gorm:"size:120;index" json:"district"`
	Area               string `gorm:"size:160;index" json:"area"`
	StateNormalized    string `gorm:"size:80;index" json:"-"`
	DistrictNormalized string `gorm:"size:120;index" json:"-"`
	AreaNormalized     string `gorm:"size:160;index" json:"-"`

	// 发布时采集的 GPS 坐标
	GpsLat *float64 `gorm:"index" json:"gps_lat,omitempty"`
	GpsLng *float64 `gorm:"index" json:"gps_lng,omitempty"`

	AmenitiesJSON string `gorm:"type:text;default:'[]'" json:"-"`

	Availability     string `gorm:"size:40;default:available" json:"availability"`
	Status           string `gorm:"size:40;default:pending;index" json:"status"` // pending/approved/rejected/suspended
	ModerationReason string `gorm:"type:text" json:"moderation_reason,omitempty"`

	// 联系方式只经由 Contact-Gate 返回，公开读取路径不得输出
	ContactPhone           string `gorm:"size:40" json:"-"`
	ContactPhoneNormalized string `gorm:"size:40;index" json:"-"`
	ContactEmail           string `gorm:"size:255" json:"-"`

	// 管理员查重豁免
	AllowDuplicateAddress bool `gorm:"default:false" json:"allow_duplicate_address"`
	AllowDuplicatePhone   bool `gorm:"default:false" json:"allow_duplicate_phone"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Owner  *User          `gorm:"foreignKey:OwnerID" json:"-"`
	Images []ListingImage `gorm:"foreignKey:ListingID" json:"-"`
}

func (Listing) TableName() string {
	return "listings"
}

type ListingImage struct {
	ID        int64 `gorm:"primaryKey" json:"id"`
	ListingID int64 `gorm:"not null;index;uniqueIndex:uq_listing_image_sort" json:"listing_id"`
	SortOrder int   `gorm:"default:0;uniqueIndex:uq_listing_image_sort" json:"sort_order"`

	FilePath string `gorm:"size:512;not null" json:"file_path"` // 相对路径或完整 URL
	OSSKey   string `gorm:"size:255" json:"-"`

	// 查重与审核元数据
	ImageHash        string `gorm:"size:64;index" json:"-"` // sha256 hex
	OriginalFilename string `gorm:"size:255" json:"original_filename,omitempty"`
	ContentType      string `gorm:"size:100" json:"content_type,omitempty"`
	SizeBytes        int64  `gorm:"default:0" json:"size_bytes,omitempty"`
	Status           string `gorm:"size:40;default:pending;index" json:"status"`
	ModerationReason string `gorm:"type:text" json:"moderation_reason,omitempty"`

	UploadedByUserID *int64    `gorm:"index" json:"uploaded_by_user_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func (ListingImage) TableName() string {
	return "listing_images"
}

type SavedListing struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;index;uniqueIndex:uq_saved_user_listing" json:"user_id"`
	ListingID int64     `gorm:"not null;index;uniqueIndex:uq_saved_user_listing" json:"listing_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (SavedListing) TableName() string {
	return "saved_listings"
}
