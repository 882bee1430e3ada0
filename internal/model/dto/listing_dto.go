package dto

// CreateListingRequest 发布房源
type CreateListingRequest struct {
	Title        string   `json:"title" binding:"required,max=255"`
	Description  string   `json:"description,omitempty" binding:"omitempty,max=5000"`
	ListingType  string   `json:"listing_type,omitempty" binding:"omitempty,max=40"`
	PostGroup    string   `json:"post_group,omitempty" binding:"omitempty,max=40"`
	RentSale     string   `json:"rent_sale,omitempty" binding:"omitempty,oneof=rent sale"`
	Price        int      `json:"price,omitempty" binding:"omitempty,min=0"`
	Location     string   `json:"location,omitempty" binding:"omitempty,max=255"`
	State        string   `json:"state" binding:"required,max=80"`
	District     string   `json:"district" binding:"required,max=120"`
	Area         string   `json:"area,omitempty" binding:"omitempty,max=160"`
	Address      string   `json:"address,omitempty" binding:"omitempty,max=512"`
	Amenities    []string `json:"amenities,omitempty" binding:"omitempty,max=50,dive,max=80"`
	Availability string   `json:"availability,omitempty" binding:"omitempty,max=40"`
	ContactPhone string   `json:"contact_phone,omitempty" binding:"omitempty,max=40"`
	ContactEmail string   `json:"contact_email,omitempty" binding:"omitempty,max=255"`
	CompanyName  string   `json:"company_name,omitempty" binding:"omitempty,max=255"`
	GpsLat       *float64 `json:"gps_lat,omitempty"`
	GpsLng       *float64 `json:"gps_lng,omitempty"`
}

// UpdateListingRequest 编辑房源（仅更新提供的字段）
type UpdateListingRequest struct {
	Title        *string  `json:"title,omitempty" binding:"omitempty,max=255"`
	Description  *string  `json:"description,omitempty" binding:"omitempty,max=5000"`
	ListingType  *string  `json:"listing_type,omitempty" binding:"omitempty,max=40"`
	RentSale     *string  `json:"rent_sale,omitempty" binding:"omitempty,oneof=rent sale"`
	Price        *int     `json:"price,omitempty" binding:"omitempty,min=0"`
	Location     *string  `json:"location,omitempty" binding:"omitempty,max=255"`
	State        *string  `json:"state,omitempty" binding:"omitempty,max=80"`
	District     *string  `json:"district,omitempty" binding:"omitempty,max=120"`
	Area         *string  `json:"area,omitempty" binding:"omitempty,max=160"`
	Address      *string  `json:"address,omitempty" binding:"omitempty,max=512"`
	Amenities    []string `json:"amenities,omitempty" binding:"omitempty,max=50,dive,max=80"`
	Availability *string  `json:"availability,omitempty" binding:"omitempty,max=40"`
	ContactPhone *string  `json:"contact_phone,omitempty" binding:"omitempty,max=40"`
	ContactEmail *string  `json:"contact_email,omitempty" binding:"omitempty,max=255"`
}

// SearchListingsQuery 公开搜索参数
type SearchListingsQuery struct {
	State       string `form:"state"`
	District    string `form:"district"`
	Area        string `form:"area"`
	ListingType string `form:"listing_type"`
	PostGroup   string `form:"post_group"`
	RentSale    string `form:"rent_sale"`
	MinPrice    int    `form:"min_price"`
	MaxPrice    int    `form:"max_price"`
	Keyword     string `form:"keyword"`
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size"`
}

// ListingItem 列表项（公开读取路径不含联系方式）
type ListingItem struct {
	ID           int64    `json:"id"`
	AdNumber     string   `json:"ad_number"`
	Title        string   `json:"title"`
	ListingType  string   `json:"listing_type"`
	RentSale     string   `json:"rent_sale"`
	Price        int      `json:"price"`
	State        string   `json:"state"`
	District     string   `json:"district"`
	Area         string   `json:"area,omitempty"`
	Location     string   `json:"location,omitempty"`
	Availability string   `json:"availability"`
	Status       string   `json:"status"`
	ImageURLs    []string `json:"image_urls"`
	CreatedAt    string   `json:"created_at"`
	// 当前用户是否已解锁过联系方式
	Contacted  bool     `json:"contacted"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// ListingDetail 房源详情
type ListingDetail struct {
	ListingItem
	Description string      `json:"description"`
	Amenities   []string    `json:"amenities"`
	Address     string      `json:"address,omitempty"`
	GpsLat      *float64    `json:"gps_lat,omitempty"`
	GpsLng      *float64    `json:"gps_lng,omitempty"`
	Owner       *OwnerBrief `json:"owner,omitempty"`
}

// OwnerBrief 业主简要信息（不含联系方式）
type OwnerBrief struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name,omitempty"`
}

// CreateListingResponse 发布响应
type CreateListingResponse struct {
	ListingID int64  `json:"listing_id"`
	AdNumber  string `json:"ad_number"`
	Status    string `json:"status"`
}

// UploadImageResponse 图片上传响应
type UploadImageResponse struct {
	ImageID   int64  `json:"image_id"`
	URL       string `json:"url"`
	SortOrder int    `json:"sort_order"`
	Status    string `json:"status"`
}
