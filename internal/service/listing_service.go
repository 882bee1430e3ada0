package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/estate_go_server/config"
	"github.com/qs3c/estate_go_server/internal/model"
	"github.com/qs3c/estate_go_server/internal/model/dto"
	"github.com/qs3c/estate_go_server/internal/pkg/normalize"
	"github.com/qs3c/estate_go_server/internal/repository"
)

var (
	ErrNotOwner         = errors.New("not the owner of this listing")
	ErrOwnerNotApproved = errors.New("owner account not approved")
	ErrDuplicateAddress = errors.New("a listing with this address already exists")
	ErrDuplicatePhone   = errors.New("this contact phone is used by another owner")
	ErrDuplicateImage   = errors.New("this image was already uploaded")
	ErrImageTooLarge    = errors.New("image exceeds size limit")
	ErrBadImageType     = errors.New("unsupported image type")
)

const adNumberAttempts = 5

type ListingService struct {
	listingRepo *repository.ListingRepository
	savedRepo   *repository.SavedRepository
	usageRepo   *repository.UsageRepository
	userRepo    *repository.UserRepository
	store       ImageStore
	upload      *config.UploadConfig
}

func NewListingService(listingRepo *repository.ListingRepository, savedRepo *repository.SavedRepository, usageRepo *repository.UsageRepository, userRepo *repository.UserRepository, store ImageStore, upload *config.UploadConfig) *ListingService {
	return &ListingService{
		listingRepo: listingRepo,
		savedRepo:   savedRepo,
		usageRepo:   usageRepo,
		userRepo:    userRepo,
		store:       store,
		upload:      upload,
	}
}

// Search 公开搜索；userID > 0 时给结果打上"已解锁联系方式"标记
func (s *ListingService) Search(q *dto.SearchListingsQuery, userID int64) ([]*dto.ListingItem, int64, error) {
	page, pageSize := normalizePage(q.Page, q.PageSize)

	filter := repository.SearchFilter{
		State:     normalize.Key(q.State),
		District:  normalize.Key(q.District),
		Area:      normalize.Key(q.Area),
		Type:      q.ListingType,
		PostGroup: q.PostGroup,
		RentSale:  q.RentSale,
		PriceMin:  q.MinPrice,
		PriceMax:  q.MaxPrice,
		Keyword:   q.Keyword,
	}

	listings, total, err := s.listingRepo.SearchApproved(filter, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	contacted, err := s.contactedSet(userID)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.ListingItem, 0, len(listings))
	for _, l := range listings {
		items = append(items, buildListingItem(l, contacted))
	}
	return items, total, nil
}

// Nearby 附近房源：取带坐标的已过审房源，按球面距离排序。
// 数据量级小（单城市分类站），内存排序足够。
func (s *ListingService) Nearby(lat, lng, radiusKm float64, userID int64, page, pageSize int) ([]*dto.ListingItem, int64, error) {
	page, pageSize = normalizePage(page, pageSize)

	// 一次取一批再过滤，避免给 SQL 方言塞三角函数
	listings, _, err := s.listingRepo.SearchApproved(repository.SearchFilter{}, 1, 500)
	if err != nil {
		return nil, 0, err
	}

	contacted, err := s.contactedSet(userID)
	if err != nil {
		return nil, 0, err
	}

	type scored struct {
		item *dto.ListingItem
		dist float64
	}
	var matches []scored
	for _, l := range listings {
		if l.GpsLat == nil || l.GpsLng == nil {
			continue
		}
		d := haversineKm(lat, lng, *l.GpsLat, *l.GpsLng)
		if radiusKm > 0 && d > radiusKm {
			continue
		}
		item := buildListingItem(l, contacted)
		dist := math.Round(d*10) / 10
		item.DistanceKm = &dist
		matches = append(matches, scored{item: item, dist: d})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].dist < matches[j].dist })

	total := int64(len(matches))
	start := (page - 1) * pageSize
	if start >= len(matches) {
		return []*dto.ListingItem{}, total, nil
	}
	end := start + pageSize
	if end > len(matches) {
		end = len(matches)
	}
	items := make([]*dto.ListingItem, 0, end-start)
	for _, m := range matches[start:end] {
		items = append(items, m.item)
	}
	return items, total, nil
}

// Detail 房源详情。公开访问只放行已过审房源；业主看自己的不受限
func (s *ListingService) Detail(listingID, userID int64) (*dto.ListingDetail, error) {
	listing, err := s.listingRepo.GetByIDWithOwner(listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}

	isOwner := userID > 0 && listing.OwnerID == userID
	if !isOwner {
		if listing.Status != "approved" {
			return nil, ErrListingNotFound
		}
		if listing.Owner == nil || listing.Owner.ApprovalStatus != "approved" {
			return nil, ErrListingNotFound
		}
	}

	contacted, err := s.contactedSet(userID)
	if err != nil {
		return nil, err
	}

	detail := &dto.ListingDetail{
		ListingItem: *buildListingItem(listing, contacted),
		Description: listing.Description,
		Amenities:   decodeAmenities(listing.AmenitiesJSON),
		Address:     listing.Address,
		GpsLat:      listing.GpsLat,
		GpsLng:      listing.GpsLng,
	}
	if listing.Owner != nil {
		name := listing.Owner.Name
		if name == "" {
			name = listing.Owner.Username
		}
		detail.Owner = &dto.OwnerBrief{
			ID:          listing.Owner.ID,
			Name:        name,
			CompanyName: listing.Owner.CompanyName,
		}
	}
	return detail, nil
}

// Create 发布房源；新房源一律进待审队列
func (s *ListingService) Create(ownerID int64, req *dto.CreateListingRequest) (*dto.CreateListingResponse, error) {
	owner, err := s.userRepo.GetByID(ownerID)
	if err != nil {
		return nil, err
	}
	if owner.Role == "owner" && owner.ApprovalStatus != "approved" {
		return nil, ErrOwnerNotApproved
	}

	addressNorm := normalize.Key(req.Address)
	phoneNorm := normalize.Phone(req.ContactPhone)

	if addressNorm != "" {
		if _, err := s.listingRepo.FindByAddressNormalized(addressNorm, 0); err == nil {
			return nil, ErrDuplicateAddress
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if phoneNorm != "" {
		if _, err := s.listingRepo.FindByContactPhoneNormalized(phoneNorm, ownerID, 0); err == nil {
			return nil, ErrDuplicatePhone
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	listing := &model.Listing{
		OwnerID:                ownerID,
		Title:                  req.Title,
		Description:            req.Description,
		ListingType:            valueOr(req.ListingType, "apartment"),
		PostGroup:              req.PostGroup,
		RentSale:               valueOr(req.RentSale, "rent"),
		Price:                  req.Price,
		Location:               req.Location,
		Address:                req.Address,
		AddressNormalized:      addressNorm,
		State:                  req.State,
		District:               req.District,
		Area:                   req.Area,
		StateNormalized:        normalize.Key(req.State),
		DistrictNormalized:     normalize.Key(req.District),
		AreaNormalized:         normalize.Key(req.Area),
		GpsLat:                 req.GpsLat,
		GpsLng:                 req.GpsLng,
		AmenitiesJSON:          encodeAmenities(req.Amenities),
		Availability:           valueOr(req.Availability, "available"),
		Status:                 "pending",
		ContactPhone:           req.ContactPhone,
		ContactPhoneNormalized: phoneNorm,
		ContactEmail:           req.ContactEmail,
	}

	// 广告编号随机生成，撞库重试
	for attempt := 0; ; attempt++ {
		adNumber, err := normalize.NewAdNumber()
		if err != nil {
			return nil, err
		}
		listing.AdNumber = adNumber
		err = s.listingRepo.Create(listing)
		if err == nil {
			break
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt < adNumberAttempts {
			listing.ID = 0
			continue
		}
		return nil, err
	}

	return &dto.CreateListingResponse{
		ListingID: listing.ID,
		AdNumber:  listing.AdNumber,
		Status:    listing.Status,
	}, nil
}

// Update 编辑房源；任何实质修改都会退回待审状态
func (s *ListingService) Update(ownerID, listingID int64, req *dto.UpdateListingRequest) error {
	listing, err := s.listingRepo.GetByID(listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrListingNotFound
		}
		return err
	}
	if listing.OwnerID != ownerID {
		return ErrNotOwner
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.ListingType != nil {
		fields["listing_type"] = *req.ListingType
	}
	if req.RentSale != nil {
		fields["rent_sale"] = *req.RentSale
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if req.State != nil {
		fields["state"] = *req.State
		fields["state_normalized"] = normalize.Key(*req.State)
	}
	if req.District != nil {
		fields["district"] = *req.District
		fields["district_normalized"] = normalize.Key(*req.District)
	}
	if req.Area != nil {
		fields["area"] = *req.Area
		fields["area_normalized"] = normalize.Key(*req.Area)
	}
	if req.Address != nil {
		addressNorm := normalize.Key(*req.Address)
		if addressNorm != "" && !listing.AllowDuplicateAddress {
			if _, err := s.listingRepo.FindByAddressNormalized(addressNorm, listingID); err == nil {
				return ErrDuplicateAddress
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		fields["address"] = *req.Address
		fields["address_normalized"] = addressNorm
	}
	if req.Amenities != nil {
		fields["amenities_json"] = encodeAmenities(req.Amenities)
	}
	if req.Availability != nil {
		fields["availability"] = *req.Availability
	}
	if req.ContactPhone != nil {
		phoneNorm := normalize.Phone(*req.ContactPhone)
		if phoneNorm != "" && !listing.AllowDuplicatePhone {
			if _, err := s.listingRepo.FindByContactPhoneNormalized(phoneNorm, ownerID, listingID); err == nil {
				return ErrDuplicatePhone
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		fields["contact_phone"] = *req.ContactPhone
		fields["contact_phone_normalized"] = phoneNorm
	}
	if req.ContactEmail != nil {
		fields["contact_email"] = *req.ContactEmail
	}

	if len(fields) == 0 {
		return nil
	}
	fields["status"] = "pending"
	fields["moderation_reason"] = ""
	return s.listingRepo.UpdateFields(listingID, fields)
}

// Delete 删除房源（业主本人或管理员）
func (s *ListingService) Delete(userID, listingID int64, isAdmin bool) error {
	listing, err := s.listingRepo.GetByID(listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrListingNotFound
		}
		return err
	}
	if !isAdmin && listing.OwnerID != userID {
		return ErrNotOwner
	}

	images, err := s.listingRepo.ListImages(listingID)
	if err != nil {
		return err
	}

	if err := s.listingRepo.Delete(listingID); err != nil {
		return err
	}

	if s.store != nil {
		for _, img := range images {
			if img.OSSKey != "" {
				_ = s.store.Delete(img.OSSKey)
			}
		}
	}
	return nil
}

// MyListings 业主自己的房源列表
func (s *ListingService) MyListings(ownerID int64, page, pageSize int) ([]*dto.ListingItem, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	listings, total, err := s.listingRepo.ListByOwner(ownerID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	items := make([]*dto.ListingItem, 0, len(listings))
	for _, l := range listings {
		items = append(items, buildListingItem(l, nil))
	}
	return items, total, nil
}

// SaveListing 收藏（幂等）
func (s *ListingService) SaveListing(userID, listingID int64) error {
	if _, err := s.listingRepo.GetByID(listingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrListingNotFound
		}
		return err
	}
	return s.savedRepo.Save(userID, listingID)
}

// UnsaveListing 取消收藏（幂等）
func (s *ListingService) UnsaveListing(userID, listingID int64) error {
	return s.savedRepo.Unsave(userID, listingID)
}

// SavedListings 收藏列表
func (s *ListingService) SavedListings(userID int64) ([]*dto.ListingItem, error) {
	ids, err := s.savedRepo.SavedListingIDs(userID)
	if err != nil {
		return nil, err
	}

	contacted, err := s.contactedSet(userID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ListingItem, 0, len(ids))
	for _, id := range ids {
		listing, err := s.listingRepo.GetByIDWithOwner(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		items = append(items, buildListingItem(listing, contacted))
	}
	return items, nil
}

// UploadImage 上传房源图片：校验类型与大小，按内容哈希查重，排序号顺延
func (s *ListingService) UploadImage(userID, listingID int64, data []byte, originalFilename string) (*dto.UploadImageResponse, error) {
	if s.store == nil {
		return nil, ErrStorageUnavailable
	}

	listing, err := s.listingRepo.GetByID(listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	if listing.OwnerID != userID {
		return nil, ErrNotOwner
	}

	ext := strings.ToLower(filepath.Ext(originalFilename))
	if !s.extAllowed(ext) {
		return nil, ErrBadImageType
	}
	if s.upload.MaxSize > 0 && int64(len(data)) > s.upload.MaxSize {
		return nil, ErrImageTooLarge
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	exists, err := s.listingRepo.ImageHashExists(listingID, hash)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateImage
	}

	key, url, err := s.store.UploadListingImage(listingID, data, ext)
	if err != nil {
		return nil, err
	}

	img := &model.ListingImage{
		ListingID:        listingID,
		FilePath:         url,
		OSSKey:           key,
		ImageHash:        hash,
		OriginalFilename: originalFilename,
		ContentType:      contentTypeForExt(ext),
		SizeBytes:        int64(len(data)),
		Status:           "pending",
		UploadedByUserID: &userID,
		CreatedAt:        time.Now(),
	}

	// 并发上传会抢同一排序号，冲突时重算重试
	for attempt := 0; ; attempt++ {
		sortOrder, err := s.listingRepo.NextImageSortOrder(listingID)
		if err != nil {
			return nil, err
		}
		img.SortOrder = sortOrder
		err = s.listingRepo.CreateImage(img)
		if err == nil {
			break
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt < 3 {
			img.ID = 0
			continue
		}
		return nil, err
	}

	return &dto.UploadImageResponse{
		ImageID:   img.ID,
		URL:       url,
		SortOrder: img.SortOrder,
		Status:    img.Status,
	}, nil
}

func (s *ListingService) extAllowed(ext string) bool {
	if len(s.upload.AllowedExtensions) == 0 {
		return ext == ".jpg" || ext == ".jpeg" || ext == ".png" || ext == ".webp"
	}
	for _, allowed := range s.upload.AllowedExtensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

func (s *ListingService) contactedSet(userID int64) (map[int64]bool, error) {
	if userID <= 0 {
		return nil, nil
	}
	return s.usageRepo.ContactedListingIDs(userID)
}

func buildListingItem(l *model.Listing, contacted map[int64]bool) *dto.ListingItem {
	urls := make([]string, 0, len(l.Images))
	for _, img := range l.Images {
		if img.Status == "rejected" {
			continue
		}
		urls = append(urls, img.FilePath)
	}
	return &dto.ListingItem{
		ID:           l.ID,
		AdNumber:     l.AdNumber,
		Title:        l.Title,
		ListingType:  l.ListingType,
		RentSale:     l.RentSale,
		Price:        l.Price,
		State:        l.State,
		District:     l.District,
		Area:         l.Area,
		Location:     l.Location,
		Availability: l.Availability,
		Status:       l.Status,
		ImageURLs:    urls,
		CreatedAt:    l.CreatedAt.Format(time.RFC3339),
		Contacted:    contacted[l.ID],
	}
}

func encodeAmenities(amenities []string) string {
	if amenities == nil {
		amenities = []string{}
	}
	data, err := json.Marshal(amenities)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeAmenities(raw string) []string {
	var amenities []string
	if err := json.Unmarshal([]byte(raw), &amenities); err != nil || amenities == nil {
		return []string{}
	}
	return amenities
}

func contentTypeForExt(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// haversineKm 球面距离（公里）
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
