package handler

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/estate_go_server/internal/api/middleware"
	"github.com/qs3c/estate_go_server/internal/model/dto"
	"github.com/qs3c/estate_go_server/internal/pkg/response"
	"github.com/qs3c/estate_go_server/internal/service"
)

type ListingHandler struct {
	listingService *service.ListingService
}

func NewListingHandler(listingService *service.ListingService) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
	}
}

func listingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ParamError(c, "invalid listing id")
		return 0, false
	}
	return id, true
}

// Search 公开搜索
// GET /api/v1/listings
func (h *ListingHandler) Search(c *gin.Context) {
	var q dto.SearchListingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	userID, _ := middleware.GetUserID(c)
	items, total, err := h.listingService.Search(&q, userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	response.SuccessPage(c, total, page, pageSize, items)
}

// Nearby 附近房源
// GET /api/v1/listings/nearby
func (h *ListingHandler) Nearby(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
	if err1 != nil || err2 != nil {
		response.ParamError(c, "lat and lng required")
		return
	}
	radius, _ := strconv.ParseFloat(c.DefaultQuery("radius_km", "25"), 64)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	userID, _ := middleware.GetUserID(c)
	items, total, err := h.listingService.Nearby(lat, lng, radius, userID, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// Get 房源详情
// GET /api/v1/listings/:id
func (h *ListingHandler) Get(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	userID, _ := middleware.GetUserID(c)
	detail, err := h.listingService.Detail(id, userID)
	if err != nil {
		if errors.Is(err, service.ErrListingNotFound) {
			response.NotFoundError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, detail)
}

// Create 发布房源
// POST /api/v1/listings
func (h *ListingHandler) Create(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.listingService.Create(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOwnerNotApproved):
			response.PermissionError(c, err.Error())
		case errors.Is(err, service.ErrDuplicateAddress),
			errors.Is(err, service.ErrDuplicatePhone):
			response.DuplicateError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "submitted for review", resp)
}

// Update 编辑房源
// PUT /api/v1/listings/:id
func (h *ListingHandler) Update(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserID(c)

	var req dto.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.listingService.Update(userID, id, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrListingNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrNotOwner):
			response.PermissionError(c, err.Error())
		case errors.Is(err, service.ErrDuplicateAddress),
			errors.Is(err, service.ErrDuplicatePhone):
			response.DuplicateError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "updated, pending review", nil)
}

// Delete 删除房源
// DELETE /api/v1/listings/:id
func (h *ListingHandler) Delete(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserID(c)

	if err := h.listingService.Delete(userID, id, false); err != nil {
		switch {
		case errors.Is(err, service.ErrListingNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrNotOwner):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "deleted", nil)
}

// MyListings 业主自己的房源
// GET /api/v1/my/listings
func (h *ListingHandler) MyListings(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	items, total, err := h.listingService.MyListings(userID, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// UploadImage 上传房源图片
// POST /api/v1/listings/:id/images
func (h *ListingHandler) UploadImage(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserID(c)

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		response.ParamError(c, "image file required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	resp, err := h.listingService.UploadImage(userID, id, data, header.Filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrListingNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrNotOwner):
			response.PermissionError(c, err.Error())
		case errors.Is(err, service.ErrDuplicateImage):
			response.DuplicateError(c, err.Error())
		case errors.Is(err, service.ErrBadImageType),
			errors.Is(err, service.ErrImageTooLarge):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// Save 收藏
// POST /api/v1/listings/:id/save
func (h *ListingHandler) Save(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserID(c)

	if err := h.listingService.SaveListing(userID, id); err != nil {
		if errors.Is(err, service.ErrListingNotFound) {
			response.NotFoundError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "saved", nil)
}

// Unsave 取消收藏
// DELETE /api/v1/listings/:id/save
func (h *ListingHandler) Unsave(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserID(c)

	if err := h.listingService.UnsaveListing(userID, id); err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "removed", nil)
}

// Saved 收藏列表
// GET /api/v1/my/saved
func (h *ListingHandler) Saved(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	items, err := h.listingService.SavedListings(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, items)
}
