package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/estate_go_server/internal/api/middleware"
	"github.com/qs3c/estate_go_server/internal/model/dto"
	"github.com/qs3c/estate_go_server/internal/pkg/response"
	"github.com/qs3c/estate_go_server/internal/service"
)

type AdminHandler struct {
	moderationService *service.ModerationService
	listingService    *service.ListingService
}

func NewAdminHandler(moderationService *service.ModerationService, listingService *service.ListingService) *AdminHandler {
	return &AdminHandler{
		moderationService: moderationService,
		listingService:    listingService,
	}
}

func entityID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ParamError(c, "invalid id")
		return 0, false
	}
	return id, true
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, pageSize
}

func (h *AdminHandler) moderationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidAction):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrEntityGone):
		response.NotFoundError(c, err.Error())
	default:
		response.ServerError(c, "")
	}
}

// PendingListings 待审核房源
// GET /api/v1/admin/listings/pending
func (h *AdminHandler) PendingListings(c *gin.Context) {
	page, pageSize := pageParams(c)

	listings, total, err := h.moderationService.PendingListings(page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	items := make([]gin.H, 0, len(listings))
	for _, l := range listings {
		item := gin.H{
			"id":         l.ID,
			"ad_number":  l.AdNumber,
			"title":      l.Title,
			"state":      l.State,
			"district":   l.District,
			"address":    l.Address,
			"created_at": l.CreatedAt.Format(time.RFC3339),
		}
		if l.Owner != nil {
			item["owner_username"] = l.Owner.Username
			item["owner_company"] = l.Owner.CompanyName
		}
		items = append(items, item)
	}
	response.SuccessPage(c, total, page, pageSize, items)
}

// ModerateListing 审核房源
// POST /api/v1/admin/listings/:id/:action
func (h *AdminHandler) ModerateListing(c *gin.Context) {
	id, ok := entityID(c)
	if !ok {
		return
	}
	actorID, _ := middleware.GetUserID(c)

	var req dto.ModerateRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.moderationService.ModerateListing(actorID, id, c.Param("action"), req.Reason); err != nil {
		h.moderationError(c, err)
		return
	}
	response.SuccessWithMessage(c, "done", nil)
}

// DeleteListing 管理员删除房源
// DELETE /api/v1/admin/listings/:id
func (h *AdminHandler) DeleteListing(c *gin.Context) {
	id, ok := entityID(c)
	if !ok {
		return
	}
	actorID, _ := middleware.GetUserID(c)

	if err := h.listingService.Delete(actorID, id, true); err != nil {
		if errors.Is(err, service.ErrListingNotFound) {
			response.NotFoundError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "deleted", nil)
}

// AllowDuplicates 查重豁免
// PUT /api/v1/admin/listings/:id/duplicates
func (h *AdminHandler) AllowDuplicates(c *gin.Context) {
	id, ok := entityID(c)
	if !ok {
		return
	}
	actorID, _ := middleware.GetUserID(c)

	var req dto.AllowDuplicatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.moderationService.SetDuplicateOverrides(actorID, id, &req); err != nil {
		h.moderationError(c, err)
		return
	}
	response.SuccessWithMessage(c, "updated", nil)
}

// PendingOwners 待审核业主
// GET /api/v1/admin/owners/pending
func (h *AdminHandler) PendingOwners(c *gin.Context) {
	page, pageSize := pageParams(c)

	owners, total, err := h.moderationService.PendingOwners(page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.SuccessPage(c, total, page, pageSize, owners)
}

// ModerateOwner 审核业主
// POST /api/v1/admin/owners/:id/:action
func (h *AdminHandler) ModerateOwner(c *gin.Context) {
	id, ok := entityID(c)
	if !ok {
		return
	}
	actorID, _ := middleware.GetUserID(c)

	var req dto.ModerateRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.moderationService.ModerateOwner(actorID, id, c.Param("action"), req.Reason); err != nil {
		h.moderationError(c, err)
		return
	}
	response.SuccessWithMessage(c, "done", nil)
}

// PendingImages 待审核图片
// GET /api/v1/admin/images/pending
func (h *AdminHandler) PendingImages(c *gin.Context) {
	page, pageSize := pageParams(c)

	images, total, err := h.moderationService.PendingImages(page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	items := make([]gin.H, 0, len(images))
	for _, img := range images {
		items = append(items, gin.H{
			"id":         img.ID,
			"listing_id": img.ListingID,
			"url":        img.FilePath,
			"sort_order": img.SortOrder,
			"created_at": img.CreatedAt.Format(time.RFC3339),
		})
	}
	response.SuccessPage(c, total, page, pageSize, items)
}

// ModerateImage 审核图片
// POST /api/v1/admin/images/:id/:action
func (h *AdminHandler) ModerateImage(c *gin.Context) {
	id, ok := entityID(c)
	if !ok {
		return
	}
	actorID, _ := middleware.GetUserID(c)

	var req dto.ModerateRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.moderationService.ModerateImage(actorID, id, c.Param("action"), req.Reason); err != nil {
		h.moderationError(c, err)
		return
	}
	response.SuccessWithMessage(c, "done", nil)
}

// Logs 审核日志
// GET /api/v1/admin/moderation-logs
func (h *AdminHandler) Logs(c *gin.Context) {
	page, pageSize := pageParams(c)

	logs, total, err := h.moderationService.Logs(c.Query("entity_type"), page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.SuccessPage(c, total, page, pageSize, logs)
}
