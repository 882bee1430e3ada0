package handler

import (
	"errors"
	"io"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/estate_go_server/internal/api/middleware"
	"github.com/qs3c/estate_go_server/internal/model/dto"
	"github.com/qs3c/estate_go_server/internal/pkg/response"
	"github.com/qs3c/estate_go_server/internal/service"
)

type UserHandler struct {
	userService *service.UserService
	subService  *service.SubscriptionService
}

func NewUserHandler(userService *service.UserService, subService *service.SubscriptionService) *UserHandler {
	return &UserHandler{
		userService: userService,
		subService:  subService,
	}
}

// GetProfile 获取个人资料
// GET /api/v1/me
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	info, err := h.userService.GetProfile(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, info)
}

// UpdateProfile 更新个人资料
// PUT /api/v1/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	info, err := h.userService.UpdateProfile(userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrPhoneExists) {
			response.DuplicateError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, info)
}

// UploadProfileImage 上传头像
// POST /api/v1/me/profile-image
func (h *UserHandler) UploadProfileImage(c *gin.Context) {
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

	url, err := h.userService.UploadProfileImage(userID, data, filepath.Ext(header.Filename))
	if err != nil {
		if errors.Is(err, service.ErrStorageUnavailable) {
			response.ServerError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, gin.H{"url": url})
}

// GetSubscription 订阅状态（无订阅行时懒创建）
// GET /api/v1/me/subscription
func (h *UserHandler) GetSubscription(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	status, err := h.subService.Status(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, status)
}
