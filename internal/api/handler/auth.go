package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/estate_go_server/internal/model/dto"
	"github.com/qs3c/estate_go_server/internal/pkg/response"
	"github.com/qs3c/estate_go_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register 用户注册
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailExists),
			errors.Is(err, service.ErrUsernameExists),
			errors.Is(err, service.ErrPhoneExists),
			errors.Is(err, service.ErrCompanyExists):
			response.DuplicateError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "registered", resp)
}

// Login 密码登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.AuthError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// RequestOtp 请求登录验证码
// POST /api/v1/auth/otp/request
func (h *AuthHandler) RequestOtp(c *gin.Context) {
	var req dto.RequestOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.authService.RequestOtp(req.Identifier, "login"); err != nil {
		response.ServerError(c, "")
		return
	}

	// 不暴露账号是否存在
	response.SuccessWithMessage(c, "code sent if the account exists", nil)
}

// VerifyOtp 验证码登录
// POST /api/v1/auth/otp/verify
func (h *AuthHandler) VerifyOtp(c *gin.Context) {
	var req dto.VerifyOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.VerifyOtp(&req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOtp) {
			response.AuthError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// GoogleLogin Google 登录
// POST /api/v1/auth/google
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req dto.GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.GoogleLogin(c.Request.Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidGoogleToken) {
			response.AuthError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// ForgotPassword 请求重置密码验证码
// POST /api/v1/auth/forgot
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.RequestOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.authService.RequestOtp(req.Identifier, "forgot"); err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "code sent if the account exists", nil)
}

// ResetPassword 用验证码重置密码
// POST /api/v1/auth/reset
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ForgotResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.authService.ResetPassword(&req); err != nil {
		if errors.Is(err, service.ErrInvalidOtp) {
			response.AuthError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "password updated", nil)
}
