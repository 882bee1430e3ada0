package dto

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Username        string `json:"username" binding:"required,min=3,max=80"`
	Password        string `json:"password" binding:"required,min=8,max=64"`
	Phone           string `json:"phone,omitempty" binding:"omitempty,max=32"`
	Name            string `json:"name,omitempty" binding:"omitempty,max=255"`
	Role            string `json:"role,omitempty" binding:"omitempty,oneof=user owner"`
	OwnerCategory   string `json:"owner_category,omitempty" binding:"omitempty,max=120"`
	CompanyName     string `json:"company_name,omitempty" binding:"omitempty,max=255"`
	CompanyAddress  string `json:"company_address,omitempty" binding:"omitempty,max=512"`
	State           string `json:"state,omitempty" binding:"omitempty,max=80"`
	District        string `json:"district,omitempty" binding:"omitempty,max=120"`
}

// LoginRequest 密码登录（identifier 可为邮箱/用户名/手机号）
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// RequestOtpRequest 请求验证码
type RequestOtpRequest struct {
	Identifier string `json:"identifier" binding:"required"`
}

// VerifyOtpRequest 验证码登录
type VerifyOtpRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Code       string `json:"code" binding:"required,min=4,max=12"`
}

// GoogleLoginRequest Google 登录
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// ForgotResetRequest 重置密码
type ForgotResetRequest struct {
	Identifier  string `json:"identifier" binding:"required"`
	Code        string `json:"code" binding:"required,min=4,max=12"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=64"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// RegisterResponse 注册响应
type RegisterResponse struct {
	UserID int64 `json:"user_id"`
}

// UserInfo 用户信息
type UserInfo struct {
	ID              int64  `json:"id"`
	Email           string `json:"email"`
	Username        string `json:"username"`
	Phone           string `json:"phone,omitempty"`
	Name            string `json:"name,omitempty"`
	Role            string `json:"role"`
	ApprovalStatus  string `json:"approval_status"`
	CompanyName     string `json:"company_name,omitempty"`
	State           string `json:"state,omitempty"`
	District        string `json:"district,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}
