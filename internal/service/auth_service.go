package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/estate_go_server/config"
	"github.com/qs3c/estate_go_server/internal/model"
	"github.com/qs3c/estate_go_server/internal/model/dto"
	"github.com/qs3c/estate_go_server/internal/pkg/jwt"
	"github.com/qs3c/estate_go_server/internal/pkg/normalize"
	"github.com/qs3c/estate_go_server/internal/pkg/oauth"
	"github.com/qs3c/estate_go_server/internal/repository"
)

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrUsernameExists     = errors.New("username already taken")
	ErrPhoneExists        = errors.New("phone number already registered")
	ErrCompanyExists      = errors.New("company already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidOtp         = errors.New("invalid or expired code")
	ErrInvalidGoogleToken = errors.New("invalid google token")
	ErrUserNotFound       = errors.New("user not found")
)

const otpTTL = 10 * time.Minute

type AuthService struct {
	userRepo *repository.UserRepository
	otpRepo  *repository.OtpRepository
	cfg      *config.Config
	google   *oauth.GoogleVerifier
	email    EmailOtpSender
	sms      SMSOtpSender
}

// EmailOtpSender 验证码邮件出口
type EmailOtpSender interface {
	SendOtpCode(to, code, purpose string) error
}

// SMSOtpSender 验证码短信出口
type SMSOtpSender interface {
	Send(toPhone, text string) error
}

func NewAuthService(userRepo *repository.UserRepository, otpRepo *repository.OtpRepository, cfg *config.Config, email EmailOtpSender, sms SMSOtpSender) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		otpRepo:  otpRepo,
		cfg:      cfg,
		google:   oauth.NewGoogleVerifier(cfg.Google.SignInClientID),
		email:    email,
		sms:      sms,
	}
}

// Register 用户注册；邮箱/用户名/手机号/公司均按归一化值查重
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	exists, err = s.userRepo.ExistsByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameExists
	}

	phoneNorm := normalize.Phone(req.Phone)
	exists, err = s.userRepo.ExistsByPhoneNormalized(phoneNorm)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrPhoneExists
	}

	role := req.Role
	if role == "" {
		role = "user"
	}

	user := &model.User{
		Email:           req.Email,
		Username:        req.Username,
		Phone:           req.Phone,
		PhoneNormalized: phoneNorm,
		Name:            req.Name,
		Role:            role,
		State:           req.State,
		District:        req.District,
		ApprovalStatus:  "approved",
	}

	if role == "owner" {
		companyNorm := normalize.Key(req.CompanyName)
		addressNorm := normalize.Key(req.CompanyAddress)
		exists, err = s.userRepo.ExistsByCompany(companyNorm, addressNorm)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrCompanyExists
		}
		user.OwnerCategory = req.OwnerCategory
		user.CompanyName = req.CompanyName
		user.CompanyNameNormalized = companyNorm
		user.CompanyAddress = req.CompanyAddress
		user.CompanyAddressNormalized = addressNorm
		// 业主要过人工审核才能上架房源
		user.ApprovalStatus = "pending"
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = string(hashed)

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	return &dto.RegisterResponse{UserID: user.ID}, nil
}

// Login 密码登录，identifier 接受邮箱/用户名/手机号
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.lookupByIdentifier(req.Identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueSession(user)
}

// RequestOtp 发送验证码；identifier 不存在时同样返回成功，不暴露账号存在性
func (s *AuthService) RequestOtp(identifier, purpose string) error {
	user, err := s.lookupByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	code, err := generateOtpCode()
	if err != nil {
		return err
	}

	if err := s.otpRepo.Replace(&model.OtpCode{
		Identifier: identifier,
		Purpose:    purpose,
		Code:       code,
		ExpiresAt:  time.Now().Add(otpTTL),
	}); err != nil {
		return err
	}

	// 按 identifier 形态选通道：邮箱走邮件，其余走短信
	if strings.Contains(identifier, "@") {
		if err := s.email.SendOtpCode(user.Email, code, purpose); err != nil {
			log.Printf("auth: otp email to %s failed: %v", user.Email, err)
		}
		return nil
	}
	if user.Phone != "" {
		text := fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code)
		if err := s.sms.Send(user.Phone, text); err != nil {
			log.Printf("auth: otp sms to %s failed: %v", user.Phone, err)
		}
	}
	return nil
}

// VerifyOtp 验证码登录
func (s *AuthService) VerifyOtp(req *dto.VerifyOtpRequest) (*dto.LoginResponse, error) {
	otp, err := s.otpRepo.GetValid(req.Identifier, "login", req.Code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidOtp
		}
		return nil, err
	}

	user, err := s.lookupByIdentifier(req.Identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidOtp
		}
		return nil, err
	}

	if err := s.otpRepo.Consume(otp.ID); err != nil {
		return nil, err
	}

	return s.issueSession(user)
}

// GoogleLogin Google 登录；首次登录按邮箱自动建号
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string) (*dto.LoginResponse, error) {
	guser, err := s.google.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, ErrInvalidGoogleToken
	}
	if guser.Email == "" {
		return nil, ErrInvalidGoogleToken
	}

	user, err := s.userRepo.GetByEmail(guser.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if user == nil {
		username := strings.SplitN(guser.Email, "@", 2)[0]
		if exists, _ := s.userRepo.ExistsByUsername(username); exists {
			username = fmt.Sprintf("%s_%s", username, guser.Sub[:minInt(6, len(guser.Sub))])
		}
		user = &model.User{
			Email:          guser.Email,
			Username:       username,
			Name:           guser.Name,
			Role:           "user",
			ApprovalStatus: "approved",
		}
		if err := s.userRepo.Create(user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// 并发建号：重读既有账号
				user, err = s.userRepo.GetByEmail(guser.Email)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
	}

	return s.issueSession(user)
}

// ResetPassword 用 forgot 验证码重置密码
func (s *AuthService) ResetPassword(req *dto.ForgotResetRequest) error {
	otp, err := s.otpRepo.GetValid(req.Identifier, "forgot", req.Code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidOtp
		}
		return err
	}

	user, err := s.lookupByIdentifier(req.Identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidOtp
		}
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{
		"password_hash": string(hashed),
	}); err != nil {
		return err
	}

	return s.otpRepo.Consume(otp.ID)
}

// GetUserByID 根据 ID 获取用户
func (s *AuthService) GetUserByID(id int64) (*model.User, error) {
	return s.userRepo.GetByID(id)
}

func (s *AuthService) lookupByIdentifier(identifier string) (*model.User, error) {
	return s.userRepo.GetByIdentifier(identifier, normalize.Phone(identifier))
}

func (s *AuthService) issueSession(user *model.User) (*dto.LoginResponse, error) {
	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  BuildUserInfo(user, ""),
	}, nil
}

// BuildUserInfo 组装对外用户信息
func BuildUserInfo(user *model.User, profileImageURL string) *dto.UserInfo {
	return &dto.UserInfo{
		ID:              user.ID,
		Email:           user.Email,
		Username:        user.Username,
		Phone:           user.Phone,
		Name:            user.Name,
		Role:            user.Role,
		ApprovalStatus:  user.ApprovalStatus,
		CompanyName:     user.CompanyName,
		State:           user.State,
		District:        user.District,
		ProfileImageURL: profileImageURL,
	}
}

func generateOtpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
