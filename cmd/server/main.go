package main

import (
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/estate_go_server/config"
	"github.com/qs3c/estate_go_server/internal/api"
	"github.com/qs3c/estate_go_server/internal/api/handler"
	"github.com/qs3c/estate_go_server/internal/database"
	"github.com/qs3c/estate_go_server/internal/model"
	"github.com/qs3c/estate_go_server/internal/pkg/delivery"
	"github.com/qs3c/estate_go_server/internal/pkg/email"
	"github.com/qs3c/estate_go_server/internal/pkg/oss"
	"github.com/qs3c/estate_go_server/internal/pkg/playstore"
	"github.com/qs3c/estate_go_server/internal/pkg/ratelimit"
	"github.com/qs3c/estate_go_server/internal/pkg/sms"
	"github.com/qs3c/estate_go_server/internal/repository"
	"github.com/qs3c/estate_go_server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.OtpCode{},
		&model.Subscription{},
		&model.SubscriptionPlan{},
		&model.SubscriptionPeriod{},
		&model.ContactUsage{},
		&model.FreeContactUsage{},
		&model.Listing{},
		&model.ListingImage{},
		&model.SavedListing{},
		&model.ModerationLog{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}

	// OSS 未配置时以降级模式启动，图片上传接口返回明确错误
	var store service.ImageStore
	if cfg.OSS.Endpoint != "" && cfg.OSS.BucketName != "" {
		ossClient, err := oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Fatalf("Failed to init OSS client: %v", err)
		}
		store = ossClient
	} else {
		log.Println("OSS not configured, image upload disabled")
	}

	emailService := email.NewService(&cfg.Email)
	smsSender := sms.NewSender(&cfg.SMS)
	gateway := delivery.NewGateway(emailService, smsSender)
	verifier := playstore.NewClient(&cfg.Google)
	limiter := ratelimit.NewLimiter(rdb)

	// 初始化仓储层
	userRepo := repository.NewUserRepository(db)
	otpRepo := repository.NewOtpRepository(db)
	listingRepo := repository.NewListingRepository(db)
	savedRepo := repository.NewSavedRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	usageRepo := repository.NewUsageRepository(db)
	moderationRepo := repository.NewModerationRepository(db)

	// 初始化服务层
	authService := service.NewAuthService(userRepo, otpRepo, cfg, emailService, smsSender)
	userService := service.NewUserService(userRepo, store)
	subService := service.NewSubscriptionService(subRepo, usageRepo, verifier, cfg)
	contactService := service.NewContactService(listingRepo, usageRepo, subService, cfg.Contact.FreeTierEnabled)
	listingService := service.NewListingService(listingRepo, savedRepo, usageRepo, userRepo, store, &cfg.Upload)
	moderationService := service.NewModerationService(listingRepo, userRepo, moderationRepo)

	// 种子数据：套餐表与管理员账号
	if err := subService.SeedPlans(cfg.Plans); err != nil {
		log.Fatalf("Failed to seed subscription plans: %v", err)
	}
	if err := seedAdmin(userRepo, cfg); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	// 初始化处理器
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService, subService)
	listingHandler := handler.NewListingHandler(listingService)
	subscriptionHandler := handler.NewSubscriptionHandler(subService)
	contactHandler := handler.NewContactHandler(contactService, authService, gateway)
	adminHandler := handler.NewAdminHandler(moderationService, listingService)

	// 初始化路由
	router := api.NewRouter(
		authHandler,
		userHandler,
		listingHandler,
		subscriptionHandler,
		contactHandler,
		adminHandler,
		userRepo,
		limiter,
		cfg,
	)
	engine := router.Setup()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// seedAdmin 确保配置的管理员账号存在
func seedAdmin(userRepo *repository.UserRepository, cfg *config.Config) error {
	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		return nil
	}

	_, err := userRepo.GetByEmail(cfg.Admin.Email)
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &model.User{
		Email:          cfg.Admin.Email,
		Username:       "admin",
		Name:           "Administrator",
		Role:           "admin",
		ApprovalStatus: "approved",
		PasswordHash:   string(hash),
	}
	if err := userRepo.Create(admin); err != nil {
		return err
	}
	log.Printf("Admin account created: %s", cfg.Admin.Email)
	return nil
}
