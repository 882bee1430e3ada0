package main

import (
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/estate_go_server/config"
	"github.com/qs3c/estate_go_server/internal/database"
	"github.com/qs3c/estate_go_server/internal/model"
	"github.com/qs3c/estate_go_server/internal/repository"
)

var (
	dryRun       = flag.Bool("dry-run", true, "Dry run mode, don't actually modify rows")
	cleanOtps    = flag.Bool("clean-otps", true, "Delete expired OTP codes")
	cleanPeriods = flag.Bool("clean-periods", true, "Deactivate subscription periods past their end time")
	cleanUsage   = flag.Bool("clean-usage", true, "Delete usage rows referencing deleted listings")
)

func main() {
	flag.Parse()

	log.Println("🧹 Starting cleanup task...")
	log.Printf("Mode: dry-run=%v", *dryRun)

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 连接数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	otpRepo := repository.NewOtpRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	usageRepo := repository.NewUsageRepository(db)

	now := time.Now()
	var expiredOtps, expiredPeriods, orphanedUsage int64

	// 1. 过期验证码
	if *cleanOtps {
		log.Println("\n🔑 Cleaning expired OTP codes...")
		if *dryRun {
			expiredOtps = countRows(db.Model(&model.OtpCode{}).Where("expires_at < ?", now))
		} else {
			expiredOtps, err = otpRepo.DeleteExpired(now)
			if err != nil {
				log.Printf("  ❌ Failed to delete OTP codes: %v", err)
			}
		}
		log.Printf("  %d expired OTP codes", expiredOtps)
	}

	// 2. 已到期但仍标记生效的订阅周期
	if *cleanPeriods {
		log.Println("\n📅 Deactivating expired subscription periods...")
		if *dryRun {
			expiredPeriods = countRows(db.Model(&model.SubscriptionPeriod{}).
				Where("active = ? AND end_time < ?", true, now))
		} else {
			expiredPeriods, err = subRepo.ExpirePeriodsBefore(now)
			if err != nil {
				log.Printf("  ❌ Failed to deactivate periods: %v", err)
			}
		}
		log.Printf("  %d expired periods", expiredPeriods)
	}

	// 3. 引用已删除房源的解锁记录
	if *cleanUsage {
		log.Println("\n🗑  Cleaning orphaned contact usage rows...")
		orphans, err := usageRepo.OrphanedListingIDs()
		if err != nil {
			log.Printf("  ❌ Failed to scan usage rows: %v", err)
		} else if len(orphans) > 0 {
			if *dryRun {
				orphanedUsage = countRows(db.Model(&model.ContactUsage{}).Where("listing_id IN ?", orphans)) +
					countRows(db.Model(&model.FreeContactUsage{}).Where("listing_id IN ?", orphans))
			} else {
				orphanedUsage, err = usageRepo.DeleteByListingIDs(orphans)
				if err != nil {
					log.Printf("  ❌ Failed to delete usage rows: %v", err)
				}
			}
			log.Printf("  %d usage rows across %d deleted listings", orphanedUsage, len(orphans))
		} else {
			log.Println("  no orphaned rows")
		}
	}

	// 输出统计
	log.Println("\n" + strings.Repeat("=", 60))
	log.Println("📊 Cleanup Summary")
	log.Println(strings.Repeat("=", 60))
	log.Printf("Expired OTP codes: %d", expiredOtps)
	log.Printf("Expired subscription periods: %d", expiredPeriods)
	log.Printf("Orphaned usage rows: %d", orphanedUsage)
	if *dryRun {
		log.Println("\n⚠️  DRY RUN MODE - No rows were actually modified")
		log.Println("   Run with -dry-run=false to apply changes")
	} else {
		log.Println("\n✅ Cleanup completed!")
	}
	log.Println(strings.Repeat("=", 60))
}

func countRows(q *gorm.DB) int64 {
	var n int64
	if err := q.Count(&n).Error; err != nil {
		log.Printf("  ❌ Count failed: %v", err)
	}
	return n
}
