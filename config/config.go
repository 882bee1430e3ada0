package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	OSS       OSSConfig       `mapstructure:"oss"`
	Email     EmailConfig     `mapstructure:"email"`
	SMS       SMSConfig       `mapstructure:"sms"`
	Google    GoogleConfig    `mapstructure:"google"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Contact   ContactConfig   `mapstructure:"contact"`
	Plans     []PlanConfig    `mapstructure:"plans"`
	Upload    UploadConfig    `mapstructure:"upload"`
	Admin     AdminConfig     `mapstructure:"admin"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	CDNDomain       string `mapstructure:"cdn_domain"`
}

type EmailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type SMSConfig struct {
	Backend    string `mapstructure:"backend"` // console | disabled | gateway
	GatewayURL string `mapstructure:"gateway_url"`
	GatewayKey string `mapstructure:"gateway_key"`
	Sender     string `mapstructure:"sender"`
}

type GoogleConfig struct {
	// Play Billing 服务端校验
	PackageName        string `mapstructure:"package_name"`
	ServiceAccountFile string `mapstructure:"service_account_file"`
	// Google 登录
	SignInClientID string `mapstructure:"sign_in_client_id"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type RateLimitConfig struct {
	ContactPerMinute int `mapstructure:"contact_per_minute"`
	VerifyPerTenMin  int `mapstructure:"verify_per_ten_min"`
	OtpPerTenMin     int `mapstructure:"otp_per_ten_min"`
}

type ContactConfig struct {
	// 免费解锁开关：关闭后未订阅用户无法查看联系方式
	FreeTierEnabled bool `mapstructure:"free_tier_enabled"`
}

type PlanConfig struct {
	ID           string `mapstructure:"id"` // Google Play 商品 ID
	Name         string `mapstructure:"name"`
	PriceINR     int    `mapstructure:"price_inr"`
	DurationDays int    `mapstructure:"duration_days"`
	ContactLimit int    `mapstructure:"contact_limit"`
}

type UploadConfig struct {
	MaxSize           int64    `mapstructure:"max_size"`           // 最大文件大小（字节）
	AllowedExtensions []string `mapstructure:"allowed_extensions"` // 允许的扩展名
}

type AdminConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

// DefaultPlans 内置套餐（config 未配置 plans 时使用）
func DefaultPlans() []PlanConfig {
	return []PlanConfig{
		{ID: "aggressive_10", Name: "Aggressive", PriceINR: 10, DurationDays: 30, ContactLimit: 10},
		{ID: "instant_79", Name: "Instant", PriceINR: 79, DurationDays: 30, ContactLimit: 50},
		{ID: "smart_monthly_199", Name: "Smart", PriceINR: 199, DurationDays: 30, ContactLimit: 200},
		{ID: "business_quarterly_499", Name: "Business", PriceINR: 499, DurationDays: 90, ContactLimit: 1000},
	}
}

func Load(configPath string) (*Config, error) {
	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	// 检查 config.local.yaml 是否存在
	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 环境变量覆盖
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if len(cfg.Plans) == 0 {
		cfg.Plans = DefaultPlans()
	}

	return &cfg, nil
}
