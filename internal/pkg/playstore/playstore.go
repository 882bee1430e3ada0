// Package playstore Google Play Developer API 订阅校验。
// 凭证未配置时返回 ErrNotConfigured，由上层走开发模式兜底。
package playstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"

	"github.com/qs3c/estate_go_server/config"
)

var ErrNotConfigured = errors.New("google play verification not configured")

const androidPublisherScope = "https://www.googleapis.com/auth/androidpublisher"

// Result Google Play 返回的订阅购买信息（字段子集）
type Result struct {
	ExpiryTimeMillis int64
	PaymentState     *int
	OrderID          string
}

type Verifier interface {
	VerifySubscription(ctx context.Context, productID, purchaseToken string) (*Result, error)
}

type Client struct {
	cfg *config.GoogleConfig

	mu      sync.Mutex
	jwtConf *jwt.Config
}

func NewClient(cfg *config.GoogleConfig) *Client {
	return &Client{cfg: cfg}
}

// VerifySubscription 调用 androidpublisher v3 校验订阅购买令牌
func (c *Client) VerifySubscription(ctx context.Context, productID, purchaseToken string) (*Result, error) {
	conf, err := c.credentials()
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf(
		"https://androidpublisher.googleapis.com/androidpublisher/v3/applications/%s/purchases/subscriptions/%s/tokens/%s",
		url.PathEscape(c.cfg.PackageName),
		url.PathEscape(productID),
		url.PathEscape(purchaseToken),
	)

	resp, err := conf.Client(ctx).Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("google play request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("google play api error: status %d: %s", resp.StatusCode, string(body))
	}

	var raw struct {
		ExpiryTimeMillis string `json:"expiryTimeMillis"`
		PaymentState     *int   `json:"paymentState"`
		OrderID          string `json:"orderId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode google play response: %w", err)
	}

	result := &Result{
		PaymentState: raw.PaymentState,
		OrderID:      raw.OrderID,
	}
	if raw.ExpiryTimeMillis != "" {
		ms, err := strconv.ParseInt(raw.ExpiryTimeMillis, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid expiryTimeMillis: %w", err)
		}
		result.ExpiryTimeMillis = ms
	}

	return result, nil
}

// credentials 懒加载服务账号凭证
func (c *Client) credentials() (*jwt.Config, error) {
	if c.cfg.PackageName == "" || c.cfg.ServiceAccountFile == "" {
		return nil, ErrNotConfigured
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.jwtConf != nil {
		return c.jwtConf, nil
	}

	data, err := os.ReadFile(c.cfg.ServiceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}

	conf, err := google.JWTConfigFromJSON(data, androidPublisherScope)
	if err != nil {
		return nil, fmt.Errorf("invalid service account file: %w", err)
	}

	c.jwtConf = conf
	return conf, nil
}
