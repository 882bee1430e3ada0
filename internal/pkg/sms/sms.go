// Package sms 短信发送，按配置选择后端：
//   - console（默认）：打印日志，安全兜底
//   - disabled：不发送
//   - gateway：HTTP 网关（Twilio/MSG91 等同构接口）
package sms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/qs3c/estate_go_server/config"
)

type Sender interface {
	Send(toPhone, text string) error
}

// NewSender 按配置创建发送器
func NewSender(cfg *config.SMSConfig) Sender {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "disabled", "off", "none":
		return &disabledSender{}
	case "gateway":
		return &gatewaySender{
			cfg:    cfg,
			client: &http.Client{Timeout: 10 * time.Second},
		}
	default:
		return &consoleSender{}
	}
}

type disabledSender struct{}

func (*disabledSender) Send(toPhone, text string) error {
	return nil
}

type consoleSender struct{}

func (*consoleSender) Send(toPhone, text string) error {
	if toPhone == "" || text == "" {
		return nil
	}
	log.Printf("[sms] to=%s text=%s", toPhone, text)
	return nil
}

type gatewaySender struct {
	cfg    *config.SMSConfig
	client *http.Client
}

func (s *gatewaySender) Send(toPhone, text string) error {
	toPhone = strings.TrimSpace(toPhone)
	text = strings.TrimSpace(text)
	if toPhone == "" || text == "" {
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"to":     toPhone,
		"text":   text,
		"sender": s.cfg.Sender,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.cfg.GatewayURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.GatewayKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway error: status %d", resp.StatusCode)
	}
	return nil
}
