package playstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qs3c/estate_go_server/config"
)

func TestVerifySubscription_NotConfigured(t *testing.T) {
	client := NewClient(&config.GoogleConfig{})

	_, err := client.VerifySubscription(context.Background(), "smart_monthly_199", "token")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestVerifySubscription_MissingServiceAccountFile(t *testing.T) {
	client := NewClient(&config.GoogleConfig{PackageName: "com.example.estate"})

	_, err := client.VerifySubscription(context.Background(), "smart_monthly_199", "token")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestVerifySubscription_UnreadableServiceAccountFile(t *testing.T) {
	client := NewClient(&config.GoogleConfig{
		PackageName:        "com.example.estate",
		ServiceAccountFile: "/nonexistent/sa.json",
	})

	_, err := client.VerifySubscription(context.Background(), "smart_monthly_199", "token")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
