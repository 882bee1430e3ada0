package sms

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/estate_go_server/config"
)

func TestNewSender_Backends(t *testing.T) {
	assert.IsType(t, &consoleSender{}, NewSender(&config.SMSConfig{}))
	assert.IsType(t, &consoleSender{}, NewSender(&config.SMSConfig{Backend: "console"}))
	assert.IsType(t, &disabledSender{}, NewSender(&config.SMSConfig{Backend: "disabled"}))
	assert.IsType(t, &disabledSender{}, NewSender(&config.SMSConfig{Backend: "OFF"}))
	assert.IsType(t, &gatewaySender{}, NewSender(&config.SMSConfig{Backend: "gateway"}))
}

func TestDisabledSender(t *testing.T) {
	s := &disabledSender{}
	assert.NoError(t, s.Send("+15550100", "hello"))
}

func TestConsoleSender_EmptyInput(t *testing.T) {
	s := &consoleSender{}
	assert.NoError(t, s.Send("", "hello"))
	assert.NoError(t, s.Send("+15550100", ""))
}

func TestGatewaySender(t *testing.T) {
	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewSender(&config.SMSConfig{
		Backend:    "gateway",
		GatewayURL: server.URL,
		GatewayKey: "test-key",
		Sender:     "ESTATE",
	})

	err := s.Send("+15550100", "Ad #ABC123 contact")
	require.NoError(t, err)
	assert.Equal(t, "+15550100", received["to"])
	assert.Equal(t, "Ad #ABC123 contact", received["text"])
	assert.Equal(t, "ESTATE", received["sender"])
}

func TestGatewaySender_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	s := NewSender(&config.SMSConfig{Backend: "gateway", GatewayURL: server.URL})
	assert.Error(t, s.Send("+15550100", "hello"))
}
