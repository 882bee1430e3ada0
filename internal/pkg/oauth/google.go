// Package oauth Google 登录的 ID token 校验。
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

var ErrInvalidIDToken = errors.New("invalid google id token")

type GoogleUser struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Aud     string `json:"aud"`
}

type GoogleVerifier struct {
	clientID string
	client   *http.Client
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID: clientID,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// VerifyIDToken 通过 tokeninfo 端点校验 ID token 并返回用户信息
func (g *GoogleVerifier) VerifyIDToken(ctx context.Context, idToken string) (*GoogleUser, error) {
	endpoint := "https://oauth2.googleapis.com/tokeninfo?id_token=" + url.QueryEscape(idToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrInvalidIDToken, resp.StatusCode, string(body))
	}

	var user GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode tokeninfo response: %w", err)
	}

	// audience 必须是本应用的 client_id，防止其他应用的 token 被复用
	if g.clientID != "" && user.Aud != g.clientID {
		return nil, ErrInvalidIDToken
	}
	if user.Sub == "" {
		return nil, ErrInvalidIDToken
	}

	return &user, nil
}
