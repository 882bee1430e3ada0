package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/estate_go_server/internal/pkg/jwt"
	"github.com/qs3c/estate_go_server/internal/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testJWTSecret = "test-secret-key-for-middleware"

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

// authedRouter 把 GetUserID 的结果回显出来，便于断言
func authedRouter(mw gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(mw)
	router.GET("/probe", func(c *gin.Context) {
		userID, ok := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "authenticated": ok})
	})
	return router
}

func probe(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/probe", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuth_ValidToken(t *testing.T) {
	token, err := jwt.GenerateToken(123, testJWTSecret, 24)
	require.NoError(t, err)

	w := probe(authedRouter(Auth(testJWTSecret)), "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result["authenticated"].(bool))
	assert.Equal(t, float64(123), result["user_id"])
}

func TestAuth_Rejects(t *testing.T) {
	wrongSecretToken, err := jwt.GenerateToken(123, "different-secret", 24)
	require.NoError(t, err)
	expiredToken, err := jwt.GenerateToken(123, testJWTSecret, 0)
	require.NoError(t, err)

	cases := []struct {
		name          string
		authorization string
	}{
		{"missing header", ""},
		{"no bearer prefix", "some-token-without-bearer"},
		{"garbage token", "Bearer invalid-token"},
		{"wrong secret", "Bearer " + wrongSecretToken},
		{"expired token", "Bearer " + expiredToken},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := probe(authedRouter(Auth(testJWTSecret)), tc.authorization)

			resp := parseResponse(t, w)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, response.CodeAuthFailed, resp.Code)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	token, err := jwt.GenerateToken(456, testJWTSecret, 24)
	require.NoError(t, err)

	cases := []struct {
		name          string
		authorization string
		authenticated bool
	}{
		{"valid token", "Bearer " + token, true},
		{"no token", "", false},
		{"garbage token", "Bearer invalid-token", false},
		{"no bearer prefix", "no-bearer-prefix", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := probe(authedRouter(OptionalAuth(testJWTSecret)), tc.authorization)

			// 可选认证永远放行，只决定身份是否注入
			assert.Equal(t, http.StatusOK, w.Code)
			var result map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
			assert.Equal(t, tc.authenticated, result["authenticated"].(bool))
			if tc.authenticated {
				assert.Equal(t, float64(456), result["user_id"])
			}
		})
	}
}

func TestGetUserID(t *testing.T) {
	t.Run("not set", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		userID, ok := GetUserID(c)
		assert.False(t, ok)
		assert.Equal(t, int64(0), userID)
	})

	t.Run("wrong type", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set(UserIDKey, "not-an-int64")
		userID, ok := GetUserID(c)
		assert.False(t, ok)
		assert.Equal(t, int64(0), userID)
	})

	t.Run("valid", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set(UserIDKey, int64(789))
		userID, ok := GetUserID(c)
		assert.True(t, ok)
		assert.Equal(t, int64(789), userID)
	})
}
