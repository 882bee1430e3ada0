package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/estate_go_server/internal/pkg/response"
	"github.com/qs3c/estate_go_server/internal/repository"
)

// RequireAdmin 管理员校验；必须排在 Auth 之后
func RequireAdmin(userRepo *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AuthError(c, "authentication required")
			c.Abort()
			return
		}

		user, err := userRepo.GetByID(userID)
		if err != nil {
			response.AuthError(c, "authentication required")
			c.Abort()
			return
		}
		if user.Role != "admin" {
			response.PermissionError(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}
