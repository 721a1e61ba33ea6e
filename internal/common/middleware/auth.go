package middleware

import (
	"github.com/gin-gonic/gin"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"message-relay-backend/internal/common/errors"
)

// RequireAdmin пропускает только пользователей, чей Telegram id есть в adminIDs.
// Должен идти после TelegramInitData.
func RequireAdmin(adminIDs []int64) gin.HandlerFunc {
	allowed := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		allowed[id] = struct{}{}
	}

	return func(c *gin.Context) {
		user, exists := c.Get(userKey)
		if !exists {
			_ = c.Error(errors.NewUnauthorizedError("Telegram init data required"))
			c.Abort()
			return
		}

		telegramUser, ok := user.(initdata.User)
		if !ok {
			_ = c.Error(errors.NewUnauthorizedError("invalid user data format"))
			c.Abort()
			return
		}

		if _, isAdmin := allowed[telegramUser.ID]; !isAdmin {
			_ = c.Error(errors.NewForbiddenError("admin access required").WithDetail("user_id", telegramUser.ID))
			c.Abort()
			return
		}

		c.Next()
	}
}
