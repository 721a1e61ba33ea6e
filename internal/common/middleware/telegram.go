package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"message-relay-backend/internal/common/errors"
)

const (
	initDataHeader = "init_data"
	userKey        = "user"
)

// TelegramInitData проверяет заголовок init_data Telegram Mini App по botToken
// и кладет разобранного пользователя в контекст
func TelegramInitData(botToken string, expIn time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(initDataHeader)
		if raw == "" {
			_ = c.Error(errors.NewUnauthorizedError("Telegram init data required"))
			c.Abort()
			return
		}

		if botToken == "" {
			_ = c.Error(errors.New(errors.ErrCodeInternal, "Server configuration error"))
			c.Abort()
			return
		}

		if err := initdata.Validate(raw, botToken, expIn); err != nil {
			_ = c.Error(errors.NewUnauthorizedError("invalid init data").WithDetail("cause", err.Error()))
			c.Abort()
			return
		}

		parsed, err := initdata.Parse(raw)
		if err != nil {
			_ = c.Error(errors.NewUnauthorizedError("malformed init data").WithDetail("cause", err.Error()))
			c.Abort()
			return
		}

		c.Set(userKey, parsed.User)
		c.Next()
	}
}
