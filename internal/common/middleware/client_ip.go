package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// ClientAddress возвращает первое значение X-Forwarded-For, иначе хост из
// адреса сокета. Доверие к прокси не проверяется.
func ClientAddress(c *gin.Context) string {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	remote := c.Request.RemoteAddr
	if host, _, err := net.SplitHostPort(remote); err == nil {
		return host
	}
	return remote
}
