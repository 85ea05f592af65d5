package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

var clientIPHeaders = []string{"CF-Connecting-IP", "X-Real-IP", "X-Forwarded-For", "X-Client-IP", "True-Client-IP"}

// ClientIP returns the visitor address as reported by the closest trusted proxy
// header, falling back to the connection's remote address.
func ClientIP(c *gin.Context) string {
	for _, h := range clientIPHeaders {
		v := c.GetHeader(h)
		if h == "X-Forwarded-For" {
			v, _, _ = strings.Cut(v, ",")
		}
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return host
}
