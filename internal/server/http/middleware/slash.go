package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// TrailingSlash redirects permanently to the canonical path: repeated slashes
// collapsed and no trailing slash except for the root.
func TrailingSlash() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		clean := canonicalPath(path)
		if clean == path {
			c.Next()
			return
		}
		target := clean
		if q := c.Request.URL.RawQuery; q != "" {
			target += "?" + q
		}
		c.Redirect(http.StatusMovedPermanently, target)
		c.Abort()
	}
}

func canonicalPath(path string) string {
	var b strings.Builder
	b.Grow(len(path))
	prevSlash := false
	for i := 0; i < len(path); i++ {
		ch := path[i]
		if ch == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteByte(ch)
	}
	out := b.String()
	if len(out) > 1 {
		out = strings.TrimSuffix(out, "/")
	}
	if out == "" {
		return "/"
	}
	return out
}
