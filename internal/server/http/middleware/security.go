package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const contentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self' https://js.stripe.com; " +
	"style-src 'self' 'unsafe-inline'; " +
	"img-src 'self' data: https:; " +
	"connect-src 'self' https://api.stripe.com; " +
	"frame-src https://js.stripe.com https://checkout.stripe.com; " +
	"object-src 'none'; " +
	"base-uri 'self'; " +
	"form-action 'self' https://checkout.stripe.com; " +
	"upgrade-insecure-requests"

var securityHeaders = map[string]string{
	"Strict-Transport-Security":    "max-age=31536000; includeSubDomains",
	"X-Content-Type-Options":       "nosniff",
	"X-Frame-Options":              "DENY",
	"X-XSS-Protection":             "1; mode=block",
	"Referrer-Policy":              "strict-origin-when-cross-origin",
	"Permissions-Policy":           "camera=(), microphone=(), geolocation=()",
	"Content-Security-Policy":      contentSecurityPolicy,
	"Cross-Origin-Opener-Policy":   "same-origin",
	"Cross-Origin-Resource-Policy": "same-origin",
}

// SecurityHeaders sets the browser hardening headers on every response.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for k, v := range securityHeaders {
			h.Set(k, v)
		}
		c.Next()
	}
}

// WebhookPath receives processor callbacks and is exempt from origin checks.
const WebhookPath = "/api/stripe/webhook"

// CSRF rejects state-changing API requests whose Origin (or Referer) is not
// the storefront itself.
func CSRF(siteURL string) gin.HandlerFunc {
	allowed := ""
	if u, err := url.Parse(siteURL); err == nil {
		allowed = strings.ToLower(u.Host)
	}
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !isMutating(c.Request.Method) || !strings.HasPrefix(path, "/api/") || path == WebhookPath {
			c.Next()
			return
		}
		if allowed == "" || requestOriginHost(c.Request) != allowed {
			abortJSON(c, http.StatusForbidden, "Origen no permitido")
			return
		}
		c.Next()
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func requestOriginHost(r *http.Request) string {
	src := r.Header.Get("Origin")
	if src == "" || src == "null" {
		src = r.Header.Get("Referer")
	}
	if src == "" {
		return ""
	}
	u, err := url.Parse(src)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
