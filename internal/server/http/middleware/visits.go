package middleware

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// VisitRecorder stores page views. Implementations swallow their own errors.
type VisitRecorder interface {
	RecordVisit(ctx context.Context, visit model.Visit)
}

var (
	untrackedPrefixes = []string{"/api/", "/_", "/styles/", "/images/", "/metrics"}
	untrackedSuffixes = []string{".css", ".js", ".svg", ".png", ".jpg", ".ico"}
)

// TrackVisits records page views with the visitor address anonymised.
func TrackVisits(recorder VisitRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if tracked(path) {
			recorder.RecordVisit(context.WithoutCancel(c.Request.Context()), model.Visit{
				Path:      path,
				IPAddress: AnonymizeIP(ClientIP(c)),
				UserAgent: c.Request.UserAgent(),
				Referrer:  c.Request.Referer(),
				CreatedAt: time.Now().UTC(),
			})
		}
		c.Next()
	}
}

func tracked(path string) bool {
	for _, p := range untrackedPrefixes {
		if strings.HasPrefix(path, p) {
			return false
		}
	}
	for _, s := range untrackedSuffixes {
		if strings.HasSuffix(path, s) {
			return false
		}
	}
	return true
}

const anonymousIP = "anonima"

var ipv4Pattern = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)

// AnonymizeIP zeroes the last IPv4 octet or keeps the first four IPv6 groups.
// Anything else becomes "anonima".
func AnonymizeIP(ip string) string {
	if ipv4Pattern.MatchString(ip) {
		return ip[:strings.LastIndexByte(ip, '.')] + ".0"
	}
	if strings.Contains(ip, ":") {
		parts := strings.Split(ip, ":")
		if len(parts) > 4 {
			return strings.Join(parts[:4], ":") + "::0"
		}
	}
	return anonymousIP
}
