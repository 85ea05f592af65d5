package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	testhelpers "github.com/polkiloo/storefront/internal/test"
)

func TestAnonymizeIP(t *testing.T) {
	cases := map[string]string{
		"192.168.1.100": "192.168.1.0",
		"10.0.0.255":    "10.0.0.0",
		"2001:0db8:85a3:0000:0000:8a2e:0370:7334": "2001:0db8:85a3:0000::0",
		"":            "anonima",
		"desconocida": "anonima",
		"::1":         "anonima",
	}
	for in, want := range cases {
		require.Equal(t, want, AnonymizeIP(in), in)
	}
}

func TestTrackVisits(t *testing.T) {
	recorder := &testhelpers.VisitRecorderStub{}
	router := gin.New()
	router.Use(TrackVisits(recorder))
	router.NoRoute(func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/tienda", "/api/products", "/_astro/app.js", "/images/logo.png", "/favicon.ico", "/producto/pienso"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("X-Real-IP", "203.0.113.77")
		req.Header.Set("User-Agent", "test-agent")
		req.Header.Set("Referer", "https://google.es")
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	visits := recorder.Recorded()
	require.Len(t, visits, 2)
	require.Equal(t, "/tienda", visits[0].Path)
	require.Equal(t, "/producto/pienso", visits[1].Path)
	require.Equal(t, "203.0.113.0", visits[0].IPAddress)
	require.Equal(t, "test-agent", visits[0].UserAgent)
	require.Equal(t, "https://google.es", visits[0].Referrer)
}
