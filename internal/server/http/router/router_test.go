package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/polkiloo/storefront/internal/app/apptest"
	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/metrics"
	"github.com/polkiloo/storefront/internal/pkg/ratelimit"
)

const (
	siteURL       = "https://benice.test"
	webhookSecret = "whsec_router"
)

var kibbleID = uuid.MustParse("11111111-1111-1111-1111-111111111111")

type fixture struct {
	store   *apptest.Store
	handler http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := apptest.NewStore(model.Product{ID: kibbleID, Name: "Pienso Salmón", Slug: "pienso-salmon", Price: 10, Stock: 20})
	engine := Setup(Params{
		Facade:  store.Facade,
		Config:  &config.Config{SiteURL: siteURL, StripeWebhookSecret: webhookSecret},
		Logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Limiter: ratelimit.New(ratelimit.NewMemoryStore()),
		Metrics: metrics.New(),
	})
	return &fixture{store: store, handler: engine}
}

func (f *fixture) do(method, target string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestSetupPublicRoutes(t *testing.T) {
	f := newFixture(t)

	resp := f.do(http.MethodGet, "/api/products/pienso-salmon", nil, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "nosniff", resp.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "60", resp.Header().Get("X-RateLimit-Limit"))

	resp = f.do(http.MethodGet, "/api/products/"+kibbleID.String()+"/reviews", nil, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = f.do(http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"database":"ok"`)

	resp = f.do(http.MethodGet, "/robots.txt", nil, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = f.do(http.MethodGet, "/sitemap.xml", nil, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), siteURL+"/producto/pienso-salmon")

	resp = f.do(http.MethodGet, "/checkout/success?session_id=cs_missing", nil, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "Estamos procesando")
}

func TestSetupAuthorization(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/orders", nil, nil).Code)
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/orders", nil, bearer("token")).Code)

	require.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/admin/orders", nil, bearer("token")).Code)
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/admin/orders", nil, bearer("admin-token")).Code)
}

func TestSetupRegisterThenUseCookie(t *testing.T) {
	f := newFixture(t)
	origin := map[string]string{"Origin": siteURL}

	resp := f.do(http.MethodPost, "/api/auth/register",
		map[string]string{"email": "ana@example.com", "password": "perrito123"}, origin)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	cookies := resp.Result().Cookies()
	require.NotEmpty(t, cookies)
	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.AddCookie(cookies[0])
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), "ana@example.com")
}

func TestSetupRejectsCrossSiteWrites(t *testing.T) {
	f := newFixture(t)
	body := map[string]string{"email": "fan@example.com"}

	resp := f.do(http.MethodPost, "/api/newsletter", body, nil)
	require.Equal(t, http.StatusForbidden, resp.Code)

	resp = f.do(http.MethodPost, "/api/newsletter", body, map[string]string{"Origin": "https://evil.test"})
	require.Equal(t, http.StatusForbidden, resp.Code)

	resp = f.do(http.MethodPost, "/api/newsletter", body, map[string]string{"Origin": siteURL})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestSetupRateLimitsForms(t *testing.T) {
	f := newFixture(t)
	origin := map[string]string{"Origin": siteURL}

	for i := 0; i < int(ratelimit.PolicyForm.Limit); i++ {
		resp := f.do(http.MethodPost, "/api/contact", map[string]string{"name": "Ana"}, origin)
		require.Equal(t, http.StatusBadRequest, resp.Code, "attempt %d", i+1)
	}
	resp := f.do(http.MethodPost, "/api/contact", map[string]string{"name": "Ana"}, origin)
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	require.NotEmpty(t, resp.Header().Get("Retry-After"))

	resp = f.do(http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `storefront_rate_limited_total{policy="form"} 1`)
	require.Contains(t, resp.Body.String(), "storefront_http_request_duration_seconds")
}

func TestSetupWebhookSkipsCSRF(t *testing.T) {
	f := newFixture(t)
	f.store.Payments.AddSession(model.CheckoutSession{
		ID:              "cs_router",
		PaymentStatus:   model.PaymentStatusPaid,
		PaymentIntentID: "pi_router",
		AmountTotal:     1000,
		Customer:        model.CustomerDetails{Email: "ana@example.com"},
	}, model.LineItem{Description: "Pienso Salmón", Quantity: 1, AmountTotal: 1000, ProductID: kibbleID.String()})

	payload := []byte(fmt.Sprintf(`{"id":"evt_router","object":"event","type":"checkout.session.completed","data":{"object":{"id":%q}}}`, "cs_router"))
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: webhookSecret})

	resp := f.do(http.MethodPost, "/api/stripe/webhook", signed.Payload, map[string]string{"Stripe-Signature": signed.Header})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.Equal(t, 1, f.store.Orders.Count())
}

func TestSetupTrailingSlashAndVisits(t *testing.T) {
	f := newFixture(t)

	resp := f.do(http.MethodGet, "/tienda/?page=2", nil, nil)
	require.Equal(t, http.StatusMovedPermanently, resp.Code)
	require.Equal(t, "/tienda?page=2", resp.Header().Get("Location"))

	f.do(http.MethodGet, "/productos", nil, map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"})
	f.do(http.MethodGet, "/api/products", nil, nil)
	f.do(http.MethodGet, "/styles/site.css", nil, nil)

	visits := f.store.Visits.All()
	require.Len(t, visits, 1)
	require.Equal(t, "/productos", visits[0].Path)
	require.Equal(t, "203.0.113.0", visits[0].IPAddress)
}

func TestSetupCompressesResponses(t *testing.T) {
	f := newFixture(t)

	resp := f.do(http.MethodGet, "/api/products", nil, map[string]string{"Accept-Encoding": "gzip"})
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "gzip", resp.Header().Get("Content-Encoding"))
}
