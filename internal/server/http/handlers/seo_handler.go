package handlers

import (
	"context"
	"encoding/xml"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

const (
	serviceName    = "Benice Pet Shop"
	serviceVersion = "1.0.0"
	healthTimeout  = 2 * time.Second
)

type sitemapPage struct {
	path       string
	priority   string
	changefreq string
}

var staticPages = []sitemapPage{
	{"/", "1.0", "daily"},
	{"/productos", "0.9", "daily"},
	{"/ofertas", "0.8", "daily"},
	{"/blog", "0.7", "weekly"},
	{"/recomendador", "0.7", "monthly"},
	{"/animales/perros", "0.8", "weekly"},
	{"/animales/gatos", "0.8", "weekly"},
	{"/animales/pajaros", "0.7", "weekly"},
	{"/animales/peces", "0.7", "weekly"},
	{"/animales/roedores", "0.7", "weekly"},
	{"/info/contacto", "0.5", "monthly"},
	{"/info/sobre-nosotros", "0.5", "monthly"},
	{"/info/envios", "0.5", "monthly"},
	{"/info/faq", "0.5", "monthly"},
	{"/legal/privacidad", "0.3", "yearly"},
	{"/legal/terminos", "0.3", "yearly"},
	{"/legal/cookies", "0.3", "yearly"},
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// SEOHandler serves robots.txt, the sitemap and the health probe.
type SEOHandler struct {
	catalog CatalogFacade
	health  HealthFacade
	siteURL string
	logger  *slog.Logger
	now     func() time.Time
}

// NewSEOHandler constructs SEOHandler.
func NewSEOHandler(catalog CatalogFacade, health HealthFacade, siteURL string, logger *slog.Logger) *SEOHandler {
	return &SEOHandler{
		catalog: catalog,
		health:  health,
		siteURL: strings.TrimRight(siteURL, "/"),
		logger:  logger,
		now:     time.Now,
	}
}

// Robots handles GET /robots.txt.
func (h *SEOHandler) Robots(c *gin.Context) {
	body := "User-agent: *\n" +
		"Allow: /\n" +
		"Disallow: /admin/\n" +
		"Disallow: /api/\n" +
		"Disallow: /cuenta/\n" +
		"Disallow: /checkout/\n" +
		"Disallow: /auth/\n" +
		"\n" +
		"Sitemap: " + h.siteURL + "/sitemap.xml\n"
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}

// Sitemap handles GET /sitemap.xml. Catalog failures degrade to static pages only.
func (h *SEOHandler) Sitemap(c *gin.Context) {
	today := h.now().UTC().Format(time.DateOnly)
	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, p := range staticPages {
		set.URLs = append(set.URLs, sitemapURL{Loc: h.siteURL + p.path, LastMod: today, ChangeFreq: p.changefreq, Priority: p.priority})
	}

	products, err := h.catalog.InStockProducts(c.Request.Context())
	if err != nil {
		h.logger.Warn("sitemap without products", slog.String("error", err.Error()))
	}
	for _, p := range products {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.siteURL + "/producto/" + productSlug(p),
			LastMod:    lastMod(p, today),
			ChangeFreq: "weekly",
			Priority:   "0.8",
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "Error interno del servidor")
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), out...))
}

func productSlug(p model.Product) string {
	if slug.IsSlug(p.Slug) {
		return p.Slug
	}
	return slug.Make(p.Name)
}

func lastMod(p model.Product, fallback string) string {
	if p.UpdatedAt.IsZero() {
		return fallback
	}
	return p.UpdatedAt.UTC().Format(time.DateOnly)
}

// Health handles GET /api/health.
func (h *SEOHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	database := "ok"
	if err := h.health.DatabaseHealthy(ctx); err != nil {
		h.logger.Warn("database health check failed", slog.String("error", err.Error()))
		database = "error"
	}
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:    "ok",
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Version:   serviceVersion,
		Service:   serviceName,
		Database:  database,
	})
}
