package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/metrics"
	"github.com/polkiloo/storefront/internal/pkg/ratelimit"
	"github.com/polkiloo/storefront/internal/server/http/handlers"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

// Params are the router dependencies.
type Params struct {
	fx.In

	Facade  handlers.StoreFacade
	Config  *config.Config
	Logger  *slog.Logger
	Limiter *ratelimit.Limiter
	Metrics *metrics.Metrics
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.RedirectTrailingSlash = false
	engine.SetHTMLTemplate(handlers.Templates())

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(p.Logger, p.Metrics))
	engine.Use(middleware.TrailingSlash())
	engine.Use(middleware.SecurityHeaders())
	engine.Use(middleware.CSRF(p.Config.SiteURL))
	engine.Use(middleware.TrackVisits(p.Facade))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	limit := func(policy ratelimit.Policy) gin.HandlerFunc {
		return middleware.RateLimit(p.Limiter, policy, p.Metrics, p.Logger)
	}
	authenticated := middleware.AuthRequired(p.Facade)

	authHandler := handlers.NewAuthHandler(p.Facade)
	catalogHandler := handlers.NewCatalogHandler(p.Facade)
	checkoutHandler := handlers.NewCheckoutHandler(p.Facade, p.Logger)
	stripeHandler := handlers.NewStripeHandler(p.Facade, p.Config.StripeWebhookSecret, p.Metrics, p.Logger)
	orderHandler := handlers.NewOrderHandler(p.Facade)
	reviewHandler := handlers.NewReviewHandler(p.Facade)
	profileHandler := handlers.NewProfileHandler(p.Facade)
	marketingHandler := handlers.NewMarketingHandler(p.Facade)
	adminHandler := handlers.NewAdminHandler(p.Facade)
	seoHandler := handlers.NewSEOHandler(p.Facade, p.Facade, p.Config.SiteURL, p.Logger)

	engine.GET("/robots.txt", seoHandler.Robots)
	engine.GET("/sitemap.xml", seoHandler.Sitemap)
	engine.GET("/metrics", gin.WrapH(p.Metrics.Handler()))
	engine.GET("/checkout/success", checkoutHandler.SuccessPage)

	engine.POST(middleware.WebhookPath, limit(ratelimit.PolicyWebhook), stripeHandler.Webhook)

	api := engine.Group("/api")
	api.Use(limit(ratelimit.PolicyAPI))
	api.GET("/health", seoHandler.Health)

	auth := api.Group("/auth", limit(ratelimit.PolicyAuth))
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	api.GET("/products", catalogHandler.List)
	api.GET("/products/:product", catalogHandler.Get)
	api.GET("/products/:product/reviews", reviewHandler.List)
	api.GET("/search", limit(ratelimit.PolicySearch), catalogHandler.Search)

	api.POST("/checkout/session", middleware.OptionalAuth(p.Facade), checkoutHandler.CreateSession)
	api.GET("/checkout/success", checkoutHandler.Success)
	api.POST("/promo/validate", checkoutHandler.ValidatePromo)

	api.POST("/newsletter", limit(ratelimit.PolicyForm), marketingHandler.Subscribe)
	api.POST("/contact", limit(ratelimit.PolicyForm), marketingHandler.Contact)

	user := api.Group("", authenticated)
	user.GET("/orders", orderHandler.List)
	user.GET("/orders/:id", orderHandler.Get)
	user.GET("/orders/:id/invoice.pdf", orderHandler.Invoice)
	user.POST("/orders/:id/cancellation", orderHandler.RequestCancellation)
	user.POST("/orders/:id/returns", orderHandler.RequestReturn)
	user.POST("/reviews", reviewHandler.Upsert)
	user.DELETE("/reviews/:id", reviewHandler.Delete)
	user.GET("/profile", profileHandler.Me)
	user.PUT("/profile", profileHandler.Update)
	user.GET("/profile/customer-data", profileHandler.CustomerData)

	admin := api.Group("/admin", authenticated, middleware.AdminRequired())
	admin.POST("/products", adminHandler.CreateProduct)
	admin.PUT("/products/:id", adminHandler.UpdateProduct)
	admin.DELETE("/products/:id", adminHandler.DeleteProduct)
	admin.POST("/products/:id/sale", adminHandler.SetSale)
	admin.GET("/orders", adminHandler.Orders)
	admin.POST("/orders/:id/status", adminHandler.UpdateOrderStatus)
	admin.GET("/cancellations", adminHandler.Cancellations)
	admin.POST("/cancellations/:id", adminHandler.DecideCancellation)
	admin.GET("/returns", adminHandler.Returns)
	admin.POST("/returns/:id", adminHandler.UpdateReturn)
	admin.GET("/promo-codes", adminHandler.PromoCodes)
	admin.POST("/promo-codes", adminHandler.CreatePromoCode)
	admin.DELETE("/promo-codes/:id", adminHandler.DeletePromoCode)

	return engine
}
