package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aurelle/storefront-backend/api/controllers"
	"github.com/aurelle/storefront-backend/api/middleware"
	"github.com/aurelle/storefront-backend/internal/bestsellers"
	cartsvc "github.com/aurelle/storefront-backend/internal/cart"
	checkoutsvc "github.com/aurelle/storefront-backend/internal/checkout"
	ordersvc "github.com/aurelle/storefront-backend/internal/orders"
	pkgauth "github.com/aurelle/storefront-backend/pkg/auth"
	"github.com/aurelle/storefront-backend/pkg/config"
	"github.com/aurelle/storefront-backend/pkg/db"
	"github.com/aurelle/storefront-backend/pkg/logger"
	pkgredis "github.com/aurelle/storefront-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *pkgredis.Client
	Checkout    checkoutsvc.Service
	Orders      ordersvc.Service
	Cart        cartsvc.Service
	BestSellers bestsellers.Service
	Registry    *prometheus.Registry
}

// NewRouter assembles the HTTP surface.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	// Avoid boxing a nil *Client into the interfaces below.
	var idemStore pkgredis.IdempotencyStore
	var cachePinger pkgredis.Pinger
	if deps.Redis != nil {
		idemStore = deps.Redis
		cachePinger = deps.Redis
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, cachePinger, logg))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	// Public merchandising reads.
	r.Route("/api/v1/bestsellers", func(r chi.Router) {
		r.Get("/", controllers.BestSellers(deps.BestSellers, logg))
		r.Get("/categories", controllers.BestSellersByCategory(deps.BestSellers, logg))
		r.Get("/weekly", controllers.WeeklyBestSellers(deps.BestSellers, logg))
	})

	// Authenticated storefront surface.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(deps.Cart, logg))
			r.Put("/", controllers.PutCartLine(deps.Cart, logg))
			r.Delete("/", controllers.ClearCart(deps.Cart, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/intent", controllers.CreatePaymentIntent(deps.Checkout, logg))
			r.Post("/verify", controllers.VerifyPayment(deps.Checkout, logg))
		})

		r.Post("/checkout", controllers.Checkout(deps.Checkout, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListMyOrders(deps.Orders, logg))
			r.Get("/{orderId}", controllers.GetMyOrder(deps.Orders, logg))
		})
	})

	// Admin surface.
	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(string(pkgauth.RoleAdmin), logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Post("/orders/{orderId}/delivery-status", controllers.AdminSetDeliveryStatus(deps.Orders, logg))
	})

	return r
}
