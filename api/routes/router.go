package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chifaexpress/storefront-backend/api/controllers"
	"github.com/chifaexpress/storefront-backend/api/middleware"
	"github.com/chifaexpress/storefront-backend/internal/auth"
	cartsvc "github.com/chifaexpress/storefront-backend/internal/cart"
	"github.com/chifaexpress/storefront-backend/internal/catalog"
	"github.com/chifaexpress/storefront-backend/internal/checkout"
	"github.com/chifaexpress/storefront-backend/internal/orders"
	"github.com/chifaexpress/storefront-backend/internal/session"
	"github.com/chifaexpress/storefront-backend/internal/users"
	"github.com/chifaexpress/storefront-backend/pkg/config"
	"github.com/chifaexpress/storefront-backend/pkg/db"
	"github.com/chifaexpress/storefront-backend/pkg/enums"
	"github.com/chifaexpress/storefront-backend/pkg/logger"
	"github.com/chifaexpress/storefront-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	metricsRegistry *prometheus.Registry,
	gate *session.Gate,
	authService auth.Service,
	catalogService catalog.Service,
	cartService cartsvc.Service,
	ordersService orders.Service,
	usersRepo *users.Repository,
	submitter *checkout.Submitter,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if metricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/catalog", controllers.CatalogList(catalogService, logg))
		r.Get("/catalog/{productId}", controllers.CatalogDetail(catalogService, logg))
		r.Post("/checkout-intent", controllers.CheckoutIntentRecord(gate, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(authService, logg))
		r.Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.With(middleware.Auth(gate, logg)).Post("/logout", controllers.AuthLogout(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(gate, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartView(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Put("/items/{productId}", controllers.CartSetQuantity(cartService, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", controllers.CheckoutSubmit(submitter, logg))
			r.Post("/intent/claim", controllers.CheckoutIntentClaim(gate, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(ordersService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(ordersService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(gate, logg))

		r.Route("/products", func(r chi.Router) {
			r.Use(middleware.RequireCapability(enums.CapabilityManageProducts, logg))
			r.Get("/", controllers.AdminProductList(catalogService, logg))
			r.Post("/", controllers.AdminProductCreate(catalogService, logg))
			r.Get("/{productId}", controllers.AdminProductGet(catalogService, logg))
			r.Patch("/{productId}", controllers.AdminProductUpdate(catalogService, logg))
			r.Post("/{productId}/active", controllers.AdminProductSetActive(catalogService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.RequireCapability(enums.CapabilityManageOrders, logg))
			r.Get("/", controllers.AdminOrderList(ordersService, logg))
			r.Get("/{orderId}", controllers.AdminOrderDetail(ordersService, logg))
			r.Patch("/{orderId}/status", controllers.AdminOrderUpdateStatus(ordersService, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireCapability(enums.CapabilityManageUsers, logg))
			r.Get("/", controllers.AdminUserList(usersRepo, logg))
			r.Patch("/{userId}/role", controllers.AdminUserUpdateRole(usersRepo, logg))
			r.Patch("/{userId}/profile", controllers.AdminUserUpdateProfile(usersRepo, logg))
		})
	})

	return r
}
