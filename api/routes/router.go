package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/fastfood-backend/api/controllers"
	"github.com/angelmondragon/fastfood-backend/api/middleware"
	"github.com/angelmondragon/fastfood-backend/internal/auth"
	"github.com/angelmondragon/fastfood-backend/internal/cart"
	"github.com/angelmondragon/fastfood-backend/internal/catalog"
	"github.com/angelmondragon/fastfood-backend/internal/checkout"
	"github.com/angelmondragon/fastfood-backend/internal/orders"
	"github.com/angelmondragon/fastfood-backend/pkg/auth/session"
	"github.com/angelmondragon/fastfood-backend/pkg/config"
	"github.com/angelmondragon/fastfood-backend/pkg/db"
	"github.com/angelmondragon/fastfood-backend/pkg/enums"
	"github.com/angelmondragon/fastfood-backend/pkg/logger"
	"github.com/angelmondragon/fastfood-backend/pkg/metrics"
	"github.com/angelmondragon/fastfood-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Dependencies groups everything the HTTP surface is built from. Google and
// Redis may be nil; the routes that need them degrade accordingly.
type Dependencies struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	Sessions       sessionManager
	Auth           auth.Service
	Register       auth.RegisterService
	Google         auth.GoogleService
	Catalog        catalog.Service
	Cart           cart.Service
	Checkout       checkout.Service
	Orders         orders.Reader
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.App.AllowedOrigins),
	)

	rateLimit := func(policy middleware.AuthRateLimitPolicy) func(http.Handler) http.Handler {
		if deps.Redis == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.AuthRateLimit(policy, deps.Redis, logg)
	}

	readiness := map[string]controllers.Pinger{}
	if deps.DB != nil {
		readiness["database"] = deps.DB
	}
	if deps.Redis != nil {
		readiness["redis"] = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readiness, logg))
	})
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(rateLimit(middleware.OTPRateLimitPolicy(cfg.AuthRateLimit))).Post("/otp", controllers.AuthRequestOTP(deps.Register, logg))
		r.With(rateLimit(middleware.RegisterRateLimitPolicy(cfg.AuthRateLimit))).Post("/register", controllers.AuthRegister(deps.Register, deps.Auth, logg))
		r.With(rateLimit(middleware.LoginRateLimitPolicy(cfg.AuthRateLimit))).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Sessions, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Sessions, cfg.JWT, logg))
		r.Get("/google/login", controllers.GoogleLogin(deps.Google, logg))
		r.Get("/google/callback", controllers.GoogleCallback(deps.Google, logg))
	})

	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/categories", controllers.CatalogCategories(deps.Catalog, logg))
		r.Get("/items", controllers.CatalogSearch(deps.Catalog, logg))
		r.Get("/items/{itemID}", controllers.CatalogItem(deps.Catalog, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.CartKey(logg))

		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Get("/", controllers.CartView(deps.Cart, logg))
			r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
			r.Delete("/items/{lineID}", controllers.CartRemoveLine(deps.Cart, logg))
		})
		r.Post("/api/v1/checkout", controllers.Checkout(deps.Checkout, cfg.App.GuestName, logg))
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.With(middleware.RequireAnyRole(logg, enums.RoleAdmin, enums.RoleCustomer)).Get("/history", controllers.OrdersHistory(deps.Orders, logg))
		r.Get("/mine", controllers.OrdersMine(deps.Orders, logg))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RequireAnyRole(logg, enums.RoleAdmin))
		r.Route("/catalog", func(r chi.Router) {
			r.Post("/items", controllers.AdminCreateItem(deps.Catalog, logg))
			r.Put("/items/{itemID}", controllers.AdminUpdateItem(deps.Catalog, logg))
			r.Delete("/items/{itemID}", controllers.AdminDeleteItem(deps.Catalog, logg))
			r.Post("/categories", controllers.AdminCreateCategory(deps.Catalog, logg))
			r.Delete("/categories/{categoryID}", controllers.AdminDeleteCategory(deps.Catalog, logg))
		})
	})

	return r
}
