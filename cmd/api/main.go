package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angelmondragon/fastfood-backend/api/routes"
	"github.com/angelmondragon/fastfood-backend/internal/auth"
	"github.com/angelmondragon/fastfood-backend/internal/cart"
	"github.com/angelmondragon/fastfood-backend/internal/catalog"
	"github.com/angelmondragon/fastfood-backend/internal/checkout"
	"github.com/angelmondragon/fastfood-backend/internal/notify"
	"github.com/angelmondragon/fastfood-backend/internal/orders"
	"github.com/angelmondragon/fastfood-backend/internal/otp"
	"github.com/angelmondragon/fastfood-backend/internal/users"
	"github.com/angelmondragon/fastfood-backend/pkg/auth/session"
	"github.com/angelmondragon/fastfood-backend/pkg/config"
	"github.com/angelmondragon/fastfood-backend/pkg/db"
	"github.com/angelmondragon/fastfood-backend/pkg/logger"
	"github.com/angelmondragon/fastfood-backend/pkg/metrics"
	"github.com/angelmondragon/fastfood-backend/pkg/migrate"
	"github.com/angelmondragon/fastfood-backend/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(context.Background(), logg, "database", err)

	err = migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient)
	requireResource(context.Background(), logg, "schema", err)

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(context.Background(), logg, "redis", err)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	requireResource(context.Background(), logg, "session manager", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	userRepo := users.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	requireResource(context.Background(), logg, "auth service", err)

	otpRegistry, err := buildOTPRegistry(cfg, redisClient)
	requireResource(context.Background(), logg, "otp registry", err)

	notifier, err := buildNotifier(cfg, logg)
	requireResource(context.Background(), logg, "notifier", err)

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:               dbClient,
		Users:            userRepo,
		OTP:              otpRegistry,
		Notifier:         notifier,
		PasswordConfig:   cfg.Password,
		AllowAdminSignup: cfg.AuthRateLimit.AllowAdminSignup,
		Metrics:          metrics.NewOTPMetrics(registry),
		Logger:           logg,
	})
	requireResource(context.Background(), logg, "register service", err)

	var googleService auth.GoogleService
	if cfg.GoogleOAuth.Enabled() {
		googleService, err = auth.NewGoogleService(auth.GoogleServiceParams{
			Config: cfg.GoogleOAuth,
			States: redisClient,
			DB:     dbClient,
			Users:  userRepo,
			Tokens: authService,
			Logger: logg,
		})
		requireResource(context.Background(), logg, "google sign-in", err)
	}

	var snapshotCache catalog.SnapshotCache
	if cfg.Catalog.CacheTTL > 0 {
		snapshotCache = catalog.NewRedisSnapshotCache(redisClient, cfg.Catalog.CacheTTL)
	}
	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), snapshotCache, logg)
	requireResource(context.Background(), logg, "catalog service", err)

	cartLines := cart.NewRepository(dbClient.DB())
	cartService, err := cart.NewService(cartLines, catalogService)
	requireResource(context.Background(), logg, "cart service", err)

	history := orders.NewRepository(dbClient.DB())
	checkoutService, err := checkout.NewService(dbClient, cartLines, history,
		checkout.WithMetrics(metrics.NewCheckoutMetrics(registry)),
	)
	requireResource(context.Background(), logg, "checkout service", err)

	ordersReader, err := orders.NewReader(history)
	requireResource(context.Background(), logg, "orders reader", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":       cfg.App.Env,
		"addr":      addr,
		"otp_store": cfg.OTP.Store,
		"db_driver": cfg.DB.Driver,
		"google":    googleService != nil,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			Sessions:       sessionManager,
			Auth:           authService,
			Register:       registerService,
			Google:         googleService,
			Catalog:        catalogService,
			Cart:           cartService,
			Checkout:       checkoutService,
			Orders:         ordersReader,
			HTTPMetrics:    metrics.NewHTTPMetrics(registry),
			MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	closeErr := multierr.Combine(
		server.Shutdown(shutdownCtx),
		redisClient.Close(),
		dbClient.Close(),
	)
	if closeErr != nil {
		logg.Error(ctx, "error during shutdown", closeErr)
		exitCode = 1
	}
	os.Exit(exitCode)
}

func buildOTPRegistry(cfg *config.Config, redisClient *redis.Client) (otp.Registry, error) {
	if cfg.OTP.UsesRedis() {
		return otp.NewRedisRegistry(redisClient, cfg.OTP.RetentionGrace, otp.WithTTL(cfg.OTP.TTL))
	}
	return otp.NewMemoryRegistry(otp.WithTTL(cfg.OTP.TTL)), nil
}

func buildNotifier(cfg *config.Config, logg *logger.Logger) (notify.Notifier, error) {
	if !cfg.Sendgrid.Enabled() {
		logg.Warn(context.Background(), "sendgrid not configured, verification codes will only be logged")
		return notify.NewLogNotifier(logg), nil
	}
	return notify.NewSendgridNotifier(cfg.Sendgrid, logg)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "failed to bootstrap "+resource, err)
	os.Exit(1)
}
