package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	specpkg "github.com/ledgerline/dashboard/api"
	"github.com/ledgerline/dashboard/internal/api"
	"github.com/ledgerline/dashboard/internal/auth"
	"github.com/ledgerline/dashboard/internal/config"
	"github.com/ledgerline/dashboard/internal/customer"
	"github.com/ledgerline/dashboard/internal/dashboard"
	"github.com/ledgerline/dashboard/internal/database"
	"github.com/ledgerline/dashboard/internal/invoice"
	"github.com/ledgerline/dashboard/internal/mutation"
	"github.com/ledgerline/dashboard/internal/upload"
	"github.com/ledgerline/dashboard/internal/viewcache"
)

const viewCachePrefix = "dashboard"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	db, err := database.New(startCtx, cfg.DatabaseURL, database.WithMaxConns(cfg.DBMaxConns))
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	applied, err := db.Migrate(startCtx)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	if len(applied) > 0 {
		slog.Info("applied migrations", "versions", applied)
	}

	sessionKey, generated, err := cfg.SessionKey()
	if err != nil {
		return err
	}
	if generated {
		slog.Warn("SESSION_SECRET not set; using a random key, sessions will not survive a restart")
	}

	store, err := selectImageStore(cfg)
	if err != nil {
		return err
	}

	views, closeViews := initViewCache(startCtx, cfg)
	defer closeViews()

	userRepo := auth.NewRepository(db.Pool())
	authService := auth.NewService(userRepo, cfg.BcryptCost)
	if _, err := authService.BootstrapAdmin(startCtx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("bootstrapping admin user: %w", err)
	}

	invoiceRepo := invoice.NewRepository(db.Pool())
	customerRepo := customer.NewRepository(db.Pool())

	deps := api.RouterDeps{
		DBPinger:      db,
		Version:       cfg.Version,
		OpenAPISpec:   specpkg.OpenAPISpec,
		Mutations:     mutation.NewService(invoiceRepo, customerRepo, upload.NewIngester(store), views),
		Invoices:      invoiceRepo,
		Customers:     customerRepo,
		Dashboard:     dashboard.NewRepository(db.Pool()),
		Views:         views,
		Authenticator: authService,
		Sessions:      auth.NewSessions(sessionKey, cfg.SessionTTL),
	}
	if cfg.ImageStore == "local" {
		deps.ImageDir = cfg.ImageDir
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting dashboard server", "port", cfg.Port, "version", cfg.Version, "imageStore", cfg.ImageStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// selectImageStore registers the configured stores and returns the one named
// by IMAGE_STORE.
func selectImageStore(cfg *config.Config) (upload.Store, error) {
	stores := upload.NewRegistry()
	stores.Register("local", upload.NewLocalStore(cfg.ImageDir))

	if cfg.MinIOEndpoint != "" {
		m, err := upload.NewMinIOStore(upload.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
			Region:    cfg.MinIORegion,
			PublicURL: cfg.MinIOPublicURL,
		})
		if err != nil {
			return nil, err
		}
		stores.Register("minio", m)
	}

	store, ok := stores.Get(cfg.ImageStore)
	if !ok {
		return nil, fmt.Errorf("image store %q is not configured (available: %v)", cfg.ImageStore, stores.Names())
	}
	return store, nil
}

// initViewCache connects to Redis when REDIS_URL is set. An unreachable Redis
// disables caching rather than failing startup.
func initViewCache(ctx context.Context, cfg *config.Config) (viewcache.Cache, func()) {
	if cfg.RedisURL == "" {
		return viewcache.Nop{}, func() {}
	}

	client, err := viewcache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		slog.Warn("view cache disabled; redis unavailable", "error", err)
		return viewcache.Nop{}, func() {}
	}

	slog.Info("view cache enabled", "ttl", cfg.ViewCacheTTL.String())
	return viewcache.NewRedisCache(client, viewCachePrefix, cfg.ViewCacheTTL), func() {
		if err := client.Close(); err != nil {
			slog.Warn("closing redis client", "error", err)
		}
	}
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
