// Package submanager wires the dashboard API server.
package submanager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/sibintb/submanager/internal/cache"
	"github.com/sibintb/submanager/internal/config"
	"github.com/sibintb/submanager/internal/http/handlers/health"
	"github.com/sibintb/submanager/internal/lib/jwt"
	"github.com/sibintb/submanager/internal/lib/sl"
	authservice "github.com/sibintb/submanager/internal/services/auth"
	subservice "github.com/sibintb/submanager/internal/services/subscription"
	"github.com/sibintb/submanager/internal/sheets"
	"github.com/sibintb/submanager/internal/sheets/google"
	"github.com/sibintb/submanager/internal/sheets/memory"
	"github.com/sibintb/submanager/internal/storage"
)

// App is the HTTP API process.
type App struct {
	server *http.Server
	logger *slog.Logger
	cfg    *config.Config
	db     *storage.Storage
	cache  *cache.Cache
}

// New opens the storage and the optional cache, seeds the administrator and
// builds the router.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.submanager.New"

	db, err := storage.New(ctx, cfg.StorageDriver, cfg.StorageDSN)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	checks := map[string]health.Pinger{"storage": db}

	var (
		redisCache *cache.Cache
		snapshots  subservice.Cache
	)
	if cfg.AddressRedis != "" {
		redisCache, err = cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		snapshots = redisCache
		checks["redis"] = redisCache
	} else {
		logger.Info("redis address is empty, snapshot cache disabled")
	}

	sheet, err := newSheetWriter(ctx, cfg.Sheets, logger)
	if err != nil {
		closeResources(db, redisCache, logger)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	subscriptionService := subservice.NewSubscriptionService(db, snapshots, sheet, logger,
		subservice.WithImportMaxSize(cfg.ImportMaxSize),
		subservice.WithCacheTTL(cfg.CacheTTL),
		subservice.WithMetrics(subservice.NewMetrics(reg)),
	)

	authService := authservice.NewAuthService(db, jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL), logger)
	if _, err := authService.EnsureAdmin(ctx, authservice.Admin{
		Name:     cfg.AdminName,
		Identity: cfg.AdminEmail,
		Password: cfg.AdminPassword,
	}); err != nil {
		closeResources(db, redisCache, logger)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Deps{
		Config:        cfg,
		Registry:      reg,
		Subscriptions: subscriptionService,
		Auth:          authService,
		Checks:        checks,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		cfg:    cfg,
		db:     db,
		cache:  redisCache,
	}, nil
}

// newSheetWriter returns the Sheets API client when a spreadsheet is
// configured and the in-memory writer otherwise.
func newSheetWriter(ctx context.Context, cfg config.Sheets, logger *slog.Logger) (sheets.SubscriptionWriter, error) {
	if cfg.SpreadsheetID == "" {
		logger.Info("spreadsheet id is empty, using in-memory sheet")
		return memory.New(), nil
	}
	return google.New(ctx, google.Config{
		SpreadsheetID:   cfg.SpreadsheetID,
		SheetName:       cfg.SheetName,
		CredentialsFile: cfg.GoogleCredentialsFile,
		CredentialsJSON: cfg.GoogleCredentialsJSON,
	})
}

func closeResources(db *storage.Storage, c *cache.Cache, logger *slog.Logger) {
	if c != nil {
		if err := c.Close(); err != nil {
			logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error("failed to close storage", sl.Err(err))
		}
	}
}

// Run serves HTTP until ctx is cancelled, then shuts the server down and
// releases the storage and the cache.
func (a *App) Run(ctx context.Context) error {
	defer closeResources(a.db, a.cache, a.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		timeoutCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		return a.server.Shutdown(timeoutCtx)
	})
	return g.Wait()
}
