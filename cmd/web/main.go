package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/middleware"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/server"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/source"
	"sales-dashboard/internal/source/sheets"
	"sales-dashboard/internal/source/xlsx"
)

const sourceLoadTimeout = 30 * time.Second

func newSource(ctx context.Context, cfg config.SourceConfig) (source.Reader, error) {
	switch cfg.Kind {
	case config.SourceKindXLSX:
		return xlsx.New(cfg.File, cfg.Sheet), nil
	case config.SourceKindSheets:
		return sheets.New(ctx, cfg.SpreadsheetID, cfg.Sheet, cfg.CredentialsFile)
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}

func newHandler(cfg *config.Config, dashboard *services.Dashboard, limiter *middleware.RateLimiter, logger *slog.Logger) http.Handler {
	srv := server.NewServer(dashboard, logger)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(limiter, logger, "/health"),
	)

	return middlewareChain(srv)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger, nil)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"source_kind", cfg.Source.Kind,
		"addr", cfg.Address(),
	)

	ctx, cancel := context.WithTimeout(context.Background(), sourceLoadTimeout)
	defer cancel()

	src, err := newSource(ctx, cfg.Source)
	if err != nil {
		logger.Error("failed to open sales source", "error", err)
		os.Exit(1)
	}

	loader := services.NewLoader(src,
		services.WithSkipInvalidRows(cfg.Source.SkipInvalidRows),
		services.WithLogger(logger),
	)
	dashboard := services.NewDashboard(loader, logger)

	start := time.Now()
	rs, err := dashboard.Warm(ctx)
	if err != nil {
		logger.Error("failed to load sales data", "source", src.Name(), "error", err)
		fmt.Fprintf(os.Stderr, "sales-dashboard: cannot load %s: %v\n", src.Name(), err)
		os.Exit(1)
	}
	logger.Info("sales data loaded successfully",
		"records", rs.Len(),
		"skipped", rs.Skipped,
		"duration", time.Since(start),
	)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go rateLimiter.Run(sweepCtx)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, dashboard, rateLimiter, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("stopping rate limiter sweeper")
		stopSweep()
		return nil
	})
	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("dropping cached sales data")
		dashboard.Invalidate()
		return nil
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
