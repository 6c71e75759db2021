package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/pkrawiec/catalog-import/internal/cache"
	"github.com/pkrawiec/catalog-import/internal/config"
	"github.com/pkrawiec/catalog-import/internal/importer"
	"github.com/pkrawiec/catalog-import/internal/logging"
	"github.com/pkrawiec/catalog-import/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"tolerate_bad_rows", cfg.Feeds.TolerateBadRows,
		"cache_enabled", cfg.Cache.RedisURL != "",
	)

	// Parse and configure connection pool
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		dbName := strings.TrimPrefix(u.Path, "/")
		slog.Info("connected to database", "name", dbName)
	} else {
		slog.Info("connected to database")
	}

	// Wire the optional lookup cache. A nil interface keeps the service on
	// the uncached path; never pass a typed nil *cache.ViewCache here.
	var viewCache importer.ViewCache
	if cfg.Cache.RedisURL != "" {
		c, err := cache.New(ctx, cfg.Cache.RedisURL, cfg.Cache.TTL)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer c.Close()
		viewCache = c
		slog.Info("lookup cache enabled", "ttl", cfg.Cache.TTL)
	}

	store := importer.NewPGStore(pool)
	fetcher := importer.NewHTTPFetcher(cfg.Feeds.FetchTimeout)

	service := importer.NewService(store, fetcher, viewCache, importer.FeedConfig{
		ProductsURL:     cfg.Feeds.ProductsURL,
		InventoryURL:    cfg.Feeds.InventoryURL,
		PricesURL:       cfg.Feeds.PricesURL,
		TolerateBadRows: cfg.Feeds.TolerateBadRows,
	}, cfg.Import.Timeout)

	server := web.NewServer(service, cfg.Server)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
