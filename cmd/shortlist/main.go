package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MikeSquared-Agency/Shortlist/internal/api"
	"github.com/MikeSquared-Agency/Shortlist/internal/cache"
	"github.com/MikeSquared-Agency/Shortlist/internal/config"
	"github.com/MikeSquared-Agency/Shortlist/internal/engine"
	"github.com/MikeSquared-Agency/Shortlist/internal/financing"
	"github.com/MikeSquared-Agency/Shortlist/internal/fuel"
	"github.com/MikeSquared-Agency/Shortlist/internal/hermes"
	"github.com/MikeSquared-Agency/Shortlist/internal/inference"
	"github.com/MikeSquared-Agency/Shortlist/internal/pricefeed"
	"github.com/MikeSquared-Agency/Shortlist/internal/scoring"
	"github.com/MikeSquared-Agency/Shortlist/internal/semantic"
	"github.com/MikeSquared-Agency/Shortlist/internal/store"
	"github.com/MikeSquared-Agency/Shortlist/internal/tco"
	"github.com/MikeSquared-Agency/Shortlist/internal/valuation"
)

const fuelPriceKey = "shortlist:fuel:price"

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	bootLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLogger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Inventory
	inventory, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open inventory", "error", err)
		os.Exit(1)
	}
	defer inventory.Close()

	// Redis (optional)
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, caching in process only", "addr", cfg.Redis.Addr, "error", err)
			_ = rdb.Close()
			rdb = nil
		} else {
			defer rdb.Close()
			logger.Info("connected to redis", "addr", cfg.Redis.Addr)
		}
	}

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	// Fuel prices
	var priceStore fuel.PriceStore = fuel.NewMemoryPriceStore()
	if rdb != nil {
		priceStore = fuel.NewRedisPriceStore(rdb, fuelPriceKey)
	}
	var feed fuel.Feed
	if cfg.Fuel.FeedURL != "" {
		feed = pricefeed.NewHTTPClient(cfg.Fuel.FeedURL, cfg.Fuel.FeedToken, cfg.Fuel.Region)
	}
	fuelService := fuel.NewService(fuel.Options{
		Override:     cfg.Fuel.OverridePrice,
		DefaultPrice: cfg.Fuel.DefaultPrice,
		Freshness:    cfg.FuelCacheTTL(),
		FetchTimeout: cfg.FuelFetchTimeout(),
	}, priceStore, feed, logger)

	// Inference (optional)
	llm, err := inference.New(inference.Options{
		Provider:      cfg.Inference.Provider,
		BaseURL:       cfg.Inference.URL,
		APIKey:        cfg.Inference.APIKey,
		Model:         cfg.Inference.Model,
		MaxRetries:    cfg.Inference.MaxRetries,
		FixedResponse: cfg.Inference.FixedResponse,
	})
	if err != nil {
		logger.Error("failed to configure inference", "error", err)
		os.Exit(1)
	}
	semanticService := semantic.NewService(llm, cfg.InferenceTimeout(), logger)

	// Score cache
	layers := []cache.Layer{cache.NewMemoryLayer()}
	if rdb != nil {
		layers = append(layers, cache.NewRedisLayer(rdb, cfg.Cache.RedisPrefix, cfg.CacheTTL()))
	}
	scoreCache := cache.NewManager(logger, layers...)

	// Scoring
	metricsCalc := valuation.NewCalculator()
	tcoCalc := tco.NewCalculator(metricsCalc, fuelService)
	financingAgent := financing.NewAgent(logger)
	agents := scoring.DefaultAgents(scoring.Deps{Metrics: metricsCalc, TCO: tcoCalc, Financing: financingAgent})

	e := engine.New(engine.Deps{
		Store:     inventory,
		Optimizer: scoring.NewOptimizer(semanticService, logger),
		Scorer:    scoring.NewScorer(agents, scoreCache, logger),
		Financing: financingAgent,
		TCO:       tcoCalc,
		Valuation: metricsCalc,
		Cache:     scoreCache,
		Hermes:    hermesClient,
	}, engine.Options{
		Workers:     cfg.Recommendation.Workers,
		DefaultTopN: cfg.Recommendation.DefaultTopN,
		MaxTopN:     cfg.Recommendation.MaxTopN,
	}, logger)

	if feed != nil && cfg.FuelRefreshInterval() > 0 {
		refresher := fuel.NewRefresher(fuelService, cfg.FuelRefreshInterval(), func(info fuel.PriceInfo) {
			api.FuelPriceChanged(ctx, e, hermesClient, info, logger)
		}, logger)
		refresher.Start(ctx)
		defer refresher.Stop()
		logger.Info("fuel price refresher started", "interval", cfg.FuelRefreshInterval())
	}

	if err := e.SetupSubscriptions(ctx); err != nil {
		logger.Warn("failed to subscribe to inventory events", "error", err)
	}

	// API server
	router := api.NewRouter(api.Deps{
		Engine:    e,
		Fuel:      fuelService,
		Store:     inventory,
		Valuation: metricsCalc,
		Hermes:    hermesClient,
	}, api.Options{
		AdminToken:         cfg.Server.AdminToken,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
	}, logger)
	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           api.NewMetricsRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}

// openStore prefers Postgres, then a YAML inventory file, then an empty
// in-memory inventory.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch {
	case cfg.Database.URL != "":
		db, err := store.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to database")
		return db, nil
	case cfg.Inventory.File != "":
		s, err := store.LoadMemoryStore(cfg.Inventory.File)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded inventory file", "path", cfg.Inventory.File)
		return s, nil
	default:
		logger.Warn("no database or inventory file configured, inventory is empty")
		return store.NewMemoryStore(nil, nil), nil
	}
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
