package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rental-manager/internal/breaker"
	"rental-manager/internal/config"
	"rental-manager/internal/database"
	"rental-manager/internal/handlers"
	"rental-manager/internal/hierarchy"
	"rental-manager/internal/identity"
	"rental-manager/internal/logging"
	"rental-manager/internal/metrics"
	"rental-manager/internal/ratelimit"
	"rental-manager/internal/scheduler"
	"rental-manager/internal/search"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	configPath := getEnv("CONFIG_PATH", "/app/config/config.yaml")
	appConfig, cfgErr := config.LoadConfig(configPath)
	if cfgErr != nil {
		appConfig = config.DefaultConfig()
	}

	logger := logging.New("rental-manager", appConfig.Logging.Level)
	log := logging.Component(logger, "main")
	if cfgErr != nil {
		log.WithError(cfgErr).Warnf("Failed to load config from %s, using defaults", configPath)
	} else {
		log.Infof("Loaded configuration from %s", configPath)
	}

	gw, closeGateway, err := openGateway(appConfig.Database, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to open database")
	}
	defer closeGateway()

	var remoteBreaker *breaker.CircuitBreaker
	if gw != nil {
		remoteBreaker = breaker.NewCircuitBreaker(appConfig.Sync.BreakerThreshold,
			appConfig.Sync.GetBreakerReset(), logging.Component(logger, "breaker"))
		gw = breaker.Wrap(gw, remoteBreaker)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.NewRecorder(reg)
	if err != nil {
		log.WithError(err).Fatal("Failed to register metrics")
	}

	opts := []hierarchy.Option{
		hierarchy.WithLogger(logging.Component(logger, "hierarchy")),
		hierarchy.WithMetrics(recorder),
		hierarchy.WithRemoteTimeout(appConfig.Sync.GetRemoteTimeout()),
	}
	if appConfig.Timezone != "" {
		loc, err := time.LoadLocation(appConfig.Timezone)
		if err != nil {
			log.WithError(err).Warnf("Unknown timezone %q, using local time", appConfig.Timezone)
		} else {
			opts = append(opts, hierarchy.WithClock(func() time.Time { return time.Now().In(loc) }))
		}
	}
	store := hierarchy.New(gw, opts...)

	ids := identity.HeaderProvider{Fallback: identity.Static(appConfig.Sync.OwnerID)}

	// Search is optional; handlers treat a nil searcher as disabled
	deps := handlers.Deps{
		Store:       store,
		Identity:    ids,
		Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Log:         logging.Component(logger, "http"),
		LogRequests: appConfig.Logging.LogRequests,
	}
	if remoteBreaker != nil {
		deps.Breaker = remoteBreaker
	}
	var indexer scheduler.Indexer
	if appConfig.Search.Enabled {
		msCfg := appConfig.Search.Meilisearch
		searchClient := search.NewSearchClient(
			getEnvOrConfig(msCfg.Host, "MEILISEARCH_HOST", "http://meilisearch:7700"),
			getEnvOrConfig(msCfg.APIKey, "MEILISEARCH_KEY", ""),
			msCfg.Index,
		)
		if err := searchClient.InitIndex(); err != nil {
			log.WithError(err).Warn("Failed to initialize search index")
		}
		deps.Searcher = searchClient
		deps.Indexer = searchClient
		indexer = searchClient
	}

	appScheduler := scheduler.NewScheduler(store, indexer, appConfig.Sync.OwnerID, appConfig.Sync.Schedule,
		appConfig.Sync.GetRemoteTimeout(), logging.Component(logger, "scheduler"))
	deps.Scheduler = appScheduler

	if appConfig.Sync.HydrateOnStart && gw != nil && appConfig.Sync.OwnerID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), appConfig.Sync.GetRemoteTimeout())
		if err := appScheduler.RunNow(ctx); err != nil {
			log.WithError(err).Warn("Initial hydration failed, starting with an empty store")
		}
		cancel()
	}

	if err := appScheduler.Start(); err != nil {
		log.WithError(err).Fatal("Failed to start scheduler")
	}
	defer appScheduler.Stop()

	// Initialize rate limiter
	deps.PushLimiter = ratelimit.NewRateLimiter(
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.RequestsPerDay,
		appConfig.RateLimit.Enabled,
	)
	log.Infof("Push rate limiter: %d req/min, %d req/hour, %d req/day (enabled: %v)",
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.RequestsPerDay,
		appConfig.RateLimit.Enabled,
	)

	if logger.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS configuration
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = appConfig.Server.AllowedOrigins
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", identity.HeaderUserID}
	r.Use(cors.New(corsCfg))

	handlers.RegisterRoutes(r, deps)

	port := getEnv("PORT", appConfig.Server.Port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Server starting on port %s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	wait := appConfig.Sync.GetShutdownWait()
	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown")
	}

	// Let mirrored writes finish before the database closes
	done := make(chan struct{})
	go func() {
		store.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		log.Warnf("Gave up waiting for %d in-flight remote calls", store.Status().InFlight)
	}
}

// openGateway connects the configured backend. Type "none" yields a local-only store.
func openGateway(cfg config.DatabaseConfig, log *logrus.Entry) (hierarchy.Gateway, func(), error) {
	dbType := cfg.Type
	if dbType == "" {
		dbType = getEnv("DB_TYPE", "postgres")
	}

	switch dbType {
	case "none":
		log.Warn("No database configured, running local-only")
		return nil, func() {}, nil

	case "mysql":
		log.Info("Using MySQL with GORM")
		mysqlCfg := cfg.MySQL
		gormDB, err := database.NewGormDB(
			getEnvOrConfig(mysqlCfg.Host, "DB_HOST", "mysql"),
			getEnvOrConfig(portString(mysqlCfg.Port), "DB_PORT", "3306"),
			getEnvOrConfig(mysqlCfg.User, "DB_USER", "rental_user"),
			getEnvOrConfig(mysqlCfg.Password, "DB_PASSWORD", "rental_pass"),
			getEnvOrConfig(mysqlCfg.Database, "DB_NAME", "rental_db"),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to MySQL: %w", err)
		}
		if err := gormDB.InitSchema(); err != nil {
			gormDB.Close()
			return nil, nil, fmt.Errorf("initialize schema: %w", err)
		}
		return gormDB, func() { gormDB.Close() }, nil

	case "postgres":
		log.Info("Using PostgreSQL")
		pgCfg := cfg.Postgres
		db, err := database.NewDB(
			getEnvOrConfig(pgCfg.Host, "DB_HOST", "db"),
			getEnvOrConfig(portString(pgCfg.Port), "DB_PORT", "5432"),
			getEnvOrConfig(pgCfg.User, "DB_USER", "rental_user"),
			getEnvOrConfig(pgCfg.Password, "DB_PASSWORD", "rental_pass"),
			getEnvOrConfig(pgCfg.Database, "DB_NAME", "rental_db"),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to PostgreSQL: %w", err)
		}
		if err := db.InitSchema(); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("initialize schema: %w", err)
		}
		return db, func() { db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown database type %q", dbType)
}

// portString treats 0 as unset
func portString(port int) string {
	if port > 0 {
		return fmt.Sprintf("%d", port)
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrConfig returns config value if set, otherwise falls back to environment variable, then default
func getEnvOrConfig(configValue, envKey, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	return getEnv(envKey, defaultValue)
}
