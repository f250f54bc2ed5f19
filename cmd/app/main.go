package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spot_difference/internal/catalog"
	"spot_difference/internal/config"
	"spot_difference/internal/db"
	httpServer "spot_difference/internal/http"
	"spot_difference/internal/http/handlers"
	"spot_difference/internal/http/middleware"
	"spot_difference/internal/leaderboard"
	"spot_difference/internal/logger"
	"spot_difference/internal/metrics"
	"spot_difference/internal/repository"
	"spot_difference/internal/service"
	"spot_difference/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// Version устанавливается при сборке
var Version = "dev"

func main() {
	cfg := config.Load()

	logger.Init(cfg.LogLevel, cfg.LogJSON)
	log := logger.Get()

	service.InitJWT(cfg.JWTSecret, cfg.JWTTTL)
	gin.SetMode(gin.ReleaseMode)

	// Хранилища: Postgres если задан DATABASE_URL, иначе память
	var (
		catalogs catalog.Store
		users    service.UserStore
		audits   service.AuditStore
		scores   leaderboard.Store
	)
	if cfg.DatabaseURL != "" {
		dbPool := db.Connect(cfg.DatabaseURL)
		defer dbPool.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := db.Migrate(ctx, dbPool); err != nil {
			cancel()
			logger.Fatal("migration failed", "error", err)
		}
		catalogRepo := repository.NewCatalogRepository(dbPool)
		if err := catalogRepo.Seed(ctx, catalog.Fixtures()); err != nil {
			cancel()
			logger.Fatal("catalog seed failed", "error", err)
		}
		cancel()

		catalogs = catalogRepo
		users = repository.NewUserRepository(dbPool)
		audits = repository.NewAuditRepository(dbPool)
		scores = repository.NewScoreRepository(dbPool)
		log.Info("using postgres storage")
	} else {
		catalogs = catalog.NewFixtureStore()
		users = repository.NewMemoryUserRepository()
		scores = leaderboard.NewMemoryStore()
		log.Warn("DATABASE_URL not set - using in-memory storage")
	}

	// Redis: кэш наборов, таблица лидеров без Postgres, лимит запросов
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		client, err := db.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Error("redis unavailable - continuing without it", "error", err)
		} else {
			rdb = client
			defer rdb.Close()

			catalogs = catalog.NewCachedStore(catalogs, rdb, cfg.CatalogCacheTTL)
			if cfg.DatabaseURL == "" {
				scores = leaderboard.NewRedisStore(rdb)
			}
			log.Info("redis connected", "addr", cfg.RedisAddr)
		}
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	audit := service.NewAuditService(audits)
	board := leaderboard.New(scores, cfg.LeaderboardSize)

	sessions := service.NewSessionService(catalogs, board, audit, m, service.SessionConfig{
		RoundSeconds: cfg.RoundSeconds,
		TickInterval: cfg.TickInterval,
		SessionTTL:   cfg.SessionTTL,
	})
	defer sessions.Close()

	hub := ws.NewHub(sessions)
	sessions.SetNotifier(hub)

	h := handlers.NewHandler(sessions, service.NewAuthService(users), audit)
	h.RevealDifferences = cfg.RevealDifferences
	h.Version = Version

	routerCfg := httpServer.RouterConfig{
		AdminUsername: cfg.AdminUsername,
		AllowedOrigin: cfg.AllowedOrigin,
		RateLimiter:   middleware.NewRateLimiter(rdb, cfg.RateLimitPerMinute),
		Metrics:       m,
	}
	r := httpServer.NewRouter(routerCfg)
	httpServer.RegisterRoutes(r, h, hub, routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		log.Info("server started", "port", cfg.AppPort, "version", Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
