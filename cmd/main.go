package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/aquatech-dashboard/config"
	"github.com/oksasatya/aquatech-dashboard/internal/application"
	"github.com/oksasatya/aquatech-dashboard/internal/container"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/repository"
	"github.com/oksasatya/aquatech-dashboard/internal/infrastructure/identity"
	pginfra "github.com/oksasatya/aquatech-dashboard/internal/infrastructure/postgres"
	"github.com/oksasatya/aquatech-dashboard/internal/infrastructure/search"
	"github.com/oksasatya/aquatech-dashboard/internal/infrastructure/telemetry"
	"github.com/oksasatya/aquatech-dashboard/internal/interface/middleware"
	"github.com/oksasatya/aquatech-dashboard/internal/router"
	"github.com/oksasatya/aquatech-dashboard/pkg/helpers"
	"github.com/oksasatya/aquatech-dashboard/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()
	container.SetConfig(cfg)
	container.SetLogger(logger)

	sinks := []repository.ActivityRepository{application.LogActivitySink{Logger: logger}}

	// Postgres is optional; without it profiles, reset tokens and activity stay in memory
	if cfg.DBEnabled {
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			logger.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			logger.Fatalf("migration failed: %v", err)
		}
		container.SetPGPool(pool)
		sinks = append(sinks, pginfra.NewActivityRepository(pool))
	}

	if cfg.RedisEnabled {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = rdb.Close() }()
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.WithError(err).Warn("redis unreachable; sessions kept in memory and rate limiting disabled")
		} else {
			container.SetRedis(rdb)
		}
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch client init failed; activity index disabled")
		} else {
			container.SetES(es)
			sinks = append(sinks, search.NewActivitySink(es, cfg.ESActivityIndex))
		}
	}

	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.ResetQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; reset notices are only logged")
		} else {
			defer pub.Close()
			container.SetRabbitPub(pub)
		}
	}

	container.SetIdentity(newIdentityBackend(ctx, cfg, logger))
	container.SetTelemetry(telemetry.NewSimulated())

	audit := application.NewActivityAudit(cfg.AuditBuffer, logger, sinks...)
	defer audit.Close()
	container.SetAudit(audit)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	reg := router.NewRegistry(r)
	if err := router.InitModules(reg); err != nil {
		logger.Fatalf("init modules: %v", err)
	}
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
	}
	logger.WithField("audit_dropped", audit.Dropped()).Info("server exited properly")
}

func newIdentityBackend(ctx context.Context, cfg *config.Config, logger *logrus.Logger) repository.IdentityProvider {
	if cfg.IdentityBackend != "firebase" {
		logger.Info("no identity backend configured; using local accounts")
		return identity.NullBackend{}
	}
	b, err := identity.NewFirebaseBackend(ctx, identity.FirebaseConfig{
		ProjectID:       cfg.FirebaseProjectID,
		APIKey:          cfg.FirebaseAPIKey,
		CredentialsFile: cfg.FirebaseCredentialsFile,
		Timeout:         cfg.IdentityTimeout,
		ActionURL:       cfg.FirebaseActionURL,
		CertsURL:        cfg.GoogleCertsURL,
	}, logger)
	if err != nil {
		logger.WithError(err).Warn("firebase init failed; using local accounts")
		return identity.NullBackend{}
	}
	return b
}
