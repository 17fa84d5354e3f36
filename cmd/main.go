package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/sportsin/sportsin/config"
	"github.com/sportsin/sportsin/internal/application"
	"github.com/sportsin/sportsin/internal/domain/repository"
	"github.com/sportsin/sportsin/internal/infrastructure/backend"
	"github.com/sportsin/sportsin/internal/infrastructure/localstore"
	pginfra "github.com/sportsin/sportsin/internal/infrastructure/postgres"
	"github.com/sportsin/sportsin/internal/infrastructure/search"
	handlers "github.com/sportsin/sportsin/internal/interface/http"
	"github.com/sportsin/sportsin/internal/interface/middleware"
	"github.com/sportsin/sportsin/internal/router"
	"github.com/sportsin/sportsin/pkg/helpers"
	"github.com/sportsin/sportsin/pkg/validation"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	deps := router.Deps{
		Cookies:    helpers.NewCookieManager(cfg.CookieDomain, cfg.CookieSecure),
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}
	registry := &handlers.SessionRegistry{
		Logger:         logger,
		ResolveTimeout: cfg.SessionResolveTimeout,
	}
	deps.Sessions = registry

	var cleanup []func()
	defer func() {
		registry.Close()
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}()

	switch cfg.BackendMode {
	case "local":
		local := localstore.Open(cfg.LocalStatePath, logger)
		deps.Local = local
		deps.Profiles = local
		deps.Stats = local.Stats()
		registry.Profiles = local
		registry.Provisioner = application.NewProvisioner(local, local.Stats(), nil, logger)
		// One shared store: every browser session observes the same state.
		registry.NewCredentialStore = func() repository.CredentialStore { return local }
		logger.WithField("path", cfg.LocalStatePath).Info("local backend active")

	case "postgres":
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		cleanup = append(cleanup, pool.Close)

		if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("migration failed: %v", err)
		}

		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cleanup = append(cleanup, func() { _ = rdb.Close() })
		deps.RDB = rdb

		if cfg.GCSBucket != "" {
			gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
			if err != nil {
				log.Fatalf("failed to init GCS client: %v", err)
			}
			cleanup = append(cleanup, func() { _ = gcs.Close() })
			deps.GCS = gcs
			deps.GCSBucket = cfg.GCSBucket
		}

		if addrs := cfg.ESAddrs(); len(addrs) > 0 {
			es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
			if err != nil {
				logger.WithError(err).Warn("elasticsearch unavailable; discover search disabled")
			} else {
				deps.Index = search.NewProfileIndex(es, cfg.ESProfilesIndex, logger)
			}
		}

		var pub *helpers.RabbitPublisher
		if cfg.MailSendEnabled {
			p, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
			if err != nil {
				logger.WithError(err).Warn("rabbitmq unavailable; verification emails disabled")
			} else {
				pub = p
				cleanup = append(cleanup, pub.Close)
			}
		}

		jwtManager := helpers.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)
		storeDeps := backend.Deps{
			Pool:            pool,
			Redis:           rdb,
			JWT:             jwtManager,
			Publisher:       pub,
			Logger:          logger,
			VerifyEmailURL:  cfg.VerifyEmailURL,
			MailSendEnabled: cfg.MailSendEnabled && pub != nil,
		}

		profiles := pginfra.NewProfileStore(pool)
		stats := pginfra.NewStatsStore(pool)
		deps.Profiles = profiles
		deps.Stats = stats
		registry.Profiles = profiles
		registry.Indexer = deps.Index
		registry.Provisioner = application.NewProvisioner(profiles, stats, deps.Index, logger)
		registry.NewCredentialStore = func() repository.CredentialStore { return backend.New(storeDeps) }
		logger.Info("postgres backend active")

	default:
		log.Fatalf("unknown BACKEND_MODE %q (want postgres or local)", cfg.BackendMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RealIP())
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled || cfg.Env == "development" {
		r.Use(gin.Logger())
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg, deps)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

func runMigrations(dsn, migrationsDir string, logger *logrus.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
