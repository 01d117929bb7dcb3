package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mx-space/metafields/internal/config"
	"github.com/mx-space/metafields/internal/database"
	"github.com/mx-space/metafields/internal/middleware"
	"github.com/mx-space/metafields/internal/modules/definitions"
	"github.com/mx-space/metafields/internal/modules/editor"
	"github.com/mx-space/metafields/internal/modules/groups"
	pkgcron "github.com/mx-space/metafields/internal/pkg/cron"
	pkgredis "github.com/mx-space/metafields/internal/pkg/redis"
	"github.com/mx-space/metafields/internal/pkg/shopify"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ShopifyAPI is the Admin API surface the service needs.
type ShopifyAPI interface {
	editor.API
	definitions.Lister
}

// Deps are the external handles the application is assembled from.
type Deps struct {
	DB      *gorm.DB
	Redis   *pkgredis.Client
	Shopify ShopifyAPI
}

// App holds all application dependencies.
type App struct {
	cfg         *config.AppConfig
	router      *gin.Engine
	db          *gorm.DB
	redis       *pkgredis.Client
	logger      *zap.Logger
	cancel      context.CancelFunc
	sched       *pkgcron.Scheduler
	registry    *groups.Registry
	definitions *definitions.Service
	editors     *editor.Manager
	startedAt   time.Time
}

// New initializes the application: config → DB → Redis → Admin API → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := applyRuntimeSettings(cfg); err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	rc, err := pkgredis.Connect(context.Background(), cfg.RedisURL)
	if err != nil {
		if !cfg.IsDev() {
			return nil, fmt.Errorf("redis: %w", err)
		}
		logger.Warn("redis unavailable, running without cache, rate limit and idempotence", zap.Error(err))
		rc = nil
	}

	client, err := shopify.New(shopify.Config{
		ShopDomain:  cfg.Shopify.ShopDomain,
		APIVersion:  cfg.Shopify.APIVersion,
		AccessToken: cfg.Shopify.AccessToken,
		Timeout:     cfg.Shopify.Timeout,
	}, shopify.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("shopify: %w", err)
	}

	return Assemble(logger, cfg, Deps{DB: db, Redis: rc, Shopify: client}), nil
}

// Assemble builds services and routes over already connected dependencies.
func Assemble(logger *zap.Logger, cfg *config.AppConfig, deps Deps) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(cors.New(corsConfig(cfg)))

	registry := groups.NewRegistry(groups.NewGormStore(deps.DB), groups.WithLogger(logger))

	defOpts := []definitions.ServiceOption{definitions.WithLogger(logger)}
	if deps.Redis != nil {
		defOpts = append(defOpts, definitions.WithCache(deps.Redis, cfg.Editor.DefinitionsTTL))
	}
	defSvc := definitions.NewService(deps.Shopify, cfg.Shopify.ShopDomain, defOpts...)

	editors := editor.NewManager(deps.Shopify, registry,
		editor.WithManagerLogger(logger),
		editor.WithManagerPageSize(cfg.Editor.PageSize))
	registry.Subscribe(editors)

	ctx, cancel := context.WithCancel(context.Background())
	sched := pkgcron.New(logger)
	registerCronJobs(sched, editors, defSvc, deps.Redis != nil, cfg, logger)
	sched.Start(ctx)

	a := &App{
		cfg:         cfg,
		router:      router,
		db:          deps.DB,
		redis:       deps.Redis,
		logger:      logger,
		cancel:      cancel,
		sched:       sched,
		registry:    registry,
		definitions: defSvc,
		editors:     editors,
		startedAt:   time.Now(),
	}
	a.registerRoutes()
	return a
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background jobs and closes connections.
func (a *App) Shutdown() {
	a.cancel()
	a.sched.Wait()
	if err := a.redis.Close(); err != nil {
		a.logger.Warn("redis close failed", zap.Error(err))
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
