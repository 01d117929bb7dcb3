package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/metafields/internal/middleware"
	"github.com/mx-space/metafields/internal/modules/definitions"
	"github.com/mx-space/metafields/internal/modules/editor"
	"github.com/mx-space/metafields/internal/modules/groups"
	"github.com/mx-space/metafields/internal/pkg/jwt"
	"github.com/mx-space/metafields/internal/pkg/response"
)

const (
	apiPrefix  = "/api/v1"
	appName    = "metafields"
	appVersion = "1.0.0"
)

func (a *App) registerRoutes() {
	r := a.router

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	api := r.Group(apiPrefix, middleware.NoStore())
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/info", a.info)

	rdb := a.redis.Raw()
	verifier := jwt.NewVerifier(a.cfg.Shopify.APISecret, a.cfg.Shopify.APIKey)
	if !verifier.Enabled() {
		a.logger.Warn("shopify api_secret is empty, session tokens are not verified")
	}

	secured := api.Group("",
		middleware.Auth(verifier, a.cfg.Shopify.ShopDomain, a.logger),
		middleware.RateLimit(rdb, a.cfg.RateLimit.Max, a.cfg.RateLimit.Window),
	)
	idempotence := middleware.Idempotence(rdb)

	groups.NewHandler(a.registry).RegisterRoutes(secured, idempotence)
	definitions.NewHandler(a.definitions).RegisterRoutes(secured)
	editor.NewHandler(a.editors).RegisterRoutes(secured, idempotence)
}

func (a *App) info(c *gin.Context) {
	uptime := time.Since(a.startedAt)
	c.JSON(http.StatusOK, gin.H{
		"name":       appName,
		"version":    appVersion,
		"shop":       a.cfg.Shopify.ShopDomain,
		"apiVersion": a.cfg.Shopify.APIVersion,
		"uptime":     humanizeDuration(uptime),
		"sessions":   a.editors.Len(),
		"cache":      a.redis != nil,
		"jobs":       a.sched.List(),
	})
}
