package app

import (
	"net/url"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/mx-space/metafields/internal/config"
	"github.com/mx-space/metafields/internal/middleware"
)

func corsConfig(cfg *config.AppConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.IdempotenceHeader},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) == 0 || cfg.IsDev() {
		c.AllowOriginFunc = func(string) bool { return true }
		return c
	}
	c.AllowOriginFunc = originAllowed(cfg.AllowedOrigins)
	return c
}

// originAllowed matches an origin host against exact hosts, "*.suffix"
// wildcards and "host:*" port wildcards. The embedding admin lives on
// admin.shopify.com and each shop's own domain.
func originAllowed(patterns []string) func(origin string) bool {
	return func(origin string) bool {
		host := origin
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			host = u.Host
		}
		for _, pattern := range patterns {
			switch {
			case pattern == host:
				return true
			case strings.HasPrefix(pattern, "*.") && strings.HasSuffix(host, pattern[1:]):
				return true
			case strings.HasSuffix(pattern, ":*") && strings.HasPrefix(host, strings.TrimSuffix(pattern, "*")):
				return true
			}
		}
		return false
	}
}
