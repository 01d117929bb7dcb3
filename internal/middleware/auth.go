package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/metafields/internal/pkg/jwt"
	"github.com/mx-space/metafields/internal/pkg/response"
	"go.uber.org/zap"
)

const (
	ContextKeyShop   = "shop"
	ContextKeyUserID = "user_id"
	ContextKeySID    = "session_id"
)

// Auth returns a middleware that enforces embedded-app session tokens. When
// the verifier has no secret every request is attributed to the configured
// shop, which is how local development runs.
func Auth(verifier *jwt.Verifier, shop string, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	shop = strings.ToLower(strings.TrimSpace(shop))
	return func(c *gin.Context) {
		if !verifier.Enabled() {
			c.Set(ContextKeyShop, shop)
			c.Next()
			return
		}

		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c)
			return
		}
		claims, err := verifier.Parse(token)
		if err != nil {
			log.Debug("session token rejected", zap.Error(err))
			response.Unauthorized(c)
			return
		}
		if shop != "" && claims.Shop() != shop {
			response.Forbidden(c)
			return
		}

		c.Set(ContextKeyShop, claims.Shop())
		c.Set(ContextKeyUserID, claims.UserID())
		if claims.SessionID != "" {
			c.Set(ContextKeySID, claims.SessionID)
		}
		c.Next()
	}
}

// CurrentShop extracts the authenticated shop domain from context.
func CurrentShop(c *gin.Context) string {
	return c.GetString(ContextKeyShop)
}

// CurrentUserID extracts the authenticated admin user ID from context.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ContextKeyUserID)
}

// IsAuthenticated returns true if the request carried a verified token.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentUserID(c) != ""
}

// SessionOwner scopes server-side state to the shop and admin user.
func SessionOwner(c *gin.Context) string {
	return CurrentShop(c) + "/" + CurrentUserID(c)
}

func extractToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if auth != "" {
		return NormalizeToken(auth)
	}
	return NormalizeToken(c.Query("id_token"))
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
