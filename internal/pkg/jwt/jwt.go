package jwt

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Leeway tolerates clock skew between the admin and this service.
const Leeway = 5 * time.Second

var ErrShopMismatch = errors.New("token issuer does not match its destination shop")

// Claims is the payload of an embedded-app session token.
type Claims struct {
	Dest      string `json:"dest"`
	SessionID string `json:"sid,omitempty"`
	jwtlib.RegisteredClaims
}

// Shop returns the shop domain the token was issued for.
func (c *Claims) Shop() string {
	return hostOf(c.Dest)
}

// UserID returns the admin user id carried in sub.
func (c *Claims) UserID() string {
	return c.Subject
}

// Verifier checks session tokens signed with the app's API secret.
type Verifier struct {
	secret []byte
	apiKey string
}

func NewVerifier(apiSecret, apiKey string) *Verifier {
	return &Verifier{secret: []byte(apiSecret), apiKey: strings.TrimSpace(apiKey)}
}

// Enabled reports whether a secret is configured.
func (v *Verifier) Enabled() bool {
	return v != nil && len(v.secret) > 0
}

// Parse validates a token string and returns the claims.
func (v *Verifier) Parse(tokenStr string) (*Claims, error) {
	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithLeeway(Leeway),
		jwtlib.WithExpirationRequired(),
	}
	if v.apiKey != "" {
		opts = append(opts, jwtlib.WithAudience(v.apiKey))
	}

	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	shop := claims.Shop()
	if shop == "" || hostOf(claims.Issuer) != shop {
		return nil, ErrShopMismatch
	}
	return claims, nil
}

// Sign creates a session token for shop and user. It mirrors what the admin
// issues and is used by tooling and tests.
func Sign(apiSecret, apiKey, shop, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Dest: "https://" + shop,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    "https://" + shop + "/admin",
			Subject:   userID,
			Audience:  jwtlib.ClaimStrings{apiKey},
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			NotBefore: jwtlib.NewNumericDate(now),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString([]byte(apiSecret))
}

func hostOf(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
