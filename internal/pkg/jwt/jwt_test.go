package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "shpss_test_secret"
	testKey    = "api-key-123"
	testShop   = "demo.myshopify.com"
)

func TestSignAndParse(t *testing.T) {
	token, err := Sign(testSecret, testKey, testShop, "42", time.Minute)
	require.NoError(t, err)

	claims, err := NewVerifier(testSecret, testKey).Parse(token)
	require.NoError(t, err)
	assert.Equal(t, testShop, claims.Shop())
	assert.Equal(t, "42", claims.UserID())
}

func TestParseRejects(t *testing.T) {
	valid, err := Sign(testSecret, testKey, testShop, "42", time.Minute)
	require.NoError(t, err)
	expired, err := Sign(testSecret, testKey, testShop, "42", -time.Minute)
	require.NoError(t, err)

	mismatch := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, Claims{
		Dest: "https://" + testShop,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    "https://other.myshopify.com/admin",
			Audience:  jwtlib.ClaimStrings{testKey},
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	mismatchToken, err := mismatch.SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name     string
		verifier *Verifier
		token    string
	}{
		{"wrong secret", NewVerifier("other", testKey), valid},
		{"wrong audience", NewVerifier(testSecret, "another-app"), valid},
		{"expired", NewVerifier(testSecret, testKey), expired},
		{"issuer mismatch", NewVerifier(testSecret, testKey), mismatchToken},
		{"garbage", NewVerifier(testSecret, testKey), "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.verifier.Parse(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestVerifierEnabled(t *testing.T) {
	assert.False(t, NewVerifier("", testKey).Enabled())
	assert.False(t, (*Verifier)(nil).Enabled())
	assert.True(t, NewVerifier(testSecret, "").Enabled())
}
