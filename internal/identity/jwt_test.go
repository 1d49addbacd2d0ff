package identity_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/teamboard/internal/identity"
)

var (
	secret = []byte("test-secret")
	now    = time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)
)

func fixedNow() time.Time { return now }

func newVerifier(t *testing.T, opts ...identity.VerifierOption) *identity.JWTVerifier {
	t.Helper()
	opts = append(opts, identity.WithTimeFunc(fixedNow))
	v, err := identity.NewHMACVerifier(secret, opts...)
	require.NoError(t, err)
	return v
}

func TestJWTVerifier_AcceptsValidToken(t *testing.T) {
	v := newVerifier(t, identity.WithIssuer("https://clerk.test"))

	token, err := identity.Mint(secret, "user_123", identity.Profile{
		FullName: "Ann Lee", Email: "ann@example.com",
	}, "https://clerk.test", now, time.Hour)
	require.NoError(t, err)

	id, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user_123", id.Subject)
	assert.Equal(t, "ann@example.com", id.Claims.Email)
	assert.Equal(t, "Ann Lee", id.Claims.Profile().DisplayName())
}

func TestJWTVerifier_Rejects(t *testing.T) {
	valid := func(sub, iss string, issuedAt time.Time, ttl time.Duration, key []byte) string {
		tok, err := identity.Mint(key, sub, identity.Profile{}, iss, issuedAt, ttl)
		require.NoError(t, err)
		return tok
	}

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u"}).SignedString(secret)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "u",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"empty":         "",
		"garbage":       "not-a-jwt",
		"wrong secret":  valid("u", "iss", now, time.Hour, []byte("other")),
		"expired":       valid("u", "iss", now.Add(-2*time.Hour), time.Hour, secret),
		"no subject":    valid("", "iss", now, time.Hour, secret),
		"wrong issuer":  valid("u", "evil", now, time.Hour, secret),
		"no expiry":     noExp,
		"alg none":      unsigned,
		"not yet valid": valid("u", "iss", now.Add(time.Hour), time.Hour, secret),
	}

	v := newVerifier(t, identity.WithIssuer("iss"))
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), token)
			assert.ErrorIs(t, err, identity.ErrUnauthenticated)
		})
	}
}

func TestNewHMACVerifier_RequiresSecret(t *testing.T) {
	_, err := identity.NewHMACVerifier(nil)
	assert.Error(t, err)
}

func TestRSAVerifier(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "pub.pem")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), 0o600))

	v, err := identity.NewRSAVerifierFromFile(path, identity.WithTimeFunc(fixedNow))
	require.NoError(t, err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, identity.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user_rsa",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}).SignedString(key)
	require.NoError(t, err)

	id, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user_rsa", id.Subject)

	hmacToken, err := identity.Mint(secret, "u", identity.Profile{}, "", now, time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), hmacToken)
	assert.ErrorIs(t, err, identity.ErrUnauthenticated)
}

func TestNewRSAVerifierFromFile_MissingFile(t *testing.T) {
	_, err := identity.NewRSAVerifierFromFile(filepath.Join(t.TempDir(), "nope.pem"))
	assert.Error(t, err)
}

func TestParseUnverified(t *testing.T) {
	token, err := identity.Mint([]byte("anything"), "user_9", identity.Profile{
		Username: "ann", Avatar: "https://img/ann.png",
	}, "", now, time.Hour)
	require.NoError(t, err)

	claims, err := identity.ParseUnverified(token)
	require.NoError(t, err)
	assert.Equal(t, "user_9", claims.Subject)
	assert.Equal(t, "https://img/ann.png", claims.Profile().Avatar)

	_, err = identity.ParseUnverified("nope")
	assert.Error(t, err)
}

func TestProfile_DisplayName(t *testing.T) {
	tests := []struct {
		name    string
		profile identity.Profile
		want    string
	}{
		{"full name wins", identity.Profile{FullName: "Ann Lee", FirstName: "Ann", Username: "al", Email: "a@x.io"}, "Ann Lee"},
		{"first name", identity.Profile{FirstName: "Ann", Username: "al", Email: "a@x.io"}, "Ann"},
		{"username", identity.Profile{Username: "al", Email: "a@x.io"}, "al"},
		{"email local part", identity.Profile{Email: "ann.lee@x.io"}, "ann.lee"},
		{"blank full name skipped", identity.Profile{FullName: "  ", Username: "al"}, "al"},
		{"fallback", identity.Profile{}, "User"},
		{"email without at", identity.Profile{Email: "weird"}, "User"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.profile.DisplayName())
		})
	}
}
