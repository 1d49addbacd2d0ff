package identity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// VerifierOption configures a JWTVerifier.
type VerifierOption func(*verifierConfig)

type verifierConfig struct {
	issuer   string
	audience string
	leeway   time.Duration
	now      func() time.Time
}

// WithIssuer requires the iss claim to equal issuer. Empty disables the check.
func WithIssuer(issuer string) VerifierOption {
	return func(c *verifierConfig) { c.issuer = issuer }
}

// WithAudience requires aud to contain audience. Empty disables the check.
func WithAudience(audience string) VerifierOption {
	return func(c *verifierConfig) { c.audience = audience }
}

// WithLeeway tolerates clock skew on exp/nbf/iat.
func WithLeeway(d time.Duration) VerifierOption {
	return func(c *verifierConfig) { c.leeway = d }
}

// WithTimeFunc overrides the clock used for expiry checks.
func WithTimeFunc(now func() time.Time) VerifierOption {
	return func(c *verifierConfig) { c.now = now }
}

// JWTVerifier validates signed JWT bearer credentials.
type JWTVerifier struct {
	parser  *jwt.Parser
	keyFunc jwt.Keyfunc
}

var _ Verifier = (*JWTVerifier)(nil)

func newJWTVerifier(method string, key any, opts []VerifierOption) *JWTVerifier {
	cfg := verifierConfig{leeway: 30 * time.Second}
	for _, opt := range opts {
		opt(&cfg)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{method}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.leeway),
	}
	if cfg.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(cfg.issuer))
	}
	if cfg.audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(cfg.audience))
	}
	if cfg.now != nil {
		parserOpts = append(parserOpts, jwt.WithTimeFunc(cfg.now))
	}

	return &JWTVerifier{
		parser: jwt.NewParser(parserOpts...),
		keyFunc: func(*jwt.Token) (any, error) {
			return key, nil
		},
	}
}

// NewHMACVerifier accepts HS256 credentials signed with secret.
func NewHMACVerifier(secret []byte, opts ...VerifierOption) (*JWTVerifier, error) {
	if len(secret) == 0 {
		return nil, errors.New("hmac secret is empty")
	}
	return newJWTVerifier(jwt.SigningMethodHS256.Alg(), secret, opts), nil
}

// NewRSAVerifierFromFile accepts RS256 credentials verifiable with the PEM
// public key at path.
func NewRSAVerifierFromFile(path string, opts ...VerifierOption) (*JWTVerifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading public key %s: %w", path, err)
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("parsing public key %s: %w", path, err)
	}
	return newJWTVerifier(jwt.SigningMethodRS256.Alg(), key, opts), nil
}

// Verify parses and validates token. Failures wrap ErrUnauthenticated.
func (v *JWTVerifier) Verify(_ context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, fmt.Errorf("%w: missing bearer token", ErrUnauthenticated)
	}

	var claims Claims
	if _, err := v.parser.ParseWithClaims(token, &claims, v.keyFunc); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}

	return Identity{Subject: claims.Subject, Claims: claims}, nil
}

// Mint signs an HS256 credential for subject. It exists for local
// development and tests; production credentials come from the provider.
func Mint(secret []byte, subject string, p Profile, issuer string, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:     p.Email,
		FullName:  p.FullName,
		FirstName: p.FirstName,
		Username:  p.Username,
		Picture:   p.Avatar,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ParseUnverified reads claims without checking the signature. Clients use
// it to build their own profile from a credential they already trust.
func ParseUnverified(token string) (Claims, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Claims{}, fmt.Errorf("parsing token claims: %w", err)
	}
	return claims, nil
}
