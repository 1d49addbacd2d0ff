// Package identity verifies bearer credentials issued by the identity
// provider and derives profile fields from their claims.
package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthenticated is wrapped by every verification failure.
var ErrUnauthenticated = errors.New("unauthenticated")

// Claims are the identity provider's token claims.
type Claims struct {
	jwt.RegisteredClaims

	Email     string `json:"email,omitempty"`
	FullName  string `json:"name,omitempty"`
	FirstName string `json:"given_name,omitempty"`
	Username  string `json:"username,omitempty"`
	Picture   string `json:"picture,omitempty"`
}

// Identity is a verified caller.
type Identity struct {
	Subject string
	Claims  Claims
}

// Verifier checks a raw bearer credential.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// Profile holds the display-name candidates the provider exposes.
type Profile struct {
	FullName  string
	FirstName string
	Username  string
	Email     string
	Avatar    string
}

// Profile extracts profile fields from the claims.
func (c Claims) Profile() Profile {
	return Profile{
		FullName:  c.FullName,
		FirstName: c.FirstName,
		Username:  c.Username,
		Email:     c.Email,
		Avatar:    c.Picture,
	}
}

// DisplayName picks the first non-empty of full name, first name,
// username and the email's local part, falling back to "User".
func (p Profile) DisplayName() string {
	for _, candidate := range []string{p.FullName, p.FirstName, p.Username} {
		if s := strings.TrimSpace(candidate); s != "" {
			return s
		}
	}
	if local, _, ok := strings.Cut(p.Email, "@"); ok && local != "" {
		return local
	}
	return "User"
}
