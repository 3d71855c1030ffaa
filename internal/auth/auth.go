// Package auth validates the bearer credentials issued to admin principals.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

const RoleAdmin = "admin"

var (
	// ErrUnauthorized is returned when the credential is missing, malformed, expired or badly signed.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when a valid principal lacks the required role.
	ErrForbidden = errors.New("forbidden")
)

// Claims are the JWT claims carried by an admin credential.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller.
type Principal struct {
	Subject string
	Role    string
}

// Verifier checks HS256 tokens signed with a shared secret.
type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// Verify parses token and returns its principal.
func (v *Verifier) Verify(token string) (*Principal, error) {
	const op = "auth.Verifier.Verify"

	if token == "" {
		return nil, fmt.Errorf("%s: empty token: %w", op, ErrUnauthorized)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims

	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrUnauthorized, err)
	}

	return &Principal{
		Subject: claims.Subject,
		Role:    claims.Role,
	}, nil
}

// RequireRole returns ErrForbidden unless p holds role.
func (p *Principal) RequireRole(role string) error {
	if p == nil || p.Role != role {
		return ErrForbidden
	}
	return nil
}
