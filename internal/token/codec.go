// Package token issues and verifies the signed, purpose-scoped tokens used
// across the marketplace: short-lived access tokens, longer-lived refresh
// tokens, and single-purpose email-verification and password-reset tokens.
//
// Every purpose carries its own audience tag and an explicit purpose claim,
// so a token minted for one purpose is always rejected when presented for
// another, even though all purposes share the same signing secret.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Purpose selects which audience and lifetime a token is issued under.
type Purpose string

const (
	PurposeAccess        Purpose = "access"
	PurposeRefresh       Purpose = "refresh"
	PurposeVerifyEmail   Purpose = "verify_email"
	PurposeResetPassword Purpose = "reset_password"
)

// Audience tags, one fixed string per purpose.
const (
	audAccess        = "marketplace:access"
	audRefresh       = "marketplace:refresh"
	audVerifyEmail   = "marketplace:verify-email"
	audResetPassword = "marketplace:reset-password"
)

var purposeAudience = map[Purpose]string{
	PurposeAccess:        audAccess,
	PurposeRefresh:       audRefresh,
	PurposeVerifyEmail:   audVerifyEmail,
	PurposeResetPassword: audResetPassword,
}

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrTokenMalformed = errors.New("token malformed")
)

// Claims is the payload embedded in every marketplace token.
// Email is set on access, verification, and reset tokens; Role and Name
// only on access tokens. Refresh tokens carry nothing beyond the subject
// and the purpose marker.
type Claims struct {
	Purpose string `json:"purpose"`
	Email   string `json:"email,omitempty"`
	Role    string `json:"role,omitempty"`
	Name    string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TTLConfig holds the lifetime for each token purpose.
type TTLConfig struct {
	Access        time.Duration
	Refresh       time.Duration
	VerifyEmail   time.Duration
	ResetPassword time.Duration
}

func (c TTLConfig) forPurpose(p Purpose) time.Duration {
	switch p {
	case PurposeAccess:
		return c.Access
	case PurposeRefresh:
		return c.Refresh
	case PurposeVerifyEmail:
		return c.VerifyEmail
	case PurposeResetPassword:
		return c.ResetPassword
	}
	return 0
}

// Codec signs and verifies tokens with a single shared HMAC secret.
type Codec struct {
	secret []byte
	issuer string
	ttl    TTLConfig
	now    func() time.Time
}

// New builds a Codec. An empty secret is a fatal configuration error and is
// rejected here so the process fails at startup, not lazily per request.
func New(secret, issuer string, ttl TTLConfig) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret is not configured")
	}
	return &Codec{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Extra carries the optional purpose-specific claims for Issue.
type Extra struct {
	Email string
	Role  string
	Name  string
}

// Issue mints a signed token for the given purpose and subject, expiring
// after the purpose's configured TTL.
func (c *Codec) Issue(purpose Purpose, subject string, extra Extra) (string, error) {
	aud, ok := purposeAudience[purpose]
	if !ok {
		return "", fmt.Errorf("token: unknown purpose %q", purpose)
	}

	now := c.now().UTC()
	claims := Claims{
		Purpose: string(purpose),
		Email:   extra.Email,
		Role:    extra.Role,
		Name:    extra.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{aud},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl.forPurpose(purpose))),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token under the given purpose. It fails
// with ErrTokenExpired when past (or exactly at) the expiry instant,
// ErrTokenMalformed when the string does not parse, and ErrTokenInvalid on
// a bad signature or any audience/purpose mismatch. The signature is always
// checked before any claim is trusted.
func (c *Codec) Verify(purpose Purpose, tokenString string) (*Claims, error) {
	aud, ok := purposeAudience[purpose]
	if !ok {
		return nil, fmt.Errorf("token: unknown purpose %q", purpose)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(aud),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
	)

	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrTokenInvalid
		}
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	// The audience check binds the token to the purpose on the wire; the
	// purpose claim is checked as well so both must agree.
	if claims.Purpose != string(purpose) {
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, ErrTokenInvalid
	}

	// No leeway is configured, so the exact expiry instant already counts
	// as expired.
	if exp := claims.ExpiresAt; exp != nil && !c.now().Before(exp.Time) {
		return nil, ErrTokenExpired
	}

	return claims, nil
}
