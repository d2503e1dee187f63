package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/boltapp/marketplace-api/internal/api/metrics"
	"github.com/boltapp/marketplace-api/internal/core/domain"
	"github.com/boltapp/marketplace-api/internal/core/ports"
	"github.com/boltapp/marketplace-api/internal/token"
)

// userContextKey is the single key under which the authenticated user is
// attached to the request context. Downstream stages read it only through
// CurrentUser, so the value is always a typed *domain.User.
const userContextKey = "auth.user"

// CurrentUser returns the user attached by Authenticate (or
// OptionalAuthenticate), if any.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(userContextKey).(*domain.User)
	return user, ok && user != nil
}

func setCurrentUser(c echo.Context, user *domain.User) {
	c.Set(userContextKey, user)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The second return is false when the header is absent or malformed.
func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Authenticate verifies the bearer token under the access audience, loads
// the current user record, and rejects stale or blocked accounts. All
// verification failures collapse to a generic 401; the specific sub-reason
// stays in the logs.
func Authenticate(codec *token.Codec, users ports.AuthService, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, reason, err := resolveUser(c, codec, users)
			if err != nil {
				return err
			}
			if user == nil {
				metrics.AuthRejectionsTotal.WithLabelValues(reason).Inc()
				log.Warn().
					Str("reason", reason).
					Str("path", c.Path()).
					Str("method", c.Request().Method).
					Msg("authentication rejected")
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			setCurrentUser(c, user)
			return next(c)
		}
	}
}

// OptionalAuthenticate attaches the user when a valid token is presented
// and silently degrades to anonymous on any failure.
func OptionalAuthenticate(codec *token.Codec, users ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if user, _, err := resolveUser(c, codec, users); err == nil && user != nil {
				setCurrentUser(c, user)
			}
			return next(c)
		}
	}
}

// resolveUser runs the shared token→user pipeline. A nil user with a nil
// error means rejection for the returned reason; a non-nil error is an
// internal failure (store outage), never an auth decision.
func resolveUser(c echo.Context, codec *token.Codec, users ports.AuthService) (*domain.User, string, error) {
	raw, ok := bearerToken(c)
	if !ok {
		return nil, "missing_token", nil
	}

	claims, err := codec.Verify(token.PurposeAccess, raw)
	if err != nil {
		return nil, "invalid_token", nil
	}

	user, err := users.GetUserByID(c.Request().Context(), claims.Subject)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "user_missing", nil
	}
	if user.Status.Blocked() {
		return nil, "account_blocked", nil
	}
	return user, "", nil
}
