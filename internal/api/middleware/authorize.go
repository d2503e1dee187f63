package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/boltapp/marketplace-api/internal/api/metrics"
	"github.com/boltapp/marketplace-api/internal/core/domain"
)

// RequireRoles gates a route to the given roles. A missing user is a 401
// (Authenticate did not run or did not attach one); a present user with the
// wrong role is a 403. Consumers rely on that split.
func RequireRoles(log zerolog.Logger, allowed ...domain.Role) echo.MiddlewareFunc {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if _, ok := allowedSet[user.Role]; !ok {
				metrics.AuthRejectionsTotal.WithLabelValues("role").Inc()
				warnRejected(log, c, user.ID, "insufficient role")
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

// RequireOwnership restricts a route to the user whose id appears in the
// given path parameter. Admins bypass the check.
func RequireOwnership(log zerolog.Logger, idParam string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if user.Role == domain.RoleAdmin {
				return next(c)
			}
			resourceID := c.Param(idParam)
			if resourceID == "" || resourceID != user.ID {
				metrics.AuthRejectionsTotal.WithLabelValues("ownership").Inc()
				warnRejected(log, c, user.ID, "ownership mismatch")
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

// RequireVerifiedEmail rejects users that have not verified their email
// with a distinct machine-readable 403.
func RequireVerifiedEmail(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !user.EmailVerified {
				metrics.AuthRejectionsTotal.WithLabelValues("email_unverified").Inc()
				warnRejected(log, c, user.ID, "email not verified")
				return domain.ErrEmailNotVerified
			}
			return next(c)
		}
	}
}

func warnRejected(log zerolog.Logger, c echo.Context, userID, reason string) {
	log.Warn().
		Str("user_id", userID).
		Str("path", c.Path()).
		Str("method", c.Request().Method).
		Msg("authorization rejected: " + reason)
}
