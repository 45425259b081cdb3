package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const sessionContextKey = "member_session"

// LoadSession attaches the request's session, when there is a valid one.
// It never rejects a request.
func LoadSession(resolver *SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if session, err := resolver.Resolve(ctx.Request()); err == nil {
				ctx.Set(sessionContextKey, session)
			}
			return next(ctx)
		}
	}
}

func SessionFromContext(ctx echo.Context) *Session {
	session, _ := ctx.Get(sessionContextKey).(*Session)
	return session
}

func WithSession(ctx echo.Context, session *Session) {
	ctx.Set(sessionContextKey, session)
}

// RequireCapability rejects requests whose session lacks capability.
func RequireCapability(capability string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			session := SessionFromContext(ctx)
			if session == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "login required")
			}
			if !session.Can(capability) {
				return echo.NewHTTPError(http.StatusForbidden, "permission denied")
			}
			return next(ctx)
		}
	}
}
