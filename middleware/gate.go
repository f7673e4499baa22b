package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sketchmentor/core/domain"
)

// SessionSource is the session snapshot the gate consumes. It is
// re-read on every request, so the gate itself holds no state.
type SessionSource interface {
	Current() domain.Session
}

// RequireAuthenticated guards gated routes. While the initial session
// probe is still running it answers 204 (a neutral placeholder, never
// a redirect, so signed-in users don't bounce through the sign-in page
// on a cold load); anonymous requests redirect to signInURL.
func RequireAuthenticated(sessions SessionSource, signInURL string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch domain.Gate(sessions.Current()) {
			case domain.GateAuthenticated:
				return next(c)
			case domain.GateAnonymous:
				return c.Redirect(http.StatusFound, signInURL)
			default: // GateUndetermined
				return c.NoContent(http.StatusNoContent)
			}
		}
	}
}
