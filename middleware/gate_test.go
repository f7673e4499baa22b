package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sketchmentor/core/domain"
)

type stubSessions struct {
	session domain.Session
}

func (s stubSessions) Current() domain.Session { return s.session }

func serveGated(t *testing.T, session domain.Session) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.GET("/dashboard", func(c echo.Context) error {
		return c.String(http.StatusOK, "gated content")
	}, RequireAuthenticated(stubSessions{session: session}, "/signin"))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuthenticated_AuthenticatedRendersContent(t *testing.T) {
	rec := serveGated(t, domain.Session{Identity: &domain.Identity{ID: "u-1"}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gated content", rec.Body.String())
}

func TestRequireAuthenticated_AnonymousRedirectsToSignIn(t *testing.T) {
	rec := serveGated(t, domain.Session{})

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/signin", rec.Header().Get(echo.HeaderLocation))
}

func TestRequireAuthenticated_UndeterminedRendersNothingAndNeverRedirects(t *testing.T) {
	// Loading wins even if a stale identity is present.
	rec := serveGated(t, domain.Session{Loading: true, Identity: &domain.Identity{ID: "u-1"}})

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderLocation))
	assert.Empty(t, rec.Body.String())
}
