package echo

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/sketchmentor/core/domain"
	autherr "github.com/sketchmentor/core/errors"
	"github.com/sketchmentor/core/internal/presentation"
	"github.com/sketchmentor/core/middleware"
	"github.com/sketchmentor/core/services"
)

// SessionAPI exposes the session/activity core over HTTP for the
// dashboard front end.
type SessionAPI struct {
	sessions  *services.SessionStore
	recorder  *services.ActivityRecorder
	feed      *services.ActivityFeed
	signInURL string
}

// NewSessionAPI initializes the API with its collaborators.
func NewSessionAPI(
	sessions *services.SessionStore,
	recorder *services.ActivityRecorder,
	feed *services.ActivityFeed,
	signInURL string,
) *SessionAPI {
	return &SessionAPI{
		sessions:  sessions,
		recorder:  recorder,
		feed:      feed,
		signInURL: signInURL,
	}
}

// RegisterRoutes registers the session and activity routes. Activity
// routes sit behind the protected-route gate.
func (a *SessionAPI) RegisterRoutes(e *echo.Echo) {
	e.GET("/v1/session", a.SessionHandler)
	e.POST("/v1/session/signin", a.SignInHandler)
	e.POST("/v1/session/signout", a.SignOutHandler)

	gated := e.Group("/v1/activities", middleware.RequireAuthenticated(a.sessions, a.signInURL))
	gated.POST("", a.RecordHandler)
	gated.GET("/recent", a.RecentHandler)
}

type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// SessionHandler returns the current {identity, loading} snapshot.
func (a *SessionAPI) SessionHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, a.sessions.Current())
}

// SignInHandler runs the interactive sign-in. A cancelled flow is a
// normal outcome and answers 200 with the unchanged session.
func (a *SessionAPI) SignInHandler(c echo.Context) error {
	var req domain.SignInRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_request", Description: "malformed sign-in request"})
	}
	if req.Provider == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_request", Description: "provider is required"})
	}

	if err := a.sessions.SignInWithProvider(c.Request().Context(), req); err != nil {
		var authErr *autherr.AuthError
		if errors.As(err, &authErr) {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "auth_error", Description: authErr.Error()})
		}
		log.Ctx(c.Request().Context()).Error().Err(err).Msg("sign-in failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "server_error"})
	}

	return c.JSON(http.StatusOK, a.sessions.Current())
}

// SignOutHandler signs the current user out.
func (a *SessionAPI) SignOutHandler(c echo.Context) error {
	if err := a.sessions.SignOut(c.Request().Context()); err != nil {
		var authErr *autherr.AuthError
		if errors.As(err, &authErr) {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "auth_error", Description: authErr.Error()})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "server_error"})
	}
	return c.JSON(http.StatusOK, a.sessions.Current())
}

type recordRequest struct {
	ActivityType string         `json:"activity_type"`
	Details      map[string]any `json:"details"`
}

// RecordHandler records one activity event. The handler always answers
// 202 once the request parses; a storage failure never turns into a
// client error.
func (a *SessionAPI) RecordHandler(c echo.Context) error {
	var req recordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_request", Description: "malformed activity record"})
	}
	if req.ActivityType == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_request", Description: "activity_type is required"})
	}

	a.recorder.Record(c.Request().Context(), domain.ActivityType(req.ActivityType), req.Details)
	return c.NoContent(http.StatusAccepted)
}

type feedItem struct {
	*domain.ActivityEvent
	presentation.View
}

// RecentHandler returns the most recent events for the current
// identity, each with its derived presentation.
func (a *SessionAPI) RecentHandler(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_request", Description: "limit must be a non-negative integer"})
		}
		limit = parsed
	}

	events := a.feed.FetchRecent(c.Request().Context(), limit)
	items := make([]feedItem, 0, len(events))
	for _, ev := range events {
		items = append(items, feedItem{ActivityEvent: ev, View: presentation.Describe(ev)})
	}
	return c.JSON(http.StatusOK, map[string]any{"activities": items})
}
