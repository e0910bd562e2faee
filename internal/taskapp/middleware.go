package taskapp

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/kpitools/webapps/internal/core/domain"
	"github.com/kpitools/webapps/internal/core/ports"
)

const sessionCookie = "session_id"

const (
	ctxActorKey   = "actor"
	ctxSessionKey = "session_id"
)

// RequireIdentity resolves the session cookie into an authenticated actor and
// injects it into the request context. Requests without a live session are
// redirected to the login page, never served the protected content.
func RequireIdentity(sessions ports.SessionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(sessionCookie)
			if err != nil || cookie.Value == "" {
				return redirectToLogin(c)
			}

			identity, err := sessions.Get(c.Request().Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, domain.ErrSessionNotFound) {
					return err
				}
				return redirectToLogin(c)
			}

			c.Set(ctxActorKey, ports.Actor{ID: identity.UserID, Username: identity.Username})
			c.Set(ctxSessionKey, cookie.Value)
			return next(c)
		}
	}
}

func redirectToLogin(c echo.Context) error {
	next := c.Request().URL.Path
	target := "/login"
	if next != "" && next != "/" {
		target += "?next=" + url.QueryEscape(next)
	}
	return c.Redirect(http.StatusSeeOther, target)
}

// ctxActor extracts the actor injected by RequireIdentity and fast-fails when
// the middleware did not run.
func ctxActor(c echo.Context) (ports.Actor, error) {
	actor, ok := c.Get(ctxActorKey).(ports.Actor)
	if !ok || actor.ID == "" {
		return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authenticated identity")
	}
	return actor, nil
}

// ctxSessionID returns the session id injected by RequireIdentity, empty when
// the request carried none.
func ctxSessionID(c echo.Context) string {
	id, _ := c.Get(ctxSessionKey).(string)
	return id
}
