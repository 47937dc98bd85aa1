package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/teamhub/gatekeeper/internal/api/metrics"
	"github.com/teamhub/gatekeeper/internal/core/domain"
	"github.com/teamhub/gatekeeper/internal/core/identity"
	"github.com/teamhub/gatekeeper/internal/core/ports"
)

// Echo context keys set by the Session middleware.
const (
	ContextKeySID     = "sid"
	ContextKeySession = "session"
)

// Session resolves the client's session and reconciles the request's actor
// identity. The session identity comes from the transport cookie; when a
// live session exists the composed record is placed in the echo context and
// the request context carries the acting user id. The request proceeds
// either way — gating is the Authorize middleware's job.
func Session(sm ports.SessionManager, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := readSID(c, cookieName)
			if sid == "" {
				// No session cookie: nothing to look up. Strip any
				// stale actor and move on without touching the
				// session store, so cookie-less endpoints (health
				// probes, metrics) stay up through a store outage.
				c.SetRequest(c.Request().WithContext(identity.WithoutActor(c.Request().Context())))
				c.Set(ContextKeySID, "")
				return next(c)
			}

			ctx, ok, err := sm.IsAuthenticated(c.Request().Context(), sid)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "session lookup failed")
			}
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set(ContextKeySID, sid)

			if ok {
				session, present, err := sm.CurrentSession(ctx, sid)
				if err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "session lookup failed")
				}
				if present {
					c.Set(ContextKeySession, session)
				}
			}
			return next(c)
		}
	}
}

// AuditSink receives security audit events without blocking the request.
// Satisfied by the queue dispatcher.
type AuditSink interface {
	Enqueue(event ports.AuditEvent)
}

// Authorize gates the request on the path authorization index. Unconfigured
// paths pass through; configured paths require a session holding one of the
// permitted roles. Denials are audited when the requester is known; audit
// may be nil.
func Authorize(authorizer ports.Authorizer, audit AuditSink) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid, _ := c.Get(ContextKeySID).(string)
			path := c.Request().URL.Path

			ok, err := authorizer.IsAuthorized(c.Request().Context(), sid, path)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "authorization check failed")
			}
			if !ok {
				metrics.AuthzDecisionsTotal.WithLabelValues("denied").Inc()
				if session, found := SessionFromContext(c); found && audit != nil {
					audit.Enqueue(ports.AuditEvent{
						UserKey:   session.UserKey,
						Kind:      ports.AuditAccessDenied,
						Path:      path,
						Timestamp: time.Now().UTC(),
					})
				}
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			metrics.AuthzDecisionsTotal.WithLabelValues("allowed").Inc()
			return next(c)
		}
	}
}

// RequireRoles enforces role ids declared directly on a route. This check is
// independent of the path-based Authorize middleware; when a route carries
// both, both must pass.
func RequireRoles(roleIDs ...domain.RoleID) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, ok := SessionFromContext(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			}
			if !session.HasAnyRole(roleIDs) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// SessionFromContext returns the session record placed by the Session
// middleware, if any.
func SessionFromContext(c echo.Context) (*domain.Session, bool) {
	session, ok := c.Get(ContextKeySession).(*domain.Session)
	return session, ok && session != nil
}

func readSID(c echo.Context, cookieName string) string {
	cookie, err := c.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	return cookie.Value
}
