package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/teamhub/gatekeeper/internal/api/metrics"
	"github.com/teamhub/gatekeeper/internal/api/middleware"
	"github.com/teamhub/gatekeeper/internal/core/domain"
	"github.com/teamhub/gatekeeper/internal/core/ports"
	"github.com/teamhub/gatekeeper/internal/core/service"
)

type AuthHandler struct {
	sessions   ports.SessionManager
	throttle   *service.LoginThrottle
	audit      middleware.AuditSink
	cookieName string
	cookieTTL  time.Duration
}

func NewAuthHandler(sessions ports.SessionManager, throttle *service.LoginThrottle, audit middleware.AuditSink, cookieName string, cookieTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		sessions:   sessions,
		throttle:   throttle,
		audit:      audit,
		cookieName: cookieName,
		cookieTTL:  cookieTTL,
	}
}

type loginRequest struct {
	UserKey  string `json:"user_key" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	UserKey string         `json:"user_key"`
	Name    string         `json:"name"`
	Roles   []domain.Role  `json:"roles"`
	Groups  []domain.Group `json:"groups"`
	Locale  string         `json:"locale"`
}

// Login verifies credentials and establishes a server-held session.
//
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if !h.throttle.Allow(req.UserKey) {
		metrics.LoginAttemptsTotal.WithLabelValues("throttled").Inc()
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": domain.ErrTooManyAttempts.Error()})
	}

	start := time.Now()
	ok, err := h.sessions.Authenticate(c.Request().Context(), req.UserKey, req.Password)
	metrics.AuthenticationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, domain.ErrHashingUnavailable) {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "authentication unavailable"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
	if !ok {
		// Unknown user and wrong password are indistinguishable here.
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		h.recordAudit(req.UserKey, ports.AuditLoginFailed)
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}

	sid := uuid.NewString()
	ctx, err := h.sessions.EstablishSession(c.Request().Context(), sid, req.UserKey, c.Request().Header.Get("Accept-Language"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
	// The login request itself continues with the acting user id set.
	c.SetRequest(c.Request().WithContext(ctx))
	h.setCookie(c, sid, h.cookieTTL)

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	metrics.SessionsEstablishedTotal.Inc()
	h.recordAudit(req.UserKey, ports.AuditLogin)

	session, present, err := h.sessions.CurrentSession(ctx, sid)
	if err != nil || !present {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
	return c.JSON(http.StatusOK, toSessionResponse(session))
}

// Logout clears the session and expires the session cookie.
//
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	sid, _ := c.Get(middleware.ContextKeySID).(string)
	if sid != "" {
		if session, ok := middleware.SessionFromContext(c); ok {
			h.recordAudit(session.UserKey, ports.AuditLogout)
		}
		if err := h.sessions.ClearSession(c.Request().Context(), sid); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		metrics.SessionsClearedTotal.Inc()
	}
	h.setCookie(c, "", -time.Hour)
	return c.NoContent(http.StatusNoContent)
}

// Me returns the caller's session snapshot.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(session))
}

func (h *AuthHandler) setCookie(c echo.Context, sid string, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) recordAudit(userKey, kind string) {
	if h.audit == nil {
		return
	}
	h.audit.Enqueue(ports.AuditEvent{UserKey: userKey, Kind: kind, Timestamp: time.Now().UTC()})
}

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		UserKey: s.UserKey,
		Name:    s.UserName,
		Roles:   s.Roles,
		Groups:  s.Groups,
		Locale:  s.Locale,
	}
}
