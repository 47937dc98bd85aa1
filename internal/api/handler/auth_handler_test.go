package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/teamhub/gatekeeper/internal/api/middleware"
	"github.com/teamhub/gatekeeper/internal/core/domain"
	"github.com/teamhub/gatekeeper/internal/core/identity"
	"github.com/teamhub/gatekeeper/internal/core/ports"
	"github.com/teamhub/gatekeeper/internal/core/service"
)

// stubSessions implements ports.SessionManager over a fixed password table.
type stubSessions struct {
	passwords map[string]string
	sessions  map[string]*domain.Session
	cleared   []string
}

func newStubSessions() *stubSessions {
	return &stubSessions{
		passwords: make(map[string]string),
		sessions:  make(map[string]*domain.Session),
	}
}

func (s *stubSessions) Authenticate(_ context.Context, userKey, password string) (bool, error) {
	pw, ok := s.passwords[userKey]
	return ok && pw == password, nil
}

func (s *stubSessions) EstablishSession(ctx context.Context, sid, userKey, _ string) (context.Context, error) {
	s.sessions[sid] = &domain.Session{
		UserID:  "user_" + userKey,
		UserKey: userKey,
		Locale:  "en",
		LoginAt: time.Now().UTC(),
	}
	return identity.WithActor(ctx, "user_"+userKey), nil
}

func (s *stubSessions) CurrentSession(_ context.Context, sid string) (*domain.Session, bool, error) {
	sess, ok := s.sessions[sid]
	return sess, ok, nil
}

func (s *stubSessions) IsAuthenticated(ctx context.Context, sid string) (context.Context, bool, error) {
	_, ok := s.sessions[sid]
	return ctx, ok, nil
}

func (s *stubSessions) ClearSession(_ context.Context, sid string) error {
	s.cleared = append(s.cleared, sid)
	delete(s.sessions, sid)
	return nil
}

type stubAudit struct {
	mu     sync.Mutex
	events []ports.AuditEvent
}

func (a *stubAudit) Enqueue(event ports.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
}

func (a *stubAudit) kinds() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	kinds := make([]string, 0, len(a.events))
	for _, e := range a.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func newAuthTest(t *testing.T) (*AuthHandler, *stubSessions, *stubAudit, *echo.Echo) {
	t.Helper()
	sessions := newStubSessions()
	audit := &stubAudit{}
	h := NewAuthHandler(sessions, service.NewLoginThrottle(60, 10), audit, "sid", time.Hour)
	e := echo.New()
	e.Validator = NewValidator()
	return h, sessions, audit, e
}

func postLogin(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestLogin_Success(t *testing.T) {
	h, sessions, audit, e := newAuthTest(t)
	sessions.passwords["alice@example.com"] = "s3cret"

	c, rec := postLogin(e, `{"user_key":"alice@example.com","password":"s3cret"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	cookies := rec.Result().Cookies()
	var sid string
	for _, ck := range cookies {
		if ck.Name == "sid" {
			sid = ck.Value
		}
	}
	if sid == "" {
		t.Fatalf("session cookie not set")
	}
	if _, ok := sessions.sessions[sid]; !ok {
		t.Fatalf("no session stored under cookie sid")
	}
	if got := audit.kinds(); len(got) != 1 || got[0] != ports.AuditLogin {
		t.Fatalf("expected login audit event, got %v", got)
	}
}

func TestLogin_WrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	h, sessions, _, e := newAuthTest(t)
	sessions.passwords["alice@example.com"] = "s3cret"

	c1, rec1 := postLogin(e, `{"user_key":"alice@example.com","password":"wrong"}`)
	_ = h.Login(c1)
	c2, rec2 := postLogin(e, `{"user_key":"ghost@example.com","password":"wrong"}`)
	_ = h.Login(c2)

	if rec1.Code != http.StatusUnauthorized || rec2.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", rec1.Code, rec2.Code)
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("responses reveal account existence: %s vs %s", rec1.Body.String(), rec2.Body.String())
	}
}

func TestLogin_Validation(t *testing.T) {
	h, _, _, e := newAuthTest(t)

	c, rec := postLogin(e, `{"user_key":"not-an-email","password":"x"}`)
	_ = h.Login(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLogin_Throttled(t *testing.T) {
	sessions := newStubSessions()
	h := NewAuthHandler(sessions, service.NewLoginThrottle(1, 2), nil, "sid", time.Hour)
	e := echo.New()
	e.Validator = NewValidator()

	body := `{"user_key":"alice@example.com","password":"x"}`
	for i := 0; i < 2; i++ {
		c, _ := postLogin(e, body)
		_ = h.Login(c)
	}
	c, rec := postLogin(e, body)
	_ = h.Login(c)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestLogout_ClearsSessionAndCookie(t *testing.T) {
	h, sessions, audit, e := newAuthTest(t)
	sessions.sessions["sid-1"] = &domain.Session{UserID: "user_1", UserKey: "alice@example.com"}

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.ContextKeySID, "sid-1")
	c.Set(middleware.ContextKeySession, sessions.sessions["sid-1"])

	if err := h.Logout(c); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(sessions.cleared) != 1 || sessions.cleared[0] != "sid-1" {
		t.Fatalf("session not cleared: %v", sessions.cleared)
	}
	if got := audit.kinds(); len(got) != 1 || got[0] != ports.AuditLogout {
		t.Fatalf("expected logout audit event, got %v", got)
	}

	var expired bool
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "sid" && ck.MaxAge < 0 {
			expired = true
		}
	}
	if !expired {
		t.Fatalf("session cookie not expired")
	}
}

func TestMe(t *testing.T) {
	h, _, _, e := newAuthTest(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.Me(c); err == nil {
		t.Fatalf("expected 401 error without a session")
	}

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.Set(middleware.ContextKeySession, &domain.Session{UserKey: "alice@example.com", Locale: "en"})
	if err := h.Me(c); err != nil {
		t.Fatalf("Me: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "alice@example.com") {
		t.Fatalf("unexpected response: %d %s", rec.Code, rec.Body.String())
	}
}
