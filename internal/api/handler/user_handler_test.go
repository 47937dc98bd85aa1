package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/teamhub/gatekeeper/internal/core/domain"
)

type stubUserService struct {
	users map[string]*domain.User
}

func (s *stubUserService) Register(_ context.Context, userKey, name, password, localeKey string, admin bool) (*domain.User, error) {
	if _, exists := s.users[userKey]; exists {
		return nil, domain.ErrUserExists
	}
	u := &domain.User{ID: "user_" + userKey, UserKey: userKey, Name: name, LocaleKey: localeKey, Admin: admin}
	s.users[userKey] = u
	return u, nil
}

func (s *stubUserService) Update(_ context.Context, userKey, name, _, localeKey string, admin bool) (*domain.User, error) {
	u, ok := s.users[userKey]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Name = name
	u.LocaleKey = localeKey
	u.Admin = admin
	return u, nil
}

func newUserTest() (*UserHandler, *stubUserService, *echo.Echo) {
	svc := &stubUserService{users: make(map[string]*domain.User)}
	e := echo.New()
	e.Validator = NewValidator()
	return NewUserHandler(svc), svc, e
}

func TestUserHandler_Create(t *testing.T) {
	h, svc, e := newUserTest()

	req := httptest.NewRequest(http.MethodPost, "/admin/users",
		strings.NewReader(`{"user_key":"alice@example.com","name":"Alice","password":"longenough"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Create(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if _, ok := svc.users["alice@example.com"]; !ok {
		t.Fatalf("user not created")
	}
}

func TestUserHandler_Create_ShortPassword(t *testing.T) {
	h, _, e := newUserTest()

	req := httptest.NewRequest(http.MethodPost, "/admin/users",
		strings.NewReader(`{"user_key":"alice@example.com","name":"Alice","password":"short"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	_ = h.Create(e.NewContext(req, rec))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUserHandler_Update_NotFound(t *testing.T) {
	h, _, e := newUserTest()

	req := httptest.NewRequest(http.MethodPut, "/admin/users/ghost@example.com",
		strings.NewReader(`{"name":"Ghost"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("key")
	c.SetParamValues("ghost@example.com")
	_ = h.Update(c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
