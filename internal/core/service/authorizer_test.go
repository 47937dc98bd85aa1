package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/teamhub/gatekeeper/internal/core/domain"
)

func newTestAuthorizer(t *testing.T) (*PathAuthorizer, *SessionManager, *stubCredentialStore, *Hasher) {
	t.Helper()
	sm, store, _, hasher := newTestManager(t)
	store.functions = []domain.Function{
		{Key: "/admin/", RoleIDs: []domain.RoleID{1}},
		{Key: "/protect/", RoleIDs: []domain.RoleID{2, 3}},
	}
	pa := NewPathAuthorizer(NewAuthzIndex(store, zerolog.Nop()), sm, zerolog.Nop())
	return pa, sm, store, hasher
}

func login(t *testing.T, sm *SessionManager, store *stubCredentialStore, hasher *Hasher, sid, userKey string, roles []domain.Role) {
	t.Helper()
	seedUser(t, store, hasher, userKey, "pw")
	store.roles[userKey] = roles
	if _, err := sm.EstablishSession(context.Background(), sid, userKey, ""); err != nil {
		t.Fatalf("EstablishSession: %v", err)
	}
}

func TestIsAuthorized_UnconfiguredPathAllowsAnyone(t *testing.T) {
	pa, _, _, _ := newTestAuthorizer(t)

	ok, err := pa.IsAuthorized(context.Background(), "no-session", "/public/info")
	if err != nil {
		t.Fatalf("IsAuthorized: %v", err)
	}
	if !ok {
		t.Fatalf("unconfigured path denied")
	}
}

func TestIsAuthorized_GatedPathRequiresSession(t *testing.T) {
	pa, _, _, _ := newTestAuthorizer(t)

	ok, err := pa.IsAuthorized(context.Background(), "no-session", "/admin/users")
	if err != nil {
		t.Fatalf("IsAuthorized: %v", err)
	}
	if ok {
		t.Fatalf("gated path allowed without a session")
	}
}

func TestIsAuthorized_RoleIntersection(t *testing.T) {
	pa, sm, store, hasher := newTestAuthorizer(t)
	login(t, sm, store, hasher, "sid-no", "bob@example.com", []domain.Role{{ID: 2}, {ID: 3}})
	login(t, sm, store, hasher, "sid-yes", "carol@example.com", []domain.Role{{ID: 1}, {ID: 3}})

	if ok, _ := pa.IsAuthorized(context.Background(), "sid-no", "/admin/users"); ok {
		t.Fatalf("roles {2,3} allowed through /admin/ requiring {1}")
	}
	if ok, _ := pa.IsAuthorized(context.Background(), "sid-yes", "/admin/users"); !ok {
		t.Fatalf("roles {1,3} denied on /admin/ requiring {1}")
	}
	if ok, _ := pa.IsAuthorized(context.Background(), "sid-no", "/protect/docs"); !ok {
		t.Fatalf("roles {2,3} denied on /protect/ requiring {2,3}")
	}
}

func TestIsAuthorized_UnconfiguredPathIgnoresSessionState(t *testing.T) {
	pa, sm, store, hasher := newTestAuthorizer(t)
	login(t, sm, store, hasher, "sid-a", "alice@example.com", nil)

	// With a (role-less) session and without one, an unconfigured path is
	// still open.
	if ok, _ := pa.IsAuthorized(context.Background(), "sid-a", "/public/info"); !ok {
		t.Fatalf("unconfigured path denied for a logged-in user")
	}
}
