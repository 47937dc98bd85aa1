package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/teamhub/gatekeeper/internal/core/domain"
)

func newTestUserService(t *testing.T) (*UserService, *stubCredentialStore, *Hasher) {
	t.Helper()
	hasher, err := NewHasher("sha256", testIterations)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	store := newStubCredentialStore()
	return NewUserService(store, hasher, zerolog.Nop()), store, hasher
}

func TestUserService_Register(t *testing.T) {
	us, store, hasher := newTestUserService(t)

	user, err := us.Register(context.Background(), "alice@example.com", "Alice", "pass123", "en", false)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("plaintext stored")
	}
	stored := store.users["alice@example.com"]
	if !hasher.Verify("pass123", stored.PasswordHash, stored.Salt, stored.Iterations) {
		t.Fatalf("stored hash does not verify against the password")
	}
	if stored.Iterations != testIterations {
		t.Fatalf("expected iterations %d, got %d", testIterations, stored.Iterations)
	}
}

func TestUserService_Register_Validation(t *testing.T) {
	us, _, _ := newTestUserService(t)
	if _, err := us.Register(context.Background(), "", "x", "pw", "en", false); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := us.Register(context.Background(), "a@b.c", "x", "", "en", false); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty password, got %v", err)
	}
}

func TestUserService_Update_KeepsCredentialWhenPasswordEmpty(t *testing.T) {
	us, store, _ := newTestUserService(t)
	if _, err := us.Register(context.Background(), "alice@example.com", "Alice", "pass123", "en", false); err != nil {
		t.Fatalf("Register: %v", err)
	}
	before := *store.users["alice@example.com"]

	if _, err := us.Update(context.Background(), "alice@example.com", "Alice Cooper", "", "de", true); err != nil {
		t.Fatalf("Update: %v", err)
	}

	after := store.users["alice@example.com"]
	if after.PasswordHash != before.PasswordHash || after.Salt != before.Salt || after.Iterations != before.Iterations {
		t.Fatalf("credential changed on a password-less update")
	}
	if after.Name != "Alice Cooper" || after.LocaleKey != "de" || !after.Admin {
		t.Fatalf("profile fields not updated: %+v", after)
	}
}

func TestUserService_Update_NewPasswordGetsFreshSalt(t *testing.T) {
	us, store, hasher := newTestUserService(t)
	if _, err := us.Register(context.Background(), "alice@example.com", "Alice", "pass123", "en", false); err != nil {
		t.Fatalf("Register: %v", err)
	}
	oldSalt := store.users["alice@example.com"].Salt

	if _, err := us.Update(context.Background(), "alice@example.com", "Alice", "newpass", "en", false); err != nil {
		t.Fatalf("Update: %v", err)
	}

	after := store.users["alice@example.com"]
	if after.Salt == oldSalt {
		t.Fatalf("salt not regenerated on password change")
	}
	if !hasher.Verify("newpass", after.PasswordHash, after.Salt, after.Iterations) {
		t.Fatalf("new password does not verify")
	}
	if hasher.Verify("pass123", after.PasswordHash, after.Salt, after.Iterations) {
		t.Fatalf("old password still verifies")
	}
}
