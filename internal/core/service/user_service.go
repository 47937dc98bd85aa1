package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/teamhub/gatekeeper/internal/core/domain"
	"github.com/teamhub/gatekeeper/internal/core/ports"
)

// UserService manages credential records. Every write funnels through
// EncryptCredential so a plaintext password is stretched exactly once before
// it reaches the store.
type UserService struct {
	writer ports.CredentialWriter
	hasher *Hasher
	log    zerolog.Logger
}

func NewUserService(writer ports.CredentialWriter, hasher *Hasher, log zerolog.Logger) *UserService {
	return &UserService{writer: writer, hasher: hasher, log: log}
}

// Register creates a new user. The password is hashed under the currently
// configured iteration count and a fresh salt.
func (us *UserService) Register(ctx context.Context, userKey, name, password, localeKey string, admin bool) (*domain.User, error) {
	if userKey == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	cred := &domain.Credential{
		UserKey:   userKey,
		Name:      name,
		Password:  password,
		LocaleKey: localeKey,
		Admin:     admin,
	}
	if err := us.hasher.EncryptCredential(cred); err != nil {
		return nil, err
	}

	user, err := us.writer.CreateUser(ctx, cred)
	if err != nil {
		return nil, fmt.Errorf("create user %q: %w", userKey, err)
	}
	us.log.Info().Str("user_key", userKey).Msg("user registered")
	return user, nil
}

// Update modifies an existing user. An empty password leaves the stored
// credential untouched: the Hashed marker is set without deriving anything,
// so the store keeps the existing hash, salt and iteration count. A non-empty
// password is re-hashed with a fresh salt and the current iteration count.
func (us *UserService) Update(ctx context.Context, userKey, name, password, localeKey string, admin bool) (*domain.User, error) {
	if userKey == "" {
		return nil, domain.ErrInvalidCredentials
	}

	cred := &domain.Credential{
		UserKey:   userKey,
		Name:      name,
		Password:  password,
		LocaleKey: localeKey,
		Admin:     admin,
	}
	if password == "" {
		cred.Hashed = true
	} else if err := us.hasher.EncryptCredential(cred); err != nil {
		return nil, err
	}

	user, err := us.writer.UpdateUser(ctx, cred)
	if err != nil {
		return nil, fmt.Errorf("update user %q: %w", userKey, err)
	}
	us.log.Info().Str("user_key", userKey).Bool("password_changed", password != "").Msg("user updated")
	return user, nil
}
