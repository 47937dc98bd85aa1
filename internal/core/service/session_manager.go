package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/teamhub/gatekeeper/internal/core/domain"
	"github.com/teamhub/gatekeeper/internal/core/identity"
	"github.com/teamhub/gatekeeper/internal/core/ports"
)

// SessionManager verifies credentials and owns the login-session lifecycle.
// Session records are eager snapshots: user, roles and groups are resolved
// once at login and never re-read while the session lives.
type SessionManager struct {
	store    ports.CredentialStore
	sessions ports.SessionStore
	hasher   *Hasher
	locales  *LocaleResolver
	log      zerolog.Logger
}

func NewSessionManager(store ports.CredentialStore, sessions ports.SessionStore, hasher *Hasher, locales *LocaleResolver, log zerolog.Logger) *SessionManager {
	return &SessionManager{
		store:    store,
		sessions: sessions,
		hasher:   hasher,
		locales:  locales,
		log:      log,
	}
}

// Authenticate verifies password against the stored credential for userKey.
// An unknown user and a wrong password both return (false, nil) so the
// result never reveals whether the account exists. Verification runs with
// the iteration count the record was hashed with, not the currently
// configured one.
func (sm *SessionManager) Authenticate(ctx context.Context, userKey, password string) (bool, error) {
	user, err := sm.store.FindUserByKey(ctx, userKey)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("authenticate %q: %w", userKey, err)
	}
	ok, err := sm.hasher.VerifyUser(password, user)
	if err != nil {
		return false, fmt.Errorf("authenticate %q: %w", userKey, err)
	}
	return ok, nil
}

// EstablishSession composes the session snapshot for userKey and stores it
// under sid: the user record, its roles, the groups it belongs to, and the
// locale resolved from acceptLanguage. All three session slots are written.
// The returned context carries the acting user id for the remainder of the
// login request.
func (sm *SessionManager) EstablishSession(ctx context.Context, sid, userKey, acceptLanguage string) (context.Context, error) {
	user, err := sm.store.FindUserByKey(ctx, userKey)
	if err != nil {
		return ctx, fmt.Errorf("establish session for %q: %w", userKey, err)
	}
	roles, err := sm.store.ListRolesForUser(ctx, userKey)
	if err != nil {
		return ctx, fmt.Errorf("load roles for %q: %w", userKey, err)
	}
	groups, err := sm.store.ListGroupsForUser(ctx, userKey)
	if err != nil {
		return ctx, fmt.Errorf("load groups for %q: %w", userKey, err)
	}

	session := &domain.Session{
		UserID:   user.ID,
		UserKey:  user.UserKey,
		UserName: user.Name,
		Admin:    user.Admin,
		Roles:    roles,
		Groups:   groups,
		Locale:   sm.locales.Resolve(acceptLanguage),
		LoginAt:  time.Now().UTC(),
	}

	// The three slots either all land or none survive: a partial write
	// would leave a user-id slot live under a sid the client never
	// received, contradicting the other slots for the rest of the TTL.
	if err := sm.sessions.SetUserID(ctx, sid, user.ID); err != nil {
		return ctx, fmt.Errorf("store session user id: %w", err)
	}
	if err := sm.sessions.SetRoleIDs(ctx, sid, session.RoleIDs()); err != nil {
		sm.rollback(ctx, sid)
		return ctx, fmt.Errorf("store session roles: %w", err)
	}
	if err := sm.sessions.SetSession(ctx, sid, session); err != nil {
		sm.rollback(ctx, sid)
		return ctx, fmt.Errorf("store session record: %w", err)
	}

	sm.log.Info().
		Str("user_key", user.UserKey).
		Str("locale", session.Locale).
		Int("roles", len(roles)).
		Int("groups", len(groups)).
		Msg("session established")

	return identity.WithActor(ctx, user.ID), nil
}

// rollback clears whatever slots a failed EstablishSession managed to
// write. Best effort: the slots also expire with the store TTL.
func (sm *SessionManager) rollback(ctx context.Context, sid string) {
	if err := sm.sessions.Clear(ctx, sid); err != nil {
		sm.log.Warn().Err(err).Msg("failed to clear partially written session")
	}
}

// CurrentSession returns the stored record for sid, or (nil, false, nil)
// when none exists.
func (sm *SessionManager) CurrentSession(ctx context.Context, sid string) (*domain.Session, bool, error) {
	return sm.sessions.Session(ctx, sid)
}

// IsAuthenticated reports whether sid has a live session. On the way out it
// reconciles the request's actor id: set from the session when present,
// stripped when not, so a reused context can never carry a stale identity.
func (sm *SessionManager) IsAuthenticated(ctx context.Context, sid string) (context.Context, bool, error) {
	session, ok, err := sm.sessions.Session(ctx, sid)
	if err != nil {
		return ctx, false, err
	}
	if !ok {
		return identity.WithoutActor(ctx), false, nil
	}
	return identity.WithActor(ctx, session.UserID), true, nil
}

// ClearSession removes the stored user id, role snapshot and composed record
// for sid in one operation, so no slot can survive and contradict the others.
func (sm *SessionManager) ClearSession(ctx context.Context, sid string) error {
	if err := sm.sessions.Clear(ctx, sid); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
