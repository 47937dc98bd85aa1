package ports

import (
	"context"

	"github.com/teamhub/gatekeeper/internal/core/domain"
)

// SessionManager owns the login-session lifecycle.
type SessionManager interface {
	// Authenticate verifies a password against the stored credential.
	// Unknown user and wrong password both return (false, nil); an error
	// is returned only when verification itself cannot run.
	Authenticate(ctx context.Context, userKey, password string) (bool, error)
	// EstablishSession snapshots the user, its roles and groups, resolves
	// a locale from acceptLanguage, and stores the composed record under
	// sid. The returned context carries the authenticated actor id.
	EstablishSession(ctx context.Context, sid, userKey, acceptLanguage string) (context.Context, error)
	// CurrentSession returns the stored record, or (nil, false, nil) when
	// no session exists for sid.
	CurrentSession(ctx context.Context, sid string) (*domain.Session, bool, error)
	// IsAuthenticated reports whether a session exists for sid. The
	// returned context carries the actor id when a session is present and
	// is stripped of any stale actor id when it is not.
	IsAuthenticated(ctx context.Context, sid string) (context.Context, bool, error)
	// ClearSession removes the session's stored identity, role snapshot
	// and composed record.
	ClearSession(ctx context.Context, sid string) error
}

// Authorizer answers whether a request may reach a path.
type Authorizer interface {
	IsAuthorized(ctx context.Context, sid, path string) (bool, error)
}

// UserService manages credential records, hashing plaintext passwords
// exactly once before they reach the CredentialWriter.
type UserService interface {
	Register(ctx context.Context, userKey, name, password, localeKey string, admin bool) (*domain.User, error)
	Update(ctx context.Context, userKey, name, password, localeKey string, admin bool) (*domain.User, error)
}
