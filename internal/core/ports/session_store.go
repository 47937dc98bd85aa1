package ports

import (
	"context"

	"github.com/teamhub/gatekeeper/internal/core/domain"
)

// SessionStore is per-client storage keyed by a session identity supplied by
// the transport layer. Three named slots are held per session: the login user
// id, the role-id snapshot, and the composed session record. Absent slots are
// reported as (zero, false, nil) rather than an error. Expiry is the store's
// concern; the core never extends or inspects lifetimes.
type SessionStore interface {
	SetUserID(ctx context.Context, sid, userID string) error
	UserID(ctx context.Context, sid string) (string, bool, error)

	SetRoleIDs(ctx context.Context, sid string, roleIDs []domain.RoleID) error
	RoleIDs(ctx context.Context, sid string) ([]domain.RoleID, bool, error)

	SetSession(ctx context.Context, sid string, session *domain.Session) error
	Session(ctx context.Context, sid string) (*domain.Session, bool, error)

	// Clear removes all three slots for the session identity. Clearing a
	// session that does not exist is not an error.
	Clear(ctx context.Context, sid string) error
}
