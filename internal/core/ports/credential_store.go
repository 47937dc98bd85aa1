package ports

import (
	"context"

	"github.com/teamhub/gatekeeper/internal/core/domain"
)

// CredentialStore is the read side of user/role/group/function persistence.
// Implementations return domain.ErrUserNotFound for unknown user keys.
type CredentialStore interface {
	// FindUserByKey fetches the stored credential record for a login key.
	FindUserByKey(ctx context.Context, userKey string) (*domain.User, error)
	// ListRolesForUser returns the roles assigned to the user, in no
	// particular order.
	ListRolesForUser(ctx context.Context, userKey string) ([]domain.Role, error)
	// ListGroupsForUser returns the groups the user belongs to, with the
	// membership status and edit capability resolved for that user.
	ListGroupsForUser(ctx context.Context, userKey string) ([]domain.Group, error)
	// ListAllFunctions returns every configured protected path prefix with
	// its permitted role ids.
	ListAllFunctions(ctx context.Context) ([]domain.Function, error)
}

// CredentialWriter is the write side. Callers hand over a Credential whose
// Password has already been stretched (Hashed set); implementations persist
// it verbatim.
type CredentialWriter interface {
	CreateUser(ctx context.Context, cred *domain.Credential) (*domain.User, error)
	UpdateUser(ctx context.Context, cred *domain.Credential) (*domain.User, error)
}
