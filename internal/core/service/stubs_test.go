package service

import (
	"context"
	"errors"

	"github.com/teamhub/gatekeeper/internal/core/domain"
)

// stubCredentialStore is an in-memory CredentialStore/CredentialWriter used
// across the service tests.
type stubCredentialStore struct {
	users     map[string]*domain.User
	roles     map[string][]domain.Role
	groups    map[string][]domain.Group
	functions []domain.Function
	nextID    int
}

func newStubCredentialStore() *stubCredentialStore {
	return &stubCredentialStore{
		users:  make(map[string]*domain.User),
		roles:  make(map[string][]domain.Role),
		groups: make(map[string][]domain.Group),
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (s *stubCredentialStore) FindUserByKey(_ context.Context, userKey string) (*domain.User, error) {
	u, ok := s.users[userKey]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (s *stubCredentialStore) ListRolesForUser(_ context.Context, userKey string) ([]domain.Role, error) {
	return append([]domain.Role(nil), s.roles[userKey]...), nil
}

func (s *stubCredentialStore) ListGroupsForUser(_ context.Context, userKey string) ([]domain.Group, error) {
	return append([]domain.Group(nil), s.groups[userKey]...), nil
}

func (s *stubCredentialStore) ListAllFunctions(_ context.Context) ([]domain.Function, error) {
	return append([]domain.Function(nil), s.functions...), nil
}

func (s *stubCredentialStore) CreateUser(_ context.Context, cred *domain.Credential) (*domain.User, error) {
	if _, exists := s.users[cred.UserKey]; exists {
		return nil, domain.ErrUserExists
	}
	s.nextID++
	u := &domain.User{
		ID:           "user_" + cred.UserKey,
		UserKey:      cred.UserKey,
		Name:         cred.Name,
		PasswordHash: cred.Password,
		Salt:         cred.Salt,
		Iterations:   cred.Iterations,
		Digest:       cred.Digest,
		LocaleKey:    cred.LocaleKey,
		Admin:        cred.Admin,
	}
	s.users[cred.UserKey] = u
	return cloneUser(u), nil
}

func (s *stubCredentialStore) UpdateUser(_ context.Context, cred *domain.Credential) (*domain.User, error) {
	u, ok := s.users[cred.UserKey]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Name = cred.Name
	u.LocaleKey = cred.LocaleKey
	u.Admin = cred.Admin
	if cred.Password != "" {
		u.PasswordHash = cred.Password
		u.Salt = cred.Salt
		u.Iterations = cred.Iterations
		u.Digest = cred.Digest
	}
	return cloneUser(u), nil
}

// stubSessionStore is an in-memory SessionStore keeping the three slots
// separately, mirroring the real store's layout. The fail flags make the
// corresponding write error.
type stubSessionStore struct {
	userIDs  map[string]string
	roleIDs  map[string][]domain.RoleID
	sessions map[string]*domain.Session

	failSetRoleIDs bool
	failSetSession bool
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{
		userIDs:  make(map[string]string),
		roleIDs:  make(map[string][]domain.RoleID),
		sessions: make(map[string]*domain.Session),
	}
}

func (s *stubSessionStore) SetUserID(_ context.Context, sid, userID string) error {
	s.userIDs[sid] = userID
	return nil
}

func (s *stubSessionStore) UserID(_ context.Context, sid string) (string, bool, error) {
	id, ok := s.userIDs[sid]
	return id, ok, nil
}

func (s *stubSessionStore) SetRoleIDs(_ context.Context, sid string, roleIDs []domain.RoleID) error {
	if s.failSetRoleIDs {
		return errors.New("set roles failed")
	}
	s.roleIDs[sid] = append([]domain.RoleID(nil), roleIDs...)
	return nil
}

func (s *stubSessionStore) RoleIDs(_ context.Context, sid string) ([]domain.RoleID, bool, error) {
	ids, ok := s.roleIDs[sid]
	return ids, ok, nil
}

func (s *stubSessionStore) SetSession(_ context.Context, sid string, session *domain.Session) error {
	if s.failSetSession {
		return errors.New("set session failed")
	}
	clone := *session
	s.sessions[sid] = &clone
	return nil
}

func (s *stubSessionStore) Session(_ context.Context, sid string) (*domain.Session, bool, error) {
	sess, ok := s.sessions[sid]
	if !ok {
		return nil, false, nil
	}
	clone := *sess
	return &clone, true, nil
}

func (s *stubSessionStore) Clear(_ context.Context, sid string) error {
	delete(s.userIDs, sid)
	delete(s.roleIDs, sid)
	delete(s.sessions, sid)
	return nil
}
