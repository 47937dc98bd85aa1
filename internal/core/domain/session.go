package domain

import "time"

// Session is the composed snapshot of an authenticated identity, resolved
// eagerly at login and held unchanged for the session's lifetime. Role and
// group assignments changed in the store after login are not visible until
// the next login.
type Session struct {
	UserID   string    `json:"user_id"`
	UserKey  string    `json:"user_key"`
	UserName string    `json:"user_name"`
	Admin    bool      `json:"admin"`
	Roles    []Role    `json:"roles"`
	Groups   []Group   `json:"groups"`
	Locale   string    `json:"locale"`
	LoginAt  time.Time `json:"login_at"`
}

// RoleIDs returns the identifiers of the session's role snapshot.
func (s *Session) RoleIDs() []RoleID {
	ids := make([]RoleID, 0, len(s.Roles))
	for _, r := range s.Roles {
		ids = append(ids, r.ID)
	}
	return ids
}

// HasAnyRole reports whether the session holds at least one of the given
// role ids.
func (s *Session) HasAnyRole(ids []RoleID) bool {
	for _, want := range ids {
		for _, r := range s.Roles {
			if r.ID == want {
				return true
			}
		}
	}
	return false
}
