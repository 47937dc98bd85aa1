package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/teamhub/gatekeeper/internal/core/ports"
)

// PathAuthorizer decides whether a request may reach a path, combining the
// authorization index with the session's role snapshot. It is deliberately
// independent of any role checks declared on individual routes; when both
// are configured, both must pass.
type PathAuthorizer struct {
	index    *AuthzIndex
	sessions ports.SessionManager
	log      zerolog.Logger
}

func NewPathAuthorizer(index *AuthzIndex, sessions ports.SessionManager, log zerolog.Logger) *PathAuthorizer {
	return &PathAuthorizer{index: index, sessions: sessions, log: log}
}

// IsAuthorized answers whether the client behind sid may reach path.
// Unconfigured paths default to allowed; only explicitly configured prefixes
// are gated. A gated path with no session is denied; with a session it is
// allowed iff the session holds at least one permitted role.
func (pa *PathAuthorizer) IsAuthorized(ctx context.Context, sid, path string) (bool, error) {
	if err := pa.index.EnsureLoaded(ctx); err != nil {
		return false, err
	}

	required, gated := pa.index.RolesFor(path)
	if !gated {
		return true, nil
	}

	session, ok, err := pa.sessions.CurrentSession(ctx, sid)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	allowed := session.HasAnyRole(required)
	if !allowed {
		pa.log.Debug().
			Str("user_key", session.UserKey).
			Str("path", path).
			Msg("path denied by role check")
	}
	return allowed, nil
}
