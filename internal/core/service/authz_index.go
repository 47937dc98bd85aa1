package service

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/teamhub/gatekeeper/internal/core/domain"
	"github.com/teamhub/gatekeeper/internal/core/ports"
)

// AuthzIndex is the process-lifetime map of protected path prefix to the
// role ids allowed through it. It is built lazily on first use from the
// credential store's function list and never refreshed; a changed function
// table needs a process restart to take effect.
type AuthzIndex struct {
	store ports.CredentialStore
	log   zerolog.Logger

	mu        sync.RWMutex
	loaded    bool
	functions []domain.Function
}

func NewAuthzIndex(store ports.CredentialStore, log zerolog.Logger) *AuthzIndex {
	return &AuthzIndex{store: store, log: log}
}

// EnsureLoaded populates the index on first call. Concurrent first-time
// callers serialize on the write lock: exactly one performs the load and the
// rest observe the complete list once it releases. A failed load leaves the
// index unloaded so the next caller retries.
func (ai *AuthzIndex) EnsureLoaded(ctx context.Context) error {
	ai.mu.RLock()
	loaded := ai.loaded
	ai.mu.RUnlock()
	if loaded {
		return nil
	}

	ai.mu.Lock()
	defer ai.mu.Unlock()
	if ai.loaded {
		return nil
	}

	functions, err := ai.store.ListAllFunctions(ctx)
	if err != nil {
		return err
	}
	ai.functions = functions
	ai.loaded = true
	ai.log.Info().Int("functions", len(functions)).Msg("authorization index loaded")
	return nil
}

// RolesFor returns the permitted role ids for the first configured function
// whose key prefixes path, or (nil, false) when no function matches — the
// caller treats that as unrestricted. Overlapping prefixes resolve by
// traversal order, silently.
func (ai *AuthzIndex) RolesFor(path string) ([]domain.RoleID, bool) {
	ai.mu.RLock()
	defer ai.mu.RUnlock()
	for _, fn := range ai.functions {
		if strings.HasPrefix(path, fn.Key) {
			return fn.RoleIDs, true
		}
	}
	return nil, false
}
