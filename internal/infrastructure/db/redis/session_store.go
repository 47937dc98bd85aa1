package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/teamhub/gatekeeper/internal/core/domain"
)

// Slot suffixes under session:<sid>:.
const (
	slotUserID  = "user"
	slotRoleIDs = "roles"
	slotRecord  = "record"
)

// SessionStore implements ports.SessionStore on Redis. Each session identity
// owns three keys, one per named slot, all sharing the configured TTL so the
// whole session expires as a unit.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore wraps the given Redis client. Sessions live for ttl from
// their last write; a ttl <= 0 means no expiry.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) SetUserID(ctx context.Context, sid, userID string) error {
	if err := s.client.Set(ctx, s.key(sid, slotUserID), userID, s.expiry()).Err(); err != nil {
		return fmt.Errorf("set session user id: %w", err)
	}
	return nil
}

func (s *SessionStore) UserID(ctx context.Context, sid string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.key(sid, slotUserID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get session user id: %w", err)
	}
	return val, true, nil
}

func (s *SessionStore) SetRoleIDs(ctx context.Context, sid string, roleIDs []domain.RoleID) error {
	payload, err := json.Marshal(roleIDs)
	if err != nil {
		return fmt.Errorf("encode session roles: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sid, slotRoleIDs), payload, s.expiry()).Err(); err != nil {
		return fmt.Errorf("set session roles: %w", err)
	}
	return nil
}

func (s *SessionStore) RoleIDs(ctx context.Context, sid string) ([]domain.RoleID, bool, error) {
	val, err := s.client.Get(ctx, s.key(sid, slotRoleIDs)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get session roles: %w", err)
	}
	var ids []domain.RoleID
	if err := json.Unmarshal(val, &ids); err != nil {
		return nil, false, fmt.Errorf("decode session roles: %w", err)
	}
	return ids, true, nil
}

func (s *SessionStore) SetSession(ctx context.Context, sid string, session *domain.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sid, slotRecord), payload, s.expiry()).Err(); err != nil {
		return fmt.Errorf("set session record: %w", err)
	}
	return nil
}

func (s *SessionStore) Session(ctx context.Context, sid string) (*domain.Session, bool, error) {
	val, err := s.client.Get(ctx, s.key(sid, slotRecord)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get session record: %w", err)
	}
	var session domain.Session
	if err := json.Unmarshal(val, &session); err != nil {
		return nil, false, fmt.Errorf("decode session record: %w", err)
	}
	return &session, true, nil
}

// Clear removes all three slots in one round trip.
func (s *SessionStore) Clear(ctx context.Context, sid string) error {
	keys := []string{
		s.key(sid, slotUserID),
		s.key(sid, slotRoleIDs),
		s.key(sid, slotRecord),
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *SessionStore) key(sid, slot string) string {
	return fmt.Sprintf("session:%s:%s", sid, slot)
}

func (s *SessionStore) expiry() time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	return s.ttl
}
