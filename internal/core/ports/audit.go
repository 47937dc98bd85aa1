package ports

import (
	"context"
	"time"
)

// Audit event kinds.
const (
	AuditLogin        = "login"
	AuditLoginFailed  = "login_failed"
	AuditLogout       = "logout"
	AuditAccessDenied = "access_denied"
)

// AuditEvent records a security-relevant action taken by (or against) a user
// key. Path is set for access decisions, empty otherwise.
type AuditEvent struct {
	UserKey   string
	Kind      string
	Path      string
	Timestamp time.Time
}

// AuditRecorder persists audit events.
type AuditRecorder interface {
	Record(ctx context.Context, event AuditEvent) error
}
