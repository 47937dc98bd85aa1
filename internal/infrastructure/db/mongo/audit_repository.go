package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/teamhub/gatekeeper/internal/core/ports"
)

const auditCollection = "audit_events"

// AuditRepository persists security audit events.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type mongoAuditEvent struct {
	UserKey   string `bson:"user_key"`
	Kind      string `bson:"kind"`
	Path      string `bson:"path,omitempty"`
	Timestamp int64  `bson:"timestamp"`
}

func (r *AuditRepository) Record(ctx context.Context, event ports.AuditEvent) error {
	doc := mongoAuditEvent{
		UserKey:   event.UserKey,
		Kind:      event.Kind,
		Path:      event.Path,
		Timestamp: event.Timestamp.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
