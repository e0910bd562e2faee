package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kpitools/webapps/internal/core/domain"
)

const auditCollection = "audit_log"

// AuditRepository appends task-operation audit records to the audit_log
// collection. Callers treat a failed append as non-fatal.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

func (r *AuditRepository) Insert(ctx context.Context, entry *domain.AuditEntry) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
