package domain

import "time"

// Audit outcomes. Every task operation records exactly one of these.
const (
	AuditOK           = "ok"
	AuditForbidden    = "forbidden"
	AuditInvalidState = "invalid_state"
	AuditValidation   = "validation_error"
	AuditNotFound     = "not_found"
	AuditStoreError   = "store_error"
)

// AuditEntry is the structured record emitted by every task operation,
// success or failure. Support relies on this trail for debugging, so writes
// must be attempted even when the operation itself failed.
type AuditEntry struct {
	Actor     string    `bson:"actor"`
	Operation string    `bson:"operation"`
	TaskID    string    `bson:"task_id,omitempty"`
	Outcome   string    `bson:"outcome"`
	Detail    string    `bson:"detail,omitempty"`
	At        time.Time `bson:"at"`
}
