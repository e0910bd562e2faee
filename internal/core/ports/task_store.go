package ports

import (
	"context"

	"github.com/kpitools/webapps/internal/core/domain"
)

// TaskRepository defines persistence operations for tasks.
//
// The mutating operations take the guard conditions (ownership, and for
// deletion the completed-status requirement) as part of the write itself, so
// the store evaluates check and mutation atomically. A false return with a
// nil error means no document satisfied the guard; the store is unchanged and
// the caller classifies the refusal.
type TaskRepository interface {
	Insert(ctx context.Context, task *domain.Task) error
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	// ListByOwner returns the owner's tasks ordered by creation time
	// descending. An empty status matches every status.
	ListByOwner(ctx context.Context, ownerID string, status domain.TaskStatus) ([]domain.Task, error)
	// UpdateOwned overwrites name and status in a single conditional write
	// scoped by {id, ownerID}.
	UpdateOwned(ctx context.Context, id, ownerID, name string, status domain.TaskStatus) (bool, error)
	// DeleteOwnedCompleted removes the task only when it is owned by ownerID
	// and its status is completed.
	DeleteOwnedCompleted(ctx context.Context, id, ownerID string) (bool, error)
}

// AuditRepository appends task-operation audit records. Writes are attempted
// for every operation outcome; a failed append must not fail the operation.
type AuditRepository interface {
	Insert(ctx context.Context, entry *domain.AuditEntry) error
}
