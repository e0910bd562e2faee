package ports

import (
	"context"

	"github.com/kpitools/webapps/internal/core/domain"
)

// Actor identifies the authenticated user performing a task operation. It is
// carried separately from domain.User so transports only hand the service
// what the audit trail needs.
type Actor struct {
	ID       string
	Username string
}

// ListTasksResult is returned by TaskService.List. Warning is a user-visible
// message set when the requested filter was not recognized and the sentinel
// "all" was applied instead.
type ListTasksResult struct {
	Tasks   []domain.Task
	Filter  string
	Warning string
}

// TaskService defines the ownership- and state-gated CRUD operations on
// tasks. Every operation requires an authenticated actor and emits an audit
// record regardless of outcome.
type TaskService interface {
	List(ctx context.Context, actor Actor, statusFilter string) (*ListTasksResult, error)
	Create(ctx context.Context, actor Actor, name string) (*domain.Task, error)
	Update(ctx context.Context, actor Actor, taskID, name, status string) (*domain.Task, error)
	Delete(ctx context.Context, actor Actor, taskID string) error
}
