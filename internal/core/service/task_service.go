package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kpitools/webapps/internal/core/domain"
	"github.com/kpitools/webapps/internal/core/ports"
	"github.com/kpitools/webapps/internal/metrics"
)

type taskService struct {
	tasks ports.TaskRepository
	audit ports.AuditRepository
	log   zerolog.Logger
}

// NewTaskService returns the ownership- and state-gated task CRUD controller.
func NewTaskService(tasks ports.TaskRepository, audit ports.AuditRepository, log zerolog.Logger) ports.TaskService {
	return &taskService{tasks: tasks, audit: audit, log: log}
}

// List returns the actor's tasks, newest first. Unrecognized filters fall
// back to "all" with a user-visible warning rather than an error.
func (s *taskService) List(ctx context.Context, actor ports.Actor, statusFilter string) (*ports.ListTasksResult, error) {
	applied := statusFilter
	warning := ""
	var status domain.TaskStatus

	switch {
	case statusFilter == "" || statusFilter == domain.FilterAll:
		applied = domain.FilterAll
	case domain.TaskStatus(statusFilter).IsValid():
		status = domain.TaskStatus(statusFilter)
	default:
		warning = fmt.Sprintf("Invalid status filter %q. Showing all tasks.", statusFilter)
		applied = domain.FilterAll
	}

	tasks, err := s.tasks.ListByOwner(ctx, actor.ID, status)
	if err != nil {
		s.record(ctx, actor, "list", "", domain.AuditStoreError, err.Error())
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	s.record(ctx, actor, "list", "", domain.AuditOK, "filter="+applied)
	return &ports.ListTasksResult{Tasks: tasks, Filter: applied, Warning: warning}, nil
}

// Create validates the name and persists a new in-progress task owned by the
// actor, with a server-assigned id and timestamp.
func (s *taskService) Create(ctx context.Context, actor ports.Actor, name string) (*domain.Task, error) {
	if err := domain.ValidateTaskName(name); err != nil {
		s.record(ctx, actor, "create", "", domain.AuditValidation, err.Error())
		return nil, err
	}

	task := &domain.Task{
		ID:        uuid.NewString(),
		Name:      name,
		Status:    domain.StatusInProgress,
		CreatedAt: time.Now().UTC(),
		OwnerID:   actor.ID,
	}
	if err := s.tasks.Insert(ctx, task); err != nil {
		s.record(ctx, actor, "create", task.ID, domain.AuditStoreError, err.Error())
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.record(ctx, actor, "create", task.ID, domain.AuditOK, "")
	return task, nil
}

// Update overwrites name and status. Ownership is checked before validation
// and enforced again inside the conditional write, so a concurrent owner
// change cannot slip a mutation through.
func (s *taskService) Update(ctx context.Context, actor ports.Actor, taskID, name, status string) (*domain.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, s.refuse(ctx, actor, "update", taskID, err)
	}
	if task.OwnerID != actor.ID {
		s.warnForbidden(actor, "update", taskID)
		s.record(ctx, actor, "update", taskID, domain.AuditForbidden, "")
		return nil, domain.ErrForbidden
	}

	var ve domain.ValidationError
	if err := domain.ValidateTaskName(name); err != nil {
		if nested, ok := domain.IsValidation(err); ok {
			ve.Fields = append(ve.Fields, nested.Fields...)
		}
	}
	newStatus := domain.TaskStatus(status)
	if !newStatus.IsValid() {
		ve.Add("status", "status must be one of: in progress, completed, failed")
	}
	if len(ve.Fields) > 0 {
		s.record(ctx, actor, "update", taskID, domain.AuditValidation, ve.Error())
		return nil, ve
	}

	matched, err := s.tasks.UpdateOwned(ctx, taskID, actor.ID, name, newStatus)
	if err != nil {
		s.record(ctx, actor, "update", taskID, domain.AuditStoreError, err.Error())
		return nil, fmt.Errorf("update task: %w", err)
	}
	if !matched {
		return nil, s.classifyMiss(ctx, actor, "update", taskID)
	}

	task.Name = name
	task.Status = newStatus
	s.record(ctx, actor, "update", taskID, domain.AuditOK, "")
	return task, nil
}

// Delete removes a task permanently. The completed-status guard is part of
// the store's conditional delete, so check and removal are atomic.
func (s *taskService) Delete(ctx context.Context, actor ports.Actor, taskID string) error {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return s.refuse(ctx, actor, "delete", taskID, err)
	}
	if task.OwnerID != actor.ID {
		s.warnForbidden(actor, "delete", taskID)
		s.record(ctx, actor, "delete", taskID, domain.AuditForbidden, "")
		return domain.ErrForbidden
	}
	if !task.Status.Deletable() {
		s.record(ctx, actor, "delete", taskID, domain.AuditInvalidState, string(task.Status))
		return domain.ErrInvalidState
	}

	matched, err := s.tasks.DeleteOwnedCompleted(ctx, taskID, actor.ID)
	if err != nil {
		s.record(ctx, actor, "delete", taskID, domain.AuditStoreError, err.Error())
		return fmt.Errorf("delete task: %w", err)
	}
	if !matched {
		return s.classifyMiss(ctx, actor, "delete", taskID)
	}

	s.record(ctx, actor, "delete", taskID, domain.AuditOK, "")
	return nil
}

// refuse converts a failed pre-read into the operation's error and audits it.
func (s *taskService) refuse(ctx context.Context, actor ports.Actor, op, taskID string, err error) error {
	if errors.Is(err, domain.ErrTaskNotFound) {
		s.record(ctx, actor, op, taskID, domain.AuditNotFound, "")
		return domain.ErrTaskNotFound
	}
	s.record(ctx, actor, op, taskID, domain.AuditStoreError, err.Error())
	return fmt.Errorf("%s task: %w", op, err)
}

// classifyMiss explains why a conditional write matched nothing: the guards
// passed on the pre-read, so the task changed underneath us. Re-read and map
// the current state to the proper refusal.
func (s *taskService) classifyMiss(ctx context.Context, actor ports.Actor, op, taskID string) error {
	task, err := s.tasks.FindByID(ctx, taskID)
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		s.record(ctx, actor, op, taskID, domain.AuditNotFound, "")
		return domain.ErrTaskNotFound
	case err != nil:
		s.record(ctx, actor, op, taskID, domain.AuditStoreError, err.Error())
		return fmt.Errorf("%s task: %w", op, err)
	case task.OwnerID != actor.ID:
		s.warnForbidden(actor, op, taskID)
		s.record(ctx, actor, op, taskID, domain.AuditForbidden, "")
		return domain.ErrForbidden
	case op == "delete" && !task.Status.Deletable():
		s.record(ctx, actor, op, taskID, domain.AuditInvalidState, string(task.Status))
		return domain.ErrInvalidState
	}
	s.record(ctx, actor, op, taskID, domain.AuditStoreError, "conditional write matched nothing")
	return fmt.Errorf("%s task: store refused the write", op)
}

func (s *taskService) warnForbidden(actor ports.Actor, op, taskID string) {
	s.log.Warn().
		Str("actor", actor.Username).
		Str("operation", op).
		Str("task_id", taskID).
		Msg("ownership violation attempt")
}

// record emits the structured audit entry for an operation outcome, to the
// log and to the audit collection. A failed collection write is logged and
// swallowed; it never fails the operation itself.
func (s *taskService) record(ctx context.Context, actor ports.Actor, op, taskID, outcome, detail string) {
	entry := &domain.AuditEntry{
		Actor:     actor.Username,
		Operation: op,
		TaskID:    taskID,
		Outcome:   outcome,
		Detail:    detail,
		At:        time.Now().UTC(),
	}

	s.log.Info().
		Str("actor", entry.Actor).
		Str("operation", entry.Operation).
		Str("task_id", entry.TaskID).
		Str("outcome", entry.Outcome).
		Msg("task operation")

	metrics.TaskOperationsTotal.WithLabelValues(op, outcome).Inc()

	if s.audit == nil {
		return
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("operation", op).Msg("audit write failed")
	}
}
