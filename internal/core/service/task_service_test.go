package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kpitools/webapps/internal/core/domain"
	"github.com/kpitools/webapps/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubTaskRepo struct {
	byID      map[string]*domain.Task
	insertErr error // if set, Insert returns this error
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{byID: make(map[string]*domain.Task)}
}

func (r *stubTaskRepo) Insert(_ context.Context, t *domain.Task) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	clone := *t
	r.byID[t.ID] = &clone
	return nil
}

func (r *stubTaskRepo) FindByID(_ context.Context, id string) (*domain.Task, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *stubTaskRepo) ListByOwner(_ context.Context, ownerID string, status domain.TaskStatus) ([]domain.Task, error) {
	var matched []domain.Task
	for _, t := range r.byID {
		if t.OwnerID != ownerID {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		matched = append(matched, *t)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

// UpdateOwned mirrors the real repo: the guard is part of the write.
func (r *stubTaskRepo) UpdateOwned(_ context.Context, id, ownerID, name string, status domain.TaskStatus) (bool, error) {
	t, ok := r.byID[id]
	if !ok || t.OwnerID != ownerID {
		return false, nil
	}
	t.Name = name
	t.Status = status
	return true, nil
}

func (r *stubTaskRepo) DeleteOwnedCompleted(_ context.Context, id, ownerID string) (bool, error) {
	t, ok := r.byID[id]
	if !ok || t.OwnerID != ownerID || t.Status != domain.StatusCompleted {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

type stubAuditRepo struct {
	entries []domain.AuditEntry
}

func (r *stubAuditRepo) Insert(_ context.Context, e *domain.AuditEntry) error {
	r.entries = append(r.entries, *e)
	return nil
}

func (r *stubAuditRepo) last(t *testing.T) domain.AuditEntry {
	t.Helper()
	if len(r.entries) == 0 {
		t.Fatalf("no audit entries recorded")
	}
	return r.entries[len(r.entries)-1]
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var (
	alice = ports.Actor{ID: "u1", Username: "alice"}
	bob   = ports.Actor{ID: "u2", Username: "bob"}
)

func newTestTaskService() (ports.TaskService, *stubTaskRepo, *stubAuditRepo) {
	repo := newStubTaskRepo()
	audit := &stubAuditRepo{}
	return NewTaskService(repo, audit, zerolog.Nop()), repo, audit
}

func seedTask(r *stubTaskRepo, id, owner string, status domain.TaskStatus, createdAt time.Time) {
	r.byID[id] = &domain.Task{
		ID: id, Name: "Seeded task", Status: status, CreatedAt: createdAt, OwnerID: owner,
	}
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestTaskService_Create_Success(t *testing.T) {
	svc, repo, audit := newTestTaskService()

	task, err := svc.Create(context.Background(), alice, "Write report")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if task.ID == "" {
		t.Fatalf("expected server-assigned id")
	}
	if task.Status != domain.StatusInProgress {
		t.Fatalf("expected status %q, got %q", domain.StatusInProgress, task.Status)
	}
	if task.OwnerID != alice.ID {
		t.Fatalf("expected owner %q, got %q", alice.ID, task.OwnerID)
	}
	if task.CreatedAt.IsZero() {
		t.Fatalf("expected server-assigned timestamp")
	}
	if _, ok := repo.byID[task.ID]; !ok {
		t.Fatalf("task not persisted")
	}
	if e := audit.last(t); e.Operation != "create" || e.Outcome != domain.AuditOK {
		t.Fatalf("unexpected audit entry: %+v", e)
	}
}

func TestTaskService_Create_RejectsInvalidNames(t *testing.T) {
	svc, repo, _ := newTestTaskService()

	for _, name := range []string{"", "Task1", "Buy-milk", "do it!"} {
		_, err := svc.Create(context.Background(), alice, name)
		if _, ok := domain.IsValidation(err); !ok {
			t.Fatalf("name %q: expected ValidationError, got %v", name, err)
		}
	}
	if len(repo.byID) != 0 {
		t.Fatalf("validation failure must not mutate the store")
	}
}

func TestTaskService_Create_AcceptsLettersAndSpaces(t *testing.T) {
	svc, _, _ := newTestTaskService()

	if _, err := svc.Create(context.Background(), alice, "Buy milk"); err != nil {
		t.Fatalf("expected %q to be accepted, got %v", "Buy milk", err)
	}
}

func TestTaskService_Create_PersistenceFailure(t *testing.T) {
	svc, repo, audit := newTestTaskService()
	repo.insertErr = errors.New("store down")

	if _, err := svc.Create(context.Background(), alice, "Write report"); err == nil {
		t.Fatalf("expected error")
	}
	if len(repo.byID) != 0 {
		t.Fatalf("failed create must leave store unchanged")
	}
	if e := audit.last(t); e.Outcome != domain.AuditStoreError {
		t.Fatalf("expected store_error audit, got %+v", e)
	}
}

// ---------------------------------------------------------------------------
// List
// ---------------------------------------------------------------------------

func TestTaskService_List_RoundTrip(t *testing.T) {
	svc, _, _ := newTestTaskService()

	created, err := svc.Create(context.Background(), alice, "Write report")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := svc.List(context.Background(), alice, "all")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Tasks) != 1 {
		t.Fatalf("expected exactly one task, got %d", len(res.Tasks))
	}
	got := res.Tasks[0]
	if got.ID != created.ID || got.Name != "Write report" ||
		got.Status != domain.StatusInProgress || got.OwnerID != alice.ID {
		t.Fatalf("unexpected task: %+v", got)
	}
}

func TestTaskService_List_OrderedNewestFirst(t *testing.T) {
	svc, repo, _ := newTestTaskService()
	base := time.Now().UTC()
	seedTask(repo, "t1", alice.ID, domain.StatusInProgress, base.Add(-2*time.Hour))
	seedTask(repo, "t2", alice.ID, domain.StatusCompleted, base.Add(-1*time.Hour))
	seedTask(repo, "t3", alice.ID, domain.StatusFailed, base)

	res, err := svc.List(context.Background(), alice, "all")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(res.Tasks))
	}
	for i, want := range []string{"t3", "t2", "t1"} {
		if res.Tasks[i].ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, res.Tasks[i].ID)
		}
	}
}

func TestTaskService_List_StatusFilter(t *testing.T) {
	svc, repo, _ := newTestTaskService()
	now := time.Now().UTC()
	seedTask(repo, "t1", alice.ID, domain.StatusInProgress, now)
	seedTask(repo, "t2", alice.ID, domain.StatusCompleted, now)
	seedTask(repo, "t3", bob.ID, domain.StatusCompleted, now)

	res, err := svc.List(context.Background(), alice, "completed")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Tasks) != 1 || res.Tasks[0].ID != "t2" {
		t.Fatalf("expected only alice's completed task, got %+v", res.Tasks)
	}
	if res.Warning != "" {
		t.Fatalf("valid filter must not warn: %q", res.Warning)
	}
}

func TestTaskService_List_BogusFilterFallsBackToAll(t *testing.T) {
	svc, repo, _ := newTestTaskService()
	now := time.Now().UTC()
	seedTask(repo, "t1", alice.ID, domain.StatusInProgress, now.Add(-time.Minute))
	seedTask(repo, "t2", alice.ID, domain.StatusFailed, now)

	all, err := svc.List(context.Background(), alice, "all")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	bogus, err := svc.List(context.Background(), alice, "bogus")
	if err != nil {
		t.Fatalf("list bogus: %v", err)
	}
	if len(bogus.Tasks) != len(all.Tasks) {
		t.Fatalf("bogus filter must behave like all: %d vs %d", len(bogus.Tasks), len(all.Tasks))
	}
	if bogus.Warning == "" {
		t.Fatalf("expected a user-visible warning for the bogus filter")
	}
	if bogus.Filter != domain.FilterAll {
		t.Fatalf("expected applied filter %q, got %q", domain.FilterAll, bogus.Filter)
	}
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func TestTaskService_Update_Success(t *testing.T) {
	svc, repo, _ := newTestTaskService()
	seedTask(repo, "t1", alice.ID, domain.StatusInProgress, time.Now().UTC())

	task, err := svc.Update(context.Background(), alice, "t1", "Clean desk", "completed")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if task.Name != "Clean desk" || task.Status != domain.StatusCompleted {
		t.Fatalf("unexpected task after update: %+v", task)
	}
	stored := repo.byID["t1"]
	if stored.Name != "Clean desk" || stored.Status != domain.StatusCompleted {
		t.Fatalf("store not updated: %+v", stored)
	}
}

func TestTaskService_Update_ForbiddenForNonOwner(t *testing.T) {
	svc, repo, audit := newTestTaskService()
	seedTask(repo, "t1", alice.ID, domain.StatusInProgress, time.Now().UTC())

	_, err := svc.Update(context.Background(), bob, "t1", "Hijacked", "failed")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if stored := repo.byID["t1"]; stored.Name != "Seeded task" || stored.Status != domain.StatusInProgress {
		t.Fatalf("forbidden update must leave task unchanged: %+v", stored)
	}
	if e := audit.last(t); e.Outcome != domain.AuditForbidden || e.Actor != bob.Username {
		t.Fatalf("expected forbidden audit with actor, got %+v", e)
	}
}

func TestTaskService_Update_ValidatesNameAndStatus(t *testing.T) {
	svc, repo, _ := newTestTaskService()
	seedTask(repo, "t1", alice.ID, domain.StatusInProgress, time.Now().UTC())

	_, err := svc.Update(context.Background(), alice, "t1", "Task 99", "archived")
	ve, ok := domain.IsValidation(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	// both invalid fields must be itemized
	if len(ve.Fields) != 2 {
		t.Fatalf("expected 2 field errors, got %+v", ve.Fields)
	}
	if stored := repo.byID["t1"]; stored.Name != "Seeded task" {
		t.Fatalf("validation failure must not mutate the store")
	}
}

func TestTaskService_Update_NotFound(t *testing.T) {
	svc, _, _ := newTestTaskService()

	_, err := svc.Update(context.Background(), alice, "missing", "New name", "completed")
	if !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestTaskService_Delete_RequiresCompleted(t *testing.T) {
	svc, repo, _ := newTestTaskService()
	seedTask(repo, "t1", alice.ID, domain.StatusInProgress, time.Now().UTC())

	err := svc.Delete(context.Background(), alice, "t1")
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if _, ok := repo.byID["t1"]; !ok {
		t.Fatalf("invalid-state delete must leave the task in place")
	}

	seedTask(repo, "t2", alice.ID, domain.StatusFailed, time.Now().UTC())
	if err := svc.Delete(context.Background(), alice, "t2"); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("failed status: expected ErrInvalidState, got %v", err)
	}
}

func TestTaskService_Delete_CompletedSucceeds(t *testing.T) {
	svc, repo, _ := newTestTaskService()
	seedTask(repo, "t1", alice.ID, domain.StatusCompleted, time.Now().UTC())

	if err := svc.Delete(context.Background(), alice, "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := repo.byID["t1"]; ok {
		t.Fatalf("task still present after delete")
	}
}

func TestTaskService_Delete_ForbiddenForNonOwner(t *testing.T) {
	svc, repo, _ := newTestTaskService()
	seedTask(repo, "t1", alice.ID, domain.StatusCompleted, time.Now().UTC())

	err := svc.Delete(context.Background(), bob, "t1")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, ok := repo.byID["t1"]; !ok {
		t.Fatalf("task must remain for its owner")
	}
}

// Full lifecycle: create → complete → delete.
func TestTaskService_Lifecycle(t *testing.T) {
	svc, repo, _ := newTestTaskService()

	task, err := svc.Create(context.Background(), alice, "Clean desk")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Update(context.Background(), alice, task.ID, "Clean desk", "completed"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := svc.Delete(context.Background(), alice, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.byID) != 0 {
		t.Fatalf("store should be empty after lifecycle")
	}
}

// The status guard is re-evaluated by the store inside the conditional
// delete: a concurrent regression back to in-progress must refuse the delete.
func TestTaskService_Delete_StaleReadRace(t *testing.T) {
	repo := newStubTaskRepo()
	audit := &stubAuditRepo{}
	svc := NewTaskService(&racingTaskRepo{stubTaskRepo: repo}, audit, zerolog.Nop())
	seedTask(repo, "t1", alice.ID, domain.StatusCompleted, time.Now().UTC())

	err := svc.Delete(context.Background(), alice, "t1")
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState after race, got %v", err)
	}
	if _, ok := repo.byID["t1"]; !ok {
		t.Fatalf("task must survive a raced delete")
	}
}

// racingTaskRepo flips the task back to in-progress between the service's
// pre-read and the conditional delete.
type racingTaskRepo struct {
	*stubTaskRepo
}

func (r *racingTaskRepo) DeleteOwnedCompleted(ctx context.Context, id, ownerID string) (bool, error) {
	if t, ok := r.byID[id]; ok {
		t.Status = domain.StatusInProgress
	}
	return r.stubTaskRepo.DeleteOwnedCompleted(ctx, id, ownerID)
}
