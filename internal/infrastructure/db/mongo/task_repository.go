package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kpitools/webapps/internal/core/domain"
)

const tasksCollection = "tasks"

// TaskRepository implements ports.TaskRepository on MongoDB.
//
// The ownership and completed-status guards are expressed inside the filter
// of each conditional write, so the store evaluates check and mutation as one
// atomic operation; a concurrent status change can only shrink the match to
// zero, never bypass a guard.
type TaskRepository struct {
	coll *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{coll: db.Collection(tasksCollection)}
}

func (r *TaskRepository) Insert(ctx context.Context, task *domain.Task) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	var t domain.Task
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &t, nil
}

// ListByOwner returns the owner's tasks ordered by creation time descending.
// An empty status matches every status.
func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID string, status domain.TaskStatus) ([]domain.Task, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	filter := bson.M{"owner_id": ownerID}
	if status != "" {
		filter["status"] = string(status)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var tasks []domain.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return tasks, nil
}

// UpdateOwned overwrites both fields in one conditional write scoped by
// {id, owner}.
func (r *TaskRepository) UpdateOwned(ctx context.Context, id, ownerID, name string, status domain.TaskStatus) (bool, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "owner_id": ownerID},
		bson.M{"$set": bson.M{"name": name, "status": string(status)}},
	)
	if err != nil {
		return false, fmt.Errorf("update task: %w", err)
	}
	return res.MatchedCount > 0, nil
}

// DeleteOwnedCompleted removes the task only when owned by ownerID and
// completed; the state guard rides in the delete filter itself.
func (r *TaskRepository) DeleteOwnedCompleted(ctx context.Context, id, ownerID string) (bool, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{
		"_id":      id,
		"owner_id": ownerID,
		"status":   string(domain.StatusCompleted),
	})
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// EnsureIndexes creates the owner listing index.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}
