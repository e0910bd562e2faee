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

const tokensCollection = "auth_tokens"

// TokenRepository persists externally-issued auth tokens and role mappings.
type TokenRepository struct {
	coll *mongo.Collection
}

func NewTokenRepository(db *mongo.Database) *TokenRepository {
	return &TokenRepository{coll: db.Collection(tokensCollection)}
}

type mongoToken struct {
	Token     string `bson:"token"`
	Username  string `bson:"username"`
	Role      string `bson:"role"`
	CreatedAt int64  `bson:"created_at"`
}

// Save upserts by username: a fresh login supersedes the user's previous
// token row instead of accumulating stale credentials.
func (r *TokenRepository) Save(ctx context.Context, t *domain.AuthToken) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	doc := mongoToken{
		Token:     t.Token,
		Username:  t.Username,
		Role:      t.Role,
		CreatedAt: t.CreatedAt.Unix(),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"username": t.Username}, doc, opts); err != nil {
		return fmt.Errorf("save auth token: %w", err)
	}
	return nil
}

func (r *TokenRepository) FindByToken(ctx context.Context, token string) (*domain.AuthToken, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	var mt mongoToken
	if err := r.coll.FindOne(ctx, bson.M{"token": token}).Decode(&mt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, fmt.Errorf("find auth token: %w", err)
	}

	return &domain.AuthToken{
		Token:     mt.Token,
		Username:  mt.Username,
		Role:      mt.Role,
		CreatedAt: unixToTime(mt.CreatedAt),
	}, nil
}

// EnsureIndexes creates the token and username lookup indexes.
func (r *TokenRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "token", Value: 1}}},
		{Keys: bson.D{{Key: "username", Value: 1}}},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
