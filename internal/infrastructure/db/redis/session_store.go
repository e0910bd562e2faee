package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kpitools/webapps/internal/core/domain"
	"github.com/kpitools/webapps/internal/core/ports"
)

const defaultSessionTTL = 24 * time.Hour

// SessionStore keeps task-app sessions server-side in Redis. The browser
// cookie carries only the opaque session id.
//
// Key layout:
//
//	session:<id>          → JSON identity, expires with the session
//	session:<id>:flashes  → list of JSON flash messages
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Create(ctx context.Context, identity ports.SessionIdentity) (string, error) {
	id := uuid.NewString()
	payload, err := json.Marshal(identity)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(id), payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return id, nil
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (*ports.SessionIdentity, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var identity ports.SessionIdentity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &identity, nil
}

// Delete tears a session down. Deleting an absent session is a no-op, which
// makes logout idempotent.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID), s.flashKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) AddFlash(ctx context.Context, sessionID string, flash ports.Flash) error {
	payload, err := json.Marshal(flash)
	if err != nil {
		return fmt.Errorf("encode flash: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.flashKey(sessionID), payload)
	pipe.Expire(ctx, s.flashKey(sessionID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store flash: %w", err)
	}
	return nil
}

// PopFlashes returns and clears the pending flashes in one round trip.
func (s *SessionStore) PopFlashes(ctx context.Context, sessionID string) ([]ports.Flash, error) {
	pipe := s.client.TxPipeline()
	items := pipe.LRange(ctx, s.flashKey(sessionID), 0, -1)
	pipe.Del(ctx, s.flashKey(sessionID))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("pop flashes: %w", err)
	}

	raws, err := items.Result()
	if err != nil {
		return nil, fmt.Errorf("read flashes: %w", err)
	}

	flashes := make([]ports.Flash, 0, len(raws))
	for _, raw := range raws {
		var f ports.Flash
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			continue // a malformed flash is not worth failing a page render
		}
		flashes = append(flashes, f)
	}
	return flashes, nil
}

func (s *SessionStore) key(id string) string {
	return "session:" + id
}

func (s *SessionStore) flashKey(id string) string {
	return "session:" + id + ":flashes"
}
