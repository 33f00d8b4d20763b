package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore persists the session record in Redis, for server-side
// deployments where several processes serve the same logged-in user. One
// JSON value per session key, expiring with the refresh token lifetime.
type RedisStore struct {
	client    *redis.Client
	prefix    string
	sessionID string
	ttl       time.Duration
}

// NewRedisStore creates a store bound to one session slot. An empty
// sessionID gets a random identifier, which callers can read back via
// SessionID and hand out to later processes.
func NewRedisStore(client *redis.Client, prefix, sessionID string, ttl time.Duration) *RedisStore {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return &RedisStore{
		client:    client,
		prefix:    prefix,
		sessionID: sessionID,
		ttl:       ttl,
	}
}

// SessionID returns the slot identifier this store reads and writes.
func (r *RedisStore) SessionID() string {
	return r.sessionID
}

func (r *RedisStore) key() string {
	return fmt.Sprintf("%s:session:%s", r.prefix, r.sessionID)
}

// Load implements Store.Load.
func (r *RedisStore) Load(ctx context.Context) (*Session, error) {
	data, err := r.client.Get(ctx, r.key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session from redis: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		// Corrupt record: discard it rather than hand back garbage.
		_ = r.client.Del(ctx, r.key()).Err()
		return nil, ErrNotFound
	}
	return &s, nil
}

// Save implements Store.Save.
func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session to redis: %w", err)
	}
	return nil
}

// Clear implements Store.Clear.
func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key()).Err(); err != nil {
		return fmt.Errorf("clear session in redis: %w", err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
