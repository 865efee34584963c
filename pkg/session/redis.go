package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// defaultRedisKeyPrefix namespaces session keys in Redis.
const defaultRedisKeyPrefix = "session:"

// RedisStore is a Redis-backed session store.
// Sessions are stored as JSON values with a TTL matching their expiry.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// RedisOption configures the RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix sets the prefix prepended to session tokens when building
// Redis keys. Default: "session:".
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.keyPrefix = prefix
		}
	}
}

// NewRedisStore creates a session store on top of the given Redis client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client:    client,
		keyPrefix: defaultRedisKeyPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// sessionRecord is the JSON shape persisted to Redis.
type sessionRecord struct {
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`
	Values    map[string]any `json:"values"`
	ID        string         `json:"id"`
	Token     string         `json:"token"`
}

// Get retrieves a session by its token.
func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	data, err := s.client.Get(ctx, s.keyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}

	sess := &Session{
		ID:        rec.ID,
		Token:     rec.Token,
		Values:    rec.Values,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}
	if sess.IsExpired() {
		_ = s.client.Del(ctx, s.keyPrefix+token).Err()
		return nil, ErrExpired
	}
	return sess, nil
}

// Save persists the session with a TTL matching its expiry.
func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}

	data, err := json.Marshal(sessionRecord{
		ID:        sess.ID,
		Token:     sess.Token,
		Values:    sess.Values,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt,
	})
	if err != nil {
		return errors.Join(ErrSaveFailed, err)
	}

	if err := s.client.Set(ctx, s.keyPrefix+sess.Token, data, ttl).Err(); err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	return nil
}

// Delete removes a session by its token.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.keyPrefix+token).Err()
}
