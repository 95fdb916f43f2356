package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pressroom/internal/cache"
	"pressroom/internal/errors"
)

const sessionKeyPrefix = "session:"

// Store defines the interface for session storage operations.
type Store interface {
	Create(ctx context.Context, identityID uuid.UUID, ttl time.Duration) (token string, err error)
	Resolve(ctx context.Context, token string) (identityID uuid.UUID, err error)
	Destroy(ctx context.Context, token string) error
}

// record is the JSON payload stored per live session.
type record struct {
	IdentityID uuid.UUID `json:"identity_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// RedisStore keeps sessions in Redis with a TTL. Exactly one identity per
// live session; expiry is enforced by Redis itself.
type RedisStore struct {
	cache *cache.Client
}

// Ensure RedisStore implements Store
var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a new session store.
func NewRedisStore(cache *cache.Client) *RedisStore {
	return &RedisStore{cache: cache}
}

// Create stores a new session and returns its token.
func (s *RedisStore) Create(ctx context.Context, identityID uuid.UUID, ttl time.Duration) (string, error) {
	token := uuid.New().String()
	payload, err := json.Marshal(record{IdentityID: identityID, CreatedAt: time.Now()})
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}
	if err := s.cache.Set(ctx, sessionKeyPrefix+token, payload, ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Resolve maps a session token to the identity it belongs to. Resolution
// reads session state only; it never mutates it.
func (s *RedisStore) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	data, err := s.cache.Get(ctx, sessionKeyPrefix+token)
	if err != nil {
		return uuid.Nil, fmt.Errorf("load session: %w", err)
	}
	if data == nil {
		return uuid.Nil, errors.ErrNoSession
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return uuid.Nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return rec.IdentityID, nil
}

// Destroy removes a session.
func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	return s.cache.Delete(ctx, sessionKeyPrefix+token)
}
