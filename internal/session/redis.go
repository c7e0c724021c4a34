package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"readiness-workers/internal/assessment"
	apperrors "readiness-workers/internal/common/errors"
)

// DefaultKeyPrefix namespaces session keys.
const DefaultKeyPrefix = "assessment:session:"

// RedisStore keeps each session as a JSON string under prefix+id. Every
// write refreshes the TTL.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore creates a store on client. An empty prefix uses
// DefaultKeyPrefix and ttl <= 0 stores keys without expiry.
func NewRedisStore(client redis.Cmdable, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

func (r *RedisStore) Create(ctx context.Context, profile assessment.CompanyProfile) (*Session, error) {
	s := newSession(profile, r.now().UTC())
	data, err := json.Marshal(s)
	if err != nil {
		return nil, apperrors.NewSessionStoreError("create", err)
	}

	ok, err := r.client.SetNX(ctx, r.key(s.ID), data, r.ttl).Result()
	if err != nil {
		return nil, apperrors.NewSessionStoreError("create", err)
	}
	if !ok {
		return nil, apperrors.NewSessionStoreError("create", errors.New("session id collision"))
	}
	return s, nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.NewSessionNotFoundError(id)
	}
	if err != nil {
		return nil, apperrors.NewSessionStoreError("get", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, apperrors.NewSessionStoreError("decode", err)
	}
	return &s, nil
}

// Save overwrites an existing session; it never creates one.
func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	s.UpdatedAt = r.now().UTC()
	data, err := json.Marshal(s)
	if err != nil {
		return apperrors.NewSessionStoreError("save", err)
	}

	ok, err := r.client.SetXX(ctx, r.key(s.ID), data, r.ttl).Result()
	if err != nil {
		return apperrors.NewSessionStoreError("save", err)
	}
	if !ok {
		return apperrors.NewSessionNotFoundError(s.ID)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return apperrors.NewSessionStoreError("delete", err)
	}
	if n == 0 {
		return apperrors.NewSessionNotFoundError(id)
	}
	return nil
}
