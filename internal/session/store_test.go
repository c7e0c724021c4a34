package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readiness-workers/internal/assessment"
	"readiness-workers/internal/common/config"
	apperrors "readiness-workers/internal/common/errors"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestStores_Contract(t *testing.T) {
	backends := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore(time.Hour)
		},
		"redis": func(t *testing.T) Store {
			_, client := setupRedis(t)
			return NewRedisStore(client, "", time.Hour)
		},
	}

	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)

			created, err := store.Create(ctx, testProfile)
			require.NoError(t, err)
			require.NotEmpty(t, created.ID)

			got, err := store.Get(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, testProfile, got.Profile)
			assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

			got.SetQuestions(questions(3))
			require.NoError(t, got.RecordAnswer(1, "Answer"))
			got.Recommendations = []assessment.RecommendationItem{{"action": "Hire", "kpis": []interface{}{"a", "b"}}}
			score := 64.0
			got.Report = &assessment.ReadinessReport{OverallScore: &score, Strengths: []string{"Data"}}
			require.NoError(t, store.Save(ctx, got))

			reloaded, err := store.Get(ctx, created.ID)
			require.NoError(t, err)
			assert.Len(t, reloaded.Questions, 3)
			assert.Equal(t, []string{"", "Answer", ""}, reloaded.Answers)
			assert.Equal(t, "a; b", reloaded.Recommendations[0].Field(assessment.RecKPIs))
			require.NotNil(t, reloaded.Report)
			assert.Equal(t, "64", assessment.FormatScore(reloaded.Report.OverallScore))
			assert.False(t, reloaded.UpdatedAt.Before(reloaded.CreatedAt))

			require.NoError(t, store.Delete(ctx, created.ID))
			_, err = store.Get(ctx, created.ID)
			assert.True(t, errors.Is(err, apperrors.ErrSessionNotFound))
		})
	}
}

func TestStores_UnknownSession(t *testing.T) {
	_, client := setupRedis(t)
	stores := map[string]Store{
		"memory": NewMemoryStore(0),
		"redis":  NewRedisStore(client, "test:", 0),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Get(ctx, "missing")
			assert.True(t, errors.Is(err, apperrors.ErrSessionNotFound))

			err = store.Save(ctx, &Session{ID: "missing"})
			assert.True(t, errors.Is(err, apperrors.ErrSessionNotFound), "save never creates")

			err = store.Delete(ctx, "missing")
			assert.True(t, errors.Is(err, apperrors.ErrSessionNotFound))
		})
	}
}

func TestMemoryStore_CopiesOnReadAndWrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	s, err := store.Create(ctx, testProfile)
	require.NoError(t, err)
	s.SetQuestions(questions(1))
	require.NoError(t, store.Save(ctx, s))

	s.Questions[0].Text = "mutated after save"
	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Q", got.Questions[0].Text)

	got.Profile.Country = "mutated after get"
	again, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Brazil", again.Profile.Country)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Hour)
	store.now = func() time.Time { return now }

	s, err := store.Create(ctx, testProfile)
	require.NoError(t, err)

	now = now.Add(59 * time.Minute)
	require.NoError(t, store.Save(ctx, s), "save refreshes the ttl")

	now = now.Add(59 * time.Minute)
	_, err = store.Get(ctx, s.ID)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, s.ID)
	assert.True(t, errors.Is(err, apperrors.ErrSessionNotFound))

	_, err = store.Create(ctx, testProfile)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len(), "expired entries are swept on create")
}

func TestRedisStore_KeyAndTTL(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewRedisStore(client, "", 30*time.Minute)

	s, err := store.Create(context.Background(), testProfile)
	require.NoError(t, err)

	key := DefaultKeyPrefix + s.ID
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 30*time.Minute, mr.TTL(key))

	mr.FastForward(31 * time.Minute)
	_, err = store.Get(context.Background(), s.ID)
	assert.True(t, errors.Is(err, apperrors.ErrSessionNotFound))
}

func TestRedisStore_BackendErrors(t *testing.T) {
	ctx := context.Background()
	key := DefaultKeyPrefix + "abc"

	tests := []struct {
		name     string
		setup    func(mock redismock.ClientMock)
		call     func(store *RedisStore) error
		wantCode apperrors.ErrorCode
	}{
		{
			name: "get connection error",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet(key).SetErr(errors.New("connection refused"))
			},
			call: func(store *RedisStore) error {
				_, err := store.Get(ctx, "abc")
				return err
			},
			wantCode: apperrors.ErrCodeSessionStoreFail,
		},
		{
			name: "get nil",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet(key).RedisNil()
			},
			call: func(store *RedisStore) error {
				_, err := store.Get(ctx, "abc")
				return err
			},
			wantCode: apperrors.ErrCodeSessionNotFound,
		},
		{
			name: "corrupt value",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet(key).SetVal("{not json")
			},
			call: func(store *RedisStore) error {
				_, err := store.Get(ctx, "abc")
				return err
			},
			wantCode: apperrors.ErrCodeSessionStoreFail,
		},
		{
			name: "delete error",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectDel(key).SetErr(errors.New("READONLY"))
			},
			call: func(store *RedisStore) error {
				return store.Delete(ctx, "abc")
			},
			wantCode: apperrors.ErrCodeSessionStoreFail,
		},
		{
			name: "delete missing",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectDel(key).SetVal(0)
			},
			call: func(store *RedisStore) error {
				return store.Delete(ctx, "abc")
			},
			wantCode: apperrors.ErrCodeSessionNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mock := redismock.NewClientMock()
			tt.setup(mock)

			err := tt.call(NewRedisStore(client, "", time.Hour))
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperrors.CodeOf(err))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestNewStore(t *testing.T) {
	_, client := setupRedis(t)

	store, err := NewStore(config.SessionConfig{Store: "memory", TTL: 60}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	store, err = NewStore(config.SessionConfig{Store: "redis", TTL: 60}, client)
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, store)

	_, err = NewStore(config.SessionConfig{Store: "redis"}, nil)
	assert.Error(t, err)

	_, err = NewStore(config.SessionConfig{Store: "dynamo"}, nil)
	assert.Error(t, err)
}
