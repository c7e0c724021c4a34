package calculatescores

import (
	"context"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readiness-workers/internal/assessment"
	"readiness-workers/internal/common/camunda"
	"readiness-workers/internal/common/config"
	apperrors "readiness-workers/internal/common/errors"
	"readiness-workers/internal/common/logger"
	"readiness-workers/internal/session"
	"readiness-workers/pkg/registry"
)

func newHandler(t *testing.T, store session.Store) *Handler {
	t.Helper()
	return NewHandler(LoadConfig(config.WorkerConfig{}), store, logger.NewTestLogger(t))
}

func answers(values ...interface{}) []interface{} { return values }

func TestLoadConfig(t *testing.T) {
	assert.Equal(t, 10*time.Second, LoadConfig(config.WorkerConfig{}).Timeout)
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name        string
		answers     []interface{}
		wantOverall float64
		wantPolicy  float64
		wantEthics  float64
		wantCode    apperrors.ErrorCode
	}{
		{
			name:        "ten string answers",
			answers:     answers("4", "2", "3", "3", "5", "5", "1", "2", "4", "4"),
			wantOverall: 3.3,
			wantPolicy:  3,
			wantEthics:  4,
		},
		{
			name:        "numbers and padded strings",
			answers:     answers(5.0, " 5", 1.0, "1", 2.0, "2", 3.0, "3", 4.0, "4"),
			wantOverall: 3,
			wantPolicy:  5,
			wantEthics:  4,
		},
		{
			name:        "extra pair counts toward overall only",
			answers:     answers("1", "1", "1", "1", "1", "1", "1", "1", "1", "1", "7", "7"),
			wantOverall: 2,
			wantPolicy:  1,
			wantEthics:  1,
		},
		{name: "too few", answers: answers("1", "2", "3"), wantCode: apperrors.ErrCodeInvalidAnswerFormat},
		{name: "odd count", answers: answers("1", "1", "1", "1", "1", "1", "1", "1", "1", "1", "1"), wantCode: apperrors.ErrCodeInvalidAnswerFormat},
		{name: "not an integer", answers: answers("1", "2", "three", "1", "1", "1", "1", "1", "1", "1"), wantCode: apperrors.ErrCodeInvalidAnswerFormat},
		{name: "fractional number", answers: answers(1.5, "1", "1", "1", "1", "1", "1", "1", "1", "1"), wantCode: apperrors.ErrCodeInvalidAnswerFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := newHandler(t, nil).Execute(context.Background(), &Input{Answers: tt.answers})
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, apperrors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.wantOverall, out.Overall, 1e-9)
			assert.Equal(t, tt.wantPolicy, out.CategoryScores["Policy"])
			assert.Equal(t, tt.wantEthics, out.CategoryScores["Ethics"])
			assert.Len(t, out.Categories, len(assessment.Categories))
		})
	}
}

func TestExecute_FromSession(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore(time.Hour)
	sess, err := store.Create(ctx, assessment.CompanyProfile{Industry: "a", Size: "b", Country: "c"})
	require.NoError(t, err)

	qs := make([]assessment.AssessmentQuestion, 10)
	sess.SetQuestions(qs)
	for i := range qs {
		require.NoError(t, sess.RecordAnswer(i, "4"))
	}
	require.NoError(t, store.Save(ctx, sess))

	out, err := newHandler(t, store).Execute(ctx, &Input{SessionID: sess.ID})
	require.NoError(t, err)
	assert.Equal(t, 4.0, out.Overall)

	stored, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Scores)
	assert.Equal(t, 4.0, stored.Scores.Overall)
}

func TestExecute_SessionWithUnansweredQuestions(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore(time.Hour)
	sess, err := store.Create(ctx, assessment.CompanyProfile{Industry: "a", Size: "b", Country: "c"})
	require.NoError(t, err)
	sess.SetQuestions(make([]assessment.AssessmentQuestion, 10))
	require.NoError(t, store.Save(ctx, sess))

	_, err = newHandler(t, store).Execute(ctx, &Input{SessionID: sess.ID})
	assert.Equal(t, apperrors.ErrCodeInvalidAnswerFormat, apperrors.CodeOf(err))
}

func TestHandle(t *testing.T) {
	job := func(vars string) entities.Job {
		return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 21, Type: TaskType, Retries: 3, Variables: vars}}
	}

	t.Run("completes", func(t *testing.T) {
		client := camunda.NewFakeJobClient()
		newHandler(t, nil).Handle(client, job(`{"answers": [1, 1, 2, 2, 3, 3, 4, 4, 5, 5]}`))

		require.Len(t, client.Completed(), 1)
		vars := client.Completed()[0]
		assertMatchesRegistry(t, vars)
		assert.Equal(t, 3.0, vars["overall"])
		scores := vars["categoryScores"].(map[string]interface{})
		assert.Equal(t, 1.0, scores["Policy"])
		assert.Equal(t, 5.0, scores["Ethics"])
	})

	t.Run("bad answers throw", func(t *testing.T) {
		client := camunda.NewFakeJobClient()
		newHandler(t, nil).Handle(client, job(`{"answers": ["1", "2"]}`))

		require.Len(t, client.Thrown(), 1)
		assert.Equal(t, "INVALID_ANSWER_FORMAT", client.Thrown()[0].ErrorCode)
	})

	t.Run("object answers rejected by schema", func(t *testing.T) {
		client := camunda.NewFakeJobClient()
		newHandler(t, nil).Handle(client, job(`{"answers": [{"a": 1}]}`))

		require.Len(t, client.Thrown(), 1)
		assert.Equal(t, "INVALID_INPUT", client.Thrown()[0].ErrorCode)
	})
}

func assertMatchesRegistry(t *testing.T, vars map[string]interface{}) {
	t.Helper()
	reg, err := registry.LoadRegistry("../../../../" + registry.DefaultPath)
	require.NoError(t, err)
	act, ok := reg.Find(TaskType)
	require.True(t, ok)
	assert.NoError(t, act.ValidateVariables(vars, true))
}

// slowStore blocks on Get until the caller's context ends.
type slowStore struct {
	session.Store
}

func (slowStore) Get(ctx context.Context, id string) (*session.Session, error) {
	<-ctx.Done()
	return nil, apperrors.NewSessionStoreError("get", ctx.Err())
}

func TestHandle_ExecutionTimeoutStillReported(t *testing.T) {
	h := NewHandler(&Config{Timeout: 50 * time.Millisecond}, slowStore{}, logger.NewTestLogger(t))

	client := camunda.NewFakeJobClient()
	h.Handle(client, entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 22, Type: TaskType, Retries: 3, Variables: `{"sessionId": "s-1"}`}})

	assert.Zero(t, client.Rejected())
	assert.Empty(t, client.Completed())
	require.Len(t, client.Failed(), 1)
	assert.Equal(t, int32(2), client.Failed()[0].Retries)
}
