package camunda

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestFakeJobClient_RejectsFinishedContext(t *testing.T) {
	client := NewFakeJobClient()

	expired, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-expired.Done()

	_, err := client.NewFailJobCommand().JobKey(1).Retries(0).Send(expired)
	require.Error(t, err)
	assert.Equal(t, codes.DeadlineExceeded, status.Code(err))

	_, err = client.NewThrowErrorCommand().JobKey(1).ErrorCode("LLM_TIMEOUT").Send(expired)
	require.Error(t, err)

	assert.Equal(t, 2, client.Rejected())
	assert.Empty(t, client.Failed())
	assert.Empty(t, client.Thrown())
}

func TestCommandContext(t *testing.T) {
	ctx, cancel := CommandContext()
	defer cancel()

	require.NoError(t, ctx.Err())
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(CommandTimeout), deadline, time.Second)

	client := NewFakeJobClient()
	_, err := client.NewFailJobCommand().JobKey(1).Retries(0).Send(ctx)
	require.NoError(t, err)
	assert.Len(t, client.Failed(), 1)
}
