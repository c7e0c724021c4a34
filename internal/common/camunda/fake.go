package camunda

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// FakeJobClient is a worker.JobClient for handler tests. The command
// builders are the real ones; only the gateway calls are captured. Like a
// real gRPC connection, the gateway refuses calls on a finished context.
type FakeJobClient struct {
	gateway *fakeGateway
}

func NewFakeJobClient() *FakeJobClient {
	return &FakeJobClient{gateway: &fakeGateway{}}
}

func noRetry(context.Context, error) bool { return false }

func (c *FakeJobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return commands.NewCompleteJobCommand(c.gateway, noRetry)
}

func (c *FakeJobClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	return commands.NewFailJobCommand(c.gateway, noRetry)
}

func (c *FakeJobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return commands.NewThrowErrorCommand(c.gateway, noRetry)
}

// Completed returns the decoded variables of every completed job.
func (c *FakeJobClient) Completed() []map[string]interface{} {
	c.gateway.mu.Lock()
	defer c.gateway.mu.Unlock()
	out := make([]map[string]interface{}, 0, len(c.gateway.completed))
	for _, req := range c.gateway.completed {
		out = append(out, decodeVariables(req.Variables))
	}
	return out
}

// Failed returns the captured fail-job requests.
func (c *FakeJobClient) Failed() []*pb.FailJobRequest {
	c.gateway.mu.Lock()
	defer c.gateway.mu.Unlock()
	return append([]*pb.FailJobRequest(nil), c.gateway.failed...)
}

// Thrown returns the captured throw-error requests.
func (c *FakeJobClient) Thrown() []*pb.ThrowErrorRequest {
	c.gateway.mu.Lock()
	defer c.gateway.mu.Unlock()
	return append([]*pb.ThrowErrorRequest(nil), c.gateway.thrown...)
}

// Rejected returns how many commands were refused because their context
// had already ended.
func (c *FakeJobClient) Rejected() int {
	c.gateway.mu.Lock()
	defer c.gateway.mu.Unlock()
	return c.gateway.rejected
}

// fakeGateway implements the three job RPCs; any other call panics on the
// nil embedded interface.
type fakeGateway struct {
	pb.GatewayClient

	mu        sync.Mutex
	completed []*pb.CompleteJobRequest
	failed    []*pb.FailJobRequest
	thrown    []*pb.ThrowErrorRequest
	rejected  int
}

// checkContext must be called with mu held.
func (g *fakeGateway) checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		g.rejected++
		return status.FromContextError(err).Err()
	}
	return nil
}

func (g *fakeGateway) CompleteJob(ctx context.Context, in *pb.CompleteJobRequest, opts ...grpc.CallOption) (*pb.CompleteJobResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkContext(ctx); err != nil {
		return nil, err
	}
	g.completed = append(g.completed, in)
	return &pb.CompleteJobResponse{}, nil
}

func (g *fakeGateway) FailJob(ctx context.Context, in *pb.FailJobRequest, opts ...grpc.CallOption) (*pb.FailJobResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkContext(ctx); err != nil {
		return nil, err
	}
	g.failed = append(g.failed, in)
	return &pb.FailJobResponse{}, nil
}

func (g *fakeGateway) ThrowError(ctx context.Context, in *pb.ThrowErrorRequest, opts ...grpc.CallOption) (*pb.ThrowErrorResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkContext(ctx); err != nil {
		return nil, err
	}
	g.thrown = append(g.thrown, in)
	return &pb.ThrowErrorResponse{}, nil
}

func decodeVariables(raw string) map[string]interface{} {
	vars := map[string]interface{}{}
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &vars)
	}
	return vars
}
