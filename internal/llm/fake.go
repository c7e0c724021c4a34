package llm

import (
	"context"
	"sync"
)

// FakeGenerator replays scripted responses in order and records every
// request. Once the script is exhausted the last entry repeats.
type FakeGenerator struct {
	mu        sync.Mutex
	responses []FakeResponse
	requests  []Request
}

// FakeResponse is one scripted reply.
type FakeResponse struct {
	Text string
	Err  error
}

func NewFakeGenerator(responses ...FakeResponse) *FakeGenerator {
	return &FakeGenerator{responses: responses}
}

// NewFakeText scripts plain text replies.
func NewFakeText(texts ...string) *FakeGenerator {
	responses := make([]FakeResponse, len(texts))
	for i, t := range texts {
		responses[i] = FakeResponse{Text: t}
	}
	return NewFakeGenerator(responses...)
}

func (f *FakeGenerator) Generate(ctx context.Context, req Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if err := ctx.Err(); err != nil {
		return "", classifyTransportError(ctx, err)
	}
	if len(f.responses) == 0 {
		return "", nil
	}
	idx := len(f.requests) - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	r := f.responses[idx]
	return r.Text, r.Err
}

// Requests returns a copy of the recorded requests.
func (f *FakeGenerator) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Request, len(f.requests))
	copy(out, f.requests)
	return out
}

// Calls returns how many times Generate ran.
func (f *FakeGenerator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}
