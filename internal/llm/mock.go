package llm

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/abhisek/examlens/internal/stream"
)

// MockResponse is a canned response for the MockProvider. Generate returns
// Content; Stream replays Chunks, then StreamErr if set. Err fails the call
// itself in both modes.
type MockResponse struct {
	Content   json.RawMessage
	Chunks    []string
	StreamErr error
	Usage     Usage
	Err       error
}

// MockProvider is a deterministic StreamingProvider for testing.
// It returns canned responses in FIFO order and records all requests.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
	Sources   []*stream.StaticSource
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate returns the next canned response or ErrProviderUnavailable if
// the queue is empty.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	resp, err := m.next(req)
	if err != nil {
		return nil, err
	}

	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

// Stream replays the next canned response as a chunk stream. A response
// without Chunks streams its Content as a single chunk.
func (m *MockProvider) Stream(_ context.Context, req Request) (stream.ChunkSource, error) {
	resp, err := m.next(req)
	if err != nil {
		return nil, err
	}

	chunks := resp.Chunks
	if chunks == nil && resp.Content != nil {
		chunks = []string{string(resp.Content)}
	}
	src := stream.NewStaticSource(chunks...)
	if resp.StreamErr != nil {
		src.FailAfter(resp.StreamErr)
	}

	m.mu.Lock()
	m.Sources = append(m.Sources, src)
	m.mu.Unlock()
	return src, nil
}

func (m *MockProvider) next(req Request) (MockResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.responses) == 0 {
		return MockResponse{}, &ErrProviderUnavailable{Err: nil}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]

	if resp.Err != nil {
		return MockResponse{}, resp.Err
	}
	return resp, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate and Stream calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
