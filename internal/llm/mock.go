package llm

import (
	"context"
	"sync"
)

// MockResponse is one scripted oracle reply. A non-nil Err is returned
// instead of a response.
type MockResponse struct {
	Text  string
	Usage Usage
	Stop  StopReason
	Err   error
}

// MockProvider replays scripted replies in order and records every request.
// Running out of replies looks like an unavailable oracle.
type MockProvider struct {
	mu      sync.Mutex
	replies []MockResponse
	Calls   []Request
}

func NewMockProvider(replies ...MockResponse) *MockProvider {
	return &MockProvider{replies: replies}
}

func (m *MockProvider) Complete(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if len(m.replies) == 0 {
		return nil, &ErrProviderUnavailable{}
	}
	r := m.replies[0]
	m.replies = m.replies[1:]
	if r.Err != nil {
		return nil, r.Err
	}
	stop := r.Stop
	if stop == "" {
		stop = StopEnd
	}
	return &Response{Text: r.Text, Model: "mock", Usage: r.Usage, Stop: stop}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

// AddResponse queues another reply.
func (m *MockProvider) AddResponse(r MockResponse) {
	m.mu.Lock()
	m.replies = append(m.replies, r)
	m.mu.Unlock()
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Pending is the number of replies not yet consumed.
func (m *MockProvider) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.replies)
}
