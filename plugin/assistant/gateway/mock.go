package gateway

import (
	"context"
	"sync"
)

// MockGenerator is a test double for Generator.
type MockGenerator struct {
	// GenerateFunc is invoked for every Generate call when set.
	GenerateFunc func(ctx context.Context, req *Request) (string, error)

	mu    sync.Mutex
	calls []*Request
}

func (m *MockGenerator) Generate(ctx context.Context, req *Request) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return "", nil
}

// Calls returns a snapshot of the requests received so far.
func (m *MockGenerator) Calls() []*Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Request(nil), m.calls...)
}

var _ Generator = (*MockGenerator)(nil)
