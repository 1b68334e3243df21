package mocks

import (
	"context"
	"sync"

	"github.com/editorial-lifecycle-api/internal/kv"
)

// MockBackend is an in-memory kv.Backend with call counters and injectable
// failures.
type MockBackend struct {
	mu sync.Mutex

	Data         map[string][]byte
	GetError     error
	SetError     error
	SetManyError error
	GetFunc      func(ctx context.Context, key string) ([]byte, error)

	GetCalls     int
	SetCalls     int
	SetManyCalls int
	// Batches records the keys of every successful SetMany, in call order.
	Batches [][]string
}

// Verify interface compliance
var _ kv.Backend = (*MockBackend)(nil)

func NewMockBackend() *MockBackend {
	return &MockBackend{
		Data: make(map[string][]byte),
	}
}

func (m *MockBackend) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls++
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	if m.GetError != nil {
		return nil, m.GetError
	}
	v, ok := m.Data[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MockBackend) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetCalls++
	if m.SetError != nil {
		return m.SetError
	}
	m.Data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MockBackend) SetMany(ctx context.Context, entries map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetManyCalls++
	if m.SetManyError != nil {
		return m.SetManyError
	}
	keys := make([]string, 0, len(entries))
	for k, v := range entries {
		m.Data[k] = append([]byte(nil), v...)
		keys = append(keys, k)
	}
	m.Batches = append(m.Batches, keys)
	return nil
}

// Snapshot copies the stored values so tests can compare before and after.
func (m *MockBackend) Snapshot() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]string, len(m.Data))
	for k, v := range m.Data {
		out[k] = string(v)
	}
	return out
}

// Writes returns the total number of Set and SetMany calls.
func (m *MockBackend) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SetCalls + m.SetManyCalls
}
