package geoblock

import (
	"context"
	"sync"
)

type Store interface {
	Load(ctx context.Context) (State, error)
	// Update loads the state, applies fn and stores the result as one atomic step. fn may run more
	// than once when a concurrent writer got in first; an error from fn aborts the update.
	Update(ctx context.Context, fn func(State) (State, error)) (prev, next State, err error)
}

type memoryStore struct {
	mu    sync.Mutex
	state State
}

func NewMemoryStore() Store {
	return &memoryStore{}
}

func (m *memoryStore) Load(_ context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, nil
}

func (m *memoryStore) Update(_ context.Context, fn func(State) (State, error)) (State, State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.state
	next, err := fn(prev)
	if err != nil {
		return prev, prev, err
	}
	m.state = next
	return prev, next, nil
}
