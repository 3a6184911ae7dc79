package database

import "context"

type mockStore struct{}

func NewMockStore() Store {
	return &mockStore{}
}

func (m *mockStore) SaveGeoblockCheck(_ context.Context, _ *GeoblockCheckEntry) error {
	return nil
}
