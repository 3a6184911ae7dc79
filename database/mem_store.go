package database

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memStore struct {
	GeoblockChecks map[uuid.UUID]*GeoblockCheckEntry
	mutex          *sync.Mutex
}

func NewMemStore() *memStore {
	return &memStore{
		GeoblockChecks: make(map[uuid.UUID]*GeoblockCheckEntry),
		mutex:          &sync.Mutex{},
	}
}

func (m *memStore) SaveGeoblockCheck(_ context.Context, entry *GeoblockCheckEntry) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	entry.InsertedAt = time.Now().UTC()
	m.GeoblockChecks[entry.Id] = entry
	return nil
}

// Entries returns the stored checks of one session.
func (m *memStore) Entries(sessionId string) []*GeoblockCheckEntry {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	out := make([]*GeoblockCheckEntry, 0)
	for _, entry := range m.GeoblockChecks {
		if entry.SessionId == sessionId {
			out = append(out, entry)
		}
	}
	return out
}
