package registry

import (
	"sync"

	"github.com/openweb3-io/walletbridge/types"
)

// Store is the external key-value collaborator behind the registry. Only
// connection metadata crosses this boundary.
type Store interface {
	Load() ([]types.Connection, error)
	Put(conn types.Connection) error
	Delete(id string) error
	Close() error
}

// MemoryStore keeps connections in process memory. Useful for tests and for
// hosts that manage persistence elsewhere.
type MemoryStore struct {
	mu    sync.Mutex
	conns map[string]types.Connection
}

var _ Store = &MemoryStore{}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{conns: make(map[string]types.Connection)}
}

func (s *MemoryStore) Load() ([]types.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Connection, 0, len(s.conns))
	for _, conn := range s.conns {
		out = append(out, conn)
	}
	return out, nil
}

func (s *MemoryStore) Put(conn types.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn.ID] = conn
	return nil
}

func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, id)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
