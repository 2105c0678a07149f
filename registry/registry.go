package registry

import (
	"sort"
	"sync"

	"github.com/openweb3-io/walletbridge/types"
)

// Registry holds the set of active external connections and their negotiated
// chain/permission metadata. It is a pure store: no validation logic lives
// here. Persistence is delegated to the Store collaborator, which only ever
// sees connection records, never in-flight requests.
type Registry struct {
	mu    sync.RWMutex
	store Store
	conns map[string]types.Connection
}

// New builds a registry backed by store, loading any persisted connections.
func New(store Store) (*Registry, error) {
	conns, err := store.Load()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]types.Connection, len(conns))
	for _, conn := range conns {
		byID[conn.ID] = conn
	}
	return &Registry{store: store, conns: byID}, nil
}

// List returns every known connection, oldest activity first.
func (r *Registry) List() []types.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.Connection, 0, len(r.conns))
	for _, conn := range r.conns {
		out = append(out, conn)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastActive.Equal(out[j].LastActive) {
			return out[i].ID < out[j].ID
		}
		return out[i].LastActive.Before(out[j].LastActive)
	})
	return out
}

// Upsert inserts or replaces a connection record and persists it.
func (r *Registry) Upsert(conn types.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.store.Put(conn); err != nil {
		return err
	}
	r.conns[conn.ID] = conn
	return nil
}

// Remove deletes a connection record and its persisted copy.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[id]; !ok {
		return nil
	}
	if err := r.store.Delete(id); err != nil {
		return err
	}
	delete(r.conns, id)
	return nil
}

// Find looks up a connection by id.
func (r *Registry) Find(id string) (types.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[id]
	return conn, ok
}
