package registry_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openweb3-io/walletbridge/registry"
	"github.com/openweb3-io/walletbridge/types"
)

func connection(id string, lastActive time.Time) types.Connection {
	return types.Connection{
		ID:          id,
		Peer:        types.PeerMeta{Name: "peer-" + id, URL: "https://example.org"},
		ChainID:     types.ChainIDTestnet,
		Permissions: []types.Permission{types.PermissionSignTransaction},
		Addresses:   []string{"addr1"},
		Connected:   true,
		LastActive:  lastActive,
	}
}

func TestRegistryCRUD(t *testing.T) {
	reg, err := registry.New(registry.NewMemoryStore())
	require.NoError(t, err)

	_, ok := reg.Find("a")
	require.False(t, ok)

	require.NoError(t, reg.Upsert(connection("a", time.Now())))
	found, ok := reg.Find("a")
	require.True(t, ok)
	require.Equal(t, "peer-a", found.Peer.Name)

	// Upsert replaces.
	updated := connection("a", time.Now())
	updated.Addresses = []string{"addr1", "addr2"}
	require.NoError(t, reg.Upsert(updated))
	found, _ = reg.Find("a")
	require.Len(t, found.Addresses, 2)

	require.NoError(t, reg.Remove("a"))
	_, ok = reg.Find("a")
	require.False(t, ok)

	// Removing an absent connection is not an error.
	require.NoError(t, reg.Remove("a"))
}

func TestRegistryListOrder(t *testing.T) {
	reg, err := registry.New(registry.NewMemoryStore())
	require.NoError(t, err)

	base := time.Now()
	require.NoError(t, reg.Upsert(connection("newer", base.Add(time.Hour))))
	require.NoError(t, reg.Upsert(connection("older", base)))

	list := reg.List()
	require.Len(t, list, 2)
	require.Equal(t, "older", list[0].ID)
	require.Equal(t, "newer", list[1].ID)
}

func TestRegistryLoadsPersistedConnections(t *testing.T) {
	store := registry.NewMemoryStore()

	reg, err := registry.New(store)
	require.NoError(t, err)
	require.NoError(t, reg.Upsert(connection("a", time.Now())))

	// A registry rebuilt over the same store sees the record.
	reloaded, err := registry.New(store)
	require.NoError(t, err)
	found, ok := reloaded.Find("a")
	require.True(t, ok)
	require.Equal(t, "peer-a", found.Peer.Name)
}

func TestBadgerStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store, err := registry.OpenBadgerStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Put(connection("a", time.Now().UTC())))
	require.NoError(t, store.Put(connection("b", time.Now().UTC())))
	require.NoError(t, store.Delete("b"))
	require.NoError(t, store.Close())

	store, err = registry.OpenBadgerStore(dir)
	require.NoError(t, err)
	defer store.Close()

	conns, err := store.Load()
	require.NoError(t, err)
	require.Len(t, conns, 1)
	require.Equal(t, "a", conns[0].ID)
	require.Equal(t, types.ChainIDTestnet, conns[0].ChainID)
}
