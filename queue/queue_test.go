package queue_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openweb3-io/walletbridge/queue"
	"github.com/openweb3-io/walletbridge/types"
)

func request(id string, transport types.Transport) *types.SignRequest {
	return types.NewArbitraryDataRequest(id, transport, "origin",
		&types.DataPayload{}, types.Continuations{})
}

func TestHeadEmpty(t *testing.T) {
	q := queue.New[*types.SignRequest]()
	_, ok := q.Head()
	require.False(t, ok)
	require.Zero(t, q.Len())
}

func TestArrivalOrderAcrossTransports(t *testing.T) {
	q := queue.New[*types.SignRequest]()
	q.Enqueue(request("a", types.TransportProtocol))
	q.Enqueue(request("b", types.TransportCallback))
	q.Enqueue(request("c", types.TransportProtocol))

	head, ok := q.Head()
	require.True(t, ok)
	require.Equal(t, "a", head.ID)

	// Resolving the head surfaces the next-oldest, regardless of transport.
	_, removed := q.Remove("a")
	require.True(t, removed)
	head, ok = q.Head()
	require.True(t, ok)
	require.Equal(t, "b", head.ID)
}

func TestRemoveNonHead(t *testing.T) {
	q := queue.New[*types.SignRequest]()
	q.Enqueue(request("a", types.TransportProtocol))
	q.Enqueue(request("b", types.TransportProtocol))
	q.Enqueue(request("c", types.TransportProtocol))

	removed, ok := q.Remove("b")
	require.True(t, ok)
	require.Equal(t, "b", removed.ID)

	head, _ := q.Head()
	require.Equal(t, "a", head.ID)
	require.Equal(t, 2, q.Len())

	_, ok = q.Remove("b")
	require.False(t, ok)
}

func TestFindAndSnapshot(t *testing.T) {
	q := queue.New[*types.SignRequest]()
	q.Enqueue(request("a", types.TransportProtocol))
	q.Enqueue(request("b", types.TransportProtocol))

	found, ok := q.Find("b")
	require.True(t, ok)
	require.Equal(t, "b", found.ID)

	snapshot := q.Snapshot()
	require.Len(t, snapshot, 2)
	require.Equal(t, "a", snapshot[0].ID)
	require.Equal(t, "b", snapshot[1].ID)

	// Snapshot is a copy; mutating the queue afterwards does not affect it.
	q.Remove("a")
	require.Equal(t, "a", snapshot[0].ID)
}
