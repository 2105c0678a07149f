package types_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openweb3-io/walletbridge/types"
)

func TestSignRequestResolvesExactlyOnce(t *testing.T) {
	approved, rejected := 0, 0
	req := types.NewArbitraryDataRequest("req-1", types.TransportProtocol, "conn-1",
		&types.DataPayload{Data: []byte("payload")},
		types.Continuations{
			Approve: func(types.SignedOutput) error { approved++; return nil },
			Reject:  func() error { rejected++; return nil },
		})

	require.False(t, req.Resolved())
	require.NoError(t, req.Approve(types.SignedOutput{}))
	require.True(t, req.Resolved())

	// Every further terminal call is refused and no continuation re-fires.
	require.Error(t, req.Approve(types.SignedOutput{}))
	require.Error(t, req.Reject())
	require.Error(t, req.Fail(errors.New("late")))
	require.Equal(t, 1, approved)
	require.Equal(t, 0, rejected)
}

func TestSignRequestRejectAfterFail(t *testing.T) {
	var failedWith error
	req := types.NewARC60Request("req-2", types.TransportCallback, "deeplink:req-2", nil,
		types.Continuations{
			Fail: func(reason error) error { failedWith = reason; return nil },
		})

	cause := errors.New("connector gone")
	require.NoError(t, req.Fail(cause))
	require.Equal(t, cause, failedWith)
	require.Error(t, req.Reject())
}

func TestSignRequestNilContinuations(t *testing.T) {
	req := types.NewArbitraryDataRequest("req-3", types.TransportAlgod, "algod",
		&types.DataPayload{}, types.Continuations{})
	require.NoError(t, req.Reject())
	require.True(t, req.Resolved())
}

func TestErrorTaxonomyIs(t *testing.T) {
	wrapped := types.WrapErr(types.ErrInvalidNetwork, errors.New("chain 416001 vs testnet"))
	require.ErrorIs(t, wrapped, types.ErrInvalidNetwork)
	require.NotErrorIs(t, wrapped, types.ErrInvalidSigner)
	require.Contains(t, wrapped.Details["context"], "416001")
}

func TestSignRequestConcurrentResolution(t *testing.T) {
	var fired atomic.Int32
	req := types.NewArbitraryDataRequest("req-race", types.TransportProtocol, "conn-1",
		&types.DataPayload{Data: []byte("payload")},
		types.Continuations{
			Reject: func() error { fired.Add(1); return nil },
		})

	const racers = 16
	var wg sync.WaitGroup
	var refused atomic.Int32
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := req.Reject(); err != nil {
				refused.Add(1)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, fired.Load())
	require.EqualValues(t, racers-1, refused.Load())
}

func TestSignRequestCleanupRunsBeforeContinuation(t *testing.T) {
	var order []string
	req := types.NewArbitraryDataRequest("req-order", types.TransportProtocol, "conn-1",
		&types.DataPayload{Data: []byte("payload")},
		types.Continuations{
			Approve: func(types.SignedOutput) error {
				order = append(order, "continuation")
				return nil
			},
		})
	req.OnResolve(func() { order = append(order, "cleanup") })

	require.NoError(t, req.Approve(types.SignedOutput{}))
	require.Equal(t, []string{"cleanup", "continuation"}, order)
}
