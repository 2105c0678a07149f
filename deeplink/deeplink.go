package deeplink

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"sync"

	"github.com/google/uuid"

	"github.com/openweb3-io/walletbridge/codec"
	"github.com/openweb3-io/walletbridge/types"
)

// Scheme is the deeplink scheme this transport consumes.
const Scheme = "walletbridge"

// Future is the in-process stand-in for a wire response: deeplink and QR
// requests carry promise-resolving continuations instead of wire calls.
type Future[T any] struct {
	once sync.Once
	ch   chan outcome[T]
}

type outcome[T any] struct {
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{ch: make(chan outcome[T], 1)}
}

func (f *Future[T]) complete(value T) {
	f.once.Do(func() { f.ch <- outcome[T]{value: value} })
}

func (f *Future[T]) fail(err error) {
	f.once.Do(func() { f.ch <- outcome[T]{err: err} })
}

// Wait blocks until the holder decides, or ctx ends. Rejection surfaces as
// types.ErrUserRejected; upstream failures surface wrapped in
// types.ErrSignRequest.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case out := <-f.ch:
		return out.value, out.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// NewSignTxnsRequest synthesizes a callback-transport transactions request.
// The future resolves to one list of base64-encoded signed transactions per
// group, in group order.
func NewSignTxnsRequest(groups [][]types.WireTransaction) (*types.SignRequest, *Future[[][]string]) {
	future := newFuture[[][]string]()
	id := uuid.NewString()
	cont := types.Continuations{
		Approve: func(out types.SignedOutput) error {
			result := make([][]string, 0, len(out.Groups))
			for i, group := range out.Groups {
				encoded := make([]string, 0, len(group))
				for j, st := range group {
					authAddr := ""
					if i < len(groups) && j < len(groups[i]) {
						authAddr = groups[i][j].AuthAddr
					}
					blob, err := codec.EncodeSigned(st, authAddr)
					if err != nil {
						future.fail(err)
						return nil
					}
					encoded = append(encoded, base64.StdEncoding.EncodeToString(blob))
				}
				result = append(result, encoded)
			}
			future.complete(result)
			return nil
		},
		Reject: func() error {
			future.fail(types.WrapErr(types.ErrUserRejected, nil))
			return nil
		},
		Fail: func(reason error) error {
			future.fail(types.WrapErr(types.ErrSignRequest, reason))
			return nil
		},
	}
	request := types.NewTransactionsRequest(
		id, types.TransportCallback, "deeplink:"+id,
		groups, codec.DisplayGroups(groups), cont,
	)
	return request, future
}

// NewSignDataRequest synthesizes a callback-transport arbitrary-data request.
// The future resolves to one base64 signature per requested signature.
func NewSignDataRequest(payload *types.DataPayload) (*types.SignRequest, *Future[[]string]) {
	future := newFuture[[]string]()
	id := uuid.NewString()
	cont := types.Continuations{
		Approve: func(out types.SignedOutput) error {
			result := make([]string, 0, len(out.Signatures))
			for _, sig := range out.Signatures {
				result = append(result, base64.StdEncoding.EncodeToString(sig))
			}
			future.complete(result)
			return nil
		},
		Reject: func() error {
			future.fail(types.WrapErr(types.ErrUserRejected, nil))
			return nil
		},
		Fail: func(reason error) error {
			future.fail(types.WrapErr(types.ErrSignRequest, reason))
			return nil
		},
	}
	request := types.NewArbitraryDataRequest(id, types.TransportCallback, "deeplink:"+id, payload, cont)
	return request, future
}

// ParseSignTxns parses a walletbridge://sign-txn deeplink. Each txn query
// parameter carries the base64url wire binary of one unsigned transaction;
// transactions sharing a group digest form one atomic group, in arrival
// order. An authAddr parameter applies to every transaction in the link.
func ParseSignTxns(raw string) ([][]types.WireTransaction, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, types.WrapErr(types.ErrSignRequest, err)
	}
	if u.Scheme != Scheme || u.Host != "sign-txn" {
		return nil, types.WrapErr(types.ErrSignRequest, fmt.Errorf("not a %s://sign-txn link", Scheme))
	}
	values := u.Query()
	blobs := values["txn"]
	if len(blobs) == 0 {
		return nil, types.WrapErr(types.ErrSignRequest, fmt.Errorf("no transactions in link"))
	}
	authAddr := values.Get("authAddr")

	var groups [][]types.WireTransaction
	lastGroup := ""
	for _, b64 := range blobs {
		blob, err := base64.URLEncoding.DecodeString(b64)
		if err != nil {
			return nil, types.WrapErr(types.ErrSignRequest, err)
		}
		txn, err := codec.DecodeUnsigned(blob)
		if err != nil {
			return nil, err
		}
		wt := types.WireTransaction{Txn: txn, AuthAddr: authAddr}
		display := codec.Display(txn)
		if display.Group != "" && display.Group == lastGroup && len(groups) > 0 {
			groups[len(groups)-1] = append(groups[len(groups)-1], wt)
		} else {
			groups = append(groups, []types.WireTransaction{wt})
		}
		lastGroup = display.Group
	}
	return groups, nil
}
