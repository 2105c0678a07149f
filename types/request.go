package types

import (
	"encoding/json"
	"fmt"
	"sync"

	sdktypes "github.com/algorand/go-algorand-sdk/v2/types"
)

// Transport identifies which transport originated a sign request and
// therefore which response path its continuations drive.
type Transport string

const (
	// TransportProtocol routes responses over the wallet-pairing wire.
	TransportProtocol = Transport("protocol")
	// TransportCallback resolves an in-process promise (deeplink/QR flows).
	TransportCallback = Transport("callback")
	// TransportAlgod broadcasts the signed result directly to a node.
	TransportAlgod = Transport("algod")
)

// RequestKind is the discriminator of the SignRequest union.
type RequestKind string

const (
	KindTransactions  = RequestKind("transactions")
	KindArbitraryData = RequestKind("arbitrary-data")
	KindARC60         = RequestKind("arc60")
)

// WireTransaction is one transaction as submitted for signing, together with
// the alternate authorizing address the peer supplied, if any. When AuthAddr
// is set it takes precedence over the transaction's sender as the signer.
type WireTransaction struct {
	Txn      sdktypes.Transaction
	AuthAddr string
}

// DataPayload is the body of an arbitrary-data sign request.
type DataPayload struct {
	Message string
	Data    []byte
	ChainID ChainID
	Signer  string
}

// SignedOutput carries the product of an approved request: signed transaction
// groups for KindTransactions, raw signatures otherwise.
type SignedOutput struct {
	Groups     [][]sdktypes.SignedTxn
	Signatures [][]byte
}

// Continuations is the terminal-outcome triple a transport binds to a request
// at synthesis time. Each closes over the originating connection so responses
// route without re-querying the registry. Exactly one fires, exactly once.
type Continuations struct {
	Approve func(SignedOutput) error
	Reject  func() error
	Fail    func(reason error) error
}

// SignRequest is a unit of work requiring human approval to produce one or
// more signatures. It is a tagged union on Kind: exactly one of the
// kind-specific payloads is populated.
type SignRequest struct {
	ID        string
	Kind      RequestKind
	Transport Transport
	// Origin is the connection id for protocol requests, or the transport's
	// own correlation id for callback/algod requests.
	Origin string

	// KindTransactions: atomic groups in submission order, plus the decoded
	// display projection the navigator consumes.
	TxnGroups [][]WireTransaction
	Display   [][]Transaction

	// KindArbitraryData
	Data *DataPayload

	// KindARC60: opaque structured-data payload, semantics pending.
	ARC60 json.RawMessage

	cont Continuations

	mu      sync.Mutex
	done    bool
	cleanup func()
}

// NewTransactionsRequest builds a KindTransactions request.
func NewTransactionsRequest(id string, transport Transport, origin string, groups [][]WireTransaction, display [][]Transaction, cont Continuations) *SignRequest {
	return &SignRequest{
		ID:        id,
		Kind:      KindTransactions,
		Transport: transport,
		Origin:    origin,
		TxnGroups: groups,
		Display:   display,
		cont:      cont,
	}
}

// NewArbitraryDataRequest builds a KindArbitraryData request.
func NewArbitraryDataRequest(id string, transport Transport, origin string, payload *DataPayload, cont Continuations) *SignRequest {
	return &SignRequest{
		ID:        id,
		Kind:      KindArbitraryData,
		Transport: transport,
		Origin:    origin,
		Data:      payload,
		cont:      cont,
	}
}

// NewARC60Request builds a KindARC60 request around an opaque payload.
func NewARC60Request(id string, transport Transport, origin string, payload json.RawMessage, cont Continuations) *SignRequest {
	return &SignRequest{
		ID:        id,
		Kind:      KindARC60,
		Transport: transport,
		Origin:    origin,
		ARC60:     payload,
		cont:      cont,
	}
}

// RequestID implements queue.Item.
func (r *SignRequest) RequestID() string {
	return r.ID
}

// OnResolve binds a cleanup hook run exactly once, after the request is marked
// resolved and before its continuation fires. The enqueuing side uses it to
// remove the request from its queue, so a request is never still enqueued when
// a continuation runs, whichever path resolved it.
func (r *SignRequest) OnResolve(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleanup = fn
}

// Resolved reports whether a terminal continuation has already fired.
func (r *SignRequest) Resolved() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// Approve fires the approve continuation with the signed output. Subsequent
// terminal calls on the same request are rejected.
func (r *SignRequest) Approve(out SignedOutput) error {
	if err := r.resolve(); err != nil {
		return err
	}
	if r.cont.Approve == nil {
		return nil
	}
	return r.cont.Approve(out)
}

// Reject fires the reject continuation. On the transport side this is a clean
// resolution carrying UserRejected semantics, not an error.
func (r *SignRequest) Reject() error {
	if err := r.resolve(); err != nil {
		return err
	}
	if r.cont.Reject == nil {
		return nil
	}
	return r.cont.Reject()
}

// Fail fires the error continuation with the underlying reason.
func (r *SignRequest) Fail(reason error) error {
	if err := r.resolve(); err != nil {
		return err
	}
	if r.cont.Fail == nil {
		return nil
	}
	return r.cont.Fail(reason)
}

// resolve claims the single terminal transition. Losers of the race get an
// error and must not fire their continuation.
func (r *SignRequest) resolve() error {
	r.mu.Lock()
	if r.done {
		r.mu.Unlock()
		return fmt.Errorf("sign request %s already resolved", r.ID)
	}
	r.done = true
	cleanup := r.cleanup
	r.mu.Unlock()

	if cleanup != nil {
		cleanup()
	}
	return nil
}
