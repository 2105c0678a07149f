package wire

import (
	"context"
	"encoding/json"

	"github.com/openweb3-io/walletbridge/types"
)

// Event is a wire protocol event consumed by the session adapter.
type Event string

// Wire protocol events
const (
	EventSessionRequest = Event("session_request")
	EventSignData       = Event("algo_signData")
	EventSignTxns       = Event("algo_signTxn")
	EventDisconnect     = Event("disconnect")
	EventError          = Event("error")
)

// Request is one inbound event occurrence. ID correlates the eventual
// approve/reject response on the wire.
type Request struct {
	ID     int64
	Method Event
	Params json.RawMessage
}

// Handler receives an inbound event as (error, payload). A non-nil error
// means the transport delivered a protocol error alongside (or instead of)
// the payload.
type Handler func(err error, req Request)

// SessionApproval is the outbound payload of an approved pairing.
type SessionApproval struct {
	ChainID  types.ChainID `json:"chainId"`
	Accounts []string      `json:"accounts"`
}

// Connector is one live wallet-pairing wire connection. The callback-based
// wire API is wrapped behind promise-style methods returning typed errors so
// the core never sequences nested callbacks.
type Connector interface {
	// PeerID is the connector-assigned client id for this connection.
	PeerID() string
	// On registers the handler for an inbound event. One handler per event.
	On(event Event, handler Handler)

	ApproveSession(ctx context.Context, approval SessionApproval) error
	RejectSession(ctx context.Context) error
	KillSession(ctx context.Context, message string) error
	// ApproveRequest resolves the wire request with the given id.
	ApproveRequest(ctx context.Context, id int64, result any) error
	// RejectRequest resolves the wire request with an error. A user
	// rejection is a clean resolution on the wire, not a transport failure.
	RejectRequest(ctx context.Context, id int64, reason error) error

	Close() error
}

// SessionRequestParams is the inbound payload of a session_request event.
type SessionRequestParams struct {
	PeerID      string             `json:"peerId"`
	PeerMeta    types.PeerMeta     `json:"peerMeta"`
	ChainID     types.ChainID      `json:"chainId"`
	Permissions []types.Permission `json:"permissions,omitempty"`
}

// WalletTransaction is one transaction inside an algo_signTxn payload. Txn is
// the base64 wire binary of the unsigned transaction. AuthAddr, when present,
// names the authorizing address to sign with instead of the sender.
type WalletTransaction struct {
	Txn      string `json:"txn"`
	AuthAddr string `json:"authAddr,omitempty"`
	Message  string `json:"message,omitempty"`
}

// SignTxnsParams is the inbound payload of algo_signTxn: atomic groups in
// submission order, each an ordered list of transactions.
type SignTxnsParams struct {
	ChainID types.ChainID         `json:"chainId,omitempty"`
	Groups  [][]WalletTransaction `json:"groups"`
}

// SignDataParams is the inbound payload of algo_signData.
type SignDataParams struct {
	ChainID types.ChainID `json:"chainId,omitempty"`
	Signer  string        `json:"signer"`
	Message string        `json:"message,omitempty"`
	// Data is the base64 payload to sign.
	Data string `json:"data"`
}

// ErrorParams is the inbound payload of an error event.
type ErrorParams struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}
