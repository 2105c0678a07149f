package protocol

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/openweb3-io/walletbridge/accounts"
	"github.com/openweb3-io/walletbridge/codec"
	"github.com/openweb3-io/walletbridge/protocol/wire"
	"github.com/openweb3-io/walletbridge/queue"
	"github.com/openweb3-io/walletbridge/registry"
	"github.com/openweb3-io/walletbridge/types"
	"github.com/openweb3-io/walletbridge/validation"
)

const dispatchTimeout = 15 * time.Second

// Adapter translates wire protocol events for one live connection into
// validated internal requests, and routes approve/reject decisions back to
// the wire. One instance per connection, constructed on connect and torn
// down on disconnect or kill.
type Adapter struct {
	connID    string
	connector wire.Connector
	reg       *registry.Registry
	dir       accounts.Directory
	activeNet func() types.Network

	signQueue    *queue.Queue[*types.SignRequest]
	sessionQueue *queue.Queue[*types.SessionRequest]

	log *logrus.Entry
}

// Deps carries the collaborators an adapter needs.
type Deps struct {
	Registry      *registry.Registry
	Directory     accounts.Directory
	ActiveNetwork func() types.Network
	SignQueue     *queue.Queue[*types.SignRequest]
	SessionQueue  *queue.Queue[*types.SessionRequest]
}

// New binds an adapter to a live connector. The connection id is the
// connector-assigned client id.
func New(connector wire.Connector, deps Deps) *Adapter {
	return &Adapter{
		connID:       connector.PeerID(),
		connector:    connector,
		reg:          deps.Registry,
		dir:          deps.Directory,
		activeNet:    deps.ActiveNetwork,
		signQueue:    deps.SignQueue,
		sessionQueue: deps.SessionQueue,
		log:          logrus.WithField("connection", connector.PeerID()),
	}
}

// ConnectionID returns the id of the connection this adapter serves.
func (a *Adapter) ConnectionID() string {
	return a.connID
}

// Connector exposes the underlying wire connector.
func (a *Adapter) Connector() wire.Connector {
	return a.connector
}

// HandleSessionRequest enqueues a pairing request for out-of-band approval.
// Pairing decisions never share a queue with signing decisions.
func (a *Adapter) HandleSessionRequest(inboundErr error, req wire.Request) (*types.SessionRequest, error) {
	if inboundErr != nil {
		return nil, types.WrapErr(types.ErrSignRequest, inboundErr)
	}
	var params wire.SessionRequestParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, types.WrapErr(types.ErrSignRequest, err)
	}

	session := &types.SessionRequest{
		ID:           uuid.NewString(),
		ConnectionID: a.connID,
		Peer:         params.PeerMeta,
		ChainID:      params.ChainID,
		Permissions:  params.Permissions,
		Raised:       time.Now(),
	}
	a.sessionQueue.Enqueue(session)
	a.log.WithFields(logrus.Fields{
		"peer":     params.PeerMeta.Name,
		"chain_id": params.ChainID,
	}).Info("session request queued")
	return session, nil
}

// HandleSignData validates an algo_signData event and enqueues an
// arbitrary-data sign request. Validation failures propagate to the caller;
// they are never converted into a transport-level reject, since the failure
// may mean the event itself is untrustworthy.
func (a *Adapter) HandleSignData(inboundErr error, req wire.Request) error {
	if inboundErr != nil {
		return types.WrapErr(types.ErrSignRequest, inboundErr)
	}
	var params wire.SignDataParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return types.WrapErr(types.ErrSignRequest, err)
	}

	if err := validation.Validate(a.reg, a.dir, a.activeNet(), a.connID, params.ChainID, params.Signer); err != nil {
		return err
	}

	data, err := base64.StdEncoding.DecodeString(params.Data)
	if err != nil {
		return types.WrapErr(types.ErrSignRequest, err)
	}

	payload := &types.DataPayload{
		Message: params.Message,
		Data:    data,
		ChainID: params.ChainID,
		Signer:  params.Signer,
	}
	request := types.NewArbitraryDataRequest(
		uuid.NewString(), types.TransportProtocol, a.connID, payload,
		a.dataContinuations(req.ID),
	)
	a.enqueue(request)
	a.log.WithField("signer", params.Signer).Info("sign-data request queued")
	return nil
}

// HandleSignTxns validates an algo_signTxn event and enqueues a transactions
// sign request covering every atomic group in the payload.
func (a *Adapter) HandleSignTxns(inboundErr error, req wire.Request) error {
	if inboundErr != nil {
		return types.WrapErr(types.ErrSignRequest, inboundErr)
	}
	var params wire.SignTxnsParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return types.WrapErr(types.ErrSignRequest, err)
	}

	groups, err := a.decodeGroups(params.Groups)
	if err != nil {
		return err
	}
	signers := signingAddresses(groups)
	if len(signers) == 0 {
		// No per-transaction signer to check; still gate on session/network.
		signers = []string{""}
	}
	for _, signer := range signers {
		if err := validation.Validate(a.reg, a.dir, a.activeNet(), a.connID, params.ChainID, signer); err != nil {
			return err
		}
	}

	request := types.NewTransactionsRequest(
		uuid.NewString(), types.TransportProtocol, a.connID,
		groups, codec.DisplayGroups(groups),
		a.txnContinuations(req.ID, groups),
	)
	a.enqueue(request)
	a.log.WithField("groups", len(groups)).Info("sign-transaction request queued")
	return nil
}

// HandleDisconnect removes the connection from the registry. In-flight sign
// requests tied to it stay queued; their eventual approve/reject against the
// dead connector resolves as a local removal.
func (a *Adapter) HandleDisconnect() {
	if err := a.reg.Remove(a.connID); err != nil {
		a.log.WithError(err).Warn("failed to remove disconnected session")
		return
	}
	a.log.Info("session disconnected")
}

// HandleError logs and drops an error event; it never throws into the host.
func (a *Adapter) HandleError(inboundErr error) {
	a.log.WithError(inboundErr).Warn("wire protocol error")
}

// enqueue binds queue removal to the request's resolution before admitting
// it: whichever path resolves the request, it is off the queue by the time
// its continuation fires.
func (a *Adapter) enqueue(request *types.SignRequest) {
	request.OnResolve(func() { a.signQueue.Remove(request.ID) })
	a.signQueue.Enqueue(request)
}

func (a *Adapter) decodeGroups(raw [][]wire.WalletTransaction) ([][]types.WireTransaction, error) {
	groups := make([][]types.WireTransaction, 0, len(raw))
	for _, rawGroup := range raw {
		group := make([]types.WireTransaction, 0, len(rawGroup))
		for _, wt := range rawGroup {
			blob, err := base64.StdEncoding.DecodeString(wt.Txn)
			if err != nil {
				return nil, types.WrapErr(types.ErrSignRequest, err)
			}
			txn, err := codec.DecodeUnsigned(blob)
			if err != nil {
				return nil, err
			}
			group = append(group, types.WireTransaction{Txn: txn, AuthAddr: wt.AuthAddr})
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// dataContinuations routes an arbitrary-data decision back over the wire,
// correlated by the originating event id.
func (a *Adapter) dataContinuations(eventID int64) types.Continuations {
	return types.Continuations{
		Approve: func(out types.SignedOutput) error {
			result := make([]string, 0, len(out.Signatures))
			for _, sig := range out.Signatures {
				result = append(result, base64.StdEncoding.EncodeToString(sig))
			}
			return a.deliver(func(ctx context.Context) error {
				return a.connector.ApproveRequest(ctx, eventID, result)
			})
		},
		Reject: func() error {
			return a.deliver(func(ctx context.Context) error {
				return a.connector.RejectRequest(ctx, eventID, types.ErrUserRejected)
			})
		},
		Fail: func(reason error) error {
			return a.deliver(func(ctx context.Context) error {
				return a.connector.RejectRequest(ctx, eventID, types.WrapErr(types.ErrSignRequest, reason))
			})
		},
	}
}

// txnContinuations routes a transactions decision back over the wire. Approve
// re-encodes each signed transaction into wire binary, preferring the
// peer-supplied authorizing address over the original sender, and sends one
// encoded result per group. Empty input yields an empty, still-successful
// approve call.
func (a *Adapter) txnContinuations(eventID int64, groups [][]types.WireTransaction) types.Continuations {
	return types.Continuations{
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
						return a.deliver(func(ctx context.Context) error {
							return a.connector.RejectRequest(ctx, eventID, err)
						})
					}
					encoded = append(encoded, base64.StdEncoding.EncodeToString(blob))
				}
				result = append(result, encoded)
			}
			return a.deliver(func(ctx context.Context) error {
				return a.connector.ApproveRequest(ctx, eventID, result)
			})
		},
		Reject: func() error {
			return a.deliver(func(ctx context.Context) error {
				return a.connector.RejectRequest(ctx, eventID, types.ErrUserRejected)
			})
		},
		Fail: func(reason error) error {
			return a.deliver(func(ctx context.Context) error {
				return a.connector.RejectRequest(ctx, eventID, types.WrapErr(types.ErrSignRequest, reason))
			})
		},
	}
}

// deliver runs one outbound connector call. A failure here usually means the
// connector died after the request was queued; that resolves as a local
// removal rather than propagating into the decision path.
func (a *Adapter) deliver(send func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()
	if err := send(ctx); err != nil {
		a.log.WithError(err).Warn("connector unreachable, resolving locally")
		return nil
	}
	return nil
}

// signingAddresses returns the distinct addresses expected to sign, in first
// appearance order. The authorizing address takes precedence over the sender.
func signingAddresses(groups [][]types.WireTransaction) []string {
	seen := make(map[string]bool)
	var out []string
	for _, group := range groups {
		for _, wt := range group {
			addr := wt.AuthAddr
			if addr == "" {
				if wt.Txn.Sender.IsZero() {
					continue
				}
				addr = wt.Txn.Sender.String()
			}
			if seen[addr] {
				continue
			}
			seen[addr] = true
			out = append(out, addr)
		}
	}
	return out
}
