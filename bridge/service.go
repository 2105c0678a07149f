package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	sdktypes "github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/sirupsen/logrus"

	"github.com/openweb3-io/walletbridge/accounts"
	"github.com/openweb3-io/walletbridge/navigator"
	"github.com/openweb3-io/walletbridge/protocol"
	"github.com/openweb3-io/walletbridge/protocol/wire"
	"github.com/openweb3-io/walletbridge/queue"
	"github.com/openweb3-io/walletbridge/registry"
	"github.com/openweb3-io/walletbridge/types"
)

// Service is the session-management core: it owns the registry, both request
// queues, and one protocol adapter per live connection, threaded explicitly
// rather than through a global singleton. All decision paths funnel through
// its mutex, making the queue and registry single-writer-at-a-time.
type Service struct {
	mu sync.Mutex

	reg    *registry.Registry
	dir    accounts.Directory
	active types.Network

	signQueue    *queue.Queue[*types.SignRequest]
	sessionQueue *queue.Queue[*types.SessionRequest]

	adapters map[string]*protocol.Adapter

	// nav is scoped to the head sign request and discarded, never reused,
	// when the head changes.
	nav    *navigator.Navigator
	navFor string

	// surface receives boundary failures the host should show (toast/log).
	surface func(error)

	log *logrus.Entry
}

// NewService builds the bridge core around a registry and account directory,
// with the given initially active network.
func NewService(reg *registry.Registry, dir accounts.Directory, active types.Network) *Service {
	s := &Service{
		reg:          reg,
		dir:          dir,
		active:       active,
		signQueue:    queue.New[*types.SignRequest](),
		sessionQueue: queue.New[*types.SessionRequest](),
		adapters:     make(map[string]*protocol.Adapter),
		log:          logrus.WithField("component", "bridge"),
	}
	s.surface = func(err error) {
		s.log.WithError(err).Warn("inbound event rejected")
	}
	return s
}

// OnSurface replaces the boundary-failure hook. Invalid inbound events never
// reach the review surface; they land here instead.
func (s *Service) OnSurface(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surface = fn
}

// ActiveNetwork returns the currently active network.
func (s *Service) ActiveNetwork() types.Network {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SetActiveNetwork switches the active network used by validation.
func (s *Service) SetActiveNetwork(network types.Network) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = network
}

// Connect binds a protocol adapter to a live connector and registers its
// event handlers. The adapter map entry lives until disconnect or kill.
func (s *Service) Connect(connector wire.Connector) *protocol.Adapter {
	adapter := protocol.New(connector, protocol.Deps{
		Registry:      s.reg,
		Directory:     s.dir,
		ActiveNetwork: s.ActiveNetwork,
		SignQueue:     s.signQueue,
		SessionQueue:  s.sessionQueue,
	})

	connector.On(wire.EventSessionRequest, func(err error, req wire.Request) {
		if _, handleErr := adapter.HandleSessionRequest(err, req); handleErr != nil {
			s.surface(handleErr)
		}
	})
	connector.On(wire.EventSignData, func(err error, req wire.Request) {
		if handleErr := adapter.HandleSignData(err, req); handleErr != nil {
			s.surface(handleErr)
		}
	})
	connector.On(wire.EventSignTxns, func(err error, req wire.Request) {
		if handleErr := adapter.HandleSignTxns(err, req); handleErr != nil {
			s.surface(handleErr)
		}
	})
	connector.On(wire.EventDisconnect, func(error, wire.Request) {
		adapter.HandleDisconnect()
		s.dropAdapter(adapter.ConnectionID())
	})
	connector.On(wire.EventError, func(err error, _ wire.Request) {
		adapter.HandleError(err)
	})

	s.mu.Lock()
	s.adapters[adapter.ConnectionID()] = adapter
	s.mu.Unlock()
	return adapter
}

// KillSession tears a connection down from the wallet side: the peer is told,
// the record is removed, and the adapter is torn down. Pending sign requests
// from the connection stay queued for an explicit decision.
func (s *Service) KillSession(ctx context.Context, connID, message string) error {
	s.mu.Lock()
	adapter, ok := s.adapters[connID]
	s.mu.Unlock()
	if !ok {
		return types.WrapErr(types.ErrInvalidSession, nil)
	}
	if err := adapter.Connector().KillSession(ctx, message); err != nil {
		s.log.WithError(err).Warn("kill notification failed, removing anyway")
	}
	if err := s.reg.Remove(connID); err != nil {
		return err
	}
	_ = adapter.Connector().Close()
	s.dropAdapter(connID)
	return nil
}

// PendingSessionRequests lists pairing requests awaiting approval.
func (s *Service) PendingSessionRequests() []*types.SessionRequest {
	return s.sessionQueue.Snapshot()
}

// ApproveSession approves a pairing request, creating (or refreshing) the
// connection record with the granted addresses and responding on the wire.
func (s *Service) ApproveSession(ctx context.Context, sessionID string, addresses []string) error {
	session, ok := s.sessionQueue.Find(sessionID)
	if !ok {
		return types.WrapErr(types.ErrInvalidSession, nil)
	}
	s.mu.Lock()
	adapter, ok := s.adapters[session.ConnectionID]
	s.mu.Unlock()
	if !ok {
		return types.WrapErr(types.ErrInvalidSession, nil)
	}

	permissions := session.Permissions
	if len(permissions) == 0 {
		permissions = []types.Permission{types.PermissionReadAccounts, types.PermissionSignTransaction}
	}
	// The wire call goes first: a failed delivery must not leave a live
	// connection record behind. The session request stays queued for a retry.
	if err := adapter.Connector().ApproveSession(ctx, wire.SessionApproval{
		ChainID:  session.ChainID,
		Accounts: addresses,
	}); err != nil {
		return err
	}
	conn := types.Connection{
		ID:          session.ConnectionID,
		Peer:        session.Peer,
		ChainID:     session.ChainID,
		Permissions: permissions,
		Addresses:   addresses,
		Connected:   true,
		LastActive:  time.Now(),
	}
	if err := s.reg.Upsert(conn); err != nil {
		return err
	}
	s.sessionQueue.Remove(sessionID)
	return nil
}

// RejectSession declines a pairing request.
func (s *Service) RejectSession(ctx context.Context, sessionID string) error {
	session, ok := s.sessionQueue.Find(sessionID)
	if !ok {
		return types.WrapErr(types.ErrInvalidSession, nil)
	}
	s.mu.Lock()
	adapter, ok := s.adapters[session.ConnectionID]
	s.mu.Unlock()
	if ok {
		if err := adapter.Connector().RejectSession(ctx); err != nil {
			s.log.WithError(err).Warn("session rejection not delivered")
		}
	}
	s.sessionQueue.Remove(sessionID)
	return nil
}

// EnqueueSignRequest admits an already-synthesized request, used by the
// callback/deeplink transports. Arrival order across transports is decision
// order; there is no priority inversion. Resolution removes the request from
// the queue even when a continuation is fired outside the service.
func (s *Service) EnqueueSignRequest(req *types.SignRequest) {
	req.OnResolve(func() { s.signQueue.Remove(req.ID) })
	s.signQueue.Enqueue(req)
}

// CurrentHeadSignRequest returns the request awaiting decision, if any.
func (s *Service) CurrentHeadSignRequest() (*types.SignRequest, bool) {
	return s.signQueue.Head()
}

// PendingSignRequests returns the queue contents in arrival order.
func (s *Service) PendingSignRequests() []*types.SignRequest {
	return s.signQueue.Snapshot()
}

// Navigator returns the drill-down state for the head request, valid only
// while that request is a transactions request and remains the head.
func (s *Service) Navigator() (*navigator.Navigator, bool) {
	head, ok := s.signQueue.Head()
	if !ok || head.Kind != types.KindTransactions {
		s.mu.Lock()
		s.nav, s.navFor = nil, ""
		s.mu.Unlock()
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.navFor != head.ID {
		s.nav = navigator.New(head.Display)
		s.navFor = head.ID
	}
	return s.nav, true
}

// ApproveHead signs and approves the head request. Signing happens here, at
// the single exhaustive dispatch over the request union; signer failures
// resolve the request through its error continuation, never panic or hang.
// The mutex is held across head-read, conclusion, and continuation, so two
// concurrent decisions cannot observe the same head.
func (s *Service) ApproveHead(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	head, ok := s.signQueue.Head()
	if !ok {
		return fmt.Errorf("no sign request pending")
	}

	switch head.Kind {
	case types.KindTransactions:
		out, err := s.signGroups(head)
		if err != nil {
			s.conclude(head)
			if failErr := head.Fail(err); failErr != nil {
				s.log.WithError(failErr).Warn("error continuation failed")
			}
			return err
		}
		s.conclude(head)
		return head.Approve(out)
	case types.KindArbitraryData:
		out, err := s.signData(head)
		if err != nil {
			s.conclude(head)
			if failErr := head.Fail(err); failErr != nil {
				s.log.WithError(failErr).Warn("error continuation failed")
			}
			return err
		}
		s.conclude(head)
		return head.Approve(out)
	case types.KindARC60:
		// Payload semantics are unspecified pending product definition;
		// approval is not available, only an explicit reject.
		return types.WrapErr(types.ErrSignRequest, fmt.Errorf("arc60 approval not supported"))
	default:
		return fmt.Errorf("unknown sign request kind %q", head.Kind)
	}
}

// Outcome is a holder decision on the head request.
type Outcome int

const (
	OutcomeApprove Outcome = iota
	OutcomeReject
)

// ResolveHead applies a holder decision to the head request.
func (s *Service) ResolveHead(ctx context.Context, outcome Outcome) error {
	switch outcome {
	case OutcomeApprove:
		return s.ApproveHead(ctx)
	case OutcomeReject:
		return s.RejectHead()
	default:
		return fmt.Errorf("unknown outcome %d", outcome)
	}
}

// RejectHead rejects the head request. On the transport side this resolves
// cleanly with UserRejected semantics.
func (s *Service) RejectHead() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	head, ok := s.signQueue.Head()
	if !ok {
		return fmt.Errorf("no sign request pending")
	}
	s.conclude(head)
	return head.Reject()
}

// Reject rejects a queued request by id, head or not.
func (s *Service) Reject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.signQueue.Remove(id)
	if !ok {
		return fmt.Errorf("no queued sign request %s", id)
	}
	s.discardNavigatorFor(id)
	return req.Reject()
}

// conclude removes a request from the queue ahead of firing its continuation;
// a request is never left enqueued after its continuation fires. Caller holds
// s.mu.
func (s *Service) conclude(req *types.SignRequest) {
	s.signQueue.Remove(req.ID)
	s.discardNavigatorFor(req.ID)
}

// Caller holds s.mu.
func (s *Service) discardNavigatorFor(id string) {
	if s.navFor == id {
		s.nav, s.navFor = nil, ""
	}
}

func (s *Service) dropAdapter(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.adapters, connID)
}

// signGroups produces the signed output for a transactions request, merging
// per-address signer results within each group.
func (s *Service) signGroups(req *types.SignRequest) (types.SignedOutput, error) {
	out := types.SignedOutput{Groups: make([][]sdktypes.SignedTxn, 0, len(req.TxnGroups))}
	for _, group := range req.TxnGroups {
		txns := make([]sdktypes.Transaction, len(group))
		bySigner := make(map[string][]int)
		for j, wt := range group {
			txns[j] = wt.Txn
			addr := wt.AuthAddr
			if addr == "" {
				addr = wt.Txn.Sender.String()
			}
			bySigner[addr] = append(bySigner[addr], j)
		}

		signed := make([]sdktypes.SignedTxn, len(group))
		for addr, indices := range bySigner {
			signer, err := s.dir.SignerFor(addr)
			if err != nil {
				return types.SignedOutput{}, types.WrapErr(types.ErrInvalidSigner, err)
			}
			partial, err := signer.Sign(txns, indices)
			if err != nil {
				return types.SignedOutput{}, types.WrapErr(types.ErrSignRequest, err)
			}
			for _, idx := range indices {
				signed[idx] = partial[idx]
			}
		}
		out.Groups = append(out.Groups, signed)
	}
	return out, nil
}

func (s *Service) signData(req *types.SignRequest) (types.SignedOutput, error) {
	signer, err := s.dir.SignerFor(req.Data.Signer)
	if err != nil {
		return types.SignedOutput{}, types.WrapErr(types.ErrInvalidSigner, err)
	}
	sig, err := signer.SignData(req.Data.Data)
	if err != nil {
		return types.SignedOutput{}, types.WrapErr(types.ErrSignRequest, err)
	}
	return types.SignedOutput{Signatures: [][]byte{sig}}, nil
}
