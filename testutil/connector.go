package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/openweb3-io/walletbridge/protocol/wire"
)

// ApprovedCall records one ApproveRequest delivery.
type ApprovedCall struct {
	ID     int64
	Result any
}

// RejectedCall records one RejectRequest delivery.
type RejectedCall struct {
	ID     int64
	Reason error
}

// MockConnector is an in-memory wire.Connector for adapter and bridge tests.
// Set Dead to simulate a connector whose transport has gone away.
type MockConnector struct {
	Peer string
	Dead bool

	mu       sync.Mutex
	handlers map[wire.Event]wire.Handler

	Approved         []ApprovedCall
	Rejected         []RejectedCall
	SessionApprovals []wire.SessionApproval
	SessionRejects   int
	Kills            []string
	Closed           bool
}

var _ wire.Connector = &MockConnector{}

func NewMockConnector(peer string) *MockConnector {
	return &MockConnector{
		Peer:     peer,
		handlers: make(map[wire.Event]wire.Handler),
	}
}

func (m *MockConnector) PeerID() string {
	return m.Peer
}

func (m *MockConnector) On(event wire.Event, handler wire.Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[event] = handler
}

// Emit delivers an inbound event to the registered handler, as the bridge
// socket would.
func (m *MockConnector) Emit(event wire.Event, err error, req wire.Request) {
	m.mu.Lock()
	handler := m.handlers[event]
	m.mu.Unlock()
	if handler != nil {
		handler(err, req)
	}
}

func (m *MockConnector) ApproveSession(_ context.Context, approval wire.SessionApproval) error {
	if m.Dead {
		return errors.New("connector closed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionApprovals = append(m.SessionApprovals, approval)
	return nil
}

func (m *MockConnector) RejectSession(context.Context) error {
	if m.Dead {
		return errors.New("connector closed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionRejects++
	return nil
}

func (m *MockConnector) KillSession(_ context.Context, message string) error {
	if m.Dead {
		return errors.New("connector closed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Kills = append(m.Kills, message)
	return nil
}

func (m *MockConnector) ApproveRequest(_ context.Context, id int64, result any) error {
	if m.Dead {
		return errors.New("connector closed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Approved = append(m.Approved, ApprovedCall{ID: id, Result: result})
	return nil
}

func (m *MockConnector) RejectRequest(_ context.Context, id int64, reason error) error {
	if m.Dead {
		return errors.New("connector closed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rejected = append(m.Rejected, RejectedCall{ID: id, Reason: reason})
	return nil
}

func (m *MockConnector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}
