package wire

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/openweb3-io/walletbridge/types"
)

const (
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 10 * time.Second
	pingInterval     = 30 * time.Second
)

// frame is one JSON-RPC 2.0 message on the bridge socket.
type frame struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("wire error %d: %s", e.Code, e.Message)
}

// Client speaks the wallet-pairing wire protocol over a websocket bridge.
// One Client per paired connection.
type Client struct {
	peerID string
	conn   *websocket.Conn
	log    *logrus.Entry

	writeMu sync.Mutex

	handlerMu sync.RWMutex
	handlers  map[Event]Handler

	// idMu guards sessionReqID and nextID; the former is written by the read
	// loop and read by callers responding to the pending session_request.
	idMu sync.Mutex
	// sessionReqID is the JSON-RPC id of the pending session_request, so
	// ApproveSession/RejectSession can respond to it.
	sessionReqID int64
	nextID       int64
	closeCh   chan struct{}
	closeOnce sync.Once
}

var _ Connector = &Client{}

// Dial connects to a bridge endpoint and starts the read loop.
func Dial(ctx context.Context, endpoint string) (*Client, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
	}
	conn, resp, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "dial bridge")
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	client := &Client{
		peerID:   uuid.NewString(),
		conn:     conn,
		log:      logrus.WithField("endpoint", endpoint),
		handlers: make(map[Event]Handler),
		closeCh:  make(chan struct{}),
	}
	go client.readLoop()
	go client.pingLoop()
	return client, nil
}

func (c *Client) PeerID() string {
	return c.peerID
}

func (c *Client) On(event Event, handler Handler) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.handlers[event] = handler
}

func (c *Client) ApproveSession(ctx context.Context, approval SessionApproval) error {
	result, err := json.Marshal(struct {
		Approved bool `json:"approved"`
		SessionApproval
	}{true, approval})
	if err != nil {
		return err
	}
	return c.write(ctx, frame{JSONRPC: "2.0", ID: c.pendingSessionID(), Result: result})
}

func (c *Client) RejectSession(ctx context.Context) error {
	return c.write(ctx, frame{JSONRPC: "2.0", ID: c.pendingSessionID(), Error: &rpcError{
		Code:    types.ErrUserRejected.Code,
		Message: types.ErrUserRejected.Message,
	}})
}

func (c *Client) pendingSessionID() int64 {
	c.idMu.Lock()
	defer c.idMu.Unlock()
	return c.sessionReqID
}

func (c *Client) KillSession(ctx context.Context, message string) error {
	params, err := json.Marshal([]map[string]string{{"message": message}})
	if err != nil {
		return err
	}
	c.idMu.Lock()
	c.nextID++
	id := c.nextID
	c.idMu.Unlock()
	return c.write(ctx, frame{JSONRPC: "2.0", ID: id, Method: "wc_killSession", Params: params})
}

func (c *Client) ApproveRequest(ctx context.Context, id int64, result any) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "encode approval result")
	}
	return c.write(ctx, frame{JSONRPC: "2.0", ID: id, Result: raw})
}

func (c *Client) RejectRequest(ctx context.Context, id int64, reason error) error {
	rpcErr := &rpcError{Code: types.ErrUserRejected.Code, Message: types.ErrUserRejected.Message}
	var typed *types.Error
	if errors.As(reason, &typed) {
		rpcErr = &rpcError{Code: typed.Code, Message: typed.Message}
	} else if reason != nil {
		rpcErr.Message = reason.Error()
	}
	return c.write(ctx, frame{JSONRPC: "2.0", ID: id, Error: rpcErr})
}

func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.closeCh)
		_ = c.conn.Close()
	})
	return nil
}

func (c *Client) write(ctx context.Context, f frame) error {
	select {
	case <-c.closeCh:
		return errors.New("connector closed")
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.conn.SetWriteDeadline(deadline)
	if err := c.conn.WriteJSON(&f); err != nil {
		return errors.Wrap(err, "write frame")
	}
	return nil
}

func (c *Client) readLoop() {
	defer c.Close()

	for {
		select {
		case <-c.closeCh:
			return
		default:
		}

		var f frame
		if err := c.conn.ReadJSON(&f); err != nil {
			select {
			case <-c.closeCh:
			default:
				c.log.WithError(err).Debug("bridge read failed")
				c.dispatch(EventDisconnect, nil, Request{Method: EventDisconnect})
			}
			return
		}
		c.route(f)
	}
}

func (c *Client) route(f frame) {
	event := Event(f.Method)
	req := Request{ID: f.ID, Method: event, Params: f.Params}

	switch event {
	case EventSessionRequest:
		c.idMu.Lock()
		c.sessionReqID = f.ID
		c.idMu.Unlock()
		c.dispatch(event, nil, req)
	case EventSignData, EventSignTxns, EventDisconnect:
		c.dispatch(event, nil, req)
	case EventError:
		var params ErrorParams
		err := json.Unmarshal(f.Params, &params)
		if err == nil {
			err = &rpcError{Code: params.Code, Message: params.Message}
		}
		c.dispatch(event, err, req)
	default:
		c.log.WithField("method", f.Method).Debug("unhandled bridge frame")
	}
}

func (c *Client) dispatch(event Event, err error, req Request) {
	c.handlerMu.RLock()
	handler := c.handlers[event]
	c.handlerMu.RUnlock()
	if handler == nil {
		c.log.WithField("event", string(event)).Debug("no handler registered")
		return
	}
	handler(err, req)
}

func (c *Client) pingLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.closeCh:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				c.log.WithError(err).Debug("bridge ping failed")
				return
			}
		}
	}
}
