package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vsslink/vsslink-go/pkg/log"
	"github.com/vsslink/vsslink-go/pkg/signal"
	"github.com/vsslink/vsslink-go/pkg/wire"
)

// ClientConfig configures a broker transport client.
type ClientConfig struct {
	// TLSConfig enables TLS when non-nil. Plain TCP otherwise.
	TLSConfig *tls.Config

	// MaxMessageSize is the maximum message size (default: 64KB).
	MaxMessageSize uint32

	// ConnectTimeout is the connection timeout (default: 30s).
	ConnectTimeout time.Duration

	// Logger receives frame and message events. Nil disables logging.
	Logger log.Logger
}

// Client dials broker endpoints and produces Transport connections.
type Client struct {
	config ClientConfig
}

// NewClient creates a new transport client.
func NewClient(config ClientConfig) *Client {
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = DefaultMaxMessageSize
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 30 * time.Second
	}
	config.Logger = log.OrNoop(config.Logger)
	return &Client{config: config}
}

// Dial establishes a connection to the specified broker address.
func (c *Client) Dial(ctx context.Context, address string) (Transport, error) {
	// Apply timeout from config if context doesn't have one
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ConnectTimeout)
		defer cancel()
	}

	dialer := &net.Dialer{}
	netConn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	if c.config.TLSConfig != nil {
		tlsConn := tls.Client(netConn, c.config.TLSConfig)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			netConn.Close()
			return nil, fmt.Errorf("TLS handshake failed: %w", err)
		}
		netConn = tlsConn
	}

	conn := newConn(netConn, c.config)
	conn.start()
	return conn, nil
}

// Compile-time interface satisfaction check.
var _ Dialer = (*Client)(nil)

// Conn is one live broker connection implementing Transport.
type Conn struct {
	conn   net.Conn
	framer *Framer
	logger log.Logger
	connID string

	nextID atomic.Uint32

	mu       sync.Mutex
	pending  map[uint32]chan *wire.Response
	streams  map[uint32]*stream
	closed   bool
	closeErr error

	failOnce  sync.Once
	closeOnce sync.Once
	closeCh   chan struct{}
	readDone  chan struct{}
}

func newConn(netConn net.Conn, config ClientConfig) *Conn {
	connID := uuid.NewString()
	framer := NewFramerWithMaxSize(netConn, config.MaxMessageSize)
	framer.SetLogger(config.Logger, connID)

	return &Conn{
		conn:     netConn,
		framer:   framer,
		logger:   config.Logger,
		connID:   connID,
		pending:  make(map[uint32]chan *wire.Response),
		streams:  make(map[uint32]*stream),
		closeCh:  make(chan struct{}),
		readDone: make(chan struct{}),
	}
}

// ConnectionID returns the connection's UUID, used in log events.
func (c *Conn) ConnectionID() string {
	return c.connID
}

// RemoteAddr returns the broker's network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *Conn) start() {
	go c.readLoop()
}

// readLoop is the single reader of the connection. It dispatches
// responses to waiting callers and notifications to streams, and fails
// everything when the connection breaks.
func (c *Conn) readLoop() {
	defer close(c.readDone)

	for {
		payload, err := c.framer.ReadFrame()
		if err != nil {
			c.fail(fmt.Errorf("%w: %v", ErrConnectionClosed, err))
			return
		}

		isNotif, err := wire.IsNotification(payload)
		if err != nil {
			c.logError("classify incoming frame", err)
			continue
		}

		if isNotif {
			n, err := wire.DecodeNotification(payload)
			if err != nil {
				c.logError("decode notification", err)
				continue
			}
			c.routeNotification(n)
			continue
		}

		resp, err := wire.DecodeResponse(payload)
		if err != nil {
			c.logError("decode response", err)
			continue
		}
		c.deliverResponse(resp)
	}
}

func (c *Conn) deliverResponse(resp *wire.Response) {
	c.mu.Lock()
	ch := c.pending[resp.MessageID]
	delete(c.pending, resp.MessageID)
	c.mu.Unlock()

	c.logMessage(log.DirectionIn, &log.MessageEvent{
		Type:      log.MessageTypeResponse,
		MessageID: resp.MessageID,
		Status:    &resp.Status,
	})

	if ch != nil {
		ch <- resp // buffered, never blocks
	}
}

func (c *Conn) routeNotification(n *wire.Notification) {
	subID := n.SubscriptionID

	c.logMessage(log.DirectionIn, &log.MessageEvent{
		Type:           log.MessageTypeNotification,
		MessageID:      wire.NotificationMessageID,
		Path:           n.Path,
		SubscriptionID: &subID,
	})

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	s := c.streams[subID]
	if s == nil {
		if n.End {
			c.mu.Unlock()
			return
		}
		// The subscribe response may not have been consumed yet;
		// queue updates so none are lost in that window.
		s = newStream(subID, c)
		c.streams[subID] = s
	}
	if n.End {
		delete(c.streams, subID)
	}
	c.mu.Unlock()

	if n.End {
		s.end(nil)
		return
	}
	s.enqueue(n.Update())
}

// call performs one request/response exchange.
func (c *Conn) call(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	req.MessageID = c.nextID.Add(1)

	data, err := wire.EncodeRequest(req)
	if err != nil {
		return nil, err
	}

	ch := make(chan *wire.Response, 1)

	c.mu.Lock()
	if c.closed {
		err := c.closeErr
		c.mu.Unlock()
		return nil, err
	}
	c.pending[req.MessageID] = ch
	c.mu.Unlock()

	field := req.Field
	view := req.View
	c.logMessage(log.DirectionOut, &log.MessageEvent{
		Type:      log.MessageTypeRequest,
		MessageID: req.MessageID,
		Operation: &req.Operation,
		Path:      req.Path,
		Field:     &field,
		View:      &view,
	})

	if err := c.framer.WriteFrame(data); err != nil {
		c.unregister(req.MessageID)
		return nil, fmt.Errorf("%s request failed: %w", req.Operation, err)
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		c.unregister(req.MessageID)
		return nil, ctx.Err()
	case <-c.closeCh:
		c.mu.Lock()
		err := c.closeErr
		c.mu.Unlock()
		return nil, err
	}
}

func (c *Conn) unregister(messageID uint32) {
	c.mu.Lock()
	delete(c.pending, messageID)
	c.mu.Unlock()
}

// Get reads an entry value for the given view.
func (c *Conn) Get(ctx context.Context, path string, view signal.View) (string, error) {
	resp, err := c.call(ctx, &wire.Request{
		Operation: wire.OpGet,
		Path:      path,
		View:      view,
	})
	if err != nil {
		return "", err
	}
	if resp.Status.IsError() {
		return "", &StatusError{Op: wire.OpGet, Path: path, Status: resp.Status, Detail: resp.Detail}
	}
	return resp.Value, nil
}

// Set writes an entry field.
func (c *Conn) Set(ctx context.Context, path, value string, field signal.Field) error {
	resp, err := c.call(ctx, &wire.Request{
		Operation: wire.OpSet,
		Path:      path,
		Field:     field,
		Value:     value,
	})
	if err != nil {
		return err
	}
	if resp.Status.IsError() {
		return &StatusError{Op: wire.OpSet, Path: path, Status: resp.Status, Detail: resp.Detail}
	}
	return nil
}

// OpenStream opens a subscription stream for an entry field.
func (c *Conn) OpenStream(ctx context.Context, path string, field signal.Field) (Stream, error) {
	resp, err := c.call(ctx, &wire.Request{
		Operation: wire.OpSubscribe,
		Path:      path,
		Field:     field,
	})
	if err != nil {
		return nil, err
	}
	if resp.Status.IsError() {
		return nil, &StatusError{Op: wire.OpSubscribe, Path: path, Status: resp.Status, Detail: resp.Detail}
	}

	c.mu.Lock()
	if c.closed {
		err := c.closeErr
		c.mu.Unlock()
		return nil, err
	}
	s := c.streams[resp.SubscriptionID]
	if s == nil {
		s = newStream(resp.SubscriptionID, c)
		c.streams[resp.SubscriptionID] = s
	}
	c.mu.Unlock()

	return s, nil
}

// ServerInfo returns broker diagnostic information.
func (c *Conn) ServerInfo(ctx context.Context) (Info, error) {
	resp, err := c.call(ctx, &wire.Request{Operation: wire.OpInfo})
	if err != nil {
		return Info{}, err
	}
	if resp.Status.IsError() {
		return Info{}, &StatusError{Op: wire.OpInfo, Status: resp.Status, Detail: resp.Detail}
	}
	return Info{Name: resp.ServerName, Version: resp.ServerVersion}, nil
}

// Close tears down the connection.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
		c.fail(ErrConnectionClosed)
		<-c.readDone
	})
	return err
}

// fail marks the connection dead and unblocks every waiter.
func (c *Conn) fail(cause error) {
	c.failOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.closeErr = cause
		streams := c.streams
		c.streams = make(map[uint32]*stream)
		c.pending = make(map[uint32]chan *wire.Response)
		c.mu.Unlock()

		close(c.closeCh)
		c.conn.Close()

		for _, s := range streams {
			s.end(cause)
		}

		c.logger.Log(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: c.connID,
			Direction:    log.DirectionIn,
			Layer:        log.LayerTransport,
			Category:     log.CategoryState,
			RemoteAddr:   c.conn.RemoteAddr().String(),
			StateChange: &log.StateChangeEvent{
				Entity:   log.StateEntityConnection,
				OldState: "CONNECTED",
				NewState: "CLOSED",
				Reason:   cause.Error(),
			},
		})
	})
}

func (c *Conn) removeStream(subID uint32) {
	c.mu.Lock()
	delete(c.streams, subID)
	c.mu.Unlock()
}

func (c *Conn) logMessage(direction log.Direction, msg *log.MessageEvent) {
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Direction:    direction,
		Layer:        log.LayerWire,
		Category:     log.CategoryMessage,
		Message:      msg,
	})
}

func (c *Conn) logError(context string, err error) {
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerWire,
		Category:     log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerWire,
			Message: err.Error(),
			Context: context,
		},
	})
}
