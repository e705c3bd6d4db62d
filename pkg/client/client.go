package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vsslink/vsslink-go/pkg/config"
	"github.com/vsslink/vsslink-go/pkg/connection"
	"github.com/vsslink/vsslink-go/pkg/log"
	"github.com/vsslink/vsslink-go/pkg/signal"
	"github.com/vsslink/vsslink-go/pkg/subscription"
	"github.com/vsslink/vsslink-go/pkg/transport"
)

// Options customizes client construction. The zero value is usable.
type Options struct {
	// Logger receives client events. Nil disables logging unless
	// Config.Debug is set, in which case events go to slog.
	Logger log.Logger

	// Dialer overrides the transport dialer. Tests inject fakes here.
	Dialer transport.Dialer

	// TLSConfig enables TLS on the default dialer. Ignored when Dialer
	// is set.
	TLSConfig *tls.Config

	// Backoff overrides the reconnection backoff parameters.
	Backoff connection.BackoffConfig
}

// Client is the facade for one broker endpoint.
type Client struct {
	cfg    config.Config
	logger log.Logger
	dialer transport.Dialer

	manager  *connection.Manager
	registry *subscription.Registry

	// Guards the transport handle swap during connect/reconnect so
	// concurrent calls never observe a half-replaced handle.
	mu        sync.RWMutex
	transport transport.Transport

	// Live streams by subscription key, for DetachAllSubscriptions.
	streamsMu sync.Mutex
	streams   map[subscription.Key]transport.Stream

	workers *workerGroup

	closed atomic.Bool
}

// New creates a client for the broker named in cfg. The client does not
// connect until Connect is called.
func New(cfg config.Config, opts Options) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := opts.Logger
	if logger == nil && cfg.Debug {
		logger = log.NewSlogAdapter(nil)
	}
	logger = log.OrNoop(logger)

	dialer := opts.Dialer
	if dialer == nil {
		dialer = transport.NewClient(transport.ClientConfig{
			TLSConfig: opts.TLSConfig,
			Logger:    logger,
		})
	}

	c := &Client{
		cfg:      cfg,
		logger:   logger,
		dialer:   dialer,
		registry: subscription.NewRegistry(),
		streams:  make(map[subscription.Key]transport.Stream),
		workers:  newWorkerGroup(),
	}

	c.manager = connection.NewManagerWithConfig(c.establish, connection.Config{
		Backoff: opts.Backoff,
	})
	c.manager.OnConnected(c.restoreSubscriptions)
	c.manager.OnStateChange(c.logConnectionState)
	c.manager.StartSupervisor()

	return c, nil
}

// establish dials the broker and swaps in the new transport handle.
// Used by the connection manager for every connect and reconnect.
func (c *Client) establish(ctx context.Context) error {
	t, err := c.dialer.Dial(ctx, c.cfg.ServerAddress)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", c.cfg.ServerAddress, err)
	}

	c.mu.Lock()
	old := c.transport
	c.transport = t
	c.mu.Unlock()

	if old != nil {
		old.Close()
	}
	return nil
}

// currentTransport returns the active transport handle.
func (c *Client) currentTransport() (transport.Transport, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}

	c.mu.RLock()
	t := c.transport
	connected := c.manager.IsConnected()
	c.mu.RUnlock()

	if t == nil || !connected {
		return nil, ErrNotConnected
	}
	return t, nil
}

// Connect establishes the broker connection. It does not retry on
// failure; enable auto-reconnect (the default) for that.
func (c *Client) Connect(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	return c.manager.Connect(ctx)
}

// Reconnect forces a fresh connection attempt regardless of current
// state. Safe to call concurrently with in-flight value operations;
// those either complete against the old connection or fail cleanly.
func (c *Client) Reconnect(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	return c.manager.Reconnect(ctx)
}

// IsConnected reports whether a broker connection is established.
func (c *Client) IsConnected() bool {
	return c.manager.IsConnected()
}

// SetAutoReconnect toggles automatic reconnection after transport
// failures. Enabled by default.
func (c *Client) SetAutoReconnect(enabled bool) {
	c.manager.SetAutoReconnect(enabled)
}

// Close shuts down the client. All subscription workers stop, the
// connection closes, and pending reconnection waits wake promptly.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.manager.Close()

	c.mu.Lock()
	t := c.transport
	c.transport = nil
	c.mu.Unlock()

	if t != nil {
		t.Close()
	}

	c.workers.wait()
	c.registry.Clear()
	return nil
}

// GetCurrentValue reads the current value of an entry as its raw broker
// string form.
func (c *Client) GetCurrentValue(ctx context.Context, path string) (string, error) {
	return c.get(ctx, path, signal.ViewCurrent)
}

// GetTargetValue reads the actuation target of an entry as its raw
// broker string form.
func (c *Client) GetTargetValue(ctx context.Context, path string) (string, error) {
	return c.get(ctx, path, signal.ViewTarget)
}

func (c *Client) get(ctx context.Context, path string, view signal.View) (string, error) {
	t, err := c.currentTransport()
	if err != nil {
		return "", err
	}

	value, err := t.Get(ctx, path, view)
	if err != nil {
		c.observeCallFailure(err)
		return "", err
	}
	return value, nil
}

// SetCurrentValue writes the current value of an entry.
func (c *Client) SetCurrentValue(ctx context.Context, path, value string) error {
	return c.set(ctx, path, value, signal.FieldValue)
}

// SetTargetValue writes the actuation target of an entry.
func (c *Client) SetTargetValue(ctx context.Context, path, value string) error {
	return c.set(ctx, path, value, signal.FieldActuatorTarget)
}

func (c *Client) set(ctx context.Context, path, value string, field signal.Field) error {
	t, err := c.currentTransport()
	if err != nil {
		return err
	}

	if err := t.Set(ctx, path, value, field); err != nil {
		c.observeCallFailure(err)
		return err
	}
	return nil
}

// StreamUpdate pushes a single current-value sample for a numeric
// signal, for feeder-style producers.
func (c *Client) StreamUpdate(ctx context.Context, path string, value float64) error {
	return c.SetCurrentValue(ctx, path, signal.Format(value))
}

// ServerInfo returns broker diagnostic information. Failures are logged
// and returned; they do not affect the connection.
func (c *Client) ServerInfo(ctx context.Context) (transport.Info, error) {
	t, err := c.currentTransport()
	if err != nil {
		return transport.Info{}, err
	}

	info, err := t.ServerInfo(ctx)
	if err != nil {
		c.logError("server info", err)
		c.observeCallFailure(err)
		return transport.Info{}, err
	}
	return info, nil
}

// observeCallFailure triggers reconnection when a synchronous call
// observes a transport failure. Broker-reported status errors leave the
// connection alone.
func (c *Client) observeCallFailure(err error) {
	if errors.Is(err, transport.ErrConnectionClosed) {
		c.manager.NotifyConnectionLost()
	}
}

// Subscribe registers a callback for updates to one entry field and
// starts a worker consuming the stream. A second subscription for the
// same (path, field) fails with subscription.ErrDuplicateSubscription
// while the first is registered.
//
// The callback runs on the worker goroutine; updates for one
// subscription arrive in stream order. The subscription survives
// reconnection: after a transport failure it is replayed against the
// new connection with the same callback.
func (c *Client) Subscribe(ctx context.Context, path string, field signal.Field, callback signal.Callback) error {
	if !field.Valid() {
		return fmt.Errorf("invalid field %d", field)
	}

	t, err := c.currentTransport()
	if err != nil {
		return err
	}

	if err := c.registry.Register(path, field, callback); err != nil {
		return err
	}

	stream, err := t.OpenStream(ctx, path, field)
	if err != nil {
		// Initial subscribe failed before any stream existed; undo the
		// registration so the caller can retry.
		c.registry.Remove(path, field)
		c.observeCallFailure(err)
		return err
	}

	c.startWorker(path, field, callback, stream)
	return nil
}

// SubscribeCurrentValue subscribes to current-value updates.
func (c *Client) SubscribeCurrentValue(ctx context.Context, path string, callback signal.Callback) error {
	return c.Subscribe(ctx, path, signal.FieldValue, callback)
}

// SubscribeTargetValue subscribes to actuation-target updates.
func (c *Client) SubscribeTargetValue(ctx context.Context, path string, callback signal.Callback) error {
	return c.Subscribe(ctx, path, signal.FieldActuatorTarget, callback)
}

// SubscribeAll subscribes the callback to current-value updates for
// every path in the configuration, deduplicated. Paths already
// subscribed are skipped.
func (c *Client) SubscribeAll(ctx context.Context, callback signal.Callback) error {
	seen := make(map[string]struct{}, len(c.cfg.SignalPaths))
	for _, path := range c.cfg.SignalPaths {
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}

		err := c.SubscribeCurrentValue(ctx, path, callback)
		if errors.Is(err, subscription.ErrDuplicateSubscription) {
			continue
		}
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", path, err)
		}
	}
	return nil
}

// SubscriptionCount returns the number of registered subscriptions,
// live and pending.
func (c *Client) SubscriptionCount() int {
	return c.registry.Count()
}

// JoinAllSubscriptions blocks until every subscription worker has
// terminated. Workers terminate when their streams end deliberately or
// on Close; a transport failure alone does not terminate them, since
// the subscription is restored after reconnect.
func (c *Client) JoinAllSubscriptions() {
	c.workers.wait()
}

// JoinAllSubscriptionsWithTimeout is JoinAllSubscriptions with a bound.
// Returns true if all workers finished within the timeout. Close wakes
// the wait promptly.
func (c *Client) JoinAllSubscriptionsWithTimeout(d time.Duration) bool {
	return c.workers.waitTimeout(d)
}

// DetachAllSubscriptions closes every live stream and forgets all
// subscriptions. Workers drain and exit; nothing is restored on the
// next reconnect.
func (c *Client) DetachAllSubscriptions() {
	c.streamsMu.Lock()
	streams := make([]transport.Stream, 0, len(c.streams))
	for _, s := range c.streams {
		streams = append(streams, s)
	}
	c.streamsMu.Unlock()

	for _, s := range streams {
		s.Close()
	}

	c.workers.wait()
	c.registry.Clear()
}

// startWorker tracks the stream and spawns the consuming goroutine.
func (c *Client) startWorker(path string, field signal.Field, callback signal.Callback, stream transport.Stream) {
	key := subscription.Key{Path: path, Field: field}

	c.streamsMu.Lock()
	c.streams[key] = stream
	c.streamsMu.Unlock()

	c.workers.add()
	go c.runWorker(key, callback, stream)
}

// runWorker consumes one subscription stream until it ends.
//
// A deliberate broker close (io.EOF) removes the subscription, so a
// fresh subscribe to the same pair succeeds afterwards. A transport
// failure instead marks the entry pending and signals the supervisor;
// the subscription is replayed after reconnect.
func (c *Client) runWorker(key subscription.Key, callback signal.Callback, stream transport.Stream) {
	defer c.workers.done()
	defer func() {
		c.streamsMu.Lock()
		delete(c.streams, key)
		c.streamsMu.Unlock()
	}()

	for {
		update, err := stream.Recv()
		if err == nil {
			callback(update.Path, update.Value, update.Field)
			continue
		}

		if errors.Is(err, io.EOF) {
			c.registry.Remove(key.Path, key.Field)
			c.logSubscriptionState(key, subscription.StateLive.String(), "ENDED", "stream closed by broker")
			return
		}

		if c.closed.Load() {
			return
		}

		c.registry.MarkPending(key.Path, key.Field)
		c.logSubscriptionState(key, subscription.StateLive.String(), subscription.StatePending.String(), err.Error())
		c.manager.NotifyConnectionLost()
		return
	}
}

// restoreSubscriptions replays every pending subscription against the
// new connection. Runs on the connection manager's callback after each
// successful connect, so the handshake is always complete first. A
// subscription that fails to restore stays pending for the next cycle.
func (c *Client) restoreSubscriptions() {
	pending := c.registry.Pending()
	if len(pending) == 0 {
		return
	}

	c.mu.RLock()
	t := c.transport
	c.mu.RUnlock()
	if t == nil {
		return
	}

	for _, info := range pending {
		stream, err := t.OpenStream(context.Background(), info.Path, info.Field)
		if err != nil {
			// Entry stays pending for the next cycle. If the new
			// connection is already dead, kick off that cycle now.
			c.logError(fmt.Sprintf("restore subscription %s", info.Key()), err)
			c.observeCallFailure(err)
			continue
		}

		c.registry.MarkLive(info.Path, info.Field)
		c.logSubscriptionState(info.Key(), subscription.StatePending.String(), subscription.StateLive.String(), "restored")
		c.startWorker(info.Path, info.Field, info.Callback, stream)
	}
}

func (c *Client) logConnectionState(oldState, newState connection.State) {
	c.logger.Log(log.Event{
		Timestamp:  time.Now(),
		Direction:  log.DirectionIn,
		Layer:      log.LayerClient,
		Category:   log.CategoryState,
		RemoteAddr: c.cfg.ServerAddress,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			OldState: oldState.String(),
			NewState: newState.String(),
		},
	})
}

func (c *Client) logSubscriptionState(key subscription.Key, oldState, newState, reason string) {
	c.logger.Log(log.Event{
		Timestamp:  time.Now(),
		Direction:  log.DirectionIn,
		Layer:      log.LayerClient,
		Category:   log.CategoryState,
		RemoteAddr: c.cfg.ServerAddress,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntitySubscription,
			OldState: oldState,
			NewState: newState,
			Reason:   fmt.Sprintf("%s: %s", key, reason),
		},
	})
}

func (c *Client) logError(context string, err error) {
	c.logger.Log(log.Event{
		Timestamp:  time.Now(),
		Direction:  log.DirectionIn,
		Layer:      log.LayerClient,
		Category:   log.CategoryError,
		RemoteAddr: c.cfg.ServerAddress,
		Error: &log.ErrorEventData{
			Layer:   log.LayerClient,
			Message: err.Error(),
			Context: context,
		},
	})
}
