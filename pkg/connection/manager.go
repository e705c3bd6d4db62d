package connection

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Connection errors.
var (
	ErrManagerClosed    = errors.New("connection manager closed")
	ErrAlreadyConnected = errors.New("already connected")
	ErrNotConnected     = errors.New("not connected")
)

// DefaultConnectTimeout bounds a single connection attempt made by the
// supervisor loop. It does not apply to attempts made through Connect or
// Reconnect, which honor the caller's context.
const DefaultConnectTimeout = 30 * time.Second

// State represents the connection state.
type State uint8

const (
	// StateDisconnected indicates no active connection.
	StateDisconnected State = iota

	// StateConnecting indicates a connection attempt is in progress.
	StateConnecting

	// StateConnected indicates an active connection.
	StateConnected

	// StateReconnecting indicates automatic reconnection is in progress.
	StateReconnecting

	// StateClosed indicates the manager has been shut down.
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateReconnecting:
		return "RECONNECTING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// ConnectFunc establishes a connection to the broker. It returns nil on
// success. The callee owns the resulting transport handle; the manager
// only tracks whether a connection exists.
type ConnectFunc func(ctx context.Context) error

// Config customizes manager behavior. The zero value uses defaults.
type Config struct {
	// Backoff parameters for the supervisor loop.
	Backoff BackoffConfig

	// ConnectTimeout bounds each supervisor connection attempt.
	ConnectTimeout time.Duration
}

// Manager tracks connection state and drives automatic reconnection.
//
// The supervisor goroutine (started with StartSupervisor) sleeps until
// signaled through NotifyConnectionLost, then retries the connect
// function with exponential backoff until it succeeds or the manager is
// closed. Reconnection failures are never surfaced to callers; the only
// observable signal is State and the OnReconnecting callback.
type Manager struct {
	mu sync.RWMutex

	state State

	backoff *Backoff

	connectFn      ConnectFunc
	connectTimeout time.Duration

	autoReconnect bool

	ctx    context.Context
	cancel context.CancelFunc

	wg sync.WaitGroup

	// Signals the supervisor that reconnection should start
	reconnectCh chan struct{}

	onStateChange  func(oldState, newState State)
	onConnected    func()
	onDisconnected func()
	onReconnecting func(attempt int, delay time.Duration)
}

// NewManager creates a manager with default backoff settings.
func NewManager(connectFn ConnectFunc) *Manager {
	return NewManagerWithConfig(connectFn, Config{})
}

// NewManagerWithConfig creates a manager with custom settings.
func NewManagerWithConfig(connectFn ConnectFunc, cfg Config) *Manager {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		state:          StateDisconnected,
		backoff:        NewBackoffWithConfig(cfg.Backoff),
		connectFn:      connectFn,
		connectTimeout: cfg.ConnectTimeout,
		autoReconnect:  true,
		ctx:            ctx,
		cancel:         cancel,
		reconnectCh:    make(chan struct{}, 1),
	}
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsConnected returns true if currently connected.
func (m *Manager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateConnected
}

// SetAutoReconnect enables or disables automatic reconnection.
// Enabled by default.
func (m *Manager) SetAutoReconnect(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoReconnect = enabled
}

// AutoReconnect reports whether automatic reconnection is enabled.
func (m *Manager) AutoReconnect() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.autoReconnect
}

// Connect initiates a connection. It fails with ErrAlreadyConnected if a
// connection is already established and does not retry on failure; retry
// policy belongs to the supervisor.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case StateConnected:
		m.mu.Unlock()
		return ErrAlreadyConnected
	case StateClosed:
		m.mu.Unlock()
		return ErrManagerClosed
	}

	oldState := m.state
	m.state = StateConnecting
	m.mu.Unlock()

	m.notifyStateChange(oldState, StateConnecting)

	return m.finishAttempt(m.connectFn(ctx))
}

// Reconnect forces a fresh connection attempt regardless of current
// state. The caller must tear down any previous transport handle before
// calling; the manager only drives the attempt and the resulting state.
func (m *Manager) Reconnect(ctx context.Context) error {
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return ErrManagerClosed
	}

	oldState := m.state
	m.state = StateConnecting
	m.mu.Unlock()

	if oldState != StateConnecting {
		m.notifyStateChange(oldState, StateConnecting)
	}

	return m.finishAttempt(m.connectFn(ctx))
}

// finishAttempt settles state after a connection attempt from Connect or
// Reconnect.
func (m *Manager) finishAttempt(err error) error {
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return ErrManagerClosed
	}

	if err != nil {
		m.state = StateDisconnected
		m.mu.Unlock()
		m.notifyStateChange(StateConnecting, StateDisconnected)
		return err
	}

	m.state = StateConnected
	m.backoff.Reset()
	m.mu.Unlock()

	m.notifyStateChange(StateConnecting, StateConnected)
	if m.onConnected != nil {
		m.onConnected()
	}

	return nil
}

// Disconnect records a deliberate disconnect. If auto-reconnect is
// enabled the supervisor takes over.
func (m *Manager) Disconnect() {
	m.connectionDown()
}

// NotifyConnectionLost must be called when a transport failure is
// detected. It triggers the supervisor if auto-reconnect is enabled.
// Redundant notifications while already reconnecting are ignored.
func (m *Manager) NotifyConnectionLost() {
	m.connectionDown()
}

func (m *Manager) connectionDown() {
	m.mu.Lock()
	if m.state != StateConnected {
		m.mu.Unlock()
		return
	}

	oldState := m.state
	autoReconnect := m.autoReconnect

	if autoReconnect {
		m.state = StateReconnecting
	} else {
		m.state = StateDisconnected
	}
	newState := m.state
	m.mu.Unlock()

	m.notifyStateChange(oldState, newState)
	if m.onDisconnected != nil {
		m.onDisconnected()
	}

	if autoReconnect {
		m.triggerReconnect()
	}
}

// StartSupervisor starts the background reconnection goroutine.
// Must be called once before automatic reconnection will work.
func (m *Manager) StartSupervisor() {
	m.wg.Add(1)
	go m.supervisorLoop()
}

// Close shuts down the manager. Any supervisor wait wakes promptly.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return
	}

	oldState := m.state
	m.state = StateClosed
	m.mu.Unlock()

	m.notifyStateChange(oldState, StateClosed)

	m.cancel()
	m.wg.Wait()
}

func (m *Manager) triggerReconnect() {
	select {
	case m.reconnectCh <- struct{}{}:
	default:
		// Already pending
	}
}

func (m *Manager) supervisorLoop() {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-m.reconnectCh:
			m.retryUntilConnected()
		}
	}
}

// retryUntilConnected attempts reconnection with backoff until it
// succeeds, the manager is closed, auto-reconnect is turned off, or
// something else (a concurrent Reconnect) has already restored the
// connection.
func (m *Manager) retryUntilConnected() {
	for {
		if m.abandonRetry() {
			return
		}

		delay := m.backoff.Next()
		attempt := m.backoff.Attempts()

		if m.onReconnecting != nil {
			m.onReconnecting(attempt, delay)
		}

		select {
		case <-m.ctx.Done():
			return
		case <-time.After(delay):
		}

		if m.abandonRetry() {
			return
		}

		ctx, cancel := context.WithTimeout(m.ctx, m.connectTimeout)
		err := m.connectFn(ctx)
		cancel()

		if err == nil {
			m.mu.Lock()
			oldState := m.state
			m.state = StateConnected
			m.backoff.Reset()
			m.mu.Unlock()

			m.notifyStateChange(oldState, StateConnected)
			if m.onConnected != nil {
				m.onConnected()
			}
			return
		}

		// Failed, loop with the next backoff delay
	}
}

// abandonRetry reports whether the retry cycle should stop. Turning off
// auto-reconnect mid-cycle settles the state to Disconnected.
func (m *Manager) abandonRetry() bool {
	m.mu.Lock()
	state := m.state
	if !m.autoReconnect && (state == StateReconnecting || state == StateDisconnected) {
		m.state = StateDisconnected
		m.mu.Unlock()
		m.notifyStateChange(state, StateDisconnected)
		return true
	}
	m.mu.Unlock()
	return state == StateClosed || state == StateConnected
}

func (m *Manager) notifyStateChange(oldState, newState State) {
	if m.onStateChange != nil && oldState != newState {
		m.onStateChange(oldState, newState)
	}
}

// OnStateChange sets a callback for state transitions.
// Set callbacks before starting the supervisor or connecting.
func (m *Manager) OnStateChange(fn func(oldState, newState State)) {
	m.onStateChange = fn
}

// OnConnected sets a callback invoked after every successful connect or
// reconnect. Subscription restoration hooks in here; the connection is
// fully established before the callback runs.
func (m *Manager) OnConnected(fn func()) {
	m.onConnected = fn
}

// OnDisconnected sets a callback invoked when the connection is lost or
// deliberately closed.
func (m *Manager) OnDisconnected(fn func()) {
	m.onDisconnected = fn
}

// OnReconnecting sets a callback invoked before each reconnection wait.
func (m *Manager) OnReconnecting(fn func(attempt int, delay time.Duration)) {
	m.onReconnecting = fn
}

// BackoffAttempts returns the number of reconnection attempts since the
// last successful connection.
func (m *Manager) BackoffAttempts() int {
	return m.backoff.Attempts()
}
