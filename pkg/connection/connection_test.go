package connection

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestBackoff(t *testing.T) {
	t.Run("DefaultSequence", func(t *testing.T) {
		b := NewBackoff()

		// Expected base sequence (without jitter): 1s, 2s, 4s, 8s, 16s, 30s, 30s...
		expected := []time.Duration{
			1 * time.Second,
			2 * time.Second,
			4 * time.Second,
			8 * time.Second,
			16 * time.Second,
			30 * time.Second,
			30 * time.Second, // Should stay at max
		}

		for i, exp := range expected {
			base := b.Current()
			_ = b.Next()

			if base != exp {
				t.Errorf("Attempt %d: base = %v, want %v", i, base, exp)
			}
		}
	})

	t.Run("Jitter", func(t *testing.T) {
		b := NewBackoff()

		samples := make([]time.Duration, 10)
		for i := range samples {
			samples[i] = b.Peek()
		}

		// All samples should be between 1s and 1.25s
		for i, s := range samples {
			if s < 1*time.Second || s > time.Duration(float64(1*time.Second)*1.25)+time.Millisecond {
				t.Errorf("Sample %d: %v out of expected range [1s, 1.25s]", i, s)
			}
		}

		allSame := true
		for i := 1; i < len(samples); i++ {
			if samples[i] != samples[0] {
				allSame = false
				break
			}
		}
		if allSame {
			t.Error("All jittered samples are identical")
		}
	})

	t.Run("Reset", func(t *testing.T) {
		b := NewBackoff()

		for i := 0; i < 5; i++ {
			b.Next()
		}

		if b.Current() <= InitialBackoff {
			t.Error("Backoff should have increased")
		}

		b.Reset()

		if b.Current() != InitialBackoff {
			t.Errorf("Current() = %v after reset, want %v", b.Current(), InitialBackoff)
		}
		if b.Attempts() != 0 {
			t.Errorf("Attempts() = %d after reset, want 0", b.Attempts())
		}
	})

	t.Run("Attempts", func(t *testing.T) {
		b := NewBackoff()

		if b.Attempts() != 0 {
			t.Errorf("Initial Attempts() = %d, want 0", b.Attempts())
		}

		for i := 1; i <= 5; i++ {
			b.Next()
			if b.Attempts() != i {
				t.Errorf("After %d calls, Attempts() = %d", i, b.Attempts())
			}
		}
	})

	t.Run("CustomConfig", func(t *testing.T) {
		b := NewBackoffWithConfig(BackoffConfig{
			Initial:    100 * time.Millisecond,
			Max:        500 * time.Millisecond,
			Multiplier: 2.0,
			Jitter:     -1, // Deterministic
		})

		expected := []time.Duration{
			100 * time.Millisecond,
			200 * time.Millisecond,
			400 * time.Millisecond,
			500 * time.Millisecond, // Max
			500 * time.Millisecond,
		}

		for i, exp := range expected {
			got := b.Next()
			if got != exp {
				t.Errorf("Attempt %d: got %v, want %v", i, got, exp)
			}
		}
	})

	t.Run("ZeroConfigGetsDefaultJitter", func(t *testing.T) {
		b := NewBackoffWithConfig(BackoffConfig{})

		allSame := true
		first := b.Peek()
		for i := 0; i < 9; i++ {
			if b.Peek() != first {
				allSame = false
				break
			}
		}
		if allSame {
			t.Error("Zero-value config produced identical samples, jitter not defaulted")
		}
	})

	t.Run("NegativeJitterDisables", func(t *testing.T) {
		b := NewBackoffWithConfig(BackoffConfig{Jitter: -1})

		for i := 0; i < 10; i++ {
			if got := b.Peek(); got != b.Current() {
				t.Fatalf("Peek() = %v with jitter disabled, want %v", got, b.Current())
			}
		}
	})
}

func TestManager(t *testing.T) {
	t.Run("InitialState", func(t *testing.T) {
		m := NewManager(func(ctx context.Context) error { return nil })
		defer m.Close()

		if m.State() != StateDisconnected {
			t.Errorf("Initial state = %v, want StateDisconnected", m.State())
		}
		if m.IsConnected() {
			t.Error("IsConnected() = true, want false")
		}
	})

	t.Run("SuccessfulConnect", func(t *testing.T) {
		connectCalled := false
		m := NewManager(func(ctx context.Context) error {
			connectCalled = true
			return nil
		})
		defer m.Close()

		var connectedCalled bool
		m.OnConnected(func() {
			connectedCalled = true
		})

		err := m.Connect(context.Background())
		if err != nil {
			t.Fatalf("Connect() error = %v", err)
		}

		if !connectCalled {
			t.Error("Connect function was not called")
		}
		if !connectedCalled {
			t.Error("OnConnected callback was not called")
		}
		if m.State() != StateConnected {
			t.Errorf("State() = %v, want StateConnected", m.State())
		}
	})

	t.Run("FailedConnect", func(t *testing.T) {
		expectedErr := errors.New("connection failed")
		m := NewManager(func(ctx context.Context) error {
			return expectedErr
		})
		defer m.Close()

		err := m.Connect(context.Background())
		if err != expectedErr {
			t.Errorf("Connect() error = %v, want %v", err, expectedErr)
		}
		if m.State() != StateDisconnected {
			t.Errorf("State() = %v, want StateDisconnected", m.State())
		}
	})

	t.Run("AlreadyConnected", func(t *testing.T) {
		m := NewManager(func(ctx context.Context) error { return nil })
		defer m.Close()

		m.Connect(context.Background())

		err := m.Connect(context.Background())
		if err != ErrAlreadyConnected {
			t.Errorf("Second Connect() error = %v, want ErrAlreadyConnected", err)
		}
	})

	t.Run("Disconnect", func(t *testing.T) {
		m := NewManager(func(ctx context.Context) error { return nil })
		m.SetAutoReconnect(false)
		defer m.Close()

		var disconnectedCalled bool
		m.OnDisconnected(func() {
			disconnectedCalled = true
		})

		m.Connect(context.Background())
		m.Disconnect()

		if !disconnectedCalled {
			t.Error("OnDisconnected callback was not called")
		}
		if m.State() != StateDisconnected {
			t.Errorf("State() = %v, want StateDisconnected", m.State())
		}
	})

	t.Run("StateChangeCallback", func(t *testing.T) {
		m := NewManager(func(ctx context.Context) error { return nil })
		m.SetAutoReconnect(false)
		defer m.Close()

		var transitions []struct{ old, new State }
		m.OnStateChange(func(old, new State) {
			transitions = append(transitions, struct{ old, new State }{old, new})
		})

		m.Connect(context.Background())
		m.Disconnect()

		expected := []struct{ old, new State }{
			{StateDisconnected, StateConnecting},
			{StateConnecting, StateConnected},
			{StateConnected, StateDisconnected},
		}

		if len(transitions) != len(expected) {
			t.Fatalf("Got %d transitions, want %d", len(transitions), len(expected))
		}

		for i, exp := range expected {
			if transitions[i].old != exp.old || transitions[i].new != exp.new {
				t.Errorf("Transition %d: got %v/%v, want %v/%v",
					i, transitions[i].old, transitions[i].new, exp.old, exp.new)
			}
		}
	})

	t.Run("ForcedReconnect", func(t *testing.T) {
		var connectCount atomic.Int32
		m := NewManager(func(ctx context.Context) error {
			connectCount.Add(1)
			return nil
		})
		defer m.Close()

		// Works from the disconnected state.
		if err := m.Reconnect(context.Background()); err != nil {
			t.Fatalf("Reconnect() error = %v", err)
		}
		if m.State() != StateConnected {
			t.Errorf("State() = %v, want StateConnected", m.State())
		}

		// And again while already connected.
		if err := m.Reconnect(context.Background()); err != nil {
			t.Fatalf("Second Reconnect() error = %v", err)
		}
		if got := connectCount.Load(); got != 2 {
			t.Errorf("Connect called %d times, want 2", got)
		}
	})

	t.Run("ReconnectAfterClose", func(t *testing.T) {
		m := NewManager(func(ctx context.Context) error { return nil })
		m.Close()

		if err := m.Reconnect(context.Background()); err != ErrManagerClosed {
			t.Errorf("Reconnect() error = %v, want ErrManagerClosed", err)
		}
	})
}

func TestManagerReconnect(t *testing.T) {
	t.Run("AutoReconnectOnLoss", func(t *testing.T) {
		var connectCount atomic.Int32
		m := NewManagerWithConfig(func(ctx context.Context) error {
			connectCount.Add(1)
			return nil
		}, Config{
			Backoff: BackoffConfig{
				Initial:    20 * time.Millisecond,
				Max:        100 * time.Millisecond,
				Multiplier: 2.0,
				Jitter:     -1,
			},
		})
		m.StartSupervisor()
		defer m.Close()

		err := m.Connect(context.Background())
		if err != nil {
			t.Fatalf("Initial Connect() error = %v", err)
		}

		m.NotifyConnectionLost()

		deadline := time.Now().Add(2 * time.Second)
		for m.State() != StateConnected && time.Now().Before(deadline) {
			time.Sleep(10 * time.Millisecond)
		}

		if m.State() != StateConnected {
			t.Errorf("State() = %v, want StateConnected after reconnect", m.State())
		}
		if connectCount.Load() < 2 {
			t.Errorf("Connect was only called %d times, want at least 2", connectCount.Load())
		}
	})

	t.Run("BackoffOnFailure", func(t *testing.T) {
		var connectCount atomic.Int32
		var mu sync.Mutex
		var attempts []time.Time

		m := NewManagerWithConfig(func(ctx context.Context) error {
			mu.Lock()
			attempts = append(attempts, time.Now())
			mu.Unlock()

			count := connectCount.Add(1)
			if count < 3 {
				return errors.New("not yet")
			}
			return nil // Third attempt succeeds
		}, Config{
			Backoff: BackoffConfig{
				Initial:    50 * time.Millisecond,
				Max:        200 * time.Millisecond,
				Multiplier: 2.0,
				Jitter:     -1,
			},
		})

		m.StartSupervisor()
		defer m.Close()

		m.mu.Lock()
		m.state = StateReconnecting
		m.mu.Unlock()
		m.triggerReconnect()

		deadline := time.Now().Add(2 * time.Second)
		for m.State() != StateConnected && time.Now().Before(deadline) {
			time.Sleep(10 * time.Millisecond)
		}

		mu.Lock()
		attemptsCopy := make([]time.Time, len(attempts))
		copy(attemptsCopy, attempts)
		mu.Unlock()

		if len(attemptsCopy) < 3 {
			t.Fatalf("Expected at least 3 attempts, got %d", len(attemptsCopy))
		}

		// Delays include backoff time plus execution time, so only
		// check the lower bound of the first interval.
		delay1 := attemptsCopy[1].Sub(attemptsCopy[0])
		if delay1 < 30*time.Millisecond {
			t.Errorf("First delay = %v, expected at least 30ms", delay1)
		}

		if m.State() != StateConnected {
			t.Errorf("Final state = %v, want StateConnected", m.State())
		}
	})

	t.Run("DisabledAutoReconnect", func(t *testing.T) {
		var connectCount atomic.Int32
		m := NewManager(func(ctx context.Context) error {
			connectCount.Add(1)
			return nil
		})
		m.SetAutoReconnect(false)
		m.StartSupervisor()
		defer m.Close()

		m.Connect(context.Background())
		m.Disconnect()

		time.Sleep(100 * time.Millisecond)

		if m.State() != StateDisconnected {
			t.Errorf("State() = %v, want StateDisconnected (no auto-reconnect)", m.State())
		}
		if connectCount.Load() != 1 {
			t.Errorf("Connect called %d times, want 1 (no reconnection)", connectCount.Load())
		}
	})

	t.Run("DisableMidCycleStopsRetrying", func(t *testing.T) {
		var connectCount atomic.Int32
		m := NewManagerWithConfig(func(ctx context.Context) error {
			connectCount.Add(1)
			return errors.New("unreachable broker")
		}, Config{
			Backoff: BackoffConfig{
				Initial:    30 * time.Millisecond,
				Max:        30 * time.Millisecond,
				Multiplier: 2.0,
				Jitter:     -1,
			},
		})
		m.StartSupervisor()
		defer m.Close()

		m.mu.Lock()
		m.state = StateReconnecting
		m.mu.Unlock()
		m.triggerReconnect()

		deadline := time.Now().Add(2 * time.Second)
		for connectCount.Load() == 0 && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		if connectCount.Load() == 0 {
			t.Fatal("Supervisor never attempted to reconnect")
		}

		m.SetAutoReconnect(false)

		deadline = time.Now().Add(2 * time.Second)
		for m.State() != StateDisconnected && time.Now().Before(deadline) {
			time.Sleep(10 * time.Millisecond)
		}
		if m.State() != StateDisconnected {
			t.Fatalf("State() = %v, want StateDisconnected after disabling", m.State())
		}

		settled := connectCount.Load()
		time.Sleep(150 * time.Millisecond)
		if got := connectCount.Load(); got != settled {
			t.Errorf("Supervisor kept dialing after disable: %d -> %d", settled, got)
		}
	})

	t.Run("CloseWakesBackoffWait", func(t *testing.T) {
		m := NewManagerWithConfig(func(ctx context.Context) error {
			return errors.New("unreachable broker")
		}, Config{
			Backoff: BackoffConfig{
				Initial:    10 * time.Second, // Far longer than the test allows
				Multiplier: 2.0,
				Jitter:     -1,
			},
		})
		m.StartSupervisor()

		m.mu.Lock()
		m.state = StateReconnecting
		m.mu.Unlock()
		m.triggerReconnect()

		time.Sleep(50 * time.Millisecond)

		done := make(chan struct{})
		go func() {
			m.Close()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Close did not wake the supervisor promptly")
		}
	})
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateDisconnected, "DISCONNECTED"},
		{StateConnecting, "CONNECTING"},
		{StateConnected, "CONNECTED"},
		{StateReconnecting, "RECONNECTING"},
		{StateClosed, "CLOSED"},
		{State(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
