package connection

import (
	"math/rand"
	"sync"
	"time"
)

// Default backoff parameters for broker reconnection.
const (
	// InitialBackoff is the delay before the first reconnection attempt.
	InitialBackoff = 1 * time.Second

	// MaxBackoff caps the delay between reconnection attempts.
	MaxBackoff = 30 * time.Second

	// BackoffMultiplier is the factor by which the delay grows per attempt.
	BackoffMultiplier = 2.0

	// JitterFactor is the maximum jitter as a fraction of the base delay.
	JitterFactor = 0.25
)

// Backoff calculates exponential backoff delays with jitter.
type Backoff struct {
	mu sync.Mutex

	// Current base delay (before jitter)
	current time.Duration

	initial    time.Duration
	max        time.Duration
	multiplier float64
	jitter     float64

	attempts int

	rng *rand.Rand
}

// NewBackoff creates a backoff calculator with the default parameters.
func NewBackoff() *Backoff {
	return NewBackoffWithConfig(BackoffConfig{})
}

// BackoffConfig allows customizing backoff parameters.
// Zero values fall back to the package defaults; a negative Jitter
// disables jitter entirely.
type BackoffConfig struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64
}

// NewBackoffWithConfig creates a backoff calculator with custom settings.
func NewBackoffWithConfig(cfg BackoffConfig) *Backoff {
	if cfg.Initial <= 0 {
		cfg.Initial = InitialBackoff
	}
	if cfg.Max <= 0 {
		cfg.Max = MaxBackoff
	}
	if cfg.Multiplier <= 1 {
		cfg.Multiplier = BackoffMultiplier
	}
	if cfg.Jitter == 0 {
		cfg.Jitter = JitterFactor
	} else if cfg.Jitter < 0 {
		cfg.Jitter = 0
	}

	return &Backoff{
		current:    cfg.Initial,
		initial:    cfg.Initial,
		max:        cfg.Max,
		multiplier: cfg.Multiplier,
		jitter:     cfg.Jitter,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next returns the next delay (with jitter) and advances the backoff.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	delay := b.addJitter(b.current)

	b.attempts++
	next := time.Duration(float64(b.current) * b.multiplier)
	if next > b.max {
		next = b.max
	}
	b.current = next

	return delay
}

// Peek returns the current delay (with jitter) without advancing.
func (b *Backoff) Peek() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addJitter(b.current)
}

// Reset resets the backoff to its initial values.
// Call this after a successful connection.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = b.initial
	b.attempts = 0
}

// Attempts returns the number of attempts since the last reset.
func (b *Backoff) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

// Current returns the current base delay (without jitter).
func (b *Backoff) Current() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

func (b *Backoff) addJitter(d time.Duration) time.Duration {
	if b.jitter <= 0 {
		return d
	}
	jitterAmount := time.Duration(float64(d) * b.jitter * b.rng.Float64())
	return d + jitterAmount
}
