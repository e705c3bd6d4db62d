package subscription

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vsslink/vsslink-go/pkg/signal"
)

// ErrDuplicateSubscription is returned when a (path, field) pair is
// already registered.
var ErrDuplicateSubscription = errors.New("duplicate subscription")

// State describes whether a subscription has a live stream.
type State uint8

const (
	// StateLive indicates a worker is consuming the stream.
	StateLive State = iota

	// StatePending indicates the stream failed and the subscription is
	// awaiting restoration on the next reconnect.
	StatePending
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateLive:
		return "LIVE"
	case StatePending:
		return "PENDING"
	default:
		return "UNKNOWN"
	}
}

// Key identifies a subscription.
type Key struct {
	Path  string
	Field signal.Field
}

// String formats the key for log output.
func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Path, k.Field)
}

// Info records one registered subscription.
type Info struct {
	Path     string
	Field    signal.Field
	Callback signal.Callback
	State    State
}

// Key returns the registry key for this subscription.
func (i Info) Key() Key {
	return Key{Path: i.Path, Field: i.Field}
}

// Registry tracks active and pending subscriptions.
//
// A single map serves both duplicate detection and restoration, so the
// key set and the recorded info can never disagree. All methods are safe
// for concurrent use.
type Registry struct {
	mu      sync.Mutex
	entries map[Key]*Info
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[Key]*Info),
	}
}

// Register records a new subscription in the live state. It fails with
// ErrDuplicateSubscription if the (path, field) pair is already present,
// whether live or pending.
func (r *Registry) Register(path string, field signal.Field, callback signal.Callback) error {
	key := Key{Path: path, Field: field}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSubscription, key)
	}

	r.entries[key] = &Info{
		Path:     path,
		Field:    field,
		Callback: callback,
		State:    StateLive,
	}
	return nil
}

// Contains reports whether the (path, field) pair is registered.
func (r *Registry) Contains(path string, field signal.Field) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.entries[Key{Path: path, Field: field}]
	return exists
}

// MarkPending flags a subscription whose stream failed. The entry stays
// registered and will be replayed on the next reconnect.
func (r *Registry) MarkPending(path string, field signal.Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[Key{Path: path, Field: field}]; ok {
		e.State = StatePending
	}
}

// MarkLive flags a subscription whose stream is consuming again.
func (r *Registry) MarkLive(path string, field signal.Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[Key{Path: path, Field: field}]; ok {
		e.State = StateLive
	}
}

// MarkAllPending flags every entry, for use when the whole connection is
// lost rather than a single stream.
func (r *Registry) MarkAllPending() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		e.State = StatePending
	}
}

// Remove deletes a subscription. Call only when a stream ended
// deliberately or during shutdown; transport failures mark pending
// instead.
func (r *Registry) Remove(path string, field signal.Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, Key{Path: path, Field: field})
}

// Pending returns a snapshot of subscriptions awaiting restoration.
func (r *Registry) Pending() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pending []Info
	for _, e := range r.entries {
		if e.State == StatePending {
			pending = append(pending, *e)
		}
	}
	return pending
}

// All returns a snapshot of every registered subscription.
func (r *Registry) All() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]Info, 0, len(r.entries))
	for _, e := range r.entries {
		infos = append(infos, *e)
	}
	return infos
}

// Count returns the number of registered subscriptions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Clear removes every entry. Used during shutdown.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[Key]*Info)
}
