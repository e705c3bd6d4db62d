package log

import (
	"time"

	"github.com/vsslink/vsslink-go/pkg/signal"
	"github.com/vsslink/vsslink-go/pkg/wire"
)

// Event represents a client log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the broker connection (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the broker address (host:port).
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"7,keyasint,omitempty"` // Transport layer
	Message     *MessageEvent     `cbor:"8,keyasint,omitempty"` // Wire layer (decoded)
	StateChange *StateChangeEvent `cbor:"9,keyasint,omitempty"` // Connection/subscription state
	Error       *ErrorEventData   `cbor:"10,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerTransport is the framing layer (raw bytes).
	LayerTransport Layer = 0
	// LayerWire is the message encoding layer (decoded CBOR).
	LayerWire Layer = 1
	// LayerClient is the client/facade layer.
	LayerClient Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerClient:
		return "CLIENT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a protocol message (request/response/notification).
	CategoryMessage Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw frame data at the transport layer.
type FrameEvent struct {
	// Size is the frame size in bytes (including length prefix).
	Size int `cbor:"1,keyasint"`

	// Data is the raw frame bytes (may be truncated for large frames).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// MessageType distinguishes request/response/notification.
type MessageType uint8

const (
	// MessageTypeRequest indicates a request message.
	MessageTypeRequest MessageType = 0
	// MessageTypeResponse indicates a response message.
	MessageTypeResponse MessageType = 1
	// MessageTypeNotification indicates a notification message.
	MessageTypeNotification MessageType = 2
)

// String returns the message type name.
func (m MessageType) String() string {
	switch m {
	case MessageTypeRequest:
		return "REQUEST"
	case MessageTypeResponse:
		return "RESPONSE"
	case MessageTypeNotification:
		return "NOTIFICATION"
	default:
		return "UNKNOWN"
	}
}

// MessageEvent captures a decoded protocol message at the wire layer.
type MessageEvent struct {
	// Type distinguishes request/response/notification.
	Type MessageType `cbor:"1,keyasint"`

	// MessageID correlates request/response pairs (0 for notifications).
	MessageID uint32 `cbor:"2,keyasint"`

	// For requests: the operation being performed.
	Operation *wire.Operation `cbor:"3,keyasint,omitempty"`

	// The entry path the message refers to, if any.
	Path string `cbor:"4,keyasint,omitempty"`

	// The field selector, if any.
	Field *signal.Field `cbor:"5,keyasint,omitempty"`

	// The view selector (Get requests).
	View *signal.View `cbor:"6,keyasint,omitempty"`

	// For responses: the status code.
	Status *wire.Status `cbor:"7,keyasint,omitempty"`

	// For notifications: the subscription ID.
	SubscriptionID *uint32 `cbor:"8,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityConnection indicates a connection state change.
	StateEntityConnection StateEntity = 0
	// StateEntitySubscription indicates a subscription state change.
	StateEntitySubscription StateEntity = 1
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntitySubscription:
		return "SUBSCRIPTION"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures connection and subscription lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
