package wire

import (
	"fmt"

	"github.com/vsslink/vsslink-go/pkg/signal"
)

// CBOR map keys for message encoding.
const (
	// Common keys
	KeyMessageID  = 1
	KeyOpOrStatus = 2 // Operation (request) or Status (response)

	// Request keys
	KeyPath  = 3
	KeyField = 4
	KeyView  = 5
	KeyValue = 6

	// Notification keys (messageId=0 indicates a notification)
	KeySubscriptionID = 2
)

// NotificationMessageID is reserved to mark notification messages.
const NotificationMessageID uint32 = 0

// Request represents a client-to-broker request.
//
// CBOR encoding:
//
//	{
//	  1: messageId,   // uint32, never 0
//	  2: operation,   // uint8: 1=Get, 2=Set, 3=Subscribe, 4=Info
//	  3: path,        // entry path (Get/Set/Subscribe)
//	  4: field,       // uint8: 1=VALUE, 2=ACTUATOR_TARGET (Set/Subscribe)
//	  5: view,        // uint8: 0=CURRENT, 1=TARGET, 2=ALL (Get)
//	  6: value        // string value to write (Set)
//	}
type Request struct {
	MessageID uint32       `cbor:"1,keyasint"`
	Operation Operation    `cbor:"2,keyasint"`
	Path      string       `cbor:"3,keyasint,omitempty"`
	Field     signal.Field `cbor:"4,keyasint,omitempty"`
	View      signal.View  `cbor:"5,keyasint,omitempty"`
	Value     string       `cbor:"6,keyasint,omitempty"`
}

// Validate checks if the request is well-formed.
func (r *Request) Validate() error {
	if r.MessageID == NotificationMessageID {
		return fmt.Errorf("messageId 0 is reserved for notifications")
	}
	if !r.Operation.IsValid() {
		return fmt.Errorf("invalid operation: %d", r.Operation)
	}
	switch r.Operation {
	case OpGet, OpSubscribe:
		if r.Path == "" {
			return fmt.Errorf("%s requires a path", r.Operation)
		}
	case OpSet:
		if r.Path == "" {
			return fmt.Errorf("Set requires a path")
		}
		if !r.Field.Valid() {
			return fmt.Errorf("Set requires a valid field, got %d", r.Field)
		}
	}
	if r.Operation == OpSubscribe && !r.Field.Valid() {
		return fmt.Errorf("Subscribe requires a valid field, got %d", r.Field)
	}
	return nil
}

// Response represents a broker-to-client response.
//
// CBOR encoding:
//
//	{
//	  1: messageId,       // uint32: matches the request
//	  2: status,          // uint8: 0=success, or error code
//	  3: value,           // string result (Get)
//	  4: subscriptionId,  // uint32 stream handle (Subscribe)
//	  5: detail,          // human-readable error detail
//	  6: serverName,      // broker name (Info)
//	  7: serverVersion    // broker version (Info)
//	}
type Response struct {
	MessageID      uint32 `cbor:"1,keyasint"`
	Status         Status `cbor:"2,keyasint"`
	Value          string `cbor:"3,keyasint,omitempty"`
	SubscriptionID uint32 `cbor:"4,keyasint,omitempty"`
	Detail         string `cbor:"5,keyasint,omitempty"`
	ServerName     string `cbor:"6,keyasint,omitempty"`
	ServerVersion  string `cbor:"7,keyasint,omitempty"`
}

// IsSuccess returns true if the response indicates success.
func (r *Response) IsSuccess() bool {
	return r.Status.IsSuccess()
}

// Notification represents a subscription update from the broker.
//
// CBOR encoding:
//
//	{
//	  1: 0,               // messageId 0 = notification
//	  2: subscriptionId,  // uint32
//	  3: path,            // entry path
//	  4: value,           // new value
//	  5: field,           // uint8 field selector
//	  6: end              // bool: true when the broker closes the stream
//	}
//
// A notification with End set carries no update; it tells the client the
// broker has deliberately ended that subscription's stream.
type Notification struct {
	SubscriptionID uint32       `cbor:"2,keyasint"`
	Path           string       `cbor:"3,keyasint,omitempty"`
	Value          string       `cbor:"4,keyasint,omitempty"`
	Field          signal.Field `cbor:"5,keyasint,omitempty"`
	End            bool         `cbor:"6,keyasint,omitempty"`
}

// Update converts the notification into a signal update.
func (n *Notification) Update() signal.Update {
	return signal.Update{Path: n.Path, Value: n.Value, Field: n.Field}
}

// envelope is the minimal decode used to classify an incoming frame.
type envelope struct {
	MessageID uint32 `cbor:"1,keyasint"`
}

// IsNotification reports whether the encoded message is a notification.
func IsNotification(data []byte) (bool, error) {
	var env envelope
	if err := Unmarshal(data, &env); err != nil {
		return false, fmt.Errorf("failed to classify message: %w", err)
	}
	return env.MessageID == NotificationMessageID, nil
}
