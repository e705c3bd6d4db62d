// Package wire implements the message encoding for the vsslink broker
// protocol.
//
// Messages are CBOR maps with integer keys for compactness. Three message
// shapes exist:
//   - Request: client to broker, carries an operation and a message ID
//   - Response: broker to client, correlated by message ID
//   - Notification: broker to client, message ID 0, carries a subscription ID
//
// # Message Layout
//
//	Request      {1: messageId, 2: operation, 3: path, 4: field, 5: view, 6: value}
//	Response     {1: messageId, 2: status, 3: value, 4: subscriptionId,
//	              5: detail, 6: serverName, 7: serverVersion}
//	Notification {1: 0, 2: subscriptionId, 3: path, 4: value, 5: field, 6: end}
//
// Field and view selectors reuse the numeric values from package signal.
// The encoding is deterministic (canonical key order) so identical messages
// produce identical bytes; decoding is lenient about unknown keys for
// forward compatibility.
package wire
