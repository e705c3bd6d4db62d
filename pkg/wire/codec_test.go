package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsslink/vsslink-go/pkg/signal"
)

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{"valid get", Request{MessageID: 1, Operation: OpGet, Path: "Vehicle.Speed", View: signal.ViewCurrent}, false},
		{"valid set", Request{MessageID: 2, Operation: OpSet, Path: "Vehicle.Speed", Field: signal.FieldValue, Value: "88.4"}, false},
		{"valid subscribe", Request{MessageID: 3, Operation: OpSubscribe, Path: "Vehicle.Speed", Field: signal.FieldActuatorTarget}, false},
		{"valid info", Request{MessageID: 4, Operation: OpInfo}, false},
		{"reserved message id", Request{MessageID: 0, Operation: OpGet, Path: "Vehicle.Speed"}, true},
		{"unknown operation", Request{MessageID: 5, Operation: Operation(99)}, true},
		{"get without path", Request{MessageID: 6, Operation: OpGet}, true},
		{"set without field", Request{MessageID: 7, Operation: OpSet, Path: "Vehicle.Speed"}, true},
		{"subscribe without field", Request{MessageID: 8, Operation: OpSubscribe, Path: "Vehicle.Speed"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMessageClassification(t *testing.T) {
	reqData, err := EncodeRequest(&Request{
		MessageID: 7,
		Operation: OpGet,
		Path:      "Vehicle.Speed",
	})
	require.NoError(t, err)

	isNotif, err := IsNotification(reqData)
	require.NoError(t, err)
	assert.False(t, isNotif, "request classified as notification")

	notifData, err := EncodeNotification(&Notification{
		SubscriptionID: 3,
		Path:           "Vehicle.Speed",
		Value:          "88.4",
		Field:          signal.FieldValue,
	})
	require.NoError(t, err)

	isNotif, err = IsNotification(notifData)
	require.NoError(t, err)
	assert.True(t, isNotif, "notification not classified as such")
}

func TestResponseRoundTrip(t *testing.T) {
	in := Response{
		MessageID:      42,
		Status:         StatusUnknownPath,
		Detail:         "no such entry",
		SubscriptionID: 0,
	}

	data, err := EncodeResponse(&in)
	require.NoError(t, err)

	out, err := DecodeResponse(data)
	require.NoError(t, err)
	assert.Equal(t, in.MessageID, out.MessageID)
	assert.Equal(t, StatusUnknownPath, out.Status)
	assert.Equal(t, "no such entry", out.Detail)
	assert.True(t, out.Status.IsError())
}

func TestNotificationEndMarker(t *testing.T) {
	data, err := EncodeNotification(&Notification{SubscriptionID: 9, End: true})
	require.NoError(t, err)

	n, err := DecodeNotification(data)
	require.NoError(t, err)
	assert.True(t, n.End)
	assert.EqualValues(t, 9, n.SubscriptionID)
	assert.Empty(t, n.Value)
}

func TestDecodeIgnoresUnknownKeys(t *testing.T) {
	// A newer broker may add keys; the decoder must not reject them.
	data, err := Marshal(map[int]any{
		1: uint32(11),
		2: uint8(StatusSuccess),
		3: "55",
		9: "future-extension",
	})
	require.NoError(t, err)

	resp, err := DecodeResponse(data)
	require.NoError(t, err)
	assert.EqualValues(t, 11, resp.MessageID)
	assert.Equal(t, "55", resp.Value)
}
