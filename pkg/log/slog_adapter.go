package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes client events to an slog.Logger.
// Useful for development when you want to see protocol events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given
// slog.Logger. A nil logger falls back to slog.Default.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("conn_id", event.ConnectionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote_addr", event.RemoteAddr))
	}

	// Add type-specific attributes
	switch {
	case event.Frame != nil:
		attrs = append(attrs,
			slog.Int("frame_size", event.Frame.Size),
			slog.Bool("truncated", event.Frame.Truncated),
		)
	case event.Message != nil:
		attrs = append(attrs,
			slog.Uint64("msg_id", uint64(event.Message.MessageID)),
			slog.String("msg_type", event.Message.Type.String()),
		)
		if event.Message.Operation != nil {
			attrs = append(attrs, slog.String("operation", event.Message.Operation.String()))
		}
		if event.Message.Path != "" {
			attrs = append(attrs, slog.String("path", event.Message.Path))
		}
		if event.Message.Field != nil {
			attrs = append(attrs, slog.String("field", event.Message.Field.String()))
		}
		if event.Message.View != nil {
			attrs = append(attrs, slog.String("view", event.Message.View.String()))
		}
		if event.Message.Status != nil {
			attrs = append(attrs, slog.String("status", event.Message.Status.String()))
		}
		if event.Message.SubscriptionID != nil {
			attrs = append(attrs, slog.Uint64("subscription", uint64(*event.Message.SubscriptionID)))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "vsslink", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
