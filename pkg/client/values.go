package client

import (
	"context"
	"fmt"

	"github.com/vsslink/vsslink-go/pkg/signal"
)

// Typed value access. Go methods cannot have type parameters, so these
// live as package-level functions taking the client first.

// GetCurrentValueAs reads the current value of an entry and parses it
// into T. Parsing is strict: the whole string must be consumed, so
// trailing characters fail with ErrConversion.
func GetCurrentValueAs[T signal.Primitive](ctx context.Context, c *Client, path string) (T, error) {
	return getAs[T](ctx, c, path, signal.ViewCurrent)
}

// GetTargetValueAs reads the actuation target of an entry and parses it
// into T.
func GetTargetValueAs[T signal.Primitive](ctx context.Context, c *Client, path string) (T, error) {
	return getAs[T](ctx, c, path, signal.ViewTarget)
}

func getAs[T signal.Primitive](ctx context.Context, c *Client, path string, view signal.View) (T, error) {
	var zero T

	raw, err := c.get(ctx, path, view)
	if err != nil {
		return zero, err
	}

	v, ok := signal.Parse[T](raw)
	if !ok {
		return zero, fmt.Errorf("%w: %q for %s", ErrConversion, raw, path)
	}
	return v, nil
}

// SetCurrentValueAs formats v and writes it as the current value of an
// entry.
func SetCurrentValueAs[T signal.Primitive](ctx context.Context, c *Client, path string, v T) error {
	return c.SetCurrentValue(ctx, path, signal.Format(v))
}

// SetTargetValueAs formats v and writes it as the actuation target of
// an entry.
func SetTargetValueAs[T signal.Primitive](ctx context.Context, c *Client, path string, v T) error {
	return c.SetTargetValue(ctx, path, signal.Format(v))
}
