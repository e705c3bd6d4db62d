// Package log provides structured protocol logging for the vsslink client.
//
// This package defines the Logger interface and Event types for capturing
// client events at multiple layers (transport frames, decoded wire messages,
// client state changes). It is separate from operational logging (slog) -
// protocol capture provides a complete machine-readable trace of everything
// the client exchanged with the broker, for debugging and analysis.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	client.New(cfg, client.Options{Logger: log.NewSlogAdapter(slog.Default())})
//
//	// For production: write to a binary trace file
//	tl, _ := log.NewTraceLogger("/var/log/vsslink/client.vtrace")
//	client.New(cfg, client.Options{Logger: tl})
//
//	// Both: use MultiLogger
//	client.New(cfg, client.Options{Logger: log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()), tl)})
//
// # File Format
//
// Trace files are a concatenation of CBOR-encoded events with integer keys,
// conventionally using the .vtrace extension. The vsslink-trace CLI tool
// prints them back as text; Reader iterates them programmatically.
package log
