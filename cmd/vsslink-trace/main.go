// Command vsslink-trace views and summarizes protocol trace files.
//
// Trace files (.vtrace) are written by vsslink-ctl and vsslink-watch
// with the -trace flag, or by any program using the client's file
// logger.
//
// Usage:
//
//	vsslink-trace <command> [flags] <file.vtrace>
//
// Commands:
//
//	view     View trace events in human-readable format
//	stats    Show statistics about the trace file
//
// Examples:
//
//	# View all events
//	vsslink-trace view session.vtrace
//
//	# View only wire-layer messages sent to the broker
//	vsslink-trace view -layer wire -direction out session.vtrace
//
//	# Summarize a trace
//	vsslink-trace stats session.vtrace
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vsslink/vsslink-go/pkg/log"
)

const usage = `vsslink-trace - Protocol Trace Viewer

Usage:
  vsslink-trace <command> [flags] <file.vtrace>

Commands:
  view     View trace events in human-readable format
  stats    Show statistics about the trace file

Use "vsslink-trace <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `vsslink-trace view - View trace events in human-readable format

Usage:
  vsslink-trace view [flags] <file.vtrace>

Flags:
`)
		fs.PrintDefaults()
	}

	layer := fs.String("layer", "", "Filter by layer (transport, wire, client)")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (message, state, error)")
	connID := fs.String("conn-id", "", "Filter by connection ID")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: trace file path required")
		fs.Usage()
		os.Exit(1)
	}

	filter, err := buildFilter(*layer, *direction, *category, *connID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := view(fs.Arg(0), filter, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `vsslink-trace stats - Show statistics about the trace file

Usage:
  vsslink-trace stats <file.vtrace>

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: trace file path required")
		fs.Usage()
		os.Exit(1)
	}

	if err := stats(fs.Arg(0), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func buildFilter(layer, direction, category, connID string) (log.Filter, error) {
	filter := log.Filter{ConnectionID: connID}

	if layer != "" {
		l, err := parseLayer(layer)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Layer = &l
	}
	if direction != "" {
		d, err := parseDirection(direction)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Direction = &d
	}
	if category != "" {
		c, err := parseCategory(category)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Category = &c
	}

	return filter, nil
}

func parseLayer(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "wire":
		return log.LayerWire, nil
	case "client":
		return log.LayerClient, nil
	default:
		return 0, fmt.Errorf("unknown layer: %s (use: transport, wire, client)", s)
	}
}

func parseDirection(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("unknown direction: %s (use: in, out)", s)
	}
}

func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "message":
		return log.CategoryMessage, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("unknown category: %s (use: message, state, error)", s)
	}
}

func view(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return err
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(w, formatEvent(event))
	}
}

// formatEvent renders one event as a single line.
func formatEvent(e log.Event) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %-3s %-9s %-7s",
		e.Timestamp.Format("15:04:05.000000"),
		e.Direction, e.Layer, e.Category)

	if e.ConnectionID != "" {
		fmt.Fprintf(&b, " [%.8s]", e.ConnectionID)
	}

	switch {
	case e.Frame != nil:
		fmt.Fprintf(&b, " frame %d bytes", e.Frame.Size)
		if e.Frame.Truncated {
			b.WriteString(" (truncated)")
		}

	case e.Message != nil:
		m := e.Message
		fmt.Fprintf(&b, " %s", m.Type)
		if m.MessageID != 0 {
			fmt.Fprintf(&b, " #%d", m.MessageID)
		}
		if m.Operation != nil {
			fmt.Fprintf(&b, " %s", m.Operation)
		}
		if m.Path != "" {
			fmt.Fprintf(&b, " %s", m.Path)
		}
		if m.Field != nil {
			fmt.Fprintf(&b, " field=%s", m.Field)
		}
		if m.View != nil {
			fmt.Fprintf(&b, " view=%s", m.View)
		}
		if m.Status != nil {
			fmt.Fprintf(&b, " status=%s", m.Status)
		}
		if m.SubscriptionID != nil {
			fmt.Fprintf(&b, " sub=%d", *m.SubscriptionID)
		}

	case e.StateChange != nil:
		s := e.StateChange
		fmt.Fprintf(&b, " %s %s -> %s", s.Entity, s.OldState, s.NewState)
		if s.Reason != "" {
			fmt.Fprintf(&b, " (%s)", s.Reason)
		}

	case e.Error != nil:
		fmt.Fprintf(&b, " %s: %s", e.Error.Context, e.Error.Message)
	}

	return b.String()
}

func stats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	var (
		total       int
		byLayer     = make(map[log.Layer]int)
		byCategory  = make(map[log.Category]int)
		connections = make(map[string]struct{})
		first, last log.Event
	)

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if total == 0 {
			first = event
		}
		last = event
		total++
		byLayer[event.Layer]++
		byCategory[event.Category]++
		if event.ConnectionID != "" {
			connections[event.ConnectionID] = struct{}{}
		}
	}

	fmt.Fprintf(w, "Events:      %d\n", total)
	if total > 0 {
		fmt.Fprintf(w, "Time range:  %s - %s (%s)\n",
			first.Timestamp.Format("15:04:05.000"),
			last.Timestamp.Format("15:04:05.000"),
			last.Timestamp.Sub(first.Timestamp).Round(time.Millisecond))
	}
	fmt.Fprintf(w, "Connections: %d\n", len(connections))

	fmt.Fprintln(w, "\nBy layer:")
	for _, l := range []log.Layer{log.LayerTransport, log.LayerWire, log.LayerClient} {
		if n := byLayer[l]; n > 0 {
			fmt.Fprintf(w, "  %-10s %d\n", l, n)
		}
	}

	fmt.Fprintln(w, "\nBy category:")
	for _, c := range []log.Category{log.CategoryMessage, log.CategoryState, log.CategoryError} {
		if n := byCategory[c]; n > 0 {
			fmt.Fprintf(w, "  %-10s %d\n", c, n)
		}
	}

	return nil
}
