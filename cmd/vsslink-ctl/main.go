// Command vsslink-ctl is an interactive shell for a vehicle signal
// broker.
//
// Usage:
//
//	vsslink-ctl [flags]
//
// Flags:
//
//	-config string   Configuration file path (YAML)
//	-server string   Broker address (overrides the config file)
//	-trace string    Write a protocol trace to this .vtrace file
//	-debug           Log client events to the console
//
// Interactive Commands:
//
//	get <path>            - Read a current value
//	target <path>         - Read an actuation target
//	set <path> <value>    - Write a current value
//	actuate <path> <value> - Write an actuation target
//	subscribe <path>      - Watch a signal (updates print asynchronously)
//	detach                - Stop watching all signals
//	info                  - Show broker information
//	reconnect             - Force a fresh connection
//	status                - Show connection and subscription state
//	quit                  - Exit
package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/vsslink/vsslink-go/pkg/client"
	"github.com/vsslink/vsslink-go/pkg/config"
	"github.com/vsslink/vsslink-go/pkg/log"
	"github.com/vsslink/vsslink-go/pkg/signal"
	"github.com/vsslink/vsslink-go/pkg/version"
)

const commandTimeout = 10 * time.Second

func main() {
	configFile := flag.String("config", "", "Configuration file path (YAML)")
	server := flag.String("server", "", "Broker address (overrides the config file)")
	trace := flag.String("trace", "", "Write a protocol trace to this .vtrace file")
	debug := flag.Bool("debug", false, "Log client events to the console")
	flag.Parse()

	cfg := config.Config{}
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			stdlog.Fatalf("Configuration error: %v", err)
		}
		cfg = loaded
	}
	if *server != "" {
		cfg.ServerAddress = *server
	}
	cfg.Debug = cfg.Debug || *debug

	var opts client.Options
	if *trace != "" {
		traceLogger, err := log.NewTraceLogger(*trace)
		if err != nil {
			stdlog.Fatalf("Failed to open trace file: %v", err)
		}
		defer traceLogger.Close()
		opts.Logger = traceLogger
	}

	c, err := client.New(cfg, opts)
	if err != nil {
		stdlog.Fatalf("Failed to create client: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	fmt.Printf("Connecting to %s...\n", cfg.ServerAddress)
	if err := c.Connect(ctx); err != nil {
		stdlog.Fatalf("Failed to connect: %v", err)
	}
	if info, err := c.ServerInfo(ctx); err == nil {
		fmt.Printf("Connected to %s %s\n", info.Name, info.Version)
		if _, warning := version.CheckBroker(info.Version); warning != "" {
			fmt.Printf("Warning: %s\n", warning)
		}
	}

	shell, err := newShell(c)
	if err != nil {
		stdlog.Fatalf("Failed to start shell: %v", err)
	}
	// Route log output through readline so async prints do not mangle
	// the prompt.
	stdlog.SetOutput(shell.rl.Stdout())
	shell.run(ctx)
}

// shell is the interactive command loop.
type shell struct {
	c  *client.Client
	rl *readline.Instance
}

func newShell(c *client.Client) (*shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "vss> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &shell{c: c, rl: rl}, nil
}

func (s *shell) run(ctx context.Context) {
	defer s.rl.Close()

	s.printHelp()

	for {
		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			s.printHelp()

		case "get", "g":
			s.cmdGet(args, signal.ViewCurrent)

		case "target", "t":
			s.cmdGet(args, signal.ViewTarget)

		case "set", "s":
			s.cmdSet(args, signal.FieldValue)

		case "actuate", "a":
			s.cmdSet(args, signal.FieldActuatorTarget)

		case "subscribe", "sub":
			s.cmdSubscribe(args)

		case "detach":
			s.c.DetachAllSubscriptions()
			fmt.Fprintln(s.rl.Stdout(), "Detached all subscriptions")

		case "info":
			s.cmdInfo()

		case "reconnect":
			s.cmdReconnect()

		case "status":
			s.cmdStatus()

		case "quit", "exit", "q":
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return

		default:
			fmt.Fprintf(s.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (s *shell) printHelp() {
	fmt.Fprintln(s.rl.Stdout(), `
Signal Commands:
  get <path>             - Read a current value
  target <path>          - Read an actuation target
  set <path> <value>     - Write a current value
  actuate <path> <value> - Write an actuation target
  subscribe <path>       - Watch a signal (updates print asynchronously)
  detach                 - Stop watching all signals

General:
  info           - Show broker information
  reconnect      - Force a fresh connection
  status         - Show connection and subscription state
  help           - Show this help
  quit           - Exit`)
}

func (s *shell) cmdGet(args []string, view signal.View) {
	if len(args) != 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: get|target <path>")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var value string
	var err error
	if view == signal.ViewTarget {
		value, err = s.c.GetTargetValue(ctx, args[0])
	} else {
		value, err = s.c.GetCurrentValue(ctx, args[0])
	}
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "%s = %s\n", args[0], value)
}

func (s *shell) cmdSet(args []string, field signal.Field) {
	if len(args) != 2 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: set|actuate <path> <value>")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var err error
	if field == signal.FieldActuatorTarget {
		err = s.c.SetTargetValue(ctx, args[0], args[1])
	} else {
		err = s.c.SetCurrentValue(ctx, args[0], args[1])
	}
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "OK")
}

func (s *shell) cmdSubscribe(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: subscribe <path>")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	out := s.rl.Stdout()
	err := s.c.SubscribeCurrentValue(ctx, args[0], func(path, value string, field signal.Field) {
		fmt.Fprintf(out, "[%s] %s = %s\n", field, path, value)
	})
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Subscribed to %s\n", args[0])
}

func (s *shell) cmdInfo() {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	info, err := s.c.ServerInfo(ctx)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Broker: %s\nVersion: %s\n", info.Name, info.Version)
	if compatible, warning := version.CheckBroker(info.Version); !compatible {
		fmt.Fprintf(s.rl.Stdout(), "Warning: %s\n", warning)
	}
}

func (s *shell) cmdReconnect() {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := s.c.Reconnect(ctx); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "Reconnected")
}

func (s *shell) cmdStatus() {
	state := "disconnected"
	if s.c.IsConnected() {
		state = "connected"
	}
	fmt.Fprintf(s.rl.Stdout(), "Connection: %s\nSubscriptions: %d\n",
		state, s.c.SubscriptionCount())
}
