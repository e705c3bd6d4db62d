// Command vsslink-watch subscribes to vehicle signals and prints every
// update as it arrives.
//
// Usage:
//
//	vsslink-watch [flags]
//
// Flags:
//
//	-config string   Configuration file path (YAML)
//	-server string   Broker address (overrides the config file)
//	-paths string    Comma-separated signal paths (overrides the config file)
//	-discover        Find a broker via mDNS instead of using an address
//	-trace string    Write a protocol trace to this .vtrace file
//	-debug           Log client events to the console
//
// Examples:
//
//	# Watch signals from a config file
//	vsslink-watch -config watch.yaml
//
//	# Watch two signals on an explicit broker
//	vsslink-watch -server 127.0.0.1:55555 -paths Vehicle.Speed,Vehicle.Cabin.Temperature
//
//	# Discover the broker and record a trace
//	vsslink-watch -discover -paths Vehicle.Speed -trace session.vtrace
//
// The watcher reconnects automatically on transport failure and resumes
// all subscriptions; interrupt with Ctrl-C to exit.
package main

import (
	"context"
	"flag"
	stdlog "log"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vsslink/vsslink-go/pkg/client"
	"github.com/vsslink/vsslink-go/pkg/config"
	"github.com/vsslink/vsslink-go/pkg/discovery"
	"github.com/vsslink/vsslink-go/pkg/log"
	"github.com/vsslink/vsslink-go/pkg/signal"
	"github.com/vsslink/vsslink-go/pkg/version"
)

func main() {
	configFile := flag.String("config", "", "Configuration file path (YAML)")
	server := flag.String("server", "", "Broker address (overrides the config file)")
	paths := flag.String("paths", "", "Comma-separated signal paths (overrides the config file)")
	discover := flag.Bool("discover", false, "Find a broker via mDNS instead of using an address")
	trace := flag.String("trace", "", "Write a protocol trace to this .vtrace file")
	debug := flag.Bool("debug", false, "Log client events to the console")
	flag.Parse()

	stdlog.SetFlags(stdlog.Ltime | stdlog.Lmicroseconds)

	cfg, err := buildConfig(*configFile, *server, *paths, *discover)
	if err != nil {
		stdlog.Fatalf("Configuration error: %v", err)
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
		if cfg.Debug {
			opts.Logger = log.NewMultiLogger(traceLogger, log.NewSlogAdapter(nil))
		}
	}

	c, err := client.New(cfg, opts)
	if err != nil {
		stdlog.Fatalf("Failed to create client: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stdlog.Printf("Connecting to %s...", cfg.ServerAddress)
	if err := c.Connect(ctx); err != nil {
		stdlog.Fatalf("Failed to connect: %v", err)
	}

	if info, err := c.ServerInfo(ctx); err == nil {
		stdlog.Printf("Connected to %s %s", info.Name, info.Version)
		if _, warning := version.CheckBroker(info.Version); warning != "" {
			stdlog.Printf("Warning: %s", warning)
		}
	}

	err = c.SubscribeAll(ctx, func(path, value string, field signal.Field) {
		stdlog.Printf("%-50s %-16s %s", path, field, value)
	})
	if err != nil {
		stdlog.Fatalf("Failed to subscribe: %v", err)
	}
	stdlog.Printf("Watching %d signal(s)", c.SubscriptionCount())

	sigCh := make(chan os.Signal, 1)
	ossignal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	stdlog.Println("Shutting down...")
	c.DetachAllSubscriptions()
	if !c.JoinAllSubscriptionsWithTimeout(5 * time.Second) {
		stdlog.Println("Warning: some subscription workers did not stop in time")
	}
}

// buildConfig merges the config file with command line overrides.
func buildConfig(configFile, server, paths string, discover bool) (config.Config, error) {
	var cfg config.Config

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if server != "" {
		cfg.ServerAddress = server
	}
	if paths != "" {
		cfg.SignalPaths = nil
		for _, p := range strings.Split(paths, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.SignalPaths = append(cfg.SignalPaths, p)
			}
		}
	}

	if discover && cfg.ServerAddress == "" {
		ctx, cancel := context.WithTimeout(context.Background(), discovery.BrowseTimeout)
		defer cancel()

		stdlog.Println("Searching for a broker via mDNS...")
		svc, err := discovery.NewBrowser(discovery.BrowserConfig{}).FindFirst(ctx)
		if err != nil {
			return config.Config{}, err
		}
		stdlog.Printf("Found broker %q at %s", svc.InstanceName, svc.Address())
		cfg.ServerAddress = svc.Address()
	}

	return cfg, cfg.Validate()
}
