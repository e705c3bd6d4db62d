// Command vsslink-feed pushes signal values into a broker.
//
// It reads "path value" lines from standard input and writes each as a
// current-value update, for replaying recorded drives or wiring simple
// producers into a broker:
//
//	$ vsslink-feed -server 127.0.0.1:55555 <<EOF
//	Vehicle.Speed 48.2
//	Vehicle.Cabin.Temperature 21.5
//	EOF
//
// Numeric values go through the streaming path; anything else is sent
// as a raw string. Lines starting with '#' are skipped. The -rate flag
// throttles replay to a fixed number of lines per second.
package main

import (
	"bufio"
	"context"
	"flag"
	stdlog "log"
	"os"
	"strings"
	"time"

	"github.com/vsslink/vsslink-go/pkg/client"
	"github.com/vsslink/vsslink-go/pkg/config"
	"github.com/vsslink/vsslink-go/pkg/signal"
)

func main() {
	server := flag.String("server", "", "Broker address")
	rate := flag.Float64("rate", 0, "Lines per second (0 = unthrottled)")
	debug := flag.Bool("debug", false, "Log client events to the console")
	flag.Parse()

	stdlog.SetFlags(stdlog.Ltime)

	if *server == "" {
		stdlog.Fatal("Broker address required (-server)")
	}

	cfg := config.Config{ServerAddress: *server, Debug: *debug}
	c, err := client.New(cfg, client.Options{})
	if err != nil {
		stdlog.Fatalf("Failed to create client: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Connect(ctx); err != nil {
		stdlog.Fatalf("Failed to connect: %v", err)
	}

	var throttle *time.Ticker
	if *rate > 0 {
		throttle = time.NewTicker(time.Duration(float64(time.Second) / *rate))
		defer throttle.Stop()
	}

	var sent, failed int
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			stdlog.Printf("Skipping malformed line: %q", line)
			continue
		}
		path, value := fields[0], fields[1]

		if throttle != nil {
			<-throttle.C
		}

		if num, ok := signal.Parse[float64](value); ok {
			err = c.StreamUpdate(ctx, path, num)
		} else {
			err = c.SetCurrentValue(ctx, path, value)
		}
		if err != nil {
			failed++
			stdlog.Printf("Failed to set %s: %v", path, err)
			continue
		}
		sent++
	}
	if err := scanner.Err(); err != nil {
		stdlog.Fatalf("Read error: %v", err)
	}

	stdlog.Printf("Done: %d update(s) sent, %d failed", sent, failed)
}
