// Command beacon-decode prints the telemetry carried by beacon frames.
//
//	beacon-decode 020106040861626303 ...   decode hex payloads
//	beacon-decode -scan -name att          decode live frames (Linux, BlueZ)
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"envbeacon-go/services/beacon"

	"github.com/lmittmann/tint"
)

func main() {
	var (
		scanMode = flag.Bool("scan", false, "scan for live frames instead of decoding arguments")
		adapter  = flag.String("adapter", "hci0", "BlueZ adapter used with -scan")
		name     = flag.String("name", "", "only report frames with this short name")
		debug    = flag.Bool("debug", false, "log non-matching advertisements")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	})))

	if !*scanMode {
		if flag.NArg() == 0 {
			fmt.Fprintln(os.Stderr, "usage: beacon-decode [-scan] [hex payload ...]")
			os.Exit(2)
		}
		failed := false
		for _, arg := range flag.Args() {
			t, err := decodeHex(arg)
			if err != nil {
				slog.Error("decode failed", "payload", arg, "err", err)
				failed = true
				continue
			}
			logTelemetry(t, "")
		}
		if failed {
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := scan(ctx, *adapter, func(addr string, t beacon.Telemetry) {
		if *name != "" && t.Name != *name {
			slog.Debug("ignored", "addr", addr, "name", t.Name)
			return
		}
		logTelemetry(t, addr)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("scan failed", "err", err)
		os.Exit(1)
	}
}

// decodeHex accepts hex with optional spaces, colons or a 0x prefix.
func decodeHex(s string) (beacon.Telemetry, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	s = strings.NewReplacer(" ", "", ":", "", "-", "").Replace(s)
	raw, err := hex.DecodeString(s)
	if err != nil {
		return beacon.Telemetry{}, err
	}
	return beacon.Decode(raw)
}

func logTelemetry(t beacon.Telemetry, addr string) {
	attrs := []any{
		"name", t.Name,
		"counter", t.Counter,
		"uptime", t.Uptime,
		"battery_mv", t.BatteryMV,
	}
	if addr != "" {
		attrs = append(attrs, "addr", addr)
	}
	if t.TemperatureKnown {
		attrs = append(attrs, "temp_c", fmt.Sprintf("%.2f", t.Temperature))
	} else {
		attrs = append(attrs, "temp_c", "unknown")
	}
	slog.Info("telemetry", attrs...)
}
