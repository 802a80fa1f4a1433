// Command btscan discovers nearby Bluetooth devices over BLE advertisement
// scanning and Classic inquiry, and writes a deduplicated record set to
// JSON and/or CSV (optionally appending to a SQLite session log).
//
// An operator interrupt stops the active scan window gracefully: whatever
// was gathered is still written. The exit code is zero on any completed
// session regardless of device count; only a failed output write (or
// unusable configuration) is a failure.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"btscan/internal/adapter"
	"btscan/internal/codec"
	"btscan/internal/config"
	"btscan/internal/domain"
	"btscan/internal/repository/sqlite"
	"btscan/internal/service"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Config file supplies flag defaults; flags override
	cfg, cfgPath, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "btscan: %v\n", err)
		return 1
	}

	modeFlag := flag.String("mode", cfg.Mode, "what to scan: ble, classic or both")
	seconds := flag.Int("seconds", cfg.Seconds, "scan duration per mode in seconds")
	adapterID := flag.String("adapter", cfg.Adapter, "adapter/interface name (e.g. 'hci0' on Linux)")
	jsonPath := flag.String("json", cfg.Output.JSON, "write results to JSON file path")
	csvPath := flag.String("csv", cfg.Output.CSV, "write results to CSV file path")
	dbPath := flag.String("db", cfg.Output.Database, "append results to SQLite session log at path")
	verbose := flag.Bool("verbose", false, "print sightings as they arrive")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	mode, err := service.ParseMode(*modeFlag)
	if err != nil {
		logger.Error().Err(err).Msg("invalid mode")
		return 1
	}
	if *seconds < 0 {
		logger.Error().Int("seconds", *seconds).Msg("scan duration must be non-negative")
		return 1
	}

	started := time.Now()
	logger.Info().
		Str("platform", runtime.GOOS+"/"+runtime.GOARCH).
		Str("runtime", runtime.Version()).
		Msg("btscan starting")
	if cfgPath != "" {
		logger.Info().Str("path", cfgPath).Msg("loaded config")
	}
	adapterLabel := *adapterID
	if adapterLabel == "" {
		adapterLabel = "(default)"
	}
	logger.Info().
		Str("mode", string(mode)).
		Int("seconds", *seconds).
		Str("adapter", adapterLabel).
		Msg("session parameters")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	coordinator := service.NewCoordinator(
		adapter.NewNativeBLEProvider(logger),
		adapter.NewHCIClassicProvider(*adapterID, logger),
		logger,
	)
	summary := coordinator.Run(ctx, service.Options{
		Mode:      mode,
		Duration:  time.Duration(*seconds) * time.Second,
		AdapterID: *adapterID,
	})
	stop()

	if summary.Interrupted {
		logger.Info().Msg("interrupted by operator; writing results gathered so far")
	}
	if summary.TotalDevices == 0 {
		logger.Info().Msg("no devices discovered")
	} else {
		logger.Info().Int("devices", summary.TotalDevices).Msg("total unique devices")
	}

	rows := coordinator.Rows()
	failed := false

	outJSON := *jsonPath
	if outJSON == "" && *csvPath == "" {
		outJSON = codec.DefaultOutputName(time.Now())
		logger.Info().Str("path", outJSON).Msg("no output path provided; writing default JSON")
	}
	if outJSON != "" {
		if err := writeFile(outJSON, codec.NewJSONExporter(), rows); err != nil {
			logger.Error().Err(err).Str("path", outJSON).Msg("failed to write JSON output")
			failed = true
		} else {
			logger.Info().Str("path", outJSON).Msg("wrote JSON")
		}
	}
	if *csvPath != "" {
		if err := writeFile(*csvPath, codec.NewCSVExporter(), rows); err != nil {
			logger.Error().Err(err).Str("path", *csvPath).Msg("failed to write CSV output")
			failed = true
		} else {
			logger.Info().Str("path", *csvPath).Msg("wrote CSV")
		}
	}
	if *dbPath != "" {
		if err := appendSessionLog(*dbPath, started, string(mode), rows); err != nil {
			logger.Error().Err(err).Str("path", *dbPath).Msg("failed to append session log")
			failed = true
		} else {
			logger.Info().Str("path", *dbPath).Msg("appended session log")
		}
	}

	if failed {
		return 1
	}
	return 0
}

func writeFile(path string, exporter codec.Exporter, rows []domain.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := exporter.Export(rows, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// appendSessionLog uses a fresh context: the session log is written even
// after an operator interrupt cancelled the scan context
func appendSessionLog(path string, startedAt time.Time, mode string, rows []domain.Row) error {
	log, err := sqlite.Open(path)
	if err != nil {
		return err
	}
	defer log.Close()
	return log.Append(context.Background(), startedAt, mode, rows)
}
