package prospects

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/propensity/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging sends log output to stdout and, when logFile is set, to that
// file as well. The returned func flushes the logger and closes the file.
func SetupLogging(logFile string, verbose bool) (func() error, error) {
	var (
		out  io.Writer = os.Stdout
		file *os.File
	)
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		file = f
		out = io.MultiWriter(os.Stdout, file)
	}
	if err := logger.Init(logger.WithOutput(out)); err != nil {
		if file != nil {
			_ = file.Close()
		}
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return func() error {
		if err := logger.Sync(); err != nil {
			return err
		}
		if file == nil {
			return nil
		}
		// Later log calls go to stdout only.
		if err := logger.Init(logger.WithOutput(os.Stdout)); err != nil {
			return err
		}
		return file.Close()
	}, nil
}

// DefaultOutputFile returns a timestamped file name for saved runs.
func DefaultOutputFile(now time.Time) string {
	return "prospects_" + now.Format("20060102_150405") + ".json"
}

// ShowHelp prints usage information for the prospects tool.
func ShowHelp() {
	os.Stdout.WriteString(`Propensity Prospects Tool
=========================

Generates random prospects from the simulator form, scores them concurrently
against a running service and prints the tier distribution.

Usage:
  go run ./cmd/prospects [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8501")
  -prospects int
        Number of prospects to generate and score (default 1000)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -seed uint
        Generator seed, 0 for random (default 0)
  -output string
        Save prospects and results as JSON ("auto" for a timestamped name)
  -log string
        Also write logs to this file
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Smoke test a local service
  go run ./cmd/prospects -prospects 50

  # Reproducible load run with saved results
  go run ./cmd/prospects -prospects 20000 -workers 32 -seed 42 -output auto
`)
}
