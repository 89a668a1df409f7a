package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/propensity/internal/prospects"
)

// Default configuration constants.
const (
	defaultNumProspects = 1000
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 30 * time.Second
	defaultRunTimeout   = 10 * time.Minute
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		baseURL    = flag.String("url", "http://localhost:8501", "Base URL of the service")
		count      = flag.Int("prospects", defaultNumProspects, "Number of prospects to generate and score")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed       = flag.Uint64("seed", 0, "Generator seed, 0 for random")
		outputFile = flag.String("output", "", `Save prospects and results as JSON ("auto" for a timestamped name)`)
		logFile    = flag.String("log", "", "Also write logs to this file")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		prospects.ShowHelp()
		return 0
	}

	closeLog, err := prospects.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return 1
	}
	defer func() {
		if err := closeLog(); err != nil {
			os.Stderr.WriteString("Failed to close log: " + err.Error() + "\n")
		}
	}()

	if *outputFile == "auto" {
		*outputFile = prospects.DefaultOutputFile(time.Now())
	}
	if *workers < 1 {
		*workers = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &prospects.Config{
		BaseURL:      *baseURL,
		NumProspects: *count,
		Workers:      *workers,
		Timeout:      *timeout,
		Seed:         *seed,
		OutputFile:   *outputFile,
		Verbose:      *verbose,
	}

	if _, err := prospects.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Run failed: " + err.Error() + "\n")
		return 1
	}
	return 0
}
