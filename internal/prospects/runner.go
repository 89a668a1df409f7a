package prospects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/propensity/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	outputPermission    = 0600
)

// ErrAllFailed is returned when no prospect could be scored.
var ErrAllFailed = errors.New("every prediction failed")

// Run executes the complete prospects run.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting prospects run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("prospects", config.NumProspects),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Any("seed", config.Seed))

	client := newHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate prospects from the form the service serves
	form, err := fetchForm(ctx, client)
	if err != nil {
		return stats, fmt.Errorf("simulator options unavailable: %w", err)
	}
	prospects, err := generateProspects(ctx, config, form, stats)
	if err != nil {
		return stats, fmt.Errorf("prospect generation failed: %w", err)
	}

	// Step 3: Score concurrently
	results := submitProspects(ctx, config, client, prospects, stats)

	// Step 4: Report summary
	if rep, err := fetchReport(ctx, client); err != nil {
		log.Warn(ctx, "report unavailable", logger.Error(err))
	} else {
		stats.ReportContacts = rep.Overview.Contacts
		for _, s := range rep.Insights {
			log.Info(ctx, "insight", logger.String("text", s))
		}
	}

	// Step 5: Save
	if config.OutputFile != "" {
		if err := saveRun(ctx, config.OutputFile, prospects, results); err != nil {
			log.Warn(ctx, "failed to save run", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	if stats.ProspectsSubmitted > 0 && stats.Successful == 0 {
		return stats, ErrAllFailed
	}
	log.Info(ctx, "prospects run completed")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	logger.Get().Info(ctx, "checking service health")

	status, _, err := client.Get(ctx, healthPath)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	// Any 200 is healthy; the body is the Prometheus exposition.
	if status != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", status)
	}
	return nil
}

// savedRun is the JSON layout of an output file.
type savedRun struct {
	GeneratedAt time.Time  `json:"generated_at"`
	Prospects   []Prospect `json:"prospects"`
	Results     []Result   `json:"results"`
}

// saveRun writes prospects and results to filename.
func saveRun(ctx context.Context, filename string, prospects []Prospect, results []Result) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(savedRun{
		GeneratedAt: time.Now().UTC(),
		Prospects:   prospects,
		Results:     results,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	if err := os.WriteFile(filename, data, outputPermission); err != nil {
		return fmt.Errorf("failed to write run: %w", err)
	}
	logger.Get().Info(ctx, "run saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(stats *Stats) {
	var successRate, perSecond float64
	if stats.ProspectsSubmitted > 0 {
		successRate = float64(stats.Successful) / float64(stats.ProspectsSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.ProspectsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("generated", stats.ProspectsGenerated),
		logger.Int("submitted", stats.ProspectsSubmitted),
		logger.Int("successful", stats.Successful),
		logger.Int("failed", stats.Failed),
		logger.Int("tierHigh", stats.Tiers["high"]),
		logger.Int("tierModerate", stats.Tiers["moderate"]),
		logger.Int("tierLow", stats.Tiers["low"]),
		logger.Int("reportContacts", stats.ReportContacts),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("prospectsPerSecond", perSecond))
}
