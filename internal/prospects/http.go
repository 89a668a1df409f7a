package prospects

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/propensity/internal/domain/features"
	"github.com/okian/propensity/pkg/logger"
)

// HTTPClient wraps http.Client with the service base URL.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Get performs a GET request and returns the status and body.
func (c *HTTPClient) Get(ctx context.Context, path string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, body any) (int, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *HTTPClient) do(req *http.Request) (int, []byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// fetchForm reads the simulator form the service expects.
func fetchForm(ctx context.Context, client *HTTPClient) (features.Form, error) {
	var form features.Form
	status, body, err := client.Get(ctx, "/api/v1/simulator/options")
	if err != nil {
		return form, err
	}
	if status != http.StatusOK {
		return form, fmt.Errorf("simulator options returned status %d", status)
	}
	if err := json.Unmarshal(body, &form); err != nil {
		return form, fmt.Errorf("failed to decode simulator options: %w", err)
	}
	return form, nil
}

// submitProspects scores prospects concurrently and tallies the outcomes.
func submitProspects(ctx context.Context, config *Config, client *HTTPClient, prospects []Prospect, stats *Stats) []Result {
	log := logger.Get()
	log.Info(ctx, "submitting prospects", logger.Int("count", len(prospects)), logger.Int("workers", config.Workers))

	results := make([]Result, len(prospects))
	var (
		submitted  atomic.Int64
		successful atomic.Int64
		failed     atomic.Int64
	)

	var lastReport atomic.Int64
	jobs := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for w := 0; w < config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res := submitOne(ctx, client, prospects[i])
				results[i] = res

				n := submitted.Add(1)
				if res.Prediction != nil {
					successful.Add(1)
				} else {
					failed.Add(1)
				}
				if config.Verbose {
					log.Debug(ctx, "prospect scored",
						logger.String("prospect", res.ProspectID),
						logger.Int("status", res.Status),
						logger.String("error", res.Error))
				}

				now := time.Now().UnixNano()
				last := lastReport.Load()
				if now-last >= int64(ProgressInterval) && lastReport.CompareAndSwap(last, now) {
					log.Info(ctx, "progress",
						logger.Int("submitted", int(n)),
						logger.Int("total", len(prospects)),
						logger.Int("failed", int(failed.Load())))
				}
			}
		}()
	}

feed:
	for i := range prospects {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	stats.ProspectsSubmitted = int(submitted.Load())
	stats.Successful = int(successful.Load())
	stats.Failed = int(failed.Load())
	stats.Tiers = map[string]int{}
	for _, r := range results {
		if r.Prediction != nil {
			stats.Tiers[r.Prediction.Tier]++
		}
	}
	return results
}

// submitOne posts one prospect.
func submitOne(ctx context.Context, client *HTTPClient, p Prospect) Result {
	res := Result{ProspectID: p.ID}
	status, body, err := client.Post(ctx, predictPath, p.Values)
	res.Status = status
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if status != http.StatusOK {
		var e struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &e) == nil && e.Code != "" {
			res.Error = e.Code + ": " + e.Message
		} else {
			res.Error = http.StatusText(status)
		}
		return res
	}
	var pred Prediction
	if err := json.Unmarshal(body, &pred); err != nil {
		res.Error = "decode prediction: " + err.Error()
		return res
	}
	res.Prediction = &pred
	return res
}

// fetchReport reads the dashboard report summary.
func fetchReport(ctx context.Context, client *HTTPClient) (ReportSummary, error) {
	var rep ReportSummary
	status, body, err := client.Get(ctx, reportPath)
	if err != nil {
		return rep, err
	}
	if status != http.StatusOK {
		return rep, fmt.Errorf("report returned status %d", status)
	}
	if err := json.Unmarshal(body, &rep); err != nil {
		return rep, fmt.Errorf("failed to decode report: %w", err)
	}
	return rep, nil
}
