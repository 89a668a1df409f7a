package prospects

import "time"

// Config holds configuration for a prospects run.
type Config struct {
	BaseURL      string        // Base URL of the service
	NumProspects int           // Number of prospects to generate
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	Seed         uint64        // Generator seed; 0 picks a random one
	OutputFile   string        // Output file for prospects and results; empty skips saving
	Verbose      bool          // Enable per-prospect logging
}

// Prospect is one generated client profile.
type Prospect struct {
	ID     string         `json:"id"`
	Values map[string]any `json:"values"`
}

// Prediction mirrors the predict response fields the tool tallies.
type Prediction struct {
	PredictionID string  `json:"prediction_id"`
	ModelVersion string  `json:"model_version"`
	Probability  float64 `json:"probability"`
	Score        float64 `json:"score"`
	Tier         string  `json:"tier"`
}

// Result is the outcome of submitting one prospect.
type Result struct {
	ProspectID string      `json:"prospect_id"`
	Status     int         `json:"status"`
	Prediction *Prediction `json:"prediction,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// ReportSummary mirrors the report fields the tool prints.
type ReportSummary struct {
	Overview struct {
		Contacts   int     `json:"contacts"`
		Subscribed int     `json:"subscribed"`
		Rate       float64 `json:"rate"`
	} `json:"overview"`
	Insights []string `json:"insights"`
}

// Stats holds run statistics.
type Stats struct {
	ProspectsGenerated int
	ProspectsSubmitted int
	Successful         int
	Failed             int
	Tiers              map[string]int
	ReportContacts     int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
