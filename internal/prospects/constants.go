package prospects

import "time"

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	ProgressInterval     = time.Second
	PercentageMultiplier = 100
	maxResponseBytes     = 1 << 20
)

// Service routes used by the tool.
const (
	healthPath  = "/healthz"
	predictPath = "/api/v1/predict"
	reportPath  = "/api/v1/report"
)
