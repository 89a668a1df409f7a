package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/propensity/internal/adapters/classifier"
	"github.com/okian/propensity/internal/adapters/http/api"
	"github.com/okian/propensity/internal/adapters/http/site"
	"github.com/okian/propensity/internal/adapters/http/swagger"
	"github.com/okian/propensity/internal/adapters/storage"
	app "github.com/okian/propensity/internal/app"
	"github.com/okian/propensity/internal/config"
	"github.com/okian/propensity/pkg/logger"
	"github.com/okian/propensity/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (.env -> defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	fetcher, err := newFetcher(ctx, cfg)
	if err != nil {
		loggerInstance.Error(ctx, "failed to configure object storage", logger.Error(err))
		return
	}

	svc := newService(cfg, fetcher, loggerInstance)
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	mux, err := newMux(ctx, svc)
	if err != nil {
		loggerInstance.Error(ctx, "failed to build routes", logger.Error(err))
		return
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("storage", cfg.Backend()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// newFetcher builds the object storage backend selected by cfg.
func newFetcher(ctx context.Context, cfg *config.Config) (storage.Fetcher, error) {
	switch backend := cfg.Backend(); backend {
	case config.BackendS3:
		return storage.NewS3Store(ctx, cfg.Bucket,
			storage.WithRegion(cfg.Region),
			storage.WithEndpoint(cfg.Endpoint),
			storage.WithStaticCredentials(cfg.AccessKey, cfg.SecretKey),
			storage.WithMaxBytes(cfg.MaxObjectBytes),
			storage.WithLogger(logger.Named("storage")),
		)
	case config.BackendFile:
		return storage.NewFileStore(cfg.StorageDir,
			storage.WithMaxBytes(cfg.MaxObjectBytes),
			storage.WithLogger(logger.Named("storage")),
		)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// newService binds the service to cfg.
func newService(cfg *config.Config, fetcher storage.Fetcher, l logger.Logger) *app.Service {
	return app.New(
		app.WithLogger(l),
		app.WithFetcher(fetcher),
		app.WithDatasetKey(cfg.DatasetKey),
		app.WithModelKey(cfg.ModelKey),
		app.WithColumns(cfg.Columns),
		app.WithDelimiter(cfg.Delimiter()),
		app.WithWarmup(cfg.Warmup),
		app.WithClassifierOptions(classifier.WithONNXLibraryPath(cfg.ONNXLibraryPath)),
	)
}

// newMux registers every route.
func newMux(ctx context.Context, svc *app.Service) (*http.ServeMux, error) {
	mux := http.NewServeMux()

	site.Register(ctx, mux)
	swagger.Register(ctx, mux)

	apiServer, err := api.NewServer(svc, svc)
	if err != nil {
		return nil, err
	}
	apiServer.Register(ctx, mux)
	return mux, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		// Calculate average GC pause time
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
