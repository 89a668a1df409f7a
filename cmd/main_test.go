package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/propensity/internal/adapters/storage"
	"github.com/okian/propensity/internal/config"
	"github.com/okian/propensity/pkg/logger"
	"github.com/okian/propensity/pkg/metrics"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When loading configuration from the environment", func() {
			t.Setenv("PROPENSITY_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
			t.Setenv("PROPENSITY_ADDR", ":8080")
			t.Setenv("PROPENSITY_STORAGE_DIR", t.TempDir())

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Backend(), convey.ShouldEqual, config.BackendFile)
			})
		})

		convey.Convey("When building the file backend", func() {
			cfg := config.New()
			cfg.StorageDir = t.TempDir()

			convey.Convey("Then a file store is returned", func() {
				f, err := newFetcher(context.Background(), cfg)
				convey.So(err, convey.ShouldBeNil)
				_, ok := f.(*storage.FileStore)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the file backend directory is missing", func() {
			cfg := config.New()
			cfg.StorageDir = filepath.Join(t.TempDir(), "nope")

			convey.Convey("Then building it fails", func() {
				_, err := newFetcher(context.Background(), cfg)
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When building the S3 backend", func() {
			cfg := config.New()
			cfg.Bucket = "campaign-data"
			cfg.Endpoint = "http://localhost:9000"
			cfg.AccessKey = "key"
			cfg.SecretKey = "secret"

			convey.Convey("Then an S3 store is returned without contacting it", func() {
				f, err := newFetcher(context.Background(), cfg)
				convey.So(err, convey.ShouldBeNil)
				_, ok := f.(*storage.S3Store)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the backend is unknown", func() {
			cfg := config.New()
			cfg.StorageBackend = "ftp"

			convey.Convey("Then building it fails", func() {
				_, err := newFetcher(context.Background(), cfg)
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given a data directory with a campaign export", t, func() {
		dir := t.TempDir()
		csv := "age;metier;statut_matrimonial;niveau_etudes;mois;campaign;y\n" +
			"30;management;single;tertiary;may;1;yes\n" +
			"45;blue-collar;married;secondary;may;2;no\n"
		convey.So(os.WriteFile(filepath.Join(dir, "bank_marketing_cleaned_v1.csv"), []byte(csv), 0o600), convey.ShouldBeNil)

		cfg := config.New()
		cfg.StorageDir = dir

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		fetcher, err := newFetcher(ctx, cfg)
		convey.So(err, convey.ShouldBeNil)
		svc := newService(cfg, fetcher, logger.Get())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		mux, err := newMux(ctx, svc)
		convey.So(err, convey.ShouldBeNil)

		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return w
		}

		convey.Convey("Then every surface is routed", func() {
			convey.So(get("/").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/dashboard").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/simulator").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/api-docs").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/stats").Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("And the report is served from the directory", func() {
			w := get("/api/v1/report")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"contacts":2`)
		})

		convey.Convey("And predictions are unavailable until a model is published", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/predict", http.NoBody))
			convey.So(w.Code, convey.ShouldEqual, http.StatusBadRequest)

			w = httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", strings.NewReader(`{"age": 40}`))
			mux.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When the system metrics updater runs until cancelled", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() {
				startSystemMetricsUpdater(ctx)
			}, convey.ShouldNotPanic)
		})

		convey.Convey("When testing system metrics update", func() {
			convey.So(func() {
				updateSystemMetrics()
			}, convey.ShouldNotPanic)
		})

		convey.Convey("When creating a metrics manager on its own registry", func() {
			manager := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
			convey.So(manager, convey.ShouldNotBeNil)
		})
	})
}
