package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/propensity/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load the local file backend", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8501")
				convey.So(cfg.Backend(), convey.ShouldEqual, config.BackendFile)
				convey.So(cfg.DatasetKey, convey.ShouldEqual, "bank_marketing_cleaned_v1.csv")
				convey.So(cfg.Delimiter(), convey.ShouldEqual, ';')
				convey.So(cfg.Columns.Job, convey.ShouldEqual, "metier")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("PROPENSITY_ADDR", ":8080")
			_ = os.Setenv("PROPENSITY_BUCKET", "marketing-data")
			_ = os.Setenv("PROPENSITY_WARMUP", "true")
			_ = os.Setenv("PROPENSITY_MAX_OBJECT_BYTES", "1048576")
			_ = os.Setenv("PROPENSITY_COLUMNS__JOB", "job")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Backend(), convey.ShouldEqual, config.BackendS3)
				convey.So(cfg.Warmup, convey.ShouldBeTrue)
				convey.So(cfg.MaxObjectBytes, convey.ShouldEqual, int64(1048576))
				convey.So(cfg.Columns.Job, convey.ShouldEqual, "job")
				convey.So(cfg.Columns.Marital, convey.ShouldEqual, "statut_matrimonial")
			})
		})

		convey.Convey("When only the legacy variables are set", func() {
			_ = os.Setenv("BUCKET_NAME", "legacy-bucket")
			_ = os.Setenv("ACCESS_KEY", "AKIA")
			_ = os.Setenv("SECRET_KEY", "secret")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then they configure the s3 backend", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Bucket, convey.ShouldEqual, "legacy-bucket")
				convey.So(cfg.AccessKey, convey.ShouldEqual, "AKIA")
				convey.So(cfg.Backend(), convey.ShouldEqual, config.BackendS3)
			})

			convey.Convey("And the prefixed variable wins", func() {
				_ = os.Setenv("PROPENSITY_BUCKET", "new-bucket")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Bucket, convey.ShouldEqual, "new-bucket")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
storage_backend: file
storage_dir: /srv/propensity
csv_delimiter: ","
columns:
  job: job
  target: subscribed
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PROPENSITY_CONFIG", tmpFile)
			_ = os.Setenv("PROPENSITY_ADDR", ":8080") // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")                 // Overridden by env
				convey.So(cfg.StorageDir, convey.ShouldEqual, "/srv/propensity") // From file
				convey.So(cfg.Delimiter(), convey.ShouldEqual, ',')              // From file
				convey.So(cfg.Columns.Job, convey.ShouldEqual, "job")            // From file
				convey.So(cfg.Columns.Target, convey.ShouldEqual, "subscribed")  // From file
				convey.So(cfg.Columns.Age, convey.ShouldEqual, "age")            // From defaults
			})
		})

		convey.Convey("When a dotenv file is present", func() {
			tmpFile := createTempFile("propensity-*.env", "PROPENSITY_DATASET_KEY=exports/campaign.csv\nPROPENSITY_ADDR=:7000\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PROPENSITY_ENV_FILE", tmpFile)
			_ = os.Setenv("PROPENSITY_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it fills unset variables only", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DatasetKey, convey.ShouldEqual, "exports/campaign.csv")
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PROPENSITY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("PROPENSITY_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When settings are inconsistent", func() {
			cases := []struct {
				env  map[string]string
				want string
			}{
				{map[string]string{"PROPENSITY_ADDR": ""}, "addr must not be empty"},
				{map[string]string{"PROPENSITY_STORAGE_BACKEND": "s3"}, "bucket is required"},
				{map[string]string{"PROPENSITY_STORAGE_BACKEND": "ftp"}, "unknown storage_backend"},
				{map[string]string{"PROPENSITY_BUCKET": "b", "PROPENSITY_ACCESS_KEY": "k"}, "set together"},
				{map[string]string{"PROPENSITY_CSV_DELIMITER": ";;"}, "single character"},
				{map[string]string{"PROPENSITY_LOG_FORMAT": "xml"}, "log_format"},
				{map[string]string{"PROPENSITY_MAX_OBJECT_BYTES": "0"}, "max_object_bytes"},
			}
			for _, tc := range cases {
				for k, v := range tc.env {
					_ = os.Setenv(k, v)
				}
				cfg, err := config.Load(ctx)
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, tc.want)
				clearConfigEnvVars()
			}
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"PROPENSITY_CONFIG",
		"PROPENSITY_ENV_FILE",
		"PROPENSITY_ADDR",
		"PROPENSITY_LOG_FORMAT",
		"PROPENSITY_STORAGE_BACKEND",
		"PROPENSITY_BUCKET",
		"PROPENSITY_ACCESS_KEY",
		"PROPENSITY_SECRET_KEY",
		"PROPENSITY_DATASET_KEY",
		"PROPENSITY_CSV_DELIMITER",
		"PROPENSITY_COLUMNS__JOB",
		"PROPENSITY_WARMUP",
		"PROPENSITY_MAX_OBJECT_BYTES",
		"BUCKET_NAME",
		"ACCESS_KEY",
		"SECRET_KEY",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	return createTempFile("propensity-config-*.yaml", content)
}

func createTempFile(pattern, content string) string {
	tmpFile, err := os.CreateTemp("", pattern)
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
