package config_test

import (
	"testing"

	"github.com/okian/propensity/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8501")
			convey.So(cfg.Region, convey.ShouldEqual, "eu-west-3")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.MaxObjectBytes, convey.ShouldEqual, int64(64<<20))
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the backend follows the bucket", func() {
			convey.So(cfg.Backend(), convey.ShouldEqual, config.BackendFile)
			cfg.Bucket = "b"
			convey.So(cfg.Backend(), convey.ShouldEqual, config.BackendS3)
			cfg.StorageBackend = config.BackendFile
			convey.So(cfg.Backend(), convey.ShouldEqual, config.BackendFile)
		})
	})
}
