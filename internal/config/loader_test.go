package config_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/example/leaguedesk/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func clearConfigEnvVars() {
	for _, key := range []string{
		"LEAGUEDESK_CONFIG",
		"LEAGUEDESK_ADDR",
		"LEAGUEDESK_DATABASE_URL",
		"LEAGUEDESK_DATA_DIR",
		"LEAGUEDESK_QUEUE_SIZE",
		"LEAGUEDESK_WORKER_COUNT",
		"LEAGUEDESK_DEDUPE_SIZE",
		"LEAGUEDESK_LOG_LEVEL",
	} {
		_ = os.Unsetenv(key)
	}
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
				convey.So(cfg.Migrate, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			clearConfigEnvVars()
			_ = os.Setenv("LEAGUEDESK_ADDR", ":8080")
			_ = os.Setenv("LEAGUEDESK_QUEUE_SIZE", "64")
			_ = os.Setenv("LEAGUEDESK_WORKER_COUNT", "3")
			_ = os.Setenv("LEAGUEDESK_DATA_DIR", "/tmp/replays")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.DataDir, convey.ShouldEqual, "/tmp/replays")
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			clearConfigEnvVars()
			yamlContent := "addr: \":9090\"\nqueue_size: 256\nworker_count: 5\nlog_level: debug\n"
			tmpFile := filepath.Join(t.TempDir(), "config.yaml")
			convey.So(os.WriteFile(tmpFile, []byte(yamlContent), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("LEAGUEDESK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 256)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 5)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When the config is invalid", func() {
			clearConfigEnvVars()
			_ = os.Setenv("LEAGUEDESK_QUEUE_SIZE", "0")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should report an invalid config", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
