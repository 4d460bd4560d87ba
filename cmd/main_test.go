package main

import (
	"context"
	"os"
	"testing"

	"github.com/example/leaguedesk/internal/adapters/http/api"
	app "github.com/example/leaguedesk/internal/app"
	"github.com/example/leaguedesk/internal/config"
	"github.com/example/leaguedesk/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("LEAGUEDESK_ADDR", ":8080")
			_ = os.Setenv("LEAGUEDESK_QUEUE_SIZE", "1000")
			_ = os.Setenv("LEAGUEDESK_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("LEAGUEDESK_ADDR")
				_ = os.Unsetenv("LEAGUEDESK_QUEUE_SIZE")
				_ = os.Unsetenv("LEAGUEDESK_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom config", func() {
				cfg := config.New()
				cfg.QueueSize = 2000
				cfg.WorkerCount = 8
				svc := app.New(app.WithConfig(cfg))
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			svc := app.New()

			convey.Convey("Then HTTP server should be creatable", func() {
				server := api.NewServer(svc, svc)
				convey.So(server, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				manager := metrics.NewManager()
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When publishing service stats", func() {
			svc := app.New()

			convey.Convey("Then the updater should tolerate an unstarted service", func() {
				updateServiceMetrics(context.Background(), svc)
			})
		})
	})
}
