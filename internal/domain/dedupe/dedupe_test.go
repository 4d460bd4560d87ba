package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/example/leaguedesk/internal/domain/dedupe"
	"github.com/smartystreets/goconvey/convey"
)

func TestDigestCache(t *testing.T) {
	convey.Convey("Given a digest cache", t, func() {
		ctx := context.Background()

		convey.Convey("When recording a fresh digest", func() {
			c := dedupe.NewDigestCache()
			convey.So(c.SeenAndRecord(ctx, "abc"), convey.ShouldBeFalse)
			convey.So(c.SeenAndRecord(ctx, "abc"), convey.ShouldBeTrue)
			convey.So(c.Size(), convey.ShouldEqual, 1)
		})

		convey.Convey("When unrecording a digest", func() {
			c := dedupe.NewDigestCache()
			c.SeenAndRecord(ctx, "abc")
			c.Unrecord(ctx, "abc")
			convey.So(c.Size(), convey.ShouldEqual, 0)
			convey.So(c.SeenAndRecord(ctx, "abc"), convey.ShouldBeFalse)
		})

		convey.Convey("When unrecording something never recorded", func() {
			c := dedupe.NewDigestCache()
			c.Unrecord(ctx, "ghost")
			convey.So(c.Size(), convey.ShouldEqual, 0)
		})

		convey.Convey("When the bound is exceeded", func() {
			c := dedupe.NewDigestCache(dedupe.WithMaxSize(3))
			for i := 0; i < 4; i++ {
				convey.So(c.SeenAndRecord(ctx, fmt.Sprintf("d%d", i)), convey.ShouldBeFalse)
			}

			convey.Convey("Then the oldest digest was evicted", func() {
				convey.So(c.Size(), convey.ShouldEqual, 3)
				convey.So(c.SeenAndRecord(ctx, "d0"), convey.ShouldBeFalse)
				convey.So(c.SeenAndRecord(ctx, "d3"), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When hammered concurrently", func() {
			c := dedupe.NewDigestCache(dedupe.WithMaxSize(0))
			var wg sync.WaitGroup
			for g := 0; g < 8; g++ {
				wg.Add(1)
				go func(g int) {
					defer wg.Done()
					for i := 0; i < 100; i++ {
						c.SeenAndRecord(ctx, fmt.Sprintf("g%d-%d", g, i))
					}
				}(g)
			}
			wg.Wait()

			convey.So(c.Size(), convey.ShouldEqual, 800)
		})
	})
}
