package replay_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/leaguedesk/internal/adapters/replay"
	"github.com/smartystreets/goconvey/convey"
)

func TestMetadataExtractor(t *testing.T) {
	convey.Convey("Given a metadata extractor with no parser command", t, func() {
		ctx := context.Background()
		e := replay.New()

		convey.Convey("When the upload is JSON metadata", func() {
			raw := []byte(`{
				"map_name": "Xel'Naga Caverns",
				"players": [
					{"name": "implausible.931", "srace": "Protoss"},
					{"name": "ShamWOW.657", "srace": "Zerg"}
				]
			}`)

			md, err := e.Extract(ctx, raw)

			convey.So(err, convey.ShouldBeNil)
			convey.So(md.MapName, convey.ShouldEqual, "Xel'Naga Caverns")
			convey.So(md.Players[0].Name, convey.ShouldEqual, "implausible.931")
			convey.So(md.Players[1].Race, convey.ShouldEqual, "Zerg")
		})

		convey.Convey("When the JSON carries a parser error", func() {
			_, err := e.Extract(ctx, []byte(`{"error": "corrupt replay"}`))
			convey.So(errors.Is(err, replay.ErrParse), convey.ShouldBeTrue)
		})

		convey.Convey("When the JSON has the wrong player count", func() {
			raw := []byte(`{"map_name": "m", "players": [{"name": "solo", "srace": "Terran"}]}`)
			_, err := e.Extract(ctx, raw)
			convey.So(errors.Is(err, replay.ErrParse), convey.ShouldBeTrue)
		})

		convey.Convey("When a player entry is incomplete", func() {
			raw := []byte(`{"map_name": "m", "players": [{"name": "a", "srace": "Terran"}, {"name": "", "srace": "Zerg"}]}`)
			_, err := e.Extract(ctx, raw)
			convey.So(errors.Is(err, replay.ErrParse), convey.ShouldBeTrue)
		})

		convey.Convey("When the upload is binary and no parser is configured", func() {
			_, err := e.Extract(ctx, []byte{0x4d, 0x50, 0x51, 0x1b})
			convey.So(errors.Is(err, replay.ErrParse), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given an extractor with a parser command", t, func() {
		ctx := context.Background()

		convey.Convey("When the command does not exist", func() {
			e := replay.New(replay.WithCommand("/nonexistent/sc2parser"))
			_, err := e.Extract(ctx, []byte{0x00, 0x01})
			convey.So(errors.Is(err, replay.ErrParse), convey.ShouldBeTrue)
		})
	})
}
