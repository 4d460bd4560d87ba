package blobstore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/leaguedesk/internal/adapters/blobstore"
	"github.com/smartystreets/goconvey/convey"
)

func TestFSStore(t *testing.T) {
	convey.Convey("Given a filesystem blob store", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		store, err := blobstore.New(dir)
		convey.So(err, convey.ShouldBeNil)

		raw := []byte("not really a replay, but bytes all the same")

		convey.Convey("When archiving a replay", func() {
			digest, err := store.Put(ctx, raw)

			convey.Convey("Then it lands at the addressed path", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(digest, convey.ShouldHaveLength, 40)
				convey.So(digest, convey.ShouldEqual, blobstore.Digest(raw))

				_, statErr := os.Stat(filepath.Join(dir, digest+".SC2Replay"))
				convey.So(statErr, convey.ShouldBeNil)
			})

			convey.Convey("And it can be read back", func() {
				convey.So(err, convey.ShouldBeNil)
				got, getErr := store.Get(ctx, digest)
				convey.So(getErr, convey.ShouldBeNil)
				convey.So(got, convey.ShouldResemble, raw)
			})
		})

		convey.Convey("When archiving the same bytes twice", func() {
			first, err1 := store.Put(ctx, raw)
			second, err2 := store.Put(ctx, raw)

			convey.Convey("Then both succeed with the same digest", func() {
				convey.So(err1, convey.ShouldBeNil)
				convey.So(err2, convey.ShouldBeNil)
				convey.So(second, convey.ShouldEqual, first)
			})
		})

		convey.Convey("When fetching an unknown digest", func() {
			_, err := store.Get(ctx, "0123456789012345678901234567890123456789")
			convey.So(errors.Is(err, blobstore.ErrNotFound), convey.ShouldBeTrue)
		})

		convey.Convey("When fetching a malformed digest", func() {
			for _, digest := range []string{"", "short", "../../../etc/passwd", "ABCDEF0123456789ABCDEF0123456789ABCDEF01"} {
				_, err := store.Get(ctx, digest)
				convey.So(errors.Is(err, blobstore.ErrInvalidDigest), convey.ShouldBeTrue)
			}
		})
	})
}
