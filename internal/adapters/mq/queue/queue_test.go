package queue_test

import (
	"context"
	"testing"

	"github.com/example/leaguedesk/internal/adapters/mq/queue"
	"github.com/example/leaguedesk/internal/domain/match"
	"github.com/smartystreets/goconvey/convey"
)

func TestInMemoryQueue(t *testing.T) {
	convey.Convey("Given a bounded job queue", t, func() {
		ctx := context.Background()

		convey.Convey("When enqueuing within capacity", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(2))

			convey.So(q.Enqueue(ctx, queue.Job{Name: "a.SC2Replay"}), convey.ShouldBeTrue)
			convey.So(q.Enqueue(ctx, queue.Job{Name: "b.SC2Replay"}), convey.ShouldBeTrue)
			convey.So(q.Len(ctx), convey.ShouldEqual, 2)

			convey.Convey("Then jobs dequeue in order", func() {
				jobs := q.Dequeue(ctx)
				convey.So((<-jobs).Name, convey.ShouldEqual, "a.SC2Replay")
				convey.So((<-jobs).Name, convey.ShouldEqual, "b.SC2Replay")
			})
		})

		convey.Convey("When the queue is full", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(1))
			convey.So(q.Enqueue(ctx, queue.Job{Name: "a"}), convey.ShouldBeTrue)

			convey.Convey("Then further enqueues are refused", func() {
				convey.So(q.Enqueue(ctx, queue.Job{Name: "b"}), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the queue is closed", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(1))
			convey.So(q.Close(), convey.ShouldBeNil)

			convey.Convey("Then enqueue is refused and dequeue drains", func() {
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
				convey.So(q.Enqueue(ctx, queue.Job{Name: "late"}), convey.ShouldBeFalse)

				_, open := <-q.Dequeue(ctx)
				convey.So(open, convey.ShouldBeFalse)
			})

			convey.Convey("Then closing again is harmless", func() {
				convey.So(q.Close(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When a job carries a reply channel", func() {
			q := queue.NewInMemoryQueue()
			reply := make(chan match.Item, 1)
			convey.So(q.Enqueue(ctx, queue.Job{Name: "r", Reply: reply}), convey.ShouldBeTrue)

			job := <-q.Dequeue(ctx)
			job.Reply <- match.Item{Name: job.Name}

			convey.So((<-reply).Name, convey.ShouldEqual, "r")
		})
	})
}
