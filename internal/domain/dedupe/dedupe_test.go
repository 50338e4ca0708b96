package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/formcast/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithSizeHint(16))

		Convey("Then it should start empty", func() {
			So(d.Size(), ShouldEqual, 0)
			So(d.Duplicates(ctx), ShouldBeEmpty)
		})

		Convey("When a key is recorded once", func() {
			seen := d.SeenAndRecord(ctx, "BOS|2023-01-01")

			Convey("Then it should be new", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
				So(d.Occurrences(ctx, "BOS|2023-01-01"), ShouldEqual, 1)
			})
		})

		Convey("When a key is recorded several times", func() {
			d.SeenAndRecord(ctx, "BOS|2023-01-01")
			d.SeenAndRecord(ctx, "NYK|2023-01-01")
			second := d.SeenAndRecord(ctx, "BOS|2023-01-01")
			third := d.SeenAndRecord(ctx, "BOS|2023-01-01")

			Convey("Then repeats should be reported", func() {
				So(second, ShouldBeTrue)
				So(third, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 2)
				So(d.Occurrences(ctx, "BOS|2023-01-01"), ShouldEqual, 3)
				So(d.Duplicates(ctx), ShouldResemble, []string{"BOS|2023-01-01"})
			})
		})

		Convey("When an unknown key is queried", func() {
			Convey("Then it should have zero occurrences", func() {
				So(d.Occurrences(ctx, "nope"), ShouldEqual, 0)
			})
		})

		Convey("When duplicates are recorded in order", func() {
			for _, k := range []string{"c", "a", "c", "b", "a"} {
				d.SeenAndRecord(ctx, k)
			}

			Convey("Then they should come back in first-seen order", func() {
				So(d.Duplicates(ctx), ShouldResemble, []string{"c", "a"})
			})
		})
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given a deduper with concurrent access", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()
		const goroutines = 8
		const keys = 200

		var wg sync.WaitGroup
		for g := 0; g < goroutines; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for k := 0; k < keys; k++ {
					d.SeenAndRecord(ctx, fmt.Sprintf("key-%d", k))
				}
			}()
		}
		wg.Wait()

		Convey("Then every key should be counted once per goroutine", func() {
			So(d.Size(), ShouldEqual, keys)
			So(d.Occurrences(ctx, "key-7"), ShouldEqual, goroutines)
			So(len(d.Duplicates(ctx)), ShouldEqual, keys)
		})
	})
}
