package cmd

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSplitFrames(t *testing.T) {
	Convey("splitFrames", t, func() {
		Convey("Should cut on blank lines and keep batches together", func() {
			data := []byte("{\"type_id\":\"set-source\",\"data\":{\"url\":\"a.mp4\"}}\n{\"type_id\":\"play\"}\n\n{\"type_id\":\"pause\"}\n")

			frames := splitFrames(data)
			So(frames, ShouldHaveLength, 2)
			So(string(frames[0]), ShouldEqual, "{\"type_id\":\"set-source\",\"data\":{\"url\":\"a.mp4\"}}\n{\"type_id\":\"play\"}")
			So(string(frames[1]), ShouldEqual, "{\"type_id\":\"pause\"}\n")
		})

		Convey("Should accept CRLF files", func() {
			frames := splitFrames([]byte("{\"type_id\":\"play\"}\r\n\r\n{\"type_id\":\"stop\"}\r\n"))
			So(frames, ShouldHaveLength, 2)
		})

		Convey("Should ignore whitespace only chunks", func() {
			So(splitFrames([]byte("\n\n   \n\n")), ShouldBeEmpty)
		})
	})
}

func TestEachFrame(t *testing.T) {
	Convey("eachFrame", t, func() {
		frames := [][]byte{[]byte("a"), []byte("b")}

		Convey("Should visit frames in order", func() {
			var seen []string
			err := eachFrame(context.Background(), frames, 0, func(f []byte) error {
				seen = append(seen, string(f))
				return nil
			})
			So(err, ShouldBeNil)
			So(seen, ShouldResemble, []string{"a", "b"})
		})

		Convey("Should stop waiting when cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			var seen int
			err := eachFrame(ctx, frames, time.Hour, func([]byte) error {
				seen++
				cancel()
				return nil
			})
			So(ignoreCanceled(err), ShouldBeNil)
			So(seen, ShouldEqual, 1)
		})
	})
}
