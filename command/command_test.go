package command

import (
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSplit(t *testing.T) {
	Convey("Given a frame", t, func() {
		Convey("A single record should yield one fragment", func() {
			So(Split([]byte(`{"type_id":"play"}`)), ShouldHaveLength, 1)
		})

		Convey("Newline separated records should keep their order", func() {
			records := Split([]byte("{\"type_id\":\"pause\"}\n{\"type_id\":\"play\"}\n"))
			So(records, ShouldHaveLength, 2)
			So(string(records[0]), ShouldEqual, `{"type_id":"pause"}`)
			So(string(records[1]), ShouldEqual, `{"type_id":"play"}`)
		})

		Convey("Empty and blank fragments should be dropped", func() {
			records := Split([]byte("\n{\"type_id\":\"stop\"}\r\n   \n\n"))
			So(records, ShouldHaveLength, 1)
			So(string(records[0]), ShouldEqual, `{"type_id":"stop"}`)
		})

		Convey("An empty frame should yield nothing", func() {
			So(Split(nil), ShouldBeEmpty)
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Parse", t, func() {
		Convey("Should recognize commands without payload", func() {
			for raw, want := range map[string]Command{
				`{"type_id":"play"}`:  Play{},
				`{"type_id":"pause"}`: Pause{},
				`{"type_id":"stop"}`:  Stop{},
			} {
				cmd, err := Parse([]byte(raw))
				So(err, ShouldBeNil)
				So(cmd, ShouldResemble, want)
			}
		})

		Convey("Should read the url of set-source", func() {
			cmd, err := Parse([]byte(`{"type_id":"set-source","data":{"url":"http://x/a.mp4","media_info":{"title":"A"}}}`))
			So(err, ShouldBeNil)
			So(cmd, ShouldResemble, SetSource{URL: "http://x/a.mp4"})
		})

		Convey("Should reject set-source without url", func() {
			for _, raw := range []string{
				`{"type_id":"set-source"}`,
				`{"type_id":"set-source","data":{}}`,
				`{"type_id":"set-source","data":{"url":"  "}}`,
			} {
				_, err := Parse([]byte(raw))
				So(errors.Is(err, ErrMissingField), ShouldBeTrue)
			}
		})

		Convey("Should read signed rewind durations", func() {
			cmd, err := Parse([]byte(`{"type_id":"rewind","data":{"duration":-30}}`))
			So(err, ShouldBeNil)
			So(cmd, ShouldResemble, Rewind{Duration: -30})

			cmd, err = Parse([]byte(`{"type_id":"rewind","data":{"duration":"15"}}`))
			So(err, ShouldBeNil)
			So(cmd, ShouldResemble, Rewind{Duration: 15})
		})

		Convey("Should read the leading integer of a string duration", func() {
			for raw, want := range map[string]int{
				`"10s"`:   10,
				`"12abc"`: 12,
				`" -5 "`:  -5,
				`"+7"`:    7,
				`"2.9"`:   2,
			} {
				cmd, err := Parse([]byte(`{"type_id":"rewind","data":{"duration":` + raw + `}}`))
				So(err, ShouldBeNil)
				So(cmd, ShouldResemble, Rewind{Duration: want})
			}
		})

		Convey("Should truncate fractional durations toward zero", func() {
			cmd, err := Parse([]byte(`{"type_id":"rewind","data":{"duration":-2.7}}`))
			So(err, ShouldBeNil)
			So(cmd, ShouldResemble, Rewind{Duration: -2})
		})

		Convey("Should reject rewind without a numeric duration", func() {
			for _, raw := range []string{
				`{"type_id":"rewind"}`,
				`{"type_id":"rewind","data":{"duration":null}}`,
				`{"type_id":"rewind","data":{"duration":"soon"}}`,
				`{"type_id":"rewind","data":{"duration":"-"}}`,
				`{"type_id":"rewind","data":{"duration":"99999999999999999999"}}`,
				`{"type_id":"rewind","data":{"duration":true}}`,
			} {
				_, err := Parse([]byte(raw))
				So(errors.Is(err, ErrMissingField), ShouldBeTrue)
			}
		})

		Convey("Should keep unrecognized kinds as Unknown", func() {
			cmd, err := Parse([]byte(`{"type_id":"unknown-cmd"}`))
			So(err, ShouldBeNil)
			So(cmd, ShouldResemble, Unknown{Raw: "unknown-cmd"})
			So(cmd.Kind(), ShouldEqual, Kind("unknown-cmd"))
		})

		Convey("Should treat a record without type_id as Unknown", func() {
			cmd, err := Parse([]byte(`{"data":{}}`))
			So(err, ShouldBeNil)
			So(cmd, ShouldResemble, Unknown{})
		})

		Convey("Should report undecodable records as malformed", func() {
			for _, raw := range []string{
				`{"type_id":`,
				`not json`,
				`{"type_id":7}`,
				`{"type_id":"set-source","data":"http://x"}`,
			} {
				_, err := Parse([]byte(raw))
				So(errors.Is(err, ErrMalformed), ShouldBeTrue)
			}
		})
	})
}

func TestDecode(t *testing.T) {
	Convey("Given a batched frame with a malformed record in the middle", t, func() {
		frame := []byte("{\"type_id\":\"set-source\",\"data\":{\"url\":\"http://x/a.mp4\"}}\n{oops\n{\"type_id\":\"play\"}")

		Convey("With batching, every record should be reported in order", func() {
			results := Decode(frame, true)
			So(results, ShouldHaveLength, 3)
			So(results[0].Command, ShouldResemble, SetSource{URL: "http://x/a.mp4"})
			So(errors.Is(results[1].Err, ErrMalformed), ShouldBeTrue)
			So(results[2].Command, ShouldResemble, Play{})
		})

		Convey("Without batching, the frame should be a single malformed record", func() {
			results := Decode(frame, false)
			So(results, ShouldHaveLength, 1)
			So(errors.Is(results[0].Err, ErrMalformed), ShouldBeTrue)
		})
	})

	Convey("Without batching a single record should still parse", t, func() {
		results := Decode([]byte("{\"type_id\":\"pause\"}\n"), false)
		So(results, ShouldHaveLength, 1)
		So(results[0].Command, ShouldResemble, Pause{})
	})
}

func TestEncode(t *testing.T) {
	Convey("Encoded commands should parse back to themselves", t, func() {
		for _, cmd := range []Command{Play{}, Pause{}, Stop{}, SetSource{URL: "http://x/b.mkv"}, Rewind{Duration: -10}} {
			raw, err := Encode(cmd)
			So(err, ShouldBeNil)

			parsed, err := Parse(raw)
			So(err, ShouldBeNil)
			So(parsed, ShouldResemble, cmd)
		}
	})

	Convey("Play should encode without a data field", t, func() {
		raw, err := Encode(Play{})
		So(err, ShouldBeNil)
		So(string(raw), ShouldEqual, `{"type_id":"play"}`)
	})
}

func TestSuggest(t *testing.T) {
	Convey("Suggest", t, func() {
		Convey("Should expand abbreviations", func() {
			So(Suggest("src").MustGet(), ShouldEqual, KindSetSource)
		})

		Convey("Should fix typos", func() {
			So(Suggest("paly").MustGet(), ShouldEqual, KindPlay)
			So(Suggest("stpo").MustGet(), ShouldEqual, KindStop)
		})

		Convey("Should give up on unrelated kinds", func() {
			So(Suggest("volume-up").IsPresent(), ShouldBeFalse)
			So(Suggest("").IsPresent(), ShouldBeFalse)
		})
	})
}

func TestSchema(t *testing.T) {
	Convey("The schema should describe type_id and data", t, func() {
		raw, err := SchemaJSON()
		So(err, ShouldBeNil)

		var doc map[string]any
		So(json.Unmarshal(raw, &doc), ShouldBeNil)

		props, ok := doc["properties"].(map[string]any)
		So(ok, ShouldBeTrue)
		So(props, ShouldContainKey, "type_id")
		So(props, ShouldContainKey, "data")
	})
}
