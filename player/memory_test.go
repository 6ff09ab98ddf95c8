package player

import (
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemory(t *testing.T) {
	Convey("Given an idle memory player", t, func() {
		p := NewMemory(120)

		Convey("Play should not start without a source", func() {
			So(p.Play(), ShouldBeNil)
			So(p.State().Playing, ShouldBeFalse)
		})

		Convey("Seek and Reset should leave an idle player untouched", func() {
			So(p.Seek(30), ShouldBeNil)
			So(p.Reset(), ShouldBeNil)
			So(p.State(), ShouldResemble, State{Volume: 1})
		})

		Convey("After SetSource and Play", func() {
			So(p.SetSource("http://x/a.mp4"), ShouldBeNil)
			So(p.Play(), ShouldBeNil)

			Convey("It should be playing from the start", func() {
				So(p.State().Source, ShouldEqual, "http://x/a.mp4")
				So(p.State().Playing, ShouldBeTrue)
				So(p.State().Position, ShouldEqual, 0)
			})

			Convey("Seek should clamp to the duration", func() {
				So(p.Seek(-10), ShouldBeNil)
				So(p.State().Position, ShouldEqual, 0)

				So(p.Seek(1000), ShouldBeNil)
				So(p.State().Position, ShouldEqual, 120)
			})

			Convey("Reset should release the source", func() {
				So(p.Reset(), ShouldBeNil)
				So(p.State().Source, ShouldBeEmpty)
				So(p.State().Playing, ShouldBeFalse)
			})

			Convey("Calls should be recorded in order", func() {
				So(p.Calls(), ShouldResemble, []string{"set-source http://x/a.mp4", "play"})
			})
		})

		Convey("Volume should be bounded to [0, 1]", func() {
			So(p.SetVolume(2), ShouldBeNil)
			So(p.State().Volume, ShouldEqual, 1)
			So(p.SetVolume(-1), ShouldBeNil)
			So(p.State().Volume, ShouldEqual, 0)
		})
	})

	Convey("Without a known duration only the lower bound applies", t, func() {
		p := NewMemory(0)
		So(p.SetSource("a.mkv"), ShouldBeNil)
		So(p.Seek(99999), ShouldBeNil)
		So(p.State().Position, ShouldEqual, 99999)
	})
}

func TestNew(t *testing.T) {
	Convey("New", t, func() {
		Convey("Should build the memory backend", func() {
			p, err := New(BackendMemory)
			So(err, ShouldBeNil)
			So(p, ShouldHaveSameTypeAs, &Memory{})
		})

		Convey("Should build an mpv backend without launching it", func() {
			p, err := New(BackendMPV)
			So(err, ShouldBeNil)
			So(p.(*MPV).Socket(), ShouldBeEmpty)
		})

		Convey("Should reject unknown backends", func() {
			_, err := New("vlc")
			So(errors.Is(err, ErrUnknownBackend), ShouldBeTrue)
		})
	})
}

func TestMPRISMetadata(t *testing.T) {
	Convey("Given MPRIS metadata", t, func() {
		Convey("A loaded track should expose its id and length", func() {
			meta := mprisMetadata{
				"mpris:trackid": dbus.MakeVariant(dbus.ObjectPath("/org/mpv/Track/1")),
				"mpris:length":  dbus.MakeVariant(int64(90_000_000)),
			}

			id, ok := meta.trackID()
			So(ok, ShouldBeTrue)
			So(id, ShouldEqual, dbus.ObjectPath("/org/mpv/Track/1"))
			So(meta.length(), ShouldEqual, 90)
		})

		Convey("The NoTrack marker should count as idle", func() {
			meta := mprisMetadata{
				"mpris:trackid": dbus.MakeVariant(dbus.ObjectPath("/org/mpris/MediaPlayer2/TrackList/NoTrack")),
			}

			_, ok := meta.trackID()
			So(ok, ShouldBeFalse)
			So(meta.length(), ShouldEqual, 0)
		})

		Convey("Empty metadata should count as idle", func() {
			_, ok := mprisMetadata(nil).trackID()
			So(ok, ShouldBeFalse)
		})
	})
}
