package remote

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kinoplay/kinoplay/channel"
	"github.com/kinoplay/kinoplay/config"
	"github.com/kinoplay/kinoplay/filesystem"
	"github.com/kinoplay/kinoplay/identity"
	"github.com/kinoplay/kinoplay/key"
	"github.com/kinoplay/kinoplay/landing"
	"github.com/kinoplay/kinoplay/player"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

type fakeConn struct {
	frames chan []byte
	closed chan struct{}
	once   sync.Once
}

func (c *fakeConn) Read(ctx context.Context) ([]byte, error) {
	select {
	case frame := <-c.frames:
		return frame, nil
	case <-c.closed:
		return nil, channel.ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

// eventually polls cond until it holds or a second passes.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestController(t *testing.T) {
	Convey("Given a controller over the in-memory player", t, func() {
		conn := &fakeConn{frames: make(chan []byte, 4), closed: make(chan struct{})}
		dialed := make(chan string, 4)
		transport := channel.TransportFunc(func(_ context.Context, endpoint string) (channel.Conn, error) {
			dialed <- endpoint
			return conn, nil
		})

		p := player.NewMemory(120)
		c := New(Options{
			ClientID:  "abc",
			Player:    p,
			Transport: transport,
			Endpoint:  "ws://h/ui/pws/?pid=abc",
			Batching:  true,
			Policy:    landing.PolicyIgnore,
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		result := make(chan error, 1)
		go func() { result <- c.Run(ctx) }()

		So(eventually(func() bool { return c.Manager().State() == channel.Open }), ShouldBeTrue)

		Convey("Frames should reach the player in order", func() {
			conn.frames <- []byte(`{"type_id":"set-source","data":{"url":"http://x/a.mp4"}}` + "\n" + `{"type_id":"pause"}` + "\n")

			So(eventually(func() bool { return c.Interpreter().Stats().Applied == 2 }), ShouldBeTrue)
			So(p.State().Source, ShouldEqual, "http://x/a.mp4")
			So(p.State().Playing, ShouldBeFalse)

			s := c.Overlay().Snapshot()
			So(s.State, ShouldEqual, channel.Open)
			So(s.Applied, ShouldEqual, 2)
			So(s.Last, ShouldEqual, "pause")
			So(<-dialed, ShouldEqual, "ws://h/ui/pws/?pid=abc")
			So(dialed, ShouldBeEmpty)
		})

		Convey("A manual reveal should run on the channel goroutine", func() {
			conn.frames <- []byte(`{"type_id":"set-source","data":{"url":"http://x/a.mp4"}}`)
			So(eventually(func() bool { return p.State().Source != "" }), ShouldBeTrue)

			c.Overlay().RequestReveal()

			So(eventually(func() bool { return p.State().Fullscreen }), ShouldBeTrue)
			So(c.Overlay().Snapshot().Landing, ShouldBeFalse)
		})

		Convey("mpv playback events should reach the landing card", func() {
			c.onEvent(player.Event{Name: "time-pos", Data: 42.5})
			c.onEvent(player.Event{Name: "pause", Data: true})

			s := c.Overlay().Snapshot()
			So(s.Loaded, ShouldBeTrue)
			So(s.Paused, ShouldBeTrue)
			So(s.Position, ShouldAlmostEqual, 42.5)

			c.onEvent(player.Event{Name: "time-pos", Data: nil})
			So(c.Overlay().Snapshot().Loaded, ShouldBeFalse)
		})

		Convey("Cancelling should stop Run cleanly", func() {
			cancel()

			select {
			case err := <-result:
				So(err, ShouldBeNil)
			case <-time.After(time.Second):
				So("run returned", ShouldBeEmpty)
			}

			So(c.Manager().State(), ShouldEqual, channel.Disconnected)
			So(errors.Is(c.Run(context.Background()), ErrAlreadyRunning), ShouldBeTrue)
			So(c.Close(), ShouldBeNil)
			So(c.Close(), ShouldBeNil)
		})
	})
}

func TestFromConfig(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		So(config.Setup(), ShouldBeNil)
		viper.Set(key.Player, player.BackendMemory)
		defer viper.Set(key.Player, player.BackendMPV)

		Convey("Without an identifier it should fail", func() {
			store, err := identity.Configured()
			So(err, ShouldBeNil)
			So(store.Forget(), ShouldBeNil)

			_, err = FromConfig(context.Background())
			So(errors.Is(err, identity.ErrNoIdentifier), ShouldBeTrue)
		})

		Convey("With an identifier", func() {
			viper.Set(key.ClientID, "abc")
			defer viper.Set(key.ClientID, "")

			Convey("The websocket endpoint should carry it", func() {
				options, err := FromConfig(context.Background())
				So(err, ShouldBeNil)
				defer options.Player.Close()

				So(options.ClientID, ShouldEqual, "abc")
				So(options.Endpoint, ShouldEqual, "ws://localhost:8090/ui/pws/?pid=abc")
				So(options.Delay, ShouldEqual, channel.DefaultDelay)
				So(options.Batching, ShouldBeTrue)
				So(options.RevealOnPlay, ShouldBeFalse)
				So(options.Policy, ShouldEqual, landing.PolicyIgnore)
			})

			Convey("The redis endpoint should carry it", func() {
				viper.Set(key.ChannelTransport, channel.TransportRedis)
				defer viper.Set(key.ChannelTransport, channel.TransportWebSocket)

				options, err := FromConfig(context.Background())
				So(err, ShouldBeNil)
				defer options.Player.Close()

				So(options.Endpoint, ShouldEqual, "pws:abc")
				_, ok := options.Transport.(*channel.Redis)
				So(ok, ShouldBeTrue)
			})

			Convey("An unknown transport should be refused", func() {
				viper.Set(key.ChannelTransport, "carrier-pigeon")
				defer viper.Set(key.ChannelTransport, channel.TransportWebSocket)

				_, err := FromConfig(context.Background())
				So(errors.Is(err, ErrUnknownTransport), ShouldBeTrue)
			})

			Convey("An unknown fullscreen policy should be refused", func() {
				viper.Set(key.LandingFullscreenPolicy, "hide")
				defer viper.Set(key.LandingFullscreenPolicy, "ignore")

				_, err := FromConfig(context.Background())
				So(err, ShouldNotBeNil)
			})
		})
	})
}
