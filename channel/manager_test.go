package channel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

const wait = 2 * time.Second

type fakeConn struct {
	frames chan []byte
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{frames: make(chan []byte, 16), closed: make(chan struct{})}
}

func (c *fakeConn) Read(ctx context.Context) ([]byte, error) {
	select {
	case frame := <-c.frames:
		return frame, nil
	case <-c.closed:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	case <-time.After(wait):
		return false
	}
}

// dialRequest is one pending Dial. The test decides its outcome.
type dialRequest struct {
	ctx   context.Context
	reply chan *fakeConn
}

// abandoned reports whether the manager cancelled this dial.
func (r dialRequest) abandoned() bool {
	select {
	case <-r.ctx.Done():
		return true
	case <-time.After(wait):
		return false
	}
}

func (r dialRequest) accept(c *fakeConn) { r.reply <- c }
func (r dialRequest) refuse()            { r.reply <- nil }

type fakeTransport struct {
	requests chan dialRequest
}

var errRefused = errors.New("connection refused")

func (t *fakeTransport) Dial(ctx context.Context, _ string) (Conn, error) {
	req := dialRequest{ctx: ctx, reply: make(chan *fakeConn, 1)}
	select {
	case t.requests <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case c := <-req.reply:
		if c == nil {
			return nil, errRefused
		}
		return c, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *fakeTransport) next() (dialRequest, bool) {
	select {
	case req := <-t.requests:
		return req, true
	case <-time.After(wait):
		return dialRequest{}, false
	}
}

func (t *fakeTransport) idle() bool {
	select {
	case <-t.requests:
		return false
	case <-time.After(100 * time.Millisecond):
		return true
	}
}

type armedTimer struct {
	delay time.Duration
	fire  chan time.Time
}

type fakeClock struct {
	armed chan armedTimer
}

func (c *fakeClock) after(d time.Duration) <-chan time.Time {
	t := armedTimer{delay: d, fire: make(chan time.Time, 1)}
	c.armed <- t
	return t.fire
}

func (c *fakeClock) next() (armedTimer, bool) {
	select {
	case t := <-c.armed:
		return t, true
	case <-time.After(wait):
		return armedTimer{}, false
	}
}

func (c *fakeClock) quiet() bool {
	select {
	case <-c.armed:
		return false
	case <-time.After(100 * time.Millisecond):
		return true
	}
}

type harness struct {
	manager   *Manager
	transport *fakeTransport
	clock     *fakeClock
	frames    chan []byte
	states    chan State
	cancel    context.CancelFunc
	done      chan error
}

func newHarness(delay time.Duration) *harness {
	h := &harness{
		transport: &fakeTransport{requests: make(chan dialRequest, 16)},
		clock:     &fakeClock{armed: make(chan armedTimer, 16)},
		frames:    make(chan []byte, 16),
		states:    make(chan State, 64),
		done:      make(chan error, 1),
	}

	h.manager = NewManager(Options{
		Transport:     h.transport,
		Endpoint:      "ws://kinohub/ui/pws/?pid=abc",
		Delay:         delay,
		OnFrame:       func(frame []byte) { h.frames <- frame },
		OnStateChange: func(s State) { h.states <- s },
	})
	h.manager.after = h.clock.after

	var ctx context.Context
	ctx, h.cancel = context.WithCancel(context.Background())
	go func() { h.done <- h.manager.Run(ctx) }()
	return h
}

func (h *harness) reach(want State) bool {
	timeout := time.After(wait)
	for {
		select {
		case s := <-h.states:
			if s == want {
				return true
			}
		case <-timeout:
			return false
		}
	}
}

func (h *harness) frame() string {
	select {
	case f := <-h.frames:
		return string(f)
	case <-time.After(wait):
		return ""
	}
}

func (h *harness) stop() {
	h.cancel()
	<-h.done
}

// open accepts the next dial with a fresh connection and waits for Open.
func (h *harness) open() *fakeConn {
	req, ok := h.transport.next()
	So(ok, ShouldBeTrue)

	conn := newFakeConn()
	req.accept(conn)
	So(h.reach(Open), ShouldBeTrue)
	return conn
}

func TestManager(t *testing.T) {
	Convey("Given a running manager", t, func() {
		h := newHarness(0)
		defer h.stop()

		Convey("It should dial and deliver frames in order", func() {
			conn := h.open()
			So(h.manager.State(), ShouldEqual, Open)

			conn.frames <- []byte("one")
			conn.frames <- []byte("two")
			conn.frames <- []byte("three")

			So(h.frame(), ShouldEqual, "one")
			So(h.frame(), ShouldEqual, "two")
			So(h.frame(), ShouldEqual, "three")
		})

		Convey("A closure should reconnect once after the delay and honor the next frame", func() {
			conn := h.open()
			So(conn.Close(), ShouldBeNil)

			So(h.reach(Disconnected), ShouldBeTrue)
			timer, ok := h.clock.next()
			So(ok, ShouldBeTrue)
			So(timer.delay, ShouldEqual, DefaultDelay)

			// nothing is dialed before the timer fires
			So(h.transport.idle(), ShouldBeTrue)

			timer.fire <- time.Now()
			next := h.open()
			next.frames <- []byte(`{"type_id":"play"}`)
			So(h.frame(), ShouldEqual, `{"type_id":"play"}`)

			So(h.clock.quiet(), ShouldBeTrue)
		})

		Convey("A failed dial should schedule exactly one reconnect", func() {
			req, ok := h.transport.next()
			So(ok, ShouldBeTrue)
			req.refuse()

			timer, ok := h.clock.next()
			So(ok, ShouldBeTrue)
			So(h.clock.quiet(), ShouldBeTrue)
			So(h.manager.State(), ShouldEqual, Disconnected)

			timer.fire <- time.Now()
			h.open()
		})

		Convey("Closures of superseded channels should be ignored", func() {
			old := h.open()
			So(h.manager.Reconnect(), ShouldBeNil)

			// the old channel is closed by the manager and its read error is stale
			So(old.isClosed(), ShouldBeTrue)
			h.open()
			So(h.clock.quiet(), ShouldBeTrue)
			So(h.transport.idle(), ShouldBeTrue)

			Convey("And frames from them should be dropped", func() {
				old.frames <- []byte("stale")
				So(h.clock.quiet(), ShouldBeTrue)
				select {
				case f := <-h.frames:
					So(string(f), ShouldNotEqual, "stale")
				case <-time.After(100 * time.Millisecond):
				}
			})
		})

		Convey("A dial superseded before it completes should be cancelled", func() {
			h.open()

			So(h.manager.Reconnect(), ShouldBeNil)
			stale, ok := h.transport.next()
			So(ok, ShouldBeTrue)

			So(h.manager.Reconnect(), ShouldBeNil)
			So(stale.abandoned(), ShouldBeTrue)

			live, ok := h.transport.next()
			So(ok, ShouldBeTrue)
			select {
			case <-live.ctx.Done():
				So("live dial cancelled", ShouldBeEmpty)
			default:
			}

			liveConn := newFakeConn()
			live.accept(liveConn)
			So(h.reach(Open), ShouldBeTrue)

			liveConn.frames <- []byte("live")
			So(h.frame(), ShouldEqual, "live")
			So(h.clock.quiet(), ShouldBeTrue)
		})

		Convey("A reconnect before the timer fires should supersede it", func() {
			conn := h.open()
			So(conn.Close(), ShouldBeNil)

			timer, ok := h.clock.next()
			So(ok, ShouldBeTrue)

			So(h.manager.Reconnect(), ShouldBeNil)
			h.open()

			timer.fire <- time.Now()
			So(h.transport.idle(), ShouldBeTrue)
			So(h.manager.State(), ShouldEqual, Open)
		})

		Convey("Do should run on the manager goroutine between frames", func() {
			conn := h.open()

			var order []string
			conn.frames <- []byte("first")
			So(h.frame(), ShouldEqual, "first")

			ran := make(chan struct{})
			So(h.manager.Do(func() {
				order = append(order, "task")
				close(ran)
			}), ShouldBeNil)
			<-ran

			So(order, ShouldResemble, []string{"task"})
		})
	})

	Convey("A custom delay should be used for reconnects", t, func() {
		h := newHarness(2 * time.Second)
		defer h.stop()

		conn := h.open()
		So(conn.Close(), ShouldBeNil)

		timer, ok := h.clock.next()
		So(ok, ShouldBeTrue)
		So(timer.delay, ShouldEqual, 2*time.Second)
	})

	Convey("After Run returns", t, func() {
		h := newHarness(0)
		conn := h.open()
		h.stop()

		Convey("The channel should be closed and the manager disconnected", func() {
			So(conn.isClosed(), ShouldBeTrue)
			So(h.manager.State(), ShouldEqual, Disconnected)
		})

		Convey("Do should report the manager as stopped", func() {
			So(h.manager.Do(func() {}), ShouldEqual, ErrStopped)
		})
	})
}

func TestState(t *testing.T) {
	Convey("States should print their name", t, func() {
		So(Disconnected.String(), ShouldEqual, "disconnected")
		So(Connecting.String(), ShouldEqual, "connecting")
		So(Open.String(), ShouldEqual, "open")
	})
}
