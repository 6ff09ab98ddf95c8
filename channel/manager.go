package channel

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/kinoplay/kinoplay/log"
	"github.com/sirupsen/logrus"
)

// DefaultDelay is the pause between a closure and the next dial.
const DefaultDelay = 5 * time.Second

// ErrStopped is returned by Do and Reconnect once Run has returned.
var ErrStopped = errors.New("channel manager stopped")

// Options configure a Manager.
type Options struct {
	Transport Transport
	Endpoint  string

	// Delay before redialing a closed channel. DefaultDelay when zero.
	Delay time.Duration

	// OnFrame receives every frame of the live channel, in arrival order,
	// on the manager goroutine.
	OnFrame func(frame []byte)

	// OnStateChange is called on the manager goroutine after each transition.
	OnStateChange func(State)
}

type eventKind int

const (
	eventOpened eventKind = iota
	eventFrame
	eventClosed
	eventTask
)

// event is everything the loop reacts to. gen ties transport events to the
// dial that produced them.
type event struct {
	kind  eventKind
	gen   uint64
	conn  Conn
	frame []byte
	err   error
	task  func()
}

// Manager owns the control channel lifecycle. All of its state, and
// everything its callbacks touch, is confined to the goroutine running Run.
type Manager struct {
	transport     Transport
	endpoint      string
	onFrame       func([]byte)
	onStateChange func(State)
	delay         time.Duration
	after         func(time.Duration) <-chan time.Time

	events chan event
	done   chan struct{}
	state  atomic.Int32

	// owned by the loop
	ctx        context.Context
	generation uint64
	cancel     context.CancelFunc // aborts the dial and reads of the live generation
	conn       Conn
	timer      <-chan time.Time
}

// NewManager creates a manager. Nothing is dialed until Run.
func NewManager(options Options) *Manager {
	delay := options.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}

	return &Manager{
		transport:     options.Transport,
		endpoint:      options.Endpoint,
		onFrame:       options.OnFrame,
		onStateChange: options.OnStateChange,
		delay:         delay,
		after:         time.After,
		events:        make(chan event, 64),
		done:          make(chan struct{}),
	}
}

// State returns the current state. Safe to call from any goroutine.
func (m *Manager) State() State {
	return State(m.state.Load())
}

// Endpoint returns the address the manager dials.
func (m *Manager) Endpoint() string {
	return m.endpoint
}

// Do schedules fn to run on the manager goroutine, after the events already
// queued. It serializes work with frame handling.
func (m *Manager) Do(fn func()) error {
	if !m.post(event{kind: eventTask, task: fn}) {
		return ErrStopped
	}
	return nil
}

// Reconnect drops the current channel, if any, and dials immediately.
// Events still in flight from the dropped channel are ignored.
func (m *Manager) Reconnect() error {
	return m.Do(m.redial)
}

// Run dials the channel and keeps it open until ctx is done.
// It must be called once.
func (m *Manager) Run(ctx context.Context) error {
	defer close(m.done)

	m.ctx = ctx
	m.connect()

	for {
		select {
		case <-ctx.Done():
			m.drop()
			m.setState(Disconnected)
			return nil
		case <-m.timer:
			m.timer = nil
			m.connect()
		case ev := <-m.events:
			m.handle(ev)
		}
	}
}

func (m *Manager) handle(ev event) {
	if ev.kind == eventTask {
		ev.task()
		return
	}

	if ev.gen != m.generation {
		// a superseded channel: never schedule anything on its behalf
		if ev.kind == eventOpened {
			_ = ev.conn.Close()
		}
		log.Debugf("dropping stale event %d of generation %d (live %d)", ev.kind, ev.gen, m.generation)
		return
	}

	switch ev.kind {
	case eventOpened:
		m.conn = ev.conn
		m.timer = nil
		log.WithFields(logrus.Fields{
			"endpoint":   m.endpoint,
			"generation": m.generation,
		}).Info("channel open")
		m.setState(Open)
	case eventFrame:
		if m.onFrame != nil {
			m.onFrame(ev.frame)
		}
	case eventClosed:
		m.drop()
		m.setState(Disconnected)
		m.schedule(ev.err)
	}
}

// connect starts a new generation and dials it in the background.
// The dial and every read of the generation share a context that drop cancels.
func (m *Manager) connect() {
	m.timer = nil
	m.generation++
	m.setState(Connecting)

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	go m.pump(ctx, m.generation)
}

// redial abandons the live generation and connects again.
func (m *Manager) redial() {
	m.drop()
	m.setState(Disconnected)
	m.connect()
}

// drop cancels the live generation, closes its channel and invalidates it.
// A dial still in flight is abandoned before any replacement starts.
func (m *Manager) drop() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.generation++
}

// schedule arms the single reconnect timer.
func (m *Manager) schedule(cause error) {
	log.WithFields(logrus.Fields{
		"endpoint": m.endpoint,
		"delay":    m.delay,
	}).Warnf("channel closed: %s", cause)
	m.timer = m.after(m.delay)
}

// pump dials one generation and forwards its frames until it closes.
func (m *Manager) pump(ctx context.Context, gen uint64) {
	conn, err := m.transport.Dial(ctx, m.endpoint)
	if err != nil {
		m.post(event{kind: eventClosed, gen: gen, err: err})
		return
	}

	if !m.post(event{kind: eventOpened, gen: gen, conn: conn}) {
		_ = conn.Close()
		return
	}

	for {
		frame, err := conn.Read(ctx)
		if err != nil {
			m.post(event{kind: eventClosed, gen: gen, err: err})
			return
		}
		if !m.post(event{kind: eventFrame, gen: gen, frame: frame}) {
			return
		}
	}
}

// post hands an event to the loop. It reports false once the loop has exited.
func (m *Manager) post(ev event) bool {
	select {
	case <-m.done:
		return false
	default:
	}

	select {
	case m.events <- ev:
		return true
	case <-m.done:
		return false
	}
}

func (m *Manager) setState(s State) {
	if State(m.state.Swap(int32(s))) == s {
		return
	}
	if m.onStateChange != nil {
		m.onStateChange(s)
	}
}
