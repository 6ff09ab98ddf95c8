package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"github.com/kinoplay/kinoplay/log"
)

// Event is a property change or lifecycle notification pushed by mpv.
type Event struct {
	// Name is the property name for property changes, otherwise the event name
	// (e.g. "end-file", "playback-restart").
	Name string
	Data any
}

// Bool returns Data as a bool, false when it is anything else.
func (e Event) Bool() bool {
	b, _ := e.Data.(bool)
	return b
}

// Float returns Data as a number. ok is false when mpv reported no value,
// e.g. time-pos with nothing loaded.
func (e Event) Float() (value float64, ok bool) {
	value, ok = e.Data.(float64)
	return value, ok
}

// EventCallback receives mpv events on the listener goroutine.
type EventCallback func(Event)

// observed lists the properties the listener subscribes to.
var observed = []string{
	"fullscreen",  // landing overlay policy
	"pause",       // landing playback line
	"time-pos",    // landing playback line
	"eof-reached", // log only
}

// EventListener streams mpv events from a persistent IPC connection.
type EventListener struct {
	socketPath string
	callback   EventCallback
}

// NewEventListener creates a listener for the mpv on socketPath.
func NewEventListener(socketPath string, callback EventCallback) *EventListener {
	return &EventListener{
		socketPath: socketPath,
		callback:   callback,
	}
}

// Run subscribes to the observed properties and delivers events until ctx is
// done or mpv closes the connection. Observers are bound to the connection
// that registered them, so subscription and reading share one socket.
func (el *EventListener) Run(ctx context.Context) error {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	encoder := json.NewEncoder(conn)
	for i, name := range observed {
		if err := encoder.Encode(ipcCommand{Command: []any{"observe_property", i + 1, name}}); err != nil {
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	log.Infof("mpv event listener started on %s (observing: %v)", el.socketPath, observed)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	for scanner.Scan() {
		el.processEvent(scanner.Bytes())
	}

	if ctx.Err() != nil {
		return nil
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("event listener read: %w", err)
	}
	return nil
}

// processEvent parses and dispatches a single mpv event line.
// Command replies and unparseable lines are skipped.
func (el *EventListener) processEvent(line []byte) {
	var raw map[string]any
	if err := json.Unmarshal(line, &raw); err != nil {
		return
	}

	name, ok := raw["event"].(string)
	if !ok || el.callback == nil {
		return
	}

	if name == "property-change" {
		property, _ := raw["name"].(string)
		if property == "" {
			return
		}
		el.callback(Event{Name: property, Data: raw["data"]})
		return
	}

	el.callback(Event{Name: name, Data: raw})
}
