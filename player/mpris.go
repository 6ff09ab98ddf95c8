package player

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	mprisBusPrefix  = "org.mpris.MediaPlayer2"
	mprisObjectPath = "/org/mpris/MediaPlayer2"
	mprisPlayer     = mprisBusPrefix + ".Player"
)

// ErrNoMPRISPlayer is returned when no MPRIS player is present on the session bus.
var ErrNoMPRISPlayer = errors.New("no mpris player instance found")

// DiscoverMPRIS lists the MPRIS bus names present on the session bus.
func DiscoverMPRIS() ([]string, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, err
	}

	var names []string
	if err := conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		return nil, err
	}

	var dests []string
	for _, name := range names {
		if strings.HasPrefix(name, mprisBusPrefix+".") {
			dests = append(dests, name)
		}
	}

	if len(dests) == 0 {
		return nil, ErrNoMPRISPlayer
	}
	return dests, nil
}

// MPRIS implements Player for any D-Bus media player exposing org.mpris.MediaPlayer2.
type MPRIS struct {
	dest string
	conn *dbus.Conn
	bo   dbus.BusObject

	mu         sync.Mutex
	lastVolume float64 // restored on unmute, MPRIS has no mute property
	muted      bool
}

// NewMPRIS connects to the player named dest. An empty dest picks the first
// player found on the session bus.
func NewMPRIS(dest string) (*MPRIS, error) {
	if dest == "" {
		dests, err := DiscoverMPRIS()
		if err != nil {
			return nil, err
		}
		dest = dests[0]
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}

	return &MPRIS{
		dest:       dest,
		conn:       conn,
		bo:         conn.Object(dest, mprisObjectPath),
		lastVolume: 1,
	}, nil
}

// Name returns the bus name of the controlled player.
func (p *MPRIS) Name() string {
	return p.dest
}

// call invokes a method of the Player interface.
func (p *MPRIS) call(method string, args ...any) error {
	return p.bo.Call(mprisPlayer+"."+method, 0, args...).Err
}

func (p *MPRIS) Play() error {
	return p.call("Play")
}

func (p *MPRIS) Pause() error {
	return p.call("Pause")
}

// SetSource opens the URI. MPRIS players start playback on OpenUri, so the
// player is paused right after to keep SetSource free of side effects.
func (p *MPRIS) SetSource(rawURL string) error {
	target, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}
	if !strings.Contains(target, "://") {
		target = "file://" + target
	}

	if err := p.call("OpenUri", target); err != nil {
		return err
	}
	return p.call("Pause")
}

// Position reads the Position property, reported in microseconds.
func (p *MPRIS) Position() (float64, error) {
	v, err := p.bo.GetProperty(mprisPlayer + ".Position")
	if err != nil {
		return 0, err
	}

	us, ok := v.Value().(int64)
	if !ok {
		return 0, fmt.Errorf("property Position: expected int64, got %T", v.Value())
	}
	return float64(us) / 1e6, nil
}

// Seek uses SetPosition, which needs the current track id. An idle player
// has no track and nothing to seek.
func (p *MPRIS) Seek(seconds float64) error {
	meta, err := p.metadata()
	if err != nil {
		return err
	}

	track, ok := meta.trackID()
	if !ok {
		return nil
	}

	target := clamp(seconds, meta.length())
	return p.call("SetPosition", track, int64(target*1e6))
}

func (p *MPRIS) SetVolume(level float64) error {
	level = clamp(level, 1)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastVolume = level
	if p.muted {
		return nil
	}
	return p.bo.SetProperty(mprisPlayer+".Volume", dbus.MakeVariant(level))
}

// SetMuted zeroes the volume and restores the last level on unmute.
func (p *MPRIS) SetMuted(muted bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.muted = muted
	level := p.lastVolume
	if muted {
		level = 0
	}
	return p.bo.SetProperty(mprisPlayer+".Volume", dbus.MakeVariant(level))
}

// SetFullscreen writes the optional Fullscreen property of the root interface.
func (p *MPRIS) SetFullscreen(on bool) error {
	return p.bo.SetProperty(mprisBusPrefix+".Fullscreen", dbus.MakeVariant(on))
}

func (p *MPRIS) Fullscreen() (bool, error) {
	v, err := p.bo.GetProperty(mprisBusPrefix + ".Fullscreen")
	if err != nil {
		return false, err
	}
	on, _ := v.Value().(bool)
	return on, nil
}

// Reset stops playback. MPRIS Stop is a no-op on a stopped player.
func (p *MPRIS) Reset() error {
	return p.call("Stop")
}

// Close releases the private bus connection. The player itself keeps running.
func (p *MPRIS) Close() error {
	return p.conn.Close()
}

func (p *MPRIS) metadata() (mprisMetadata, error) {
	v, err := p.bo.GetProperty(mprisPlayer + ".Metadata")
	if err != nil {
		return nil, err
	}

	m, _ := v.Value().(map[string]dbus.Variant)
	return m, nil
}

// mprisMetadata maps metadata attribute names to values.
//
// https://www.freedesktop.org/wiki/Specifications/mpris-spec/metadata/
type mprisMetadata map[string]dbus.Variant

// trackID returns mpris:trackid, absent when nothing is loaded.
func (m mprisMetadata) trackID() (dbus.ObjectPath, bool) {
	v, ok := m["mpris:trackid"]
	if !ok {
		return "", false
	}

	switch id := v.Value().(type) {
	case dbus.ObjectPath:
		return id, id.IsValid() && id != "/org/mpris/MediaPlayer2/TrackList/NoTrack"
	case string:
		path := dbus.ObjectPath(id)
		return path, path.IsValid()
	default:
		return "", false
	}
}

// length returns mpris:length in seconds, 0 when unknown.
func (m mprisMetadata) length() float64 {
	v, ok := m["mpris:length"]
	if !ok {
		return 0
	}

	switch us := v.Value().(type) {
	case int64:
		return float64(us) / 1e6
	case uint64:
		return float64(us) / 1e6
	default:
		return 0
	}
}
