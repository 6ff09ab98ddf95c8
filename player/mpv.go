package player

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/kinoplay/kinoplay/constant"
	"github.com/kinoplay/kinoplay/log"
	"github.com/kinoplay/kinoplay/where"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	quitTimeout       = 3 * time.Second
)

// MPV implements Player on top of an idle mpv instance driven over JSON-IPC.
type MPV struct {
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when the mpv process exits
	attached   bool          // socket belongs to an mpv we did not launch

	mu      sync.Mutex // serializes socket round trips
	startMu sync.Mutex // guards process launch
}

// NewMPV creates an mpv player. The process is launched lazily by Start or
// by the first command that needs it.
func NewMPV() *MPV {
	return &MPV{exited: make(chan struct{})}
}

// AttachMPV drives an mpv that is already listening on socketPath.
// Close asks it to quit but never kills it.
func AttachMPV(socketPath string) *MPV {
	return &MPV{
		socketPath: socketPath,
		exited:     make(chan struct{}),
		attached:   true,
	}
}

// Start launches mpv in idle mode with a window ready to present media.
// It is a no-op when mpv is already running.
func (m *MPV) Start() error {
	m.startMu.Lock()
	defer m.startMu.Unlock()

	if m.running() {
		return nil
	}
	if m.attached {
		return fmt.Errorf("attached mpv on %s is gone", m.socketPath)
	}

	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Errorf("generate socket name: %w", err)
	}
	m.socketPath = filepath.Join(where.Temp(), fmt.Sprintf("mpv-%x.sock", randomBytes))

	// Only the socket and window behaviour are passed, the user's mpv.conf is respected.
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
		fmt.Sprintf("--title=%s", constant.Kinoplay),
		"--force-window=yes",
		"--idle=yes",
		"--keep-open=yes",
	}

	m.cmd = exec.Command("mpv", args...)

	m.cmd.SysProcAttr = detached()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	// reap the process to prevent zombies
	exited := make(chan struct{})
	m.exited = exited
	go func(cmd *exec.Cmd) {
		_ = cmd.Wait()
		close(exited)
	}(m.cmd)

	if err := m.waitForSocket(); err != nil {
		select {
		case <-exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(m.cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	log.Infof("mpv started on %s", m.socketPath)
	return nil
}

// Wait returns a channel that is closed when the mpv process exits.
func (m *MPV) Wait() <-chan struct{} {
	return m.exited
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	return m.socketPath
}

// errExitedEarly is returned when mpv quits before its socket accepts connections.
var errExitedEarly = errors.New("mpv exited before socket was ready")

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket() error {
	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(socketWaitDelay), socketWaitRetries)
	return waitForSocket(m.socketPath, m.exited, policy)
}

// waitForSocket dials path until it answers, policy runs out or exited is closed.
func waitForSocket(path string, exited <-chan struct{}, policy backoff.BackOff) error {
	err := backoff.Retry(func() error {
		select {
		case <-exited:
			return backoff.Permanent(errExitedEarly)
		default:
		}

		conn, err := net.Dial("unix", path)
		if err != nil {
			return err
		}
		return conn.Close()
	}, policy)
	if err != nil {
		return fmt.Errorf("socket %s not ready: %w", path, err)
	}
	return nil
}

// running reports whether there is an mpv to talk to, without a round trip.
func (m *MPV) running() bool {
	if m.socketPath == "" {
		return false
	}
	select {
	case <-m.exited:
		return false
	default:
		return true
	}
}

// IsRunning reports whether mpv is responding to IPC commands.
func (m *MPV) IsRunning() bool {
	if !m.running() {
		return false
	}
	_, err := m.sendCommand("get_property", "pid")
	return err == nil
}

// Play clears the pause flag. Launches mpv if needed.
func (m *MPV) Play() error {
	if err := m.Start(); err != nil {
		return err
	}
	return m.Set("pause", false)
}

// Pause sets the pause flag. With no mpv running there is nothing to pause.
func (m *MPV) Pause() error {
	if !m.running() {
		return nil
	}
	return m.Set("pause", true)
}

// SetSource replaces the loaded file.
func (m *MPV) SetSource(rawURL string) error {
	target, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	if err := m.Start(); err != nil {
		return err
	}

	_, err = m.sendCommand("loadfile", target, "replace")
	return err
}

// Position returns the playback position, 0 when nothing is loaded.
func (m *MPV) Position() (float64, error) {
	if !m.running() {
		return 0, nil
	}

	pos, err := m.getFloatProperty("time-pos")
	if errors.Is(err, ErrPropertyUnavailable) {
		return 0, nil
	}
	return pos, err
}

// Duration returns the length of the loaded media, 0 when unknown.
func (m *MPV) Duration() (float64, error) {
	if !m.running() {
		return 0, nil
	}

	dur, err := m.getFloatProperty("duration")
	if errors.Is(err, ErrPropertyUnavailable) {
		return 0, nil
	}
	return dur, err
}

// HasActivePlayback reports whether a file is loaded.
func (m *MPV) HasActivePlayback() (bool, error) {
	if !m.running() {
		return false, nil
	}

	data, err := m.sendCommand("get_property", "time-pos")
	if errors.Is(err, ErrPropertyUnavailable) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return data != nil, nil
}

// Seek moves playback to an absolute position. mpv reads negative absolute
// positions as offsets from the end, so the target is clamped first.
func (m *MPV) Seek(seconds float64) error {
	active, err := m.HasActivePlayback()
	if err != nil || !active {
		return err
	}

	dur, err := m.Duration()
	if err != nil {
		return err
	}

	_, err = m.sendCommand("seek", clamp(seconds, dur), "absolute")
	return err
}

// SetVolume maps level in [0, 1] onto mpv's 0..100 volume.
func (m *MPV) SetVolume(level float64) error {
	if err := m.Start(); err != nil {
		return err
	}
	return m.Set("volume", clamp(level, 1)*100)
}

// SetMuted toggles the mute property.
func (m *MPV) SetMuted(muted bool) error {
	if err := m.Start(); err != nil {
		return err
	}
	return m.Set("mute", muted)
}

// SetFullscreen toggles the fullscreen property.
func (m *MPV) SetFullscreen(on bool) error {
	if err := m.Start(); err != nil {
		return err
	}
	return m.Set("fullscreen", on)
}

// Fullscreen reads the fullscreen property.
func (m *MPV) Fullscreen() (bool, error) {
	if !m.running() {
		return false, nil
	}

	data, err := m.sendCommand("get_property", "fullscreen")
	if err != nil {
		return false, err
	}
	on, ok := data.(bool)
	if !ok {
		return false, fmt.Errorf("property fullscreen: expected bool, got %T", data)
	}
	return on, nil
}

// Reset unloads the current file and leaves mpv idle.
func (m *MPV) Reset() error {
	if !m.running() {
		return nil
	}
	_, err := m.sendCommand("stop")
	return err
}

// Close shuts down mpv and removes its socket.
func (m *MPV) Close() error {
	if !m.running() {
		return nil
	}

	_, _ = m.sendCommand("quit")
	if m.attached {
		return nil
	}

	select {
	case <-m.exited:
	case <-time.After(quitTimeout):
		_ = killProcess(m.cmd)
	}

	_ = os.Remove(m.socketPath)
	return nil
}

// Set writes a property.
func (m *MPV) Set(property string, value any) error {
	_, err := m.sendCommand("set_property", property, value)
	return err
}

// getFloatProperty reads a numeric property.
func (m *MPV) getFloatProperty(name string) (float64, error) {
	data, err := m.sendCommand("get_property", name)
	if err != nil {
		return 0, err
	}

	if data == nil {
		return 0, ErrPropertyUnavailable
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", name, data)
	}

	return val, nil
}

// sanitizeMediaTarget validates that a source is safe to hand to mpv.
// Sources come from the network, so anything resembling a flag is refused.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", errors.New("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", errors.New("invalid control characters in URL")
	}

	if strings.HasPrefix(l, "-") {
		return "", errors.New("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}
