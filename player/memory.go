package player

import (
	"slices"
	"sync"
)

// State is a snapshot of the Memory player.
type State struct {
	Source     string
	Playing    bool
	Position   float64
	Volume     float64
	Muted      bool
	Fullscreen bool
}

// Memory is an in-process Player. It models the media element closely enough
// to compare command sequences and is used for dry runs.
type Memory struct {
	mu       sync.Mutex
	state    State
	duration float64
	calls    []string
}

// NewMemory creates an idle player. Every source is assumed to last duration
// seconds; 0 leaves the upper bound open.
func NewMemory(duration float64) *Memory {
	return &Memory{
		duration: duration,
		state:    State{Volume: 1},
	}
}

func (m *Memory) record(call string) {
	m.calls = append(m.calls, call)
}

// Play starts playback when a source is loaded.
func (m *Memory) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("play")
	if m.state.Source != "" {
		m.state.Playing = true
	}
	return nil
}

func (m *Memory) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("pause")
	m.state.Playing = false
	return nil
}

func (m *Memory) SetSource(url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("set-source " + url)
	m.state.Source = url
	m.state.Position = 0
	m.state.Playing = false
	return nil
}

func (m *Memory) Position() (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state.Position, nil
}

// Seek clamps to [0, duration]. Nothing moves while idle.
func (m *Memory) Seek(seconds float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("seek")
	if m.state.Source == "" {
		return nil
	}
	m.state.Position = clamp(seconds, m.duration)
	return nil
}

func (m *Memory) SetVolume(level float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("volume")
	m.state.Volume = clamp(level, 1)
	return nil
}

func (m *Memory) SetMuted(muted bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("mute")
	m.state.Muted = muted
	return nil
}

func (m *Memory) SetFullscreen(on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("fullscreen")
	m.state.Fullscreen = on
	return nil
}

func (m *Memory) Fullscreen() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state.Fullscreen, nil
}

// Reset unloads the source and rewinds.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("reset")
	m.state.Source = ""
	m.state.Position = 0
	m.state.Playing = false
	return nil
}

func (m *Memory) Close() error {
	return nil
}

// State returns the current snapshot.
func (m *Memory) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// Calls returns the operations applied so far, in order.
func (m *Memory) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.calls)
}
