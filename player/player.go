// Package player defines the capability set of the local media player and its backends.
// The primary backend drives 'mpv' through its JSON-IPC interface; MPRIS players are
// reached over D-Bus and an in-memory model backs dry runs.
package player

import "errors"

// ErrUnknownBackend is returned by New for a backend name it does not recognize.
var ErrUnknownBackend = errors.New("unknown player backend")

// Player is the fixed capability set commands are applied to.
// Playback state is owned by the implementation, callers never cache it.
//
// Implementations must treat repeated requests as no-ops: pausing a paused
// player, playing a playing one, and seeking or resetting an idle one all
// return nil.
type Player interface {
	// Play resumes playback of the current source.
	Play() error

	// Pause suspends playback and retains the position.
	Pause() error

	// SetSource replaces the media source. Playback is not started.
	SetSource(url string) error

	// Position returns the playback position in seconds, 0 when idle.
	Position() (float64, error)

	// Seek moves to an absolute position in seconds, clamped to the media bounds.
	Seek(seconds float64) error

	// SetVolume sets the output level in [0, 1].
	SetVolume(level float64) error

	// SetMuted toggles audio output without touching the volume.
	SetMuted(muted bool) error

	// SetFullscreen requests or leaves fullscreen presentation.
	SetFullscreen(on bool) error

	// Fullscreen reports whether the player is presented fullscreen.
	Fullscreen() (bool, error)

	// Reset releases the current source and returns the player to idle.
	Reset() error

	// Close terminates the backend and releases its resources.
	Close() error
}

// Backend names accepted by New.
const (
	BackendMPV    = "mpv"
	BackendMPRIS  = "mpris"
	BackendMemory = "memory"
)

// Backends lists the available backend names.
func Backends() []string {
	return []string{BackendMPV, BackendMPRIS, BackendMemory}
}

// clamp bounds seconds to [0, duration]. A non-positive duration means the
// length is unknown and only the lower bound applies.
func clamp(seconds, duration float64) float64 {
	if seconds < 0 {
		return 0
	}
	if duration > 0 && seconds > duration {
		return duration
	}
	return seconds
}
