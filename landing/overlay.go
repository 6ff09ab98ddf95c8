// Package landing is the presentation layer shown while kinoplay waits for
// commands: a landing card that gives way to the player once revealed.
package landing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/kinoplay/kinoplay/channel"
	"github.com/kinoplay/kinoplay/command"
	"github.com/kinoplay/kinoplay/log"
	"github.com/kinoplay/kinoplay/player"
	"golang.org/x/term"
)

// ErrQuit is returned by Run when the user leaves the overlay.
var ErrQuit = errors.New("landing closed by user")

// Policy decides how the landing card reacts to fullscreen changes of the player.
type Policy string

const (
	// PolicyIgnore leaves the landing card alone.
	PolicyIgnore Policy = "ignore"
	// PolicyFollow hides the card when the player enters fullscreen and shows
	// it again when the player leaves fullscreen.
	PolicyFollow Policy = "follow"
)

// ParsePolicy validates a policy name.
func ParsePolicy(name string) (Policy, error) {
	switch p := Policy(name); p {
	case PolicyIgnore, PolicyFollow:
		return p, nil
	default:
		return "", fmt.Errorf("unknown fullscreen policy %q, available: %s, %s", name, PolicyIgnore, PolicyFollow)
	}
}

// Options configure an Overlay.
type Options struct {
	ClientID string
	Endpoint string
	Policy   Policy

	// Interactive runs the terminal UI. Ignored when stdout is not a terminal.
	Interactive bool

	// Dispatch runs fn on the goroutine that owns the player.
	Dispatch func(fn func()) error

	// Reconnect asks the control channel to redial now.
	Reconnect func() error
}

// Snapshot is what the overlay currently displays.
type Snapshot struct {
	ClientID string
	Endpoint string
	State    channel.State
	Landing  bool // landing card visible, player hidden
	Last     string
	LastErr  string
	Applied  int
	Failed   int

	// playback as reported by the player, only when it pushes events
	Loaded   bool
	Paused   bool
	Position float64
}

// Overlay implements the surface the interpreter reveals the player through.
// Reveal and FullscreenChanged run on the player owner goroutine, the
// terminal UI reads snapshots from its own.
type Overlay struct {
	player  player.Player
	options Options

	mu       sync.Mutex
	snapshot Snapshot
}

// New creates an overlay with the landing card visible.
func New(p player.Player, options Options) *Overlay {
	if options.Policy == "" {
		options.Policy = PolicyIgnore
	}

	return &Overlay{
		player:  p,
		options: options,
		snapshot: Snapshot{
			ClientID: options.ClientID,
			Endpoint: options.Endpoint,
			Landing:  true,
		},
	}
}

// Snapshot returns a copy of the displayed state.
func (o *Overlay) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshot
}

func (o *Overlay) update(fn func(*Snapshot)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(&o.snapshot)
}

// Reveal hides the landing card and brings the player up fullscreen.
func (o *Overlay) Reveal() {
	o.update(func(s *Snapshot) { s.Landing = false })

	if err := errors.Join(o.player.Play(), o.player.SetFullscreen(true)); err != nil {
		log.Warnf("reveal: %s", err)
	}
}

// RequestReveal is the manual reveal from the landing card. It is routed to
// the player owner goroutine.
func (o *Overlay) RequestReveal() {
	if o.options.Dispatch == nil {
		o.Reveal()
		return
	}
	if err := o.options.Dispatch(o.Reveal); err != nil {
		log.Warnf("reveal: %s", err)
	}
}

// FullscreenChanged applies the fullscreen policy.
func (o *Overlay) FullscreenChanged(on bool) {
	if o.options.Policy != PolicyFollow {
		return
	}
	o.update(func(s *Snapshot) { s.Landing = !on })
}

// StateChanged records the control channel state.
func (o *Overlay) StateChanged(state channel.State) {
	o.update(func(s *Snapshot) { s.State = state })

	if !o.interactive() {
		log.Infof("channel %s", state)
	}
}

// PauseChanged records the pause flag pushed by the player.
func (o *Overlay) PauseChanged(paused bool) {
	o.update(func(s *Snapshot) { s.Paused = paused })
}

// PositionChanged records the playback position. loaded is false when the
// player has nothing loaded.
func (o *Overlay) PositionChanged(seconds float64, loaded bool) {
	o.update(func(s *Snapshot) {
		s.Loaded = loaded
		s.Position = seconds
		if !loaded {
			s.Position = 0
		}
	})
}

// Applied records the outcome of a command record.
func (o *Overlay) Applied(cmd command.Command, err error) {
	o.update(func(s *Snapshot) {
		switch {
		case cmd == nil:
			s.LastErr = err.Error()
		case isUnknown(cmd):
			s.Last = cmd.String()
		case err != nil:
			s.Failed++
			s.Last = cmd.String()
			s.LastErr = err.Error()
		default:
			s.Applied++
			s.Last = cmd.String()
			s.LastErr = ""
		}
	})
}

func isUnknown(cmd command.Command) bool {
	_, ok := cmd.(command.Unknown)
	return ok
}

func (o *Overlay) interactive() bool {
	return o.options.Interactive && term.IsTerminal(int(os.Stdout.Fd()))
}

// Run shows the overlay until ctx is done. Without a terminal it only waits.
func (o *Overlay) Run(ctx context.Context) error {
	if !o.interactive() {
		<-ctx.Done()
		return nil
	}
	return runProgram(ctx, o)
}
