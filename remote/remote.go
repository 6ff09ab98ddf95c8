// Package remote assembles the player, the control channel and the landing
// overlay into the process-wide controller.
package remote

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kinoplay/kinoplay/channel"
	"github.com/kinoplay/kinoplay/controller"
	"github.com/kinoplay/kinoplay/landing"
	"github.com/kinoplay/kinoplay/log"
	"github.com/kinoplay/kinoplay/player"
	"golang.org/x/sync/errgroup"
)

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("controller already running")

// watchDelay paces reattaching to mpv events after mpv went away.
const watchDelay = 2 * time.Second

// Options hold everything a Controller is built from.
type Options struct {
	ClientID  string
	Player    player.Player
	Transport channel.Transport
	Endpoint  string

	// Delay between a closure of the control channel and the next dial.
	Delay time.Duration

	Batching     bool
	RevealOnPlay bool

	// Landing runs the terminal overlay when stdout is a terminal.
	Landing bool
	Policy  landing.Policy
}

// Controller owns the single player handle and the single control channel
// of the process. Everything that touches the player runs on the channel
// manager goroutine.
type Controller struct {
	player      player.Player
	transport   channel.Transport
	manager     *channel.Manager
	interpreter *controller.Interpreter
	overlay     *landing.Overlay

	running   atomic.Bool
	closeOnce sync.Once
}

// New wires the controller. Nothing is dialed or launched until Run.
func New(options Options) *Controller {
	c := &Controller{
		player:    options.Player,
		transport: options.Transport,
	}

	c.overlay = landing.New(options.Player, landing.Options{
		ClientID:    options.ClientID,
		Endpoint:    options.Endpoint,
		Policy:      options.Policy,
		Interactive: options.Landing,
		Dispatch:    func(fn func()) error { return c.manager.Do(fn) },
		Reconnect:   func() error { return c.manager.Reconnect() },
	})

	c.interpreter = controller.New(options.Player, c.overlay, controller.Options{
		Batching:     options.Batching,
		RevealOnPlay: options.RevealOnPlay,
		OnApply:      c.overlay.Applied,
	})

	c.manager = channel.NewManager(channel.Options{
		Transport:     options.Transport,
		Endpoint:      options.Endpoint,
		Delay:         options.Delay,
		OnFrame:       c.interpreter.HandleFrame,
		OnStateChange: c.overlay.StateChanged,
	})

	return c
}

// Manager exposes the control channel manager.
func (c *Controller) Manager() *channel.Manager {
	return c.manager
}

// Interpreter exposes the command interpreter.
func (c *Controller) Interpreter() *controller.Interpreter {
	return c.interpreter
}

// Overlay exposes the landing overlay.
func (c *Controller) Overlay() *landing.Overlay {
	return c.overlay
}

// Run keeps the control channel open and the overlay up until ctx is done
// or the user leaves the overlay. It may be called once.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.manager.Run(ctx)
	})

	if mpv, ok := c.player.(*player.MPV); ok {
		g.Go(func() error {
			return c.watch(ctx, mpv)
		})
	}

	g.Go(func() error {
		return c.overlay.Run(ctx)
	})

	err := g.Wait()
	if errors.Is(err, landing.ErrQuit) {
		return nil
	}
	return err
}

// Close releases the player and the transport. Safe to call more than once.
func (c *Controller) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.player.Close()
		if closer, ok := c.transport.(io.Closer); ok {
			err = errors.Join(err, closer.Close())
		}
	})
	return err
}

// onLoop runs fn on the manager goroutine and waits for it.
func (c *Controller) onLoop(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if err := c.manager.Do(func() {
		defer close(done)
		fn()
	}); err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// watch launches mpv and follows its events for as long as it lives. A new
// mpv launched later by a command is picked up on the next round.
func (c *Controller) watch(ctx context.Context, mpv *player.MPV) error {
	var started bool
	for {
		var (
			socket  string
			running bool
		)
		err := c.onLoop(ctx, func() {
			if !started {
				started = true
				if err := mpv.Start(); err != nil {
					log.Warnf("mpv: %s", err)
				}
			}
			running = mpv.IsRunning()
			socket = mpv.Socket()
		})
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, channel.ErrStopped) {
				return nil
			}
			return err
		}

		if running {
			listener := player.NewEventListener(socket, c.onEvent)
			if err := listener.Run(ctx); err != nil && ctx.Err() == nil {
				log.Warnf("mpv events: %s", err)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(watchDelay):
		}
	}
}

// onEvent runs on the listener goroutine and hands the event to the owner.
func (c *Controller) onEvent(e player.Event) {
	switch e.Name {
	case "fullscreen":
		on := e.Bool()
		if err := c.manager.Do(func() { c.overlay.FullscreenChanged(on) }); err != nil {
			log.Debugf("fullscreen event dropped: %s", err)
		}
	case "pause":
		c.overlay.PauseChanged(e.Bool())
	case "time-pos":
		c.overlay.PositionChanged(e.Float())
	case "eof-reached":
		if e.Bool() {
			log.Infof("playback reached the end of the media")
		}
	case "end-file", "start-file":
		log.Debugf("mpv %s", e.Name)
	}
}
