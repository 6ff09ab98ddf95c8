// Package controller applies control channel commands to the player.
package controller

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kinoplay/kinoplay/command"
	"github.com/kinoplay/kinoplay/log"
	"github.com/kinoplay/kinoplay/player"
)

// Surface is the presentation layer the interpreter may ask to reveal the player.
type Surface interface {
	Reveal()
}

// Options tune how frames are decoded and applied.
type Options struct {
	// Batching splits frames on newlines into several records.
	Batching bool

	// RevealOnPlay asks the surface to reveal the player on every play command.
	RevealOnPlay bool

	// OnApply, when set, is called after each record with the command and the
	// player error, if any. Malformed records are reported with a nil command.
	OnApply func(cmd command.Command, err error)
}

// Stats counts what happened to the records seen so far.
type Stats struct {
	Applied int // commands the player accepted
	Failed  int // commands the player returned an error for
	Skipped int // malformed records
	Unknown int // records of an unrecognized kind
	Last    string
}

// Interpreter decodes frames and drives the player.
// It is not safe for concurrent use, frames are handed to it by a single owner.
type Interpreter struct {
	player  player.Player
	surface Surface
	options Options

	mu    sync.Mutex
	stats Stats
}

// New creates an interpreter. surface may be nil.
func New(p player.Player, surface Surface, options Options) *Interpreter {
	return &Interpreter{
		player:  p,
		surface: surface,
		options: options,
	}
}

// HandleFrame applies every record of frame in order. Bad records are logged
// and skipped, they never stop the rest of the frame.
func (i *Interpreter) HandleFrame(frame []byte) {
	for _, result := range command.Decode(frame, i.options.Batching) {
		if result.Err != nil {
			log.Warnf("skipping record %q: %s", result.Record, result.Err)
			i.count(func(s *Stats) { s.Skipped++ })
			i.notify(nil, result.Err)
			continue
		}

		err := i.Apply(result.Command)
		if err != nil {
			log.Errorf("%s: %s", result.Command, err)
		}
		i.notify(result.Command, err)
	}
}

// Apply runs a single command against the player.
func (i *Interpreter) Apply(cmd command.Command) error {
	if unknown, ok := cmd.(command.Unknown); ok {
		i.reportUnknown(unknown)
		return nil
	}

	log.Infof("applying %s", cmd)

	err := i.dispatch(cmd)
	i.count(func(s *Stats) {
		if err != nil {
			s.Failed++
		} else {
			s.Applied++
		}
		s.Last = cmd.String()
	})

	if err != nil {
		return fmt.Errorf("%s: %w", cmd.Kind(), err)
	}
	return nil
}

func (i *Interpreter) dispatch(cmd command.Command) error {
	switch c := cmd.(type) {
	case command.Play:
		if err := i.player.Play(); err != nil {
			return err
		}
		if err := i.player.SetVolume(1); err != nil {
			return err
		}
		if i.options.RevealOnPlay && i.surface != nil {
			i.surface.Reveal()
		}
		return nil
	case command.Pause:
		return i.player.Pause()
	case command.Stop:
		return errors.Join(
			i.player.Pause(),
			i.player.Seek(0),
			i.player.Reset(),
		)
	case command.SetSource:
		if err := i.player.SetSource(c.URL); err != nil {
			return err
		}
		return i.player.Play()
	case command.Rewind:
		pos, err := i.player.Position()
		if err != nil {
			return err
		}
		// bounds are the player's business
		return i.player.Seek(pos + float64(c.Duration))
	default:
		return fmt.Errorf("unhandled command %T", cmd)
	}
}

func (i *Interpreter) reportUnknown(cmd command.Unknown) {
	i.count(func(s *Stats) { s.Unknown++ })

	if hint, ok := command.Suggest(cmd.Raw).Get(); ok {
		log.Infof("ignoring %s, did you mean %q?", cmd, hint)
		return
	}
	log.Infof("ignoring %s", cmd)
}

func (i *Interpreter) notify(cmd command.Command, err error) {
	if i.options.OnApply != nil {
		i.options.OnApply(cmd, err)
	}
}

func (i *Interpreter) count(update func(*Stats)) {
	i.mu.Lock()
	defer i.mu.Unlock()
	update(&i.stats)
}

// Stats returns a copy of the counters. Safe to call from any goroutine.
func (i *Interpreter) Stats() Stats {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.stats
}
