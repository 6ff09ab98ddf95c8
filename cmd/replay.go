package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/kinoplay/kinoplay/channel"
	"github.com/kinoplay/kinoplay/color"
	"github.com/kinoplay/kinoplay/command"
	"github.com/kinoplay/kinoplay/controller"
	"github.com/kinoplay/kinoplay/filesystem"
	"github.com/kinoplay/kinoplay/icon"
	"github.com/kinoplay/kinoplay/identity"
	"github.com/kinoplay/kinoplay/key"
	"github.com/kinoplay/kinoplay/player"
	"github.com/kinoplay/kinoplay/style"
	"github.com/kinoplay/kinoplay/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().BoolP("dry", "d", false, "Apply to an in-memory player and print its final state")
	replayCmd.Flags().Float64("duration", 0, "Media length assumed by --dry, in seconds")
	replayCmd.Flags().Duration("interval", 0, "Pause between frames")
	replayCmd.Flags().Bool("publish", false, "Publish the frames to the redis channel of the client instead")
	replayCmd.MarkFlagsMutuallyExclusive("dry", "publish")
}

var replayCmd = &cobra.Command{
	Use:   "replay [file]",
	Short: "Feed recorded control frames to the player",
	Long: `Read control frames from a file, or stdin when the file is "-", and apply them
the way frames from kinohub are applied. Frames are separated by blank lines.`,
	Example: "  kinoplay replay --dry session.jsonl\n  echo '{\"type_id\":\"pause\"}' | kinoplay replay --publish -",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := readFrames(args[0])
		handleErr(err)

		frames := splitFrames(data)
		interval := lo.Must(cmd.Flags().GetDuration("interval"))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		if lo.Must(cmd.Flags().GetBool("publish")) {
			handleErr(publishFrames(ctx, frames, interval))
			return
		}

		var p player.Player
		if lo.Must(cmd.Flags().GetBool("dry")) {
			p = player.NewMemory(lo.Must(cmd.Flags().GetFloat64("duration")))
		} else {
			p, err = player.New(viper.GetString(key.Player))
			handleErr(err)
		}

		interpreter := controller.New(p, nil, controller.Options{
			Batching: viper.GetBool(key.ChannelBatching),
			OnApply:  printApplied,
		})

		err = eachFrame(ctx, frames, interval, func(frame []byte) error {
			interpreter.HandleFrame(frame)
			return nil
		})

		stats := interpreter.Stats()
		fmt.Printf(
			"\n%s applied, %d failed, %d skipped, %d unknown\n",
			util.Quantify(stats.Applied, "command", "commands"),
			stats.Failed,
			stats.Skipped,
			stats.Unknown,
		)

		if memory, ok := p.(*player.Memory); ok {
			printState(memory.State())
		} else if err == nil {
			fmt.Println(style.Faint("press ctrl+c to close the player"))
			<-ctx.Done()
		}

		handleErr(errors.Join(ignoreCanceled(err), p.Close()))
	},
}

func readFrames(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return filesystem.API().ReadFile(path)
}

// splitFrames cuts data on blank lines. Lines within a frame stay together so
// batching can be exercised.
func splitFrames(data []byte) [][]byte {
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))

	var frames [][]byte
	for _, chunk := range bytes.Split(data, []byte("\n\n")) {
		if len(bytes.TrimSpace(chunk)) > 0 {
			frames = append(frames, chunk)
		}
	}
	return frames
}

func eachFrame(ctx context.Context, frames [][]byte, interval time.Duration, fn func([]byte) error) error {
	for i, frame := range frames {
		if i > 0 && interval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}
		if err := fn(frame); err != nil {
			return err
		}
	}
	return nil
}

func publishFrames(ctx context.Context, frames [][]byte, interval time.Duration) error {
	id, err := identity.Resolve()
	if err != nil {
		return err
	}

	r := channel.NewRedis(viper.GetString(key.RedisAddr))
	defer r.Close()

	endpoint := channel.RedisEndpoint(viper.GetString(key.RedisPrefix), id)
	err = eachFrame(ctx, frames, interval, func(frame []byte) error {
		return r.Publish(ctx, endpoint, frame)
	})
	if err != nil {
		return ignoreCanceled(err)
	}

	fmt.Printf(
		"%s published %s to %s\n",
		style.Fg(color.Green)(icon.Get(icon.Success)),
		util.Quantify(len(frames), "frame", "frames"),
		endpoint,
	)
	return nil
}

func printApplied(cmd command.Command, err error) {
	switch {
	case cmd == nil:
		fmt.Printf("%s %s\n", style.Fg(color.Yellow)("skip"), err)
	case err != nil:
		fmt.Printf("%s %s: %s\n", style.Fg(color.Red)("fail"), cmd, err)
	default:
		fmt.Printf("%s %s\n", style.Fg(color.Green)(" ok "), cmd)
	}
}

func printState(s player.State) {
	row := func(name string, value any) {
		fmt.Printf("  %s %v\n", style.Faint(fmt.Sprintf("%-10s", name)), value)
	}

	fmt.Println()
	row("source", lo.Ternary(s.Source == "", "-", s.Source))
	row("playing", lo.Ternary(s.Playing, icon.Get(icon.Play), icon.Get(icon.Pause)))
	row("position", s.Position)
	row("volume", s.Volume)
	row("muted", s.Muted)
	row("fullscreen", s.Fullscreen)
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
