package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/kinoplay/kinoplay/channel"
	"github.com/kinoplay/kinoplay/constant"
	"github.com/kinoplay/kinoplay/icon"
	"github.com/kinoplay/kinoplay/identity"
	"github.com/kinoplay/kinoplay/key"
	"github.com/kinoplay/kinoplay/network"
	"github.com/kinoplay/kinoplay/player"
	"github.com/kinoplay/kinoplay/remote"
	"github.com/kinoplay/kinoplay/style"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const checkTimeout = 10 * time.Second

type check struct {
	name string
	run  func(ctx context.Context) (string, error)
}

var checks = []check{
	{"player", checkPlayer},
	{"identifier", checkIdentifier},
	{"server", checkServer},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the player, the identifier and the server are usable",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
		defer cancel()

		var failed bool
		for _, c := range checks {
			detail, err := c.run(ctx)
			if err != nil {
				failed = true
				fmt.Printf("%s %s: %s\n", style.Fg(style.ErrorColor)(icon.Get(icon.Fail)), style.Bold(c.name), err)
				continue
			}
			fmt.Printf("%s %s: %s\n", style.Fg(style.SuccessColor)(icon.Get(icon.Success)), style.Bold(c.name), detail)
		}

		if failed {
			os.Exit(1)
		}
	},
}

func checkPlayer(context.Context) (string, error) {
	switch name := viper.GetString(key.Player); name {
	case player.BackendMPV:
		if socket := viper.GetString(key.PlayerMPVSocket); socket != "" {
			return "attaching to mpv on " + socket, nil
		}
		path, err := exec.LookPath("mpv")
		if err != nil {
			printMissingDependencyError("mpv")
			return "", err
		}
		return path, nil
	case player.BackendMPRIS:
		if dest := viper.GetString(key.PlayerMPRISDest); dest != "" {
			return dest, nil
		}
		names, err := player.DiscoverMPRIS()
		if err != nil {
			return "", err
		}
		return names[0], nil
	case player.BackendMemory:
		return "in-memory player, nothing will be shown", nil
	default:
		return "", fmt.Errorf("%w: %q", player.ErrUnknownBackend, name)
	}
}

func checkIdentifier(context.Context) (string, error) {
	id, err := identity.Resolve()
	if err != nil {
		return "", err
	}
	return id, identity.Validate(id)
}

func checkServer(ctx context.Context) (string, error) {
	switch name := viper.GetString(key.ChannelTransport); name {
	case channel.TransportWebSocket:
		target, err := serverURL(ctx)
		if err != nil {
			return "", err
		}
		return target, ping(ctx, target)
	case channel.TransportRedis:
		addr := viper.GetString(key.RedisAddr)
		r := channel.NewRedis(addr)
		defer r.Close()
		return addr, r.Ping(ctx)
	default:
		return "", fmt.Errorf("%w: %q", remote.ErrUnknownTransport, name)
	}
}

// ping asks kinohub for its landing page.
func ping(ctx context.Context, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", constant.Kinoplay+"/"+constant.Version)

	resp, err := network.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return errors.New(resp.Status)
	}
	return nil
}

func printMissingDependencyError(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case constant.Darwin:
		installCmd = "brew install " + dep
	case constant.Linux:
		installCmd = "sudo apt install " + dep
	case constant.Windows:
		installCmd = "scoop install " + dep
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.HiRed).Render(fmt.Sprintf("%s Missing dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("'%s' was not found in your PATH.", dep))

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
