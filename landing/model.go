package landing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kinoplay/kinoplay/channel"
	"github.com/kinoplay/kinoplay/color"
	"github.com/kinoplay/kinoplay/constant"
	"github.com/kinoplay/kinoplay/icon"
	"github.com/kinoplay/kinoplay/log"
	"github.com/kinoplay/kinoplay/style"
	"github.com/kinoplay/kinoplay/util"
	"github.com/muesli/reflow/wordwrap"
)

const (
	defaultWidth = 80
	minCardWidth = 24
	maxCardWidth = 96
)

var (
	paddingStyle = lipgloss.NewStyle().Padding(1, 2)
	cardStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(color.Purple).
			Padding(1, 3)
)

type keymap struct {
	reveal, reconnect, quit key.Binding
}

func newKeymap() keymap {
	return keymap{
		reveal: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "show player"),
		),
		reconnect: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reconnect"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "ctrl+d"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keymap) ShortHelp() []key.Binding {
	return []key.Binding{k.reveal, k.reconnect, k.quit}
}

func (k keymap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// model renders overlay snapshots. The spinner tick doubles as the refresh
// clock, so the overlay never has to push messages into the program.
type model struct {
	overlay *Overlay
	keys    keymap
	spinner spinner.Model
	help    help.Model
	width   int
	quit    bool
}

func newModel(o *Overlay) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(color.Purple)

	return &model{
		overlay: o,
		keys:    newKeymap(),
		spinner: s,
		help:    help.New(),
		width:   util.TerminalWidth(defaultWidth),
	}
}

func (m *model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			m.quit = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.reveal):
			m.overlay.RequestReveal()
		case key.Matches(msg, m.keys.reconnect):
			if reconnect := m.overlay.options.Reconnect; reconnect != nil {
				if err := reconnect(); err != nil {
					log.Warnf("reconnect: %s", err)
				}
			}
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *model) View() string {
	s := m.overlay.Snapshot()
	inner := util.Clamp(m.width-8, minCardWidth, maxCardWidth)

	var body string
	if s.Landing {
		body = m.viewLanding(s, inner)
	} else {
		body = m.viewPlaying(s, inner)
	}

	lines := []string{
		style.Title(constant.Kinoplay),
		"",
		cardStyle.Width(inner).Render(body),
		"",
		m.help.View(m.keys),
	}
	return paddingStyle.Render(strings.Join(lines, "\n"))
}

func (m *model) viewLanding(s Snapshot, width int) string {
	lines := []string{
		style.Bold("Waiting for kinohub"),
		"",
		m.viewState(s.State),
		style.Faint("client  ") + s.ClientID,
		style.Faint("server  ") + wordwrap.String(s.Endpoint, width),
	}
	return strings.Join(append(lines, m.viewLast(s, width)...), "\n")
}

func (m *model) viewPlaying(s Snapshot, width int) string {
	lines := []string{
		icon.Get(icon.Play) + " " + style.Bold("Player visible"),
		"",
		m.viewState(s.State),
	}
	return strings.Join(append(lines, m.viewLast(s, width)...), "\n")
}

func (m *model) viewState(state channel.State) string {
	switch state {
	case channel.Open:
		return style.Fg(color.Open)(icon.Get(icon.Link) + " " + state.String())
	case channel.Connecting:
		return m.spinner.View() + " " + style.Fg(color.Connecting)(state.String())
	default:
		return style.Fg(color.Disconnected)(icon.Get(icon.Unlink) + " " + state.String())
	}
}

func (m *model) viewLast(s Snapshot, width int) []string {
	var lines []string
	if s.Loaded {
		lines = append(lines, "", style.Faint("media   ")+viewPlayback(s))
	}
	if s.Last != "" {
		lines = append(lines, "", style.Faint("last    ")+wordwrap.String(s.Last, width))
	}
	if s.Applied+s.Failed > 0 {
		lines = append(lines, style.Faint("applied ")+util.Quantify(s.Applied, "command", "commands"))
	}
	if s.LastErr != "" {
		lines = append(lines, style.Fg(color.Red)(wordwrap.String(s.LastErr, width)))
	}
	return lines
}

func viewPlayback(s Snapshot) string {
	status := icon.Get(icon.Play) + " playing"
	if s.Paused {
		status = icon.Get(icon.Pause) + " paused"
	}
	return status + " at " + formatPosition(s.Position)
}

// formatPosition renders seconds as m:ss, or h:mm:ss past the hour.
func formatPosition(seconds float64) string {
	total := int(seconds)
	h, m, sec := total/3600, total%3600/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

// runProgram drives the terminal UI until ctx is done or the user quits.
func runProgram(ctx context.Context, o *Overlay) error {
	m := newModel(o)

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if ctx.Err() != nil {
		return nil
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if m.quit {
		return ErrQuit
	}
	return nil
}
