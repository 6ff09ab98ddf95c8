// Package cmd implements the kinoplay command-line interface.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kinoplay/kinoplay/channel"
	"github.com/kinoplay/kinoplay/color"
	"github.com/kinoplay/kinoplay/constant"
	"github.com/kinoplay/kinoplay/icon"
	"github.com/kinoplay/kinoplay/identity"
	"github.com/kinoplay/kinoplay/key"
	"github.com/kinoplay/kinoplay/landing"
	"github.com/kinoplay/kinoplay/log"
	"github.com/kinoplay/kinoplay/player"
	"github.com/kinoplay/kinoplay/remote"
	"github.com/kinoplay/kinoplay/style"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// fixed completions for a flag
func completeWith(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Icon variant (emoji, nerd, plain, ...)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", completeWith(icon.AvailableVariants()...)))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().String("id", "", "Client identifier, overrides the stored one")
	lo.Must0(viper.BindPFlag(key.ClientID, rootCmd.PersistentFlags().Lookup("id")))

	rootCmd.PersistentFlags().String("store", "", "Where the identifier is stored ("+strings.Join(identity.Stores(), ", ")+")")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("store", completeWith(identity.Stores()...)))
	lo.Must0(viper.BindPFlag(key.ClientStore, rootCmd.PersistentFlags().Lookup("store")))

	rootCmd.PersistentFlags().StringP("player", "p", "", "Player backend ("+strings.Join(player.Backends(), ", ")+")")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("player", completeWith(player.Backends()...)))
	lo.Must0(viper.BindPFlag(key.Player, rootCmd.PersistentFlags().Lookup("player")))

	rootCmd.PersistentFlags().String("host", "", "kinohub host[:port]")
	lo.Must0(viper.BindPFlag(key.ServerHost, rootCmd.PersistentFlags().Lookup("host")))

	rootCmd.PersistentFlags().Bool("discover", false, "Find kinohub on the local network")
	lo.Must0(viper.BindPFlag(key.ServerDiscover, rootCmd.PersistentFlags().Lookup("discover")))

	rootCmd.PersistentFlags().StringP("transport", "t", "", "Control channel transport ("+strings.Join(channel.Transports(), ", ")+")")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("transport", completeWith(channel.Transports()...)))
	lo.Must0(viper.BindPFlag(key.ChannelTransport, rootCmd.PersistentFlags().Lookup("transport")))

	rootCmd.Flags().Bool("landing", true, "Show the landing overlay in the terminal")
	lo.Must0(viper.BindPFlag(key.LandingEnable, rootCmd.Flags().Lookup("landing")))

	rootCmd.Flags().String("fullscreen-policy", "", "Landing reaction to fullscreen changes (ignore, follow)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("fullscreen-policy", completeWith(string(landing.PolicyIgnore), string(landing.PolicyFollow))))
	lo.Must0(viper.BindPFlag(key.LandingFullscreenPolicy, rootCmd.Flags().Lookup("fullscreen-policy")))

	rootCmd.Flags().Bool("reveal-on-play", false, "Reveal the player when a play command arrives")
	lo.Must0(viper.BindPFlag(key.PlayerRevealOnPlay, rootCmd.Flags().Lookup("reveal-on-play")))
}

var rootCmd = &cobra.Command{
	Use:   constant.Kinoplay,
	Short: "Media player remote-controlled by kinohub",
	Long: style.New().Bold(true).Foreground(color.HiPurple).Render(constant.Kinoplay) + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - a media player kinohub drives over a persistent control channel"),
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("version")) {
			versionCmd.Run(versionCmd, args)
			return
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// without the overlay, the log is the only feedback
		if !viper.GetBool(key.LandingEnable) || !term.IsTerminal(int(os.Stdout.Fd())) {
			log.Console()
		}

		options, err := remote.FromConfig(ctx)
		handleErr(err)

		controller := remote.New(options)
		log.Infof("client %s on %s", options.ClientID, options.Endpoint)

		handleErr(errors.Join(controller.Run(ctx), controller.Close()))
	},
}

// Execute runs the command line.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
