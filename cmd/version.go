package cmd

import (
	"os"
	"runtime"
	"strings"
	"text/template"

	"github.com/kinoplay/kinoplay/channel"
	"github.com/kinoplay/kinoplay/color"
	"github.com/kinoplay/kinoplay/constant"
	"github.com/kinoplay/kinoplay/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Only print the version")
}

var versionTemplate = lo.Must(template.New("version").Funcs(map[string]any{
	"faint":   style.Faint,
	"bold":    style.Bold,
	"magenta": style.Fg(color.Purple),
}).Parse(`{{ magenta "▇▇▇" }} {{ magenta .App }}

  {{ faint "Version" }}         {{ bold .Version }}
  {{ faint "Git Commit" }}      {{ bold .Revision }}
  {{ faint "Build Date" }}      {{ bold .BuiltAt }}
  {{ faint "Built By" }}        {{ bold .BuiltBy }}
  {{ faint "Platform" }}        {{ bold .OS }}/{{ bold .Arch }}

  {{ faint "Control path" }}    {{ bold .ControlPath }}
  {{ faint "Transports" }}      {{ bold .Transports }}
  {{ faint "Discovery" }}       {{ bold .Discovery }}
`))

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		info := struct {
			App, Version, OS, Arch, BuiltAt, BuiltBy, Revision string
			ControlPath, Transports, Discovery                 string
		}{
			App:      constant.Kinoplay,
			Version:  constant.Version,
			OS:       runtime.GOOS,
			Arch:     runtime.GOARCH,
			BuiltAt:  strings.TrimSpace(constant.BuiltAt),
			BuiltBy:  constant.BuiltBy,
			Revision: constant.Revision,

			ControlPath: constant.ControlPath,
			Transports:  strings.Join(channel.Transports(), ", "),
			Discovery:   constant.DiscoveryService + "." + constant.DiscoveryDomain,
		}

		handleErr(versionTemplate.Execute(cmd.OutOrStdout(), info))
	},
}
