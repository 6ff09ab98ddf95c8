package cmd

import (
	"context"
	"fmt"
	"net/url"

	"github.com/kinoplay/kinoplay/icon"
	"github.com/kinoplay/kinoplay/key"
	"github.com/kinoplay/kinoplay/open"
	"github.com/kinoplay/kinoplay/remote"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(openCmd)
}

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the kinohub remote in the browser",
	Run: func(cmd *cobra.Command, args []string) {
		target, err := serverURL(cmd.Context())
		handleErr(err)

		handleErr(open.Start(target))
		fmt.Printf("%s opened %s\n", icon.Get(icon.Link), target)
	},
}

// serverURL is the web address of the configured kinohub server.
func serverURL(ctx context.Context) (string, error) {
	host, err := remote.ServerHost(ctx)
	if err != nil {
		return "", err
	}

	scheme := "http"
	if viper.GetBool(key.ServerSecure) {
		scheme = "https"
	}

	u := url.URL{Scheme: scheme, Host: host, Path: "/"}
	return u.String(), nil
}
