package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/kinoplay/kinoplay/color"
	"github.com/kinoplay/kinoplay/icon"
	"github.com/kinoplay/kinoplay/identity"
	"github.com/kinoplay/kinoplay/key"
	"github.com/kinoplay/kinoplay/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// promptForID is the --set value used when the flag is given without one.
const promptForID = "\x00prompt"

func init() {
	rootCmd.AddCommand(idCmd)

	idCmd.Flags().BoolP("generate", "g", false, "Generate a new identifier and store it")
	idCmd.Flags().StringP("set", "s", "", "Store the given identifier, asks for it when empty")
	idCmd.Flags().Lookup("set").NoOptDefVal = promptForID
	idCmd.Flags().BoolP("forget", "f", false, "Remove the stored identifier")
	idCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	idCmd.MarkFlagsMutuallyExclusive("generate", "set", "forget")
}

var idCmd = &cobra.Command{
	Use:   "id",
	Short: "Show or change the client identifier",
	Long: `Show or change the identifier kinohub addresses this client by.
It is stored in the store selected by client.store and can be overridden with --id or client.id.`,
	Example: "  kinoplay id --generate\n  kinoplay id --set 3f2a9c1e-...",
	Run: func(cmd *cobra.Command, args []string) {
		store, err := identity.Configured()
		handleErr(err)

		switch {
		case lo.Must(cmd.Flags().GetBool("generate")):
			saveID(store, identity.Generate())
		case cmd.Flags().Changed("set"):
			id := lo.Must(cmd.Flags().GetString("set"))
			if id == promptForID {
				id = askID()
			}
			saveID(store, id)
		case lo.Must(cmd.Flags().GetBool("forget")):
			if !lo.Must(cmd.Flags().GetBool("yes")) && !confirm(fmt.Sprintf("Forget the identifier in the %s store?", store.Name())) {
				return
			}
			handleErr(store.Forget())
			fmt.Printf("%s identifier forgotten\n", style.Fg(color.Green)(icon.Get(icon.Success)))
		default:
			printID(cmd)
		}
	},
}

func printID(cmd *cobra.Command) {
	id, err := identity.Resolve()
	handleErr(err)

	cmd.Println(id)
	if viper.GetString(key.ClientID) != "" {
		cmd.Println(style.Faint("(from " + key.ClientID + ")"))
	}
}

func saveID(store identity.Store, id string) {
	handleErr(identity.Validate(id))
	handleErr(store.Save(id))
	fmt.Printf(
		"%s stored %s in the %s store\n",
		style.Fg(color.Green)(icon.Get(icon.Success)),
		style.Fg(color.Yellow)(id),
		store.Name(),
	)
}

func askID() string {
	var id string
	input := survey.Input{
		Message: "Client identifier:",
		Help:    "The value of the puid cookie kinohub issued to this client",
	}
	handleErr(survey.AskOne(&input, &id, survey.WithValidator(survey.Required)))
	return id
}

func confirm(message string) bool {
	var response bool
	handleErr(survey.AskOne(&survey.Confirm{Message: message, Default: false}, &response))
	return response
}
