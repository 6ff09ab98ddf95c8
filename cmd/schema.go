package cmd

import (
	"os"

	"github.com/kinoplay/kinoplay/command"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().BoolP("kinds", "k", false, "Only list the recognized command kinds")
	schemaCmd.SetOut(os.Stdout)
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of control channel records",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("kinds")) {
			for _, kind := range command.Kinds() {
				cmd.Println(kind)
			}
			return
		}

		schema, err := command.SchemaJSON()
		handleErr(err)
		cmd.Println(string(schema))
	},
}
