package commands

import (
	"fmt"
	"strings"

	"covidtracker/cmd/covid-cli/globals"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(codeCmd)
}

var codeCmd = &cobra.Command{
	Use:   "code <country name>",
	Short: "Prints the 2-letter code of a country.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")
		code, err := globals.Get(cmd.Context()).Directory.Code(cmd.Context(), name)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), code)
		return nil
	},
}
