package commands

import (
	"fmt"

	"covidtracker/cmd/covid-cli/globals"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Lists the requests held in the response cache.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache := globals.Get(cmd.Context()).Cache
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %d entries\n", cache.Path(), cache.Len())
		for _, key := range cache.Keys() {
			fmt.Fprintln(out, key)
		}
		return nil
	},
}
