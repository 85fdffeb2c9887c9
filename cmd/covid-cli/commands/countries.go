package commands

import (
	"fmt"
	"io"
	"unicode/utf8"

	"covidtracker/cmd/covid-cli/globals"
	"covidtracker/cmd/covid-cli/utils"
	"covidtracker/lib/scrapers/worldometers"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(countriesCmd)
}

func parseLetter(s string) (rune, error) {
	letter, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) || letter > 'z' ||
		!(letter >= 'a' && letter <= 'z' || letter >= 'A' && letter <= 'Z') {
		return 0, fmt.Errorf("%q is not a single letter", s)
	}
	return letter, nil
}

func renderListing(out io.Writer, listed []worldometers.ListedCountry) {
	t := utils.NewTable(out)
	t.AppendHeader(table.Row{"#", "Country", "Population"})
	for _, c := range listed {
		t.AppendRow(table.Row{c.Rank, c.Name, c.Population})
	}
	t.Render()
}

var countriesCmd = &cobra.Command{
	Use:   "countries <letter>",
	Short: "Lists the countries whose name starts with a letter.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		letter, err := parseLetter(args[0])
		if err != nil {
			return err
		}
		value := globals.Get(cmd.Context())
		listed, err := value.Directory.ListByLetter(cmd.Context(), letter)
		if err != nil {
			return err
		}
		renderListing(cmd.OutOrStdout(), listed)
		return nil
	},
}
