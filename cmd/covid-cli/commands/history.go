package commands

import (
	"fmt"
	"strings"

	"covidtracker/cmd/covid-cli/globals"
	"covidtracker/cmd/covid-cli/utils"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Only show the most recent n days.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history <country code>",
	Short: "Prints the stored history of a country.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := globals.Get(ctx).Store(ctx)
		if err != nil {
			return err
		}
		code := strings.ToUpper(args[0])
		country, err := s.Country(ctx, code)
		if err != nil {
			return err
		}
		records, err := s.History(ctx, code)
		if err != nil {
			return err
		}
		if historyLimit > 0 && len(records) > historyLimit {
			records = records[len(records)-historyLimit:]
		}

		t := utils.NewTable(cmd.OutOrStdout())
		t.SetTitle("%s (%s), population %d", country.Name, country.Code, country.Population)
		t.AppendHeader(table.Row{"Date", "Cases", "Deaths", "Active", "Recovered", "Cases %", "Deaths %", "Active %"})
		for _, r := range records {
			t.AppendRow(table.Row{
				r.Date,
				r.TotalCases, r.TotalDeaths, r.ActiveCases, r.TotalRecovered,
				fmt.Sprintf("%.4f", r.CasePercent),
				fmt.Sprintf("%.4f", r.DeathPercent),
				fmt.Sprintf("%.4f", r.ActivePercent),
			})
		}
		t.Render()
		return nil
	},
}
