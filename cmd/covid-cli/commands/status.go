package commands

import (
	"context"
	"io"
	"strings"

	"covidtracker/cmd/covid-cli/globals"
	"covidtracker/cmd/covid-cli/utils"
	"covidtracker/lib/coronamonitor"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

func latestStatus(ctx context.Context, value *globals.Value, name string) (coronamonitor.Status, error) {
	code, err := value.Directory.Code(ctx, name)
	if err != nil {
		return coronamonitor.Status{}, err
	}
	return value.Monitor.LatestStat(ctx, code)
}

func renderStatus(out io.Writer, name string, status coronamonitor.Status) {
	t := utils.NewTable(out)
	t.SetTitle("%s (%s) as of %s", name, status.Code, status.Day())
	t.AppendRows([]table.Row{
		{"Total cases", status.TotalCases},
		{"New cases", status.NewCases},
		{"Active cases", status.ActiveCases},
		{"Serious / critical", status.SeriousCritical},
		{"Total deaths", status.TotalDeaths},
		{"New deaths", status.NewDeaths},
		{"Total recovered", status.TotalRecovered},
	})
	t.Render()
}

var statusCmd = &cobra.Command{
	Use:   "status <country name>",
	Short: "Shows the latest published statistics of a country.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")
		status, err := latestStatus(cmd.Context(), globals.Get(cmd.Context()), name)
		if err != nil {
			return err
		}
		renderStatus(cmd.OutOrStdout(), name, status)
		return nil
	},
}
