package commands

import (
	"context"
	"io"
	"strings"

	"covidtracker/cmd/covid-cli/globals"
	"covidtracker/cmd/covid-cli/utils"
	"covidtracker/lib/ingest"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(ctx context.Context, out io.Writer, value *globals.Value, name string) (ingest.Result, error) {
	pipeline, err := value.Pipeline(ctx)
	if err != nil {
		return ingest.Result{}, err
	}
	res, err := pipeline.Ingest(ctx, name)
	if res.Written > 0 || res.Rejected > 0 {
		utils.Success(
			out, "stored %d days for %s (%s), %d rejected",
			res.Written, res.Country.Name, res.Country.Code, res.Rejected,
		)
	}
	return res, err
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <country name>",
	Short: "Fetches the history of a country and stores it in the database.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := runIngest(cmd.Context(), cmd.OutOrStdout(), globals.Get(cmd.Context()), strings.Join(args, " "))
		return err
	},
}
