package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"covidtracker/cmd/covid-cli/globals"
	"covidtracker/cmd/covid-cli/utils"
	"covidtracker/lib/chart"
	"covidtracker/lib/ingest"

	"github.com/spf13/cobra"
)

var (
	chartMetric string
	chartOutput string
)

func init() {
	chartCmd.Flags().StringVarP(&chartMetric, "metric", "m", string(chart.TotalCases), "Metric to plot.")
	chartCmd.Flags().StringVarP(&chartOutput, "out", "o", "", "Output HTML file, defaults to chart.output from the config.")
	rootCmd.AddCommand(chartCmd)
}

// onlyFormatErrors reports whether err is made up of rejected records
// alone, which still leaves a chartable history behind.
func onlyFormatErrors(err error) bool {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return errors.Is(err, ingest.ErrFormat)
	}
	for _, e := range joined.Unwrap() {
		if !onlyFormatErrors(e) {
			return false
		}
	}
	return true
}

// writeChart ingests a country and renders metric from the stored history
// to path.
func writeChart(ctx context.Context, out io.Writer, value *globals.Value, name string, metric chart.Metric, path string) error {
	res, err := runIngest(ctx, out, value, name)
	if err != nil && !(res.Written > 0 && onlyFormatErrors(err)) {
		return err
	}
	if err != nil {
		utils.Error(out, "some records were skipped: %s", err)
	}

	s, err := value.Store(ctx)
	if err != nil {
		return err
	}
	records, err := s.History(ctx, res.Country.Code)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	err = chart.Render(f, res.Country.Name, metric, records)
	if err != nil {
		return err
	}
	utils.Success(out, "wrote %s", path)
	return f.Close()
}

var chartCmd = &cobra.Command{
	Use:   "chart <country name>",
	Short: "Stores the history of a country and charts one metric as HTML.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		metric, err := chart.ParseMetric(chartMetric)
		if err != nil {
			return err
		}
		value := globals.Get(cmd.Context())
		path := chartOutput
		if path == "" {
			path = value.ChartPath
		}
		if path == "" {
			return fmt.Errorf("no output file given")
		}
		return writeChart(cmd.Context(), cmd.OutOrStdout(), value, strings.Join(args, " "), metric, path)
	},
}
