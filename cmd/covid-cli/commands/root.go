package commands

import (
	"context"
	"fmt"
	"log/slog"

	"covidtracker/cmd/covid-cli/globals"
	devenv "covidtracker/dev/env"
	"covidtracker/lib/configutil"
	"covidtracker/lib/coronamonitor"
	"covidtracker/lib/countries"
	"covidtracker/lib/reqcache"
	"covidtracker/lib/restyutil"
	"covidtracker/lib/serviceutil"
	"covidtracker/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	tel        telemetry.Telemetry
)

// shared is set by setup and released by teardown after the command
// returns, whether or not it failed.
var shared *globals.Value

var rootCmd = &cobra.Command{
	Use:   "covid-cli",
	Short: "covid-cli fetches COVID-19 statistics per country, stores them and charts them.",
	// running without a subcommand starts the interactive menu
	RunE:              runInteractive,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json5", "Path to the json5 config file.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging and HTTP dumps.")
}

func setup(cmd *cobra.Command, _ []string) error {
	telemetry.InitSlog(verbose)
	ctx := cmd.Context()

	cfg, err := configutil.ReadConfig(configPath, DefaultConfig())
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if cfg.Api.Key == "" {
		slog.WarnContext(ctx, "no api key configured, set api.key or COVID_API_KEY")
	}

	tel, err = telemetry.Setup(ctx, "covid-cli", cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}

	var output restyutil.InstrumentOutput
	if verbose {
		fsOutput, err := restyutil.NewFilesystemOutput("<dev_state>/resty")
		if err != nil {
			slog.WarnContext(ctx, "http dumps disabled", "err", err)
		} else {
			output = fsOutput
		}
	}
	client := restyutil.NewClient(restyutil.ClientOptions{
		Timeout:          cfg.Timeout(),
		CloudflareBypass: true,
		Output:           output,
	})

	cachePath, err := devenv.ResolvePath(cfg.Cache.File)
	if err != nil {
		return fmt.Errorf("resolve cache path: %w", err)
	}
	cache := reqcache.Load(cachePath, client)

	value := &globals.Value{
		Cache: cache,
		Directory: countries.NewDirectory(cache, countries.Options{
			ListingBaseUrl: cfg.Sources.ListingBaseUrl,
			CodesUrl:       cfg.Sources.CodesUrl,
		}),
		Monitor: coronamonitor.NewClient(cache, coronamonitor.Options{
			BaseUrl: cfg.Api.BaseUrl,
			Host:    cfg.Api.Host,
			ApiKey:  cfg.Api.Key,
		}),
		Database:  cfg.Database,
		ChartPath: cfg.Chart.Output,
	}
	shared = value
	cmd.SetContext(globals.Set(ctx, value))
	return nil
}

func teardown(ctx context.Context) error {
	if shared != nil {
		err := shared.Close()
		if err != nil {
			slog.WarnContext(ctx, "failed to close store", "err", err)
		}
		shared = nil
	}
	err := tel.Shutdown(ctx)
	tel = telemetry.Telemetry{}
	return err
}

// execute runs the command line in args (os.Args when nil) and always
// releases what setup acquired.
func execute(ctx context.Context, args []string) error {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)

	// spans are still flushed after a cancelled command
	shutdownErr := teardown(context.WithoutCancel(ctx))
	if shutdownErr != nil {
		slog.WarnContext(ctx, "failed to shutdown telemetry", "err", shutdownErr)
	}
	return err
}

func ExecuteContext(ctx context.Context) {
	if err := execute(ctx, nil); err != nil {
		serviceutil.Fatal("covid-cli failed", err)
	}
}
