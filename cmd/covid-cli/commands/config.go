package commands

import (
	"time"

	"covidtracker/lib/configutil/sqlitecfg"
	"covidtracker/lib/coronamonitor"
	"covidtracker/lib/scrapers/countrycode"
	"covidtracker/lib/scrapers/worldometers"
	"covidtracker/lib/telemetry"
)

type CacheConfig struct {
	File string `json:"file" env:"COVID_CACHE_FILE"`
}

type ApiConfig struct {
	BaseUrl string `json:"base_url"`
	Host    string `json:"host"`
	Key     string `json:"key" env:"COVID_API_KEY"`
}

type SourcesConfig struct {
	ListingBaseUrl string `json:"listing_base_url"`
	CodesUrl       string `json:"codes_url"`
}

type ChartConfig struct {
	Output string `json:"output" env:"COVID_CHART_OUTPUT"`
}

type Config struct {
	Cache          CacheConfig      `json:"cache"`
	Database       sqlitecfg.Struct `json:"database"`
	Api            ApiConfig        `json:"api"`
	Sources        SourcesConfig    `json:"sources"`
	Chart          ChartConfig      `json:"chart"`
	Telemetry      telemetry.Config `json:"telemetry"`
	TimeoutSeconds int              `json:"timeout_seconds"`
}

func DefaultConfig() Config {
	return Config{
		Cache:    CacheConfig{File: "<dev_state>/cache.json"},
		Database: sqlitecfg.Struct{File: "<dev_state>/covid.sqlite"},
		Api: ApiConfig{
			BaseUrl: coronamonitor.DefaultBaseUrl,
			Host:    coronamonitor.DefaultHost,
		},
		Sources: SourcesConfig{
			ListingBaseUrl: worldometers.DefaultBaseUrl,
			CodesUrl:       countrycode.DefaultUrl,
		},
		Chart:          ChartConfig{Output: "covid-chart.html"},
		TimeoutSeconds: 30,
	}
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
