// Package coronamonitor reads the coronavirus monitor API published on
// RapidAPI. Every request goes through the response cache.
package coronamonitor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"covidtracker/lib/history"
	"covidtracker/lib/reqcache"
)

const (
	DefaultBaseUrl = "https://coronavirus-monitor-v2.p.rapidapi.com/coronavirus/"
	DefaultHost    = "coronavirus-monitor-v2.p.rapidapi.com"

	latestEndpoint  = "latest_stat_by_alpha_2_code.php"
	historyEndpoint = "history_by_alpha_2.php"
	codeParam       = "alpha2"
)

// Fetcher is the subset of the response cache used by the client.
type Fetcher interface {
	FetchJSON(ctx context.Context, r reqcache.JSONRequest) (json.RawMessage, error)
	FetchHistory(ctx context.Context, r reqcache.JSONRequest) ([]history.Entry, error)
}

type Options struct {
	BaseUrl string
	Host    string
	ApiKey  string
}

type Client struct {
	fetcher Fetcher
	opts    Options
}

func NewClient(fetcher Fetcher, opts Options) Client {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if !strings.HasSuffix(opts.BaseUrl, "/") {
		opts.BaseUrl += "/"
	}
	if opts.Host == "" {
		opts.Host = DefaultHost
	}
	return Client{fetcher: fetcher, opts: opts}
}

func (c Client) request(endpoint, code string) reqcache.JSONRequest {
	return reqcache.JSONRequest{
		URL:        c.opts.BaseUrl + endpoint,
		Key:        strings.ToUpper(code),
		QueryParam: codeParam,
		Credential: reqcache.Credential{
			Header: "x-rapidapi-key",
			Key:    c.opts.ApiKey,
		},
		Headers: map[string]string{
			"x-rapidapi-host": c.opts.Host,
		},
	}
}

// History returns the deduplicated, oldest-first daily series of a
// country.
func (c Client) History(ctx context.Context, code string) ([]history.Entry, error) {
	return c.fetcher.FetchHistory(ctx, c.request(historyEndpoint, code))
}

// Status is the latest published snapshot of a country.
type Status struct {
	history.Entry
	Code string
}

// LatestStat returns the most recent snapshot of a country.
func (c Client) LatestStat(ctx context.Context, code string) (Status, error) {
	payload, err := c.fetcher.FetchJSON(ctx, c.request(latestEndpoint, code))
	if err != nil {
		return Status{}, err
	}

	stats, err := reqcache.SecondValue(payload)
	if err != nil {
		return Status{}, err
	}
	if !stats.IsArray() || len(stats.Array()) == 0 {
		return Status{}, fmt.Errorf("%w: no latest stat for %s", reqcache.ErrFormat, code)
	}

	var entry history.Entry
	err = json.Unmarshal([]byte(stats.Array()[0].Raw), &entry)
	if err != nil {
		return Status{}, fmt.Errorf("%w: %w", reqcache.ErrFormat, err)
	}
	return Status{Entry: entry, Code: strings.ToUpper(code)}, nil
}
