package commands

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"covidtracker/cmd/covid-cli/globals"
	"covidtracker/lib/countries"
	"covidtracker/lib/ingest"
	"covidtracker/lib/scrapers/worldometers"
	"covidtracker/lib/store"

	"github.com/stretchr/testify/require"
)

func TestParseLetter(t *testing.T) {
	letter, err := parseLetter("u")
	require.NoError(t, err)
	require.Equal(t, 'u', letter)

	letter, err = parseLetter("G")
	require.NoError(t, err)
	require.Equal(t, 'G', letter)

	for _, bad := range []string{"", "ab", "7", "é", "-"} {
		_, err := parseLetter(bad)
		require.Error(t, err, bad)
	}
}

func TestParseChoice(t *testing.T) {
	i, err := parseChoice(" 3 ", 5)
	require.NoError(t, err)
	require.Equal(t, 2, i)

	_, err = parseChoice("0", 5)
	require.Error(t, err)
	_, err = parseChoice("6", 5)
	require.Error(t, err)
	_, err = parseChoice("two", 5)
	require.Error(t, err)
}

func TestCommand(t *testing.T) {
	require.ErrorIs(t, command("EXIT"), errExit)
	require.ErrorIs(t, command(" back "), errBack)
	require.NoError(t, command("uganda"))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, "<dev_state>/cache.json", cfg.Cache.File)
	require.Equal(t, "<dev_state>/covid.sqlite", cfg.Database.File)
	require.NotEmpty(t, cfg.Api.BaseUrl)
	require.NotEmpty(t, cfg.Api.Host)
	require.Empty(t, cfg.Api.Key)
	require.Equal(t, int64(30), int64(cfg.Timeout().Seconds()))
}

type listingPages map[string]string

func (p listingPages) FetchText(_ context.Context, url string) (string, error) {
	page, ok := p[url]
	if !ok {
		return "", errors.New("404 " + url)
	}
	return page, nil
}

const uListing = `<div class="table-responsive"><table><tbody>
<tr><td>1</td><td>United States</td><td>331,002,651</td></tr>
<tr><td>2</td><td>United Kingdom</td><td>67,886,011</td></tr>
</tbody></table></div>`

func newSession(t *testing.T, input string) (session, *bytes.Buffer) {
	uUrl, err := worldometers.ListingURL(worldometers.DefaultBaseUrl, 'u')
	require.NoError(t, err)
	directory := countries.NewDirectory(listingPages{uUrl: uListing}, countries.Options{})

	out := &bytes.Buffer{}
	return session{
		ctx:   context.Background(),
		in:    bufio.NewScanner(strings.NewReader(input)),
		out:   out,
		value: &globals.Value{Directory: directory},
	}, out
}

func TestPickCountryReprompts(t *testing.T) {
	s, out := newSession(t, "7\nu\n0\nback\nu\n2\n")
	country, err := s.pickCountry()
	require.NoError(t, err)
	require.Equal(t, "United Kingdom", country.Name)
	require.Equal(t, int64(67886011), country.Population)

	text := out.String()
	require.Contains(t, text, `"7" is not a single letter`)
	require.Contains(t, text, "choose a number between 1 and 2")
	require.Contains(t, text, "United States")
}

func TestPickCountryFetchErrorContinues(t *testing.T) {
	s, out := newSession(t, "z\nexit\n")
	_, err := s.pickCountry()
	require.ErrorIs(t, err, errExit)
	require.Contains(t, out.String(), "404")
}

func TestRunExits(t *testing.T) {
	s, _ := newSession(t, "exit\n")
	require.NoError(t, s.run())

	// end of input behaves like exit
	s, _ = newSession(t, "")
	require.NoError(t, s.run())
}

func TestExecuteReleasesStoreOnFailure(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "covid.sqlite")
	t.Setenv("COVID_CACHE_FILE", filepath.Join(dir, "cache.json"))
	t.Setenv("COVID_DB_FILE", dbPath)

	err := execute(context.Background(), []string{
		"--config", filepath.Join(dir, "config.json5"),
		"history", "zz",
	})
	require.ErrorIs(t, err, store.ErrCountryNotFound)
	require.Nil(t, shared)

	// the write-ahead log is removed when the last connection closes
	require.FileExists(t, dbPath)
	require.NoFileExists(t, dbPath+"-wal")
}

func TestOnlyFormatErrors(t *testing.T) {
	rejected := fmt.Errorf("record GB 2020-04-02: %w", fmt.Errorf("%w: total_cases", ingest.ErrFormat))
	require.True(t, onlyFormatErrors(rejected))
	require.True(t, onlyFormatErrors(errors.Join(rejected, rejected)))

	failed := errors.New("database is locked")
	require.False(t, onlyFormatErrors(failed))
	require.False(t, onlyFormatErrors(errors.Join(rejected, failed)))
	require.False(t, onlyFormatErrors(fmt.Errorf("%w: %w", ingest.ErrPrecondition, store.ErrCountryNotFound)))
}
