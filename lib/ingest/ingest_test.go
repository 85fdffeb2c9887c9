package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"covidtracker/lib/history"
	"covidtracker/lib/scrapers/worldometers"
	"covidtracker/lib/store"
	"covidtracker/lib/testutil"

	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	codes  map[string]string
	listed map[string]worldometers.ListedCountry
}

var errUnknown = errors.New("unknown country")

func (d fakeDirectory) Code(_ context.Context, name string) (string, error) {
	code, ok := d.codes[strings.ToLower(name)]
	if !ok {
		return "", errUnknown
	}
	return code, nil
}

func (d fakeDirectory) Lookup(_ context.Context, name string) (worldometers.ListedCountry, error) {
	listed, ok := d.listed[strings.ToLower(name)]
	if !ok {
		return worldometers.ListedCountry{}, errUnknown
	}
	return listed, nil
}

type fakeSource struct {
	series map[string][]history.Entry
	calls  int
}

func (s *fakeSource) History(_ context.Context, code string) ([]history.Entry, error) {
	s.calls++
	return s.series[code], nil
}

func snapshot(date, cases, deaths, active, recovered string) history.Entry {
	return history.Entry{
		RecordDate:     date,
		TotalCases:     history.ParseMetric(cases),
		TotalDeaths:    history.ParseMetric(deaths),
		ActiveCases:    history.ParseMetric(active),
		TotalRecovered: history.ParseMetric(recovered),
	}
}

func TestBuildDailyRecoveredFallback(t *testing.T) {
	r, err := BuildDaily("GB", snapshot("2020-04-01 10:00:00", "100", "10", "20", "N/A"), 1000)
	require.NoError(t, err)
	require.Equal(t, int64(70), r.TotalRecovered)
	require.Equal(t, "2020-04-01", r.Date)

	r, err = BuildDaily("GB", snapshot("2020-04-01", "10", "10", "20", "not available"), 1000)
	require.NoError(t, err)
	require.Equal(t, int64(-20), r.TotalRecovered)

	r, err = BuildDaily("GB", snapshot("2020-04-01", "100", "10", "20", "55"), 1000)
	require.NoError(t, err)
	require.Equal(t, int64(55), r.TotalRecovered)
}

func TestBuildDailyPercentages(t *testing.T) {
	r, err := BuildDaily("GB", snapshot("2020-04-01", "50", "10", "", ""), 1000)
	require.NoError(t, err)
	require.Equal(t, 5.0, r.CasePercent)
	require.Equal(t, 1.0, r.DeathPercent)
	require.Equal(t, 0.0, r.ActivePercent)
	require.Equal(t, int64(0), r.ActiveCases)
	require.Equal(t, int64(0), r.TotalRecovered)
}

func TestBuildDailyThousandsSeparators(t *testing.T) {
	r, err := BuildDaily("US", snapshot("2020-04-01", "1,234,567", "1,000", "2,000", ""), 10_000_000)
	require.NoError(t, err)
	require.Equal(t, int64(1234567), r.TotalCases)
	require.InDelta(t, 12.34567, r.CasePercent, 1e-9)
}

func TestBuildDailyErrors(t *testing.T) {
	_, err := BuildDaily("GB", snapshot("2020-04-01", "lots", "1", "1", "1"), 1000)
	require.ErrorIs(t, err, ErrFormat)

	_, err = BuildDaily("GB", snapshot("2020-04-01", "1", "1", "1", "??"), 1000)
	require.ErrorIs(t, err, ErrFormat)

	_, err = BuildDaily("GB", snapshot("2020-04-01", "1", "1", "1", "1"), 0)
	require.ErrorIs(t, err, ErrPrecondition)
}

func newPipeline(t *testing.T, source *fakeSource) (Pipeline, *store.Store) {
	s := testutil.SetupStore(t)
	directory := fakeDirectory{
		codes: map[string]string{"united kingdom": "GB"},
		listed: map[string]worldometers.ListedCountry{
			"united kingdom": {Rank: 1, Name: "United Kingdom", Population: 1000},
		},
	}
	return NewPipeline(directory, source, s), s
}

func TestIngest(t *testing.T) {
	source := &fakeSource{series: map[string][]history.Entry{
		"GB": {
			snapshot("2020-04-01 06:00", "50", "5", "10", "N/A"),
			snapshot("2020-04-02 06:00", "80", "8", "12", "60"),
		},
	}}
	p, s := newPipeline(t, source)
	ctx := context.Background()

	res, err := p.Ingest(ctx, "United Kingdom")
	require.NoError(t, err)
	require.Equal(t, 2, res.Written)
	require.Equal(t, 0, res.Rejected)
	require.Equal(t, "GB", res.Country.Code)

	records, err := s.History(ctx, "GB")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, int64(35), records[0].TotalRecovered)
	require.Equal(t, 5.0, records[0].CasePercent)
}

func TestIngestTwiceLastWins(t *testing.T) {
	source := &fakeSource{series: map[string][]history.Entry{
		"GB": {snapshot("2020-04-01 06:00", "50", "5", "10", "35")},
	}}
	p, s := newPipeline(t, source)
	ctx := context.Background()

	_, err := p.Ingest(ctx, "United Kingdom")
	require.NoError(t, err)

	source.series["GB"] = []history.Entry{snapshot("2020-04-01 18:00", "60", "6", "10", "44")}
	_, err = p.Ingest(ctx, "United Kingdom")
	require.NoError(t, err)

	records, err := s.History(ctx, "GB")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, int64(60), records[0].TotalCases)
	require.Equal(t, int64(44), records[0].TotalRecovered)
	require.Equal(t, 6.0, records[0].CasePercent)
}

func TestIngestHistoryWithoutCountry(t *testing.T) {
	source := &fakeSource{series: map[string][]history.Entry{
		"GB": {snapshot("2020-04-01", "1", "1", "1", "1")},
	}}
	p, s := newPipeline(t, source)
	ctx := context.Background()

	_, err := p.IngestHistory(ctx, "GB")
	require.ErrorIs(t, err, ErrPrecondition)
	require.ErrorIs(t, err, store.ErrCountryNotFound)
	require.Equal(t, 0, source.calls)

	records, err := s.History(ctx, "GB")
	require.NoError(t, err)
	require.Len(t, records, 0)
}

func TestIngestUnknownCountry(t *testing.T) {
	p, _ := newPipeline(t, &fakeSource{})
	_, err := p.Ingest(context.Background(), "Atlantis")
	require.ErrorIs(t, err, ErrPrecondition)
	require.ErrorIs(t, err, errUnknown)
}

func TestIngestSkipsMalformedRecords(t *testing.T) {
	source := &fakeSource{series: map[string][]history.Entry{
		"GB": {
			snapshot("2020-04-01", "50", "5", "10", "35"),
			snapshot("2020-04-02", "??", "5", "10", "35"),
			snapshot("2020-04-03", "70", "5", "10", "55"),
		},
	}}
	p, s := newPipeline(t, source)
	ctx := context.Background()

	res, err := p.Ingest(ctx, "United Kingdom")
	require.ErrorIs(t, err, ErrFormat)
	require.Equal(t, 2, res.Written)
	require.Equal(t, 1, res.Rejected)

	records, err := s.History(ctx, "GB")
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestIngestStoresListedName(t *testing.T) {
	p, s := newPipeline(t, &fakeSource{})
	ctx := context.Background()

	res, err := p.Ingest(ctx, "united kingdom")
	require.NoError(t, err)
	require.Equal(t, "United Kingdom", res.Country.Name)

	info, err := s.Country(ctx, "GB")
	require.NoError(t, err)
	require.Equal(t, "United Kingdom", info.Name)
	require.Equal(t, int64(1000), info.Population)
}
