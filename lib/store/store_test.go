package store_test

import (
	"context"
	"testing"

	"covidtracker/lib/store"
	"covidtracker/lib/testutil"

	"github.com/stretchr/testify/require"
)

func TestInitIsIdempotent(t *testing.T) {
	s := testutil.SetupStore(t)
	require.NoError(t, s.Init(context.Background()))
}

func TestUpsertCountry(t *testing.T) {
	s := testutil.SetupStore(t)
	ctx := context.Background()

	inserted, err := s.UpsertCountry(ctx, store.CountryInfo{Code: "US", Name: "United States", Population: 100})
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = s.UpsertCountry(ctx, store.CountryInfo{Code: "US", Name: "USA", Population: 200})
	require.NoError(t, err)
	require.False(t, inserted)

	info, err := s.Country(ctx, "US")
	require.NoError(t, err)
	require.Equal(t, store.CountryInfo{Code: "US", Name: "United States", Population: 200}, info)

	population, err := s.Population(ctx, "US")
	require.NoError(t, err)
	require.Equal(t, int64(200), population)

	countries, err := s.Countries(ctx)
	require.NoError(t, err)
	require.Len(t, countries, 1)
}

func TestPopulationMissing(t *testing.T) {
	s := testutil.SetupStore(t)
	_, err := s.Population(context.Background(), "ZZ")
	require.ErrorIs(t, err, store.ErrCountryNotFound)
}

func TestUpsertDaily(t *testing.T) {
	s := testutil.SetupStore(t)
	ctx := context.Background()

	_, err := s.UpsertCountry(ctx, store.CountryInfo{Code: "GB", Name: "United Kingdom", Population: 1000})
	require.NoError(t, err)

	first := store.DailyRecord{
		Code: "GB", Date: "2020-04-01",
		TotalCases: 50, TotalDeaths: 5, ActiveCases: 10, TotalRecovered: 35,
		CasePercent: 5, DeathPercent: 0.5, ActivePercent: 1,
	}
	require.NoError(t, s.UpsertDaily(ctx, first))

	second := first
	second.TotalCases = 60
	second.NewCases = 10
	second.TotalRecovered = 45
	second.CasePercent = 6
	require.NoError(t, s.UpsertDaily(ctx, second))

	other := first
	other.Date = "2020-03-31"
	require.NoError(t, s.UpsertDaily(ctx, other))

	records, err := s.History(ctx, "GB")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "2020-03-31", records[0].Date)
	require.Equal(t, second, records[1])
}

func TestUpsertDailyRequiresCountry(t *testing.T) {
	s := testutil.SetupStore(t)
	err := s.UpsertDaily(context.Background(), store.DailyRecord{Code: "ZZ", Date: "2020-01-01"})
	require.Error(t, err)

	records, err := s.History(context.Background(), "ZZ")
	require.NoError(t, err)
	require.Len(t, records, 0)
}
