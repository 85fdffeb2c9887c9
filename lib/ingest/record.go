package ingest

import (
	"errors"
	"fmt"

	"covidtracker/lib/history"
	"covidtracker/lib/store"
)

func percent(count, population int64) float64 {
	return float64(count) / float64(population) * 100
}

// count coerces a metric that has no fallback rule: empty and unavailable
// values count as 0.
func count(field string, m history.Metric) (int64, error) {
	n, err := m.Int()
	if errors.Is(err, history.ErrUnavailable) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrFormat, field, err)
	}
	return n, nil
}

// BuildDaily turns a provider snapshot into a typed record. Percentages
// use the population passed in, they are not recomputed if it changes
// later.
func BuildDaily(code string, e history.Entry, population int64) (store.DailyRecord, error) {
	if population <= 0 {
		return store.DailyRecord{}, fmt.Errorf("%w: population of %s is %d", ErrPrecondition, code, population)
	}

	r := store.DailyRecord{
		Code: code,
		Date: e.Day(),
	}

	var errs []error
	for _, f := range []struct {
		name   string
		metric history.Metric
		dest   *int64
	}{
		{"total_cases", e.TotalCases, &r.TotalCases},
		{"new_cases", e.NewCases, &r.NewCases},
		{"active_cases", e.ActiveCases, &r.ActiveCases},
		{"total_deaths", e.TotalDeaths, &r.TotalDeaths},
		{"new_deaths", e.NewDeaths, &r.NewDeaths},
	} {
		n, err := count(f.name, f.metric)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*f.dest = n
	}

	recovered, err := e.TotalRecovered.Int()
	switch {
	case errors.Is(err, history.ErrUnavailable):
		// may go negative when the source is inconsistent, kept as-is
		recovered = r.TotalCases - r.TotalDeaths - r.ActiveCases
	case err != nil:
		errs = append(errs, fmt.Errorf("%w: total_recovered: %w", ErrFormat, err))
	}
	r.TotalRecovered = recovered

	if len(errs) > 0 {
		return store.DailyRecord{}, fmt.Errorf("record %s %s: %w", code, e.RecordDate, errors.Join(errs...))
	}

	r.CasePercent = percent(r.TotalCases, population)
	r.DeathPercent = percent(r.TotalDeaths, population)
	r.ActivePercent = percent(r.ActiveCases, population)
	return r, nil
}
