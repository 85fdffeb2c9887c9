// Package history models the daily snapshots published by the metrics
// provider and cleans them up before they are cached or stored.
package history

// Entry is one daily snapshot as published by the provider.
type Entry struct {
	CountryName     string `json:"country_name,omitempty"`
	RecordDate      string `json:"record_date"`
	TotalCases      Metric `json:"total_cases"`
	NewCases        Metric `json:"new_cases"`
	ActiveCases     Metric `json:"active_cases"`
	TotalDeaths     Metric `json:"total_deaths"`
	NewDeaths       Metric `json:"new_deaths"`
	TotalRecovered  Metric `json:"total_recovered"`
	SeriousCritical Metric `json:"serious_critical"`
}

const dayLength = len("2006-01-02")

// TruncateDay returns the calendar date prefix of a provider timestamp
// ("2020-04-10 07:00:02.123" -> "2020-04-10").
func TruncateDay(recordDate string) string {
	if len(recordDate) <= dayLength {
		return recordDate
	}
	return recordDate[:dayLength]
}

func (e Entry) Day() string {
	return TruncateDay(e.RecordDate)
}

// Normalize collapses same-day snapshots of a newest-first series and
// returns it oldest-first.
//
// The series is scanned from its oldest entry and an entry is kept only
// when its day differs from the last kept entry, so the first snapshot
// reached for each day wins (the last one for that day in the input
// newest-first order). The scan order is the output order.
func Normalize(newestFirst []Entry) []Entry {
	kept := make([]Entry, 0, len(newestFirst))
	lastDay := ""
	for i := len(newestFirst) - 1; i >= 0; i-- {
		entry := newestFirst[i]
		day := entry.Day()
		if len(kept) > 0 && day == lastDay {
			continue
		}
		kept = append(kept, entry)
		lastDay = day
	}
	return kept
}
