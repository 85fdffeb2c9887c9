// Package chart renders a country's stored history as a standalone HTML
// line chart.
package chart

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"covidtracker/lib/store"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

type Metric string

const (
	TotalCases     Metric = "cases"
	CasePercent    Metric = "case-percent"
	TotalDeaths    Metric = "deaths"
	DeathPercent   Metric = "death-percent"
	ActiveCases    Metric = "active"
	ActivePercent  Metric = "active-percent"
	TotalRecovered Metric = "recovered"
)

var labels = map[Metric]string{
	TotalCases:     "Total cases",
	CasePercent:    "Total cases vs population (%)",
	TotalDeaths:    "Total deaths",
	DeathPercent:   "Total deaths vs population (%)",
	ActiveCases:    "Active cases",
	ActivePercent:  "Active cases vs population (%)",
	TotalRecovered: "Total recovered",
}

// Metrics lists every metric in menu order.
var Metrics = []Metric{
	TotalCases,
	CasePercent,
	TotalDeaths,
	DeathPercent,
	ActiveCases,
	ActivePercent,
	TotalRecovered,
}

func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := labels[m]; !ok {
		names := make([]string, 0, len(labels))
		for k := range labels {
			names = append(names, string(k))
		}
		sort.Strings(names)
		return "", fmt.Errorf("unknown metric %q, expected one of %s", s, strings.Join(names, ", "))
	}
	return m, nil
}

func (m Metric) Label() string {
	return labels[m]
}

func (m Metric) Value(r store.DailyRecord) float64 {
	switch m {
	case TotalCases:
		return float64(r.TotalCases)
	case CasePercent:
		return r.CasePercent
	case TotalDeaths:
		return float64(r.TotalDeaths)
	case DeathPercent:
		return r.DeathPercent
	case ActiveCases:
		return float64(r.ActiveCases)
	case ActivePercent:
		return r.ActivePercent
	case TotalRecovered:
		return float64(r.TotalRecovered)
	}
	return 0
}

// Render writes a page with a single line-and-markers series of metric
// over the records, which are expected oldest first.
func Render(w io.Writer, country string, metric Metric, records []store.DailyRecord) error {
	if metric.Label() == "" {
		return fmt.Errorf("unknown metric %q", metric)
	}

	dates := make([]string, len(records))
	points := make([]opts.LineData, len(records))
	for i, r := range records {
		dates[i] = r.Date
		points[i] = opts.LineData{Value: metric.Value(r)}
	}

	title := fmt.Sprintf("%s: %s", country, metric.Label())
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
	)
	line.SetXAxis(dates).
		AddSeries(metric.Label(), points).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: true}))

	return line.Render(w)
}
