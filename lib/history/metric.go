package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"covidtracker/lib/textutil"
)

var (
	// ErrUnavailable is returned by Metric.Int for values the source marked
	// as not available.
	ErrUnavailable = errors.New("metric not available")
	// ErrMalformed is returned by Metric.Int for values that are neither
	// empty, a sentinel nor a number.
	ErrMalformed = errors.New("malformed metric")
)

type MetricKind int

const (
	MetricEmpty MetricKind = iota
	MetricKnown
	MetricUnavailable
	MetricMalformed
)

func (k MetricKind) String() string {
	switch k {
	case MetricEmpty:
		return "empty"
	case MetricKnown:
		return "known"
	case MetricUnavailable:
		return "unavailable"
	case MetricMalformed:
		return "malformed"
	}
	return fmt.Sprintf("MetricKind(%d)", int(k))
}

var unavailableSentinels = []string{"not available", "n/a"}

// Metric is a daily count as published by the metrics provider. Providers
// send display strings ("1,234"), empty strings or a sentinel, so the
// value is classified once when decoded.
type Metric struct {
	kind  MetricKind
	value int64
	// raw is the value as received, written back out when encoding
	raw string
}

func Known(n int64) Metric {
	return Metric{kind: MetricKnown, value: n, raw: strconv.FormatInt(n, 10)}
}

func Unavailable() Metric {
	return Metric{kind: MetricUnavailable, raw: "not available"}
}

func Empty() Metric {
	return Metric{kind: MetricEmpty}
}

// ParseMetric classifies a display string.
func ParseMetric(raw string) Metric {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Metric{kind: MetricEmpty, raw: raw}
	}
	for _, s := range unavailableSentinels {
		if strings.EqualFold(trimmed, s) {
			return Metric{kind: MetricUnavailable, raw: raw}
		}
	}
	n, err := textutil.ParseCount(trimmed)
	if err != nil {
		return Metric{kind: MetricMalformed, raw: raw}
	}
	return Metric{kind: MetricKnown, value: n, raw: raw}
}

func (m Metric) Kind() MetricKind {
	return m.kind
}

func (m Metric) Raw() string {
	return m.raw
}

// Int returns the count, treating an empty value as 0.
func (m Metric) Int() (int64, error) {
	switch m.kind {
	case MetricKnown:
		return m.value, nil
	case MetricEmpty:
		return 0, nil
	case MetricUnavailable:
		return 0, ErrUnavailable
	default:
		return 0, fmt.Errorf("%w: %q", ErrMalformed, m.raw)
	}
}

func (m Metric) String() string {
	if m.kind == MetricKnown {
		return strconv.FormatInt(m.value, 10)
	}
	return m.kind.String()
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Empty()
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		err := json.Unmarshal(data, &s)
		if err != nil {
			return err
		}
		*m = ParseMetric(s)
		return nil
	}

	var n json.Number
	err := json.Unmarshal(data, &n)
	if err != nil {
		return fmt.Errorf("metric must be a string, number or null: %w", err)
	}
	*m = ParseMetric(n.String())
	return nil
}

func (m Metric) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.raw)
}
