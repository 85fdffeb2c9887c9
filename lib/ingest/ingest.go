// Package ingest pulls a country's history from the metrics provider and
// writes it to the store.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"covidtracker/lib/history"
	"covidtracker/lib/scrapers/worldometers"
	"covidtracker/lib/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("covidtracker/ingest")

var (
	// ErrPrecondition is returned when a country's population is unknown,
	// either to the directory or to the store.
	ErrPrecondition = errors.New("precondition failed")
	// ErrFormat is returned for a snapshot field that is not a count.
	ErrFormat = errors.New("malformed record")
)

// Directory resolves country names to their code and to the listing
// entry holding the canonical name and population.
type Directory interface {
	Code(ctx context.Context, name string) (string, error)
	Lookup(ctx context.Context, name string) (worldometers.ListedCountry, error)
}

// HistorySource returns the deduplicated, oldest-first series of a
// country.
type HistorySource interface {
	History(ctx context.Context, code string) ([]history.Entry, error)
}

type Pipeline struct {
	directory Directory
	source    HistorySource
	store     *store.Store
}

func NewPipeline(directory Directory, source HistorySource, s *store.Store) Pipeline {
	return Pipeline{
		directory: directory,
		source:    source,
		store:     s,
	}
}

type Result struct {
	Country  store.CountryInfo
	Written  int
	Rejected int
}

// Ingest stores a country's metadata followed by its history.
//
// A record with a malformed field is skipped, the remaining records are
// still written and every record error is returned joined.
func (p Pipeline) Ingest(ctx context.Context, name string) (Result, error) {
	ctx, span := tracer.Start(ctx, "Ingest")
	defer span.End()
	span.SetAttributes(attribute.String("country.name", name))

	info, err := p.IngestCountry(ctx, name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to ingest country")
		return Result{}, err
	}

	res, err := p.IngestHistory(ctx, info.Code)
	res.Country = info
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to ingest history")
	}
	return res, err
}

// IngestCountry resolves a country through the directory and upserts it.
func (p Pipeline) IngestCountry(ctx context.Context, name string) (store.CountryInfo, error) {
	code, err := p.directory.Code(ctx, name)
	if err != nil {
		return store.CountryInfo{}, fmt.Errorf("%w: code of %q: %w", ErrPrecondition, name, err)
	}
	listed, err := p.directory.Lookup(ctx, name)
	if err != nil {
		return store.CountryInfo{}, fmt.Errorf("%w: population of %q: %w", ErrPrecondition, name, err)
	}
	population := listed.Population
	if population <= 0 {
		return store.CountryInfo{}, fmt.Errorf("%w: population of %q is %d", ErrPrecondition, name, population)
	}

	// the listing spelling is stored rather than what the user typed
	info := store.CountryInfo{Code: code, Name: listed.Name, Population: population}
	inserted, err := p.store.UpsertCountry(ctx, info)
	if err != nil {
		return store.CountryInfo{}, err
	}
	slog.InfoContext(
		ctx, "stored country",
		"code", code,
		"population", population,
		"inserted", inserted,
	)
	return info, nil
}

// IngestHistory fetches and upserts the history of a country that is
// already in the store.
func (p Pipeline) IngestHistory(ctx context.Context, code string) (Result, error) {
	ctx, span := tracer.Start(ctx, "IngestHistory")
	defer span.End()
	span.SetAttributes(attribute.String("country.code", code))

	info, err := p.store.Country(ctx, code)
	if errors.Is(err, store.ErrCountryNotFound) {
		return Result{}, fmt.Errorf("%w: %w", ErrPrecondition, err)
	}
	if err != nil {
		return Result{}, err
	}

	entries, err := p.source.History(ctx, code)
	if err != nil {
		return Result{Country: info}, err
	}

	res := Result{Country: info}
	var recordErrs []error
	for _, e := range entries {
		record, err := BuildDaily(code, e, info.Population)
		if err != nil {
			slog.WarnContext(ctx, "skipping record", "code", code, "date", e.RecordDate, "err", err)
			recordErrs = append(recordErrs, err)
			res.Rejected++
			continue
		}
		err = p.store.UpsertDaily(ctx, record)
		if err != nil {
			return res, err
		}
		res.Written++
	}

	span.SetAttributes(
		attribute.Int("ingest.written", res.Written),
		attribute.Int("ingest.rejected", res.Rejected),
	)
	slog.InfoContext(ctx, "stored history", "code", code, "written", res.Written, "rejected", res.Rejected)
	return res, errors.Join(recordErrs...)
}
