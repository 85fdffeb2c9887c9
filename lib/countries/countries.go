// Package countries resolves country names to their listing entry, code
// and population using scraped pages.
package countries

import (
	"context"
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"covidtracker/lib/scrapers/countrycode"
	"covidtracker/lib/scrapers/worldometers"
	"covidtracker/lib/textutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("covidtracker/countries")

var ErrNotFound = errors.New("country not found")

// TextFetcher returns the body of a page, the response cache satisfies it.
type TextFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

type Options struct {
	ListingBaseUrl string
	CodesUrl       string
}

type Directory struct {
	fetcher TextFetcher
	opts    Options
}

func NewDirectory(fetcher TextFetcher, opts Options) Directory {
	if opts.ListingBaseUrl == "" {
		opts.ListingBaseUrl = worldometers.DefaultBaseUrl
	}
	if opts.CodesUrl == "" {
		opts.CodesUrl = countrycode.DefaultUrl
	}
	return Directory{fetcher: fetcher, opts: opts}
}

// ListByLetter returns the countries whose name starts with letter, in
// listing order.
func (d Directory) ListByLetter(ctx context.Context, letter rune) ([]worldometers.ListedCountry, error) {
	ctx, span := tracer.Start(ctx, "ListByLetter")
	defer span.End()
	span.SetAttributes(attribute.String("letter", string(letter)))

	link, err := worldometers.ListingURL(d.opts.ListingBaseUrl, letter)
	if err != nil {
		return nil, err
	}
	page, err := d.fetcher.FetchText(ctx, link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch listing")
		return nil, err
	}
	countries, err := worldometers.ParseListing(page)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse listing")
		return nil, fmt.Errorf("parse %s: %w", link, err)
	}
	return countries, nil
}

// Lookup finds a country in the listing of its first letter.
func (d Directory) Lookup(ctx context.Context, name string) (worldometers.ListedCountry, error) {
	wanted := textutil.NormalizeName(name)
	first, _ := utf8.DecodeRuneInString(wanted)
	if first == utf8.RuneError || !unicode.IsLetter(first) {
		return worldometers.ListedCountry{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	listed, err := d.ListByLetter(ctx, first)
	if err != nil {
		return worldometers.ListedCountry{}, err
	}
	for _, c := range listed {
		if textutil.NormalizeName(c.Name) == wanted {
			return c, nil
		}
	}
	return worldometers.ListedCountry{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

func (d Directory) Population(ctx context.Context, name string) (int64, error) {
	c, err := d.Lookup(ctx, name)
	if err != nil {
		return 0, err
	}
	return c.Population, nil
}

// Code returns the 2-letter code of a country.
func (d Directory) Code(ctx context.Context, name string) (string, error) {
	ctx, span := tracer.Start(ctx, "Code")
	defer span.End()
	span.SetAttributes(attribute.String("country.name", name))

	page, err := d.fetcher.FetchText(ctx, d.opts.CodesUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch codes")
		return "", err
	}
	rows, err := countrycode.ParseCodes(page)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse codes")
		return "", fmt.Errorf("parse %s: %w", d.opts.CodesUrl, err)
	}
	row, err := countrycode.Match(rows, name)
	if errors.Is(err, countrycode.ErrNotFound) {
		return "", fmt.Errorf("%w: no code for %q", ErrNotFound, name)
	}
	if err != nil {
		return "", err
	}
	return row.Code, nil
}
