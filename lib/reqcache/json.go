package reqcache

import (
	"context"
	"encoding/json"
	"fmt"

	"covidtracker/lib/history"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Credential is a static API key sent as a request header.
type Credential struct {
	Header string
	Key    string
}

// JSONRequest describes an authenticated GET against a JSON API where Key
// identifies the entity being requested.
type JSONRequest struct {
	URL string
	// Key is sent as the QueryParam query parameter and is appended to URL
	// to form the fingerprint.
	Key        string
	QueryParam string
	Credential Credential
	// Headers are sent as-is and are not part of the fingerprint.
	Headers map[string]string
}

func (r JSONRequest) Fingerprint() string {
	return r.URL + r.Key
}

func (c *Cache) fetchJSONBody(ctx context.Context, r JSONRequest) ([]byte, error) {
	req := c.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeaders(r.Headers)
	if r.QueryParam != "" {
		req.SetQueryParam(r.QueryParam, r.Key)
	}
	if r.Credential.Header != "" {
		req.SetHeader(r.Credential.Header, r.Credential.Key)
	}

	res, err := c.get(req, r.URL)
	if err != nil {
		return nil, err
	}
	body := res.Body()
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: %s returned invalid json", ErrFormat, r.URL)
	}
	return body, nil
}

// FetchJSON returns the JSON payload of r, from the cache when present.
func (c *Cache) FetchJSON(ctx context.Context, r JSONRequest) (json.RawMessage, error) {
	fingerprint := r.Fingerprint()
	ctx, span := tracer.Start(ctx, "FetchJSON")
	defer span.End()
	span.SetAttributes(attribute.String("cache.key", fingerprint))

	cached, ok := c.lookup(ctx, fingerprint)
	if ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, nil
	}

	body, err := c.fetchJSONBody(ctx, r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return nil, err
	}

	payload := json.RawMessage(body)
	err = c.store(fingerprint, payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist cache")
		return nil, err
	}
	return c.entries[fingerprint], nil
}

// SecondValue returns the second top-level value of a JSON object, in
// document order. The provider wraps its payload as {"<meta>": ...,
// "<data>": [...]} with varying key names.
func SecondValue(payload []byte) (gjson.Result, error) {
	parsed := gjson.ParseBytes(payload)
	if !parsed.IsObject() {
		return gjson.Result{}, fmt.Errorf("%w: payload is not an object", ErrFormat)
	}

	var second gjson.Result
	found := false
	index := 0
	parsed.ForEach(func(_, value gjson.Result) bool {
		if index == 1 {
			second = value
			found = true
			return false
		}
		index++
		return true
	})
	if !found {
		return gjson.Result{}, fmt.Errorf("%w: payload has fewer than two values", ErrFormat)
	}
	return second, nil
}

// FetchHistory returns the deduplicated, oldest-first daily series of r.
// The normalized series is what gets cached, so hits are returned as
// stored.
func (c *Cache) FetchHistory(ctx context.Context, r JSONRequest) ([]history.Entry, error) {
	fingerprint := r.Fingerprint()
	ctx, span := tracer.Start(ctx, "FetchHistory")
	defer span.End()
	span.SetAttributes(attribute.String("cache.key", fingerprint))

	cached, ok := c.lookup(ctx, fingerprint)
	if ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		var entries []history.Entry
		err := json.Unmarshal(cached, &entries)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "cached value is not a history")
			return nil, fmt.Errorf("%w: cached value for %s is not a history: %w", ErrFormat, fingerprint, err)
		}
		return entries, nil
	}

	body, err := c.fetchJSONBody(ctx, r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return nil, err
	}

	entries, err := decodeHistory(body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode history")
		return nil, err
	}
	normalized := history.Normalize(entries)
	span.SetAttributes(
		attribute.Int("history.raw", len(entries)),
		attribute.Int("history.normalized", len(normalized)),
	)

	err = c.store(fingerprint, normalized)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist cache")
		return nil, err
	}
	return normalized, nil
}

func decodeHistory(body []byte) ([]history.Entry, error) {
	series, err := SecondValue(body)
	if err != nil {
		return nil, err
	}
	if !series.IsArray() {
		return nil, fmt.Errorf("%w: history is not a list", ErrFormat)
	}

	var entries []history.Entry
	err = json.Unmarshal([]byte(series.Raw), &entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return entries, nil
}
