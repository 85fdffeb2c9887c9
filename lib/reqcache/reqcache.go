// Package reqcache is a persistent cache of raw HTTP responses keyed by
// request fingerprint. Every miss is fetched, stored and written through
// to a single JSON file before the caller gets the value back.
package reqcache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("covidtracker/reqcache")
var meter = otel.Meter("covidtracker/reqcache")

var (
	// ErrFetch wraps transport failures and non-2xx responses.
	ErrFetch = errors.New("fetch failed")
	// ErrFormat is returned when a response or a cached value does not
	// have the expected shape.
	ErrFormat = errors.New("unexpected response format")
)

type Cache struct {
	path    string
	client  *resty.Client
	entries map[string]json.RawMessage

	lookups metric.Int64Counter
}

// Load reads the cache file at path. A missing or unreadable file starts
// an empty cache, it is never fatal.
func Load(path string, client *resty.Client) *Cache {
	lookups, err := meter.Int64Counter(
		"reqcache.lookups",
		metric.WithDescription("cache lookups by result"),
	)
	if err != nil {
		slog.Warn("failed to create cache counter", "err", err)
	}

	c := &Cache{
		path:    path,
		client:  client,
		entries: map[string]json.RawMessage{},
		lookups: lookups,
	}

	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c
	}
	if err != nil {
		slog.Warn("failed to read cache file, starting empty", "path", path, "err", err)
		return c
	}

	var entries map[string]json.RawMessage
	err = json.Unmarshal(contents, &entries)
	if err != nil {
		slog.Warn("cache file is corrupt, starting empty", "path", path, "err", err)
		return c
	}
	if entries != nil {
		c.entries = entries
	}
	slog.Debug("loaded cache", "path", path, "entries", len(c.entries))
	return c
}

func (c *Cache) Path() string {
	return c.path
}

func (c *Cache) Len() int {
	return len(c.entries)
}

func (c *Cache) Has(fingerprint string) bool {
	_, ok := c.entries[fingerprint]
	return ok
}

// Keys returns every fingerprint in the cache, sorted.
func (c *Cache) Keys() []string {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of the stored values.
func (c *Cache) Snapshot() map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(c.entries))
	for k, v := range c.entries {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	err := enc.Encode(v)
	if err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Flush rewrites the whole cache file.
func (c *Cache) Flush() error {
	serialized, err := encode(c.entries)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(serialized)
	if err != nil {
		tmp.Close()
		return err
	}
	err = tmp.Close()
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), c.path)
}

// store sets a value and writes the cache through to disk.
func (c *Cache) store(fingerprint string, value any) error {
	serialized, err := encode(value)
	if err != nil {
		return err
	}
	c.entries[fingerprint] = serialized
	err = c.Flush()
	if err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	return nil
}

func (c *Cache) lookup(ctx context.Context, fingerprint string) (json.RawMessage, bool) {
	value, ok := c.entries[fingerprint]
	result := "miss"
	if ok {
		result = "hit"
		slog.InfoContext(ctx, "using cache", "key", fingerprint)
	} else {
		slog.InfoContext(ctx, "fetching", "key", fingerprint)
	}
	if c.lookups != nil {
		c.lookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	}
	return value, ok
}

func (c *Cache) get(req *resty.Request, url string) (*resty.Response, error) {
	res, err := req.Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, url, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: %s: status %s", ErrFetch, url, res.Status())
	}
	return res, nil
}
