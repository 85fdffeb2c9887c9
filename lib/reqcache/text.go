package reqcache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/net/html/charset"
)

// decodeText transcodes body to UTF-8 using the charset declared by the
// response or the page. Bytes that are still invalid are replaced, so the
// stored string is exactly what a later hit returns.
func decodeText(body []byte, contentType string) string {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return strings.ToValidUTF8(string(body), "\uFFFD")
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return strings.ToValidUTF8(string(body), "\uFFFD")
	}
	return strings.ToValidUTF8(string(decoded), "\uFFFD")
}

// FetchText returns the body of a GET to url, from the cache when present.
func (c *Cache) FetchText(ctx context.Context, url string) (string, error) {
	ctx, span := tracer.Start(ctx, "FetchText")
	defer span.End()
	span.SetAttributes(attribute.String("cache.key", url))

	cached, ok := c.lookup(ctx, url)
	if ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		var text string
		err := json.Unmarshal(cached, &text)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "cached value is not text")
			return "", fmt.Errorf("%w: cached value for %s is not text", ErrFormat, url)
		}
		return text, nil
	}

	res, err := c.get(c.client.R().SetContext(ctx), url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return "", err
	}

	text := decodeText(res.Body(), res.Header().Get("Content-Type"))
	err = c.store(url, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist cache")
		return "", err
	}
	return text, nil
}
