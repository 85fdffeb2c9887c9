package restyutil

import (
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type ClientOptions struct {
	Timeout time.Duration
	// UserAgent defaults to DefaultUserAgent.
	UserAgent string
	// CloudflareBypass wraps the transport so scraped pages behind
	// cloudflare's browser check can still be fetched.
	CloudflareBypass bool
	// Output receives request/response dumps when debug logging is
	// enabled, it may be nil.
	Output InstrumentOutput
}

// NewClient returns an instrumented resty client.
func NewClient(opts ClientOptions) *resty.Client {
	client := resty.New()

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}
	client.SetTimeout(timeout)

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	client.SetHeader("user-agent", userAgent)

	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	InstrumentClient(client, otel.Tracer("covidtracker/http"), opts.Output)
	return client
}
