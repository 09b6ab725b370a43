// Package beacon sends reports as one-way GET requests whose response
// bodies are discarded, the network equivalent of a single-pixel image
// beacon. There is no retry, no timeout, and no backoff: a failed attempt
// is lost, and completion is reported for observation only.
package beacon

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/zeevl/raven-js/pkg/raven"
)

// Option configures the beacon transport.
type Option func(*config)

type config struct {
	http *resty.Client
}

// WithHTTPClient substitutes the underlying resty client, for callers that
// need proxies or custom TLS configuration.
func WithHTTPClient(client *resty.Client) Option {
	return func(c *config) {
		c.http = client
	}
}

type beacon struct {
	http *resty.Client
}

// New creates the beacon transport.
func New(opts ...Option) raven.Transport {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.http == nil {
		cfg.http = resty.New()
	}
	cfg.http.SetDoNotParseResponse(true)
	cfg.http.SetHeader("User-Agent", "raven-go")

	return &beacon{http: cfg.http}
}

// Send issues the request from a goroutine and reports completion through
// done. Any HTTP response counts as load-equivalent completion; a
// collector-side error status is surfaced as a failure so observers see
// it, but the response itself is never read.
func (b *beacon) Send(ctx context.Context, req raven.Request, done func(error)) {
	go func() {
		resp, err := b.http.R().SetContext(ctx).Get(req.URL)
		if err == nil {
			if body := resp.RawBody(); body != nil {
				_ = body.Close()
			}
			if resp.StatusCode() >= 400 {
				err = fmt.Errorf("collector responded %s", resp.Status())
			}
		}
		if done != nil {
			done(err)
		}
	}()
}

func (b *beacon) Close() error {
	return nil
}
