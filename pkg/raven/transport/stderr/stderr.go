// Package stderr provides a transport that prints outgoing requests to
// stderr in human-readable form instead of sending them. Useful for
// development and for inspecting exactly what would go over the wire.
package stderr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/zeevl/raven-js/pkg/raven"
)

// Option configures the stderr transport.
type Option func(*config)

type config struct {
	verbose bool
	out     io.Writer
}

// WithVerbose prints the full indented payload body, not just the target.
func WithVerbose() Option {
	return func(c *config) {
		c.verbose = true
	}
}

// WithWriter redirects output, mostly for tests.
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		c.out = w
	}
}

type stderrTransport struct {
	verbose bool
	out     io.Writer
}

// New creates the printing transport.
func New(opts ...Option) raven.Transport {
	cfg := &config{out: os.Stderr}
	for _, opt := range opts {
		opt(cfg)
	}
	return &stderrTransport{verbose: cfg.verbose, out: cfg.out}
}

// Send prints the request and completes immediately.
func (t *stderrTransport) Send(ctx context.Context, req raven.Request, done func(error)) {
	fmt.Fprintf(t.out, "[RAVEN] -> %s%s (%d bytes)\n", req.Endpoint, req.Auth, len(req.Body))

	if t.verbose {
		var indented map[string]any
		if err := json.Unmarshal(req.Body, &indented); err == nil {
			pretty, err := json.MarshalIndent(indented, "        ", "  ")
			if err == nil {
				fmt.Fprintf(t.out, "        %s\n", pretty)
			}
		}
	}

	if done != nil {
		done(nil)
	}
}

func (t *stderrTransport) Close() error {
	return nil
}
