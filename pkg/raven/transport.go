// transport.go defines the outbound channel payloads are handed to.

package raven

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// Request describes one outgoing report: the collector endpoint, the fixed
// auth query string, the JSON-encoded payload, and the fully assembled
// send URL.
type Request struct {
	Endpoint string
	Auth     string
	Body     []byte
	URL      string
}

// Transport delivers encoded payloads to the collector. Send must not
// block the caller; completion is observational only and reported through
// done (nil on load-equivalent completion). Implementations never retry —
// a failed attempt is simply lost. done may be nil.
//
// Implementations must be safe for concurrent use.
type Transport interface {
	Send(ctx context.Context, req Request, done func(error))
	Close() error
}

// buildRequest encodes the payload and assembles the send URL:
// endpoint + auth + "&data=" + urlencode(json).
func buildRequest(endpoint, auth string, payload *Payload) (Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Request{}, fmt.Errorf("encode payload: %w", err)
	}
	return Request{
		Endpoint: endpoint,
		Auth:     auth,
		Body:     body,
		URL:      endpoint + auth + "&data=" + url.QueryEscape(string(body)),
	}, nil
}
