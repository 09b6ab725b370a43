// Package multi provides a transport that fans out to several transports.
// Every transport receives every request; completion fires once, after all
// of them have reported, with their errors joined.
package multi

import (
	"context"
	"errors"
	"sync"

	"github.com/zeevl/raven-js/pkg/raven"
)

type multiTransport struct {
	transports []raven.Transport
}

// New creates a fan-out transport over the given transports.
func New(transports ...raven.Transport) raven.Transport {
	return &multiTransport{transports: transports}
}

// Send hands the request to every transport and aggregates completions.
func (m *multiTransport) Send(ctx context.Context, req raven.Request, done func(error)) {
	if len(m.transports) == 0 {
		if done != nil {
			done(nil)
		}
		return
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, t := range m.transports {
		wg.Add(1)
		t.Send(ctx, req, func(err error) {
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			wg.Done()
		})
	}

	go func() {
		wg.Wait()
		if done != nil {
			mu.Lock()
			err := errors.Join(errs...)
			mu.Unlock()
			done(err)
		}
	}()
}

// Close closes all transports, collecting any errors.
func (m *multiTransport) Close() error {
	var errs []error
	for _, t := range m.transports {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
