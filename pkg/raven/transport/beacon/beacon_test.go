package beacon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/zeevl/raven-js/pkg/raven"
)

// collector is a test HTTP endpoint recording every request it receives.
type collector struct {
	mu       sync.Mutex
	requests []*url.URL
	agents   []string
	status   int
}

func newCollector(status int) (*collector, *httptest.Server) {
	c := &collector{status: status}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		c.requests = append(c.requests, r.URL)
		c.agents = append(c.agents, r.Header.Get("User-Agent"))
		c.mu.Unlock()
		w.WriteHeader(c.status)
	}))
	return c, srv
}

func (c *collector) last() *url.URL {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.requests) == 0 {
		return nil
	}
	return c.requests[len(c.requests)-1]
}

func sendAndWait(t *testing.T, transport raven.Transport, req raven.Request) error {
	t.Helper()
	ch := make(chan error, 1)
	transport.Send(context.Background(), req, func(err error) { ch <- err })
	select {
	case err := <-ch:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("completion callback never fired")
		return nil
	}
}

func TestBeacon_SendsGet(t *testing.T) {
	coll, srv := newCollector(http.StatusOK)
	defer srv.Close()

	transport := New()
	defer transport.Close()

	sent := srv.URL + "/api/1/store/?version=6&key=pk&data=%7B%7D"
	if err := sendAndWait(t, transport, raven.Request{URL: sent}); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	got := coll.last()
	if got == nil {
		t.Fatal("collector received nothing")
	}
	if got.Path != "/api/1/store/" {
		t.Errorf("path = %q, want /api/1/store/", got.Path)
	}
	q := got.Query()
	if q.Get("version") != "6" || q.Get("key") != "pk" {
		t.Errorf("auth query = %q", got.RawQuery)
	}
	if q.Get("data") != "{}" {
		t.Errorf("data param = %q, want {}", q.Get("data"))
	}
	coll.mu.Lock()
	agent := coll.agents[0]
	coll.mu.Unlock()
	if agent != "raven-go" {
		t.Errorf("User-Agent = %q, want raven-go", agent)
	}
}

func TestBeacon_ErrorStatusSurfaced(t *testing.T) {
	_, srv := newCollector(http.StatusInternalServerError)
	defer srv.Close()

	transport := New()
	defer transport.Close()

	err := sendAndWait(t, transport, raven.Request{URL: srv.URL + "/api/1/store/"})
	if err == nil {
		t.Fatal("5xx status must complete with an error")
	}
}

func TestBeacon_UnreachableCollector(t *testing.T) {
	_, srv := newCollector(http.StatusOK)
	srv.Close() // nothing listening anymore

	transport := New()
	defer transport.Close()

	err := sendAndWait(t, transport, raven.Request{URL: srv.URL + "/api/1/store/"})
	if err == nil {
		t.Fatal("connection failure must complete with an error")
	}
}
