package multi

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zeevl/raven-js/pkg/raven"
)

// mockTransport records sends and can be scripted to fail.
type mockTransport struct {
	mu       sync.Mutex
	requests []raven.Request
	sendErr  error
	closeErr error
	closed   bool
}

func (m *mockTransport) Send(ctx context.Context, req raven.Request, done func(error)) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	err := m.sendErr
	m.mu.Unlock()
	if done != nil {
		done(err)
	}
}

func (m *mockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.closeErr
}

func (m *mockTransport) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func waitDone(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("completion callback never fired")
		return nil
	}
}

func TestMulti_FansOutToAll(t *testing.T) {
	a := &mockTransport{}
	b := &mockTransport{}
	transport := New(a, b)

	ch := make(chan error, 1)
	transport.Send(context.Background(), raven.Request{URL: "http://x/1"}, func(err error) { ch <- err })

	if err := waitDone(t, ch); err != nil {
		t.Errorf("done(err) = %v, want nil", err)
	}
	if a.count() != 1 || b.count() != 1 {
		t.Errorf("sends = %d, %d, want 1, 1", a.count(), b.count())
	}
}

func TestMulti_JoinsErrors(t *testing.T) {
	errA := errors.New("a failed")
	a := &mockTransport{sendErr: errA}
	b := &mockTransport{}
	transport := New(a, b)

	ch := make(chan error, 1)
	transport.Send(context.Background(), raven.Request{}, func(err error) { ch <- err })

	err := waitDone(t, ch)
	if !errors.Is(err, errA) {
		t.Errorf("joined error %v does not wrap %v", err, errA)
	}
	if b.count() != 1 {
		t.Error("healthy transport must still receive the request")
	}
}

func TestMulti_EmptyCompletesImmediately(t *testing.T) {
	transport := New()

	var completed bool
	transport.Send(context.Background(), raven.Request{}, func(err error) {
		if err != nil {
			t.Errorf("done(err) = %v, want nil", err)
		}
		completed = true
	})

	if !completed {
		t.Error("empty fan-out should complete synchronously")
	}
}

func TestMulti_CloseClosesAll(t *testing.T) {
	errClose := errors.New("close failed")
	a := &mockTransport{closeErr: errClose}
	b := &mockTransport{}
	transport := New(a, b)

	err := transport.Close()
	if !errors.Is(err, errClose) {
		t.Errorf("Close() = %v, want to wrap %v", err, errClose)
	}
	if !a.closed || !b.closed {
		t.Error("all transports must be closed")
	}
}
