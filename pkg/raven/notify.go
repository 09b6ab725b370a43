// notify.go implements the typed notification bus observers subscribe to.

package raven

import "sync"

// NotificationKind names an observable moment in the pipeline.
type NotificationKind string

const (
	// NoteHandle fires when a report from an installed source has been
	// processed, whether or not it was accepted.
	NoteHandle NotificationKind = "raven.Handle"

	// NoteSuccess and NoteFailure fire on transport completion. Neither
	// affects capture state; the timeline was cleared before the request
	// was issued.
	NoteSuccess NotificationKind = "raven.Success"
	NoteFailure NotificationKind = "raven.Failure"
)

// Notification carries the data observed at a pipeline moment. Report is
// set for raven.Handle; Request for raven.Success and raven.Failure; Err
// for raven.Failure only.
type Notification struct {
	Kind    NotificationKind
	Report  *RawReport
	Request *Request
	Err     error
}

// notifier is a minimal observer registry keyed by notification kind.
type notifier struct {
	mu        sync.Mutex
	seq       int
	listeners map[NotificationKind]map[int]func(Notification)
}

// subscribe registers fn for a kind and returns its cancel function.
func (n *notifier) subscribe(kind NotificationKind, fn func(Notification)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.listeners == nil {
		n.listeners = make(map[NotificationKind]map[int]func(Notification))
	}
	if n.listeners[kind] == nil {
		n.listeners[kind] = make(map[int]func(Notification))
	}
	n.seq++
	id := n.seq
	n.listeners[kind][id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.listeners[kind], id)
	}
}

// emit dispatches synchronously. A panicking listener never takes the
// pipeline down with it.
func (n *notifier) emit(note Notification) {
	n.mu.Lock()
	fns := make([]func(Notification), 0, len(n.listeners[note.Kind]))
	for _, fn := range n.listeners[note.Kind] {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		func() {
			defer func() { _ = recover() }()
			fn(note)
		}()
	}
}
