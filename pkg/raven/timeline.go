// timeline.go holds the ordered buffer of event actions awaiting flush.

package raven

import "time"

// ActionKind discriminates timeline actions.
type ActionKind string

const (
	ActionException   ActionKind = "exception"
	ActionMessage     ActionKind = "message"
	ActionHTTPRequest ActionKind = "http_request"
	ActionCustom      ActionKind = "custom"
)

// TimelineAction is one pending event. Which fields are set depends on
// Kind; every action carries a timestamp.
//
// For exceptions, Frames are stored oldest-first regardless of the order
// the stack source supplied them in.
type TimelineAction struct {
	Kind      ActionKind `json:"type"`
	Timestamp time.Time  `json:"timestamp"`

	// exception
	Type    string  `json:"exception_type,omitempty"`
	Value   string  `json:"value,omitempty"`
	Culprit string  `json:"culprit,omitempty"`
	Label   string  `json:"label,omitempty"`
	Frames  []Frame `json:"frames,omitempty"`

	// message
	Message string `json:"message,omitempty"`

	// http_request
	URL     string            `json:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`

	// custom
	Data map[string]any `json:"data,omitempty"`
}

// timeline is an append-only action buffer. Clearing is whole-buffer only;
// individual actions are never removed. Callers hold the client mutex.
type timeline struct {
	actions []TimelineAction
}

// append adds an action, stamping the current time if none is set.
func (t *timeline) append(a TimelineAction) {
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}
	t.actions = append(t.actions, a)
}

// drain returns all pending actions in insertion order and clears the
// buffer in the same step.
func (t *timeline) drain() []TimelineAction {
	actions := t.actions
	t.actions = nil
	return actions
}

func (t *timeline) reset() {
	t.actions = nil
}

func (t *timeline) len() int {
	return len(t.actions)
}
