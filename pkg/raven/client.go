// client.go ties configuration, report processing, and capture together.

package raven

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// ReportSource is the upstream stack-trace source, treated as a black box:
// anything able to hand the client raw reports of observed exceptions.
// Install subscribes the client to it.
type ReportSource interface {
	Subscribe(handler func(RawReport))
}

// RawReport is an observed exception as supplied by a stack source.
// Stack is ordered newest-first.
type RawReport struct {
	Name    string
	Message string
	URL     string
	Line    int
	Stack   []RawFrame
}

// EventOptions override payload fields for a single capture. Tags and
// Extra win over their configured counterparts on key collision.
type EventOptions struct {
	EventID string
	Logger  string
	Site    string
	Culprit string
	Message string
	Tags    map[string]string
	Extra   map[string]any

	// Callback observes the filtering outcome of report processing:
	// dropped is true when the event was filtered, false when accepted.
	Callback func(dropped bool)
}

var defaultLog = log.New(os.Stderr, "raven: ", log.LstdFlags)

// Client captures, filters, and ships error events. All shared state is
// guarded by one mutex, so a single client is safe to use from multiple
// goroutines.
type Client struct {
	mu          sync.Mutex
	config      Config
	dsnString   string
	dsn         *DSN
	endpoint    string
	authQuery   string
	timeline    timeline
	user        map[string]any
	lastError   error
	lastEventID string

	notifier notifier
}

// New parses the collector address and builds a configured client.
func New(dsn string, opts ...Option) (*Client, error) {
	c := &Client{config: defaultConfig()}
	if err := c.Configure(dsn, opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// Configure (re)parses the collector address and merges opts into the
// current configuration, caller values winning. On any error the prior
// configuration is left untouched. A transaction id generated by an
// earlier Configure survives unless an option replaces it.
func (c *Client) Configure(dsn string, opts ...Option) error {
	parsed, err := ParseDSN(dsn)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.config
	for _, opt := range opts {
		opt(&next)
	}
	if err := next.compile(); err != nil {
		return err
	}

	c.config = next
	c.dsnString = dsn
	c.dsn = parsed
	c.endpoint = parsed.Endpoint()
	c.authQuery = parsed.AuthQuery()
	return nil
}

// Install subscribes the client to an uncaught-report source, unless
// report collection was disabled. Reports flowing in through the source
// always trigger a flush, accepted or not.
func (c *Client) Install(src ReportSource) {
	c.mu.Lock()
	collect := c.config.CollectReports
	c.mu.Unlock()

	if src == nil || !collect {
		return
	}
	src.Subscribe(c.handleReport)
}

func (c *Client) handleReport(r RawReport) {
	c.notifier.emit(Notification{Kind: NoteHandle, Report: &r})
	c.RecordReport(r, nil)

	// Uncaught reports flush unconditionally: even when this one was
	// filtered, anything already queued rides out now.
	c.Capture(nil)
}

// RecordReport filters and normalizes a raw report and, when accepted,
// appends an exception action to the timeline. Nothing is flushed here.
// The result reports acceptance; opts.Callback, when set, receives the
// complementary dropped flag.
func (c *Client) RecordReport(r RawReport, opts *EventOptions) bool {
	c.mu.Lock()
	accepted := c.recordReportLocked(r)
	c.mu.Unlock()

	if opts != nil && opts.Callback != nil {
		opts.Callback(!accepted)
	}
	return accepted
}

func (c *Client) recordReportLocked(r RawReport) bool {
	// A blank message is meaningless and never forwarded.
	if r.Message == "" {
		return false
	}
	if c.config.ignoreErrors.Matches(r.Message) {
		return false
	}

	var frames []Frame
	for _, raw := range r.Stack {
		if frame, ok := c.normalizeFrame(raw); ok {
			frames = append(frames, frame)
		}
	}

	culprit := r.URL
	if len(frames) > 0 {
		// The newest frame names the effective source URL; outbound
		// frame order is oldest-first.
		culprit = frames[0].Filename
		lo.Reverse(frames)
	} else if culprit != "" {
		if frame, ok := c.normalizeFrame(RawFrame{URL: culprit, Line: r.Line}); ok {
			frames = append(frames, frame)
		}
	}

	if c.config.ignoreURLs.Matches(culprit) {
		return false
	}
	if c.config.whitelistURLs.Enabled() && !c.config.whitelistURLs.Matches(culprit) {
		return false
	}

	label := r.Message
	if r.Line > 0 {
		label = fmt.Sprintf("%s at %d", r.Message, r.Line)
	}

	c.timeline.append(TimelineAction{
		Kind:    ActionException,
		Type:    r.Name,
		Value:   r.Message,
		Culprit: culprit,
		Label:   label,
		Frames:  frames,
	})
	return true
}

// CaptureException reports err with a stack collected at the call site and
// flushes immediately when the report is accepted.
func (c *Client) CaptureException(err error, opts *EventOptions) {
	if err == nil {
		return
	}

	c.mu.Lock()
	c.lastError = err
	c.mu.Unlock()

	r := RawReport{
		Name:    fmt.Sprintf("%T", err),
		Message: err.Error(),
		Stack:   callerFrames(1),
	}
	if c.RecordReport(r, opts) {
		c.Capture(opts)
	}
}

// CaptureMessage appends a message action and flushes immediately. The
// ignore-message filter applies here too.
func (c *Client) CaptureMessage(msg string, opts *EventOptions) {
	c.mu.Lock()
	dropped := msg == "" || c.config.ignoreErrors.Matches(msg)
	if !dropped {
		c.timeline.append(TimelineAction{Kind: ActionMessage, Message: msg})
	}
	c.mu.Unlock()

	if opts != nil && opts.Callback != nil {
		opts.Callback(dropped)
	}
	if dropped {
		return
	}
	c.Capture(opts)
}

// RecordMessage queues a message action without flushing.
func (c *Client) RecordMessage(msg string) {
	if msg == "" {
		return
	}
	c.mu.Lock()
	c.timeline.append(TimelineAction{Kind: ActionMessage, Message: msg})
	c.mu.Unlock()
}

// RecordHTTP queues request context for the next flush.
func (c *Client) RecordHTTP(url string, headers map[string]string) {
	c.mu.Lock()
	c.timeline.append(TimelineAction{Kind: ActionHTTPRequest, URL: url, Headers: headers})
	c.mu.Unlock()
}

// RecordAction queues a caller-assembled action. Actions without a kind
// are recorded as custom.
func (c *Client) RecordAction(a TimelineAction) {
	if a.Kind == "" {
		a.Kind = ActionCustom
	}
	c.mu.Lock()
	c.timeline.append(a)
	c.mu.Unlock()
}

// Capture drains the timeline into one payload and hands it to the
// transport. Without a configured transport it warns and leaves the
// timeline intact; with an empty timeline it is a no-op.
func (c *Client) Capture(opts *EventOptions) {
	c.mu.Lock()
	if c.endpoint == "" || c.config.transport == nil {
		pending := c.timeline.len()
		c.mu.Unlock()
		c.logf("no transport configured; %d action(s) left queued", pending)
		return
	}
	if c.timeline.len() == 0 {
		c.mu.Unlock()
		return
	}

	events := c.timeline.drain()
	payload := c.buildPayloadLocked(events, opts)
	endpoint, auth := c.endpoint, c.authQuery
	transport := c.config.transport
	dataCallback := c.config.DataCallback
	shouldSend := c.config.ShouldSendCallback
	c.mu.Unlock()

	// User hooks run outside the lock so they may call back into the
	// client; anything they queue lands in the next flush.
	if dataCallback != nil {
		if next := dataCallback(payload); next != nil {
			payload = next
		}
	}
	if shouldSend != nil && !shouldSend(payload) {
		return
	}

	if payload.EventID == "" {
		payload.EventID = uuid.NewString()
	}
	c.mu.Lock()
	c.lastEventID = payload.EventID
	c.mu.Unlock()

	req, err := buildRequest(endpoint, auth, payload)
	if err != nil {
		c.logf("dropping payload: %v", err)
		return
	}

	transport.Send(context.Background(), req, func(sendErr error) {
		if sendErr != nil {
			c.notifier.emit(Notification{Kind: NoteFailure, Request: &req, Err: sendErr})
			return
		}
		c.notifier.emit(Notification{Kind: NoteSuccess, Request: &req})
	})
}

func (c *Client) buildPayloadLocked(events []TimelineAction, opts *EventOptions) *Payload {
	p := &Payload{
		Logger:      c.config.Logger,
		Site:        c.config.Site,
		Transaction: c.config.Transaction,
		Platform:    platformLabel,
		Events:      events,
	}

	var optTags map[string]string
	var optExtra map[string]any
	if opts != nil {
		if opts.Logger != "" {
			p.Logger = opts.Logger
		}
		if opts.Site != "" {
			p.Site = opts.Site
		}
		p.EventID = opts.EventID
		p.Culprit = opts.Culprit
		p.Message = opts.Message
		optTags = opts.Tags
		optExtra = opts.Extra
	}

	// The most recent action names the payload when the caller did not.
	if len(events) > 0 {
		last := events[len(events)-1]
		if p.Culprit == "" {
			p.Culprit = last.Culprit
		}
		if p.Message == "" {
			if last.Label != "" {
				p.Message = last.Label
			} else {
				p.Message = last.Message
			}
		}
	}

	p.Tags = mergeTags(c.config.Tags, optTags)
	p.Extra = mergeExtra(runtimeExtra(), c.config.Extra, optExtra)
	if len(c.user) > 0 {
		p.User = c.user
	}
	return p
}

// SetUser replaces the user record attached to future payloads wholesale;
// fields are never merged. An empty or nil record clears it.
func (c *Client) SetUser(user map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(user) == 0 {
		c.user = nil
		return
	}
	c.user = user
}

// Reset discards all pending timeline actions.
func (c *Client) Reset() {
	c.mu.Lock()
	c.timeline.reset()
	c.mu.Unlock()
}

// LastError returns the most recently captured exception.
func (c *Client) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// LastEventID returns the id of the most recently dispatched payload.
func (c *Client) LastEventID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastEventID
}

// Subscribe registers a listener for a notification kind and returns its
// cancel function.
func (c *Client) Subscribe(kind NotificationKind, fn func(Notification)) func() {
	return c.notifier.subscribe(kind, fn)
}

// Close releases the transport, if any.
func (c *Client) Close() error {
	c.mu.Lock()
	t := c.config.transport
	c.mu.Unlock()
	if t == nil {
		return nil
	}
	return t.Close()
}

func (c *Client) logf(format string, args ...any) {
	c.mu.Lock()
	l := c.config.log
	c.mu.Unlock()
	if l == nil {
		l = defaultLog
	}
	l.Printf(format, args...)
}
