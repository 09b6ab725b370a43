// config.go merges caller options into the client configuration and
// precompiles the filter matchers.

package raven

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Messages raised for scripts the page cannot read (cross-origin sources
// stripped by the browser). They carry no information and are always
// filtered, regardless of caller configuration.
var builtinIgnores = []any{"Script error.", "Script error"}

// Config is the full option set for a client. Filter lists accept string
// literals and *regexp.Regexp entries. A Config is compiled once per
// New/Configure call and is immutable until reconfigured.
type Config struct {
	// Logger names the origin of captured events. Default "javascript".
	Logger string

	// IgnoreErrors drops events whose message matches.
	IgnoreErrors []any

	// IgnoreURLs drops events whose effective source URL matches.
	// Empty means the filter is disabled.
	IgnoreURLs []any

	// WhitelistURLs drops events whose effective source URL does NOT
	// match. Empty means the filter is disabled.
	WhitelistURLs []any

	// IncludePaths classifies frames: filenames failing the list are
	// marked library code. Empty means every frame may be in-app.
	IncludePaths []any

	// CollectReports subscribes the client to a report source on
	// Install. Default true.
	CollectReports bool

	// Tags and Extra are merged into every payload.
	Tags  map[string]string
	Extra map[string]any

	// Transaction identifies this configuration's lifetime; generated
	// when empty and stable until explicitly replaced.
	Transaction string

	// Site labels the reporting property.
	Site string

	// FetchContext enables source-context extraction on frames that
	// carry surrounding lines. LinesOfContext caps the window (default 11).
	FetchContext   bool
	LinesOfContext int

	// DataCallback transforms the payload before admission checks.
	// Returning nil keeps the payload unchanged.
	DataCallback func(*Payload) *Payload

	// ShouldSendCallback vetoes a payload after all merging. When it
	// returns false nothing is sent and no event id is assigned.
	ShouldSendCallback func(*Payload) bool

	ignoreErrors  *Matcher
	ignoreURLs    *Matcher
	whitelistURLs *Matcher
	includePaths  *Matcher

	transport Transport
	log       *log.Logger
}

// Option mutates a Config before compilation.
type Option func(*Config)

func WithLogger(name string) Option {
	return func(c *Config) { c.Logger = name }
}

func WithIgnoreErrors(entries ...any) Option {
	return func(c *Config) { c.IgnoreErrors = entries }
}

func WithIgnoreURLs(entries ...any) Option {
	return func(c *Config) { c.IgnoreURLs = entries }
}

func WithWhitelistURLs(entries ...any) Option {
	return func(c *Config) { c.WhitelistURLs = entries }
}

func WithIncludePaths(entries ...any) Option {
	return func(c *Config) { c.IncludePaths = entries }
}

// WithCollectReports controls whether Install subscribes to the source.
func WithCollectReports(enabled bool) Option {
	return func(c *Config) { c.CollectReports = enabled }
}

func WithTags(tags map[string]string) Option {
	return func(c *Config) { c.Tags = lo.Assign(c.Tags, tags) }
}

func WithExtra(extra map[string]any) Option {
	return func(c *Config) { c.Extra = lo.Assign(c.Extra, extra) }
}

func WithTransaction(id string) Option {
	return func(c *Config) { c.Transaction = id }
}

func WithSite(site string) Option {
	return func(c *Config) { c.Site = site }
}

// WithContext enables source-context extraction with the given window size.
// lines <= 0 keeps the default of 11.
func WithContext(lines int) Option {
	return func(c *Config) {
		c.FetchContext = true
		if lines > 0 {
			c.LinesOfContext = lines
		}
	}
}

func WithDataCallback(fn func(*Payload) *Payload) Option {
	return func(c *Config) { c.DataCallback = fn }
}

func WithShouldSendCallback(fn func(*Payload) bool) Option {
	return func(c *Config) { c.ShouldSendCallback = fn }
}

// WithTransport sets the outbound channel. A client without a transport
// warns and drops nothing: actions stay queued until one is configured.
func WithTransport(t Transport) Option {
	return func(c *Config) { c.transport = t }
}

// WithLog sets the logger used for the client's own warnings.
func WithLog(l *log.Logger) Option {
	return func(c *Config) { c.log = l }
}

func defaultConfig() Config {
	return Config{
		Logger:         "javascript",
		CollectReports: true,
		LinesOfContext: 11,
	}
}

// compile finalizes a merged configuration: generates the transaction id
// when absent, appends the built-in ignore entries, and compiles the four
// filter lists. Empty URL lists compile disabled rather than always-failing.
func (c *Config) compile() error {
	if c.Transaction == "" {
		c.Transaction = uuid.NewString()
	}

	ignores := append(append([]any{}, c.IgnoreErrors...), builtinIgnores...)

	var err error
	if c.ignoreErrors, err = compileMatcher(ignores); err != nil {
		return fmt.Errorf("ignoreErrors: %w", err)
	}
	if c.ignoreURLs, err = compileMatcher(c.IgnoreURLs); err != nil {
		return fmt.Errorf("ignoreUrls: %w", err)
	}
	if c.whitelistURLs, err = compileMatcher(c.WhitelistURLs); err != nil {
		return fmt.Errorf("whitelistUrls: %w", err)
	}
	if c.includePaths, err = compileMatcher(c.IncludePaths); err != nil {
		return fmt.Errorf("includePaths: %w", err)
	}
	return nil
}
