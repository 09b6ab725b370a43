// Package zapraven forwards zap log entries to a raven client, so hosts
// that already log through zap get error reporting without touching call
// sites. Entries at or above the configured level become captured
// messages; their fields travel as extra and the level as a tag.
package zapraven

import (
	"go.uber.org/zap/zapcore"

	"github.com/zeevl/raven-js/pkg/raven"
)

// Core is a zapcore.Core that reports matching entries to a raven client.
// Attach it alongside an existing core with zapcore.NewTee.
type Core struct {
	zapcore.LevelEnabler

	client *raven.Client
	fields []zapcore.Field
}

// NewCore builds a reporting core. enab decides which entries are
// forwarded; zapcore.ErrorLevel is the usual choice.
func NewCore(client *raven.Client, enab zapcore.LevelEnabler) *Core {
	return &Core{LevelEnabler: enab, client: client}
}

// With attaches structured context carried by every later entry.
func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	clone := &Core{
		LevelEnabler: c.LevelEnabler,
		client:       c.client,
		fields:       make([]zapcore.Field, 0, len(c.fields)+len(fields)),
	}
	clone.fields = append(clone.fields, c.fields...)
	clone.fields = append(clone.fields, fields...)
	return clone
}

func (c *Core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// Write captures the entry as a message. Field values are resolved through
// zap's own object encoder, so nested and typed fields encode the way zap
// would encode them.
func (c *Core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, field := range c.fields {
		field.AddTo(enc)
	}
	for _, field := range fields {
		field.AddTo(enc)
	}

	opts := &raven.EventOptions{
		Tags:  map[string]string{"level": ent.Level.String()},
		Extra: enc.Fields,
	}
	if ent.LoggerName != "" {
		opts.Logger = ent.LoggerName
	}
	if ent.Caller.Defined {
		opts.Culprit = ent.Caller.String()
	}

	c.client.CaptureMessage(ent.Message, opts)
	return nil
}

// Sync is a no-op: the pipeline behind the client is fire-and-forget.
func (c *Core) Sync() error {
	return nil
}

var _ zapcore.Core = (*Core)(nil)
