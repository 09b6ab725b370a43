// payload.go assembles the outbound payload and its merged metadata.

package raven

import (
	"os"
	"runtime"

	"github.com/samber/lo"
)

const platformLabel = "javascript"

// Payload is the wire shape handed to a transport. It is built fresh per
// capture and never persisted. Tags are omitted from the encoding entirely
// when empty.
type Payload struct {
	EventID     string            `json:"event_id,omitempty"`
	Logger      string            `json:"logger"`
	Site        string            `json:"site,omitempty"`
	Transaction string            `json:"transaction,omitempty"`
	Platform    string            `json:"platform"`
	Events      []TimelineAction  `json:"events"`
	Culprit     string            `json:"culprit,omitempty"`
	Message     string            `json:"message,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
	Extra       map[string]any    `json:"extra,omitempty"`
	User        map[string]any    `json:"user,omitempty"`
}

// mergeTags layers tag maps, later layers winning on collision. An empty
// result collapses to nil so the tags key drops off the wire.
func mergeTags(layers ...map[string]string) map[string]string {
	merged := lo.Assign(layers...)
	if len(merged) == 0 {
		return nil
	}
	return merged
}

// mergeExtra layers extra maps, later layers winning on collision.
func mergeExtra(layers ...map[string]any) map[string]any {
	merged := lo.Assign(layers...)
	if len(merged) == 0 {
		return nil
	}
	return merged
}

// runtimeExtra derives runtime diagnostics merged in as the least specific
// extra layer. Any value that cannot be resolved is simply left out.
func runtimeExtra() map[string]any {
	extra := map[string]any{
		"runtime.version":    runtime.Version(),
		"runtime.os":         runtime.GOOS,
		"runtime.arch":       runtime.GOARCH,
		"runtime.goroutines": runtime.NumGoroutine(),
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	extra["runtime.alloc_bytes"] = mem.Alloc

	if host, err := os.Hostname(); err == nil && host != "" {
		extra["host.name"] = host
	}
	return extra
}
