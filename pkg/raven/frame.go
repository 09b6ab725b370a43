// frame.go normalizes raw stack frames from an upstream stack source into
// canonical frames with in-app classification and source context.

package raven

import (
	"regexp"
	"runtime"

	"github.com/samber/lo"
)

const (
	// Context lines longer than this are assumed to come from a minified
	// bundle; full surrounding context is useless there.
	minifiedLineThreshold = 300

	// Width of the context window carved out of a minified line.
	minifiedContextWidth = 50

	unknownFunction = "?"
)

// Frames from the client's own code never count as application code.
var (
	clientNamespacePattern = regexp.MustCompile(`(?i)\b(raven|tracekit)\.`)
	clientBundlePattern    = regexp.MustCompile(`raven\.(min\.)?js$`)
)

// RawFrame is a stack frame as supplied by an upstream stack source,
// newest-first. Column == 0 means the column is unknown. Context, when
// present, is the source lines surrounding the frame's line.
type RawFrame struct {
	URL     string
	Line    int
	Column  int
	Func    string
	Context []string
}

// Frame is a canonical, outbound stack frame. Frames are created only by
// normalization and embedded by value into exception actions.
type Frame struct {
	Filename    string   `json:"filename"`
	Lineno      int      `json:"lineno"`
	Colno       int      `json:"colno,omitempty"`
	Function    string   `json:"function"`
	PreContext  []string `json:"pre_context,omitempty"`
	ContextLine string   `json:"context_line,omitempty"`
	PostContext []string `json:"post_context,omitempty"`
	InApp       bool     `json:"in_app"`
}

// normalizeFrame converts one raw frame. Frames without a source URL carry
// nothing attributable and are skipped.
func (c *Client) normalizeFrame(raw RawFrame) (Frame, bool) {
	if raw.URL == "" {
		return Frame{}, false
	}

	frame := Frame{
		Filename: raw.URL,
		Lineno:   raw.Line,
		Colno:    raw.Column,
		Function: raw.Func,
	}
	if frame.Function == "" {
		frame.Function = unknownFunction
	}

	if len(raw.Context) > 0 && c.config.FetchContext {
		context := trimContext(raw.Context, c.config.LinesOfContext)
		frame.PreContext, frame.ContextLine, frame.PostContext = extractContext(context, raw.Column)
	}

	frame.InApp = c.isInApp(raw)
	return frame, true
}

// isInApp classifies a frame as application code. A frame is in-app unless
// its filename fails a configured include-path filter, or it originates
// from the client's own namespaces or bundle.
func (c *Client) isInApp(raw RawFrame) bool {
	if c.config.includePaths.Enabled() && !c.config.includePaths.Matches(raw.URL) {
		return false
	}
	if clientNamespacePattern.MatchString(raw.Func) {
		return false
	}
	if clientBundlePattern.MatchString(raw.URL) {
		return false
	}
	return true
}

// trimContext caps an oversized context array to max lines, keeping the
// window centered so the pivot line survives.
func trimContext(context []string, max int) []string {
	if max <= 0 || len(context) <= max {
		return context
	}
	mid := len(context) / 2
	start := mid - max/2
	if start < 0 {
		start = 0
	}
	end := start + max
	if end > len(context) {
		end = len(context)
	}
	return context[start:end]
}

// extractContext splits the surrounding source lines into pre/line/post.
// Any line over the minified threshold flips the whole frame into minified
// handling: without a known column there is nothing useful to show, and
// with one only a narrow window around it.
func extractContext(context []string, column int) (pre []string, line string, post []string) {
	minified := lo.SomeBy(context, func(l string) bool {
		return len(l) > minifiedLineThreshold
	})

	if minified {
		if column == 0 {
			return nil, "", nil
		}
		mid := context[len(context)/2]
		if column >= len(mid) {
			return nil, "", nil
		}
		end := column + minifiedContextWidth
		if end > len(mid) {
			end = len(mid)
		}
		return nil, mid[column:end], nil
	}

	pivot := len(context) / 2
	return context[:pivot], context[pivot], context[pivot+1:]
}

// callerFrames collects raw frames from the Go runtime in the same
// newest-first shape an external stack source supplies. It backs panic
// capture inside wrapped callables, where no upstream source is involved.
func callerFrames(skip int) []RawFrame {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}

	var raw []RawFrame
	iter := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := iter.Next()
		if frame.File != "" {
			raw = append(raw, RawFrame{
				URL:  frame.File,
				Line: frame.Line,
				Func: frame.Function,
			})
		}
		if !more {
			break
		}
	}
	return raw
}
