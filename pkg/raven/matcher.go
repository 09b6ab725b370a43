// matcher.go compiles mixed literal/pattern filter lists into single
// case-insensitive matchers.

package raven

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// Matcher reports whether a string matches a filter list compiled from
// string literals and *regexp.Regexp entries. The zero value and a matcher
// compiled from an empty list are disabled: they match nothing and report
// Enabled() == false so callers can skip the filter entirely instead of
// treating it as always-failing.
type Matcher struct {
	re *regexp.Regexp
}

// compileMatcher joins the entries into one case-insensitive alternation.
// Literals are regex-escaped; *regexp.Regexp entries contribute their
// source. Entries of any other type are an error.
func compileMatcher(entries []any) (*Matcher, error) {
	if len(entries) == 0 {
		return &Matcher{}, nil
	}

	sources := make([]string, 0, len(entries))
	for _, entry := range entries {
		switch v := entry.(type) {
		case string:
			sources = append(sources, regexp.QuoteMeta(v))
		case *regexp.Regexp:
			sources = append(sources, v.String())
		default:
			return nil, fmt.Errorf("filter entry must be string or *regexp.Regexp, got %T", entry)
		}
	}

	sources = lo.Uniq(sources)
	re, err := regexp.Compile("(?i)(" + strings.Join(sources, "|") + ")")
	if err != nil {
		return nil, fmt.Errorf("compile filter list: %w", err)
	}
	return &Matcher{re: re}, nil
}

// Enabled reports whether the matcher was compiled from a non-empty list.
func (m *Matcher) Enabled() bool {
	return m != nil && m.re != nil
}

// Matches reports whether s matches the compiled list. A disabled matcher
// matches nothing.
func (m *Matcher) Matches(s string) bool {
	return m.Enabled() && m.re.MatchString(s)
}
